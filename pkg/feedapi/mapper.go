package feedapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/samvad-hq/feed-loader/internal/domain"
)

var errMissingItems = errors.New("payload has no items key")

// uuidTextLen is the length of the hyphenated 8-4-4-4-12 form, the only
// identifier spelling accepted.
const uuidTextLen = 36

// MapItems turns a status code and raw body into a Result.
// Any non-200 status or any invalid item yields Failure(ErrInvalidData);
// partial lists are never returned.
func MapItems(statusCode int, body []byte) Result {
	if statusCode != http.StatusOK {
		return Failure(ErrInvalidData)
	}
	items, err := decodeItems(body)
	if err != nil {
		return Failure(ErrInvalidData)
	}
	return Success(items)
}

// decodeItems looks keys up by exact name; encoding/json struct decoding
// would also accept "Items" or "ID".
func decodeItems(body []byte) ([]domain.FeedItem, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	rawItems, ok := root["items"]
	if !ok {
		return nil, errMissingItems
	}
	var list []json.RawMessage
	if err := json.Unmarshal(rawItems, &list); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if list == nil {
		return nil, errMissingItems
	}

	items := make([]domain.FeedItem, 0, len(list))
	for i, raw := range list {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(raw json.RawMessage) (domain.FeedItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.FeedItem{}, err
	}
	if fields == nil {
		return domain.FeedItem{}, errors.New("item is null")
	}

	idText, err := stringField(fields, "id", true)
	if err != nil {
		return domain.FeedItem{}, err
	}
	if len(idText) != uuidTextLen {
		return domain.FeedItem{}, fmt.Errorf("id %q is not a hyphenated uuid", idText)
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		return domain.FeedItem{}, fmt.Errorf("parse id: %w", err)
	}

	imageText, err := stringField(fields, "image", true)
	if err != nil {
		return domain.FeedItem{}, err
	}
	image, err := parseImageURL(imageText)
	if err != nil {
		return domain.FeedItem{}, err
	}

	description, err := stringField(fields, "description", false)
	if err != nil {
		return domain.FeedItem{}, err
	}
	location, err := stringField(fields, "location", false)
	if err != nil {
		return domain.FeedItem{}, err
	}

	return domain.FeedItem{
		ID:          id,
		Description: description,
		Location:    location,
		ImageURL:    image,
	}, nil
}

// stringField reads key as a string. Absent or null is an error only when required.
func stringField(fields map[string]json.RawMessage, key string, required bool) (string, error) {
	var v *string
	if raw, ok := fields[key]; ok {
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", fmt.Errorf("%s: %w", key, err)
		}
	}
	if v == nil {
		if required {
			return "", fmt.Errorf("%s is required", key)
		}
		return "", nil
	}
	return *v, nil
}

func parseImageURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse image: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("image %q is not an absolute url", raw)
	}
	return raw, nil
}
