package publishers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samvad-hq/feed-loader/internal/domain"
)

// Event is the payload published downstream for one new feed item.
type Event struct {
	FeedID      string          `json:"feed_id"`
	FeedName    string          `json:"feed_name"`
	Item        domain.FeedItem `json:"item"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent stamps item with its feed and the collection time.
func NewEvent(feedID, feedName string, item domain.FeedItem) Event {
	return Event{
		FeedID:      feedID,
		FeedName:    feedName,
		Item:        item,
		CollectedAt: time.Now().UTC(),
	}
}

// encode returns the JSON body plus the routing attributes queue and topic sinks attach.
func (e Event) encode() ([]byte, map[string]string, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal event: %w", err)
	}
	attrs := map[string]string{
		"feed_id": e.FeedID,
		"item_id": e.Item.ID.String(),
	}
	return body, attrs, nil
}
