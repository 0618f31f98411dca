package feedapi

import (
	"slices"
	"strconv"

	"github.com/samvad-hq/feed-loader/internal/domain"
)

// LoadError classifies why a load failed. It carries no underlying cause.
type LoadError int

const (
	// ErrConnectivity means no response was obtained from the transport.
	ErrConnectivity LoadError = iota + 1
	// ErrInvalidData means a response arrived but its status or body is unusable.
	ErrInvalidData
)

func (e LoadError) Error() string {
	switch e {
	case ErrConnectivity:
		return "feed: connectivity"
	case ErrInvalidData:
		return "feed: invalid data"
	default:
		return "feed: unknown error"
	}
}

// Result is the outcome of one load: either a list of items or a LoadError.
// The zero value is neither a success nor a known failure; use Success or Failure.
type Result struct {
	items []domain.FeedItem
	err   LoadError
}

// Success wraps a decoded item list. A nil list is normalised to empty.
func Success(items []domain.FeedItem) Result {
	if items == nil {
		items = []domain.FeedItem{}
	}
	return Result{items: items}
}

// Failure wraps a load error kind.
func Failure(err LoadError) Result {
	return Result{err: err}
}

// IsSuccess reports whether the result holds items. Success always sets a
// non-nil list, so the zero value is never a success.
func (r Result) IsSuccess() bool { return r.err == 0 && r.items != nil }

// Items returns the decoded items and true on success.
func (r Result) Items() ([]domain.FeedItem, bool) {
	if !r.IsSuccess() {
		return nil, false
	}
	return r.items, true
}

// Err returns the error kind, or 0 on success.
func (r Result) Err() LoadError { return r.err }

// Unwrap splits the result into the usual (value, error) pair.
func (r Result) Unwrap() ([]domain.FeedItem, error) {
	if !r.IsSuccess() {
		return nil, r.err
	}
	return r.items, nil
}

// Equal reports whether two results hold the same variant and payload.
func (r Result) Equal(other Result) bool {
	if r.err != other.err || r.IsSuccess() != other.IsSuccess() {
		return false
	}
	return slices.Equal(r.items, other.items)
}

func (r Result) String() string {
	if !r.IsSuccess() {
		return "failure(" + r.err.Error() + ")"
	}
	return "success(" + strconv.Itoa(len(r.items)) + " items)"
}
