package domain

import "github.com/google/uuid"

// FeedItem is a single validated entry of a remote feed.
// Empty Description or Location means the field was absent on the wire.
type FeedItem struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	ImageURL    string    `json:"image"`
}
