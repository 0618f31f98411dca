package httpclient

import (
	"context"
	"maps"
)

// BackgroundClient adapts a blocking Client to AsyncClient by running each
// request on its own goroutine.
type BackgroundClient struct {
	client  Client
	headers map[string]string
}

// NewBackgroundClient wraps client. headers are sent with every request.
func NewBackgroundClient(client Client, headers map[string]string) *BackgroundClient {
	return &BackgroundClient{client: client, headers: maps.Clone(headers)}
}

// Get starts the request and returns immediately.
func (b *BackgroundClient) Get(ctx context.Context, url string, completion Completion) {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		resp, err := b.client.Get(ctx, url, b.headers)
		if err == nil && resp == nil {
			err = ErrNoResponse
		}
		if err != nil {
			resp = nil
		}
		completion(resp, err)
	}()
}
