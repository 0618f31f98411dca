package feedapi

import (
	"context"
	"runtime"
	"sync/atomic"
	"weak"

	"github.com/samvad-hq/feed-loader/pkg/httpclient"
)

// HTTPClient aliases the shared asynchronous client for clarity within feedapi.
type HTTPClient = httpclient.AsyncClient

// FeedLoader is the caller-facing surface: one asynchronous load per call.
type FeedLoader interface {
	Load(ctx context.Context, completion func(Result))
}

// RemoteLoader loads a feed from a fixed URL through an HTTPClient.
//
// The pending request only holds a weak pointer to the loader. Once the
// loader is closed or garbage collected, in-flight completions are dropped
// and the caller's callback never runs.
type RemoteLoader struct {
	url    string
	client HTTPClient
	closed atomic.Bool
}

var _ FeedLoader = (*RemoteLoader)(nil)

// NewRemoteLoader builds a loader for url.
func NewRemoteLoader(url string, client HTTPClient) *RemoteLoader {
	return &RemoteLoader{url: url, client: client}
}

// URL returns the address every Load requests.
func (l *RemoteLoader) URL() string { return l.url }

// Load issues one GET and delivers exactly one Result to completion, unless
// the loader is released first. Concurrent calls are independent.
func (l *RemoteLoader) Load(ctx context.Context, completion func(Result)) {
	if ctx == nil {
		ctx = context.Background()
	}
	self := weak.Make(l)
	var delivered atomic.Bool

	l.client.Get(ctx, l.url, func(resp httpclient.Response, err error) {
		owner := self.Value()
		if owner == nil || owner.closed.Load() {
			return
		}
		if !delivered.CompareAndSwap(false, true) {
			return
		}
		if completion != nil {
			completion(toResult(resp, err))
		}
	})
}

// Close releases the loader. Completions still in flight are discarded.
func (l *RemoteLoader) Close() error {
	l.closed.Store(true)
	return nil
}

func toResult(resp httpclient.Response, err error) Result {
	if err != nil || resp == nil {
		return Failure(ErrConnectivity)
	}
	return MapItems(resp.StatusCode(), resp.Body())
}

// LoadSync runs one load and waits for its result or for ctx to end.
// A load cut short by ctx reports Failure(ErrConnectivity) with ctx.Err().
// It keeps loader reachable while waiting so the delivery is not suppressed.
func LoadSync(ctx context.Context, loader FeedLoader) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan Result, 1)
	loader.Load(ctx, func(r Result) {
		select {
		case ch <- r:
		default:
		}
	})

	defer runtime.KeepAlive(loader)
	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return Failure(ErrConnectivity), ctx.Err()
	}
}
