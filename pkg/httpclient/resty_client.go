package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// *resty.Response already exposes Body and StatusCode.
var _ Response = (*resty.Response)(nil)

// RestyClient is the blocking Client backed by resty.
type RestyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a Client whose requests give up after timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{rc: NewRestyHTTPClient(timeout)}
}

// NewRestyHTTPClient returns a bare resty client for callers needing other verbs.
// Retries are off; callers own any retry policy.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
}

// Get performs one GET. Every status code counts as a completed exchange;
// only transport failures return an error.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := r.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
