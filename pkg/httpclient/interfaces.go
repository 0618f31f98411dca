package httpclient

import (
	"context"
	"errors"
)

// ErrNoResponse is reported when a transport returns neither a response nor an error.
var ErrNoResponse = errors.New("httpclient: no response and no error")

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// Completion receives the outcome of an asynchronous GET.
type Completion func(resp Response, err error)

// AsyncClient performs a GET without blocking the caller and invokes the
// completion exactly once, from whichever goroutine finishes the request.
type AsyncClient interface {
	Get(ctx context.Context, url string, completion Completion)
}
