// Package feedapitest provides a controllable HTTP client double for code
// built on feedapi loaders.
package feedapitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/samvad-hq/feed-loader/pkg/httpclient"
)

// Response is a canned httpclient.Response.
type Response struct {
	Status  int
	Payload []byte
}

func (r Response) Body() []byte    { return r.Payload }
func (r Response) StatusCode() int { return r.Status }

type message struct {
	url        string
	completion httpclient.Completion
}

// ClientSpy records every Get and lets a test complete each one by index.
// It never completes a request on its own.
type ClientSpy struct {
	mu       sync.Mutex
	messages []message
}

// NewClientSpy returns an empty spy.
func NewClientSpy() *ClientSpy { return &ClientSpy{} }

// Get records the request; the completion runs only when the test triggers it.
func (s *ClientSpy) Get(_ context.Context, url string, completion httpclient.Completion) {
	s.mu.Lock()
	s.messages = append(s.messages, message{url: url, completion: completion})
	s.mu.Unlock()
}

// RequestedURLs returns the URLs of all requests in call order.
func (s *ClientSpy) RequestedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.url
	}
	return out
}

// Pending returns how many requests have been recorded.
func (s *ClientSpy) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Complete fails the request at index with err.
func (s *ClientSpy) Complete(err error, index int) {
	s.completion(index)(nil, err)
}

// CompleteWithStatus finishes the request at index with a response.
func (s *ClientSpy) CompleteWithStatus(code int, body []byte, index int) {
	s.completion(index)(Response{Status: code, Payload: body}, nil)
}

// CompleteWith finishes the request at index with an arbitrary outcome,
// including a response and an error at the same time.
func (s *ClientSpy) CompleteWith(resp httpclient.Response, err error, index int) {
	s.completion(index)(resp, err)
}

func (s *ClientSpy) completion(index int) httpclient.Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.messages) {
		panic(fmt.Sprintf("feedapitest: no request at index %d (have %d)", index, len(s.messages)))
	}
	return s.messages[index].completion
}
