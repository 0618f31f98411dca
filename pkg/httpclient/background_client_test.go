package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubResponse struct {
	body       []byte
	statusCode int
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.statusCode }

// stubClient returns a fixed outcome and records the request.
type stubClient struct {
	resp    Response
	err     error
	url     string
	headers map[string]string
}

func (s *stubClient) Get(_ context.Context, url string, headers map[string]string) (Response, error) {
	s.url = url
	s.headers = headers
	return s.resp, s.err
}

type outcome struct {
	resp Response
	err  error
}

func getOnce(t *testing.T, c AsyncClient, url string) outcome {
	t.Helper()
	ch := make(chan outcome, 2)
	c.Get(context.Background(), url, func(resp Response, err error) {
		ch <- outcome{resp: resp, err: err}
	})
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatalf("completion not called")
	}
	return outcome{}
}

func TestBackgroundClientDeliversResponse(t *testing.T) {
	stub := &stubClient{resp: stubResponse{body: []byte("ok"), statusCode: 204}}
	c := NewBackgroundClient(stub, map[string]string{"User-Agent": "feed-loader"})

	got := getOnce(t, c, "https://example.com/feed")
	if got.err != nil {
		t.Fatalf("unexpected error %v", got.err)
	}
	if got.resp.StatusCode() != 204 || string(got.resp.Body()) != "ok" {
		t.Fatalf("unexpected response %#v", got.resp)
	}
	if stub.url != "https://example.com/feed" || stub.headers["User-Agent"] != "feed-loader" {
		t.Fatalf("unexpected request url=%q headers=%v", stub.url, stub.headers)
	}
}

func TestBackgroundClientDropsResponseOnError(t *testing.T) {
	stub := &stubClient{resp: stubResponse{statusCode: 200}, err: errors.New("boom")}

	got := getOnce(t, NewBackgroundClient(stub, nil), "https://example.com")
	if got.err == nil || got.resp != nil {
		t.Fatalf("expected error only, got resp=%v err=%v", got.resp, got.err)
	}
}

func TestBackgroundClientReportsMissingResponse(t *testing.T) {
	got := getOnce(t, NewBackgroundClient(&stubClient{}, nil), "https://example.com")
	if !errors.Is(got.err, ErrNoResponse) {
		t.Fatalf("expected ErrNoResponse, got %v", got.err)
	}
}

func TestRestyClientReturnsNon2xxAsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(time.Second).Get(context.Background(), srv.URL, map[string]string{"X-Test": "1"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode())
	}
}

func TestRestyClientTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	if _, err := NewRestyClient(50*time.Millisecond).Get(context.Background(), srv.URL, nil); err == nil {
		t.Fatalf("expected timeout error")
	}
}
