package search_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"medialookup/internal/search"
)

func recordingSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func TestFetcherRetriesRateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			if r.Header.Get("User-Agent") != "tester" {
				t.Errorf("expected default user agent, got %q", r.Header.Get("User-Agent"))
			}
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	t.Cleanup(server.Close)

	var waits []time.Duration
	fetcher := search.NewFetcher(
		search.WithUserAgent("tester"),
		search.WithRetryDelay(250*time.Millisecond),
		search.WithSleep(recordingSleep(&waits)),
	)
	var payload struct {
		OK bool `json:"ok"`
	}
	if err := fetcher.GetJSON(context.Background(), server.URL, nil, &payload); err != nil {
		t.Fatalf("GetJSON returned error: %v", err)
	}
	if !payload.OK {
		t.Fatal("expected decoded payload")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
	if len(waits) != 2 || waits[0] != 3*time.Second || waits[1] != 250*time.Millisecond {
		t.Fatalf("unexpected waits: %v", waits)
	}
}

func TestFetcherStopsRetryingWhenContextDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := search.NewFetcher(search.WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))
	_, err := fetcher.Do(ctx, search.Request{URL: server.URL})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestFetcherReturnsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	t.Cleanup(server.Close)

	_, err := search.NewFetcher().Do(context.Background(), search.Request{URL: server.URL})
	var statusErr *search.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway || statusErr.Body != "upstream down" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestFetcherPostJSONResendsBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"q":"x"}` {
			t.Errorf("unexpected body on call %d: %s", calls.Load()+1, body)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"n":2}`))
	}))
	t.Cleanup(server.Close)

	var waits []time.Duration
	fetcher := search.NewFetcher(search.WithSleep(recordingSleep(&waits)))
	var out struct {
		N int `json:"n"`
	}
	if err := fetcher.PostJSON(context.Background(), server.URL, nil, map[string]string{"q": "x"}, &out); err != nil {
		t.Fatalf("PostJSON returned error: %v", err)
	}
	if out.N != 2 || calls.Load() != 2 {
		t.Fatalf("unexpected result n=%d calls=%d", out.N, calls.Load())
	}
	if len(waits) != 1 || waits[0] != 0 {
		t.Fatalf("expected a zero wait from Retry-After: 0, got %v", waits)
	}
}
