package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRetryDelay = 400 * time.Millisecond
	maxErrorBody      = 512
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Fetcher performs HTTP requests for backends, retrying rate-limited calls.
type Fetcher struct {
	client     *http.Client
	retryDelay time.Duration
	userAgent  string
	sleep      func(ctx context.Context, d time.Duration) error
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client = &http.Client{Timeout: timeout}
		}
	}
}

// WithRetryDelay sets the wait after a 429 response without Retry-After.
func WithRetryDelay(delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if delay > 0 {
			f.retryDelay = delay
		}
	}
}

// WithUserAgent sets the default User-Agent header.
func WithUserAgent(userAgent string) FetcherOption {
	return func(f *Fetcher) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			f.userAgent = ua
		}
	}
}

// WithSleep replaces the context-aware sleep used between retries.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// NewFetcher builds a Fetcher with the provided options.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:     &http.Client{Timeout: defaultTimeout},
		retryDelay: defaultRetryDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Request describes one HTTP call. Body is re-sent on every retry.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Do executes req, retrying while the service answers 429, and returns the
// body of the first 2xx response.
func (f *Fetcher) Do(ctx context.Context, req Request) ([]byte, error) {
	if f == nil {
		f = NewFetcher()
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	for {
		var body io.Reader
		if req.Body != nil {
			body = bytes.NewReader(req.Body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		for key, values := range req.Header {
			for _, value := range values {
				httpReq.Header.Add(key, value)
			}
		}
		if httpReq.Header.Get("User-Agent") == "" && f.userAgent != "" {
			httpReq.Header.Set("User-Agent", f.userAgent)
		}

		requestStart := time.Now()
		resp, err := f.client.Do(httpReq)
		latency := time.Since(requestStart)
		if err != nil {
			return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
		}
		payload, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if err := f.sleep(ctx, f.retryAfter(resp.Header.Get("Retry-After"))); err != nil {
				return nil, err
			}
			continue
		}
		if readErr != nil {
			return nil, fmt.Errorf("read response (latency=%v): %w", latency, readErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet := strings.TrimSpace(string(payload))
			if len(snippet) > maxErrorBody {
				snippet = snippet[:maxErrorBody]
			}
			return nil, &StatusError{StatusCode: resp.StatusCode, URL: req.URL, Body: snippet}
		}
		return payload, nil
	}
}

// GetJSON issues a GET and decodes the JSON response into out.
func (f *Fetcher) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	payload, err := f.Do(ctx, Request{Method: http.MethodGet, URL: url, Header: header})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PostJSON encodes body as JSON, POSTs it and decodes the response into out.
func (f *Fetcher) PostJSON(ctx context.Context, url string, header http.Header, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	merged := header.Clone()
	if merged == nil {
		merged = http.Header{}
	}
	merged.Set("Content-Type", "application/json")
	merged.Set("Accept", "application/json")
	payload, err := f.Do(ctx, Request{Method: http.MethodPost, URL: url, Header: merged, Body: encoded})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// retryAfter interprets a Retry-After header given in seconds or as an HTTP
// date, falling back to the configured delay.
func (f *Fetcher) retryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return f.retryDelay
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
		return 0
	}
	return f.retryDelay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
