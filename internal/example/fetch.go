package example

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrUnsupportedScheme is returned for externalValue URLs that are not http(s).
var ErrUnsupportedScheme = errors.New("unsupported externalValue scheme")

// Fetcher retrieves the payload of an externalValue URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, rawURL string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (string, error) { return f(ctx, rawURL) }

// HTTPFetcher fetches over http and https with a per-request timeout and no
// retries. Any non-2xx status is an error.
type HTTPFetcher struct {
	Client *http.Client
}

const maxExampleBytes = 4 << 20

// NewHTTPFetcher returns an HTTPFetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := checkScheme(rawURL); err != nil {
		return "", err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s: http %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExampleBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func checkScheme(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedScheme, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
}

// CachingFetcher memoizes successful fetches per URL. Failures are not cached.
type CachingFetcher struct {
	next Fetcher

	mu   sync.Mutex
	data map[string]string
}

// NewCachingFetcher wraps next with a per-URL cache.
func NewCachingFetcher(next Fetcher) *CachingFetcher {
	return &CachingFetcher{next: next, data: map[string]string{}}
}

func (c *CachingFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	c.mu.Lock()
	v, ok := c.data[rawURL]
	c.mu.Unlock()
	if ok {
		return v, nil
	}
	v, err := c.next.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.data[rawURL] = v
	c.mu.Unlock()
	return v, nil
}
