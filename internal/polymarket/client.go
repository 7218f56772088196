// Package polymarket provides a minimal client for the Polymarket Gamma API:
// market discovery with cursor pagination and per-market price history.
package polymarket

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rewired-gh/polyodds/internal/history"
)

const userAgent = "polyodds/1.0"

// Client provides access to the Polymarket Gamma API.
type Client struct {
	baseURL         *url.URL
	marketsPath     string
	historyTemplate string
	httpClient      *http.Client
	maxRetries      int
	retryDelayBase  time.Duration
}

// ClientConfig holds the tunables of a Client. Zero values fall back to the
// defaults used by the command line.
type ClientConfig struct {
	MarketsPath     string
	HistoryTemplate string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelayBase  time.Duration
	HTTPClient      *http.Client
}

// Default endpoint layout of the Gamma API.
const (
	DefaultBaseURL         = "https://gamma-api.polymarket.com"
	DefaultMarketsPath     = "/markets"
	DefaultHistoryTemplate = "/markets/{market_id}/history"
)

// APIError is returned for HTTP responses with status >= 400.
type APIError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("polymarket api error %d from %s: %s", e.StatusCode, e.URL, snippet(e.Body))
}

// IsRetryable reports whether the request may succeed when repeated.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NewClient creates a new Gamma API client rooted at baseURL.
func NewClient(baseURL string, cfg ClientConfig) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	if cfg.MarketsPath == "" {
		cfg.MarketsPath = DefaultMarketsPath
	}
	if cfg.HistoryTemplate == "" {
		cfg.HistoryTemplate = DefaultHistoryTemplate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:         u,
		marketsPath:     cfg.MarketsPath,
		historyTemplate: cfg.HistoryTemplate,
		httpClient:      httpClient,
		maxRetries:      cfg.MaxRetries,
		retryDelayBase:  cfg.RetryDelayBase,
	}, nil
}

// resolve joins path onto the base URL the way a browser resolves a link:
// an absolute path replaces the base path.
func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse path %q: %w", path, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// getJSON performs a GET and decodes the body into a generic JSON value.
// Numbers are kept as json.Number.
func (c *Client) getJSON(ctx context.Context, u *url.URL) (any, error) {
	body, err := c.doRequest(ctx, u.String())
	if err != nil {
		return nil, err
	}

	payload, err := history.DecodePayload(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("non-JSON response from %s: %s", u, snippet(body))
	}
	return payload, nil
}

// doRequest performs an HTTP GET, retrying retryable failures up to
// maxRetries times with linear backoff.
func (c *Client) doRequest(ctx context.Context, urlStr string) ([]byte, error) {
	var lastErr error

	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(i)):
			}
		}

		body, err := c.doOnce(ctx, urlStr)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}
		if apiErr, ok := err.(*APIError); ok && !apiErr.IsRetryable() {
			return nil, err
		}
	}

	if c.maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doOnce(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: urlStr, Body: body}
	}
	return body, nil
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
