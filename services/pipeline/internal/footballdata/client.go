package footballdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://api.football-data.org/v4"

	// The free tier allows 10 requests per minute.
	DefaultMinInterval    = 6200 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second

	authHeader = "X-Auth-Token"
)

// ErrTransport marks failures where no HTTP response was received.
var ErrTransport = errors.New("football-data: transport failure")

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("football-data: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

// Temporary reports whether the status is worth another attempt (429 or 5xx).
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// ClientOptions tunes a Client. Zero values fall back to the package defaults.
type ClientOptions struct {
	BaseURL        string
	MinInterval    time.Duration
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

// Client is a football-data.org HTTP client that keeps a minimum spacing
// between consecutive requests. One instance should be shared by every
// caller that draws from the same quota.
type Client struct {
	baseURL     string
	token       string
	minInterval time.Duration
	http        *http.Client

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient builds a rate-limited client authenticating with token.
func NewClient(token string, opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	minInterval := opts.MinInterval
	if minInterval < 0 {
		minInterval = 0
	} else if minInterval == 0 {
		minInterval = DefaultMinInterval
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:     baseURL,
		token:       token,
		minInterval: minInterval,
		http:        httpClient,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// MinInterval returns the enforced spacing between requests.
func (c *Client) MinInterval() time.Duration {
	return c.minInterval
}

// Get issues a GET request against endpoint (relative to the base URL) and
// returns the raw JSON body. It blocks first when the previous
// request was issued less than MinInterval ago. A failed request still
// consumes its slot.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, endpoint, query)
	c.lastRequest = c.now()
	return body, err
}

func (c *Client) wait(ctx context.Context) error {
	if c.lastRequest.IsZero() {
		return nil
	}
	elapsed := c.now().Sub(c.lastRequest)
	if elapsed >= c.minInterval {
		return nil
	}
	return c.sleep(ctx, c.minInterval-elapsed)
}

func (c *Client) do(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	fullURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("football-data: build request: %w", err)
	}
	req.Header.Set(authHeader, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrTransport, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("football-data: response from %s is not valid JSON: %s", endpoint, snippet(body, 300))
	}
	return json.RawMessage(body), nil
}

// IsTemporary reports whether err is a transport failure or a retryable
// HTTP status.
func IsTemporary(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.Temporary()
	}
	return errors.Is(err, ErrTransport)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
