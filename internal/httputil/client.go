// Package httputil holds the small HTTP helpers shared by the upstream
// clients and the API server: a JSON GET client, request parameter parsing
// and JSON responses.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	defaultMaxBody = 1 << 20 // 1 MB is far above any upstream payload we read
)

// ErrDecode marks a response body that could not be decoded.
var ErrDecode = errors.New("decoding response")

// StatusError represents a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// Client performs bounded JSON GET requests against upstream services.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBody    int64
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBody caps the number of response bytes read.
func WithMaxBody(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

// NewClient creates a Client with a 10s default timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxBody:    defaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the configured per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// GetJSON sends one GET request and decodes the JSON body into dest.
// Non-2xx responses return *StatusError; undecodable bodies wrap ErrDecode.
// Transport errors are returned without the request URL, which may carry
// credentials in its path or query.
func (c *Client) GetJSON(ctx context.Context, rawURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", redact(err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return fmt.Errorf("reading response body: %w", redact(err))
	}
	if int64(len(body)) > c.maxBody {
		return fmt.Errorf("response exceeds %d byte limit", c.maxBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// redact drops the URL from *url.Error so secrets in it never reach logs.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
