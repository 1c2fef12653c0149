package helpdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultSearchPath is the backend keyword search endpoint.
const DefaultSearchPath = "/api/tickets/search"

// maxErrorBody caps how much of a non-2xx body is kept on HTTPError.
const maxErrorBody = 4 << 10

// Client implements API over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	searchPath string
	limiter    *rate.Limiter
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithSearchPath overrides the keyword search endpoint path.
func WithSearchPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.searchPath = path
		}
	}
}

// WithRateLimit paces outgoing requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		searchPath: DefaultSearchPath,
		userAgent:  "deskboard",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do issues one request and decodes the JSON response into out. A nil body
// sends no payload; a nil out discards the response body after checking the
// status. No retries are attempted.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.resolve(path, query)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Method: method, URL: target, Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{Method: method, URL: target, Status: resp.StatusCode, Body: string(snippet)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}

	if out == nil {
		// Mutations only care about the status, but the body must still be JSON.
		if len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
			return &ParseError{Method: method, URL: target, Err: fmt.Errorf("body is not JSON")}
		}
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Method: method, URL: target, Err: err}
	}
	return nil
}

// resolve joins path and query onto the base URL.
func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Stats retrieves the current aggregate ticket counts.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.Do(ctx, http.MethodGet, "/api/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SearchTickets returns tickets matching keyword in backend order.
func (c *Client) SearchTickets(ctx context.Context, keyword string) ([]TicketSummary, error) {
	var tickets []TicketSummary
	q := url.Values{"keyword": {keyword}}
	if err := c.Do(ctx, http.MethodGet, c.searchPath, q, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// UpdateStatus moves a ticket to the given status.
func (c *Client) UpdateStatus(ctx context.Context, ticketID int64, status Status) error {
	path := "/api/tickets/" + strconv.FormatInt(ticketID, 10) + "/status"
	q := url.Values{"status": {string(status)}}
	return c.Do(ctx, http.MethodPost, path, q, nil, nil)
}

// Assign assigns a ticket to the given user.
func (c *Client) Assign(ctx context.Context, ticketID, userID int64) error {
	path := "/api/tickets/" + strconv.FormatInt(ticketID, 10) + "/assign"
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	return c.Do(ctx, http.MethodPost, path, q, nil, nil)
}

// Verify Client implements API.
var _ API = (*Client)(nil)
