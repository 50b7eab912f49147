package coinlore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://api.coinlore.com/"
	DefaultStart   = 0
	DefaultLimit   = 100

	tickersPath = "api/tickers/"
)

// FetchError is returned for every way a fetch can fail: transport, status
// or decoding. Message is what the screen shows.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(err error, format string, args ...any) *FetchError {
	return &FetchError{Message: fmt.Sprintf(format, args...), Err: err}
}

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds a whole request. Zero keeps the http.Client default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client for the CoinLore REST API rooted at baseURL.
// An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q needs a scheme and host", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TickersURL is the request URL for one page.
func (c *Client) TickersURL(start, limit int) string {
	u := c.baseURL.JoinPath(tickersPath)
	// The API redirects without the trailing slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = "start=" + strconv.Itoa(start) + "&limit=" + strconv.Itoa(limit)
	return u.String()
}

// Fetch downloads one page of tickers. It makes exactly one request.
func (c *Client) Fetch(ctx context.Context, start, limit int) (*TickerListResponse, error) {
	if start < 0 {
		return nil, fetchErr(nil, "invalid start %d: must be >= 0", start)
	}
	if limit <= 0 {
		return nil, fetchErr(nil, "invalid limit %d: must be > 0", limit)
	}

	endpoint := c.TickersURL(start, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fetchErr(err, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.log.Debug().Str("url", endpoint).Msg("fetching tickers")
	began := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", endpoint).Msg("ticker request failed")
		if errors.Is(err, context.Canceled) {
			return nil, fetchErr(err, "request canceled")
		}
		return nil, fetchErr(err, "HTTP request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchErr(err, "body read error: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Str("url", endpoint).Msg("ticker request rejected")
		return nil, fetchErr(nil, "API error: %s", resp.Status)
	}

	var out TickerListResponse
	if err := json.Unmarshal(body, &out); err != nil {
		c.log.Warn().Err(err).Int("bytes", len(body)).Msg("ticker payload rejected")
		return nil, fetchErr(err, "JSON parse error: %v", err)
	}

	c.log.Debug().
		Int("tickers", len(out.Data)).
		Dur("took", time.Since(began)).
		Msg("tickers fetched")
	return &out, nil
}
