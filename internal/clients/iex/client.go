// Package iex provides a client for the IEX Cloud quote API
package iex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/interfaces"
	"github.com/bobmcallan/portfoliology/internal/models"
)

const (
	DefaultBaseURL    = "https://cloud-sse.iexapis.com"
	DefaultTimeout    = 30 * time.Second
	DefaultRateLimit  = 10 // requests per second
	DefaultMaxRetries = 10
	DefaultRetryDelay = time.Second
	DefaultRetryStep  = time.Second

	maxBodySize = 1 << 20
)

var (
	// ErrRateLimited marks a QuoteError caused by exhausting the retry budget on 429 responses.
	ErrRateLimited = errors.New("rate limited")
	// ErrMalformedPayload marks a QuoteError caused by a response missing required fields.
	ErrMalformedPayload = errors.New("malformed quote payload")
)

// QuoteError is a terminal failure to obtain a quote for one symbol.
type QuoteError struct {
	StatusCode int
	Symbol     string
	Err        error
}

func (e *QuoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("IEX quote failed for %s (status: %d): %v", e.Symbol, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("IEX quote failed for %s (status: %d)", e.Symbol, e.StatusCode)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// Client implements the QuoteClient interface
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter

	maxRetries int
	retryDelay time.Duration
	retryStep  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error // injectable for testing
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the outgoing request rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryPolicy sets the 429 retry budget. The wait before retry k
// (1-based) is delay + (k-1)*step.
func WithRetryPolicy(maxRetries int, delay, step time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
		c.retryStep = step
	}
}

// NewClient creates a new IEX client
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		retryStep:  DefaultRetryStep,
		sleep:      sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetQuote retrieves the latest quote for symbol, retrying while the
// provider answers 429.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	status, body, err := c.get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	delay := c.retryDelay
	for attempt := 1; status == http.StatusTooManyRequests && attempt <= c.maxRetries; attempt++ {
		c.logger.Warn().
			Str("symbol", symbol).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("IEX rate limited, retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("quote %s: retry wait: %w", symbol, err)
		}

		status, body, err = c.get(ctx, symbol)
		if err != nil {
			return nil, err
		}
		delay += c.retryStep
	}

	switch status {
	case http.StatusOK:
		return parseQuote(symbol, body)
	case http.StatusTooManyRequests:
		return nil, &QuoteError{StatusCode: status, Symbol: symbol, Err: ErrRateLimited}
	default:
		return nil, &QuoteError{StatusCode: status, Symbol: symbol}
	}
}

// get performs a single rate-limited quote request and returns the status and body.
func (c *Client) get(ctx context.Context, symbol string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("token", c.token)
	path := fmt.Sprintf("/stable/stock/%s/quote", url.PathEscape(symbol))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("IEX API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("quote %s: failed to execute request: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("quote %s: failed to read response: %w", symbol, err)
	}

	return resp.StatusCode, body, nil
}

// parseQuote extracts the price fields. latestPrice and change are
// required numbers; changePercent may be null or missing.
func parseQuote(symbol string, body []byte) (*models.Quote, error) {
	malformed := func(format string, args ...interface{}) error {
		return &QuoteError{
			StatusCode: http.StatusOK,
			Symbol:     symbol,
			Err:        fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...)),
		}
	}

	if !gjson.ValidBytes(body) {
		return nil, malformed("invalid JSON")
	}

	fields := gjson.GetManyBytes(body, "latestPrice", "change", "changePercent")
	price, change, pct := fields[0], fields[1], fields[2]

	if price.Type != gjson.Number {
		return nil, malformed("latestPrice is %s", describe(price))
	}
	if change.Type != gjson.Number {
		return nil, malformed("change is %s", describe(change))
	}

	quote := &models.Quote{
		Symbol:      symbol,
		LatestPrice: price.Float(),
		Change:      change.Float(),
	}

	switch pct.Type {
	case gjson.Number:
		quote.ChangePercent = models.Some(pct.Float())
	case gjson.Null:
		quote.ChangePercent = models.None()
	default:
		return nil, malformed("changePercent is %s", describe(pct))
	}

	return quote, nil
}

func describe(r gjson.Result) string {
	if !r.Exists() {
		return "missing"
	}
	return r.Type.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Ensure Client implements QuoteClient
var _ interfaces.QuoteClient = (*Client)(nil)
