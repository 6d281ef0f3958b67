package shikimori

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"animecat/internal/logging"
)

// Candidate is a single anime returned by the Shikimori search endpoint.
// AiredOn and Kind are empty when Shikimori omits them.
type Candidate struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Russian string `json:"russian,omitempty"`
	Kind    string `json:"kind,omitempty"`
	AiredOn string `json:"aired_on,omitempty"`
}

// Searcher is the search operation the resolver depends on.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// StatusError reports a non-2xx response from Shikimori.
type StatusError struct {
	StatusCode int
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shikimori search returned %d (latency=%v)", e.StatusCode, e.Latency)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client provides access to the Shikimori anime search API.
type Client struct {
	baseURL       string
	userAgent     string
	httpClient    *http.Client
	limiter       *rate.Limiter
	retryAttempts int
	retryDelay    time.Duration
	logger        *slog.Logger
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit caps outbound requests to rps with the given burst.
// A non-positive rps disables limiting.
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

// WithRetry sets how many times a failed request is retried and the initial
// backoff between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts >= 0 {
			c.retryAttempts = attempts
		}
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "shikimori")
	}
}

// New creates a Shikimori client. Shikimori rejects anonymous clients, so a
// user agent is required.
func New(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("shikimori base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("shikimori user agent required")
	}
	client := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		userAgent:     userAgent,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		retryAttempts: 2,
		retryDelay:    500 * time.Millisecond,
		logger:        logging.NewComponentLogger(nil, "shikimori"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search queries /api/animes for query, returning at most limit candidates in
// the order Shikimori ranks them. Transport errors, 429 and 5xx responses are
// retried with exponential backoff before an error is returned.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/api/animes")
	if err != nil {
		return nil, fmt.Errorf("parse shikimori url: %w", err)
	}
	params := url.Values{}
	params.Set("search", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	endpoint.RawQuery = params.Encode()

	return retry.DoWithData(
		func() ([]Candidate, error) {
			return c.fetch(ctx, endpoint.String())
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.retryAttempts)+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying shikimori search",
				logging.String(logging.FieldQuery, query),
				logging.Int("attempt", int(n)+1),
				logging.Error(err))
		}),
	)
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]Candidate, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, retry.Unrecoverable(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("shikimori response",
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Latency: latency}
	}

	var payload []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("decode shikimori response: %w", err))
	}
	return payload, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
