package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bcdservices/dashboard-api/pkg/circuitbreaker"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	"github.com/bcdservices/dashboard-api/pkg/logger"
	"github.com/bcdservices/dashboard-api/pkg/metrics"
)

const maxErrorBody = 4 << 10

type Config struct {
	BaseURL             string
	Token               string
	Timeout             time.Duration
	RatePerSecond       float64
	Burst               int
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	Interval            time.Duration
}

// Client performs JSON calls against the business backend. Calls are rate
// limited and guarded by a circuit breaker that only counts server-side
// failures.
type Client struct {
	base    *url.URL
	token   string
	http    *http.Client
	limiter *rate.Limiter
	cb      *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		base:    base,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cb = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:                "backend",
		MaxRequests:         1,
		Interval:            cfg.Interval,
		Timeout:             cfg.OpenTimeout,
		ConsecutiveFailures: cfg.ConsecutiveFailures,
		IsFailure:           countsAgainstBreaker,
		OnStateChange: func(name string, state float64) {
			c.metrics.SetBreakerState(name, state)
			c.log.Warn("backend circuit breaker changed state", "breaker", name, "state", state)
		},
	})
	return c, nil
}

// Available is false while the circuit breaker is open.
func (c *Client) Available() bool {
	return !c.cb.Open()
}

// countsAgainstBreaker is false for rejections the backend made on purpose.
func countsAgainstBreaker(err error) bool {
	code, ok := apperrors.CodeOf(err)
	if !ok {
		return true
	}
	return code != apperrors.ErrBadRequest && code != apperrors.ErrNotFound
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends body as JSON and decodes the response into out when out is
// non-nil. op names the call in logs and metrics.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.NewUnavailable("backend rate limit wait aborted", err)
	}

	start := time.Now()
	err := c.cb.Execute(func() error {
		return c.roundTrip(ctx, method, path, query, body, out)
	})
	elapsed := time.Since(start)
	c.metrics.ObserveBackendCall(op, elapsed, err)

	if errors.Is(err, circuitbreaker.ErrOpen) {
		return apperrors.NewUnavailable("backend temporarily unavailable", err)
	}
	if err != nil {
		c.log.Debug("backend call failed", "op", op, "method", method, "path", path, "duration", elapsed.String(), "error", err.Error())
		return err
	}
	c.log.Debug("backend call", "op", op, "method", method, "path", path, "duration", elapsed.String())
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternal(fmt.Errorf("encode %s %s: %w", method, path, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return apperrors.NewInternal(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUpstream("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewUpstream("invalid backend response", fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := backendMessage(raw)
	cause := fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{Code: apperrors.ErrNotFound, Message: orDefault(msg, "not found"), Err: cause}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return apperrors.NewBadRequest(orDefault(msg, "request rejected by backend"), cause)
	default:
		return apperrors.NewUpstream("backend error", cause)
	}
}

// backendMessage extracts {"message"} or {"error"} from an error body, or
// falls back to the trimmed text.
func backendMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
