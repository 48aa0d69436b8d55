// internal/delivery/client.go
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries one id per payload, identical across its retries,
// so the collector can spot duplicates from a retry after a lost response.
const RequestIDHeader = "X-Request-ID"

const maxBodySnippet = 256

// Attempt result classes reported to the Observer.
const (
	ResultOK         = "ok"
	ResultHTTPStatus = "http_status"
	ResultTimeout    = "timeout"
	ResultNetwork    = "network"
	ResultCancelled  = "cancelled"
)

// Observer receives per-attempt and final delivery events.
type Observer interface {
	ObserveAttempt(result string, d time.Duration)
	ObserveOutcome(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string, time.Duration) {}
func (nopObserver) ObserveOutcome(string)                {}

// Config is the delivery slice of the agent configuration.
type Config struct {
	Endpoint     string
	APIKey       string
	APIKeyHeader string
	Attempts     int           // >= 1
	Delay        time.Duration // fixed, between attempts
	Timeout      time.Duration // per attempt

	// RetryClientErrors=true treats every non-200/201 status as a retryable
	// attempt failure. false turns 4xx (except 408/429) into Rejected.
	RetryClientErrors bool
}

// Client sends one payload at a time; the agent keeps at most one
// request outstanding.
type Client struct {
	cfg   Config
	http  *http.Client
	log   *slog.Logger
	obs   Observer
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithLogger(l *slog.Logger) Option     { return func(c *Client) { c.log = l } }
func WithObserver(o Observer) Option       { return func(c *Client) { c.obs = o } }

// WithSleep replaces the inter-attempt wait (tests).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("delivery: endpoint required")
	}
	if cfg.Attempts < 1 {
		return nil, fmt.Errorf("delivery: attempts must be >= 1, got %d", cfg.Attempts)
	}
	if cfg.Delay < 0 {
		return nil, fmt.Errorf("delivery: delay must be >= 0, got %v", cfg.Delay)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-Key"
	}

	c := &Client{
		cfg:   cfg,
		http:  &http.Client{},
		log:   slog.Default(),
		obs:   nopObserver{},
		sleep: sleepCtx,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Deliver POSTs the payload with bounded, fixed-delay retries.
// Cancellation is honored at attempt and sleep boundaries; a cancelled
// sequence reports ExhaustedRetries and the reading is dropped.
func (c *Client) Deliver(ctx context.Context, p Payload) Outcome {
	body, err := json.Marshal(p)
	if err != nil {
		c.log.Error("delivery_encode_failed", "err", err)
		c.obs.ObserveOutcome(Rejected.String())
		return Rejected
	}

	requestID := c.newID()
	limit := c.cfg.Attempts
	made := 0

	for attempt := 1; attempt <= limit; attempt++ {
		if ctx.Err() != nil {
			break
		}
		made = attempt

		c.log.Info("delivery_attempt",
			"attempt", attempt, "max", limit,
			"temperature", p.Temperature, "humidity", p.Humidity,
			"request_id", requestID,
		)

		start := time.Now()
		status, respBody, err := c.post(ctx, body, requestID)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			result := classify(ctx, err)
			c.obs.ObserveAttempt(result, elapsed)
			c.log.Warn("delivery_attempt_failed",
				"attempt", attempt, "max", limit, "result", result, "err", err)

		case status == http.StatusOK || status == http.StatusCreated:
			c.obs.ObserveAttempt(ResultOK, elapsed)
			c.log.Info("delivery_ok",
				"attempt", attempt, "status", status, "data_id", echoedID(respBody))
			c.obs.ObserveOutcome(Delivered.String())
			return Delivered

		default:
			c.obs.ObserveAttempt(ResultHTTPStatus, elapsed)
			c.log.Warn("delivery_attempt_failed",
				"attempt", attempt, "max", limit, "result", ResultHTTPStatus,
				"status", status, "body", snippet(respBody))

			if !c.cfg.RetryClientErrors && nonRetryable(status) {
				c.log.Error("delivery_rejected", "status", status, "attempts", attempt)
				c.obs.ObserveOutcome(Rejected.String())
				return Rejected
			}
		}

		if attempt < limit {
			c.log.Info("delivery_retry_wait", "delay", c.cfg.Delay)
			if err := c.sleep(ctx, c.cfg.Delay); err != nil {
				break
			}
		}
	}

	if ctx.Err() != nil {
		c.log.Warn("delivery_aborted", "attempts", made, "err", ctx.Err())
	} else {
		c.log.Error("delivery_exhausted", "attempts", made)
	}
	c.obs.ObserveOutcome(ExhaustedRetries.String())
	return ExhaustedRetries
}

// post performs one request/response cycle under the per-attempt timeout.
func (c *Client) post(ctx context.Context, body []byte, requestID string) (int, []byte, error) {
	actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("delivery: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, respBody, nil
}

func classify(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return ResultCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ResultTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ResultTimeout
	}
	return ResultNetwork
}

// nonRetryable: client errors that resending the same body cannot fix.
func nonRetryable(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}

// echoedID extracts the collector's data_id, informational only.
func echoedID(body []byte) any {
	var r struct {
		DataID any `json:"data_id"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil
	}
	return r.DataID
}

func snippet(b []byte) string {
	if len(b) > maxBodySnippet {
		b = b[:maxBodySnippet]
	}
	return string(bytes.ToValidUTF8(b, nil))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
