package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

// HTTPConfig controls the remote catalog client.
type HTTPConfig struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultHTTPConfig returns conservative defaults for a local catalog service.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		BaseURL:         "http://localhost:8080",
		Timeout:         5 * time.Second,
		MaxRetries:      1,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// HTTPClient talks to a catalog over the /catalog/v1 JSON API.
type HTTPClient struct {
	cfg      HTTPConfig
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	observer Observer
}

// NewHTTPClient creates a remote Client guarded by a circuit breaker.
func NewHTTPClient(cfg HTTPConfig, observer Observer, logger *slog.Logger) *HTTPClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = DefaultHTTPConfig().BreakerFailures
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Client errors are the caller's fault, not the catalog's.
			return err == nil || errors.Is(err, ErrUnknownAction)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		breaker:  cb,
		observer: observer,
	}
}

// BreakerState reports the breaker state for health output.
func (c *HTTPClient) BreakerState() string {
	return c.breaker.State().String()
}

func (c *HTTPClient) PersonalizedActions(ctx context.Context, userID string, limit int) ([]*domain.ActionRecord, error) {
	path := "/catalog/v1/users/" + url.PathEscape(userID) + "/actions/personalized"
	return c.listActions(ctx, OpPersonalized, path, limit)
}

func (c *HTTPClient) PopularActions(ctx context.Context, limit int) ([]*domain.ActionRecord, error) {
	return c.listActions(ctx, OpPopular, "/catalog/v1/actions/popular", limit)
}

func (c *HTTPClient) StartAction(ctx context.Context, userID, actionID string) error {
	_, err := c.call(ctx, OpStart, http.MethodPost, c.eventPath(userID, actionID, "start"), nil)
	return err
}

func (c *HTTPClient) CompleteAction(ctx context.Context, userID, actionID string, impactReported *int, feedback string) error {
	body, err := json.Marshal(CompleteRequest{ImpactReported: impactReported, Feedback: feedback})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	_, err = c.call(ctx, OpComplete, http.MethodPost, c.eventPath(userID, actionID, "complete"), body)
	return err
}

func (c *HTTPClient) eventPath(userID, actionID, kind string) string {
	return "/catalog/v1/users/" + url.PathEscape(userID) + "/actions/" + url.PathEscape(actionID) + "/" + kind
}

func (c *HTTPClient) listActions(ctx context.Context, op, path string, limit int) ([]*domain.ActionRecord, error) {
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	data, err := c.call(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var resp ActionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding actions: %v", ErrBadResponse, err)
	}
	return resp.Actions, nil
}

// call runs one logical request through the breaker, retrying transient
// failures up to MaxRetries times.
func (c *HTTPClient) call(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	start := time.Now()
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var (
		data    []byte
		lastErr error
	)
	attempts := 1 + max(c.cfg.MaxRetries, 0)
	for i := 0; i < attempts; i++ {
		data, lastErr = c.breaker.Execute(func() ([]byte, error) {
			return c.doRequest(ctx, method, path, body)
		})
		if lastErr == nil || !retryable(lastErr) || ctx.Err() != nil {
			break
		}
	}

	err := classify(ctx, lastErr)
	c.observer.OnCallComplete(ctx, CallEvent{
		Op:        op,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, path)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d: %s", ErrBadResponse, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, ErrUnknownAction) || errors.Is(err, ErrBadResponse) {
		return false
	}
	return true
}

func classify(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return ErrCircuitOpen
	case errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, ErrUnknownAction), errors.Is(err, ErrBadResponse), errors.Is(err, ErrUnavailable):
		return err
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrCircuitOpen):
		return "CIRCUIT_OPEN"
	case errors.Is(err, ErrUnknownAction):
		return "UNKNOWN_ACTION"
	case errors.Is(err, ErrBadResponse):
		return "BAD_RESPONSE"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}
