package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dgallagher/wxjournal/internal/logger"
	"github.com/dgallagher/wxjournal/internal/wxerrors"
)

// DefaultBaseURL is the Visual Crossing timeline endpoint.
const DefaultBaseURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

var (
	errRateLimited = errors.New("rate limited by weather api")
	errServerError = errors.New("weather api server error")
)

// Doer executes HTTP requests. *http.Client satisfies it; tests substitute
// a counting fake.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// BackoffConfig controls the bounded retry behaviour for transient
// failures within a single fetch.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client fetches day observations from Visual Crossing.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient Doer
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	backoff    BackoffConfig
	log        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP executor.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

// WithBaseURL overrides the API endpoint; tests point it at a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithBackoff overrides the retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(c *Client) { c.backoff = b }
}

// NewClient creates a Visual Crossing client.
func NewClient(apiKey string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "visualcrossing",
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}),
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		log: log.Named("weather-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// timelineResponse is the subset of the API payload we consume.
type timelineResponse struct {
	Days []Observation `json:"days"`
}

// DayObservation fetches the single-day observation for location on day.
// Exactly one observation record is consumed: days[0] of the [day, day]
// range.
func (c *Client) DayObservation(ctx context.Context, location string, day time.Time) (*Observation, error) {
	dateStr := day.Format("2006-01-02")
	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, url.PathEscape(location), dateStr, dateStr)

	query := url.Values{}
	query.Set("unitGroup", "us")
	query.Set("include", "days")
	query.Set("key", c.apiKey)
	query.Set("contentType", "json")
	requestURL := endpoint + "?" + query.Encode()

	c.log.Debug("fetching day observation",
		zap.String("location", location), zap.String("date", dateStr))

	resp, err := c.doWithResilience(ctx, requestURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload timelineResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &wxerrors.ParseError{Err: fmt.Errorf("decoding timeline response: %w", err)}
	}
	if len(payload.Days) == 0 {
		return nil, &wxerrors.ParseError{Err: errors.New("timeline response has no days")}
	}
	return &payload.Days[0], nil
}

// doWithResilience executes the GET behind the rate limiter and circuit
// breaker, retrying transient failures with exponential backoff.
func (c *Client) doWithResilience(ctx context.Context, requestURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &wxerrors.NetworkError{URL: requestURL, Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, &wxerrors.NetworkError{URL: requestURL, Err: err}
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			resp, execErr := c.httpClient.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				_ = resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				_ = resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode != http.StatusOK:
				code := resp.StatusCode
				_ = resp.Body.Close()
				return nil, &wxerrors.NetworkError{URL: requestURL, StatusCode: code}
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &wxerrors.NetworkError{URL: requestURL, Err: err}
		}
		var netErr *wxerrors.NetworkError
		if errors.As(err, &netErr) {
			// Non-retryable status (auth failure, bad location).
			return nil, netErr
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return nil, &wxerrors.NetworkError{URL: requestURL, Err: lastErr}
		}

		delay := c.backoff.InitialInterval << attempt
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}
		c.log.Debug("retrying after transient failure", zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return nil, &wxerrors.NetworkError{URL: requestURL, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
}
