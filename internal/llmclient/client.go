// Package llmclient provides the base HTTP client for OpenAI-compatible completion APIs with:
// - Request marshaling/unmarshaling
// - Standardized error parsing into core.GatewayError
// - Circuit breaking (sony/gobreaker)
// - Request hooks for metrics
//
// Calls are made exactly once. Retrying is left to the caller.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"portfoliochat/internal/core"
	"portfoliochat/internal/httpclient"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// Config holds configuration for the LLM client
type Config struct {
	// ProviderName identifies the provider for error messages
	ProviderName string

	// BaseURL is the API base URL
	BaseURL string

	// CircuitBreaker is optional; nil disables breaking.
	CircuitBreaker *CircuitBreakerConfig

	Hooks Hooks
}

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration
}

// RequestInfo describes one finished upstream call.
type RequestInfo struct {
	Provider   string
	Endpoint   string
	StatusCode int // 0 when no response was received
	Duration   time.Duration
	Err        error
}

// Hooks are invoked around upstream calls. Nil funcs are skipped.
type Hooks struct {
	OnRequestEnd func(info RequestInfo)
}

// DefaultConfig returns default client configuration
func DefaultConfig(providerName, baseURL string) Config {
	return Config{
		ProviderName: providerName,
		BaseURL:      baseURL,
		CircuitBreaker: &CircuitBreakerConfig{
			MaxFailures: defaultCBMaxFailures,
			Timeout:     defaultCBTimeout,
			Interval:    defaultCBInterval,
		},
	}
}

// HeaderSetter is a function that sets headers on an HTTP request
type HeaderSetter func(req *http.Request)

// Client is a base HTTP client for LLM providers
type Client struct {
	httpClient   *http.Client
	config       Config
	headerSetter HeaderSetter
	breaker      *gobreaker.CircuitBreaker[*Response]
}

// New creates a new LLM client with the given configuration
func New(config Config, headerSetter HeaderSetter) *Client {
	return NewWithHTTPClient(httpclient.NewHTTPClient(nil), config, headerSetter)
}

// NewWithHTTPClient creates a new LLM client with a custom HTTP client
func NewWithHTTPClient(httpClient *http.Client, config Config, headerSetter HeaderSetter) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:   httpClient,
		config:       config,
		headerSetter: headerSetter,
	}
	if config.CircuitBreaker != nil {
		c.breaker = newBreaker(config.ProviderName, *config.CircuitBreaker)
	}
	return c
}

func newBreaker(name string, cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[*Response] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	return gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "upstream:" + name,
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: countsAsSuccess,
	})
}

// countsAsSuccess keeps client-side upstream errors (bad request, bad key)
// from tripping the breaker. Transport errors, 429 and 5xx count as failures.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var gwErr *core.GatewayError
	if errors.As(err, &gwErr) {
		s := gwErr.UpstreamStatus
		return s >= 400 && s < 500 && s != http.StatusTooManyRequests
	}
	return false
}

// BreakerState reports the circuit state, or "disabled" without a breaker.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Request represents an HTTP request to be made
type Request struct {
	Method   string
	Endpoint string
	Body     interface{} // Will be JSON marshaled if not nil
	Headers  map[string]string
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
}

// Do executes a request once, then unmarshals the response
func (c *Client) Do(ctx context.Context, req Request, result interface{}) error {
	resp, err := c.DoRaw(ctx, req)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return core.NewUpstreamError(c.config.ProviderName, "failed to unmarshal response: "+err.Error(), err)
		}
	}

	return nil
}

// DoRaw executes a request once through the circuit breaker, returning the raw response
func (c *Client) DoRaw(ctx context.Context, req Request) (*Response, error) {
	if c.breaker == nil {
		return c.doRequest(ctx, req)
	}

	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.doRequest(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, core.NewUpstreamError(c.config.ProviderName,
			"circuit breaker is open - provider temporarily unavailable", err)
	}
	return resp, err
}

// doRequest executes a single HTTP request and classifies the outcome
func (c *Client) doRequest(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		if c.config.Hooks.OnRequestEnd == nil {
			return
		}
		info := RequestInfo{
			Provider: c.config.ProviderName,
			Endpoint: req.Endpoint,
			Duration: time.Since(start),
			Err:      err,
		}
		var gwErr *core.GatewayError
		switch {
		case resp != nil:
			info.StatusCode = resp.StatusCode
		case errors.As(err, &gwErr):
			info.StatusCode = gwErr.UpstreamStatus
		}
		c.config.Hooks.OnRequestEnd(info)
	}()

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewUpstreamError(c.config.ProviderName, "failed to send request: "+err.Error(), err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, core.NewUpstreamError(c.config.ProviderName, "failed to read response: "+err.Error(), err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, core.ParseProviderError(c.config.ProviderName, httpResp.StatusCode, body, nil)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
	}, nil
}

// buildRequest creates an HTTP request from a Request
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := c.config.BaseURL + req.Endpoint

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, core.NewUpstreamError(c.config.ProviderName, "failed to marshal request", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, core.NewUpstreamError(c.config.ProviderName, "failed to create request", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.headerSetter != nil {
		c.headerSetter(httpReq)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}
