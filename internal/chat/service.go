// Package chat implements the portfolio chat flow: credential check, rate
// limiting, message validation, prompt assembly and the upstream call.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"portfoliochat/internal/core"
	"portfoliochat/internal/prompt"
	"portfoliochat/internal/ratelimit"
)

// Messages returned to callers.
const (
	MsgMisconfigured  = "API key not configured. Please add GROQ_API_KEY to environment variables."
	MsgRateLimited    = "Rate limit exceeded. Please wait a moment before sending more messages."
	MsgInvalidMessage = "Invalid message format"
	MsgUpstreamFailed = "Failed to generate response. Please try again."
	MsgEmptyResponse  = "I apologize, but I couldn't generate a response. Please try again."
)

// Default upstream sampling parameters.
const (
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 1024
)

// Request is the body of a chat call.
type Request struct {
	Message             string         `json:"message"`
	ConversationHistory []core.Message `json:"conversationHistory,omitempty"`
}

// Response is a successful chat reply.
type Response struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

// Outcome classifies a handled request for metrics.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeFallback       Outcome = "fallback"
	OutcomeInvalidRequest Outcome = "invalid_request"
	OutcomeRateLimited    Outcome = "rate_limited"
	OutcomeMisconfigured  Outcome = "misconfigured"
	OutcomeUpstreamError  Outcome = "upstream_error"
)

// ModelParams are the sampling settings sent with every completion.
type ModelParams struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// DefaultModelParams returns the stock sampling settings.
func DefaultModelParams() ModelParams {
	return ModelParams{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Service handles chat requests.
type Service struct {
	provider core.Provider
	limiter  *ratelimit.Limiter
	builder  *prompt.Builder
	params   ModelParams
	logger   *slog.Logger
	observe  func(Outcome)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOutcomeHook registers a callback invoked once per handled request.
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(s *Service) {
		s.observe = fn
	}
}

// NewService creates a chat Service.
func NewService(provider core.Provider, limiter *ratelimit.Limiter, builder *prompt.Builder, params ModelParams, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("prompt builder is required")
	}
	defaults := DefaultModelParams()
	if params.Model == "" {
		params.Model = defaults.Model
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = defaults.MaxTokens
	}

	s := &Service{
		provider: provider,
		limiter:  limiter,
		builder:  builder,
		params:   params,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Model returns the configured model id.
func (s *Service) Model() string { return s.params.Model }

// Configured reports whether the upstream credential is present.
func (s *Service) Configured() bool { return s.provider.Configured() }

// breakerReporter is implemented by providers with a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// UpstreamState reports the upstream circuit state: closed, half-open,
// open, or disabled when the provider has no breaker.
func (s *Service) UpstreamState() string {
	if r, ok := s.provider.(breakerReporter); ok {
		return r.BreakerState()
	}
	return "disabled"
}

// Handle runs one chat turn for the caller identified by clientKey.
// Errors are *core.GatewayError values.
func (s *Service) Handle(ctx context.Context, clientKey string, req *Request) (*Response, error) {
	resp, outcome, err := s.handle(ctx, clientKey, req)
	if s.observe != nil {
		s.observe(outcome)
	}
	return resp, err
}

func (s *Service) handle(ctx context.Context, clientKey string, req *Request) (*Response, Outcome, error) {
	if !s.provider.Configured() {
		return nil, OutcomeMisconfigured, core.NewMisconfiguredError(MsgMisconfigured)
	}

	if clientKey == "" {
		clientKey = ratelimit.AnonymousKey
	}
	decision, err := s.limiter.Allow(ctx, clientKey)
	if err != nil {
		// store outage admits the request
		s.logger.Warn("rate limit check failed, admitting request",
			"client", clientKey,
			"request_id", core.GetRequestID(ctx),
			"error", err,
		)
	} else if !decision.Allowed {
		retryAfter := decision.RetryAfter(s.limiter.Now())
		return nil, OutcomeRateLimited, core.NewRateLimitError(MsgRateLimited, retryAfter)
	}

	if req == nil || strings.TrimSpace(req.Message) == "" {
		return nil, OutcomeInvalidRequest, core.NewInvalidRequestError(MsgInvalidMessage, nil)
	}

	temperature := s.params.Temperature
	topP := s.params.TopP
	maxTokens := s.params.MaxTokens
	upstreamReq := &core.ChatRequest{
		Model:       s.params.Model,
		Messages:    s.builder.Build(req.ConversationHistory, req.Message),
		Temperature: &temperature,
		TopP:        &topP,
		MaxTokens:   &maxTokens,
		Stream:      false,
	}

	completion, err := s.provider.ChatCompletion(ctx, upstreamReq)
	if err != nil {
		var gwErr *core.GatewayError
		if errors.As(err, &gwErr) && gwErr.Type == core.ErrorTypeMisconfigured {
			return nil, OutcomeMisconfigured, gwErr
		}
		s.logger.Error("upstream completion failed",
			"provider", s.provider.Name(),
			"client", clientKey,
			"request_id", core.GetRequestID(ctx),
			"error", err,
		)
		return nil, OutcomeUpstreamError, core.NewUpstreamError(s.provider.Name(), MsgUpstreamFailed, err)
	}

	content := completion.Content()
	if content == "" {
		return &Response{Response: MsgEmptyResponse, Model: s.params.Model}, OutcomeFallback, nil
	}
	return &Response{Response: content, Model: s.params.Model}, OutcomeOK, nil
}
