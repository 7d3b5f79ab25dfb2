// Package groq provides the Groq completion API client used as the chat upstream.
package groq

import (
	"context"
	"net/http"

	"portfoliochat/internal/core"
	"portfoliochat/internal/llmclient"
)

const (
	providerName = "groq"

	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
)

// Options configures a Groq provider.
type Options struct {
	APIKey  string
	BaseURL string

	// CircuitBreaker is optional; nil disables breaking.
	CircuitBreaker *llmclient.CircuitBreakerConfig
	Hooks          llmclient.Hooks
}

// Provider implements core.Provider for Groq
type Provider struct {
	client *llmclient.Client
	apiKey string
}

var _ core.Provider = (*Provider)(nil)

// New creates a new Groq provider.
func New(opts Options) *Provider {
	return NewWithHTTPClient(opts, nil)
}

// NewWithHTTPClient creates a new Groq provider with a custom HTTP client.
// If httpClient is nil, the shared upstream client from httpclient is used.
func NewWithHTTPClient(opts Options, httpClient *http.Client) *Provider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	p := &Provider{apiKey: opts.APIKey}
	cfg := llmclient.Config{
		ProviderName:   providerName,
		BaseURL:        baseURL,
		CircuitBreaker: opts.CircuitBreaker,
		Hooks:          opts.Hooks,
	}
	if httpClient == nil {
		p.client = llmclient.New(cfg, p.setHeaders)
	} else {
		p.client = llmclient.NewWithHTTPClient(httpClient, cfg, p.setHeaders)
	}
	return p
}

// Name implements core.Provider.
func (p *Provider) Name() string { return providerName }

// Configured implements core.Provider.
func (p *Provider) Configured() bool { return p.apiKey != "" }

// BreakerState reports the upstream circuit state.
func (p *Provider) BreakerState() string { return p.client.BreakerState() }

// setHeaders sets the required headers for Groq API requests
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	if requestID := core.GetRequestID(req.Context()); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
}

// ChatCompletion sends a chat completion request to Groq
func (p *Provider) ChatCompletion(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	if !p.Configured() {
		return nil, core.NewMisconfiguredError("API key not configured. Please add GROQ_API_KEY to environment variables.")
	}

	var resp core.ChatResponse
	err := p.client.Do(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return &resp, nil
}
