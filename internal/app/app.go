// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the portfolio chat server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"portfoliochat/config"
	"portfoliochat/internal/chat"
	"portfoliochat/internal/fallback"
	"portfoliochat/internal/httpclient"
	"portfoliochat/internal/llmclient"
	"portfoliochat/internal/observability"
	"portfoliochat/internal/prompt"
	"portfoliochat/internal/providers/groq"
	"portfoliochat/internal/ratelimit"
	"portfoliochat/internal/server"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	store    ratelimit.Store
	limiter  *ratelimit.Limiter
	provider *groq.Provider
	chat     *chat.Service
	server   *server.Server

	stopJanitor context.CancelFunc
	janitorDone chan struct{}

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		config: cfg,
		logger: logger,
	}

	knowledge, err := prompt.LoadKnowledge(cfg.Knowledge.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge: %w", err)
	}

	store, err := newStore(ctx, cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rate limit store: %w", err)
	}
	app.store = store

	limiter, err := ratelimit.New(store, ratelimit.Config{
		Limit:  cfg.RateLimit.Requests,
		Window: cfg.RateLimit.Window,
	})
	if err != nil {
		closeErr := store.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to initialize rate limiter: %w (also: store close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	app.limiter = limiter

	app.provider = groq.NewWithHTTPClient(groq.Options{
		APIKey:         cfg.Groq.APIKey,
		BaseURL:        cfg.Groq.BaseURL,
		CircuitBreaker: breakerConfig(cfg.CircuitBreaker),
		Hooks:          hooks(cfg.Metrics),
	}, upstreamHTTPClient(cfg.Groq))

	chatOpts := []chat.Option{chat.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		chatOpts = append(chatOpts, chat.WithOutcomeHook(observability.RecordChatOutcome))
	}
	app.chat, err = chat.NewService(app.provider, limiter, prompt.NewBuilder(knowledge), chat.ModelParams{
		Model:       cfg.Groq.Model,
		Temperature: cfg.Groq.Temperature,
		TopP:        cfg.Groq.TopP,
		MaxTokens:   cfg.Groq.MaxTokens,
	}, chatOpts...)
	if err != nil {
		closeErr := store.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to initialize chat service: %w (also: store close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}

	app.server = server.New(app.chat, fallback.NewDefault(), &server.Config{
		BodySizeLimit:      cfg.Server.BodySizeLimit,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		ForwardedHeader:    cfg.Server.ForwardedHeader,
		MetricsEnabled:     cfg.Metrics.Enabled,
		MetricsEndpoint:    cfg.Metrics.Endpoint,
		Logger:             logger,
	})

	if mem, ok := store.(*ratelimit.MemoryStore); ok && cfg.RateLimit.SweepInterval > 0 {
		janitorCtx, cancel := context.WithCancel(context.Background())
		app.stopJanitor = cancel
		app.janitorDone = make(chan struct{})
		go func() {
			defer close(app.janitorDone)
			mem.RunJanitor(janitorCtx, cfg.RateLimit.SweepInterval)
		}()
	}

	app.logStartupInfo()
	return app, nil
}

func newStore(ctx context.Context, cfg config.RateLimitConfig) (ratelimit.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		return ratelimit.NewRedisStore(ctx, ratelimit.RedisConfig{
			URL:    cfg.RedisURL,
			Prefix: cfg.RedisPrefix,
		})
	case config.StoreMemory, "":
		return ratelimit.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown rate limit store %q", cfg.Store)
	}
}

func breakerConfig(cfg config.CircuitBreakerConfig) *llmclient.CircuitBreakerConfig {
	if !cfg.Enabled {
		return nil
	}
	return &llmclient.CircuitBreakerConfig{
		MaxFailures: cfg.MaxFailures,
		Timeout:     cfg.Timeout,
		Interval:    cfg.Interval,
	}
}

func upstreamHTTPClient(cfg config.GroqConfig) *http.Client {
	cc := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		cc.Timeout = cfg.Timeout
	}
	if cfg.ResponseHeaderTimeout > 0 {
		cc.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout
	}
	return httpclient.NewHTTPClient(&cc)
}

func hooks(cfg config.MetricsConfig) llmclient.Hooks {
	if !cfg.Enabled {
		return llmclient.Hooks{}
	}
	return observability.NewPrometheusHooks()
}

// Handler returns the HTTP handler, for tests.
func (a *App) Handler() http.Handler {
	return a.server
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	a.logger.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			a.logger.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order:
// the HTTP server first, then the janitor, then the rate limit store.
//
// Shutdown is idempotent; after the first call, subsequent calls are no-ops.
// It attempts every step and returns a joined error if any step fails.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	a.logger.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.stopJanitor != nil {
		a.stopJanitor()
		select {
		case <-a.janitorDone:
		case <-ctx.Done():
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("rate limit store close error", "error", err)
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	if !a.provider.Configured() {
		a.logger.Warn("GROQ_API_KEY not set - chat requests will fail until it is configured",
			"recommendation", "set GROQ_API_KEY in the environment or .env file")
	} else {
		a.logger.Info("upstream configured",
			"provider", a.provider.Name(),
			"model", a.chat.Model(),
			"base_url", cfg.Groq.BaseURL,
			"timeout", cfg.Groq.Timeout,
		)
	}

	a.logger.Info("rate limiting configured",
		"store", cfg.RateLimit.Store,
		"requests", a.limiter.Limit(),
		"window", a.limiter.Window(),
	)

	if cfg.CircuitBreaker.Enabled {
		a.logger.Info("circuit breaker enabled",
			"max_failures", cfg.CircuitBreaker.MaxFailures,
			"timeout", cfg.CircuitBreaker.Timeout,
			"state", a.provider.BreakerState(),
		)
	} else {
		a.logger.Info("circuit breaker disabled")
	}

	if cfg.Metrics.Enabled {
		a.logger.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		a.logger.Info("prometheus metrics disabled")
	}
}
