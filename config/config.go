// Package config provides configuration management for the application.
//
// Values are resolved in order: built-in defaults, then an optional YAML file
// whose values may reference ${VAR} or ${VAR:-default}, then environment
// variables. A .env file in the working directory is loaded into the
// environment first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Rate limit store types.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{"config/config.yaml", "config.yaml"}

// Config holds the application configuration
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Groq           GroqConfig           `yaml:"groq"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Logging        LoggingConfig        `yaml:"logging"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Knowledge      KnowledgeConfig      `yaml:"knowledge"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
	// BodySizeLimit uses echo's size notation, e.g. "512K" or "1M".
	BodySizeLimit string `yaml:"body_size_limit"`
	// CORSAllowedOrigins lists browser origins allowed to call the API.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	// ForwardedHeader names the header the client key is read from.
	ForwardedHeader string `yaml:"forwarded_header"`
}

// GroqConfig holds the completion API settings
type GroqConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
	// Timeout bounds a whole completion call including the body.
	Timeout time.Duration `yaml:"timeout"`
	// ResponseHeaderTimeout bounds the wait for upstream response headers.
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`
}

// CircuitBreakerConfig holds upstream circuit breaker settings
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// RateLimitConfig holds per-client request limiting settings
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	// Store is "memory" or "redis".
	Store       string `yaml:"store"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
	// SweepInterval controls how often expired in-memory records are dropped.
	// Zero disables sweeping.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	// Format is auto, json or pretty.
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// KnowledgeConfig points at an optional replacement for the embedded
// portfolio knowledge text.
type KnowledgeConfig struct {
	File string `yaml:"file"`
}

// buildDefaultConfig returns the configuration used when nothing is set.
func buildDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "8080",
			BodySizeLimit:      "1M",
			CORSAllowedOrigins: []string{"*"},
			ForwardedHeader:    "X-Forwarded-For",
		},
		Groq: GroqConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.7,
			TopP:        0.9,
			MaxTokens:   1024,

			Timeout:               120 * time.Second,
			ResponseHeaderTimeout: 120 * time.Second,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:     true,
			MaxFailures: 5,
			Timeout:     30 * time.Second,
			Interval:    60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Requests:      30,
			Window:        60 * time.Second,
			Store:         StoreMemory,
			RedisPrefix:   "portfoliochat:ratelimit:",
			SweepInterval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Format: "auto",
			Level:  "info",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Endpoint: "/metrics",
		},
	}
}

// Load reads .env, the first config file found in DefaultConfigPaths, and
// the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return LoadFile("")
}

// LoadFile reads configuration from path (skipped when empty) and the
// environment.
func LoadFile(path string) (*Config, error) {
	cfg := buildDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandString(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must not be empty")
	}
	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("rate_limit.requests must be positive, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window)
	}
	switch c.RateLimit.Store {
	case StoreMemory:
	case StoreRedis:
		if c.RateLimit.RedisURL == "" {
			return fmt.Errorf("rate_limit.redis_url is required when rate_limit.store is redis")
		}
	default:
		return fmt.Errorf("unknown rate_limit.store %q (expected memory or redis)", c.RateLimit.Store)
	}
	if c.Groq.MaxTokens <= 0 {
		return fmt.Errorf("groq.max_tokens must be positive, got %d", c.Groq.MaxTokens)
	}
	if c.Groq.Timeout < 0 || c.Groq.ResponseHeaderTimeout < 0 {
		return fmt.Errorf("groq timeouts must not be negative")
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default} with environment values.
// A placeholder without a default whose variable is unset or empty is left
// as is.
func expandString(s string) string {
	if s == "" {
		return s
	}
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		name, hasDefault, def := parts[1], parts[2] != "", parts[3]
		if v := os.Getenv(name); v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// applyEnvOverrides applies environment variables on top of cfg.
func applyEnvOverrides(cfg *Config) error {
	setString("PORT", &cfg.Server.Port)
	setString("BODY_SIZE_LIMIT", &cfg.Server.BodySizeLimit)
	setString("FORWARDED_HEADER", &cfg.Server.ForwardedHeader)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.CORSAllowedOrigins = splitList(v)
	}

	setString("GROQ_API_KEY", &cfg.Groq.APIKey)
	setString("GROQ_BASE_URL", &cfg.Groq.BaseURL)
	setString("GROQ_MODEL", &cfg.Groq.Model)
	if err := setDuration("UPSTREAM_TIMEOUT", &cfg.Groq.Timeout); err != nil {
		return err
	}
	if err := setDuration("UPSTREAM_RESPONSE_HEADER_TIMEOUT", &cfg.Groq.ResponseHeaderTimeout); err != nil {
		return err
	}

	if err := setBool("CIRCUIT_BREAKER_ENABLED", &cfg.CircuitBreaker.Enabled); err != nil {
		return err
	}

	if err := setInt("RATE_LIMIT_REQUESTS", &cfg.RateLimit.Requests); err != nil {
		return err
	}
	if err := setDuration("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window); err != nil {
		return err
	}
	setString("RATE_LIMIT_STORE", &cfg.RateLimit.Store)
	setString("REDIS_URL", &cfg.RateLimit.RedisURL)

	setString("LOG_FORMAT", &cfg.Logging.Format)
	setString("LOG_LEVEL", &cfg.Logging.Level)

	if err := setBool("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	setString("METRICS_ENDPOINT", &cfg.Metrics.Endpoint)

	setString("KNOWLEDGE_FILE", &cfg.Knowledge.File)
	return nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

// setDuration accepts Go duration syntax or a bare number of seconds.
func setDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
