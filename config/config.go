package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/gaborage/go-courier/courier"
	"github.com/gaborage/go-courier/logger"
)

// envPrefix is the prefix of environment variables read by Load, e.g.
// COURIER_CLIENT_BASEURL or COURIER_LOG_LEVEL.
const envPrefix = "COURIER_"

var validate = validator.New()

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration file (optional; empty path skips it)
// 3. Default values (lowest priority)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

// LoadBytes loads configuration from in-memory YAML on top of the defaults.
// Environment variables are not consulted.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"client.port":        0,
		"client.timeout":     "30s",
		"client.cachepolicy": "default",
		"client.maxretries":  0,
		"client.trace":       false,
		"client.rate.limit":  0.0,
		"client.rate.burst":  1,

		"log.level":     "info",
		"log.pretty":    false,
		"log.verbosity": "summary",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// NewLogger creates a logger from the log section
func NewLogger(cfg *Config) logger.Logger {
	return logger.New(cfg.Log.Level, cfg.Log.Pretty)
}

// NewClient builds a courier client from the configuration. Extra
// interceptors (typically a retry policy) run after the configured trace
// and rate limit interceptors; when maxretries is set, the whole chain is
// wrapped in a retry ceiling.
func NewClient(cfg *Config, log logger.Logger, extra ...courier.Interceptor) (*courier.Client, error) {
	var interceptors []courier.Interceptor
	if cfg.Client.Trace {
		interceptors = append(interceptors, courier.NewTraceInterceptor())
	}
	if cfg.Client.Rate.Limit > 0 {
		burst := cfg.Client.Rate.Burst
		if burst < 1 {
			burst = 1
		}
		interceptors = append(interceptors, courier.NewRateLimitInterceptor(cfg.Client.Rate.Limit, burst))
	}
	interceptors = append(interceptors, extra...)

	var interceptor courier.Interceptor
	switch len(interceptors) {
	case 0:
	case 1:
		interceptor = interceptors[0]
	default:
		interceptor = courier.NewChainInterceptor(interceptors...)
	}
	if interceptor != nil && cfg.Client.MaxRetries > 0 {
		interceptor = courier.NewMaxRetriesInterceptor(interceptor, cfg.Client.MaxRetries)
	}

	b := courier.NewBuilder(log).
		WithBaseURL(cfg.Client.BaseURL).
		WithPort(cfg.Client.Port).
		WithTimeout(cfg.Client.Timeout).
		WithCachePolicy(courier.CachePolicy(cfg.Client.CachePolicy)).
		WithVerbosity(courier.Verbosity(cfg.Log.Verbosity))
	if interceptor != nil {
		b = b.WithInterceptor(interceptor)
	}
	for key, value := range cfg.Client.Headers {
		b = b.WithDefaultHeader(key, value)
	}
	return b.Build()
}
