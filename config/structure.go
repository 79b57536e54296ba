package config

import (
	"time"
)

// Config is the root configuration of a courier client.
type Config struct {
	Client ClientConfig `koanf:"client"`
	Log    LogConfig    `koanf:"log"`
}

// ClientConfig configures the HTTP client itself.
type ClientConfig struct {
	BaseURL     string            `koanf:"baseurl" validate:"required,url"`
	Port        int               `koanf:"port" validate:"gte=0,lte=65535"`
	Timeout     time.Duration     `koanf:"timeout" validate:"gte=0"`
	CachePolicy string            `koanf:"cachepolicy" validate:"oneof=default no-cache no-store"`
	MaxRetries  int               `koanf:"maxretries" validate:"gte=0"`
	Trace       bool              `koanf:"trace"`
	Rate        RateConfig        `koanf:"rate"`
	Headers     map[string]string `koanf:"headers"`
}

// RateConfig bounds the outgoing request rate. A zero limit disables rate
// limiting entirely.
type RateConfig struct {
	Limit float64 `koanf:"limit" validate:"gte=0"`
	Burst int     `koanf:"burst" validate:"gte=0"`
}

// LogConfig configures the client logger and per-request logging.
type LogConfig struct {
	Level     string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty    bool   `koanf:"pretty"`
	Verbosity string `koanf:"verbosity" validate:"oneof=off summary verbose"`
}
