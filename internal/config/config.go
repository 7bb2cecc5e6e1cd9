// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Stats    StatsConfig
	Cache    CacheConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including in-flight computations (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// StatsConfig holds column statistics settings.
type StatsConfig struct {
	// DefaultDelimiter applies when a request names none (default: ",")
	DefaultDelimiter string `env:"STATS_DEFAULT_DELIMITER" default:","`

	// DefaultEncoding applies when a request names none (default: utf-8)
	DefaultEncoding string `env:"STATS_DEFAULT_ENCODING" default:"utf-8"`

	// MaxFileSize is the largest accepted upload in bytes (default: 100MB)
	MaxFileSize int64 `env:"STATS_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the number of computations allowed at once (default: 5)
	MaxConcurrent int `env:"STATS_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for a computation slot (default: 30s)
	MaxWaitTime time.Duration `env:"STATS_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single computation (default: 2m)
	Timeout time.Duration `env:"STATS_TIMEOUT" default:"2m"`

	// TempDir is where uploads are spooled (default: OS temp dir)
	TempDir string `env:"STATS_TEMP_DIR"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	// Enabled turns the in-memory result cache on (default: true)
	Enabled bool `env:"CACHE_ENABLED" default:"true"`

	// MaxEntries is the approximate number of cached reports (default: 1024)
	MaxEntries int64 `env:"CACHE_MAX_ENTRIES" default:"1024"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey rejects /api requests without a valid X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
