// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// SecretKey is the hex-encoded 32-byte process key used to derive the token
	// cipher. When empty, a fresh random key is generated at startup, which
	// invalidates all tokens minted by previous process instances.
	SecretKey string
	// CipherAlgorithm selects the AEAD used by the token codec
	// ("aes-gcm" or "chacha20-poly1305").
	CipherAlgorithm string

	// FetchTimeout bounds each upstream fetch; a fetch exceeding it is
	// cancelled and reported as a timeout.
	FetchTimeout time.Duration
	// FetchMaxBodyBytes caps the size of an upstream response body.
	FetchMaxBodyBytes int64
	// FetchUserAgent is the User-Agent header sent on upstream requests.
	FetchUserAgent string

	// SearchEngineURL is the query URL prefix used for free-text searches.
	SearchEngineURL string

	// RateLimitEnabled indicates whether rate limiting for the /api endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for /api rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// PresenceEnabled indicates whether the live user-count websocket is enabled.
	PresenceEnabled bool
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Token codec
		SecretKey:       env.GetString("SECRET_KEY", ""),
		CipherAlgorithm: env.GetString("CIPHER_ALGORITHM", "aes-gcm"),

		// Upstream fetch
		FetchTimeout:      env.GetDuration("FETCH_TIMEOUT_SECONDS", 15, time.Second),
		FetchMaxBodyBytes: env.GetInt64("FETCH_MAX_BODY_BYTES", 20*1024*1024),
		FetchUserAgent:    env.GetString("FETCH_USER_AGENT", "webproxy/1.0"),

		// Search
		SearchEngineURL: env.GetString("SEARCH_ENGINE_URL", "https://duckduckgo.com/?q="),

		// Rate Limiting for /api endpoints (IP-based, unauthenticated)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "webproxy"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Presence
		PresenceEnabled: env.GetBool("PRESENCE_ENABLED", true),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
