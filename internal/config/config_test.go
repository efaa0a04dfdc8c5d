package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.SecretKey)
	assert.Equal(t, "aes-gcm", cfg.CipherAlgorithm)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(20*1024*1024), cfg.FetchMaxBodyBytes)
	assert.Equal(t, "webproxy/1.0", cfg.FetchUserAgent)
	assert.Equal(t, "https://duckduckgo.com/?q=", cfg.SearchEngineURL)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 10.0, cfg.RateLimitRequestsPerSec)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.CORSEnabled)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "webproxy", cfg.MetricsNamespace)
	assert.Equal(t, 8081, cfg.MetricsPort)
	assert.True(t, cfg.PresenceEnabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CIPHER_ALGORITHM", "chacha20-poly1305")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "5")
	t.Setenv("SEARCH_ENGINE_URL", "https://www.startpage.com/sp/search?query=")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("PRESENCE_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "chacha20-poly1305", cfg.CipherAlgorithm)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "https://www.startpage.com/sp/search?query=", cfg.SearchEngineURL)
	assert.False(t, cfg.RateLimitEnabled)
	assert.False(t, cfg.PresenceEnabled)
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{logLevel: "debug", want: "debug"},
		{logLevel: "info", want: "release"},
		{logLevel: "warn", want: "release"},
		{logLevel: "error", want: "release"},
		{logLevel: "unknown", want: "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, cfg.GetGinMode())
		})
	}
}
