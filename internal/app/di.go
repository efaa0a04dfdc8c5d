// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/webproxy/internal/codec"
	"github.com/allisson/webproxy/internal/config"
	"github.com/allisson/webproxy/internal/fetch"
	"github.com/allisson/webproxy/internal/http"
	"github.com/allisson/webproxy/internal/metrics"
	"github.com/allisson/webproxy/internal/presence"
	proxyHTTP "github.com/allisson/webproxy/internal/proxy/http"
	"github.com/allisson/webproxy/internal/rewrite"
	"github.com/allisson/webproxy/internal/search"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger

	// Core components
	codec          *codec.Codec
	rewriter       *rewrite.Rewriter
	fetcher        *fetch.Fetcher
	searchResolver *search.Resolver
	presenceHub    *presence.Hub

	// Observability
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	codecInit           sync.Once
	rewriterInit        sync.Once
	fetcherInit         sync.Once
	searchResolverInit  sync.Once
	presenceHubInit     sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Codec returns the token codec.
// A misconfigured process key is fatal here: the codec is the root dependency
// of every route, so startup must abort rather than run with a broken cipher.
func (c *Container) Codec() (*codec.Codec, error) {
	c.codecInit.Do(func() {
		tokenCodec, err := c.initCodec()
		if err != nil {
			c.initErrors["codec"] = err
			return
		}
		c.codec = tokenCodec
	})
	if storedErr, exists := c.initErrors["codec"]; exists {
		return nil, storedErr
	}
	return c.codec, nil
}

// Rewriter returns the document rewriter.
func (c *Container) Rewriter() (*rewrite.Rewriter, error) {
	c.rewriterInit.Do(func() {
		tokenCodec, err := c.Codec()
		if err != nil {
			c.initErrors["rewriter"] = fmt.Errorf("failed to get codec for rewriter: %w", err)
			return
		}
		c.rewriter = rewrite.NewRewriter(tokenCodec, c.Logger())
	})
	if storedErr, exists := c.initErrors["rewriter"]; exists {
		return nil, storedErr
	}
	return c.rewriter, nil
}

// Fetcher returns the upstream fetch client.
func (c *Container) Fetcher() *fetch.Fetcher {
	c.fetcherInit.Do(func() {
		c.fetcher = fetch.New(c.config, c.Logger())
	})
	return c.fetcher
}

// SearchResolver returns the search query resolver.
func (c *Container) SearchResolver() *search.Resolver {
	c.searchResolverInit.Do(func() {
		c.searchResolver = search.NewResolver(c.config, c.Logger())
	})
	return c.searchResolver
}

// PresenceHub returns the live user-count hub, or nil when presence is disabled.
func (c *Container) PresenceHub() *presence.Hub {
	c.presenceHubInit.Do(func() {
		if !c.config.PresenceEnabled {
			return
		}
		c.presenceHub = presence.NewHub(c.Logger())
	})
	return c.presenceHub
}

// MetricsProvider returns the metrics provider instance, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op
// implementation is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to get metrics provider: %w", err)
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = fmt.Errorf("failed to get metrics provider: %w", err)
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initCodec derives the token codec from the configured process key.
func (c *Container) initCodec() (*codec.Codec, error) {
	key, err := codec.LoadKey(c.config.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load process key: %w", err)
	}

	if c.config.SecretKey == "" {
		c.Logger().Warn("no SECRET_KEY configured, generated a random process key; " +
			"tokens will not survive a restart")
	}

	tokenCodec, err := codec.NewWithKey(key, c.config.CipherAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	return tokenCodec, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	tokenCodec, err := c.Codec()
	if err != nil {
		return nil, fmt.Errorf("failed to get codec for http server: %w", err)
	}

	rewriter, err := c.Rewriter()
	if err != nil {
		return nil, fmt.Errorf("failed to get rewriter for http server: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	fetcher := c.Fetcher()

	server := http.NewServer(
		c.config,
		logger,
		proxyHTTP.NewPageHandler(logger),
		proxyHTTP.NewProxyHandler(tokenCodec, fetcher, rewriter, businessMetrics, logger),
		proxyHTTP.NewMediaHandler(tokenCodec, fetcher, rewriter, businessMetrics, logger),
		proxyHTTP.NewAPIHandler(tokenCodec, c.SearchResolver(), businessMetrics, logger),
		c.PresenceHub(),
		metricsProvider,
	)

	return server, nil
}
