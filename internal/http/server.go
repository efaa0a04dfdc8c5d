// Package http provides the HTTP server wiring for the proxy routing surface.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/webproxy/internal/config"
	"github.com/allisson/webproxy/internal/metrics"
	"github.com/allisson/webproxy/internal/presence"
	proxyHTTP "github.com/allisson/webproxy/internal/proxy/http"
)

// Server represents the main HTTP server exposing the proxy routes.
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	server *http.Server

	pageHandler     *proxyHTTP.PageHandler
	proxyHandler    *proxyHTTP.ProxyHandler
	mediaHandler    *proxyHTTP.MediaHandler
	apiHandler      *proxyHTTP.APIHandler
	presenceHub     *presence.Hub
	metricsProvider *metrics.Provider
}

// NewServer creates a new HTTP server with all route handlers.
// presenceHub and metricsProvider may be nil when those features are disabled.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	pageHandler *proxyHTTP.PageHandler,
	proxyHandler *proxyHTTP.ProxyHandler,
	mediaHandler *proxyHTTP.MediaHandler,
	apiHandler *proxyHTTP.APIHandler,
	presenceHub *presence.Hub,
	metricsProvider *metrics.Provider,
) *Server {
	return &Server{
		config:          cfg,
		logger:          logger,
		pageHandler:     pageHandler,
		proxyHandler:    proxyHandler,
		mediaHandler:    mediaHandler,
		apiHandler:      apiHandler,
		presenceHub:     presenceHub,
		metricsProvider: metricsProvider,
	}
}

// SetupRouter builds the Gin engine with middleware and all proxy routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		s.config.CORSEnabled,
		s.config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			s.metricsProvider.MeterProvider(),
			s.config.MetricsNamespace,
		))
	}

	// Landing page and proxy routes
	router.GET("/", s.pageHandler.Index)
	router.GET("/proxy/:token", s.proxyHandler.Handle)
	router.POST("/proxy/:token", s.proxyHandler.Handle)
	router.GET("/image/:token", s.mediaHandler.Image)
	router.GET("/asset/:token", s.mediaHandler.Asset)

	// JSON API, rate limited per client IP
	api := router.Group("/api")
	if s.config.RateLimitEnabled {
		api.Use(proxyHTTP.APIRateLimitMiddleware(
			s.config.RateLimitRequestsPerSec,
			s.config.RateLimitBurst,
			s.logger,
		))
	}
	api.POST("/encrypt-url", s.apiHandler.EncryptURL)
	api.POST("/search", s.apiHandler.Search)

	// Live user-count websocket
	if s.presenceHub != nil {
		router.GET("/ws/presence", s.presenceHub.ServeWS)
	}

	// Health and readiness endpoints
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	return router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can take traffic. The proxy
// holds no external connections, so readiness tracks handler wiring only.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"codec": "ok", "fetcher": "ok"}
	if s.proxyHandler == nil || s.apiHandler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.SetupRouter()
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.ServerHost, s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // proxied fetches and websockets outlive a fixed write window
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
