package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/webproxy/internal/codec"
	"github.com/allisson/webproxy/internal/httputil"
	"github.com/allisson/webproxy/internal/metrics"
	"github.com/allisson/webproxy/internal/proxy/http/dto"
	"github.com/allisson/webproxy/internal/rewrite"
	"github.com/allisson/webproxy/internal/search"
	customValidation "github.com/allisson/webproxy/internal/validation"
)

// APIHandler serves the JSON API used by the landing page and the injected
// overlay: minting tokens for explicit URLs and resolving search queries.
type APIHandler struct {
	codec           *codec.Codec
	resolver        *search.Resolver
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewAPIHandler creates a new API handler with required dependencies.
func NewAPIHandler(
	c *codec.Codec,
	resolver *search.Resolver,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		codec:           c,
		resolver:        resolver,
		businessMetrics: businessMetrics,
		logger:          logger,
	}
}

// EncryptURL mints a proxy token for an absolute URL.
// POST /api/encrypt-url - Returns 200 OK with {"encrypted": token},
// 400 on a missing or non-http(s) URL.
func (h *APIHandler) EncryptURL(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	var req dto.EncryptURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.codec.Encode(req.URL)
	if err != nil {
		h.businessMetrics.RecordOperation(ctx, "api", "encrypt_url", "error")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.businessMetrics.RecordOperation(ctx, "api", "encrypt_url", "success")
	h.businessMetrics.RecordDuration(ctx, "api", "encrypt_url", time.Since(start), "success")
	c.JSON(http.StatusOK, dto.EncryptURLResponse{Encrypted: token})
}

// Search resolves a free-form query and mints a proxy route for it.
// POST /api/search - Returns 200 OK with {"url": "/proxy/" + token}.
func (h *APIHandler) Search(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	destination, err := h.resolver.Resolve(req.Query)
	if err != nil {
		h.businessMetrics.RecordOperation(ctx, "api", "search", "error")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	token, err := h.codec.Encode(destination)
	if err != nil {
		h.businessMetrics.RecordOperation(ctx, "api", "search", "error")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.businessMetrics.RecordOperation(ctx, "api", "search", "success")
	h.businessMetrics.RecordDuration(ctx, "api", "search", time.Since(start), "success")
	c.JSON(http.StatusOK, dto.SearchResponse{URL: rewrite.RoutePrefixProxy + token})
}
