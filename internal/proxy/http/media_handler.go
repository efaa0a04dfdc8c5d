package http

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/webproxy/internal/codec"
	"github.com/allisson/webproxy/internal/fetch"
	"github.com/allisson/webproxy/internal/metrics"
	"github.com/allisson/webproxy/internal/rewrite"
)

// mediaCacheControl is the cache policy applied to proxied images.
const mediaCacheControl = "public, max-age=3600"

// transparentPixelGIF is a 1x1 transparent GIF served when an image token
// cannot be decoded or its destination cannot be fetched, so a rewritten page
// never shows broken-image icons.
var transparentPixelGIF, _ = base64.StdEncoding.DecodeString(
	"R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7",
)

// MediaHandler serves the image and asset routes. Both fail quietly: images
// degrade to a transparent placeholder and assets to an empty 404, keeping
// broken references from disrupting the page layout.
type MediaHandler struct {
	codec           *codec.Codec
	fetcher         *fetch.Fetcher
	rewriter        *rewrite.Rewriter
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewMediaHandler creates a new media handler with required dependencies.
func NewMediaHandler(
	c *codec.Codec,
	fetcher *fetch.Fetcher,
	rewriter *rewrite.Rewriter,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *MediaHandler {
	return &MediaHandler{
		codec:           c,
		fetcher:         fetcher,
		rewriter:        rewriter,
		businessMetrics: businessMetrics,
		logger:          logger,
	}
}

// Image relays a proxied image.
// GET /image/:token - Streams the fetched bytes unchanged with the upstream
// Content-Type and an hour of cache. Any failure yields the transparent
// placeholder instead of an error response.
func (h *MediaHandler) Image(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	destination, err := h.codec.Decode(c.Param("token"))
	if err != nil {
		h.businessMetrics.RecordOperation(ctx, "proxy", "image_fetch", "error")
		h.servePlaceholder(c)
		return
	}

	result, err := h.fetcher.Fetch(ctx, destination, fetch.Options{Header: c.Request.Header})
	if err != nil {
		h.logger.Debug("image fetch failed", slog.Any("error", err))
		h.businessMetrics.RecordOperation(ctx, "proxy", "image_fetch", "error")
		h.servePlaceholder(c)
		return
	}

	c.Header("Cache-Control", mediaCacheControl)
	c.Data(result.StatusCode, contentTypeOrDefault(result.ContentType, "application/octet-stream"), result.Body)

	h.businessMetrics.RecordOperation(ctx, "proxy", "image_fetch", "success")
	h.businessMetrics.RecordDuration(ctx, "proxy", "image_fetch", time.Since(start), "success")
}

// Asset relays a proxied stylesheet or script.
// GET /asset/:token - CSS bodies are rewritten against the asset's own URL so
// nested url(...) references also route through the proxy. Any failure yields
// an empty 404.
func (h *MediaHandler) Asset(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	destination, err := h.codec.Decode(c.Param("token"))
	if err != nil {
		h.businessMetrics.RecordOperation(ctx, "proxy", "asset_fetch", "error")
		c.Status(http.StatusNotFound)
		return
	}

	result, err := h.fetcher.Fetch(ctx, destination, fetch.Options{Header: c.Request.Header})
	if err != nil {
		h.logger.Debug("asset fetch failed", slog.Any("error", err))
		h.businessMetrics.RecordOperation(ctx, "proxy", "asset_fetch", "error")
		c.Status(http.StatusNotFound)
		return
	}

	body := result.Body
	if result.IsCSS() {
		body = []byte(h.rewriter.RewriteCSS(string(result.Body), result.URL))
	}

	c.Data(result.StatusCode, contentTypeOrDefault(result.ContentType, "application/octet-stream"), body)

	h.businessMetrics.RecordOperation(ctx, "proxy", "asset_fetch", "success")
	h.businessMetrics.RecordDuration(ctx, "proxy", "asset_fetch", time.Since(start), "success")
}

// servePlaceholder writes the transparent pixel with the media cache policy.
func (h *MediaHandler) servePlaceholder(c *gin.Context) {
	c.Header("Cache-Control", mediaCacheControl)
	c.Data(http.StatusOK, "image/gif", transparentPixelGIF)
}
