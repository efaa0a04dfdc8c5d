package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/webproxy/internal/codec"
	apperrors "github.com/allisson/webproxy/internal/errors"
	"github.com/allisson/webproxy/internal/fetch"
	"github.com/allisson/webproxy/internal/metrics"
	"github.com/allisson/webproxy/internal/rewrite"
)

// ProxyHandler serves the main document route: decode the token, fetch the
// destination, rewrite HTML bodies, and relay everything else untouched.
type ProxyHandler struct {
	codec           *codec.Codec
	fetcher         *fetch.Fetcher
	rewriter        *rewrite.Rewriter
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewProxyHandler creates a new proxy document handler with required dependencies.
func NewProxyHandler(
	c *codec.Codec,
	fetcher *fetch.Fetcher,
	rewriter *rewrite.Rewriter,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *ProxyHandler {
	return &ProxyHandler{
		codec:           c,
		fetcher:         fetcher,
		rewriter:        rewriter,
		businessMetrics: businessMetrics,
		logger:          logger,
	}
}

// Handle proxies a document request.
// GET|POST /proxy/:token - Returns the destination response, with HTML bodies
// rewritten so every reference routes back through the proxy. Failures render
// an HTML error page rather than a bare status.
func (h *ProxyHandler) Handle(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	destination, err := h.codec.Decode(c.Param("token"))
	if err != nil {
		h.logger.Warn("proxy token decode failed", slog.Any("error", err))
		h.businessMetrics.RecordOperation(ctx, "proxy", "document_fetch", "error")
		renderErrorPage(c, http.StatusBadRequest,
			"Invalid proxy link",
			"This link is malformed or was issued by a previous server instance.",
		)
		return
	}

	opts := fetch.Options{
		Method: c.Request.Method,
		Header: c.Request.Header,
	}
	if c.Request.Method != http.MethodGet {
		opts.Body = c.Request.Body
	}

	result, err := h.fetcher.Fetch(ctx, destination, opts)
	if err != nil {
		h.businessMetrics.RecordOperation(ctx, "proxy", "document_fetch", "error")
		h.renderFetchError(c, err)
		return
	}

	h.relayHeaders(c, result)

	if result.IsHTML() {
		body := h.rewriter.RewriteHTML(string(result.Body), result.URL)
		c.Data(result.StatusCode, contentTypeOrDefault(result.ContentType, "text/html; charset=utf-8"), []byte(body))
	} else {
		c.Data(result.StatusCode, result.ContentType, result.Body)
	}

	h.businessMetrics.RecordOperation(ctx, "proxy", "document_fetch", "success")
	h.businessMetrics.RecordDuration(ctx, "proxy", "document_fetch", time.Since(start), "success")
}

// relayHeaders copies the filtered upstream headers onto the response and
// reroutes a redirect Location through the proxy so navigation stays inside it.
func (h *ProxyHandler) relayHeaders(c *gin.Context, result *fetch.Result) {
	for key, values := range result.Header {
		// Content-Type and Location are set explicitly below.
		if key == "Content-Type" || key == "Location" {
			continue
		}
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}

	if location := result.Header.Get("Location"); location != "" {
		if resolved, err := result.URL.Parse(location); err == nil &&
			(resolved.Scheme == "http" || resolved.Scheme == "https") {
			if token, err := h.codec.Encode(resolved.String()); err == nil {
				c.Header("Location", rewrite.RoutePrefixProxy+token)
				return
			}
		}
		c.Header("Location", location)
	}
}

// renderFetchError maps a classified fetch failure onto the user-facing
// error page, distinguishing timeout, refusal, and unreachable hosts.
func (h *ProxyHandler) renderFetchError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrFetchTimeout):
		renderErrorPage(c, http.StatusGatewayTimeout,
			"Site timed out",
			"The destination site took too long to respond. Try again in a moment.",
		)
	case apperrors.Is(err, apperrors.ErrFetchRefused):
		renderErrorPage(c, http.StatusBadGateway,
			"Connection refused",
			"The destination site refused the connection.",
		)
	case apperrors.Is(err, apperrors.ErrFetchUnreachable):
		renderErrorPage(c, http.StatusBadGateway,
			"Site not found",
			"The destination site could not be reached.",
		)
	default:
		h.logger.Error("proxy fetch failed", slog.Any("error", err))
		renderErrorPage(c, http.StatusInternalServerError,
			"Something went wrong",
			"An internal error occurred while fetching the page.",
		)
	}
}

// contentTypeOrDefault returns ct unless it is empty.
func contentTypeOrDefault(ct, fallback string) string {
	if ct == "" {
		return fallback
	}
	return ct
}
