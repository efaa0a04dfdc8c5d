package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the static landing page.
type PageHandler struct {
	logger *slog.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(logger *slog.Logger) *PageHandler {
	return &PageHandler{logger: logger}
}

// Index renders the landing page.
// GET / - Returns the search form that drives /api/search.
func (h *PageHandler) Index(c *gin.Context) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := indexPageTemplate.Execute(c.Writer, nil); err != nil {
		h.logger.Error("index page render failed", slog.Any("error", err))
	}
}
