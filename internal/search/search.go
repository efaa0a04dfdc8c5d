// Package search turns free-form user input into a destination URL. Input is
// treated, in order, as an absolute URL, a bare domain, or a search query for
// the configured engine.
package search

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/allisson/webproxy/internal/config"
	apperrors "github.com/allisson/webproxy/internal/errors"
	"github.com/allisson/webproxy/internal/validation"
)

// Resolver maps user queries to absolute destination URLs.
type Resolver struct {
	engineURL string
	logger    *slog.Logger
}

// NewResolver creates a Resolver using the configured search engine.
func NewResolver(cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{engineURL: cfg.SearchEngineURL, logger: logger}
}

// Resolve returns the destination URL for a query. An absolute http(s) URL
// passes through unchanged, a bare domain is promoted to an https URL, and
// anything else becomes a search-engine query.
func (r *Resolver) Resolve(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "empty query")
	}

	var destination string
	switch {
	case validation.IsHTTPURL(query):
		destination = query
	case isBareDomain(query):
		destination = promoteDomain(query)
	default:
		destination = r.engineURL + url.QueryEscape(query)
	}

	r.logger.Debug("search query resolved", slog.String("destination", destination))
	return destination, nil
}

// isBareDomain reports whether the query looks like a host without a scheme,
// such as "example.com" or "www.example.com/page".
func isBareDomain(query string) bool {
	if strings.ContainsAny(query, " \t") {
		return false
	}

	host := query
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if host == "" || !strings.Contains(host, ".") {
		return false
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}

	parsed, err := url.Parse("https://" + query)
	return err == nil && parsed.Host != ""
}

// promoteDomain turns a bare domain into an absolute https URL, adding the
// www subdomain when the query does not already carry one.
func promoteDomain(query string) string {
	if strings.HasPrefix(query, "www.") {
		return "https://" + query
	}
	return "https://www." + query
}
