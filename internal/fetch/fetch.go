// Package fetch implements the upstream HTTP client used by the proxy
// routes. It issues a single request on the caller's behalf, reads a bounded
// body, and classifies transport failures into domain errors so handlers can
// present them without inspecting net internals.
package fetch

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/allisson/webproxy/internal/config"
	apperrors "github.com/allisson/webproxy/internal/errors"
)

// hopByHopHeaders are connection-level headers that must never be forwarded
// in either direction (RFC 9110 section 7.6.1).
var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// droppedResponseHeaders are end-to-end headers that are stripped from
// upstream responses: framing headers become wrong once the body is
// decompressed and rewritten, and frame/CSP policies would block the
// rewritten page from rendering inside the proxy origin.
var droppedResponseHeaders = map[string]struct{}{
	"Content-Length":            {},
	"Content-Encoding":          {},
	"Content-Security-Policy":   {},
	"X-Frame-Options":           {},
	"Strict-Transport-Security": {},
}

// droppedRequestHeaders are client headers never forwarded upstream. The
// fetcher negotiates its own encoding, and Host is derived from the target.
var droppedRequestHeaders = map[string]struct{}{
	"Accept-Encoding": {},
	"Host":            {},
	"Referer":         {},
}

// Options carries the parts of the client request that are replayed upstream.
type Options struct {
	// Method is the HTTP method, defaulting to GET when empty.
	Method string
	// Body is the request body to forward, typically a submitted form.
	Body io.Reader
	// Header holds client headers to forward after filtering.
	Header http.Header
}

// Result is a fully-read upstream response.
type Result struct {
	// StatusCode is the upstream status code, including redirects.
	StatusCode int
	// Header holds the filtered upstream response headers.
	Header http.Header
	// Body is the decompressed response body, capped at the configured limit.
	Body []byte
	// ContentType is the upstream Content-Type header value.
	ContentType string
	// URL is the URL the response was served from. Redirects are not
	// followed, so this matches the requested URL.
	URL *url.URL
}

// IsHTML reports whether the response declares an HTML body.
func (r *Result) IsHTML() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "text/html")
}

// IsCSS reports whether the response declares a CSS body.
func (r *Result) IsCSS() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "text/css")
}

// Fetcher performs bounded upstream fetches. It is safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
	userAgent    string
	logger       *slog.Logger
}

// New creates a Fetcher from the application configuration. Redirects are not
// followed: the handler rewrites the Location header so that navigation stays
// inside the proxy.
func New(cfg *config.Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout:      cfg.FetchTimeout,
		maxBodyBytes: cfg.FetchMaxBodyBytes,
		userAgent:    cfg.FetchUserAgent,
		logger:       logger,
	}
}

// Fetch requests rawURL upstream and returns the fully-read response.
// Transport failures are classified into the fetch error taxonomy; a non-2xx
// status is not an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidURL, "parse fetch target")
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), opts.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, "build upstream request")
	}

	f.forwardRequestHeaders(req, opts.Header)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		classified := f.classifyError(err)
		f.logger.Warn("upstream fetch failed",
			slog.String("url", target.String()),
			slog.String("method", method),
			slog.Any("error", err),
		)
		return nil, classified
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := f.readBody(resp)
	if err != nil {
		return nil, f.classifyError(err)
	}

	f.logger.Debug("upstream fetch completed",
		slog.String("url", target.String()),
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.Int("body_bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		StatusCode:  resp.StatusCode,
		Header:      filterResponseHeaders(resp.Header),
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         target,
	}, nil
}

// forwardRequestHeaders copies the safe subset of client headers onto the
// upstream request and fills in the fetcher's own identity and encoding.
func (f *Fetcher) forwardRequestHeaders(req *http.Request, header http.Header) {
	for key, values := range header {
		canonical := http.CanonicalHeaderKey(key)
		if _, drop := hopByHopHeaders[canonical]; drop {
			continue
		}
		if _, drop := droppedRequestHeaders[canonical]; drop {
			continue
		}
		for _, v := range values {
			req.Header.Add(canonical, v)
		}
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept-Encoding", "gzip")
}

// readBody reads the response body up to the configured cap, transparently
// decompressing a gzip-encoded payload.
func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, apperrors.Wrap(err, "open gzip body")
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodyBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, "read upstream body")
	}
	return body, nil
}

// classifyError maps a transport error onto the fetch error taxonomy.
func (f *Fetcher) classifyError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrFetchTimeout, err.Error())
	case errors.As(err, &netErr) && netErr.Timeout():
		return apperrors.Wrap(apperrors.ErrFetchTimeout, err.Error())
	case errors.Is(err, syscall.ECONNREFUSED):
		return apperrors.Wrap(apperrors.ErrFetchRefused, err.Error())
	default:
		return apperrors.Wrap(apperrors.ErrFetchUnreachable, err.Error())
	}
}

// filterResponseHeaders returns a copy of header with hop-by-hop and
// proxy-incompatible headers removed.
func filterResponseHeaders(header http.Header) http.Header {
	filtered := make(http.Header, len(header))
	for key, values := range header {
		canonical := http.CanonicalHeaderKey(key)
		if _, drop := hopByHopHeaders[canonical]; drop {
			continue
		}
		if _, drop := droppedResponseHeaders[canonical]; drop {
			continue
		}
		filtered[canonical] = append([]string(nil), values...)
	}
	return filtered
}
