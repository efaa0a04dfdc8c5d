// Package rewrite implements the document rewriting pass: every
// outbound-reference attribute in a fetched HTML or CSS document is resolved
// against the document's base URL, encoded through the token codec, and
// redirected back through the proxy.
//
// The rewriter is best-effort by contract: a broken or unparseable reference
// must not abort the whole document, and a document that cannot be parsed at
// all is returned unmodified.
package rewrite

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/allisson/webproxy/internal/codec"
)

// refOutcome is the per-reference result of a rewrite attempt.
type refOutcome int

const (
	refRewritten refOutcome = iota
	refSkipped
)

// Rewriter rewrites HTML and CSS documents so that every navigable or
// loadable reference routes back through the proxy. It is stateless beyond
// its codec and safe for concurrent use.
type Rewriter struct {
	codec  *codec.Codec
	logger *slog.Logger
}

// NewRewriter creates a Rewriter backed by the given token codec.
func NewRewriter(c *codec.Codec, logger *slog.Logger) *Rewriter {
	return &Rewriter{codec: c, logger: logger}
}

// RewriteHTML parses doc, rewrites every reference-bearing attribute per the
// static rule table, injects the control overlay into <body>, and renders the
// document back to a string. If parsing or rendering fails catastrophically
// the original input is returned unmodified.
func (r *Rewriter) RewriteHTML(doc string, base *url.URL) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		r.logger.Warn("html parse failed, returning document unmodified", slog.Any("error", err))
		return doc
	}

	rewritten := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if rule := ruleFor(n); rule != nil {
				if r.rewriteAttr(n, rule, base) == refRewritten {
					rewritten++
				}
			}
			if n.DataAtom == atom.Body {
				r.injectOverlay(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		r.logger.Warn("html render failed, returning document unmodified", slog.Any("error", err))
		return doc
	}

	r.logger.Debug("html document rewritten",
		slog.String("base_url", base.String()),
		slog.Int("references", rewritten),
	)
	return buf.String()
}

// rewriteAttr applies a rule to a single element. Any failure along the way
// (unresolvable reference, non-http scheme, codec error) leaves the attribute
// untouched.
func (r *Rewriter) rewriteAttr(n *html.Node, rule *rule, base *url.URL) refOutcome {
	for i, attr := range n.Attr {
		if strings.ToLower(attr.Key) != rule.attr {
			continue
		}

		value := strings.TrimSpace(attr.Val)
		if rule.skip(value) {
			return refSkipped
		}

		routed, ok := r.rewriteReference(value, base, rule.prefix)
		if !ok {
			return refSkipped
		}

		n.Attr[i].Val = routed
		return refRewritten
	}
	return refSkipped
}

// rewriteReference resolves a possibly-relative reference against base,
// validates the result as an absolute http/https URL, and encodes it into a
// proxy route. Returns ok=false when the reference must be left verbatim.
func (r *Rewriter) rewriteReference(ref string, base *url.URL, prefix string) (string, bool) {
	if ref == "" {
		return "", false
	}

	resolved, err := base.Parse(ref)
	if err != nil {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Host == "" {
		return "", false
	}

	token, err := r.codec.Encode(resolved.String())
	if err != nil {
		r.logger.Warn("reference encode failed",
			slog.String("reference", ref),
			slog.Any("error", err),
		)
		return "", false
	}

	return prefix + token, true
}
