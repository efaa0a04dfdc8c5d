package rewrite

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// cssURLPattern matches url(...) references with single, double, or no quotes.
var cssURLPattern = regexp.MustCompile(`(?i)url\s*\(\s*(?:'([^']*)'|"([^"]*)"|([^)\s'"]+))\s*\)`)

// RewriteCSS scans doc for url(...) references and reroutes each relative one
// through the asset route. References that already carry an http(s) scheme or
// a data: URI, and references that fail to resolve, are left verbatim.
//
// Relative references resolve against the stylesheet's own URL, so "../x.png"
// with base "https://example.com/css/site.css" lands on
// "https://example.com/x.png".
func (r *Rewriter) RewriteCSS(doc string, base *url.URL) string {
	rewritten := 0
	out := cssURLPattern.ReplaceAllStringFunc(doc, func(match string) string {
		sub := cssURLPattern.FindStringSubmatch(match)
		var ref string
		for _, group := range sub[1:] {
			if group != "" {
				ref = group
				break
			}
		}

		if ref == "" ||
			strings.HasPrefix(strings.ToLower(ref), "http") ||
			strings.HasPrefix(strings.ToLower(ref), "data:") {
			return match
		}

		routed, ok := r.rewriteReference(ref, base, RoutePrefixAsset)
		if !ok {
			return match
		}

		rewritten++
		return fmt.Sprintf("url('%s')", routed)
	})

	r.logger.Debug("css document rewritten",
		slog.String("base_url", base.String()),
		slog.Int("references", rewritten),
	)
	return out
}
