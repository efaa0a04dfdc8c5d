package rewrite

import (
	"strings"

	"golang.org/x/net/html"
)

// Proxy sub-routes that rewritten references are redirected through.
const (
	RoutePrefixProxy = "/proxy/"
	RoutePrefixImage = "/image/"
	RoutePrefixAsset = "/asset/"
)

// rule describes which attribute of a markup construct gets rewritten and to
// which proxy sub-route it is redirected. The rule set is static
// configuration, not runtime data.
type rule struct {
	attr   string
	prefix string
	// skip reports whether the attribute value must be left untouched
	// (fragment links, javascript: handlers, inline data URIs).
	skip func(value string) bool
}

var (
	anchorRule = rule{
		attr:   "href",
		prefix: RoutePrefixProxy,
		skip: func(v string) bool {
			return strings.HasPrefix(v, "javascript:") ||
				strings.HasPrefix(v, "#") ||
				strings.HasPrefix(v, "mailto:")
		},
	}

	formRule = rule{
		attr:   "action",
		prefix: RoutePrefixProxy,
		skip: func(v string) bool {
			return v == "" || strings.HasPrefix(v, "#")
		},
	}

	imageRule = rule{
		attr:   "src",
		prefix: RoutePrefixImage,
		skip: func(v string) bool {
			return strings.HasPrefix(v, "data:")
		},
	}

	assetRule = rule{
		attr:   "", // attr set per element below
		prefix: RoutePrefixAsset,
		skip:   func(string) bool { return false },
	}
)

// ruleFor returns the rewrite rule matching an element node, or nil when the
// element carries no reference of interest.
func ruleFor(n *html.Node) *rule {
	switch n.Data {
	case "a":
		return &anchorRule
	case "form":
		return &formRule
	case "img":
		return &imageRule
	case "link":
		if !isStylesheet(n) {
			return nil
		}
		r := assetRule
		r.attr = "href"
		return &r
	case "script":
		r := assetRule
		r.attr = "src"
		return &r
	default:
		return nil
	}
}

// isStylesheet reports whether a <link> node has rel="stylesheet".
func isStylesheet(n *html.Node) bool {
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == "rel" {
			return strings.Contains(strings.ToLower(attr.Val), "stylesheet")
		}
	}
	return false
}
