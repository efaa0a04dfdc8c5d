package rewrite

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assetRefPattern = regexp.MustCompile(`url\('/asset/([0-9a-f]+:[0-9a-f]+)'\)`)

func TestRewriter_RewriteCSS_RelativeReference(t *testing.T) {
	rewriter, c := setupTestRewriter(t)
	base := mustParseURL(t, "https://example.com/css/site.css")

	out := rewriter.RewriteCSS(`body { background: url(../img/x.png); }`, base)

	matches := assetRefPattern.FindStringSubmatch(out)
	require.Len(t, matches, 2)

	decoded, err := c.Decode(matches[1])
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/img/x.png", decoded)
}

func TestRewriter_RewriteCSS_QuotedReferences(t *testing.T) {
	rewriter, c := setupTestRewriter(t)
	base := mustParseURL(t, "https://example.com/css/site.css")

	doc := `@font-face { src: url('fonts/a.woff2'); }
div { background-image: url("img/b.png"); }`

	out := rewriter.RewriteCSS(doc, base)

	matches := assetRefPattern.FindAllStringSubmatch(out, -1)
	require.Len(t, matches, 2)

	first, err := c.Decode(matches[0][1])
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/css/fonts/a.woff2", first)

	second, err := c.Decode(matches[1][1])
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/css/img/b.png", second)
}

func TestRewriter_RewriteCSS_SkippedReferences(t *testing.T) {
	rewriter, _ := setupTestRewriter(t)
	base := mustParseURL(t, "https://example.com/css/site.css")

	tests := []struct {
		name string
		doc  string
	}{
		{name: "AbsoluteHTTP", doc: `div { background: url(https://cdn.example.com/a.png); }`},
		{name: "AbsoluteHTTPUpper", doc: `div { background: url(HTTP://cdn.example.com/a.png); }`},
		{name: "DataURI", doc: `div { background: url(data:image/png;base64,AAAA); }`},
		{name: "Empty", doc: `div { background: url(''); }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := rewriter.RewriteCSS(tt.doc, base)
			assert.Equal(t, tt.doc, out)
		})
	}
}

func TestRewriter_RewriteCSS_NoReferences(t *testing.T) {
	rewriter, _ := setupTestRewriter(t)
	base := mustParseURL(t, "https://example.com/css/site.css")

	doc := `body { color: #333; margin: 0; }`
	out := rewriter.RewriteCSS(doc, base)
	assert.Equal(t, doc, out)
	assert.False(t, strings.Contains(out, "/asset/"))
}
