package search

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/webproxy/internal/config"
	apperrors "github.com/allisson/webproxy/internal/errors"
)

func setupTestResolver(t *testing.T) *Resolver {
	t.Helper()

	cfg := &config.Config{SearchEngineURL: "https://duckduckgo.com/?q="}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(cfg, logger)
}

func TestResolver_Resolve(t *testing.T) {
	resolver := setupTestResolver(t)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "AbsoluteURLPassthrough",
			query: "https://example.com/page?a=1",
			want:  "https://example.com/page?a=1",
		},
		{
			name:  "AbsoluteHTTPURLPassthrough",
			query: "http://example.com",
			want:  "http://example.com",
		},
		{
			name:  "BareDomain",
			query: "example.com",
			want:  "https://www.example.com",
		},
		{
			name:  "BareDomainWithPath",
			query: "example.com/docs",
			want:  "https://www.example.com/docs",
		},
		{
			name:  "BareDomainAlreadyWWW",
			query: "www.example.com",
			want:  "https://www.example.com",
		},
		{
			name:  "FreeTextQuery",
			query: "golang http proxy",
			want:  "https://duckduckgo.com/?q=golang+http+proxy",
		},
		{
			name:  "QueryWithSpecialCharacters",
			query: "a&b=c",
			want:  "https://duckduckgo.com/?q=a%26b%3Dc",
		},
		{
			name:  "WordWithoutDot",
			query: "golang",
			want:  "https://duckduckgo.com/?q=golang",
		},
		{
			name:  "TrailingDotIsQuery",
			query: "example.",
			want:  "https://duckduckgo.com/?q=example.",
		},
		{
			name:  "WhitespaceTrimmed",
			query: "  example.com  ",
			want:  "https://www.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("EmptyQuery", func(t *testing.T) {
		_, err := resolver.Resolve("   ")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
