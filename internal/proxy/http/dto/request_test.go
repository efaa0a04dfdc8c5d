package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptURLRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "ValidHTTPS", url: "https://example.com/page", wantErr: false},
		{name: "ValidHTTP", url: "http://example.com", wantErr: false},
		{name: "Empty", url: "", wantErr: true},
		{name: "Blank", url: "   ", wantErr: true},
		{name: "MissingScheme", url: "example.com", wantErr: true},
		{name: "WrongScheme", url: "ftp://example.com/file", wantErr: true},
		{name: "TooLong", url: "https://example.com/" + strings.Repeat("a", 2048), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := EncryptURLRequest{URL: tt.url}
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{name: "FreeText", query: "weather today", wantErr: false},
		{name: "URL", query: "https://example.com", wantErr: false},
		{name: "Empty", query: "", wantErr: true},
		{name: "Blank", query: "  ", wantErr: true},
		{name: "TooLong", query: strings.Repeat("q", 2049), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := SearchRequest{Query: tt.query}
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
