// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/webproxy/internal/validation"
)

// EncryptURLRequest contains the URL to encode into a proxy token.
type EncryptURLRequest struct {
	URL string `json:"url"`
}

// Validate checks if the encrypt-url request is valid.
func (r *EncryptURLRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.URL,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 2048),
			customValidation.HTTPURL,
		),
	)
}

// SearchRequest contains the free-form query to resolve into a destination.
type SearchRequest struct {
	Query string `json:"query"`
}

// Validate checks if the search request is valid.
func (r *SearchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Query,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 2048),
		),
	)
}
