// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by core
// components and mapped to endpoint-specific responses by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrInvalidURL indicates the input is not a valid absolute http/https URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTokenDecode indicates a proxy token is malformed or does not decrypt
	// under the current process key. This is a routine failure (stale links
	// after a key rotation), never a fatal one.
	ErrTokenDecode = errors.New("token decode failed")

	// ErrFetchTimeout indicates the upstream fetch exceeded its deadline.
	ErrFetchTimeout = errors.New("fetch timed out")

	// ErrFetchRefused indicates the upstream host actively refused the connection.
	ErrFetchRefused = errors.New("fetch connection refused")

	// ErrFetchUnreachable indicates the upstream host could not be resolved or reached.
	ErrFetchUnreachable = errors.New("fetch host unreachable")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
