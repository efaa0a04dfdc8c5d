// Package codec implements the token codec: a bidirectional transform between
// destination URLs and opaque routable tokens.
//
// A token is hex(nonce) + ":" + hex(ciphertext), where the ciphertext is the
// destination URL encrypted under the process key with a fresh random nonce
// per encode. Encoding the same URL twice therefore yields two different
// tokens, both of which decode to the same URL. Tokens minted by a process
// holding a different key fail to decode; this is a routine, expected failure
// (stale bookmarked links after a key rotation).
package codec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/allisson/webproxy/internal/crypto/service"
	apperrors "github.com/allisson/webproxy/internal/errors"
)

// tokenSeparator splits the hex nonce prefix from the hex ciphertext suffix.
const tokenSeparator = ":"

// Codec encrypts destination URLs into routable tokens and back.
// It is stateless apart from the immutable process key and safe for
// concurrent use from arbitrarily many in-flight requests.
type Codec struct {
	aead service.AEAD
}

// New creates a Codec backed by the given AEAD cipher.
func New(aead service.AEAD) *Codec {
	return &Codec{aead: aead}
}

// NewWithKey creates a Codec from a raw key and cipher algorithm name.
// The key must be exactly service.KeySize bytes. A key or algorithm problem
// here is a fatal misconfiguration: callers should abort startup rather than
// run with a broken codec.
func NewWithKey(key []byte, algorithm string) (*Codec, error) {
	aead, err := service.NewCipher(key, algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cipher: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Encode encrypts an absolute destination URL into an opaque token.
//
// The caller is responsible for validating that rawURL is an absolute
// http/https URL before encoding. A fresh random nonce is drawn per call, so
// output is non-deterministic for identical input.
func (c *Codec) Encode(rawURL string) (string, error) {
	ciphertext, nonce, err := c.aead.Encrypt([]byte(rawURL), nil)
	if err != nil {
		return "", fmt.Errorf("failed to encode url: %w", err)
	}
	return hex.EncodeToString(nonce) + tokenSeparator + hex.EncodeToString(ciphertext), nil
}

// Decode recovers the destination URL from a token.
//
// All failure modes (missing separator, non-hex segments, ciphertext that
// does not authenticate under the process key, non-UTF-8 plaintext) return an
// error wrapping apperrors.ErrTokenDecode and never panic.
func (c *Codec) Decode(token string) (string, error) {
	nonceHex, ciphertextHex, found := strings.Cut(token, tokenSeparator)
	if !found {
		return "", apperrors.Wrap(apperrors.ErrTokenDecode, "missing separator")
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrTokenDecode, "invalid nonce hex")
	}

	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrTokenDecode, "invalid ciphertext hex")
	}

	plaintext, err := c.aead.Decrypt(ciphertext, nonce, nil)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrTokenDecode, "decryption failed")
	}

	if !utf8.Valid(plaintext) {
		return "", apperrors.Wrap(apperrors.ErrTokenDecode, "plaintext is not valid utf-8")
	}

	return string(plaintext), nil
}

// GenerateKey returns a fresh random key of service.KeySize bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, service.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// ParseKey decodes a hex-encoded key and checks its length.
func ParseKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("secret key is not valid hex: %w", err)
	}
	if len(key) != service.KeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", service.KeySize, len(key))
	}
	return key, nil
}

// LoadKey returns the key for the given hex string, or a fresh random key
// when the string is empty. Restarting with a different key invalidates all
// previously issued tokens; this is accepted behavior.
func LoadKey(hexKey string) ([]byte, error) {
	if hexKey == "" {
		return GenerateKey()
	}
	return ParseKey(hexKey)
}
