// Package service provides the AEAD ciphers backing the token codec
// (AES-256-GCM, ChaCha20-Poly1305).
package service

import "fmt"

// KeySize is the required key length in bytes for all supported ciphers.
const KeySize = 32

// Supported cipher algorithm names.
const (
	AlgorithmAESGCM   = "aes-gcm"
	AlgorithmChaCha20 = "chacha20-poly1305"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// NewCipher creates an AEAD cipher instance for the specified algorithm.
// The key must be exactly KeySize bytes.
func NewCipher(key []byte, algorithm string) (AEAD, error) {
	switch algorithm {
	case AlgorithmAESGCM:
		return NewAESGCM(key)
	case AlgorithmChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, fmt.Errorf("unsupported cipher algorithm: %s", algorithm)
	}
}
