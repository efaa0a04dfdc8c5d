package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/allisson/webproxy/internal/codec"
)

// RunGenerateKey generates a cryptographically secure 32-byte process key for
// the token codec and prints it as a SECRET_KEY environment variable.
//
// Every token is encrypted under this key; deploying a new key invalidates all
// previously issued proxy links.
func RunGenerateKey(format string, io IOTuple) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	key, err := codec.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	encodedKey := hex.EncodeToString(key)

	if format == "json" {
		payload := map[string]string{"secret_key": encodedKey}
		encoder := json.NewEncoder(io.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	fmt.Fprintln(io.Writer, "# Token codec process key")
	fmt.Fprintln(io.Writer, "# Copy this environment variable to your .env file or secrets manager")
	fmt.Fprintln(io.Writer)
	fmt.Fprintf(io.Writer, "SECRET_KEY=\"%s\"\n", encodedKey)

	return nil
}
