package commands

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGenerateKey(t *testing.T) {
	t.Run("TextFormat", func(t *testing.T) {
		var out bytes.Buffer
		err := RunGenerateKey("text", IOTuple{Reader: strings.NewReader(""), Writer: &out})
		require.NoError(t, err)

		matches := regexp.MustCompile(`SECRET_KEY="([0-9a-f]{64})"`).FindStringSubmatch(out.String())
		require.Len(t, matches, 2)

		key, err := hex.DecodeString(matches[1])
		require.NoError(t, err)
		assert.Len(t, key, 32)
	})

	t.Run("JSONFormat", func(t *testing.T) {
		var out bytes.Buffer
		err := RunGenerateKey("json", IOTuple{Reader: strings.NewReader(""), Writer: &out})
		require.NoError(t, err)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &payload))

		key, err := hex.DecodeString(payload["secret_key"])
		require.NoError(t, err)
		assert.Len(t, key, 32)
	})

	t.Run("UniquePerInvocation", func(t *testing.T) {
		var first, second bytes.Buffer
		require.NoError(t, RunGenerateKey("text", IOTuple{Writer: &first}))
		require.NoError(t, RunGenerateKey("text", IOTuple{Writer: &second}))
		assert.NotEqual(t, first.String(), second.String())
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		var out bytes.Buffer
		err := RunGenerateKey("yaml", IOTuple{Writer: &out})
		assert.Error(t, err)
	})
}
