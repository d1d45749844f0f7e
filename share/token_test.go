package share

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenShape(t *testing.T) {
	token, err := generateToken()
	require.NoError(t, err)
	assert.Len(t, token, 43)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err, "token must decode as unpadded URL-safe base64")
	assert.Len(t, raw, tokenBytes)
}

func TestGenerateTokenUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 64)
	for i := 0; i < 64; i++ {
		token, err := generateToken()
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup, "token %q issued twice", token)
		seen[token] = struct{}{}
	}
}
