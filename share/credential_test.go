package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPassword(t *testing.T) {
	hash, err := hashPassword("abc123")
	require.NoError(t, err)
	require.NotEqual(t, "abc123", hash, "the plaintext is never stored")

	assert.True(t, verifyPassword(&hash, "abc123"))
	assert.False(t, verifyPassword(&hash, "wrong"))
	assert.False(t, verifyPassword(&hash, ""), "a protected link rejects an absent password")

	assert.True(t, verifyPassword(nil, ""), "an open link needs no password")
	assert.True(t, verifyPassword(nil, "anything"), "an open link ignores a supplied password")
}
