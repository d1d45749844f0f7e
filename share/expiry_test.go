package share

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, computeExpiry(now, 0))
	assert.Nil(t, computeExpiry(now, -3))

	deadline := computeExpiry(now, 24)
	require.NotNil(t, deadline)
	assert.Equal(t, now.Add(24*time.Hour), *deadline)
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(time.Hour)

	assert.False(t, expired(nil, now), "nil deadline never expires")
	assert.False(t, expired(&deadline, now))
	assert.False(t, expired(&deadline, deadline), "the deadline instant itself is still live")
	assert.True(t, expired(&deadline, deadline.Add(time.Nanosecond)))
}
