package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Atharva2604/Kuro/config"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	config.Load()
	os.Exit(m.Run())
}

func TestBlacklistToken(t *testing.T) {
	token := "revoked-" + time.Now().Format(time.RFC3339Nano)
	assert.False(t, IsTokenBlacklisted(token))

	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))
}

func TestBlacklistSkipsNaturallyExpiredTokens(t *testing.T) {
	token := "expired-" + time.Now().Format(time.RFC3339Nano)
	BlacklistToken(token, time.Now().Add(-time.Minute))
	assert.False(t, IsTokenBlacklisted(token), "a token past its natural expiry needs no revocation entry")
}
