package utils

import (
	"context"
	"sync"
	"time"
)

const blacklistKeyPrefix = "kuro:jwt:blacklist:"

var (
	blacklist   = map[string]time.Time{}
	blacklistMu sync.RWMutex
)

// BlacklistToken revokes a session token until its natural expiry, backing
// logout semantics. Redis is preferred so revocation holds across instances;
// without it a process-local map covers the single-instance case.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err(); err == nil {
			return
		}
	}
	blacklistMu.Lock()
	blacklist[token] = expiresAt
	pruneBlacklistLocked()
	blacklistMu.Unlock()
}

// IsTokenBlacklisted reports whether a token was revoked before natural
// expiration. Redis errors fail open to avoid locking every session out on a
// cache outage.
func IsTokenBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, blacklistKeyPrefix+token).Result(); err == nil {
			return n > 0
		}
	}
	blacklistMu.RLock()
	expiresAt, ok := blacklist[token]
	blacklistMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		blacklistMu.Lock()
		delete(blacklist, token)
		blacklistMu.Unlock()
		return false
	}
	return true
}

func pruneBlacklistLocked() {
	now := time.Now()
	for t, exp := range blacklist {
		if now.After(exp) {
			delete(blacklist, t)
		}
	}
}
