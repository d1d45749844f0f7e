package utils

import (
	"context"
	"sync"
	"time"
)

const stateKeyPrefix = "kuro:oauth:state:"

var (
	stateStore   = map[string]time.Time{}
	stateStoreMu sync.Mutex
)

// SaveState stores an OAuth state token with a TTL to mitigate CSRF on the
// provider callback.
func SaveState(state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, stateKeyPrefix+state, "1", ttl).Err(); err == nil {
			return
		}
	}
	// In-memory fallback covers the single-instance case only.
	stateStoreMu.Lock()
	stateStore[state] = time.Now().Add(ttl)
	stateStoreMu.Unlock()
}

// ConsumeState validates and removes a state token. Each state is single-use:
// GETDEL makes the check-and-remove atomic on Redis.
func ConsumeState(state string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if v, err := rc.GetDel(ctx, stateKeyPrefix+state).Result(); err == nil {
			return v != ""
		}
	}
	stateStoreMu.Lock()
	expiresAt, ok := stateStore[state]
	if ok {
		delete(stateStore, state)
	}
	stateStoreMu.Unlock()
	if !ok {
		return false
	}
	return time.Now().Before(expiresAt)
}
