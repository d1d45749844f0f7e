package utils

import "time"

// StartFallbackJanitor launches a background goroutine that periodically
// prunes expired entries from the in-memory fallback stores (token blacklist,
// OAuth states). With Redis attached the fallbacks stay empty and each sweep
// is a no-op.
func StartFallbackJanitor(interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		for {
			// Sleep first so startup never races the sweep.
			time.Sleep(interval)

			blacklistMu.Lock()
			pruneBlacklistLocked()
			blacklistMu.Unlock()

			now := time.Now()
			stateStoreMu.Lock()
			for state, expiresAt := range stateStore {
				if now.After(expiresAt) {
					delete(stateStore, state)
				}
			}
			stateStoreMu.Unlock()
		}
	}()
}
