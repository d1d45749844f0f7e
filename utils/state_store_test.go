package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConsumeStateIsSingleUse(t *testing.T) {
	state := "state-" + time.Now().Format(time.RFC3339Nano)
	assert.False(t, ConsumeState(state), "an unknown state never validates")

	SaveState(state, 10*time.Minute)
	assert.True(t, ConsumeState(state))
	assert.False(t, ConsumeState(state), "a state cannot be replayed")
}

func TestConsumeStateRejectsExpired(t *testing.T) {
	state := "stale-" + time.Now().Format(time.RFC3339Nano)
	stateStoreMu.Lock()
	stateStore[state] = time.Now().Add(-time.Minute)
	stateStoreMu.Unlock()

	assert.False(t, ConsumeState(state))
}
