package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_UniqueIDs(t *testing.T) {
	a, b := NewSession(), NewSession()
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSessionManager_GetCreatesAndReuses(t *testing.T) {
	m := NewSessionManager()

	s1 := m.Get("abc")
	s2 := m.Get("abc")
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, m.Len())

	s3 := m.Get("def")
	assert.NotSame(t, s1, s3)
	assert.Equal(t, 2, m.Len())
}

func TestSessionManager_EmptyIDAlwaysNew(t *testing.T) {
	m := NewSessionManager()

	s1 := m.Get("")
	s2 := m.Get("")
	require.NotEmpty(t, s1.ID)
	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Equal(t, 2, m.Len())

	// The generated ID resolves back to the same session.
	assert.Same(t, s1, m.Get(s1.ID))
}

func TestSession_StateAccessors(t *testing.T) {
	s := NewSession()
	assert.False(t, s.AwaitingRestartAll())
	assert.Nil(t, s.PendingAction())

	s.mu.Lock()
	s.awaitingRestartAll = true
	s.pendingAction = &PendingLifecycleAction{Action: ActionStop}
	s.mu.Unlock()

	assert.True(t, s.AwaitingRestartAll())
	require.NotNil(t, s.PendingAction())
	assert.Equal(t, ActionStop, s.PendingAction().Action)
}
