package assistant

import (
	"sync"

	"github.com/google/uuid"
)

// LifecycleAction is a container lifecycle verb recognized from free text.
type LifecycleAction string

const (
	ActionStart   LifecycleAction = "start"
	ActionStop    LifecycleAction = "stop"
	ActionRestart LifecycleAction = "restart"
	ActionPause   LifecycleAction = "pause"
	ActionUnpause LifecycleAction = "unpause"
	ActionDelete  LifecycleAction = "delete"
)

// PendingLifecycleAction is a lifecycle verb recognized without a target,
// waiting for the next turn to name one.
type PendingLifecycleAction struct {
	Action LifecycleAction
	Target string
}

// Session holds the multi-turn state of one conversation. At most one
// pending interaction is active at a time; the restart-all confirmation
// takes precedence over everything else while awaiting.
type Session struct {
	ID string

	mu                 sync.Mutex
	pendingAction      *PendingLifecycleAction
	awaitingRestartAll bool
}

// NewSession creates a session with a fresh ID.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// AwaitingRestartAll reports whether the session is waiting for a yes/no on
// a bulk restart.
func (s *Session) AwaitingRestartAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingRestartAll
}

// PendingAction returns the pending lifecycle action, or nil.
func (s *Session) PendingAction() *PendingLifecycleAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingAction
}

// SessionManager keys sessions by ID, creating them on first use. Calls
// against the same session are serialized by the session's own lock held by
// the router for the duration of one Interpret call.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Get returns the session for the given ID, creating it if needed. An empty
// ID always yields a brand-new session.
func (m *SessionManager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		s := NewSession()
		m.sessions[s.ID] = s
		return s
	}
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{ID: id}
	m.sessions[id] = s
	return s
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
