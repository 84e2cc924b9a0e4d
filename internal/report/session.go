package report

import "sync"

// Phase is the conversation state of one report dialog.
type Phase int

const (
	// PhaseConfirmEdit means the user was asked whether to edit today's
	// already-submitted report.
	PhaseConfirmEdit Phase = iota + 1
	// PhaseMenu means the field menu is displayed and a field, submit,
	// cancel or reset action is expected.
	PhaseMenu
	// PhaseAwaitingValue means a field was selected and a text message with
	// its value (or /skip) is expected.
	PhaseAwaitingValue
)

// Session is one user's open report dialog: the draft under construction
// plus the engine phase. Owned exclusively by that user's conversation.
type Session struct {
	ChatID int64
	Phase  Phase
	Draft  *Draft

	// ConfirmMessageID is the "edit existing?" prompt, deleted once the
	// user decides.
	ConfirmMessageID int
}

// SessionStore maps a user to their open report session. Implementations
// must be safe for concurrent use; the in-memory store is the default and
// a persistent cache can be substituted later.
type SessionStore interface {
	Get(userID int64) (*Session, bool)
	Put(userID int64, s *Session)
	Delete(userID int64)
}

// MemorySessionStore keeps sessions in a process-local map. Sessions do not
// survive a restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]*Session)}
}

func (m *MemorySessionStore) Get(userID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *MemorySessionStore) Put(userID int64, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

func (m *MemorySessionStore) Delete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
