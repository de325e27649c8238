package session

import (
	"sync"
	"time"

	"github.com/lojasmm/quickreplies/internal/quickreply"
	"github.com/lojasmm/quickreplies/internal/store"
)

// Manager keeps one Session per chat and serializes the events of a chat, so
// a mounted selector only ever sees one event at a time. Different chats run
// in parallel.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// Session is the per-chat state guarded by the chat lock.
type Session struct {
	mu       sync.Mutex
	lastUsed time.Time

	// Message is the displayed message and Selector the selector mounted for
	// its quick replies. Both are nil until the host loads them.
	Message  *store.Message
	Selector *quickreply.Selector
}

// Unmount forgets the displayed message.
func (s *Session) Unmount() {
	s.Message = nil
	s.Selector = nil
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// WithLock executes fn while holding the chat's lock.
func (m *Manager) WithLock(phone string, fn func(s *Session) error) error {
	m.mu.Lock()
	s, ok := m.sessions[phone]
	if !ok {
		s = &Session{}
		m.sessions[phone] = s
	}
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	return fn(s)
}

// Cleanup removes sessions not used within maxAge. Their selectors are
// dropped with them.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := time.Now()
	for phone, s := range m.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if now.Sub(s.lastUsed) > maxAge {
			delete(m.sessions, phone)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
