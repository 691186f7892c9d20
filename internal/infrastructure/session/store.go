package session

import (
	"sync"
	"time"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

// Store is an in-memory session map with lazy time-based expiry: entries are
// checked on access instead of swept by a background job. An expired entry
// reads as absent and is replaced on the next write.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	ttl      time.Duration
	maxTurns int
	now      func() time.Time
}

type entry struct {
	turns     []domain.Turn
	expiresAt time.Time
}

func NewStore(ttl time.Duration, maxTurns int) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

// History returns a copy of the retained turns, oldest first. Expired or
// unknown sessions yield nil.
func (s *Store) History(sessionID string) []domain.Turn {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	if !ok || s.expired(e) {
		s.mu.RUnlock()
		return nil
	}
	out := make([]domain.Turn, len(e.turns))
	copy(out, e.turns)
	s.mu.RUnlock()
	return out
}

// AppendTurn records an exchange and refreshes the session expiry. Retention
// is bounded: the oldest turns fall off past maxTurns.
func (s *Store) AppendTurn(sessionID string, turn domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok || s.expired(e) {
		e = &entry{}
		s.sessions[sessionID] = e
	}

	e.turns = append(e.turns, turn)
	if len(e.turns) > s.maxTurns {
		e.turns = e.turns[len(e.turns)-s.maxTurns:]
	}
	e.expiresAt = s.now().Add(s.ttl)
}

// Clear removes a session, reporting whether a live one existed.
func (s *Store) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return !s.expired(e)
}

func (s *Store) expired(e *entry) bool {
	return !e.expiresAt.After(s.now())
}
