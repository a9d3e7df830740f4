// Package session owns live game sessions: the in-memory store with
// per-session locking and the controller that orchestrates session
// creation and turn execution.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mindfold/biaslab/internal/engine"
)

// Session is one player's run through a scenario. All mutable fields are
// guarded by mu; at most one turn is in flight per session.
type Session struct {
	mu sync.Mutex

	ID         string
	ScenarioID string
	RuleSet    engine.RuleSet
	Difficulty engine.Difficulty
	Params     engine.RuleParams

	State   engine.State
	History engine.History
	Queue   engine.EffectQueue

	CreatedAt    time.Time
	LastActivity time.Time
}

// Store is the in-memory session map. Eviction is whole-session LRU: an
// evicted id behaves exactly like one that never existed.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	lastUsed map[string]time.Time
	cap      int
}

// DefaultCap bounds the session map when no cap is configured.
const DefaultCap = 4096

// NewStore creates a store holding at most cap sessions (DefaultCap when
// cap <= 0).
func NewStore(cap int) *Store {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Store{
		sessions: make(map[string]*Session),
		lastUsed: make(map[string]time.Time),
		cap:      cap,
	}
}

// Put inserts a session, evicting the least recently used one if the
// store is full.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.cap {
		s.evictOldest()
	}
	s.sessions[sess.ID] = sess
	s.lastUsed[sess.ID] = time.Now()
}

// Get returns the session for id, or nil. A hit refreshes the LRU clock.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	s.lastUsed[id] = time.Now()
	return sess
}

// Delete removes a session. Subsequent lookups report UnknownSession.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.lastUsed, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evictOldest drops the least recently touched session. Caller holds mu.
func (s *Store) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, t := range s.lastUsed {
		if oldestID == "" || t.Before(oldest) {
			oldestID, oldest = id, t
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.sessions, oldestID)
	delete(s.lastUsed, oldestID)
	slog.Info("session evicted", "session_id", oldestID, "idle_since", oldest)
}
