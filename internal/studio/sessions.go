package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrSessionLimit is returned when every session slot holds a call in flight.
var ErrSessionLimit = errors.New("studio: too many active sessions")

// Factory builds the orchestrator for a new session.
type Factory func(sessionID string) (*Orchestrator, error)

type sessionEntry struct {
	orch     *Orchestrator
	lastSeen time.Time
}

// Sessions keeps one Orchestrator per browser session and evicts idle ones.
type Sessions struct {
	factory Factory
	ttl     time.Duration
	limit   int
	logger  zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessions creates a registry holding at most limit sessions. A zero ttl
// disables idle eviction and a non-positive limit disables the bound.
func NewSessions(factory Factory, ttl time.Duration, limit int, logger zerolog.Logger) *Sessions {
	return &Sessions{
		factory: factory,
		ttl:     ttl,
		limit:   limit,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// Get returns the orchestrator of sessionID, creating it on first use.
func (s *Sessions) Get(sessionID string) (*Orchestrator, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("studio: session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[sessionID]; ok {
		e.lastSeen = s.now()
		return e.orch, nil
	}
	if s.limit > 0 && len(s.entries) >= s.limit && !s.evictOldestLocked() {
		return nil, ErrSessionLimit
	}
	orch, err := s.factory(sessionID)
	if err != nil {
		return nil, fmt.Errorf("studio: create session: %w", err)
	}
	s.entries[sessionID] = &sessionEntry{orch: orch, lastSeen: s.now()}
	s.logger.Debug().Str("session_id", sessionID).Msg("studio: session created")
	return orch, nil
}

// evictOldestLocked drops the least recently seen session without a call in
// flight.
func (s *Sessions) evictOldestLocked() bool {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if e.orch.Snapshot().State.IsLoading() {
			continue
		}
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID == "" {
		return false
	}
	delete(s.entries, oldestID)
	s.logger.Debug().Str("session_id", oldestID).Msg("studio: evicted session at capacity")
	return true
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes sessions idle for longer than the ttl. Sessions with a call in
// flight are kept.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.After(cutoff) || e.orch.Snapshot().State.IsLoading() {
			continue
		}
		delete(s.entries, id)
		removed++
	}
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("studio: evicted idle sessions")
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
