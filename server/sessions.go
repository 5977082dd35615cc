package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

// SessionTable tracks the live sessions of the server by ID and evicts the
// ones idle for longer than the TTL.
type SessionTable struct {
	mu       sync.Mutex
	sessions map[string]*af.Session
	shared   *af.Session

	ttl        time.Duration
	newSession func() *af.Session
	now        func() time.Time
	logger     *slog.Logger
}

// NewSessionTable creates a table that builds sessions with newSession.
func NewSessionTable(ttl time.Duration, newSession func() *af.Session, logger *slog.Logger) *SessionTable {
	return &SessionTable{
		sessions:   make(map[string]*af.Session),
		ttl:        ttl,
		newSession: newSession,
		now:        time.Now,
		logger:     logger,
	}
}

// Get returns the session registered under id.
func (t *SessionTable) Get(id string) (*af.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	return s, ok
}

// Create registers and returns a new session.
func (t *SessionTable) Create() *af.Session {
	s := t.newSession()
	t.mu.Lock()
	t.sessions[s.ID()] = s
	t.mu.Unlock()
	return s
}

// Shared returns the process-wide session, creating it on first use. It is
// never evicted.
func (t *SessionTable) Shared() *af.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shared == nil {
		t.shared = t.newSession()
		t.sessions[t.shared.ID()] = t.shared
	}
	return t.shared
}

// Len returns the number of registered sessions.
func (t *SessionTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Evict removes sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a run in progress are kept.
func (t *SessionTable) Evict() int {
	cutoff := t.now().Add(-t.ttl)

	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for id, s := range t.sessions {
		if s == t.shared || s.InUse() || !s.LastActive().Before(cutoff) {
			continue
		}
		delete(t.sessions, id)
		evicted++
	}
	return evicted
}

// janitor evicts idle sessions until ctx is done.
func (t *SessionTable) janitor(ctx context.Context) {
	interval := t.ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Evict(); n > 0 {
				t.logger.DebugContext(ctx, "evicted idle sessions", "count", n, "remaining", t.Len())
			}
		}
	}
}
