// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds the conversation history of one logical conversation.
// Runs that share a session are serialized, so each run sees the complete
// history of the runs before it. Distinct sessions never share history.
type Session struct {
	id    string
	store MessageStore

	// run is a one-slot semaphore serializing agent runs on this session.
	run chan struct{}

	mu         sync.Mutex
	lastActive time.Time
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithSessionStore sets the message store for the session.
func WithSessionStore(store MessageStore) SessionOption {
	return func(s *Session) { s.store = store }
}

// WithSessionID uses id instead of a generated identifier.
func WithSessionID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

// NewSession creates a new Session with a generated ID and an in-memory store.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id:         uuid.NewString(),
		run:        make(chan struct{}, 1),
		lastActive: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewInMemoryStore()
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Store returns the session's message store.
func (s *Session) Store() MessageStore { return s.store }

// Messages returns the stored history.
func (s *Session) Messages(ctx context.Context) ([]Message, error) {
	msgs, err := s.store.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %w", ErrSession, err)
	}
	return msgs, nil
}

// LastActive reports when the session was created or last used by a run.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// lock acquires the run slot, giving up when ctx is done.
func (s *Session) lock(ctx context.Context) error {
	select {
	case s.run <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for session %s: %w", ErrSession, s.id, ctx.Err())
	}
}

func (s *Session) unlock() {
	s.touch()
	<-s.run
}

// InUse reports whether a run currently holds the session.
func (s *Session) InUse() bool { return len(s.run) > 0 }
