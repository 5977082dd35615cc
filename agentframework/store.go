// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"slices"
	"sync"
)

// MessageStore holds the history of one [Session].
type MessageStore interface {
	// ListMessages returns the stored messages, oldest first.
	ListMessages(ctx context.Context) ([]Message, error)
	// AddMessages appends msgs in order.
	AddMessages(ctx context.Context, msgs []Message) error
}

// InMemoryStore keeps the history in process memory. It is the default
// store of every session and is safe for concurrent use.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// ListMessages returns a copy of the history.
func (s *InMemoryStore) ListMessages(context.Context) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages), nil
}

func (s *InMemoryStore) AddMessages(_ context.Context, msgs []Message) error {
	s.mu.Lock()
	s.messages = append(s.messages, msgs...)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored messages.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
