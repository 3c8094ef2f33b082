package sessionrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/citysafe/crimebot/internal/domain/chat"
)

// MemoryStore keeps conversation contexts in process memory, used for tests
// and single-instance deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[uuid.UUID]chat.Context
}

// NewMemoryStore constructs the in-memory context store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[uuid.UUID]chat.Context)}
}

// Get implements chat.ContextStore.
func (s *MemoryStore) Get(_ context.Context, sessionID uuid.UUID) (chat.Context, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	convo, ok := s.contexts[sessionID]
	return convo, ok, nil
}

// Save implements chat.ContextStore.
func (s *MemoryStore) Save(_ context.Context, sessionID uuid.UUID, convo chat.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[sessionID] = convo
	return nil
}

// Clear implements chat.ContextStore.
func (s *MemoryStore) Clear(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, sessionID)
	return nil
}
