package session

import (
	"context"
	"sync"

	"github.com/jurisconnect/console/internal/observability"
)

// MemoryTokenStore keeps volatile tokens for the lifetime of the console
// process. Default tier for single-instance deployments.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

func (s *MemoryTokenStore) SetToken(ctx context.Context, sid, token string) error {
	s.mu.Lock()
	s.tokens[sid] = token
	s.mu.Unlock()
	observability.RecordSessionStoreOperation(ctx, "volatile", "set", "success")
	return nil
}

func (s *MemoryTokenStore) Token(ctx context.Context, sid string) (string, error) {
	s.mu.RLock()
	tok := s.tokens[sid]
	s.mu.RUnlock()
	return tok, nil
}

func (s *MemoryTokenStore) DeleteToken(ctx context.Context, sid string) error {
	s.mu.Lock()
	delete(s.tokens, sid)
	s.mu.Unlock()
	observability.RecordSessionStoreOperation(ctx, "volatile", "delete", "success")
	return nil
}
