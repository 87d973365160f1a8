package tutor

import (
	"sync"

	"mentora/internal/domain"
)

// InflightGuard enforces at most one in-flight generation per conversation.
// Overlapping requests are rejected rather than queued, so partial updates
// from two streams can never interleave into the same turn.
type InflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewInflightGuard creates an empty guard.
func NewInflightGuard() *InflightGuard {
	return &InflightGuard{active: make(map[string]struct{})}
}

// Acquire marks the conversation as having a generation in flight. Returns
// domain.ErrConflict (as a ConflictError) if one already is.
func (g *InflightGuard) Acquire(conversationID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[conversationID]; busy {
		return &domain.ConflictError{Message: "a response is already being generated for this conversation"}
	}
	g.active[conversationID] = struct{}{}
	return nil
}

// Release clears the in-flight mark. Safe to call for an unknown id.
func (g *InflightGuard) Release(conversationID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, conversationID)
}
