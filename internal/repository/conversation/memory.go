package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	domconv "github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
)

// MemoryRepo keeps conversations in process memory. Safe for concurrent use.
type MemoryRepo struct {
	mu            sync.RWMutex
	conversations map[string]domconv.Conversation
	feedback      map[string][]feedback.Feedback
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{
		conversations: make(map[string]domconv.Conversation),
		feedback:      make(map[string][]feedback.Feedback),
	}
}

// SaveConversation stores or replaces a conversation.
func (r *MemoryRepo) SaveConversation(_ context.Context, c domconv.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[c.ID] = c
	return nil
}

// SaveFeedback appends feedback for a conversation.
func (r *MemoryRepo) SaveFeedback(_ context.Context, f feedback.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback[f.ConversationID] = append(r.feedback[f.ConversationID], f)
	return nil
}

// GetConversation returns a stored conversation or domain.ErrNotFound.
func (r *MemoryRepo) GetConversation(_ context.Context, id string) (domconv.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[id]
	if !ok {
		return domconv.Conversation{}, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// ListFeedback returns a copy of the feedback for a conversation.
func (r *MemoryRepo) ListFeedback(_ context.Context, conversationID string) ([]feedback.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]feedback.Feedback(nil), r.feedback[conversationID]...), nil
}

// Ping always succeeds.
func (r *MemoryRepo) Ping(context.Context) error { return nil }
