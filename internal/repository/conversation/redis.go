package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/mealmentor/internal/db"
	"github.com/kailas-cloud/mealmentor/internal/domain"
	domconv "github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
)

// store is the consumer interface for conversations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// RedisRepo stores conversations as hashes and feedback as per-conversation lists.
type RedisRepo struct {
	store  store
	prefix string
}

// NewRedis creates a Redis-backed repository. prefix is prepended to every key.
func NewRedis(s store, prefix string) *RedisRepo {
	return &RedisRepo{store: s, prefix: prefix}
}

func (r *RedisRepo) conversationKey(id string) string { return r.prefix + "conversation:" + id }
func (r *RedisRepo) feedbackKey(id string) string     { return r.prefix + "feedback:" + id }

// SaveConversation writes (or overwrites) the conversation hash.
func (r *RedisRepo) SaveConversation(ctx context.Context, c domconv.Conversation) error {
	key := r.conversationKey(c.ID)
	if err := r.store.HSet(ctx, key, buildHashFields(c)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// SaveFeedback appends the feedback to the conversation's list.
func (r *RedisRepo) SaveFeedback(ctx context.Context, f feedback.Feedback) error {
	entry, err := encodeFeedback(f)
	if err != nil {
		return err
	}
	key := r.feedbackKey(f.ConversationID)
	if err := r.store.RPush(ctx, key, entry); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}

// GetConversation loads a conversation. Missing ids yield domain.ErrNotFound.
func (r *RedisRepo) GetConversation(ctx context.Context, id string) (domconv.Conversation, error) {
	key := r.conversationKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domconv.Conversation{}, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return domconv.Conversation{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseHashFields(id, m)
}

// ListFeedback returns all feedback for a conversation in submission order.
func (r *RedisRepo) ListFeedback(ctx context.Context, conversationID string) ([]feedback.Feedback, error) {
	key := r.feedbackKey(conversationID)
	raw, err := r.store.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	out := make([]feedback.Feedback, 0, len(raw))
	for _, s := range raw {
		f, err := decodeFeedback(conversationID, s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
