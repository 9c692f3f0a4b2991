package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
)

// Service handles questions and feedback for the HTTP layer.
type Service struct {
	pipeline Pipeline
	repo     Repository
	model    string
	logger   *zap.Logger
	newID    func() string
	now      func() time.Time
}

// New creates a conversation service. model may be empty to use the pipeline default.
func New(pipeline Pipeline, repo Repository, model string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pipeline: pipeline,
		repo:     repo,
		model:    model,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Ask answers a question and stores the conversation under a new random id.
// A blank question is rejected before any retrieval.
func (s *Service) Ask(ctx context.Context, question string) (conversation.Conversation, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return conversation.Conversation{}, domain.ErrEmptyQuestion
	}

	rec, err := s.pipeline.Answer(ctx, question, s.model)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("answer: %w", err)
	}

	c := conversation.Conversation{
		ID:        s.newID(),
		Question:  question,
		Record:    rec,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveConversation(ctx, c); err != nil {
		return conversation.Conversation{}, fmt.Errorf("save conversation %s: %w", c.ID, err)
	}

	s.logger.Info("question answered",
		zap.String("conversation_id", c.ID),
		zap.String("model", rec.Model),
		zap.String("relevance", string(rec.Relevance.Label)),
		zap.Duration("response_time", rec.ResponseTime),
		zap.Int("total_tokens", rec.Usage.TotalTokens+rec.EvalUsage.TotalTokens),
		zap.String("cost_usd", rec.Cost.String()),
	)
	return c, nil
}

// Feedback validates and stores a +1/-1 rating for a conversation.
// The conversation is not required to exist.
func (s *Service) Feedback(ctx context.Context, conversationID string, value int) (feedback.Feedback, error) {
	f, err := feedback.New(conversationID, value, s.now().UTC())
	if err != nil {
		return feedback.Feedback{}, err
	}
	if err := s.repo.SaveFeedback(ctx, f); err != nil {
		return feedback.Feedback{}, fmt.Errorf("save feedback %s: %w", f.ConversationID, err)
	}
	s.logger.Info("feedback received",
		zap.String("conversation_id", f.ConversationID),
		zap.Int("feedback", f.Value),
	)
	return f, nil
}

// Get returns a stored conversation with the feedback given on it.
func (s *Service) Get(ctx context.Context, id string) (conversation.Conversation, []feedback.Feedback, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return conversation.Conversation{}, nil, fmt.Errorf("conversation id is required: %w", domain.ErrNotFound)
	}
	c, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		return conversation.Conversation{}, nil, fmt.Errorf("get conversation: %w", err)
	}
	fb, err := s.repo.ListFeedback(ctx, id)
	if err != nil {
		return conversation.Conversation{}, nil, fmt.Errorf("list feedback: %w", err)
	}
	return c, fb, nil
}
