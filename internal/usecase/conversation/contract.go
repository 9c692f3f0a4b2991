package conversation

import (
	"context"

	"github.com/kailas-cloud/mealmentor/internal/domain/answer"
	"github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
)

// Pipeline answers one question.
type Pipeline interface {
	Answer(ctx context.Context, question, model string) (answer.Record, error)
}

// Repository persists conversations and the feedback given on them.
type Repository interface {
	SaveConversation(ctx context.Context, c conversation.Conversation) error
	SaveFeedback(ctx context.Context, f feedback.Feedback) error
	GetConversation(ctx context.Context, id string) (conversation.Conversation, error)
	ListFeedback(ctx context.Context, conversationID string) ([]feedback.Feedback, error)
}
