package feedback

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/mealmentor/internal/domain"
)

// Feedback values.
const (
	Positive = 1
	Negative = -1
)

// Feedback is a thumbs-up/down on a conversation.
type Feedback struct {
	ConversationID string
	Value          int
	CreatedAt      time.Time
}

// New validates and creates Feedback. The conversation id is trimmed; an empty id
// or a value other than 1 or -1 yields domain.ErrInvalidFeedback.
func New(conversationID string, value int, now time.Time) (Feedback, error) {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return Feedback{}, fmt.Errorf("%w: conversation_id is required", domain.ErrInvalidFeedback)
	}
	if value != Positive && value != Negative {
		return Feedback{}, fmt.Errorf("%w: feedback must be 1 or -1, got %d", domain.ErrInvalidFeedback, value)
	}
	return Feedback{ConversationID: id, Value: value, CreatedAt: now}, nil
}
