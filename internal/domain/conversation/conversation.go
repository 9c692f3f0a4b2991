package conversation

import (
	"time"

	"github.com/kailas-cloud/mealmentor/internal/domain/answer"
)

// Conversation is a question, its generated answer record and the id feedback refers to.
type Conversation struct {
	ID        string
	Question  string
	Record    answer.Record
	CreatedAt time.Time
}
