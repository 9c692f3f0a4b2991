package mealmentor

import (
	"time"

	"github.com/shopspring/decimal"

	domconv "github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// Relevance labels assigned by the evaluator.
const (
	Relevant       = "RELEVANT"
	PartlyRelevant = "PARTLY_RELEVANT"
	NonRelevant    = "NON_RELEVANT"
	Unknown        = "UNKNOWN"
)

// Usage is the token accounting of one LLM call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Answer is one answered question and everything measured while answering it.
type Answer struct {
	ConversationID       string
	Question             string
	Text                 string
	Model                string
	ResponseTime         time.Duration
	Relevance            string
	RelevanceExplanation string
	Usage                Usage // answer generation
	EvalUsage            Usage // relevance evaluation
	CostUSD              decimal.Decimal
	CreatedAt            time.Time
}

// Conversation is a stored answer with the feedback votes given on it.
type Conversation struct {
	Answer
	Feedback []int
}

func toUsage(u usage.TokenUsage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

func toAnswer(c domconv.Conversation) Answer {
	return Answer{
		ConversationID:       c.ID,
		Question:             c.Question,
		Text:                 c.Record.Answer,
		Model:                c.Record.Model,
		ResponseTime:         c.Record.ResponseTime,
		Relevance:            string(c.Record.Relevance.Label),
		RelevanceExplanation: c.Record.Relevance.Explanation,
		Usage:                toUsage(c.Record.Usage),
		EvalUsage:            toUsage(c.Record.EvalUsage),
		CostUSD:              c.Record.Cost,
		CreatedAt:            c.CreatedAt,
	}
}

func toConversation(c domconv.Conversation, fbs []feedback.Feedback) Conversation {
	votes := make([]int, 0, len(fbs))
	for _, f := range fbs {
		votes = append(votes, f.Value)
	}
	return Conversation{Answer: toAnswer(c), Feedback: votes}
}
