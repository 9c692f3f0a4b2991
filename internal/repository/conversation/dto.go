package conversation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/mealmentor/internal/domain/answer"
	domconv "github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
	"github.com/kailas-cloud/mealmentor/internal/domain/relevance"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// Hash field names of a stored conversation.
const (
	fieldQuestion             = "question"
	fieldAnswer               = "answer"
	fieldModel                = "model_used"
	fieldResponseTime         = "response_time"
	fieldRelevance            = "relevance"
	fieldRelevanceExplanation = "relevance_explanation"
	fieldPromptTokens         = "prompt_tokens"
	fieldCompletionTokens     = "completion_tokens"
	fieldTotalTokens          = "total_tokens"
	fieldEvalPromptTokens     = "eval_prompt_tokens"
	fieldEvalCompletionTokens = "eval_completion_tokens"
	fieldEvalTotalTokens      = "eval_total_tokens"
	fieldCost                 = "cost"
	fieldTimestamp            = "timestamp"
)

// buildHashFields flattens a conversation into HSET fields. Response time is in seconds.
func buildHashFields(c domconv.Conversation) map[string]string {
	r := c.Record
	return map[string]string{
		fieldQuestion:             c.Question,
		fieldAnswer:               r.Answer,
		fieldModel:                r.Model,
		fieldResponseTime:         strconv.FormatFloat(r.ResponseTime.Seconds(), 'f', -1, 64),
		fieldRelevance:            string(r.Relevance.Label),
		fieldRelevanceExplanation: r.Relevance.Explanation,
		fieldPromptTokens:         strconv.Itoa(r.Usage.PromptTokens),
		fieldCompletionTokens:     strconv.Itoa(r.Usage.CompletionTokens),
		fieldTotalTokens:          strconv.Itoa(r.Usage.TotalTokens),
		fieldEvalPromptTokens:     strconv.Itoa(r.EvalUsage.PromptTokens),
		fieldEvalCompletionTokens: strconv.Itoa(r.EvalUsage.CompletionTokens),
		fieldEvalTotalTokens:      strconv.Itoa(r.EvalUsage.TotalTokens),
		fieldCost:                 r.Cost.String(),
		fieldTimestamp:            c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// parseHashFields rebuilds a conversation from HGETALL output.
func parseHashFields(id string, m map[string]string) (domconv.Conversation, error) {
	secs, err := parseFloat(m, fieldResponseTime)
	if err != nil {
		return domconv.Conversation{}, err
	}
	var ints [6]int
	for i, f := range []string{
		fieldPromptTokens, fieldCompletionTokens, fieldTotalTokens,
		fieldEvalPromptTokens, fieldEvalCompletionTokens, fieldEvalTotalTokens,
	} {
		if ints[i], err = parseInt(m, f); err != nil {
			return domconv.Conversation{}, err
		}
	}
	cost := decimal.Zero
	if s := m[fieldCost]; s != "" {
		if cost, err = decimal.NewFromString(s); err != nil {
			return domconv.Conversation{}, fmt.Errorf("parse %s: %w", fieldCost, err)
		}
	}
	var ts time.Time
	if s := m[fieldTimestamp]; s != "" {
		if ts, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return domconv.Conversation{}, fmt.Errorf("parse %s: %w", fieldTimestamp, err)
		}
	}

	return domconv.Conversation{
		ID:       id,
		Question: m[fieldQuestion],
		Record: answer.Record{
			Answer:       m[fieldAnswer],
			Model:        m[fieldModel],
			ResponseTime: time.Duration(secs * float64(time.Second)),
			Relevance: relevance.Verdict{
				Label:       relevance.Label(m[fieldRelevance]),
				Explanation: m[fieldRelevanceExplanation],
			},
			Usage:     usage.New(ints[0], ints[1], ints[2]),
			EvalUsage: usage.New(ints[3], ints[4], ints[5]),
			Cost:      cost,
		},
		CreatedAt: ts,
	}, nil
}

func parseFloat(m map[string]string, field string) (float64, error) {
	s := m[field]
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return f, nil
}

func parseInt(m map[string]string, field string) (int, error) {
	s := m[field]
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return n, nil
}

// feedbackEntry is one element of the per-conversation feedback list.
type feedbackEntry struct {
	Feedback  int       `json:"feedback"`
	Timestamp time.Time `json:"timestamp"`
}

func encodeFeedback(f feedback.Feedback) (string, error) {
	b, err := json.Marshal(feedbackEntry{Feedback: f.Value, Timestamp: f.CreatedAt.UTC()})
	if err != nil {
		return "", fmt.Errorf("marshal feedback: %w", err)
	}
	return string(b), nil
}

func decodeFeedback(id, raw string) (feedback.Feedback, error) {
	var e feedbackEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return feedback.Feedback{}, fmt.Errorf("unmarshal feedback: %w", err)
	}
	return feedback.Feedback{ConversationID: id, Value: e.Feedback, CreatedAt: e.Timestamp}, nil
}
