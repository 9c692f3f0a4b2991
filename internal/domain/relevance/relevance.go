package relevance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Label is a relevance classification.
type Label string

// Relevance labels. Unknown is only produced locally when the evaluator output cannot be parsed.
const (
	Relevant       Label = "RELEVANT"
	PartlyRelevant Label = "PARTLY_RELEVANT"
	NonRelevant    Label = "NON_RELEVANT"
	Unknown        Label = "UNKNOWN"
)

// UnknownExplanation accompanies the Unknown fallback verdict.
const UnknownExplanation = "Failed to parse evaluation"

// IsValid reports whether l is one of the three labels an evaluator may return.
func (l Label) IsValid() bool {
	switch l {
	case Relevant, PartlyRelevant, NonRelevant:
		return true
	}
	return false
}

// Verdict is the outcome of a relevance evaluation.
type Verdict struct {
	Label       Label
	Explanation string
}

// UnknownVerdict is the recovery value substituted on parse failure.
func UnknownVerdict() Verdict {
	return Verdict{Label: Unknown, Explanation: UnknownExplanation}
}

// ParseError describes evaluator output that is not a usable verdict.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse relevance verdict: %s", e.Reason)
}

type payload struct {
	Relevance   *string `json:"Relevance"`
	Explanation string  `json:"Explanation"`
}

// Parse decodes evaluator output of the form {"Relevance": ..., "Explanation": ...}.
// Any deviation (invalid JSON, missing or unknown label) yields a *ParseError.
func Parse(raw string) (Verdict, error) {
	var p payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &p); err != nil {
		return Verdict{}, &ParseError{Raw: raw, Reason: err.Error()}
	}
	if p.Relevance == nil {
		return Verdict{}, &ParseError{Raw: raw, Reason: "missing Relevance"}
	}
	label := Label(*p.Relevance)
	if !label.IsValid() {
		return Verdict{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("unknown label %q", *p.Relevance)}
	}
	return Verdict{Label: label, Explanation: p.Explanation}, nil
}
