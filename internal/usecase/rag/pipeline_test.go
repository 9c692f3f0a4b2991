package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/recipe"
	"github.com/kailas-cloud/mealmentor/internal/domain/relevance"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
	"github.com/kailas-cloud/mealmentor/internal/index"
	"github.com/kailas-cloud/mealmentor/internal/index/memory"
	"github.com/kailas-cloud/mealmentor/internal/usecase/cost"
	"github.com/kailas-cloud/mealmentor/internal/usecase/evaluation"
	"github.com/kailas-cloud/mealmentor/internal/usecase/generation"
	"github.com/kailas-cloud/mealmentor/internal/usecase/prompt"
	"github.com/kailas-cloud/mealmentor/internal/usecase/retrieval"
)

// stubCompleter answers generation prompts with a fixed text and evaluation
// prompts with a fixed verdict.
type stubCompleter struct {
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	s.prompts = append(s.prompts, req.Prompt)
	if req.JSON {
		return domain.Completion{
			Text:  `{"Relevance": "RELEVANT", "Explanation": "Mentions a high-protein vegan recipe."}`,
			Usage: usage.New(300, 20, 320),
		}, nil
	}
	return domain.Completion{Text: "Vegan Bowl", Usage: usage.New(1000, 10, 1010)}, nil
}

func TestPipeline_EndToEnd(t *testing.T) {
	docs := []document.Document{
		document.New(map[string]string{
			"id": "1", "recipe_name": "Vegan Bowl", "diet_type": "vegan", "cuisine_type": "asian",
			"protein(g)": "20.5", "carbs(g)": "40.0", "fat(g)": "10.0",
		}),
		document.New(map[string]string{
			"id": "2", "recipe_name": "Beef Stew", "diet_type": "paleo", "cuisine_type": "american",
			"protein(g)": "35.0", "carbs(g)": "12.0", "fat(g)": "18.0",
		}),
	}
	idx, err := index.Build(context.Background(), memory.NewBuilder(nil), docs, index.Fields{
		Text:    recipe.TextFields,
		Keyword: recipe.KeywordFields,
	})
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	llm := &stubCompleter{}
	gen := generation.New(llm, nil)
	pricer, err := cost.New(nil, nil)
	if err != nil {
		t.Fatalf("cost.New: %v", err)
	}
	svc := New(
		retrieval.New(idx),
		prompt.New(),
		gen,
		evaluation.New(gen, nil),
		pricer,
		"gpt-4o-mini",
		nil,
	)

	rec, err := svc.Answer(context.Background(), "What is a good vegan high-protein bowl?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Answer != "Vegan Bowl" {
		t.Errorf("answer = %q", rec.Answer)
	}
	if rec.Relevance.Label != relevance.Relevant {
		t.Errorf("relevance = %s", rec.Relevance.Label)
	}
	if rec.Usage.PromptTokens != 1000 || rec.EvalUsage.PromptTokens != 300 {
		t.Errorf("usage = %+v / %+v", rec.Usage, rec.EvalUsage)
	}
	// gen: (1000*0.00015 + 10*0.0006)/1000, eval: (300*0.00015 + 20*0.0006)/1000
	if got := rec.Cost.String(); got != "0.000213" {
		t.Errorf("cost = %s, want 0.000213", got)
	}

	if len(llm.prompts) != 2 {
		t.Fatalf("completer calls = %d, want 2", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "recipe_name: Vegan Bowl") {
		t.Errorf("generation prompt lacks the retrieved recipe:\n%s", llm.prompts[0])
	}
	if !strings.Contains(llm.prompts[1], "Generated Answer: Vegan Bowl") {
		t.Errorf("evaluation prompt lacks the answer:\n%s", llm.prompts[1])
	}
}

// scriptedCompleter returns answer for generation calls, and verdict or evalErr
// for evaluation calls.
type scriptedCompleter struct {
	answer  string
	verdict string
	evalErr error
}

func (s *scriptedCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	if !req.JSON {
		return domain.Completion{Text: s.answer, Usage: usage.New(120, 15, 0)}, nil
	}
	if s.evalErr != nil {
		return domain.Completion{}, s.evalErr
	}
	return domain.Completion{Text: s.verdict, Usage: usage.New(90, 12, 0)}, nil
}

func TestPipeline_ScenarioA(t *testing.T) {
	docs := []document.Document{
		document.New(map[string]string{
			"recipe_name": "Pasta Primavera", "cuisine_type": "Italian", "diet_type": "vegetarian",
			"protein(g)": "12", "carbs(g)": "45", "fat(g)": "8",
		}),
	}
	idx, err := index.Build(context.Background(), memory.NewBuilder(nil), docs, index.Fields{
		Text:    recipe.TextFields,
		Keyword: recipe.KeywordFields,
	})
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	pricer, err := cost.New(nil, nil)
	if err != nil {
		t.Fatalf("cost.New: %v", err)
	}

	const answerText = "Try Pasta Primavera."
	tests := []struct {
		name     string
		llm      *scriptedCompleter
		want     relevance.Label
		evalZero bool
	}{
		{"relevant", &scriptedCompleter{answer: answerText, verdict: `{"Relevance": "RELEVANT", "Explanation": "ok"}`}, relevance.Relevant, false},
		{"garbage verdict", &scriptedCompleter{answer: answerText, verdict: "definitely relevant"}, relevance.Unknown, false},
		{"evaluation call fails", &scriptedCompleter{answer: answerText, evalErr: errors.New("eval transport down")}, relevance.Unknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := generation.New(tt.llm, nil)
			svc := New(retrieval.New(idx), prompt.New(), gen, evaluation.New(gen, nil), pricer, "gpt-4o-mini", nil)

			rec, err := svc.Answer(context.Background(), "What is a nice healthy Italian recipe?", "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Answer != answerText {
				t.Errorf("answer = %q, want %q", rec.Answer, answerText)
			}
			switch rec.Relevance.Label {
			case relevance.Relevant, relevance.PartlyRelevant, relevance.NonRelevant, relevance.Unknown:
			default:
				t.Errorf("relevance %q is not a defined verdict", rec.Relevance.Label)
			}
			if rec.Relevance.Label != tt.want {
				t.Errorf("relevance = %s, want %s", rec.Relevance.Label, tt.want)
			}
			for name, n := range map[string]int{
				"prompt": rec.Usage.PromptTokens, "completion": rec.Usage.CompletionTokens, "total": rec.Usage.TotalTokens,
				"eval prompt": rec.EvalUsage.PromptTokens, "eval completion": rec.EvalUsage.CompletionTokens,
				"eval total": rec.EvalUsage.TotalTokens,
			} {
				if n < 0 {
					t.Errorf("%s tokens = %d, want >= 0", name, n)
				}
			}
			if rec.EvalUsage.IsZero() != tt.evalZero {
				t.Errorf("eval usage = %+v", rec.EvalUsage)
			}
			if rec.Cost.IsNegative() {
				t.Errorf("cost = %s, want >= 0", rec.Cost)
			}
		})
	}
}
