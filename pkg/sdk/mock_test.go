package mealmentor

import (
	"context"

	domconv "github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
	healthuc "github.com/kailas-cloud/mealmentor/internal/usecase/health"
)

// --- conversationUseCase mock ---

type mockConversationUC struct {
	askFn      func(ctx context.Context, question string) (domconv.Conversation, error)
	feedbackFn func(ctx context.Context, id string, value int) (feedback.Feedback, error)
	getFn      func(ctx context.Context, id string) (domconv.Conversation, []feedback.Feedback, error)
}

func (m *mockConversationUC) Ask(ctx context.Context, question string) (domconv.Conversation, error) {
	return m.askFn(ctx, question)
}

func (m *mockConversationUC) Feedback(ctx context.Context, id string, value int) (feedback.Feedback, error) {
	return m.feedbackFn(ctx, id, value)
}

func (m *mockConversationUC) Get(
	ctx context.Context, id string,
) (domconv.Conversation, []feedback.Feedback, error) {
	return m.getFn(ctx, id)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- Completer stub ---

type stubCompleter struct {
	answer  string
	verdict string
	err     error
	calls   []CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return Completion{}, s.err
	}
	if req.JSON {
		return Completion{Text: s.verdict, PromptTokens: 50, CompletionTokens: 10}, nil
	}
	return Completion{Text: s.answer, PromptTokens: 100, CompletionTokens: 20}, nil
}

func testRecipes() []map[string]string {
	return []map[string]string{
		{
			"id": "0", "recipe_name": "Keto Salmon with Garlic Butter", "diet_type": "keto",
			"cuisine_type": "american", "protein(g)": "39.6", "carbs(g)": "2.1", "fat(g)": "41.2",
		},
		{
			"id": "1", "recipe_name": "Vegan Chickpea Curry", "diet_type": "vegan",
			"cuisine_type": "indian", "protein(g)": "14.2", "carbs(g)": "48.6", "fat(g)": "11.3",
		},
		{
			"id": "2", "recipe_name": "Tofu Stir Fry", "diet_type": "vegan",
			"cuisine_type": "chinese", "protein(g)": "21.8", "carbs(g)": "24.9", "fat(g)": "13.5",
		},
	}
}
