package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// --- Mocks ---

type mockCompleter struct {
	resp     domain.Completion
	err      error
	lastReq  domain.CompletionRequest
	deadline time.Time
	calls    int
}

func (m *mockCompleter) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	m.calls++
	m.lastReq = req
	m.deadline, _ = ctx.Deadline()
	return m.resp, m.err
}

type mockCounter struct{ n int }

func (m *mockCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return m.n
}

// --- Tests ---

func TestGenerate_Success(t *testing.T) {
	c := &mockCompleter{resp: domain.Completion{Text: "Try the vegan bowl.", Usage: usage.New(120, 30, 150)}}
	svc := New(c, nil)

	text, u, err := svc.Generate(context.Background(), "prompt", "gpt-4o")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Try the vegan bowl." {
		t.Errorf("text = %q", text)
	}
	if u.PromptTokens != 120 || u.CompletionTokens != 30 || u.TotalTokens != 150 {
		t.Errorf("usage = %+v", u)
	}
	if c.lastReq.Model != "gpt-4o" || c.lastReq.JSON {
		t.Errorf("request = %+v", c.lastReq)
	}
	if c.calls != 1 {
		t.Errorf("calls = %d, want 1", c.calls)
	}
}

func TestGenerate_DefaultModel(t *testing.T) {
	c := &mockCompleter{resp: domain.Completion{Text: "ok"}}
	svc := New(c, nil)

	if _, _, err := svc.Generate(context.Background(), "p", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", c.lastReq.Model)
	}
}

func TestGenerate_Deadline(t *testing.T) {
	c := &mockCompleter{resp: domain.Completion{Text: "ok"}}
	svc := New(c, nil, WithTimeout(5*time.Second))

	before := time.Now()
	if _, _, err := svc.Generate(context.Background(), "p", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.deadline.IsZero() {
		t.Fatal("completer call must carry a deadline")
	}
	if d := c.deadline.Sub(before); d > 6*time.Second || d < 4*time.Second {
		t.Errorf("deadline in %v, want ~5s", d)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	c := &mockCompleter{err: errors.New("connection refused")}
	svc := New(c, nil)

	_, _, err := svc.Generate(context.Background(), "p", "")
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
	if c.calls != 1 {
		t.Errorf("calls = %d, generation must not retry", c.calls)
	}
}

func TestGenerate_BlankCompletionReturnedUnchanged(t *testing.T) {
	c := &mockCompleter{resp: domain.Completion{Text: "  \n", Usage: usage.New(40, 2, 42)}}
	svc := New(c, nil)

	text, u, err := svc.Generate(context.Background(), "p", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "  \n" {
		t.Errorf("text = %q, want the completion unchanged", text)
	}
	if u.TotalTokens != 42 {
		t.Errorf("usage = %+v, want provider-reported 42", u)
	}
}

func TestGenerate_EstimatesMissingUsage(t *testing.T) {
	c := &mockCompleter{resp: domain.Completion{Text: "answer"}}
	svc := New(c, nil, WithTokenCounter(&mockCounter{n: 7}))

	_, u, err := svc.Generate(context.Background(), "prompt", "llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.PromptTokens != 7 || u.CompletionTokens != 7 || u.TotalTokens != 14 {
		t.Errorf("usage = %+v, want 7/7/14", u)
	}
}

func TestGenerate_ReportedUsageNotEstimated(t *testing.T) {
	c := &mockCompleter{resp: domain.Completion{Text: "answer", Usage: usage.New(1, 2, 3)}}
	svc := New(c, nil, WithTokenCounter(&mockCounter{n: 100}))

	_, u, _ := svc.Generate(context.Background(), "prompt", "")
	if u.TotalTokens != 3 {
		t.Errorf("total = %d, want provider-reported 3", u.TotalTokens)
	}
}

func TestGenerateJSON(t *testing.T) {
	c := &mockCompleter{resp: domain.Completion{Text: "{}"}}
	svc := New(c, nil)

	if _, _, err := svc.GenerateJSON(context.Background(), "p", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.lastReq.JSON {
		t.Error("JSON flag must be set")
	}
}
