package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/mealmentor/internal/domain"
)

type generateRequest struct {
	Model  string          `json:"model"`
	Prompt string          `json:"prompt"`
	Stream *bool           `json:"stream"`
	Format json.RawMessage `json:"format"`
}

func newTestCompleter(t *testing.T, h http.HandlerFunc) *Completer {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c, err := NewCompleter(server.URL, server.Client(), nil)
	if err != nil {
		t.Fatalf("NewCompleter: %v", err)
	}
	return c
}

func TestCompleter_Complete(t *testing.T) {
	var got generateRequest
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3",
			"response":          "Try the Vegan Bowl.",
			"done":              true,
			"prompt_eval_count": 90,
			"eval_count":        12,
		})
	})

	res, err := c.Complete(context.Background(), domain.CompletionRequest{Prompt: "PROMPT", Model: "llama3"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if res.Text != "Try the Vegan Bowl." {
		t.Errorf("text = %q", res.Text)
	}
	if res.Usage.PromptTokens != 90 || res.Usage.CompletionTokens != 12 || res.Usage.TotalTokens != 102 {
		t.Errorf("usage = %+v", res.Usage)
	}
	if got.Model != "llama3" || got.Prompt != "PROMPT" {
		t.Errorf("request = %+v", got)
	}
	if got.Stream == nil || *got.Stream {
		t.Error("request must disable streaming")
	}
	if len(got.Format) != 0 {
		t.Errorf("format must be unset, got %s", got.Format)
	}
}

func TestCompleter_JSONFormat(t *testing.T) {
	var got generateRequest
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"response": `{"Relevance":"RELEVANT"}`, "done": true})
	})

	if _, err := c.Complete(context.Background(), domain.CompletionRequest{Prompt: "p", Model: "llama3", JSON: true}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if string(got.Format) != `"json"` {
		t.Errorf("format = %s, want \"json\"", got.Format)
	}
}

func TestCompleter_ServerError(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"error": "model \"llama9\" not found"})
	})

	_, err := c.Complete(context.Background(), domain.CompletionRequest{Prompt: "p", Model: "llama9"})
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
}

func TestCompleter_HealthCheck(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}

func TestNewCompleter_InvalidURL(t *testing.T) {
	if _, err := NewCompleter("://bad", nil, nil); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
