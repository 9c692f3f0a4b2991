package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockLLMChecker struct {
	err error
}

func (m *mockLLMChecker) HealthCheck(_ context.Context) error { return m.err }

type mockSizer struct {
	n int
}

func (m *mockSizer) Len() int { return m.n }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockLLMChecker{}, &mockSizer{n: 5}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"storage", "llm", "index"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_StorageError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockLLMChecker{}, &mockSizer{n: 5}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["storage"] != CheckError {
		t.Errorf("expected storage %q, got %q", CheckError, r.Checks["storage"])
	}
	if r.Checks["llm"] != CheckOK {
		t.Errorf("expected llm %q, got %q", CheckOK, r.Checks["llm"])
	}
}

func TestCheck_LLMError(t *testing.T) {
	svc := New(nil, &mockLLMChecker{err: errors.New("timeout")}, &mockSizer{n: 5}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["llm"] != CheckError {
		t.Errorf("expected llm %q, got %q", CheckError, r.Checks["llm"])
	}
}

func TestCheck_EmptyIndex(t *testing.T) {
	svc := New(nil, nil, &mockSizer{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_AllFailed(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("x")}, &mockLLMChecker{err: errors.New("y")}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoComponents(t *testing.T) {
	r := New(nil, nil, nil, nil).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["storage"]; ok {
		t.Error("nil storage must be skipped")
	}
}
