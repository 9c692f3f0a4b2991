package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every check failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	storage Pinger
	llm     LLMChecker
	index   Sizer
	logger  *zap.Logger
}

// New creates a Service. Any component can be nil and is then skipped.
func New(storage Pinger, llm LLMChecker, index Sizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{storage: storage, llm: llm, index: index, logger: logger}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.storage != nil {
		checks["storage"] = s.result("storage", s.storage.Ping(ctx))
	}
	if s.llm != nil {
		checks["llm"] = s.result("llm", s.llm.HealthCheck(ctx))
	}
	if s.index != nil {
		if s.index.Len() > 0 {
			checks["index"] = CheckOK
		} else {
			checks["index"] = CheckError
		}
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) result(name string, err error) CheckResult {
	if err != nil {
		s.logger.Warn("health check failed", zap.String("component", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
