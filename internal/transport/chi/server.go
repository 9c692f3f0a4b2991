package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
	logpkg "github.com/kailas-cloud/mealmentor/internal/logger"
	healthuc "github.com/kailas-cloud/mealmentor/internal/usecase/health"
)

// ErrorCode is a machine-readable error identifier in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeNotFound         ErrorCode = "not_found"
	CodeLLMProviderError ErrorCode = "llm_provider_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// QuestionRequest is the body of POST /api/question.
type QuestionRequest struct {
	Question string `json:"question"`
}

// QuestionResponse is returned for an answered question.
type QuestionResponse struct {
	ConversationID string `json:"conversation_id"`
	Question       string `json:"question"`
	Answer         string `json:"answer"`
}

// FeedbackRequest is the body of POST /api/feedback.
// Feedback is decoded as a number so that 1.0 is accepted like 1.
type FeedbackRequest struct {
	ConversationID string   `json:"conversation_id"`
	Feedback       *float64 `json:"feedback"`
}

// FeedbackResponse acknowledges stored feedback.
type FeedbackResponse struct {
	Message string `json:"message"`
}

// FeedbackItem is one rating inside ConversationResponse.
type FeedbackItem struct {
	Feedback  int       `json:"feedback"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationResponse is the stored record of a conversation.
type ConversationResponse struct {
	ConversationID       string         `json:"conversation_id"`
	Question             string         `json:"question"`
	Answer               string         `json:"answer"`
	Model                string         `json:"model_used"`
	ResponseTime         float64        `json:"response_time"`
	Relevance            string         `json:"relevance"`
	RelevanceExplanation string         `json:"relevance_explanation"`
	PromptTokens         int            `json:"prompt_tokens"`
	CompletionTokens     int            `json:"completion_tokens"`
	TotalTokens          int            `json:"total_tokens"`
	EvalPromptTokens     int            `json:"eval_prompt_tokens"`
	EvalCompletionTokens int            `json:"eval_completion_tokens"`
	EvalTotalTokens      int            `json:"eval_total_tokens"`
	Cost                 string         `json:"cost"`
	Timestamp            time.Time      `json:"timestamp"`
	Feedback             []FeedbackItem `json:"feedback"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Conversations answers questions and records feedback.
type Conversations interface {
	Ask(ctx context.Context, question string) (conversation.Conversation, error)
	Feedback(ctx context.Context, conversationID string, value int) (feedback.Feedback, error)
	Get(ctx context.Context, id string) (conversation.Conversation, []feedback.Feedback, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server is the mealmentor HTTP API.
type Server struct {
	conversations Conversations
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(conversations Conversations, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		conversations: conversations,
		health:        health,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuestion, http.StatusBadRequest, CodeValidationFailed, "No question provided"),
		sentinelHandler(domain.ErrQuestionTooLong, http.StatusBadRequest, CodeValidationFailed, "Question too long"),
		sentinelHandler(domain.ErrInvalidFeedback, http.StatusBadRequest, CodeValidationFailed, "Invalid input"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound, "conversation not found"),
		// Pipeline failures carry their cause.
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, CodeLLMProviderError, ""),
		sentinelHandler(domain.ErrEmptyCompletion, http.StatusBadGateway, CodeLLMProviderError, ""),
		sentinelHandler(domain.ErrRetrieval, http.StatusInternalServerError, CodeInternalError, ""),
		sentinelHandler(domain.ErrFormatting, http.StatusInternalServerError, CodeInternalError, ""),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/question", s.AskQuestion)
	r.Post("/api/feedback", s.SubmitFeedback)
	r.Get("/api/conversations/{id}", s.GetConversation)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
}

// AskQuestion handles POST /api/question.
func (s *Server) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	c, err := s.conversations.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, QuestionResponse{
		ConversationID: c.ID,
		Question:       c.Question,
		Answer:         c.Record.Answer,
	})
}

// SubmitFeedback handles POST /api/feedback.
func (s *Server) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Invalid input")
		return
	}

	f, err := s.conversations.Feedback(r.Context(), req.ConversationID, feedbackValue(req.Feedback))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, FeedbackResponse{
		Message: fmt.Sprintf("Feedback received for conversation %s: %d", f.ConversationID, f.Value),
	})
}

// GetConversation handles GET /api/conversations/{id}.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	c, fb, err := s.conversations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversationToResponse(c, fb))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// feedbackValue maps a JSON number to an int, or 0 (always invalid) when it is
// missing or not integral.
func feedbackValue(v *float64) int {
	if v == nil || *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return 0
	}
	return int(*v)
}

func conversationToResponse(c conversation.Conversation, fb []feedback.Feedback) ConversationResponse {
	rec := c.Record
	items := make([]FeedbackItem, len(fb))
	for i, f := range fb {
		items[i] = FeedbackItem{Feedback: f.Value, Timestamp: f.CreatedAt}
	}
	return ConversationResponse{
		ConversationID:       c.ID,
		Question:             c.Question,
		Answer:               rec.Answer,
		Model:                rec.Model,
		ResponseTime:         rec.ResponseTime.Seconds(),
		Relevance:            string(rec.Relevance.Label),
		RelevanceExplanation: rec.Relevance.Explanation,
		PromptTokens:         rec.Usage.PromptTokens,
		CompletionTokens:     rec.Usage.CompletionTokens,
		TotalTokens:          rec.Usage.TotalTokens,
		EvalPromptTokens:     rec.EvalUsage.PromptTokens,
		EvalCompletionTokens: rec.EvalUsage.CompletionTokens,
		EvalTotalTokens:      rec.EvalUsage.TotalTokens,
		Cost:                 rec.Cost.String(),
		Timestamp:            c.CreatedAt,
		Feedback:             items,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// An empty msg reports the full error chain.
func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		if msg == "" {
			writeError(w, status, code, err.Error())
			return true
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
