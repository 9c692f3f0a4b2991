package rag

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain/answer"
	"github.com/kailas-cloud/mealmentor/internal/domain/relevance"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
	"github.com/kailas-cloud/mealmentor/internal/metrics"
)

// State is a pipeline checkpoint.
type State string

// Pipeline states in execution order.
const (
	StateStart     State = "start"
	StateRetrieved State = "retrieved"
	StatePrompted  State = "prompted"
	StateGenerated State = "generated"
	StateEvaluated State = "evaluated"
	StateDone      State = "done"
)

// Stage names used in errors and metrics.
const (
	stageRetrieve = "retrieve"
	stagePrompt   = "prompt"
	stageGenerate = "generate"
	stageEvaluate = "evaluate"
)

// Service runs retrieve → prompt → generate → evaluate → cost for one question.
type Service struct {
	retriever Retriever
	prompts   PromptBuilder
	generator Generator
	evaluator Evaluator
	pricer    Pricer
	model     string
	logger    *zap.Logger
	now       func() time.Time
}

// New creates the orchestrator. model is used when Answer is called without one.
func New(
	retriever Retriever,
	prompts PromptBuilder,
	generator Generator,
	evaluator Evaluator,
	pricer Pricer,
	model string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		retriever: retriever,
		prompts:   prompts,
		generator: generator,
		evaluator: evaluator,
		pricer:    pricer,
		model:     model,
		logger:    logger,
		now:       time.Now,
	}
}

// Answer runs the pipeline. A failure in retrieval, prompting or generation aborts
// the run and no record is produced; once an answer exists a record is always returned.
// Both LLM calls use the same model; the reported cost covers both.
func (s *Service) Answer(ctx context.Context, question, model string) (answer.Record, error) {
	if model == "" {
		model = s.model
	}
	log := s.logger.With(zap.String("model", model))
	start := s.now()
	log.Debug("rag state", zap.String("state", string(StateStart)))

	t := s.now()
	docs, err := s.retriever.Search(ctx, question, nil, 0)
	s.observe(stageRetrieve, t)
	if err != nil {
		return answer.Record{}, s.fail(stageRetrieve, err)
	}
	log.Debug("rag state", zap.String("state", string(StateRetrieved)), zap.Int("docs", len(docs)))

	t = s.now()
	prompt, err := s.prompts.Build(question, docs)
	s.observe(stagePrompt, t)
	if err != nil {
		return answer.Record{}, s.fail(stagePrompt, err)
	}
	log.Debug("rag state", zap.String("state", string(StatePrompted)), zap.Int("prompt_len", len(prompt)))

	t = s.now()
	text, genUsage, err := s.generator.Generate(ctx, prompt, model)
	s.observe(stageGenerate, t)
	if err != nil {
		return answer.Record{}, s.fail(stageGenerate, err)
	}
	log.Debug("rag state", zap.String("state", string(StateGenerated)), zap.Int("tokens", genUsage.TotalTokens))

	t = s.now()
	verdict, evalUsage, err := s.evaluator.Evaluate(ctx, question, text, model)
	s.observe(stageEvaluate, t)
	if err != nil {
		// The answer is already generated; only its grade is lost.
		log.Warn("evaluation failed, relevance unknown", zap.Error(err))
		verdict, evalUsage = relevance.UnknownVerdict(), usage.TokenUsage{}
	}
	elapsed := s.now().Sub(start)
	log.Debug("rag state", zap.String("state", string(StateEvaluated)), zap.String("relevance", string(verdict.Label)))

	rec := answer.Record{
		Answer:       text,
		Model:        model,
		ResponseTime: elapsed,
		Relevance:    verdict,
		Usage:        genUsage,
		EvalUsage:    evalUsage,
		Cost:         s.pricer.Cost(model, genUsage).Add(s.pricer.Cost(model, evalUsage)),
	}
	metrics.PipelineRunsTotal.WithLabelValues(string(StateDone)).Inc()
	log.Debug("rag state",
		zap.String("state", string(StateDone)),
		zap.Duration("elapsed", elapsed),
		zap.String("cost", rec.Cost.String()),
	)
	return rec, nil
}

func (s *Service) observe(stage string, since time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(s.now().Sub(since).Seconds())
}

func (s *Service) fail(stage string, err error) error {
	metrics.PipelineRunsTotal.WithLabelValues(stage).Inc()
	return fmt.Errorf("%s: %w", stage, err)
}
