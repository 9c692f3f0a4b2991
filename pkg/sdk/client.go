package mealmentor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/mealmentor/internal/db/redis"
	"github.com/kailas-cloud/mealmentor/internal/domain"
	domconv "github.com/kailas-cloud/mealmentor/internal/domain/conversation"
	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/feedback"
	"github.com/kailas-cloud/mealmentor/internal/domain/recipe"
	"github.com/kailas-cloud/mealmentor/internal/index"
	"github.com/kailas-cloud/mealmentor/internal/index/ftsearch"
	"github.com/kailas-cloud/mealmentor/internal/index/memory"
	"github.com/kailas-cloud/mealmentor/internal/ingest"
	convrepo "github.com/kailas-cloud/mealmentor/internal/repository/conversation"
	"github.com/kailas-cloud/mealmentor/internal/tokenizer"
	ollamaLLM "github.com/kailas-cloud/mealmentor/internal/transport/ollama"
	openaiLLM "github.com/kailas-cloud/mealmentor/internal/transport/openai"
	conversationuc "github.com/kailas-cloud/mealmentor/internal/usecase/conversation"
	"github.com/kailas-cloud/mealmentor/internal/usecase/cost"
	"github.com/kailas-cloud/mealmentor/internal/usecase/evaluation"
	"github.com/kailas-cloud/mealmentor/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/mealmentor/internal/usecase/health"
	"github.com/kailas-cloud/mealmentor/internal/usecase/prompt"
	"github.com/kailas-cloud/mealmentor/internal/usecase/rag"
	"github.com/kailas-cloud/mealmentor/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type conversationUseCase interface {
	Ask(ctx context.Context, question string) (domconv.Conversation, error)
	Feedback(ctx context.Context, conversationID string, value int) (feedback.Feedback, error)
	Get(ctx context.Context, id string) (domconv.Conversation, []feedback.Feedback, error)
}

// Client is the mealmentor SDK entry point.
type Client struct {
	store     *dbRedis.Store
	convSvc   conversationUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New loads and indexes the recipes and wires the question answering pipeline.
// The provided context is used for index construction and the Redis readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		model:     generation.DefaultModel,
		timeout:   generation.DefaultTimeout,
		keyPrefix: "mealmentor:",
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	completer, err := createCompleter(cfg)
	if err != nil {
		return nil, err
	}

	docs, err := loadDocuments(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store *dbRedis.Store
	if cfg.redisAddr != "" {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.redisAddr},
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("mealmentor: create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("mealmentor: redis not ready: %w", err)
		}
	}

	c, err := wireClient(ctx, store, docs, completer, cfg, obs)
	if err != nil && store != nil {
		store.Close()
	}
	return c, err
}

func createCompleter(cfg *clientConfig) (domain.Completer, error) {
	switch cfg.provider {
	case "openai":
		return openaiLLM.NewCompleter(&openaiLLM.Config{
			APIKey:  cfg.apiKey,
			BaseURL: cfg.baseURL,
		}), nil
	case "ollama":
		c, err := ollamaLLM.NewCompleter(cfg.baseURL, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("mealmentor: create ollama client: %w", err)
		}
		return c, nil
	}
	if cfg.completer == nil {
		return nil, errors.New("mealmentor: completer required (use WithOpenAI, WithOllama or WithCompleter)")
	}
	return &completerAdapter{inner: cfg.completer}, nil
}

func loadDocuments(cfg *clientConfig) ([]document.Document, error) {
	if len(cfg.documents) > 0 {
		docs := make([]document.Document, 0, len(cfg.documents))
		for _, row := range cfg.documents {
			docs = append(docs, document.New(row))
		}
		return docs, nil
	}
	if cfg.datasetPath == "" {
		return nil, errors.New("mealmentor: recipes required (use WithDataset or WithDocuments)")
	}
	docs, err := ingest.Load(cfg.datasetPath, recipe.TextFields, nil)
	if err != nil {
		return nil, fmt.Errorf("mealmentor: %w", err)
	}
	return docs, nil
}

// wireClient builds the index and the service graph over an already connected store.
func wireClient(
	ctx context.Context, store *dbRedis.Store, docs []document.Document,
	completer domain.Completer, cfg *clientConfig, obs *observer,
) (*Client, error) {
	logger := zap.NewNop()

	var builder index.Builder = memory.NewBuilder(logger)
	if store != nil {
		builder = ftsearch.NewBuilder(store, cfg.keyPrefix+"recipes:idx", cfg.keyPrefix+"recipe:", logger)
	}
	idx, err := index.Build(ctx, builder, docs, index.Fields{
		Text:    recipe.TextFields,
		Keyword: recipe.KeywordFields,
	})
	if err != nil {
		return nil, fmt.Errorf("mealmentor: build index: %w", err)
	}

	genOpts := []generation.Option{
		generation.WithTimeout(cfg.timeout),
		generation.WithDefaultModel(cfg.model),
	}
	// Without the encoding, zero provider usage is reported as zero.
	if counter, err := tokenizer.Default(); err == nil {
		genOpts = append(genOpts, generation.WithTokenCounter(counter))
	}
	generator := generation.New(completer, logger, genOpts...)

	pricer, err := cost.New(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("mealmentor: %w", err)
	}

	pipeline := rag.New(
		retrieval.New(idx, retrieval.WithBoosts(cfg.boosts), retrieval.WithLimit(cfg.limit)),
		prompt.New(),
		generator,
		evaluation.New(generator, logger),
		pricer,
		cfg.model,
		logger,
	)

	var (
		repo    conversationuc.Repository = convrepo.NewMemory()
		storage healthuc.Pinger
	)
	if store != nil {
		repo = convrepo.NewRedis(store, cfg.keyPrefix)
		storage = store
	}

	var llm healthuc.LLMChecker
	if hc, ok := completer.(domain.HealthChecker); ok {
		llm = hc
	}

	return &Client{
		store:     store,
		convSvc:   conversationuc.New(pipeline, repo, cfg.model, logger),
		healthSvc: healthuc.New(storage, llm, idx, logger),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ask answers a question from the indexed recipes and stores the conversation.
func (c *Client) Ask(ctx context.Context, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	conv, err := c.convSvc.Ask(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return toAnswer(conv), nil
}

// Feedback records a 1 (helpful) or -1 (not helpful) vote on a conversation.
func (c *Client) Feedback(ctx context.Context, conversationID string, value int) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("feedback", start, err) }()

	if _, err = c.convSvc.Feedback(ctx, conversationID, value); err != nil {
		return fmt.Errorf("feedback: %w", err)
	}
	return nil
}

// Conversation returns a stored conversation with its feedback votes.
func (c *Client) Conversation(ctx context.Context, id string) (conv Conversation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("conversation", start, err) }()

	stored, fbs, err := c.convSvc.Get(ctx, id)
	if err != nil {
		return Conversation{}, fmt.Errorf("conversation: %w", err)
	}
	return toConversation(stored, fbs), nil
}
