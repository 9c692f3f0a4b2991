package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/config"
	dbRedis "github.com/kailas-cloud/mealmentor/internal/db/redis"
	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/ingest"
	"github.com/kailas-cloud/mealmentor/internal/index"
	"github.com/kailas-cloud/mealmentor/internal/index/ftsearch"
	"github.com/kailas-cloud/mealmentor/internal/index/memory"
	logpkg "github.com/kailas-cloud/mealmentor/internal/logger"
	"github.com/kailas-cloud/mealmentor/internal/metrics"
	convrepo "github.com/kailas-cloud/mealmentor/internal/repository/conversation"
	"github.com/kailas-cloud/mealmentor/internal/tokenizer"
	chiTransport "github.com/kailas-cloud/mealmentor/internal/transport/chi"
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
	"github.com/kailas-cloud/mealmentor/internal/version"
)

// repository is what the composition root needs from a conversation store.
type repository interface {
	conversationuc.Repository
	Ping(ctx context.Context) error
}

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mealmentor API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("dataset", cfg.Dataset.Path),
		zap.String("search_driver", cfg.Search.Driver),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)

	metrics.RegisterLLMMetrics()
	metrics.RegisterPipelineMetrics()

	ctx := context.Background()

	// Redis is shared by the redis search and storage drivers.
	var store *dbRedis.Store
	if cfg.Search.Driver == "redis" || cfg.Storage.Driver == "redis" {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))
	}

	// Index is built once before serving; any failure here is fatal.
	docs, err := ingest.Load(cfg.Dataset.Path, cfg.Dataset.TextFields, logger)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}

	var builder index.Builder = memory.NewBuilder(logger)
	if cfg.Search.Driver == "redis" {
		builder = ftsearch.NewBuilder(store, cfg.Search.IndexName, cfg.Storage.KeyPrefix+"recipe:", logger)
	}
	idx, err := index.Build(ctx, builder, docs, index.Fields{
		Text:    cfg.Dataset.TextFields,
		Keyword: cfg.Dataset.KeywordFields,
	})
	if err != nil {
		logger.Fatal("Failed to build index", zap.Error(err))
	}
	logger.Info("Index built", zap.Int("documents", idx.Len()))

	completer, llmHealth := buildCompleter(cfg.LLM, logger)

	genOpts := []generation.Option{
		generation.WithTimeout(time.Duration(cfg.LLM.TimeoutSec) * time.Second),
		generation.WithDefaultModel(cfg.LLM.Model),
	}
	if counter, err := tokenizer.Default(); err != nil {
		logger.Warn("Token estimation disabled", zap.Error(err))
	} else {
		genOpts = append(genOpts, generation.WithTokenCounter(counter))
	}
	generator := generation.New(completer, logger, genOpts...)

	pricer, err := cost.New(prices(cfg.LLM.Pricing), logger)
	if err != nil {
		logger.Fatal("Invalid pricing", zap.Error(err))
	}
	if !pricer.Known(cfg.LLM.Model) {
		logger.Warn("No price configured for model, cost will be reported as zero", zap.String("model", cfg.LLM.Model))
	}

	pipeline := rag.New(
		retrieval.New(idx,
			retrieval.WithBoosts(cfg.Search.Boosts),
			retrieval.WithLimit(cfg.Search.NumResults),
		),
		prompt.New(),
		generator,
		evaluation.New(generator, logger),
		pricer,
		cfg.LLM.Model,
		logger,
	)

	repo, closeRepo := buildRepository(ctx, cfg.Storage, store, logger)
	defer closeRepo()

	conversations := conversationuc.New(pipeline, repo, cfg.LLM.Model, logger)
	healthSvc := healthuc.New(repo, llmHealth, idx, logger)

	server := chiTransport.NewServer(conversations, healthSvc, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCompleter returns the configured provider and its health checker.
func buildCompleter(cfg config.LLMConfig, logger *zap.Logger) (domain.Completer, domain.HealthChecker) {
	switch cfg.Provider {
	case "ollama":
		c, err := ollamaLLM.NewCompleter(cfg.BaseURL, nil, logger)
		if err != nil {
			logger.Fatal("Failed to create ollama client", zap.Error(err))
		}
		return c, c
	default:
		if cfg.APIKey == "" {
			logger.Warn("llm.api_key is empty, OpenAI requests will be rejected")
		}
		c := openaiLLM.NewCompleter(&openaiLLM.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Provider: cfg.Provider,
			Logger:   logger,
		})
		return c, c
	}
}

// buildRepository opens the configured conversation store.
func buildRepository(
	ctx context.Context, cfg config.StorageConfig, store *dbRedis.Store, logger *zap.Logger,
) (repository, func()) {
	switch cfg.Driver {
	case "redis":
		return &redisRepository{RedisRepo: convrepo.NewRedis(store, cfg.KeyPrefix), store: store}, func() {}
	case "postgres":
		pool, err := convrepo.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("Failed to connect to postgres", zap.Error(err))
		}
		repo := convrepo.NewPostgres(pool)
		if err := repo.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate postgres", zap.Error(err))
		}
		logger.Info("Connected to postgres")
		return repo, pool.Close
	default:
		return convrepo.NewMemory(), func() {}
	}
}

// redisRepository adds the store's Ping to the Redis repository for health checks.
type redisRepository struct {
	*convrepo.RedisRepo
	store *dbRedis.Store
}

func (r *redisRepository) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

func prices(cfg map[string]config.PricingConfig) map[string]cost.Price {
	out := make(map[string]cost.Price, len(cfg))
	for model, p := range cfg {
		out[model] = cost.Price{
			InputPer1K:  decimal.NewFromFloat(p.InputPer1K),
			OutputPer1K: decimal.NewFromFloat(p.OutputPer1K),
		}
	}
	return out
}
