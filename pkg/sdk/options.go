package mealmentor

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	datasetPath string
	documents   []map[string]string

	provider  string // "openai", "ollama" or "" for a custom completer
	apiKey    string
	baseURL   string
	completer Completer

	model   string
	timeout time.Duration
	boosts  map[string]float64
	limit   int

	redisAddr     string
	redisPassword string
	keyPrefix     string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDataset loads recipes from a CSV or Parquet file.
func WithDataset(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.datasetPath = path
	})
}

// WithDocuments indexes the given rows instead of reading a file.
// Each row maps a column name to its text value.
func WithDocuments(rows []map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.documents = rows
	})
}

// WithOpenAI uses an OpenAI-compatible chat completion API.
// An empty baseURL targets api.openai.com.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "openai"
		c.apiKey = apiKey
		c.baseURL = baseURL
	})
}

// WithOllama uses a local Ollama server. An empty baseURL falls back to OLLAMA_HOST.
func WithOllama(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = "ollama"
		c.baseURL = baseURL
	})
}

// WithCompleter plugs in a custom completion provider.
func WithCompleter(cmp Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = ""
		c.completer = cmp
	})
}

// WithModel sets the model used for both the answer and its evaluation.
// Default: gpt-4o-mini.
func WithModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = model
	})
}

// WithTimeout bounds every LLM call. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRetrieval overrides field boosts and the number of recipes placed in the prompt.
// A nil map or non-positive limit keeps the defaults.
func WithRetrieval(boosts map[string]float64, limit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.boosts = boosts
		c.limit = limit
	})
}

// WithRedis indexes recipes in Redis and stores conversations there.
// Requires Redis 8+ (or Redis Stack) for full-text search.
func WithRedis(addr, password, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddr = addr
		c.redisPassword = password
		c.keyPrefix = keyPrefix
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
