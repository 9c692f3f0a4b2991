package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the mealmentor API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Search   SearchConfig   `yaml:"search"`
	LLM      LLMConfig      `yaml:"llm"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatasetConfig describes the tabular recipe source and how its columns are indexed.
type DatasetConfig struct {
	Path          string   `yaml:"path"` // .csv or .parquet
	TextFields    []string `yaml:"text_fields"`
	KeywordFields []string `yaml:"keyword_fields"`
}

// SearchConfig holds index backend and retrieval settings.
type SearchConfig struct {
	Driver     string             `yaml:"driver"`     // memory, redis (default: memory)
	IndexName  string             `yaml:"index_name"` // FT index name for the redis driver
	NumResults int                `yaml:"num_results"`
	Boosts     map[string]float64 `yaml:"boosts"` // empty = built-in recipe boosts
}

// LLMConfig holds the completion provider settings.
type LLMConfig struct {
	Provider   string                   `yaml:"provider"` // openai, ollama (default: openai)
	APIKey     string                   `yaml:"api_key"`
	BaseURL    string                   `yaml:"base_url"`
	Model      string                   `yaml:"model"`
	TimeoutSec int                      `yaml:"timeout_sec"`
	Pricing    map[string]PricingConfig `yaml:"pricing"`
}

// PricingConfig is the price per 1000 tokens for one model.
type PricingConfig struct {
	InputPer1K  float64 `yaml:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k"`
}

// StorageConfig selects where conversations and feedback are persisted.
type StorageConfig struct {
	Driver      string `yaml:"driver"` // memory, redis, postgres (default: memory)
	KeyPrefix   string `yaml:"key_prefix"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// DatabaseConfig holds Redis connection settings shared by the redis search and storage drivers.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 9696
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// generation + evaluation are two sequential LLM calls
		c.HTTP.WriteTimeoutSec = 150
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Dataset.Path == "" {
		c.Dataset.Path = "data/data.csv"
	}
	if len(c.Dataset.TextFields) == 0 {
		c.Dataset.TextFields = []string{
			"recipe_name", "diet_type", "cuisine_type", "protein(g)", "carbs(g)", "fat(g)",
		}
	}
	if len(c.Dataset.KeywordFields) == 0 {
		c.Dataset.KeywordFields = []string{"id"}
	}
	if c.Search.Driver == "" {
		c.Search.Driver = "memory"
	}
	if c.Search.IndexName == "" {
		c.Search.IndexName = "mealmentor:recipes:idx"
	}
	if c.Search.NumResults <= 0 {
		c.Search.NumResults = 10
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "mealmentor:"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Search.Driver {
	case "memory":
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for search.driver %q", c.Search.Driver)
		}
	default:
		return fmt.Errorf("search.driver must be \"memory\" or \"redis\", got %q", c.Search.Driver)
	}
	switch c.Storage.Driver {
	case "memory":
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for storage.driver %q", c.Storage.Driver)
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for storage.driver \"postgres\"")
		}
	default:
		return fmt.Errorf(
			"storage.driver must be \"memory\", \"redis\" or \"postgres\", got %q", c.Storage.Driver,
		)
	}
	switch c.LLM.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("llm.provider must be \"openai\" or \"ollama\", got %q", c.LLM.Provider)
	}
	for model, p := range c.LLM.Pricing {
		if p.InputPer1K < 0 || p.OutputPer1K < 0 {
			return fmt.Errorf("llm.pricing.%s rates must be non-negative", model)
		}
	}
	for field, w := range c.Search.Boosts {
		if w < 0 {
			return fmt.Errorf("search.boosts.%s must be non-negative, got %g", field, w)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
