package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

type Config struct {
	LLM      LLMConfig
	Reddit   RedditConfig
	Redis    RedisConfig
	Store    StoreConfig
	Pipeline PipelineConfig
	Output   OutputConfig
	Logging  LoggingConfig
}

type LLMConfig struct {
	Provider         string
	Model            string
	FallbackProvider string
	EnableFallback   bool
	OpenAIAPIKey     string
	OpenAIModel      string
	AnthropicAPIKey  string
	ClaudeModel      string
	GroqAPIKey       string
	GroqModel        string
	GroqBaseURL      string
	GeminiAPIKey     string
	GeminiModel      string
}

type RedditMode string

const (
	RedditModeAuto RedditMode = "auto"
	RedditModeAPI  RedditMode = "api"
	RedditModeHTML RedditMode = "html"
)

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Mode         RedditMode
	Timeout      time.Duration
}

// HasCredentials reports whether application-only OAuth can be used.
func (r RedditConfig) HasCredentials() bool {
	return r.ClientID != "" && r.ClientSecret != ""
}

// UseAPI resolves auto mode against the configured credentials.
func (r RedditConfig) UseAPI() bool {
	switch r.Mode {
	case RedditModeAPI:
		return true
	case RedditModeHTML:
		return false
	default:
		return r.HasCredentials()
	}
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type StoreDriver string

const (
	StoreDriverNone     StoreDriver = "none"
	StoreDriverSQLite   StoreDriver = "sqlite"
	StoreDriverPostgres StoreDriver = "postgres"
)

type StoreConfig struct {
	Driver     StoreDriver
	SQLitePath string
	Postgres   PostgresConfig
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type PipelineConfig struct {
	RelevanceThreshold  float64
	RelevanceBatchSize  int
	PostsPerQuery       int
	DedupePosts         bool
	PlatformConcurrency int
}

type OutputConfig struct {
	ArtifactDir string
	StreamWSURL string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LLM: LLMConfig{
			Provider:         strings.ToLower(getEnv("LLM_PROVIDER", constants.ProviderTags.OpenAI)),
			Model:            getEnv("LLM_MODEL", ""),
			FallbackProvider: strings.ToLower(getEnv("LLM_FALLBACK_PROVIDER", constants.ProviderTags.OpenAI)),
			EnableFallback:   getEnvBool("LLM_ENABLE_FALLBACK", true),
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", constants.DefaultModels.OpenAI),
			AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			ClaudeModel:      getEnv("CLAUDE_MODEL", constants.DefaultModels.Claude),
			GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
			GroqModel:        getEnv("GROQ_MODEL", constants.DefaultModels.Groq),
			GroqBaseURL:      getEnv("GROQ_BASE_URL", constants.APIConfig.GroqBaseURL),
			GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", constants.DefaultModels.Gemini),
		},
		Reddit: RedditConfig{
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:    getEnv("REDDIT_USER_AGENT", constants.APIConfig.DefaultUserAgent),
			Mode:         RedditMode(strings.ToLower(getEnv("REDDIT_MODE", string(RedditModeAuto)))),
			Timeout:      time.Duration(getEnvInt("REDDIT_TIMEOUT_SECONDS", int(constants.APIConfig.RedditTimeout/time.Second))) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("SEARCH_CACHE_TTL_MINUTES", int(constants.CacheTTL.SearchResults/time.Minute))) * time.Minute,
		},
		Store: StoreConfig{
			Driver:     StoreDriver(strings.ToLower(getEnv("STORE_DRIVER", string(StoreDriverNone)))),
			SQLitePath: getEnv("SQLITE_PATH", constants.PipelineDefaults.SQLitePath),
			Postgres: PostgresConfig{
				Host:     getEnv("POSTGRES_HOST", "localhost"),
				Port:     getEnvInt("POSTGRES_PORT", 5432),
				User:     getEnv("POSTGRES_USER", "adsynth"),
				Password: getEnv("POSTGRES_PASSWORD", ""),
				Database: getEnv("POSTGRES_DB", "adsynth"),
				SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			},
		},
		Pipeline: PipelineConfig{
			RelevanceThreshold:  getEnvFloat("RELEVANCE_THRESHOLD", constants.AnalysisLimits.RelevanceThreshold),
			RelevanceBatchSize:  getEnvInt("RELEVANCE_BATCH_SIZE", constants.AnalysisLimits.RelevanceBatchSize),
			PostsPerQuery:       getEnvInt("POSTS_PER_QUERY", constants.CollectionLimits.DefaultPerQuery),
			DedupePosts:         getEnvBool("DEDUPE_POSTS", false),
			PlatformConcurrency: getEnvInt("PLATFORM_CONCURRENCY", constants.PipelineDefaults.PlatformConcurrency),
		},
		Output: OutputConfig{
			ArtifactDir: getEnv("ARTIFACT_DIR", constants.PipelineDefaults.ArtifactDir),
			StreamWSURL: getEnv("STREAM_WS_URL", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !IsKnownProvider(c.LLM.Provider) {
		return errors.NewConfigError(fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLM.Provider), "LLM_PROVIDER")
	}
	if key := c.LLM.APIKeyEnv(c.LLM.Provider); c.LLM.APIKey(c.LLM.Provider) == "" {
		return errors.NewConfigError(fmt.Sprintf("%s is required for provider %s", key, c.LLM.Provider), key)
	}
	if c.LLM.EnableFallback && !IsKnownProvider(c.LLM.FallbackProvider) {
		return errors.NewConfigError(fmt.Sprintf("unknown LLM_FALLBACK_PROVIDER %q", c.LLM.FallbackProvider), "LLM_FALLBACK_PROVIDER")
	}

	switch c.Reddit.Mode {
	case RedditModeAuto, RedditModeHTML:
	case RedditModeAPI:
		if !c.Reddit.HasCredentials() {
			return errors.NewConfigError("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required when REDDIT_MODE=api", "REDDIT_CLIENT_ID")
		}
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown REDDIT_MODE %q", c.Reddit.Mode), "REDDIT_MODE")
	}

	switch c.Store.Driver {
	case StoreDriverNone, StoreDriverSQLite, StoreDriverPostgres:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown STORE_DRIVER %q", c.Store.Driver), "STORE_DRIVER")
	}

	if c.Pipeline.RelevanceBatchSize <= 0 {
		return errors.NewConfigError("RELEVANCE_BATCH_SIZE must be positive", "RELEVANCE_BATCH_SIZE")
	}
	if c.Pipeline.PostsPerQuery <= 0 {
		return errors.NewConfigError("POSTS_PER_QUERY must be positive", "POSTS_PER_QUERY")
	}
	if c.Pipeline.PlatformConcurrency <= 0 {
		c.Pipeline.PlatformConcurrency = 1
	}
	return nil
}

// IsKnownProvider reports whether tag names a supported text-generation backend.
func IsKnownProvider(tag string) bool {
	switch tag {
	case constants.ProviderTags.OpenAI, constants.ProviderTags.Claude, constants.ProviderTags.Groq, constants.ProviderTags.Gemini:
		return true
	}
	return false
}

// APIKey returns the credential configured for the given backend tag.
func (l LLMConfig) APIKey(provider string) string {
	switch provider {
	case constants.ProviderTags.OpenAI:
		return l.OpenAIAPIKey
	case constants.ProviderTags.Claude:
		return l.AnthropicAPIKey
	case constants.ProviderTags.Groq:
		return l.GroqAPIKey
	case constants.ProviderTags.Gemini:
		return l.GeminiAPIKey
	}
	return ""
}

func (l LLMConfig) APIKeyEnv(provider string) string {
	switch provider {
	case constants.ProviderTags.Claude:
		return "ANTHROPIC_API_KEY"
	default:
		return strings.ToUpper(provider) + "_API_KEY"
	}
}

// DefaultModel returns the configured default model for the given backend tag.
func (l LLMConfig) DefaultModel(provider string) string {
	switch provider {
	case constants.ProviderTags.OpenAI:
		return l.OpenAIModel
	case constants.ProviderTags.Claude:
		return l.ClaudeModel
	case constants.ProviderTags.Groq:
		return l.GroqModel
	case constants.ProviderTags.Gemini:
		return l.GeminiModel
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
