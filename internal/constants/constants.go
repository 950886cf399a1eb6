package constants

import "time"

// NotSpecified is rendered in prompts for optional product fields left empty.
const NotSpecified = "Not specified"

var ProviderTags = struct {
	OpenAI string
	Claude string
	Groq   string
	Gemini string
}{
	OpenAI: "openai",
	Claude: "claude",
	Groq:   "groq",
	Gemini: "gemini",
}

var DefaultModels = struct {
	OpenAI string
	Claude string
	Groq   string
	Gemini string
}{
	OpenAI: "gpt-4o",
	Claude: "claude-3-5-sonnet-20240620",
	Groq:   "llama-3.3-70b-versatile",
	Gemini: "gemini-2.5-flash",
}

// GroqModels lists the model names accepted for the groq backend.
var GroqModels = []string{
	"llama-3.3-70b-versatile",
	"deepseek-r1-distill-llama-70b",
}

var APIConfig = struct {
	GroqBaseURL         string
	RedditTokenURL      string
	RedditAPIBaseURL    string
	RedditHTMLBaseURL   string
	RedditPostBaseURL   string
	RedditTimeout       time.Duration
	DefaultUserAgent    string
	MaxRetryAttempts    int
	MaxResponseBytes    int64
	ProviderCallTimeout time.Duration
}{
	GroqBaseURL:         "https://api.groq.com/openai/v1/",
	RedditTokenURL:      "https://www.reddit.com/api/v1/access_token",
	RedditAPIBaseURL:    "https://oauth.reddit.com",
	RedditHTMLBaseURL:   "https://old.reddit.com",
	RedditPostBaseURL:   "https://www.reddit.com",
	RedditTimeout:       15 * time.Second,
	DefaultUserAgent:    "adsynth/1.0 (ad copy research pipeline)",
	MaxRetryAttempts:    3,
	MaxResponseBytes:    4 << 20,
	ProviderCallTimeout: 2 * time.Minute,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	RateLimitTimeout time.Duration
}{
	FailureThreshold: 3,
	ResetTimeout:     30 * time.Second,
	RateLimitTimeout: 5 * time.Minute,
}

var CacheTTL = struct {
	SearchResults time.Duration
}{
	SearchResults: 30 * time.Minute,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	KeyPrefix    string
}{
	ReadyTimeout: 5 * time.Second,
	KeyPrefix:    "adsynth:",
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	WriteTimeout         time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       2 * time.Second,
	WriteTimeout:         5 * time.Second,
}

var ResearchLimits = struct {
	MaxSources      int
	FallbackSources int
	MinSources      int
	MaxQueries      int
	MinSourceLen    int
	MinQueryLen     int
	MinFallbackWord int
	TopWords        int
}{
	MaxSources:      7,
	FallbackSources: 5,
	MinSources:      3,
	MaxQueries:      5,
	MinSourceLen:    3,
	MinQueryLen:     6,
	MinFallbackWord: 5,
	TopWords:        5,
}

var CollectionLimits = struct {
	DefaultPerQuery  int
	MaxComments      int
	MinCommentLength int
	MinQueryLength   int
	RetrySources     int
}{
	DefaultPerQuery:  2,
	MaxComments:      3,
	MinCommentLength: 20,
	MinQueryLength:   3,
	RetrySources:     3,
}

var AnalysisLimits = struct {
	RelevanceBatchSize    int
	RelevanceThreshold    float64
	RelevanceBodyChars    int
	RelevanceCommentChars int
	RelevanceComments     int
	InsightPosts          int
	InsightBodyChars      int
	InsightCommentChars   int
	InsightComments       int
	MaxPainPoints         int
	MaxLanguage           int
	MaxTopics             int
	MinPainPoints         int
}{
	RelevanceBatchSize:    10,
	RelevanceThreshold:    6,
	RelevanceBodyChars:    500,
	RelevanceCommentChars: 200,
	RelevanceComments:     2,
	InsightPosts:          5,
	InsightBodyChars:      300,
	InsightCommentChars:   150,
	InsightComments:       2,
	MaxPainPoints:         5,
	MaxLanguage:           7,
	MaxTopics:             5,
	MinPainPoints:         3,
}

var ReviewDefaults = struct {
	Score    int
	MinScore int
	MaxScore int
}{
	Score:    7,
	MinScore: 1,
	MaxScore: 10,
}

var PipelineDefaults = struct {
	PlatformConcurrency int
	ArtifactDir         string
	SQLitePath          string
}{
	PlatformConcurrency: 1,
	ArtifactDir:         "output",
	SQLitePath:          "data/adsynth.db",
}
