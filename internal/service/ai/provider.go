package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
)

// Request is a single backend call.
type Request struct {
	Prompt     string
	Model      string
	Structured bool
	Stream     bool
	OnChunk    ChunkHandler
}

type ProviderResult struct {
	Text  string
	Model string
}

// Provider is one text-generation backend.
type Provider interface {
	Name() string
	DefaultModel() string
	Generate(ctx context.Context, req Request) (ProviderResult, error)
}

// ProviderKeys carries credentials and model defaults for every backend.
type ProviderKeys struct {
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	ClaudeModel     string
	GroqAPIKey      string
	GroqModel       string
	GroqBaseURL     string
	GeminiAPIKey    string
	GeminiModel     string
}

// NewProvider builds the backend for tag. This is the only place that branches
// on backend identity.
func NewProvider(ctx context.Context, tag string, keys ProviderKeys, logger *zap.Logger) (Provider, error) {
	switch tag {
	case constants.ProviderTags.OpenAI:
		if keys.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return NewOpenAIProvider(keys.OpenAIAPIKey, orDefault(keys.OpenAIModel, constants.DefaultModels.OpenAI), logger), nil
	case constants.ProviderTags.Groq:
		if keys.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is not set")
		}
		return NewGroqProvider(keys.GroqAPIKey, keys.GroqBaseURL, orDefault(keys.GroqModel, constants.DefaultModels.Groq), logger), nil
	case constants.ProviderTags.Claude:
		if keys.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return NewClaudeProvider(keys.AnthropicAPIKey, orDefault(keys.ClaudeModel, constants.DefaultModels.Claude), logger), nil
	case constants.ProviderTags.Gemini:
		if keys.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return NewGeminiProvider(ctx, keys.GeminiAPIKey, orDefault(keys.GeminiModel, constants.DefaultModels.Gemini), logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", tag)
	}
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
