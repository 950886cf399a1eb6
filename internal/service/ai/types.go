package ai

import (
	"encoding/json"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
)

// ProviderConfig holds the sampling parameters a backend is called with.
type ProviderConfig struct {
	Temperature  float64
	TopP         float64
	MaxTokens    int
	SystemPrompt string
}

// GetProviderConfig returns the fixed generation parameters for a backend tag.
func GetProviderConfig(tag string) ProviderConfig {
	switch tag {
	case constants.ProviderTags.OpenAI:
		return ProviderConfig{
			Temperature:  0.7,
			MaxTokens:    2000,
			SystemPrompt: "You are an expert copywriter and marketing specialist.",
		}
	case constants.ProviderTags.Groq:
		return ProviderConfig{
			Temperature: 0.6,
			TopP:        0.95,
			MaxTokens:   2000,
		}
	case constants.ProviderTags.Claude:
		return ProviderConfig{
			Temperature: 0.7,
			MaxTokens:   2000,
		}
	case constants.ProviderTags.Gemini:
		return ProviderConfig{
			Temperature: 0.7,
			TopP:        0.95,
			MaxTokens:   2048,
		}
	default:
		return ProviderConfig{Temperature: 0.7, MaxTokens: 2000}
	}
}

// ChunkHandler receives streamed text as it arrives.
type ChunkHandler func(chunk string)

// GenerateOptions holds per-call options.
type GenerateOptions struct {
	Model   string
	Stream  bool
	OnChunk ChunkHandler
}

// GenerateMetadata contains metadata about the generation
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
	// Failed is set when every backend failed and the text is an inline error.
	Failed bool
	// Defaulted is set when a structured call returned the safe default payload.
	Defaulted bool
	Err       error
}

// Response is a sanitized generation result.
type Response struct {
	Text       string
	Payload    json.RawMessage
	Structured bool
	Defaulted  bool
	Provider   string
	Model      string
	Err        error
}

// Decode unmarshals the structured payload into dest.
func (r *Response) Decode(dest any) bool {
	if r == nil || len(r.Payload) == 0 {
		return false
	}
	return json.Unmarshal(r.Payload, dest) == nil
}
