package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
)

// GeminiProvider wraps the Gemini client.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
	config       ProviderConfig
	logger       *zap.Logger
}

func NewGeminiProvider(ctx context.Context, apiKey, defaultModel string, logger *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{
		client:       client,
		defaultModel: defaultModel,
		config:       GetProviderConfig(constants.ProviderTags.Gemini),
		logger:       logger,
	}, nil
}

func (g *GeminiProvider) Name() string {
	return constants.ProviderTags.Gemini
}

func (g *GeminiProvider) DefaultModel() string {
	return g.defaultModel
}

func (g *GeminiProvider) Generate(ctx context.Context, req Request) (ProviderResult, error) {
	if g.client == nil {
		return ProviderResult{}, fmt.Errorf("gemini client not initialized")
	}

	modelName := req.Model
	if modelName == "" {
		modelName = g.defaultModel
	}

	temperature := float32(g.config.Temperature)
	topP := float32(g.config.TopP)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: int32(g.config.MaxTokens),
	}
	if req.Structured {
		genConfig.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.Prompt}},
		},
	}

	g.logger.Debug("Generating with Gemini",
		zap.String("model", modelName),
		zap.Bool("json_mode", req.Structured),
		zap.Bool("stream", req.Stream),
	)

	var builder strings.Builder
	if req.Stream {
		for resp, err := range g.client.Models.GenerateContentStream(ctx, modelName, contents, genConfig) {
			if err != nil {
				g.logger.Error("Gemini stream failed", zap.Error(err))
				return ProviderResult{}, err
			}
			chunk := extractTextFromGeminiResponse(resp)
			if chunk == "" {
				continue
			}
			builder.WriteString(chunk)
			if req.OnChunk != nil {
				req.OnChunk(chunk)
			}
		}
	} else {
		resp, err := g.client.Models.GenerateContent(ctx, modelName, contents, genConfig)
		if err != nil {
			g.logger.Error("Gemini generation failed", zap.Error(err))
			return ProviderResult{}, err
		}
		builder.WriteString(extractTextFromGeminiResponse(resp))
	}

	text := builder.String()
	if text == "" {
		return ProviderResult{}, fmt.Errorf("empty response from Gemini")
	}

	g.logger.Debug("Gemini response received", zap.Int("length", len(text)))
	return ProviderResult{Text: text, Model: modelName}, nil
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" && !part.Thought {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}
