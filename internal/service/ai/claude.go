package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
)

// ClaudeProvider wraps the Anthropic messages API.
type ClaudeProvider struct {
	client       *anthropic.Client
	defaultModel string
	config       ProviderConfig
	logger       *zap.Logger
}

func NewClaudeProvider(apiKey, defaultModel string, logger *zap.Logger) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &ClaudeProvider{
		client:       &client,
		defaultModel: defaultModel,
		config:       GetProviderConfig(constants.ProviderTags.Claude),
		logger:       logger,
	}
}

func (c *ClaudeProvider) Name() string {
	return constants.ProviderTags.Claude
}

func (c *ClaudeProvider) DefaultModel() string {
	return c.defaultModel
}

func (c *ClaudeProvider) Generate(ctx context.Context, req Request) (ProviderResult, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.defaultModel
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   int64(c.config.MaxTokens),
		Temperature: anthropic.Float(c.config.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	c.logger.Debug("Generating with Claude",
		zap.String("model", modelName),
		zap.Bool("stream", req.Stream),
	)

	var (
		text string
		err  error
	)
	if req.Stream {
		text, err = c.stream(ctx, params, req.OnChunk)
	} else {
		text, err = c.complete(ctx, params)
	}
	if err != nil {
		c.logger.Error("Claude generation failed", zap.Error(err))
		return ProviderResult{}, fmt.Errorf("failed to call Claude API: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return ProviderResult{}, fmt.Errorf("Claude returned empty response")
	}
	return ProviderResult{Text: text, Model: modelName}, nil
}

func (c *ClaudeProvider) complete(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	return builder.String(), nil
}

func (c *ClaudeProvider) stream(ctx context.Context, params anthropic.MessageNewParams, onChunk ChunkHandler) (string, error) {
	stream := c.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var builder strings.Builder
	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				builder.WriteString(delta.Text)
				if onChunk != nil {
					onChunk(delta.Text)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return builder.String(), nil
}
