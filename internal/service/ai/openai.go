package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

// OpenAIProvider wraps the chat completion client. Groq serves the same API,
// so it is the same type pointed at a different base URL.
type OpenAIProvider struct {
	client        *openai.Client
	name          string
	defaultModel  string
	allowedModels []string
	config        ProviderConfig
	logger        *zap.Logger
}

func NewOpenAIProvider(apiKey string, defaultModel string, logger *zap.Logger) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client:       &client,
		name:         constants.ProviderTags.OpenAI,
		defaultModel: defaultModel,
		config:       GetProviderConfig(constants.ProviderTags.OpenAI),
		logger:       logger,
	}
}

func NewGroqProvider(apiKey, baseURL, defaultModel string, logger *zap.Logger) *OpenAIProvider {
	if baseURL == "" {
		baseURL = constants.APIConfig.GroqBaseURL
	}
	if !util.Contains(constants.GroqModels, defaultModel) {
		logger.Warn("Unknown Groq model configured, using default",
			zap.String("model", defaultModel),
			zap.String("default", constants.DefaultModels.Groq),
		)
		defaultModel = constants.DefaultModels.Groq
	}
	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL))
	return &OpenAIProvider{
		client:        &client,
		name:          constants.ProviderTags.Groq,
		defaultModel:  defaultModel,
		allowedModels: constants.GroqModels,
		config:        GetProviderConfig(constants.ProviderTags.Groq),
		logger:        logger,
	}
}

func (o *OpenAIProvider) Name() string {
	return o.name
}

func (o *OpenAIProvider) DefaultModel() string {
	return o.defaultModel
}

func (o *OpenAIProvider) Generate(ctx context.Context, req Request) (ProviderResult, error) {
	if o.client == nil {
		return ProviderResult{}, fmt.Errorf("%s client not initialized", o.name)
	}

	modelName := o.resolveModel(req.Model)
	params := o.buildParams(modelName, req.Prompt)

	o.logger.Debug("Generating chat completion",
		zap.String("provider", o.name),
		zap.String("model", modelName),
		zap.Bool("stream", req.Stream),
	)

	if req.Stream {
		text, err := o.stream(ctx, params, req.OnChunk)
		if err != nil {
			return ProviderResult{}, err
		}
		return ProviderResult{Text: text, Model: modelName}, nil
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Error("Chat completion failed", zap.String("provider", o.name), zap.Error(err))
		return ProviderResult{}, err
	}
	if len(resp.Choices) == 0 {
		return ProviderResult{}, fmt.Errorf("no choices in %s response", o.name)
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return ProviderResult{}, fmt.Errorf("empty response from %s", o.name)
	}

	o.logger.Debug("Chat completion received",
		zap.String("provider", o.name),
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return ProviderResult{Text: text, Model: modelName}, nil
}

func (o *OpenAIProvider) stream(ctx context.Context, params openai.ChatCompletionNewParams, onChunk ChunkHandler) (string, error) {
	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var builder strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		builder.WriteString(delta)
		if onChunk != nil {
			onChunk(delta)
		}
	}
	if err := stream.Err(); err != nil {
		o.logger.Error("Chat completion stream failed", zap.String("provider", o.name), zap.Error(err))
		return "", err
	}
	if strings.TrimSpace(builder.String()) == "" {
		return "", fmt.Errorf("empty streamed response from %s", o.name)
	}
	return builder.String(), nil
}

func (o *OpenAIProvider) buildParams(modelName, prompt string) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if o.config.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(o.config.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(modelName),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(o.config.MaxTokens)),
		Temperature:         openai.Float(o.config.Temperature),
	}
	if o.config.TopP > 0 {
		params.TopP = openai.Float(o.config.TopP)
	}
	return params
}

func (o *OpenAIProvider) resolveModel(requested string) string {
	if requested == "" {
		return o.defaultModel
	}
	if len(o.allowedModels) > 0 && !util.Contains(o.allowedModels, requested) {
		o.logger.Warn("Unsupported model requested, using default",
			zap.String("provider", o.name),
			zap.String("requested", requested),
			zap.String("default", o.defaultModel),
		)
		return o.defaultModel
	}
	return requested
}
