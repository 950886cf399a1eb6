package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/sanitize"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

// structuredTriggers mark a prompt as expecting a JSON payload.
var structuredTriggers = []string{
	"Provide a JSON response",
	"Respond with a JSON",
	"Format your response as a JSON",
	"Return a JSON",
}

// StructuredInstruction is appended to prompts that expect a JSON payload.
const StructuredInstruction = "\n\nIMPORTANT: Return ONLY the JSON object without any additional text, thinking process, or explanations."

// ExpectsStructured reports whether prompt asks for structured output.
func ExpectsStructured(prompt string) bool {
	for _, trigger := range structuredTriggers {
		if strings.Contains(prompt, trigger) {
			return true
		}
	}
	return false
}

// SafeDefaultPayload is the structured result returned in place of a failed
// structured generation. It deliberately carries no improved script.
func SafeDefaultPayload(err error) map[string]any {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return map[string]any{
		"score":                      5,
		"strengths":                  []string{"Error occurred"},
		"weaknesses":                 []string{"API error occurred"},
		"suggestions":                []string{"Try again or use a different model"},
		"platform_specific_feedback": "Error: " + msg,
	}
}

func safeDefaultResponse(err error, provider, model string) *Response {
	payload, _ := json.Marshal(SafeDefaultPayload(err))
	return &Response{
		Payload:    payload,
		Structured: true,
		Defaulted:  true,
		Provider:   provider,
		Model:      model,
		Err:        err,
	}
}

// Adapter is the uniform generation entry point over one backend. It detects
// structured prompts, sanitizes output and absorbs structured failures.
type Adapter struct {
	provider Provider
	logger   *zap.Logger
}

func NewAdapter(provider Provider, logger *zap.Logger) *Adapter {
	return &Adapter{provider: provider, logger: logger}
}

func (a *Adapter) Name() string {
	return a.provider.Name()
}

func (a *Adapter) DefaultModel() string {
	return a.provider.DefaultModel()
}

// Generate calls the backend once. A failed unstructured call returns the
// error; a failed structured call returns the safe default and a nil error.
func (a *Adapter) Generate(ctx context.Context, prompt string, opts *GenerateOptions) (*Response, error) {
	var options GenerateOptions
	if opts != nil {
		options = *opts
	}

	structured := ExpectsStructured(prompt)
	if structured {
		prompt += StructuredInstruction
	}

	model := options.Model
	if model == "" {
		model = a.provider.DefaultModel()
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.APIConfig.ProviderCallTimeout)
	defer cancel()

	result, err := a.provider.Generate(callCtx, Request{
		Prompt:     prompt,
		Model:      model,
		Structured: structured,
		Stream:     options.Stream,
		OnChunk:    options.OnChunk,
	})
	var cleaned string
	if err == nil {
		if cleaned = sanitize.Clean(result.Text); cleaned == "" {
			err = fmt.Errorf("response was empty after sanitization")
		}
	}
	if err != nil {
		providerErr := errors.NewProviderError("generation failed", a.provider.Name(), model, err)
		if !structured {
			return nil, providerErr
		}
		a.logger.Warn("Structured generation failed, returning safe default",
			zap.String("provider", a.provider.Name()),
			zap.String("model", model),
			zap.Error(err),
		)
		return safeDefaultResponse(providerErr, a.provider.Name(), model), nil
	}

	if result.Model != "" {
		model = result.Model
	}
	resp := &Response{
		Text:       cleaned,
		Structured: structured,
		Provider:   a.provider.Name(),
		Model:      model,
	}

	if structured {
		if payload, ok := sanitize.ExtractValue(resp.Text); ok {
			resp.Payload = payload
		} else {
			a.logger.Debug("No structured payload found in response",
				zap.String("provider", a.provider.Name()),
				zap.String("preview", util.TruncateString(resp.Text, 200)),
			)
		}
	}

	return resp, nil
}
