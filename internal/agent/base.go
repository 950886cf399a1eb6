package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/prompt"
	"github.com/dsaidinesh/adsynth-backedn/internal/service/ai"
)

// Stage names used for logging and live output.
const (
	StageResearch    = "research"
	StageCollection  = "data_collection"
	StageAnalysis    = "analysis"
	StageCopywriting = "copywriting"
	StageReview      = "review"
)

// Options are shared by every agent of one pipeline run.
type Options struct {
	Model string
	// Chunks returns the live-output callback for a stage. Nil disables streaming.
	Chunks func(stage string) ai.ChunkHandler
}

// Base is the generation plumbing every LLM-backed agent embeds.
type Base struct {
	invoker ai.ModelInvoker
	builder *prompt.PromptBuilder
	opts    Options
	logger  *zap.Logger
}

func NewBase(invoker ai.ModelInvoker, builder *prompt.PromptBuilder, opts Options, logger *zap.Logger) *Base {
	if builder == nil {
		builder = prompt.DefaultPromptBuilder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Base{
		invoker: invoker,
		builder: builder,
		opts:    opts,
		logger:  logger,
	}
}

func (b *Base) options(stage string) *ai.GenerateOptions {
	opts := &ai.GenerateOptions{Model: b.opts.Model}
	if b.opts.Chunks != nil {
		if handler := b.opts.Chunks(stage); handler != nil {
			opts.Stream = true
			opts.OnChunk = handler
		}
	}
	return opts
}

// render builds a prompt from the embedded template, or the inline fallback
// prompt when the template cannot be rendered.
func (b *Base) render(name prompt.TemplateName, data any, fallback func() string) string {
	text, err := b.builder.Render(name, data)
	if err != nil {
		b.logger.Warn("Prompt template failed, using inline prompt",
			zap.String("template", string(name)),
			zap.Error(err),
		)
		return fallback()
	}
	return text
}

// generateText returns the model's text and false when every backend
// failed, in which case the text is the inline error message.
func (b *Base) generateText(ctx context.Context, stage, text string) (string, bool) {
	out, meta := b.invoker.GenerateText(ctx, text, b.options(stage))
	if meta != nil && meta.Failed {
		b.logger.Warn("Text generation failed",
			zap.String("stage", stage),
			zap.String("provider", meta.Provider),
			zap.Error(meta.Err),
		)
		return out, false
	}
	if meta != nil && meta.UsedFallback {
		b.logger.Info("Text generated by fallback provider",
			zap.String("stage", stage),
			zap.String("provider", meta.Provider),
			zap.String("model", meta.Model),
		)
	}
	return out, true
}

func (b *Base) generateStructured(ctx context.Context, stage, text string) *ai.Response {
	resp, meta := b.invoker.GenerateStructured(ctx, text, b.options(stage))
	if meta != nil && meta.Defaulted {
		b.logger.Warn("Structured generation returned safe default",
			zap.String("stage", stage),
			zap.String("provider", meta.Provider),
			zap.Error(meta.Err),
		)
	}
	if resp == nil {
		resp = &ai.Response{}
	}
	return resp
}

func productData(product domain.ProductInfo) prompt.ProductData {
	return prompt.NewProductData(product)
}
