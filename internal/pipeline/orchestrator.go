package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/agent"
	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/prompt"
	"github.com/dsaidinesh/adsynth-backedn/internal/runbook"
	"github.com/dsaidinesh/adsynth-backedn/internal/service/ai"
	"github.com/dsaidinesh/adsynth-backedn/internal/stream"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

const runbookDisabledReason = "Runbook generation disabled"

// ArtifactWriter persists intermediate and final outputs by name.
type ArtifactWriter interface {
	Write(name string, content []byte) error
}

// RunbookRenderer turns a finished script into a production guide.
type RunbookRenderer interface {
	Render(platform domain.Platform, script string, product domain.ProductInfo) (string, error)
}

// ResultStore keeps finished results.
type ResultStore interface {
	Save(ctx context.Context, result *domain.PipelineResult) (string, error)
}

type pathResolver interface {
	Path(name string) string
}

// Config is the orchestrator-level configuration shared by every run.
type Config struct {
	Provider      string
	DefaultModel  string
	PostsPerQuery int
	DedupePosts   bool
	Analysis      agent.AnalysisConfig
}

// Deps are the collaborators of an orchestrator. Only Invoker is required.
type Deps struct {
	Invoker   ai.ModelInvoker
	Searcher  agent.Searcher
	Artifacts ArtifactWriter
	Runbook   RunbookRenderer
	Store     ResultStore
	Sink      stream.Sink
	Prompts   *prompt.PromptBuilder
	Logger    *zap.Logger
}

// Options are the per-run flags.
type Options struct {
	Platform          domain.Platform
	SkipReddit        bool
	SaveIntermediates bool
	GenerateRunbook   bool
	// Model overrides the configured default model for this run.
	Model  string
	Stream bool
}

// Orchestrator runs the five agent stages in order for one platform.
type Orchestrator struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
}

func NewOrchestrator(deps Deps, cfg Config) (*Orchestrator, error) {
	if deps.Invoker == nil {
		return nil, fmt.Errorf("model invoker is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Prompts == nil {
		deps.Prompts = prompt.DefaultPromptBuilder()
	}
	if cfg.PostsPerQuery <= 0 {
		cfg.PostsPerQuery = constants.CollectionLimits.DefaultPerQuery
	}
	return &Orchestrator{deps: deps, cfg: cfg, logger: deps.Logger}, nil
}

// Generate runs Research, DataCollection, Analysis, Copywriting and Review,
// then the optional runbook. Once the product validates, a complete result
// with a non-empty final script is always returned.
func (o *Orchestrator) Generate(ctx context.Context, product domain.ProductInfo, opts Options) (*domain.PipelineResult, error) {
	product = product.Normalize()
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if opts.Platform == domain.PlatformAll {
		return nil, errors.NewValidationError("platform \"all\" must be run through the multi-platform runner", "platform", string(opts.Platform))
	}

	platform := opts.Platform.OrGeneral()
	if opts.Platform != "" && opts.Platform != platform {
		o.logger.Warn("Unknown platform, using general", zap.String("platform", string(opts.Platform)))
	}

	model := opts.Model
	if model == "" {
		model = o.cfg.DefaultModel
	}

	logger := o.logger.With(zap.String("platform", platform.String()))
	base := agent.NewBase(o.deps.Invoker, o.deps.Prompts, agent.Options{
		Model:  model,
		Chunks: o.chunks(opts.Stream, platform),
	}, logger)

	result := &domain.PipelineResult{
		ProductInfo: product,
		Platform:    platform,
		Configuration: domain.Configuration{
			Provider:          o.cfg.Provider,
			Model:             model,
			SkipReddit:        opts.SkipReddit,
			Platform:          platform,
			SaveIntermediates: opts.SaveIntermediates,
			GenerateRunbook:   opts.GenerateRunbook,
		},
	}
	run := &run{o: o, platform: platform, save: opts.SaveIntermediates, logger: logger}

	// Stage 1
	run.banner(1, "Research")
	research := agent.NewResearchAgent(base)
	sources := research.FindRelevantSources(ctx, product)
	queries := research.GenerateQueries(ctx, product)
	result.Stages.Research = &domain.ResearchStage{Sources: sources, Queries: queries}
	run.saveJSON("stage1_research", result.Stages.Research)

	// Stage 2
	run.banner(2, "Data Collection")
	var posts []domain.DiscussionPost
	switch {
	case opts.SkipReddit:
		logger.Info("Skipping data collection")
		result.Stages.DataCollection = &domain.DataCollectionStage{Skipped: true}
	case o.deps.Searcher == nil:
		logger.Warn("No search backend configured, skipping data collection")
		result.Stages.DataCollection = &domain.DataCollectionStage{Skipped: true}
	default:
		collector := agent.NewDataCollectionAgent(o.deps.Searcher, logger)
		posts = collector.Collect(ctx, sources, queries, o.cfg.PostsPerQuery)
		if o.cfg.DedupePosts {
			posts = domain.DedupeByPermalink(posts)
		}
		result.Stages.DataCollection = &domain.DataCollectionStage{PostsCount: len(posts)}
		if len(posts) > 0 {
			run.saveJSON("stage2_raw_data", posts)
		}
	}

	// Stage 3
	run.banner(3, "Analysis")
	analysis := agent.NewAnalysisAgent(base, o.cfg.Analysis)
	stage := &domain.AnalysisStage{}
	if len(posts) > 0 {
		relevant := analysis.FilterByRelevance(ctx, posts, product)
		stage.Insights = analysis.ExtractInsights(ctx, relevant, product)
		stage.Mode = domain.AnalysisFromData
		stage.RelevantPosts = len(relevant)
	} else {
		logger.Info("No discussion data, synthesizing insights from product info")
		stage.Insights = analysis.SynthesizeWithoutData(ctx, product)
		stage.Mode = domain.AnalysisSynthesis
	}
	result.Stages.Analysis = stage
	run.saveJSON("stage3_analysis", stage)

	// Stage 4
	run.banner(4, "Copywriting")
	script := agent.NewCopywritingAgent(base).Write(ctx, stage.Insights, product, platform)
	o.streamDone(opts.Stream, agent.StageCopywriting, platform)
	result.Stages.Copywriting = &domain.CopywritingStage{OriginalScript: script, Platform: platform}
	run.saveText("stage4_original_script", script)

	// Stage 5
	run.banner(5, "Review")
	review := agent.NewReviewAgent(base).Review(ctx, script, product, stage.Insights, platform)
	result.Stages.Review = &review
	result.FinalAdScript = string(review.ImprovedScript)
	run.saveJSON("stage5_review", review)

	run.write(fmt.Sprintf("final_ad_script_%s.txt", platform), []byte(result.FinalAdScript))

	result.Runbook = run.runbook(opts.GenerateRunbook, result.FinalAdScript, product)

	if o.deps.Store != nil {
		id, err := o.deps.Store.Save(ctx, result)
		if err != nil {
			logger.Warn("Failed to store result", zap.Error(err))
		} else {
			logger.Info("Result stored", zap.String("id", id))
		}
	}

	logger.Info("Pipeline completed",
		zap.String("product", product.Name),
		zap.String("provider", o.cfg.Provider),
		zap.String("model", model),
		zap.Int("script_chars", len(result.FinalAdScript)),
	)
	return result, nil
}

// chunks routes copywriting output to the sink. Structured stages are not
// streamed.
func (o *Orchestrator) chunks(enabled bool, platform domain.Platform) func(stage string) ai.ChunkHandler {
	if !enabled || o.deps.Sink == nil {
		return nil
	}
	return func(stage string) ai.ChunkHandler {
		if stage != agent.StageCopywriting {
			return nil
		}
		return stream.Handler(o.deps.Sink, stage, platform.String())
	}
}

func (o *Orchestrator) streamDone(enabled bool, stage string, platform domain.Platform) {
	if !enabled || o.deps.Sink == nil {
		return
	}
	o.deps.Sink.Send(stream.Event{Type: stream.EventDone, Stage: stage, Platform: platform.String()})
}

// run carries the per-invocation persistence state.
type run struct {
	o        *Orchestrator
	platform domain.Platform
	save     bool
	logger   *zap.Logger
}

func (r *run) banner(n int, name string) {
	r.logger.Info(fmt.Sprintf("STAGE %d: %s", n, name),
		zap.String("provider", r.o.cfg.Provider),
	)
}

func (r *run) saveJSON(prefix string, value any) {
	if !r.save {
		return
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		r.logger.Warn("Failed to encode artifact", zap.String("artifact", prefix), zap.Error(err))
		return
	}
	r.write(fmt.Sprintf("%s_%s.json", prefix, r.platform), data)
}

func (r *run) saveText(prefix, text string) {
	if !r.save {
		return
	}
	r.write(fmt.Sprintf("%s_%s.txt", prefix, r.platform), []byte(text))
}

// write is best-effort: failures are logged and the pipeline continues.
func (r *run) write(name string, content []byte) bool {
	if r.o.deps.Artifacts == nil {
		return false
	}
	if err := r.o.deps.Artifacts.Write(name, content); err != nil {
		r.logger.Warn("Failed to write artifact", zap.String("artifact", name), zap.Error(err))
		return false
	}
	r.logger.Debug("Artifact written", zap.String("artifact", name))
	return true
}

func (r *run) runbook(enabled bool, script string, product domain.ProductInfo) domain.RunbookInfo {
	if !enabled {
		return domain.RunbookInfo{Reason: runbookDisabledReason}
	}

	r.banner(6, "Runbook")
	if r.o.deps.Runbook == nil {
		return domain.RunbookInfo{Error: "runbook renderer not configured"}
	}

	content, err := r.o.deps.Runbook.Render(r.platform, script, product)
	if err != nil {
		r.logger.Warn("Runbook generation failed", zap.Error(err))
		return domain.RunbookInfo{Error: err.Error()}
	}

	info := domain.RunbookInfo{Generated: true, Content: content}
	name := runbook.FileName(r.platform, product.Name)
	if r.o.deps.Artifacts != nil {
		if err := r.o.deps.Artifacts.Write(name, []byte(content)); err != nil {
			r.logger.Warn("Failed to save runbook", zap.String("artifact", name), zap.Error(err))
			return domain.RunbookInfo{Error: err.Error()}
		}
		info.Path = name
		if resolver, ok := r.o.deps.Artifacts.(pathResolver); ok {
			info.Path = resolver.Path(name)
		}
	}
	return info
}
