package pipeline

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

// Generator is a single-platform pipeline.
type Generator interface {
	Generate(ctx context.Context, product domain.ProductInfo, opts Options) (*domain.PipelineResult, error)
}

// Runner repeats the full pipeline once per platform for the "all" tag.
type Runner struct {
	generator   Generator
	concurrency int
	logger      *zap.Logger
}

func NewRunner(generator Generator, concurrency int, logger *zap.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{generator: generator, concurrency: concurrency, logger: logger}
}

// GenerateAll runs every platform and keys the outcome by platform. A failing
// or panicking run is recorded in Errors and does not stop the others.
func (r *Runner) GenerateAll(ctx context.Context, product domain.ProductInfo, opts Options) *domain.MultiPlatformResult {
	result := &domain.MultiPlatformResult{
		Results: make(map[domain.Platform]*domain.PipelineResult, len(domain.AllPlatforms)),
		Errors:  make(map[domain.Platform]string),
	}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(r.concurrency)
	for _, platform := range domain.AllPlatforms {
		platform := platform
		p.Go(func() {
			runOpts := opts
			runOpts.Platform = platform

			var (
				res *domain.PipelineResult
				err error
			)
			var catcher panics.Catcher
			catcher.Try(func() {
				res, err = r.generator.Generate(ctx, product, runOpts)
			})
			if recovered := catcher.Recovered(); recovered != nil {
				err = errors.NewPipelineError("platform run panicked", errors.CodePipeline,
					map[string]any{"platform": platform.String()}).WithCause(recovered.AsError())
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Error("Platform run failed",
					zap.String("platform", platform.String()),
					zap.Error(err),
				)
				result.Errors[platform] = err.Error()
				return
			}
			result.Results[platform] = res
		})
	}
	p.Wait()

	r.logger.Info("All platform runs completed",
		zap.Int("succeeded", len(result.Results)),
		zap.Int("failed", len(result.Errors)),
	)
	return result
}
