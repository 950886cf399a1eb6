package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/agent"
	"github.com/dsaidinesh/adsynth-backedn/internal/artifact"
	"github.com/dsaidinesh/adsynth-backedn/internal/config"
	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/pipeline"
	"github.com/dsaidinesh/adsynth-backedn/internal/reddit"
	"github.com/dsaidinesh/adsynth-backedn/internal/runbook"
	"github.com/dsaidinesh/adsynth-backedn/internal/service/ai"
	"github.com/dsaidinesh/adsynth-backedn/internal/service/cache"
	"github.com/dsaidinesh/adsynth-backedn/internal/service/database"
	"github.com/dsaidinesh/adsynth-backedn/internal/store"
	"github.com/dsaidinesh/adsynth-backedn/internal/stream"
)

// Container bundles the assembled pipeline and the resources it owns.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Orchestrator *pipeline.Orchestrator
	Runner       *pipeline.Runner
	Artifacts    *artifact.FileStore
	// Scripts is nil when STORE_DRIVER=none.
	Scripts *store.ScriptRepository

	closers []func()
}

// BuildOptions are the CLI-level choices that affect wiring.
type BuildOptions struct {
	// Stdout receives streamed script chunks. Nil means os.Stdout.
	Stdout io.Writer
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles every collaborator of the pipeline. Optional infrastructure
// (Redis, websocket display) that cannot be reached is logged and skipped;
// a bad provider setup or an unreachable result store is fatal.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts BuildOptions) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// AI stack
	modelManager, err := buildModelManager(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	// Discussion search, optionally behind the Redis cache
	var searcher agent.Searcher = reddit.NewSearcher(ctx, cfg.Reddit, logger)
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Redis unavailable, search results will not be cached", zap.Error(cacheErr))
		} else {
			closers = append(closers, func() {
				_ = cacheSvc.Close()
			})
			searcher = reddit.NewCachedSearcher(searcher, cacheSvc, cfg.Redis.TTL, logger)
		}
	}

	// Result store
	var scripts *store.ScriptRepository
	deps := pipeline.Deps{
		Invoker:  modelManager,
		Searcher: searcher,
		Logger:   logger,
	}
	if cfg.Store.Driver != config.StoreDriverNone {
		dbSvc, dbErr := openDatabase(cfg.Store, logger)
		if dbErr != nil {
			return nil, dbErr
		}
		closers = append(closers, func() {
			_ = dbSvc.Close()
		})
		scripts = store.NewScriptRepository(dbSvc, logger)
		if err := scripts.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare result store: %w", err)
		}
		deps.Store = scripts
	}

	// Artifacts, runbook and live display
	artifacts := artifact.NewFileStore(cfg.Output.ArtifactDir, logger)
	deps.Artifacts = artifacts

	renderer, err := runbook.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load runbook templates: %w", err)
	}
	deps.Runbook = renderer

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	sinks := stream.Fanout{stream.NewConsoleSink(stdout)}
	if cfg.Output.StreamWSURL != "" {
		ws := stream.NewWebSocketSink(cfg.Output.StreamWSURL,
			constants.WebSocketConfig.MaxReconnectAttempts,
			constants.WebSocketConfig.ReconnectDelay,
			constants.WebSocketConfig.WriteTimeout,
			logger,
		)
		if wsErr := ws.Connect(ctx); wsErr != nil {
			logger.Warn("Stream websocket not reachable, will retry on send", zap.Error(wsErr))
		}
		sinks = append(sinks, ws)
	}
	closers = append(closers, func() {
		_ = sinks.Close()
	})
	deps.Sink = sinks

	orchestrator, err := pipeline.NewOrchestrator(deps, pipeline.Config{
		Provider:      modelManager.ProviderName(),
		DefaultModel:  modelManager.ResolveModel(cfg.LLM.Model),
		PostsPerQuery: cfg.Pipeline.PostsPerQuery,
		DedupePosts:   cfg.Pipeline.DedupePosts,
		Analysis: agent.AnalysisConfig{
			RelevanceThreshold: cfg.Pipeline.RelevanceThreshold,
			RelevanceBatchSize: cfg.Pipeline.RelevanceBatchSize,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	logger.Info("Pipeline assembled",
		zap.String("provider", modelManager.ProviderName()),
		zap.String("model", modelManager.ResolveModel(cfg.LLM.Model)),
		zap.Bool("reddit_api", cfg.Reddit.UseAPI()),
		zap.Bool("search_cache", cfg.Redis.Enabled),
		zap.String("store", string(cfg.Store.Driver)),
		zap.String("artifact_dir", artifacts.Dir()),
	)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Orchestrator: orchestrator,
		Runner:       pipeline.NewRunner(orchestrator, cfg.Pipeline.PlatformConcurrency, logger),
		Artifacts:    artifacts,
		Scripts:      scripts,
		closers:      closers,
	}, nil
}

// BuildScripts opens only the result store, for read-only commands.
func BuildScripts(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.ScriptRepository, func(), error) {
	if cfg.Store.Driver == config.StoreDriverNone {
		return nil, nil, fmt.Errorf("no result store configured (set STORE_DRIVER to sqlite or postgres)")
	}
	dbSvc, err := openDatabase(cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	scripts := store.NewScriptRepository(dbSvc, logger)
	if err := scripts.Migrate(ctx); err != nil {
		_ = dbSvc.Close()
		return nil, nil, fmt.Errorf("failed to prepare result store: %w", err)
	}
	return scripts, func() { _ = dbSvc.Close() }, nil
}

func buildModelManager(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*ai.ModelManager, error) {
	keys := ai.ProviderKeys{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		ClaudeModel:     cfg.ClaudeModel,
		GroqAPIKey:      cfg.GroqAPIKey,
		GroqModel:       cfg.GroqModel,
		GroqBaseURL:     cfg.GroqBaseURL,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
	}

	primary, err := ai.NewProvider(ctx, cfg.Provider, keys, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
	}

	var fallback ai.Provider
	if cfg.EnableFallback {
		fallback, err = ai.NewProvider(ctx, cfg.FallbackProvider, keys, logger)
		if err != nil {
			logger.Warn("Fallback provider unavailable, continuing without it",
				zap.String("provider", cfg.FallbackProvider),
				zap.Error(err),
			)
			fallback = nil
		}
	}

	modelManager, err := ai.NewModelManager(ai.ModelManagerConfig{Primary: primary, Fallback: fallback}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	return modelManager, nil
}

func openDatabase(cfg config.StoreConfig, logger *zap.Logger) (*database.DatabaseService, error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		dbSvc, err := database.NewSQLiteService(cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return dbSvc, nil
	case config.StoreDriverPostgres:
		dbSvc, err := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		return dbSvc, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
