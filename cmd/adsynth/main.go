package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/config"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

var (
	providerOverride string
	logLevelOverride string
)

var rootCmd = &cobra.Command{
	Use:   "adsynth",
	Short: "Generate ad copy from discussion research and LLM agents",
	Long: `adsynth runs a five-stage agent pipeline for a product:
  1. Research: pick communities and search queries
  2. Data Collection: search Reddit discussions
  3. Analysis: filter by relevance and extract audience insights
  4. Copywriting: write a platform-specific ad script
  5. Review: critique the script and propose an improved version

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&providerOverride, "provider", "", "LLM backend (openai, claude, groq, gemini); overrides LLM_PROVIDER")
	rootCmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration with CLI overrides applied and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	if providerOverride != "" {
		if err := os.Setenv("LLM_PROVIDER", providerOverride); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevelOverride != "" {
		cfg.Logging.Level = logLevelOverride
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
