package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/app"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/pipeline"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

type generateFlags struct {
	productFile       string
	product           domain.ProductInfo
	platform          string
	skipReddit        bool
	saveIntermediates bool
	runbook           bool
	model             string
	stream            bool
	jsonOutput        bool
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the pipeline and print the final ad script",
	Long: `Runs Research, Data Collection, Analysis, Copywriting and Review for one
product. Product info comes from --product-file (JSON or YAML), from the
individual flags, or from the built-in FocusFlow sample when neither is given.

Use --platform all to run once per platform.

Example:
  adsynth generate --product-file focusflow.yaml --platform tiktok --runbook`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genFlags.productFile, "product-file", "f", "", "product info file (.json, .yaml, .yml)")
	f.StringVar(&genFlags.product.Name, "name", "", "product name")
	f.StringVar(&genFlags.product.Description, "description", "", "product description")
	f.StringVar(&genFlags.product.TargetAudience, "audience", "", "target audience")
	f.StringVar(&genFlags.product.UseCases, "use-cases", "", "comma-separated use cases")
	f.StringVar(&genFlags.product.Niche, "niche", "", "comma-separated niche terms")
	f.StringVar(&genFlags.product.Keywords, "keywords", "", "comma-separated keywords")
	f.StringVar(&genFlags.product.CampaignGoal, "goal", "", "campaign goal")
	f.StringVarP(&genFlags.platform, "platform", "p", string(domain.PlatformGeneral), "general, instagram, youtube, video, tiktok, facebook or all")
	f.BoolVar(&genFlags.skipReddit, "skip-reddit", false, "skip data collection and synthesize insights from product info")
	f.BoolVar(&genFlags.saveIntermediates, "save-intermediates", false, "write every stage output to the artifact directory")
	f.BoolVar(&genFlags.runbook, "runbook", false, "generate a production runbook")
	f.StringVarP(&genFlags.model, "model", "m", "", "model override for the selected provider")
	f.BoolVar(&genFlags.stream, "stream", false, "stream the ad script as it is written")
	f.BoolVar(&genFlags.jsonOutput, "json", false, "print the full result as JSON")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	product, err := resolveProduct(genFlags.productFile, genFlags.product)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	container, err := app.Build(ctx, cfg, logger, app.BuildOptions{Stdout: cmd.OutOrStdout()})
	if err != nil {
		return fmt.Errorf("failed to assemble pipeline: %w", err)
	}
	defer container.Close()

	opts := pipeline.Options{
		Platform:          domain.ParsePlatform(genFlags.platform),
		SkipReddit:        genFlags.skipReddit,
		SaveIntermediates: genFlags.saveIntermediates,
		GenerateRunbook:   genFlags.runbook,
		Model:             genFlags.model,
		Stream:            genFlags.stream,
	}

	logger.Info("Generating ad script",
		zap.String("product", product.Name),
		zap.String("platform", string(opts.Platform)),
		zap.Bool("skip_reddit", opts.SkipReddit),
	)

	out := cmd.OutOrStdout()
	if opts.Platform == domain.PlatformAll {
		result := container.Runner.GenerateAll(ctx, product, opts)
		if genFlags.jsonOutput {
			return printJSON(out, result)
		}
		printAll(out, result)
		if len(result.Results) == 0 {
			return errors.NewPipelineError("every platform run failed", errors.CodePipeline, map[string]any{"failed": len(result.Errors)})
		}
		return nil
	}

	result, err := container.Orchestrator.Generate(ctx, product, opts)
	if err != nil {
		return err
	}
	if genFlags.jsonOutput {
		return printJSON(out, result)
	}
	printResult(out, result)
	return nil
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func printResult(w io.Writer, result *domain.PipelineResult) {
	fmt.Fprintf(w, "\n===== FINAL AD SCRIPT (%s) =====\n\n%s\n", result.Platform, result.FinalAdScript)
	if review := result.Stages.Review; review != nil {
		fmt.Fprintf(w, "\nReview score: %d/10\n", review.Score.Int())
	}
	switch {
	case result.Runbook.Generated:
		fmt.Fprintf(w, "Runbook: %s\n", result.Runbook.Path)
	case result.Runbook.Error != "":
		fmt.Fprintf(w, "Runbook failed: %s\n", result.Runbook.Error)
	}
}

func printAll(w io.Writer, result *domain.MultiPlatformResult) {
	for _, platform := range domain.AllPlatforms {
		if res, ok := result.Results[platform]; ok {
			printResult(w, res)
		}
	}
	if len(result.Errors) == 0 {
		return
	}
	platforms := make([]string, 0, len(result.Errors))
	for platform := range result.Errors {
		platforms = append(platforms, string(platform))
	}
	sort.Strings(platforms)
	fmt.Fprintln(w, "\nFailed platforms:")
	for _, platform := range platforms {
		fmt.Fprintf(w, "  %s: %s\n", platform, result.Errors[domain.Platform(platform)])
	}
}
