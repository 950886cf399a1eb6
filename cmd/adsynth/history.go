package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dsaidinesh/adsynth-backedn/internal/app"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

var (
	historyLimit int
	historyShow  string
)

var historyCmd = &cobra.Command{
	Use:   "history [product name]",
	Short: "List stored ad scripts for a product",
	Long: `Lists scripts saved by earlier runs, newest first. Requires STORE_DRIVER
to be sqlite or postgres. Use --show to print one stored script in full.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "print the stored script with this id")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	scripts, closeStore, err := app.BuildScripts(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()

	if historyShow != "" {
		stored, err := scripts.Get(ctx, historyShow)
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("no stored script with id %s", historyShow)
		}
		fmt.Fprintf(out, "%s (%s, %s/%s) %s\n\n%s\n", stored.ProductName, stored.Platform,
			stored.Provider, stored.Model, stored.CreatedAt.Format("2006-01-02 15:04:05"), stored.FinalScript)
		if stored.RunbookContent != "" {
			fmt.Fprintf(out, "\n%s\n", stored.RunbookContent)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("product name is required unless --show is given")
	}

	entries, err := scripts.ListByProduct(ctx, args[0], historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No stored scripts for %s\n", args[0])
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tPLATFORM\tMODEL\tSCRIPT")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			entry.ID,
			entry.CreatedAt.Format("2006-01-02 15:04"),
			entry.Platform,
			entry.Model,
			util.TruncateString(firstLine(entry.FinalScript), 60),
		)
	}
	return tw.Flush()
}

func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
	}
	return text
}
