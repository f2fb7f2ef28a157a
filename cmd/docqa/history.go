package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nrjais/docqa/internal/store"
)

var errNoStore = errors.New("no history store configured: set store.driver and store.dsn")

var historyFlags struct {
	limit int
	runID int64
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent validation runs",
	Long: `List recent validation runs from the configured history store, or the
collection results of one run.

Examples:
  # Last 20 runs
  docqa history

  # Collection results of run 42
  docqa history --run 42`,
	RunE: showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "number of runs to list")
	historyCmd.Flags().Int64Var(&historyFlags.runID, "run", 0, "show the collection results of this run")
}

func showHistory(cmd *cobra.Command, args []string) error {
	if cfg.Store.Driver == "" {
		return errNoStore
	}
	ctx := cmd.Context()

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer st.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	if historyFlags.runID > 0 {
		records, err := st.RunResults(ctx, historyFlags.runID)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "COLLECTION\tSTATUS\tERRORS\tSAMPLED\tDOCUMENTS\tDURATION")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				rec.Collection, rec.Status, rec.ErrorCount,
				humanize.Comma(rec.SampleSize), humanize.Comma(rec.TotalDocuments), rec.Duration)
		}
		return nil
	}

	runs, err := st.ListRuns(ctx, historyFlags.limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "ID\tSTARTED\tRESULT\tCOLLECTIONS\tFAILED\tERRORS\tDURATION")
	for _, run := range runs {
		result := "passed"
		if !run.Passed() {
			result = "failed"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ID, humanize.Time(run.StartedAt), result, run.TotalCollections,
			run.FailedCount, humanize.Comma(int64(run.ErrorCount)), run.ExecutionTime)
	}
	return nil
}
