package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/platewire/sizzle/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Suite    string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Inspect recorded runs",
		Long: `List runs recorded with --record, or show one run in full.

With no argument, lists recorded runs newest first. With a run id,
prints the run's stored canonical report and per-step outcomes.

Examples:
  sizzle history --db ./runs.db
  sizzle history --db ./runs.db --suite meals-smoke --limit 10
  sizzle history --db ./runs.db 0190a8b2-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run-history SQLite database")
	cmd.Flags().StringVar(&opts.Suite, "suite", "", "only list runs of this suite")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = no limit)")

	return cmd
}

func runHistory(opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	dbPath := opts.Database
	if dbPath == "" {
		cfg, err := loadConfig(opts.RootOptions)
		if err != nil {
			return err
		}
		dbPath = cfg.HistoryDB
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no history database: pass --db or set SIZZLE_HISTORY_DB")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer store.Close()

	ctx := context.Background()

	if runID != "" {
		return showRun(ctx, opts, store, runID, cmd)
	}
	return listRuns(ctx, opts, store, cmd)
}

func listRuns(ctx context.Context, opts *HistoryOptions, store *history.Store, cmd *cobra.Command) error {
	runs, err := store.ListRuns(ctx, opts.Suite, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return nil
	}
	for _, run := range runs {
		verdict := "PASS"
		if !run.Pass {
			verdict = "FAIL"
		}
		fmt.Fprintf(w, "%s  %s  %-4s  %d passed, %d failed, %d skipped  %s\n",
			run.StartedAt.Format(time.RFC3339), run.ID, verdict,
			run.Passed, run.Failed, run.Skipped, run.Suite)
	}
	return nil
}

func showRun(ctx context.Context, opts *HistoryOptions, store *history.Store, runID string, cmd *cobra.Command) error {
	reportJSON, err := store.GetReport(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load run", err)
	}

	w := cmd.OutOrStdout()

	if opts.Format == "json" {
		// The stored report is already canonical JSON; emit it verbatim.
		fmt.Fprintln(w, string(reportJSON))
		return nil
	}

	steps, err := store.GetSteps(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load run steps", err)
	}

	fmt.Fprintf(w, "Run %s\n", runID)
	for _, step := range steps {
		switch {
		case step.Skipped:
			fmt.Fprintf(w, "- %s (skipped)\n", step.Name)
		case step.Pass:
			fmt.Fprintf(w, "✓ %s\n", step.Name)
		default:
			fmt.Fprintf(w, "✗ %s (%s %s, status %d)\n", step.Name, step.Method, step.Path, step.Status)
		}
	}
	return nil
}
