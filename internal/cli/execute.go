package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/platewire/sizzle/internal/config"
	"github.com/platewire/sizzle/internal/history"
	"github.com/platewire/sizzle/internal/probe"
	"github.com/platewire/sizzle/internal/suite"
)

// SuiteOptions holds the flags shared by the run and smoke commands.
type SuiteOptions struct {
	*RootOptions
	BaseURL   string
	Record    string
	KeepGoing bool
	Timeout   time.Duration
}

func addSuiteFlags(cmd *cobra.Command, opts *SuiteOptions) {
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "override the suite's base URL")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "run every step instead of aborting on the first failure")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-request timeout (default 30s)")
}

// loadConfig resolves file/env configuration for a command.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigFile != "" {
		cfg, err := config.LoadFile(opts.ConfigFile)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// executeSuite runs a loaded suite and reports the outcome.
//
// Progress lines go to stdout in text mode and to stderr in JSON mode so
// machine-readable output stays parseable. A failed run returns an
// ExitError with code 1; the process exits non-zero with no step after
// the failing one executed (unless keep-going is on).
func executeSuite(opts *SuiteOptions, cfg *config.Config, s *suite.Suite, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	var progress io.Writer = cmd.OutOrStdout()
	if opts.Format == "json" {
		progress = cmd.ErrOrStderr()
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = cfg.Timeout()
	}

	runner := probe.New(probe.Options{
		BaseURL:   opts.BaseURL,
		EchoJSON:  opts.EchoJSON || cfg.EchoJSON,
		KeepGoing: opts.KeepGoing,
		Timeout:   timeout,
		Out:       progress,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	result, err := runner.Run(ctx, s)
	if err != nil {
		return WrapExitError(ExitCommandError, "run could not start", err)
	}

	if dbPath := recordPath(opts, cfg); dbPath != "" {
		runID, err := recordRun(ctx, dbPath, started, result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		logger.Info("run recorded", "db", dbPath, "run_id", runID)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		if result.Pass {
			return formatter.Success(result)
		}
		_ = formatter.Error("E_STEP_FAILED",
			fmt.Sprintf("%d step(s) failed, %d skipped", result.Failed, result.Skipped), result)
		return NewExitError(ExitFailure, fmt.Sprintf("%d step(s) failed", result.Failed))
	}

	probe.RenderSummary(cmd.OutOrStdout(), result)
	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d step(s) failed", result.Failed))
	}
	return nil
}

func recordPath(opts *SuiteOptions, cfg *config.Config) string {
	if opts.Record != "" {
		return opts.Record
	}
	return cfg.HistoryDB
}

func recordRun(ctx context.Context, dbPath string, started time.Time, result *probe.Result) (string, error) {
	store, err := history.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	runID := history.NewRunID()
	if err := store.RecordRun(ctx, runID, started, result); err != nil {
		return "", err
	}
	return runID, nil
}
