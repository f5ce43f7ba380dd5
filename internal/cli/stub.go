package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/platewire/sizzle/internal/stubserver"
)

// StubOptions holds flags for the stub command.
type StubOptions struct {
	*RootOptions
	Addr   string
	Prefix string
}

// NewStubCommand creates the stub command.
func NewStubCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StubOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve an in-memory implementation of both services",
		Long: `Serve a conforming in-memory implementation of the kitchen and meals
APIs for local harness development.

All state is in memory and lost on shutdown. Both route families are
mounted on one listener, so the built-in suites can point at the same
address.

Examples:
  sizzle stub
  sizzle stub --addr :9090 --prefix /api
  sizzle smoke meals --base-url http://localhost:8080/api`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStub(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "/api", "API path prefix")

	return cmd
}

func runStub(opts *StubOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           stubserver.New().Handler(opts.Prefix),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub server listening", "addr", opts.Addr, "prefix", opts.Prefix)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "stub server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitCommandError, "shutdown failed", err)
	}
	return nil
}
