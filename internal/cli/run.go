package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/platewire/sizzle/internal/suite"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuiteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <suite.yaml>",
		Short: "Run a suite file against a live service",
		Long: `Run a YAML smoke suite against a live service.

Steps execute strictly in order, one attempt each. The first step whose
response misses its expectation aborts the run (see --keep-going).

Exit codes:
  0 - Every step matched its expectation
  1 - A step failed
  2 - Command error (suite missing or malformed)

Examples:
  sizzle run ./suites/checkout.yaml
  sizzle run ./suites/checkout.yaml --base-url http://staging:5000/api
  sizzle run ./suites/checkout.yaml --keep-going --record ./runs.db
  sizzle run ./suites/checkout.yaml --echo-json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuiteFile(opts, args[0], cmd)
		},
	}

	addSuiteFlags(cmd, opts)

	return cmd
}

func runSuiteFile(opts *SuiteOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, "suite file not found: "+path)
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}

	s, err := suite.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load suite", err)
	}

	return executeSuite(opts, cfg, s, cmd)
}
