package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/platewire/sizzle/internal/suite"
)

// NewSmokeCommand creates the smoke command, which runs one of the
// embedded suites by name.
func NewSmokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuiteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "smoke <" + strings.Join(suite.BuiltinNames(), "|") + ">",
		Short: "Run a built-in smoke suite",
		Long: `Run one of the suites embedded in the binary.

"kitchen" covers the inventory/order service and its battle endpoints;
"meals" covers the meal catalog, combatant roster, battle and
leaderboard. Both reproduce the fixed invocation order of the original
smoke scripts.

Examples:
  sizzle smoke kitchen
  sizzle smoke meals --base-url http://localhost:5000/api
  sizzle smoke meals --echo-json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuiltinSuite(opts, args[0], cmd)
		},
	}

	addSuiteFlags(cmd, opts)

	return cmd
}

func runBuiltinSuite(opts *SuiteOptions, name string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}

	s, err := suite.Builtin(name)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot run built-in suite %q", name), err)
	}

	// Configured override applies when no flag was given.
	if opts.BaseURL == "" {
		opts.BaseURL = cfg.BaseURLFor(name)
	}

	return executeSuite(opts, cfg, s, cmd)
}
