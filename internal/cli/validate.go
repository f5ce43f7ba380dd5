package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/platewire/sizzle/internal/suite"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite.yaml>",
		Short: "Schema-check a suite file without network I/O",
		Long: `Validate a suite file against the suite schema and structural rules.

No request is ever issued: validation covers YAML well-formedness,
unknown fields, the CUE schema (methods, path shape, expectation types)
and structural rules such as duplicate step names and undefined vars.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, "suite file not found: "+path)
	}

	// CUE schema first for positioned constraint errors, then the
	// structural pass (vars, duplicates) that the schema cannot express.
	if err := suite.ValidateFile(path); err != nil {
		_ = formatter.Error("E_BAD_SUITE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "suite is invalid", err)
	}
	if _, err := suite.Load(path); err != nil {
		_ = formatter.Error("E_BAD_SUITE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "suite is invalid", err)
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{File: path, Valid: true})
	}
	return formatter.Success("✓ " + path + " is valid")
}
