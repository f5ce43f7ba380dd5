package probe

import (
	"fmt"
	"io"
)

// RenderSummary writes the human-readable run summary in the same shape
// for every run: counts first, then the verdict.
func RenderSummary(w io.Writer, result *Result) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run Summary: %d passed, %d failed, %d skipped, %d total\n",
		result.Passed, result.Failed, result.Skipped, result.Total())

	if result.Pass {
		fmt.Fprintln(w, "✓ All steps passed")
	}
}

// RenderReport writes the full per-step report: one line per step with its
// verdict, then the summary. Used by keep-going runs and by golden tests
// that pin the report shape.
func RenderReport(w io.Writer, result *Result) {
	fmt.Fprintf(w, "Suite: %s (%s)\n", result.Suite, result.BaseURL)
	for _, sr := range result.Steps {
		switch {
		case sr.Skipped:
			fmt.Fprintf(w, "- %s (skipped)\n", sr.Name)
		case sr.Pass:
			fmt.Fprintf(w, "✓ %s\n", sr.Name)
		default:
			fmt.Fprintf(w, "✗ %s\n", sr.Name)
			for _, line := range splitLines(sr.Detail) {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
	RenderSummary(w, result)
}
