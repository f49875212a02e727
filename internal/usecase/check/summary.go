package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/bkyoung/quality-gate/internal/domain"
)

// WriteSummary renders the per-gate banner to w and returns the process
// exit code: 0 when every gate passed, 1 otherwise.
func WriteSummary(w io.Writer, summary domain.Summary) int {
	rule := strings.Repeat("=", 50)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Quality Gates Summary")
	fmt.Fprintln(w, rule)

	failed := 0
	for _, g := range summary.Gates {
		prefix := "✅"
		status := "PASSED"
		if !g.Passed {
			prefix = "❌"
			status = "FAILED"
			failed++
		}
		details := ""
		if g.Details != "" {
			details = " - " + g.Details
		}
		fmt.Fprintf(w, "%s %s: %s%s\n", prefix, g.Name, status, details)
	}

	fmt.Fprintln(w, rule)

	if failed > 0 {
		fmt.Fprintf(w, "❌ %d gate(s) failed\n", failed)
		return 1
	}
	fmt.Fprintln(w, "✅ All gates passed!")
	return 0
}
