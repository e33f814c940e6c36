package cmd

import (
	m "tracefix.dev/pkg/tracefix/internal/model"
)

// checkCmd represents the check command.
var checkCmd = newActionCmd(
	m.ActionCheck,
	"Report functions with missing or unwanted instrumentation",
	`Scans the given paths and reports every function that should carry an
instrumentation attribute but does not, and every test-exempt function
that carries one anyway. No file is modified. Exits with code 2 when at
least one mismatch is found.`,
)

func init() {
	rootCmd.AddCommand(checkCmd)
}
