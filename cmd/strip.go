package cmd

import (
	m "tracefix.dev/pkg/tracefix/internal/model"
)

// stripCmd represents the strip command.
var stripCmd = newActionCmd(
	m.ActionStrip,
	"Remove instrumentation attributes from functions",
	`Rewrites the given paths, removing the instrumentation attribute from
every function that carries one. All other bytes of each file are left
untouched. Use --diff to preview the rewrite without writing.`,
)

func init() {
	rootCmd.AddCommand(stripCmd)
}
