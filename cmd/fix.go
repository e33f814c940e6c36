package cmd

import (
	m "tracefix.dev/pkg/tracefix/internal/model"
)

// fixCmd represents the fix command.
var fixCmd = newActionCmd(
	m.ActionFix,
	"Insert instrumentation attributes above eligible functions",
	`Rewrites the given paths, inserting a #[tracing::instrument(...)]
attribute directly above every eligible function that lacks one. The
skip list names every parameter so no argument is recorded by default.
All other bytes of each file are left untouched. Use --diff to preview
the rewrite without writing.`,
)

func init() {
	rootCmd.AddCommand(fixCmd)
}
