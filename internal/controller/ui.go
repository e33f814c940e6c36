// Package controller provides output adapters for displaying tracefix
// results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

// ListRow is one line of the `list` report.
type ListRow struct {
	Path         m.Path
	Functions    int
	Instrumented int
	Missing      int
}

// UI defines the interface for displaying run results. Implementations can
// use different output methods (simple text, TUI).
type UI interface {
	// DisplayMismatches renders the check findings, location-sorted.
	DisplayMismatches(ctx context.Context, mismatches []m.Mismatch) error

	// DisplaySummary renders the closing line of a fix/strip run.
	DisplaySummary(ctx context.Context, action m.Action, files int, changed int)

	// DisplayDiff renders a unified diff between the original and the
	// rewritten document.
	DisplayDiff(ctx context.Context, path m.Path, original string, rewritten string) error

	// DisplayWarnings renders recoverable scan anomalies on stderr.
	DisplayWarnings(ctx context.Context, warnings []m.Warning)

	// DisplayList renders per-file function and marker counts.
	DisplayList(ctx context.Context, rows []ListRow) error

	// DisplayProgress reports per-file completion while a run is active.
	DisplayProgress(done int, total int, path m.Path)

	// DisplayText prints a rewritten document verbatim (literal text mode).
	DisplayText(text string)
}

// IsTTY reports whether the file is an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewUI picks the TUI when attached to a terminal and the plain writer UI
// otherwise, mirroring how CI logs should stay scrape-friendly.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}
