package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

var (
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	unwantedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// SimpleUI implements UI using cobra Command's writers.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayMismatches prints one line per finding followed by a summary table.
func (s *SimpleUI) DisplayMismatches(ctx context.Context, mismatches []m.Mismatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(mismatches) == 0 {
		s.printf("%s\n", okStyle.Render("All functions instrumented."))
		return nil
	}

	for _, mismatch := range mismatches {
		s.printf("%s\n", mismatch.String())
	}

	s.printf("\n%s", renderMismatchTable(mismatches))

	return nil
}

func renderMismatchTable(mismatches []m.Mismatch) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Location", "Kind", "Function"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	missing, unwanted := 0, 0

	for _, mismatch := range mismatches {
		kind := string(mismatch.Kind)

		if mismatch.Kind == m.MismatchUnwanted {
			unwanted++

			kind = unwantedStyle.Render(kind)
		} else {
			missing++

			kind = missingStyle.Render(kind)
		}

		location := fmt.Sprintf("%s:%d:%d", mismatch.Path, mismatch.Line, mismatch.Col)
		table.Append([]string{location, kind, mismatch.Function})
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d mismatches", len(mismatches)),
		fmt.Sprintf("%d missing", missing),
		fmt.Sprintf("%d unwanted", unwanted),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplaySummary prints the closing line of a fix or strip run.
func (s *SimpleUI) DisplaySummary(ctx context.Context, action m.Action, files int, changed int) {
	if err := ctx.Err(); err != nil {
		return
	}

	verb := "updated"
	if action == m.ActionStrip {
		verb = "stripped"
	}

	if changed == 0 {
		s.printf("%s\n", okStyle.Render(fmt.Sprintf("Nothing to do across %d file(s).", files)))
		return
	}

	s.printf("%s %d of %d file(s).\n", verb, changed, files)
}

// DisplayDiff prints a unified diff of the rewrite for one document.
func (s *SimpleUI) DisplayDiff(ctx context.Context, path m.Path, original string, rewritten string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(rewritten),
		FromFile: string(path),
		ToFile:   string(path) + " (rewritten)",
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err
	}

	if text != "" {
		s.printf("%s", text)
	}

	return nil
}

// DisplayWarnings prints recoverable scan anomalies on stderr so they never
// pollute rewritten text on stdout.
func (s *SimpleUI) DisplayWarnings(ctx context.Context, warnings []m.Warning) {
	if err := ctx.Err(); err != nil {
		return
	}

	for _, warning := range warnings {
		_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "%s\n", warning.String())
	}
}

// DisplayList prints per-file function and marker counts as a table.
func (s *SimpleUI) DisplayList(ctx context.Context, rows []ListRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderListTable(rows))

	return nil
}

func renderListTable(rows []ListRow) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Functions", "Instrumented", "Missing"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	totalFunctions, totalInstrumented, totalMissing := 0, 0, 0

	for _, row := range rows {
		table.Append([]string{
			string(row.Path),
			fmt.Sprintf("%d", row.Functions),
			fmt.Sprintf("%d", row.Instrumented),
			fmt.Sprintf("%d", row.Missing),
		})

		totalFunctions += row.Functions
		totalInstrumented += row.Instrumented
		totalMissing += row.Missing
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(rows)),
		fmt.Sprintf("%d", totalFunctions),
		fmt.Sprintf("%d", totalInstrumented),
		fmt.Sprintf("%d", totalMissing),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayProgress is a no-op for the plain UI; per-file chatter would make
// CI logs unreadable.
func (s *SimpleUI) DisplayProgress(_ int, _ int, _ m.Path) {}

// DisplayText prints a rewritten document verbatim.
func (s *SimpleUI) DisplayText(text string) {
	s.printf("%s", text)

	if !strings.HasSuffix(text, "\n") {
		s.printf("\n")
	}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
