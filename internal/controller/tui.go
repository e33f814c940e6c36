package controller

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

const progressBarWidth = 40

// TUI implements UI for interactive terminals: a live progress bar while
// files are processed and a scrollable list view when the report does not
// fit the screen. Everything else falls back to the plain renderer.
type TUI struct {
	*SimpleUI

	cmd *cobra.Command
	bar progress.Model
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = progressBarWidth

	return &TUI{
		SimpleUI: NewSimpleUI(cmd),
		cmd:      cmd,
		bar:      bar,
	}
}

// DisplayProgress redraws the progress bar in place after each file.
func (t *TUI) DisplayProgress(done int, total int, path m.Path) {
	if total == 0 {
		return
	}

	out := t.cmd.OutOrStdout()

	fraction := float64(done) / float64(total)
	_, _ = fmt.Fprintf(out, "\r%s %d/%d %s\033[K", t.bar.ViewAs(fraction), done, total, path)

	if done == total {
		_, _ = fmt.Fprint(out, "\r\033[K")
	}
}

// DisplayList pages the report through Bubble Tea when it is taller than
// the terminal, otherwise prints it directly.
func (t *TUI) DisplayList(ctx context.Context, rows []ListRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newListModel(rows)

	if f, ok := t.cmd.OutOrStdout().(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.width = width
			model.height = height
		}
	}

	if !model.needsPagination() {
		_, _ = fmt.Fprint(t.cmd.OutOrStdout(), model.View())
		return nil
	}

	program := tea.NewProgram(model, tea.WithOutput(t.cmd.OutOrStdout()), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// listModel is the Bubble Tea model for scrolling through list rows.
type listModel struct {
	rows   []ListRow
	width  int
	height int
	offset int
}

func newListModel(rows []ListRow) listModel {
	return listModel{rows: rows}
}

func (lm listModel) needsPagination() bool {
	return lm.height > 0 && len(lm.rows)+listChromeLines > lm.height
}

// listChromeLines covers the table header, footer and the key hint.
const listChromeLines = 6

func (lm listModel) Init() tea.Cmd {
	return nil
}

func (lm listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		lm.width = msg.Width
		lm.height = msg.Height

		return lm, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return lm, tea.Quit
		case "up", "k":
			if lm.offset > 0 {
				lm.offset--
			}
		case "down", "j":
			if lm.offset < lm.maxOffset() {
				lm.offset++
			}
		case "pgup":
			lm.offset = max(0, lm.offset-lm.pageSize())
		case "pgdown", " ":
			lm.offset = min(lm.maxOffset(), lm.offset+lm.pageSize())
		}
	}

	return lm, nil
}

func (lm listModel) pageSize() int {
	size := lm.height - listChromeLines
	if size < 1 {
		return 1
	}

	return size
}

func (lm listModel) maxOffset() int {
	return max(0, len(lm.rows)-lm.pageSize())
}

func (lm listModel) View() string {
	visible := lm.rows
	paged := lm.needsPagination()

	if paged {
		end := min(len(lm.rows), lm.offset+lm.pageSize())
		visible = lm.rows[lm.offset:end]
	}

	var b strings.Builder

	b.WriteString(renderListTable(visible))

	if paged {
		fmt.Fprintf(&b, "\n  %d-%d of %d  (j/k scroll, q quit)\n",
			lm.offset+1, lm.offset+len(visible), len(lm.rows))
	}

	return b.String()
}
