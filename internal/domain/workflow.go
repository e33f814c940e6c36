package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"tracefix.dev/pkg/tracefix/internal/adapter"
	"tracefix.dev/pkg/tracefix/internal/controller"
	m "tracefix.dev/pkg/tracefix/internal/model"
)

// ErrMismatches signals that check found at least one mismatch; the CLI
// maps it to a dedicated exit code.
var ErrMismatches = errors.New("instrumentation mismatches found")

// Args carries one multi-file invocation.
type Args struct {
	Paths   []m.Path
	Action  m.Action
	Config  *m.Config
	Threads int

	// DryRun previews fix/strip as a unified diff instead of writing.
	DryRun bool
}

// Summary aggregates per-document outcomes across a run.
type Summary struct {
	Files      int
	Changed    int
	Mismatches []m.Mismatch
	Warnings   []m.Warning
}

// Workflow drives the per-document pipeline across the file tree.
type Workflow interface {
	Apply(ctx context.Context, args Args) (Summary, error)
	List(ctx context.Context, paths []m.Path, cfg *m.Config) error
}

type workflow struct {
	fs adapter.SourceFSAdapter
	ui controller.UI
}

// NewWorkflow creates a new Workflow instance.
func NewWorkflow(fs adapter.SourceFSAdapter, ui controller.UI) Workflow {
	return &workflow{fs: fs, ui: ui}
}

type fileResult struct {
	source   m.Source
	outcome  m.Outcome
	original string
}

// Apply discovers Rust sources under the given paths and runs the action on
// each with a fixed-size worker pool. Results are re-sorted by path so the
// aggregated report is deterministic regardless of worker scheduling.
func (w *workflow) Apply(ctx context.Context, args Args) (Summary, error) {
	sources, err := w.discover(args.Paths, args.Config)
	if err != nil {
		return Summary{}, err
	}

	results, err := w.process(ctx, sources, args)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Files: len(results)}

	for _, result := range results {
		for _, warning := range result.outcome.Warnings {
			warning.Path = result.source.ShortPath
			summary.Warnings = append(summary.Warnings, warning)

			slog.Warn("scan warning", "path", result.source.ShortPath, "kind", warning.Kind, "message", warning.Message)
		}

		switch args.Action {
		case m.ActionCheck:
			for _, mismatch := range result.outcome.Mismatches {
				mismatch.Path = result.source.ShortPath
				summary.Mismatches = append(summary.Mismatches, mismatch)
			}
		case m.ActionFix, m.ActionStrip:
			if !result.outcome.Changed {
				continue
			}

			summary.Changed++

			if args.DryRun {
				if err := w.ui.DisplayDiff(ctx, result.source.ShortPath, result.original, result.outcome.Text); err != nil {
					return Summary{}, err
				}

				continue
			}

			if err := w.writeBack(result); err != nil {
				return Summary{}, err
			}
		}
	}

	w.ui.DisplayWarnings(ctx, summary.Warnings)

	if args.Action == m.ActionCheck {
		if err := w.ui.DisplayMismatches(ctx, summary.Mismatches); err != nil {
			return Summary{}, err
		}

		if len(summary.Mismatches) > 0 {
			return summary, ErrMismatches
		}

		return summary, nil
	}

	w.ui.DisplaySummary(ctx, args.Action, summary.Files, summary.Changed)

	return summary, nil
}

// List reports per-file function and marker counts without rewriting.
func (w *workflow) List(ctx context.Context, paths []m.Path, cfg *m.Config) error {
	sources, err := w.discover(paths, cfg)
	if err != nil {
		return err
	}

	rows := make([]controller.ListRow, 0, len(sources))

	for _, source := range sources {
		content, err := w.fs.ReadFile(source.FullPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", source.FullPath, err)
		}

		outcome, err := Run(string(content), m.ActionCheck, cfg)
		if err != nil {
			return err
		}

		row := controller.ListRow{Path: source.ShortPath}
		row.Functions, row.Instrumented = countFunctions(string(content))

		for _, mismatch := range outcome.Mismatches {
			if mismatch.Kind == m.MismatchMissing {
				row.Missing++
			}
		}

		rows = append(rows, row)
	}

	return w.ui.DisplayList(ctx, rows)
}

func (w *workflow) discover(paths []m.Path, cfg *m.Config) ([]m.Source, error) {
	if len(paths) == 0 {
		paths = []m.Path{"."}
	}

	var sources []m.Source

	seen := make(map[m.Path]bool)

	for _, root := range paths {
		info, err := w.fs.FileInfo(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read entry in file path: %w", err)
		}

		if !info.IsDir() {
			w.collect(&sources, seen, root, m.Path(adapter.NormalizePatternPath(string(root))), cfg)
			continue
		}

		walkRoot := root
		err = w.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				return nil
			}

			rel := w.fs.RelPath(walkRoot, m.Path(path))
			w.collect(&sources, seen, m.Path(path), rel, cfg)

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read entry in file path: %w", err)
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].ShortPath < sources[j].ShortPath
	})

	return sources, nil
}

func (w *workflow) collect(sources *[]m.Source, seen map[m.Path]bool, full m.Path, rel m.Path, cfg *m.Config) {
	if !adapter.IsRustSource(string(full)) || cfg.Excluded(string(rel)) {
		return
	}

	if seen[full] {
		return
	}

	seen[full] = true

	*sources = append(*sources, m.Source{FullPath: full, ShortPath: rel})
}

func (w *workflow) process(ctx context.Context, sources []m.Source, args Args) ([]fileResult, error) {
	threads := args.Threads
	if threads < 1 {
		threads = 1
	}

	results := make([]fileResult, len(sources))

	var (
		mu   sync.Mutex
		done int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, source := range sources {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			content, err := w.fs.ReadFile(source.FullPath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", source.FullPath, err)
			}

			outcome, err := Run(string(content), args.Action, args.Config)
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", source.ShortPath, err)
			}

			results[i] = fileResult{source: source, outcome: outcome, original: string(content)}

			mu.Lock()
			done++
			w.ui.DisplayProgress(done, len(sources), source.ShortPath)
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (w *workflow) writeBack(result fileResult) error {
	perm := os.FileMode(0o644)

	if info, err := w.fs.FileInfo(result.source.FullPath); err == nil {
		perm = info.Mode().Perm()
	}

	if err := w.fs.WriteFile(result.source.FullPath, []byte(result.outcome.Text), perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", result.source.FullPath, err)
	}

	slog.Info("rewrote file", "path", result.source.ShortPath)

	return nil
}
