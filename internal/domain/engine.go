// Package domain contains the core tracefix pipeline: attribute synthesis,
// edit planning and outcome reporting over located function records.
package domain

import (
	"fmt"
	"strings"

	m "tracefix.dev/pkg/tracefix/internal/model"
	"tracefix.dev/pkg/tracefix/internal/rustscan"
)

// Run executes one action over one document. It is a pure function of its
// inputs: no I/O, no retained state, safe to call from concurrent workers
// sharing the same validated Config.
func Run(text string, action m.Action, cfg *m.Config) (m.Outcome, error) {
	records, warnings := rustscan.Locate(text)

	outcome := m.Outcome{Action: action, Warnings: warnings}
	lines := strings.Split(text, "\n")

	var edits []m.Edit

	for _, rec := range records {
		if cfg.Excluded(rec.Name) {
			continue
		}

		switch action {
		case m.ActionCheck:
			if mismatch, ok := classify(rec); ok {
				outcome.Mismatches = append(outcome.Mismatches, mismatch)
			}
		case m.ActionFix:
			if rec.Marker == nil && !rec.Exempt() {
				line := synthesize(rec, cfg, indentOf(lines, rec.Signature.Start))
				edits = append(edits, m.Edit{
					Span:        m.SourceSpan{Start: rec.Signature.Start, End: rec.Signature.Start},
					Replacement: []string{line},
				})
			}
		case m.ActionStrip:
			if rec.Marker != nil {
				edits = append(edits, m.Edit{Span: *rec.Marker})
			}
		}
	}

	if action == m.ActionCheck {
		return outcome, nil
	}

	rewritten, err := applyEdits(lines, edits)
	if err != nil {
		return m.Outcome{}, err
	}

	outcome.Text = strings.Join(rewritten, "\n")
	outcome.Changed = len(edits) > 0

	return outcome, nil
}

// countFunctions reports how many functions a document defines and how many
// already carry a marker.
func countFunctions(text string) (int, int) {
	records, _ := rustscan.Locate(text)

	instrumented := 0

	for _, rec := range records {
		if rec.Marker != nil {
			instrumented++
		}
	}

	return len(records), instrumented
}

// classify maps one record to its check finding, if any. Missing applies to
// eligible functions without a marker; Unwanted to test-exempt functions
// that carry one.
func classify(rec m.FunctionRecord) (m.Mismatch, bool) {
	mismatch := m.Mismatch{
		Line:     rec.Signature.Start + 1,
		Col:      rec.Signature.Col,
		Function: rec.Name,
	}

	switch {
	case rec.Marker == nil && !rec.Exempt():
		mismatch.Kind = m.MismatchMissing
		return mismatch, true
	case rec.Marker != nil && rec.TestExempt():
		mismatch.Kind = m.MismatchUnwanted
		mismatch.Line = rec.Marker.Start + 1
		mismatch.Col = rec.Marker.Col

		return mismatch, true
	default:
		return m.Mismatch{}, false
	}
}

// synthesize builds the marker attribute line for a function, reproducing
// the indentation of the signature's first line. The skip list carries the
// detected parameter names in source order plus any configured names not
// already present; an empty parameter list still renders skip().
func synthesize(rec m.FunctionRecord, cfg *m.Config, indent string) string {
	if cfg.LogInstrument {
		return indent + "#[log_instrument::instrument]"
	}

	names := append(append([]string(nil), rec.Params...), cfg.ForcedSkips(rec.Params)...)

	args := fmt.Sprintf("level = %q, skip(%s)", "trace", strings.Join(names, ", "))
	if cfg.Suffix != "" {
		args += ", " + cfg.Suffix
	}

	return indent + "#[tracing::instrument(" + args + ")]"
}

func indentOf(lines []string, idx int) string {
	if idx < 0 || idx >= len(lines) {
		return ""
	}

	line := lines[idx]
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}

	return line
}

// applyEdits replays line-level edits against the original line sequence.
// Edits must arrive in ascending span order and never overlap; the locator
// guarantees this, so a violation is an internal error, not user input.
func applyEdits(lines []string, edits []m.Edit) ([]string, error) {
	for i := 1; i < len(edits); i++ {
		prev, cur := edits[i-1], edits[i]
		if cur.Span.Start < prev.Span.Start || prev.Span.Overlaps(cur.Span) ||
			(prev.Span.Len() > 0 && cur.Span.Start < prev.Span.End) {
			return nil, fmt.Errorf("overlapping edits at lines %d and %d", prev.Span.Start+1, cur.Span.Start+1)
		}
	}

	out := make([]string, 0, len(lines)+len(edits))
	next := 0

	for idx := 0; idx <= len(lines); idx++ {
		for next < len(edits) && edits[next].Span.Start == idx && edits[next].Span.Len() == 0 {
			out = append(out, edits[next].Replacement...)
			next++
		}

		if idx == len(lines) {
			break
		}

		deleted := false

		if next < len(edits) && edits[next].Span.Contains(idx) {
			deleted = true

			if idx == edits[next].Span.End-1 {
				out = append(out, edits[next].Replacement...)
				next++
			}
		}

		if !deleted {
			out = append(out, lines[idx])
		}
	}

	return out, nil
}
