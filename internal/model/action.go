package model

import "fmt"

// Action selects what the pipeline does with each discovered function.
type Action string

const (
	// ActionCheck reports functions whose marker state violates policy.
	ActionCheck Action = "check"
	// ActionFix inserts markers above eligible functions lacking one.
	ActionFix Action = "fix"
	// ActionStrip removes existing markers.
	ActionStrip Action = "strip"
)

// MismatchKind classifies a check finding.
type MismatchKind string

const (
	// MismatchMissing marks an eligible function without a marker.
	MismatchMissing MismatchKind = "missing"
	// MismatchUnwanted marks a test-exempt function that carries a marker.
	MismatchUnwanted MismatchKind = "unwanted"
)

// Mismatch is one check finding, addressed by one-based line and zero-based
// column of the function signature.
type Mismatch struct {
	Path     Path
	Line     int
	Col      int
	Kind     MismatchKind
	Function string
}

func (m Mismatch) String() string {
	label := "Missing"
	if m.Kind == MismatchUnwanted {
		label = "Unwanted"
	}

	// Literal text mode has no path to report.
	if m.Path == "" {
		return fmt.Sprintf("%s instrumentation at %d:%d.", label, m.Line, m.Col)
	}

	return fmt.Sprintf("%s instrumentation at %s:%d:%d.", label, m.Path, m.Line, m.Col)
}

// WarningKind classifies recoverable anomalies found while scanning.
type WarningKind string

const (
	// WarnMalformedInput covers unterminated strings/comments and braces
	// left open at end of input.
	WarnMalformedInput WarningKind = "malformed-input"
	// WarnAmbiguousSignature covers signatures whose parameter or generic
	// brackets could not be balanced; the function is skipped, not guessed.
	WarnAmbiguousSignature WarningKind = "ambiguous-signature"
)

// Warning is attached to an Outcome instead of aborting the document.
type Warning struct {
	Kind    WarningKind
	Path    Path
	Line    int // one-based
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("warning: %s (line %d): %s", w.Kind, w.Line, w.Message)
	}

	return fmt.Sprintf("warning: %s at %s:%d: %s", w.Kind, w.Path, w.Line, w.Message)
}

// Edit is a single line-range replacement. An insertion has an empty span;
// a deletion has empty Replacement. Edits for one document are produced in
// ascending, non-overlapping span order.
type Edit struct {
	Span        SourceSpan
	Replacement []string
}

// Outcome is the result of running one action over one document. Check
// populates Mismatches; fix and strip populate Text and Changed.
type Outcome struct {
	Action     Action
	Mismatches []Mismatch
	Text       string
	Changed    bool
	Warnings   []Warning
}

// Failed reports whether the outcome should signal CI failure.
func (o Outcome) Failed() bool {
	return o.Action == ActionCheck && len(o.Mismatches) > 0
}
