// Package model defines the data structures shared by the tracefix pipeline.
package model

// Path represents a file system path.
type Path string

// Source identifies one Rust document handed to the pipeline. ShortPath is
// the path relative to the walk root and is what reports print.
type Source struct {
	FullPath  Path
	ShortPath Path
}

// SourceSpan is a half-open line range [Start, End) into the original text.
// Lines are zero-based; Col is the byte column of the span's first token.
// Spans are immutable once computed.
type SourceSpan struct {
	Start int
	End   int
	Col   int
}

// Len returns the number of lines covered by the span.
func (s SourceSpan) Len() int {
	return s.End - s.Start
}

// Contains reports whether the zero-based line falls inside the span.
func (s SourceSpan) Contains(line int) bool {
	return line >= s.Start && line < s.End
}

// Overlaps reports whether two spans share at least one line. Two empty
// spans at the same line (pure insertions) do not overlap.
func (s SourceSpan) Overlaps(other SourceSpan) bool {
	if s.Len() == 0 || other.Len() == 0 {
		return false
	}

	return s.Start < other.End && other.Start < s.End
}
