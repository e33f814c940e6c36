package model

// FunctionRecord describes one function definition discovered in a document.
// Spans satisfy: Signature precedes Body, and Marker (when present)
// immediately precedes Signature with no intervening non-blank,
// non-attribute lines.
type FunctionRecord struct {
	// Name is the best-effort qualified name (enclosing mod/impl segments
	// joined with "::"), used for diagnostics and ignore matching.
	Name string

	// Params holds the simple parameter names in source order. Receivers
	// (self in any form) and irrefutable patterns without a single binding
	// are omitted.
	Params []string

	Signature SourceSpan
	Body      SourceSpan

	// Marker is the span of an existing instrument attribute, nil if none.
	Marker *SourceSpan

	InTestModule   bool
	IsTestFunction bool
	IsConst        bool

	// SkipExempt is set when the function carries the tracefix_skip
	// attribute and must never be touched by fix.
	SkipExempt bool

	// Depth is the brace nesting depth of the signature's first token.
	Depth int
}

// Exempt reports whether fix must not insert a marker on this function.
func (r FunctionRecord) Exempt() bool {
	return r.InTestModule || r.IsTestFunction || r.IsConst || r.SkipExempt
}

// TestExempt reports whether the function is test-gated; an existing marker
// on such a function is unwanted.
func (r FunctionRecord) TestExempt() bool {
	return r.InTestModule || r.IsTestFunction
}
