package rustscan

import (
	"fmt"
	"strings"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

// fnIntro lists the identifiers that can open a function signature.
var fnIntro = map[string]bool{
	"pub":     true,
	"default": true,
	"const":   true,
	"async":   true,
	"unsafe":  true,
	"extern":  true,
	"fn":      true,
}

const (
	blockPlain = iota
	blockMod
	blockImpl
	blockTrait
	blockFn
)

type blockCtx struct {
	kind      int
	name      string
	openDepth int
	cfgTest   bool
	recIndex  int
}

type locator struct {
	toks  []Token
	i     int
	depth int

	blocks  []blockCtx
	pending []attribute

	recs  []m.FunctionRecord
	warns []m.Warning
}

// Locate scans src and returns every function definition in source order.
// Signatures that cannot be balanced are skipped with a warning instead of
// guessed at; an unclosed body at end of input drops that record.
func Locate(src string) ([]m.FunctionRecord, []m.Warning) {
	toks, warns := Scan(src)

	l := &locator{toks: toks, warns: warns}
	l.run()

	return l.recs, l.warns
}

func (l *locator) run() {
	for l.i < len(l.toks) {
		t := l.toks[l.i]

		switch {
		case t.Kind == TokenPunct && t.Text == "#":
			l.scanAttribute()
		case t.Kind == TokenPunct && t.Text == "{":
			l.openBlock(blockCtx{kind: blockPlain})
			l.pending = nil
			l.i++
		case t.Kind == TokenPunct && t.Text == "}":
			l.closeBlock(t)
			l.pending = nil
			l.i++
		case t.Kind == TokenIdent && t.Text == "mod":
			l.scanMod()
		case t.Kind == TokenIdent && (t.Text == "impl" || t.Text == "trait"):
			l.scanImplOrTrait(t.Text)
		case t.Kind == TokenIdent && fnIntro[t.Text]:
			if !l.scanFunction() {
				// Not a function (pub struct, const item, extern crate...).
				// Keep pending attributes: a mod or impl keyword may still
				// claim them on the next iteration.
				l.i++
			}
		default:
			l.pending = nil
			l.i++
		}
	}

	l.finishAtEOF()
}

// finishAtEOF drops functions whose body never closed; the trailing region
// is opaque per the malformed-input policy, earlier records stand.
func (l *locator) finishAtEOF() {
	dropped := false

	for _, b := range l.blocks {
		if b.kind != blockFn {
			continue
		}

		rec := l.recs[b.recIndex]
		l.warns = append(l.warns, m.Warning{
			Kind:    m.WarnMalformedInput,
			Line:    rec.Signature.Start + 1,
			Message: fmt.Sprintf("body of %s not closed at end of input; function skipped", rec.Name),
		})

		dropped = true
	}

	if !dropped {
		return
	}

	kept := l.recs[:0]

	for _, rec := range l.recs {
		if rec.Body.End > 0 {
			kept = append(kept, rec)
		}
	}

	l.recs = kept
}

func (l *locator) openBlock(ctx blockCtx) {
	l.depth++
	ctx.openDepth = l.depth
	l.blocks = append(l.blocks, ctx)
}

func (l *locator) closeBlock(t Token) {
	if len(l.blocks) == 0 {
		l.warns = append(l.warns, m.Warning{
			Kind:    m.WarnMalformedInput,
			Line:    t.Line + 1,
			Message: "unmatched closing brace",
		})

		return
	}

	top := l.blocks[len(l.blocks)-1]
	l.blocks = l.blocks[:len(l.blocks)-1]

	if top.kind == blockFn {
		l.recs[top.recIndex].Body.End = t.Line + 1
	}

	l.depth--
}

// scanAttribute consumes #[...] or #![...]. Outer attributes accumulate on
// the pending list until a function or module claims them.
func (l *locator) scanAttribute() {
	hash := l.toks[l.i]
	j := l.i + 1

	inner := false
	if j < len(l.toks) && l.toks[j].Kind == TokenPunct && l.toks[j].Text == "!" {
		inner = true
		j++
	}

	if j >= len(l.toks) || l.toks[j].Kind != TokenPunct || l.toks[j].Text != "[" {
		// Stray '#'; not attribute syntax.
		l.pending = nil
		l.i = j

		return
	}

	j++

	var (
		path     []string
		args     []Token
		pathDone bool
		endLine  = hash.Line
	)

	brackets := 1
	for j < len(l.toks) {
		t := l.toks[j]

		if t.Kind == TokenPunct {
			switch t.Text {
			case "[":
				brackets++
			case "]":
				brackets--

				if brackets == 0 {
					endLine = t.Line
					j++
				}
			}

			if brackets == 0 {
				break
			}
		}

		switch {
		case !pathDone && t.Kind == TokenIdent:
			path = append(path, t.Text)
		case !pathDone && t.Kind == TokenPunct && t.Text == "::":
			// Path continues.
		default:
			pathDone = true

			args = append(args, t)
		}

		j++
	}

	if brackets > 0 {
		l.warns = append(l.warns, m.Warning{
			Kind:    m.WarnMalformedInput,
			Line:    hash.Line + 1,
			Message: "unterminated attribute",
		})
		l.pending = nil
		l.i = len(l.toks)

		return
	}

	if !inner {
		l.pending = append(l.pending, attribute{
			span:  m.SourceSpan{Start: hash.Line, End: endLine + 1, Col: hash.Col},
			path:  path,
			args:  args,
			inner: inner,
		})
	}

	l.i = j
}

// scanMod consumes `mod name { ... ` up to and including the opening brace,
// or the whole declaration when it ends in a semicolon.
func (l *locator) scanMod() {
	attrs := l.pending
	l.pending = nil

	j := l.i + 1

	name := ""
	if j < len(l.toks) && l.toks[j].Kind == TokenIdent {
		name = l.toks[j].Text
		j++
	}

	if j >= len(l.toks) {
		l.i = j
		return
	}

	switch l.toks[j].Text {
	case ";":
		l.i = j + 1
	case "{":
		l.openBlock(blockCtx{kind: blockMod, name: name, cfgTest: hasCfgTest(attrs)})
		l.i = j + 1
	default:
		l.i = j
	}
}

// scanImplOrTrait consumes the header of an impl or trait item up to its
// opening brace, balancing generics on the way. The last plain identifier
// seen becomes the context name for qualified diagnostics.
func (l *locator) scanImplOrTrait(keyword string) {
	attrs := l.pending
	l.pending = nil

	kind := blockImpl
	if keyword == "trait" {
		kind = blockTrait
	}

	j := l.i + 1

	var angle, paren, bracket int

	name := ""

	for j < len(l.toks) {
		t := l.toks[j]

		if t.Kind == TokenIdent && angle == 0 && paren == 0 && bracket == 0 && t.Text != "for" && t.Text != "where" {
			name = t.Text
		}

		if t.Kind == TokenPunct {
			switch t.Text {
			case "<":
				angle++
			case ">":
				if angle > 0 {
					angle--
				}
			case "(":
				paren++
			case ")":
				paren--
			case "[":
				bracket++
			case "]":
				bracket--
			case ";":
				if angle == 0 && paren == 0 && bracket == 0 {
					l.i = j + 1
					return
				}
			case "{":
				if angle == 0 && paren == 0 && bracket == 0 {
					l.openBlock(blockCtx{kind: kind, name: name, cfgTest: hasCfgTest(attrs)})
					l.i = j + 1

					return
				}
			}
		}

		j++
	}

	l.i = j
}

// scanFunction attempts to parse a function signature starting at the
// current token. It returns false when the tokens turn out not to be a
// function, leaving the position untouched.
func (l *locator) scanFunction() bool {
	j := l.i
	sigTok := l.toks[j]

	isConst := false

modifiers:
	for j < len(l.toks) {
		t := l.toks[j]
		if t.Kind != TokenIdent {
			return false
		}

		switch t.Text {
		case "fn":
			j++
			break modifiers
		case "const":
			isConst = true
			j++
		case "default", "async", "unsafe", "extern":
			j++
		case "pub":
			j++

			if j < len(l.toks) && l.toks[j].Kind == TokenPunct && l.toks[j].Text == "(" {
				j = l.skipBalancedParens(j)
			}
		default:
			return false
		}
	}

	if j >= len(l.toks) || l.toks[j].Kind != TokenIdent {
		// `fn` in type position has no name.
		return false
	}

	name := l.toks[j].Text
	j++

	if j < len(l.toks) && l.toks[j].Kind == TokenPunct && l.toks[j].Text == "<" {
		var ok bool

		j, ok = l.skipGenerics(j)
		if !ok {
			l.warnAmbiguous(sigTok, name, "unbalanced generic brackets")
			l.pending = nil
			l.i = j

			return true
		}
	}

	if j >= len(l.toks) || l.toks[j].Kind != TokenPunct || l.toks[j].Text != "(" {
		return false
	}

	params, j, ok := l.scanParams(j)
	if !ok {
		l.warnAmbiguous(sigTok, name, "unbalanced parameter list")
		l.pending = nil
		l.i = j

		return true
	}

	bodyTok, j, hasBody := l.scanToBody(j)
	if !hasBody {
		// Declaration without a body (trait method, extern block): no record.
		l.pending = nil
		l.i = j

		return true
	}

	attrs := l.pending
	l.pending = nil

	rec := m.FunctionRecord{
		Name:           l.qualify(name),
		Params:         params,
		Signature:      m.SourceSpan{Start: sigTok.Line, End: bodyTok.Line + 1, Col: sigTok.Col},
		Body:           m.SourceSpan{Start: bodyTok.Line, Col: bodyTok.Col},
		InTestModule:   l.inTestModule(),
		IsTestFunction: hasTestAttribute(attrs),
		IsConst:        isConst,
		SkipExempt:     hasSkipAttribute(attrs),
		Depth:          l.depth,
	}

	if marker := findMarker(attrs); marker != nil {
		span := marker.span
		rec.Marker = &span
	}

	l.recs = append(l.recs, rec)
	l.openBlock(blockCtx{kind: blockFn, name: name, recIndex: len(l.recs) - 1})
	l.i = j + 1

	return true
}

func (l *locator) skipBalancedParens(open int) int {
	depth := 0

	for j := open; j < len(l.toks); j++ {
		t := l.toks[j]
		if t.Kind != TokenPunct {
			continue
		}

		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--

			if depth == 0 {
				return j + 1
			}
		}
	}

	return len(l.toks)
}

// skipGenerics balances the <...> group starting at open. Arrow and
// shift-like operators never reach here as bare '<'/'>' thanks to the
// scanner, so plain counting suffices. A semicolon or opening brace before
// the group closes marks the signature ambiguous.
func (l *locator) skipGenerics(open int) (int, bool) {
	angle := 0

	for j := open; j < len(l.toks); j++ {
		t := l.toks[j]
		if t.Kind != TokenPunct {
			continue
		}

		switch t.Text {
		case "<":
			angle++
		case ">":
			angle--

			if angle == 0 {
				return j + 1, true
			}
		case ";", "{":
			return j, false
		}
	}

	return len(l.toks), false
}

// scanParams consumes the balanced parameter list starting at the opening
// paren and extracts the simple parameter names. Only tokens at the top
// nesting level contribute to names, so commas inside Vec<K, V>, tuples or
// array types never split a parameter.
func (l *locator) scanParams(open int) ([]string, int, bool) {
	var (
		params  []string
		segment []Token
	)

	paren, angle, bracket, brace := 0, 0, 0, 0

	flush := func() {
		if name := paramName(segment); name != "" {
			params = append(params, name)
		}

		segment = segment[:0]
	}

	for j := open; j < len(l.toks); j++ {
		t := l.toks[j]

		topLevel := paren == 1 && angle == 0 && bracket == 0 && brace == 0

		if t.Kind == TokenPunct {
			switch t.Text {
			case "(":
				if topLevel {
					segment = append(segment, t)
				}

				paren++

				continue
			case ")":
				paren--

				if paren == 0 {
					flush()
					return params, j + 1, true
				}

				continue
			case "<":
				angle++
				continue
			case ">":
				if angle == 0 {
					return nil, j, false
				}

				angle--

				continue
			case "[":
				bracket++
				continue
			case "]":
				bracket--
				continue
			case "{":
				brace++
				continue
			case "}":
				if brace == 0 {
					return nil, j, false
				}

				brace--

				continue
			case ",":
				if topLevel {
					flush()
					continue
				}

				continue
			case ";":
				if topLevel {
					return nil, j, false
				}

				continue
			}
		}

		if topLevel {
			segment = append(segment, t)
		}
	}

	return nil, len(l.toks), false
}

// paramName extracts the binding name from the top-level tokens of one
// parameter segment. Receivers and patterns without a single identifier
// binding yield "".
func paramName(segment []Token) string {
	var before []Token

	for _, t := range segment {
		if t.Kind == TokenPunct && t.Text == ":" {
			break
		}

		before = append(before, t)
	}

	hasColon := len(before) < len(segment)

	var idents []Token

	for _, t := range before {
		switch {
		case t.Kind == TokenLifetime:
		case t.Kind == TokenPunct && (t.Text == "&" || t.Text == "*"):
		case t.Kind == TokenIdent && (t.Text == "mut" || t.Text == "ref"):
		default:
			idents = append(idents, t)
		}
	}

	if len(idents) != 1 || idents[0].Kind != TokenIdent {
		return ""
	}

	name := idents[0].Text
	if name == "self" || name == "_" {
		return ""
	}

	if !hasColon {
		// Bare identifier without a type only occurs for receivers.
		return ""
	}

	return name
}

// scanToBody walks the return type and where clause after the parameter
// list until the body's opening brace or a terminating semicolon. Braces
// nested inside const expressions (e.g. -> [u8; { N }]) are balanced inline.
func (l *locator) scanToBody(start int) (Token, int, bool) {
	var angle, paren, bracket int

	for j := start; j < len(l.toks); j++ {
		t := l.toks[j]
		if t.Kind != TokenPunct {
			continue
		}

		switch t.Text {
		case "<":
			angle++
		case ">":
			if angle > 0 {
				angle--
			}
		case "(":
			paren++
		case ")":
			paren--
		case "[":
			bracket++
		case "]":
			bracket--
		case ";":
			if angle == 0 && paren == 0 && bracket == 0 {
				return Token{}, j + 1, false
			}
		case "{":
			if angle == 0 && paren == 0 && bracket == 0 {
				return t, j, true
			}

			j = l.skipBalancedBraces(j)
		case "}":
			if angle == 0 && paren == 0 && bracket == 0 {
				return Token{}, j, false
			}
		}
	}

	return Token{}, len(l.toks), false
}

func (l *locator) skipBalancedBraces(open int) int {
	depth := 0

	for j := open; j < len(l.toks); j++ {
		t := l.toks[j]
		if t.Kind != TokenPunct {
			continue
		}

		switch t.Text {
		case "{":
			depth++
		case "}":
			depth--

			if depth == 0 {
				return j
			}
		}
	}

	return len(l.toks) - 1
}

func (l *locator) inTestModule() bool {
	for _, b := range l.blocks {
		if b.cfgTest {
			return true
		}
	}

	return false
}

func (l *locator) qualify(name string) string {
	var parts []string

	for _, b := range l.blocks {
		if (b.kind == blockMod || b.kind == blockImpl || b.kind == blockTrait) && b.name != "" {
			parts = append(parts, b.name)
		}
	}

	parts = append(parts, name)

	return strings.Join(parts, "::")
}

func (l *locator) warnAmbiguous(sigTok Token, name string, reason string) {
	l.warns = append(l.warns, m.Warning{
		Kind:    m.WarnAmbiguousSignature,
		Line:    sigTok.Line + 1,
		Message: fmt.Sprintf("cannot resolve signature of %s: %s; function skipped", name, reason),
	})
}
