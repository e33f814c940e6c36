// Package rustscan locates function definitions in Rust source using a
// lightweight lexical pass. It is not a Rust frontend: it tracks just enough
// structure (strings, comments, bracket nesting, attributes) to find function
// boundaries without misreading suppressed regions as code.
package rustscan

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

// TokenKind discriminates the lexical units the locator consumes.
type TokenKind uint8

const (
	// TokenIdent covers identifiers and keywords.
	TokenIdent TokenKind = iota
	// TokenLifetime covers 'a style lifetimes (no closing quote).
	TokenLifetime
	// TokenPunct covers punctuation. Multi-rune operators that embed angle
	// brackets or colons ("::", "->", "=>") are emitted as single tokens so
	// the locator's bracket counting stays honest.
	TokenPunct
)

// Token is one lexical unit with its position in the original text.
// Line is zero-based, Col is the zero-based byte offset within the line.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

type scanner struct {
	src  string
	pos  int
	line int
	col  int

	toks  []Token
	warns []m.Warning
}

// Scan tokenizes src. Comments, string/char literals and numbers are
// suppressed: they advance positions but emit no tokens, so brace or
// attribute look-alikes inside them are never mistaken for syntax.
// Unterminated regions produce a warning and swallow the rest of the input.
func Scan(src string) ([]Token, []m.Warning) {
	s := &scanner{src: src}
	s.run()

	return s.toks, s.warns
}

func (s *scanner) run() {
	// A shebang on the very first line is a comment.
	if len(s.src) >= 3 && s.src[0] == '#' && s.src[1] == '!' && s.src[2] == '/' {
		s.skipLine()
	}

	for s.pos < len(s.src) {
		c := s.src[s.pos]

		switch {
		case c == '\n':
			s.advance(1)
		case c == ' ' || c == '\t' || c == '\r':
			s.advance(1)
		case c == '/' && s.peekAt(1) == '/':
			s.skipLine()
		case c == '/' && s.peekAt(1) == '*':
			s.skipBlockComment()
		case c == '"':
			s.skipString()
		case c == '\'':
			s.scanQuote()
		case c == 'r' && s.rawStringAhead(1):
			s.advance(1)
			s.skipRawString()
		case c == 'b' && s.peekAt(1) == '"':
			s.advance(1)
			s.skipString()
		case c == 'b' && s.peekAt(1) == '\'':
			s.advance(1)
			s.scanQuote()
		case c == 'b' && s.peekAt(1) == 'r' && s.rawStringAhead(2):
			s.advance(2)
			s.skipRawString()
		case isDigit(rune(c)):
			s.skipNumber()
		case isIdentStart(s.runeAt(s.pos)):
			s.scanIdent()
		default:
			s.scanPunct()
		}
	}
}

func (s *scanner) scanIdent() {
	line, col, start := s.line, s.col, s.pos

	for s.pos < len(s.src) {
		if !isIdentContinue(s.runeAt(s.pos)) {
			break
		}

		s.advance(s.runeLenAt(s.pos))
	}

	s.toks = append(s.toks, Token{Kind: TokenIdent, Text: s.src[start:s.pos], Line: line, Col: col})
}

func (s *scanner) scanPunct() {
	line, col := s.line, s.col
	c := s.src[s.pos]

	// Two-rune operators the locator must not see as bare '<', '>' or ':'.
	if next := s.peekAt(1); (c == ':' && next == ':') ||
		(c == '-' && next == '>') ||
		(c == '=' && next == '>') {
		s.toks = append(s.toks, Token{Kind: TokenPunct, Text: s.src[s.pos : s.pos+2], Line: line, Col: col})
		s.advance(2)

		return
	}

	r := s.runeAt(s.pos)
	s.toks = append(s.toks, Token{Kind: TokenPunct, Text: string(r), Line: line, Col: col})
	s.advance(s.runeLenAt(s.pos))
}

// scanQuote resolves the '\'' ambiguity between char literals and lifetimes.
// A quote followed by an identifier with no closing quote is a lifetime. The
// rune after the quote is decoded whole so a multi-byte char like 'é' is not
// probed mid-sequence.
func (s *scanner) scanQuote() {
	line, col := s.line, s.col

	next, size := utf8.DecodeRuneInString(s.src[s.pos+1:])
	if size > 0 && next != '\\' && isIdentStart(next) && s.peekAt(1+size) != '\'' {
		start := s.pos
		s.advance(1)

		for s.pos < len(s.src) && isIdentContinue(s.runeAt(s.pos)) {
			s.advance(s.runeLenAt(s.pos))
		}

		s.toks = append(s.toks, Token{Kind: TokenLifetime, Text: s.src[start:s.pos], Line: line, Col: col})

		return
	}

	// Char literal: consume until the closing quote, honoring escapes.
	s.advance(1)

	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.advance(1)

			if s.pos < len(s.src) {
				s.advance(s.runeLenAt(s.pos))
			}
		case '\'':
			s.advance(1)
			return
		default:
			s.advance(s.runeLenAt(s.pos))
		}
	}

	s.warnUnterminated(line, "char literal")
}

func (s *scanner) skipString() {
	line := s.line
	s.advance(1)

	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.advance(1)

			if s.pos < len(s.src) {
				s.advance(s.runeLenAt(s.pos))
			}
		case '"':
			s.advance(1)
			return
		default:
			s.advance(s.runeLenAt(s.pos))
		}
	}

	s.warnUnterminated(line, "string literal")
}

// rawStringAhead reports whether offset points at zero or more '#' followed
// by a double quote, i.e. the tail of r"..." / r#"..."# forms.
func (s *scanner) rawStringAhead(offset int) bool {
	i := s.pos + offset
	for i < len(s.src) && s.src[i] == '#' {
		i++
	}

	return i < len(s.src) && s.src[i] == '"'
}

// skipRawString consumes  #*" ... "#*  with a matching number of hashes.
// The caller has already consumed the leading r or br.
func (s *scanner) skipRawString() {
	line := s.line

	hashes := 0
	for s.pos < len(s.src) && s.src[s.pos] == '#' {
		hashes++
		s.advance(1)
	}

	s.advance(1) // opening quote

	for s.pos < len(s.src) {
		if s.src[s.pos] == '"' {
			end := s.pos + 1

			n := 0
			for end < len(s.src) && n < hashes && s.src[end] == '#' {
				n++
				end++
			}

			if n == hashes {
				for s.pos < end {
					s.advance(1)
				}

				return
			}
		}

		s.advance(s.runeLenAt(s.pos))
	}

	s.warnUnterminated(line, "raw string literal")
}

func (s *scanner) skipBlockComment() {
	line := s.line
	s.advance(2)

	depth := 1
	for s.pos < len(s.src) && depth > 0 {
		switch {
		case s.src[s.pos] == '/' && s.peekAt(1) == '*':
			depth++
			s.advance(2)
		case s.src[s.pos] == '*' && s.peekAt(1) == '/':
			depth--
			s.advance(2)
		default:
			s.advance(s.runeLenAt(s.pos))
		}
	}

	if depth > 0 {
		s.warnUnterminated(line, "block comment")
	}
}

func (s *scanner) skipLine() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.advance(s.runeLenAt(s.pos))
	}
}

// skipNumber consumes a numeric literal, including type suffixes and a
// fractional part. A dot is only part of the number when a digit follows,
// which keeps range expressions like 1..n intact.
func (s *scanner) skipNumber() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]

		if isDigit(rune(c)) || isIdentContinue(rune(c)) {
			s.advance(1)
			continue
		}

		if c == '.' && isDigit(rune(s.peekAt(1))) {
			s.advance(1)
			continue
		}

		break
	}
}

func (s *scanner) warnUnterminated(line int, what string) {
	s.warns = append(s.warns, m.Warning{
		Kind:    m.WarnMalformedInput,
		Line:    line + 1,
		Message: fmt.Sprintf("unterminated %s; remainder of input treated as opaque", what),
	})

	s.pos = len(s.src)
}

func (s *scanner) advance(n int) {
	for i := 0; i < n && s.pos < len(s.src); i++ {
		if s.src[s.pos] == '\n' {
			s.line++
			s.col = 0
		} else {
			s.col++
		}

		s.pos++
	}
}

func (s *scanner) peekAt(offset int) byte {
	if s.pos+offset >= len(s.src) {
		return 0
	}

	return s.src[s.pos+offset]
}

func (s *scanner) runeAt(pos int) rune {
	r, _ := utf8.DecodeRuneInString(s.src[pos:])
	return r
}

// runeLenAt returns the decoded size at pos, never RuneLen(RuneError): on an
// invalid byte the two differ (1 vs 3) and advancing by 3 could step past a
// closing quote.
func (s *scanner) runeLenAt(pos int) int {
	_, size := utf8.DecodeRuneInString(s.src[pos:])
	if size < 1 {
		return 1
	}

	return size
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
