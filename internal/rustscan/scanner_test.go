package rustscan

import (
	"testing"

	"github.com/stretchr/testify/require"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

func tokenTexts(toks []Token) []string {
	texts := make([]string, 0, len(toks))
	for _, t := range toks {
		texts = append(texts, t.Text)
	}

	return texts
}

func TestScan_SuppressesStringsAndComments(t *testing.T) {
	src := `// fn commented() {}
/* fn blocked() {} */
fn real() {
    let s = "fn fake() {";
}
`

	toks, warns := Scan(src)
	require.Empty(t, warns)

	texts := tokenTexts(toks)
	require.Contains(t, texts, "real")
	require.NotContains(t, texts, "commented")
	require.NotContains(t, texts, "blocked")
	require.NotContains(t, texts, "fake")

	fnCount := 0

	for _, text := range texts {
		if text == "fn" {
			fnCount++
		}
	}

	require.Equal(t, 1, fnCount)
}

func TestScan_FusesOperatorsWithAngleBrackets(t *testing.T) {
	toks, warns := Scan("a -> b :: c => d")
	require.Empty(t, warns)

	require.Equal(t, []string{"a", "->", "b", "::", "c", "=>", "d"}, tokenTexts(toks))

	for _, tok := range toks {
		if tok.Text == "->" || tok.Text == "::" || tok.Text == "=>" {
			require.Equal(t, TokenPunct, tok.Kind)
		}
	}
}

func TestScan_LifetimeVersusCharLiteral(t *testing.T) {
	toks, warns := Scan("&'a str; 'x'; '\\n';")
	require.Empty(t, warns)

	texts := tokenTexts(toks)
	require.Contains(t, texts, "'a")
	require.NotContains(t, texts, "'x")
	require.NotContains(t, texts, "x")

	for _, tok := range toks {
		if tok.Text == "'a" {
			require.Equal(t, TokenLifetime, tok.Kind)
		}
	}
}

func TestScan_MultiByteCharLiteral(t *testing.T) {
	toks, warns := Scan("let c = 'é'; &'a str")
	require.Empty(t, warns)

	texts := tokenTexts(toks)
	require.Equal(t, []string{"let", "c", "=", ";", "&", "'a", "str"}, texts)
}

func TestScan_InvalidByteInStringLiteral(t *testing.T) {
	toks, warns := Scan("let s = \"\xff\";\nfn ok() {\n}\n")
	require.Empty(t, warns)

	require.Contains(t, tokenTexts(toks), "ok")
}

func TestScan_RawStringWithBraces(t *testing.T) {
	toks, warns := Scan(`let re = r#"fn { } "quoted""#; done`)
	require.Empty(t, warns)

	texts := tokenTexts(toks)
	require.Equal(t, []string{"let", "re", "=", ";", "done"}, texts)
}

func TestScan_NestedBlockComment(t *testing.T) {
	toks, warns := Scan("/* outer /* inner */ still comment */ after")
	require.Empty(t, warns)
	require.Equal(t, []string{"after"}, tokenTexts(toks))
}

func TestScan_ShebangLineIgnored(t *testing.T) {
	toks, warns := Scan("#!/usr/bin/env rust-script\nfn main() {}\n")
	require.Empty(t, warns)

	texts := tokenTexts(toks)
	require.Equal(t, "fn", texts[0])
}

func TestScan_UnterminatedStringWarns(t *testing.T) {
	toks, warns := Scan("fn ok() {}\nlet s = \"oops")

	require.Len(t, warns, 1)
	require.Equal(t, m.WarnMalformedInput, warns[0].Kind)
	require.Equal(t, 2, warns[0].Line)

	// Tokens before the bad literal survive.
	require.Contains(t, tokenTexts(toks), "ok")
}

func TestScan_NumbersAndRangesSuppressed(t *testing.T) {
	toks, warns := Scan("for i in 1..10f32 { }")
	require.Empty(t, warns)

	require.Equal(t, []string{"for", "i", "in", ".", ".", "{", "}"}, tokenTexts(toks))
}

func TestScan_TracksLinesAndColumns(t *testing.T) {
	toks, warns := Scan("fn a() {\n    fn b() {}\n}")
	require.Empty(t, warns)

	var inner Token

	for _, tok := range toks {
		if tok.Text == "b" {
			inner = tok
		}
	}

	require.Equal(t, 1, inner.Line)
	require.Equal(t, 7, inner.Col)
}
