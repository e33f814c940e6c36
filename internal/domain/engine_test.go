package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

func validConfig(t *testing.T, cfg *m.Config) *m.Config {
	t.Helper()
	require.NoError(t, cfg.Validate())

	return cfg
}

func TestRun_CheckReportsMissing(t *testing.T) {
	src := `pub fn add(lhs: i32, rhs: i32) -> i32 {
    lhs + rhs
}
`

	outcome, err := Run(src, m.ActionCheck, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.True(t, outcome.Failed())
	require.Len(t, outcome.Mismatches, 1)

	mismatch := outcome.Mismatches[0]
	require.Equal(t, m.MismatchMissing, mismatch.Kind)
	require.Equal(t, 1, mismatch.Line)
	require.Equal(t, 0, mismatch.Col)
	require.Equal(t, "add", mismatch.Function)
	require.Equal(t, "Missing instrumentation at 1:0.", mismatch.String())
}

func TestRun_CheckReportsUnwantedOnTestFunction(t *testing.T) {
	src := `#[test]
#[tracing::instrument(level = "trace", skip())]
fn sample() {
}
`

	outcome, err := Run(src, m.ActionCheck, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.Len(t, outcome.Mismatches, 1)

	mismatch := outcome.Mismatches[0]
	require.Equal(t, m.MismatchUnwanted, mismatch.Kind)
	require.Equal(t, 2, mismatch.Line)
}

func TestRun_CheckAcceptsInstrumentedFile(t *testing.T) {
	src := `#[tracing::instrument(level = "trace", skip(lhs, rhs))]
pub fn add(lhs: i32, rhs: i32) -> i32 {
    lhs + rhs
}
`

	outcome, err := Run(src, m.ActionCheck, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.False(t, outcome.Failed())
	require.Empty(t, outcome.Mismatches)
}

func TestRun_CheckIgnoresExemptFunctions(t *testing.T) {
	src := `const fn table() -> u8 {
    7
}

#[tracefix_skip]
fn manual(value: u8) -> u8 {
    value
}

#[cfg(test)]
mod tests {
    fn helper() {
    }
}
`

	outcome, err := Run(src, m.ActionCheck, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.Empty(t, outcome.Mismatches)
}

func TestRun_FixInsertsAttribute(t *testing.T) {
	src := `pub fn add(lhs: i32, rhs: i32) -> i32 {
    lhs + rhs
}
`

	want := `#[tracing::instrument(level = "trace", skip(lhs, rhs))]
pub fn add(lhs: i32, rhs: i32) -> i32 {
    lhs + rhs
}
`

	outcome, err := Run(src, m.ActionFix, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.True(t, outcome.Changed)
	require.Equal(t, want, outcome.Text)
}

func TestRun_FixMatchesMethodIndentation(t *testing.T) {
	src := `impl Counter {
    fn bump(&mut self, amount: u64) -> u64 {
        self.total += amount;
        self.total
    }
}
`

	outcome, err := Run(src, m.ActionFix, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.Contains(t, outcome.Text,
		"    #[tracing::instrument(level = \"trace\", skip(amount))]\n    fn bump")
}

func TestRun_FixRendersEmptySkipList(t *testing.T) {
	src := `fn main() {
}
`

	outcome, err := Run(src, m.ActionFix, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.Contains(t, outcome.Text, `#[tracing::instrument(level = "trace", skip())]`)
}

func TestRun_FixLeavesExemptFunctionsAlone(t *testing.T) {
	src := `const fn table() -> u8 {
    7
}

#[test]
fn verifies() {
}
`

	outcome, err := Run(src, m.ActionFix, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.False(t, outcome.Changed)
	require.Equal(t, src, outcome.Text)
}

func TestRun_FixIsIdempotent(t *testing.T) {
	src := `fn scale(value: i32, factor: i32) -> i32 {
    value * factor
}
`

	cfg := validConfig(t, &m.Config{})

	once, err := Run(src, m.ActionFix, cfg)
	require.NoError(t, err)
	require.True(t, once.Changed)

	twice, err := Run(once.Text, m.ActionFix, cfg)
	require.NoError(t, err)
	require.False(t, twice.Changed)
	require.Equal(t, once.Text, twice.Text)
}

func TestRun_StripRemovesSingleLineMarker(t *testing.T) {
	src := `#[tracing::instrument(level = "trace", skip(lhs, rhs))]
pub fn add(lhs: i32, rhs: i32) -> i32 {
    lhs + rhs
}
`

	want := `pub fn add(lhs: i32, rhs: i32) -> i32 {
    lhs + rhs
}
`

	outcome, err := Run(src, m.ActionStrip, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.True(t, outcome.Changed)
	require.Equal(t, want, outcome.Text)
}

func TestRun_StripRemovesMultiLineMarker(t *testing.T) {
	src := `#[derive(Debug)]
#[tracing::instrument(
    level = "trace",
    skip(value)
)]
fn scale(value: i32) -> i32 {
    value * 2
}
`

	want := `#[derive(Debug)]
fn scale(value: i32) -> i32 {
    value * 2
}
`

	outcome, err := Run(src, m.ActionStrip, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.Equal(t, want, outcome.Text)
}

func TestRun_StripAfterFixRestoresOriginal(t *testing.T) {
	src := `fn outer(flag: bool) -> bool {
    fn inner(x: bool) -> bool {
        !x
    }
    inner(flag)
}

pub fn add(lhs: i32, rhs: i32) -> i32 {
    lhs + rhs
}
`

	cfg := validConfig(t, &m.Config{})

	fixed, err := Run(src, m.ActionFix, cfg)
	require.NoError(t, err)
	require.NotEqual(t, src, fixed.Text)

	check, err := Run(fixed.Text, m.ActionCheck, cfg)
	require.NoError(t, err)
	require.Empty(t, check.Mismatches)

	stripped, err := Run(fixed.Text, m.ActionStrip, cfg)
	require.NoError(t, err)
	require.Equal(t, src, stripped.Text)
}

func TestRun_ExcludedFunctionUntouched(t *testing.T) {
	src := `fn add(lhs: i32, rhs: i32) -> i32 {
    lhs + rhs
}

fn scale(value: i32, factor: i32) -> i32 {
    value * factor
}
`

	cfg := validConfig(t, &m.Config{Exclude: []string{"add"}})

	outcome, err := Run(src, m.ActionCheck, cfg)
	require.NoError(t, err)
	require.Len(t, outcome.Mismatches, 1)
	require.Equal(t, "scale", outcome.Mismatches[0].Function)
}

func TestRun_PropagatesScanWarnings(t *testing.T) {
	src := "fn ok() {\n}\nlet s = \"oops"

	outcome, err := Run(src, m.ActionCheck, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.Len(t, outcome.Warnings, 1)
	require.Equal(t, m.WarnMalformedInput, outcome.Warnings[0].Kind)
}

func TestSynthesize_ConfiguredSkipsAreAdditive(t *testing.T) {
	rec := m.FunctionRecord{Params: []string{"lhs", "rhs"}}
	cfg := validConfig(t, &m.Config{Skip: []string{"rhs", "ctx", "auth"}})

	line := synthesize(rec, cfg, "")
	require.Equal(t, `#[tracing::instrument(level = "trace", skip(lhs, rhs, auth, ctx))]`, line)
}

func TestSynthesize_Suffix(t *testing.T) {
	rec := m.FunctionRecord{Params: []string{"value"}}
	cfg := validConfig(t, &m.Config{Suffix: "ret"})

	line := synthesize(rec, cfg, "    ")
	require.Equal(t, `    #[tracing::instrument(level = "trace", skip(value), ret)]`, line)
}

func TestSynthesize_LogInstrumentForm(t *testing.T) {
	rec := m.FunctionRecord{Params: []string{"value"}}
	cfg := validConfig(t, &m.Config{LogInstrument: true, Suffix: "ignored"})

	line := synthesize(rec, cfg, "")
	require.Equal(t, "#[log_instrument::instrument]", line)
}

func TestRun_FixWithLogInstrument(t *testing.T) {
	src := `fn main() {
}
`

	cfg := validConfig(t, &m.Config{LogInstrument: true})

	outcome, err := Run(src, m.ActionFix, cfg)
	require.NoError(t, err)
	require.Contains(t, outcome.Text, "#[log_instrument::instrument]\nfn main")
}

func TestRun_StripRecognizesLogInstrument(t *testing.T) {
	src := `#[log_instrument::instrument]
fn main() {
}
`

	outcome, err := Run(src, m.ActionStrip, validConfig(t, &m.Config{}))
	require.NoError(t, err)
	require.Equal(t, "fn main() {\n}\n", outcome.Text)
}

func TestCountFunctions(t *testing.T) {
	src := `#[tracing::instrument(level = "trace", skip())]
fn a() {
}

fn b() {
}

fn c() {
}
`

	total, instrumented := countFunctions(src)
	require.Equal(t, 3, total)
	require.Equal(t, 1, instrumented)
}
