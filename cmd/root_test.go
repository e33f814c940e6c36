package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmd_ShowsHelpWithoutArgs(t *testing.T) {
	out := &bytes.Buffer{}

	cmd := baseRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "tracefix")
}

func TestParsePaths(t *testing.T) {
	require.Empty(t, parsePaths(nil))

	paths := parsePaths([]string{"src", "tests/suite"})
	require.Len(t, paths, 2)
	require.EqualValues(t, "src", paths[0])
	require.EqualValues(t, "tests/suite", paths[1])
}
