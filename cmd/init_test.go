package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInitCmd_WritesConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	mockWorkflow := &workflowMock{}
	cmd, _ := newTestRootCmd(t, mockWorkflow, newInitCmd())

	cmd.SetArgs([]string{"init"})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(configFileName)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(content, &parsed))
	require.Contains(t, parsed, "instrument")
	require.Contains(t, parsed, "run")
}
