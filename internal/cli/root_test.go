package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// newProject creates a project in a fresh directory with autosave off, so
// saves only happen when a command asks for one.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pagebuilder.yaml"), []byte("autosave:\n  enabled: false\n"), 0o644))
	_, err := runCLI(t, "init", "-C", dir, "--name", "Site")
	require.NoError(t, err)
	return dir
}

type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func decodeResponse(t *testing.T, out string, data any) jsonResponse {
	t.Helper()
	var resp jsonResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "pagebuilder", cmd.Use)
	assert.Contains(t, cmd.Long, "component trees")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"init", "generate", "validate", "pages", "components", "scenario", "apply", "replay", "watch"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dirFlag := cmd.PersistentFlags().Lookup("project-dir")
	require.NotNil(t, dirFlag)
	assert.Equal(t, "C", dirFlag.Shorthand)
	assert.Equal(t, ".", dirFlag.DefValue)
}

func TestConfigFlags(t *testing.T) {
	cmd := NewRootCommand()
	tests := map[string]string{
		"max-history":       "50",
		"autosave":          "true",
		"autosave-interval": "500ms",
		"ui-library":        "element-plus",
		"max-nodes":         "5000",
		"store":             ".pagebuilder/revisions.db",
		"components":        "",
	}
	for name, def := range tests {
		t.Run(name, func(t *testing.T) {
			f := cmd.PersistentFlags().Lookup(name)
			require.NotNil(t, f)
			assert.Equal(t, def, f.DefValue)
		})
	}
}

func TestWatchRequiresOut(t *testing.T) {
	cmd := NewRootCommand()
	watchCmd, _, err := cmd.Find([]string{"watch"})
	require.NoError(t, err)

	outFlag := watchCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)

	_, err = runCLI(t, "watch", "-C", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out")
}

func TestInvalidFormat(t *testing.T) {
	_, err := runCLI(t, "pages", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidConfig(t *testing.T) {
	_, err := runCLI(t, "pages", "-C", t.TempDir(), "--max-history", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "history.max_entries")
}
