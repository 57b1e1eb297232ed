package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-lee/FalseClose/internal/model"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/navigate_handler.yaml")
	require.NoError(t, err)

	assert.Equal(t, "navigate_handler", s.Name)
	require.Len(t, s.Steps, 1)
	st := s.Steps[0]
	assert.Equal(t, OpCreate, st.Op)
	assert.Equal(t, "About", st.Props.GetString("label"))
	b, ok := st.Events.Get("click")
	require.True(t, ok)
	assert.Equal(t, model.ActionNavigate, b.Action)
	assert.Equal(t, "/about", b.Params.GetString("path"))
	assert.Len(t, s.Assertions, 4)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nsteps:\n  - op: undo\nassertion: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: d\nsteps:\n  - op: undo\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nsteps:\n  - op: undo\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: x\ndescription: d\n",
			want: "steps list is required",
		},
		{
			name: "unknown op",
			yaml: "name: x\ndescription: d\nsteps:\n  - op: paste\n",
			want: `unknown op "paste"`,
		},
		{
			name: "unknown error code",
			yaml: "name: x\ndescription: d\nsteps:\n  - {op: undo, expect_error: BOOM}\n",
			want: `unknown expect_error code "BOOM"`,
		},
		{
			name: "delete without node",
			yaml: "name: x\ndescription: d\nsteps:\n  - op: delete\n",
			want: "node is required",
		},
		{
			name: "alias on undo",
			yaml: "name: x\ndescription: d\nsteps:\n  - {op: undo, as: u}\n",
			want: "as is only valid",
		},
		{
			name: "defaults with props",
			yaml: "name: x\ndescription: d\nsteps:\n  - {op: create, type: Button, defaults: true, props: {label: x}}\n",
			want: "defaults cannot be combined",
		},
		{
			name: "duplicate page",
			yaml: "name: x\ndescription: d\nproject:\n  pages: [{id: a}, {id: a}]\nsteps:\n  - op: undo\n",
			want: `duplicate id "a"`,
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: d\nsteps:\n  - op: undo\nassertions:\n  - type: final_state\n",
			want: `unknown type "final_state"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - {op: create, type: Text, props: {text: hi}, as: t}
  - {op: set_style, node: t, key: color, value: red}
`), 0o644))

	script, err := LoadScript(path)
	require.NoError(t, err)
	require.Len(t, script.Steps, 2)
	assert.Equal(t, "red", script.Steps[1].Value)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("steps: []\n"), 0o644))
	_, err = LoadScript(empty)
	assert.ErrorContains(t, err, "steps list is required")
}
