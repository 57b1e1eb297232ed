package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-lee/FalseClose/internal/model"
)

func sampleManifest() *model.Manifest {
	return &model.Manifest{
		ProjectName:      "shop",
		UILibrary:        "element-plus",
		AutoSave:         true,
		AutoSaveInterval: 500,
		Pages: []*model.Page{{
			ID:    "p1",
			Name:  "Home",
			Route: "/",
			Nodes: []*model.Node{
				{ID: "a", Type: "Container", Children: []string{"b"}},
				{ID: "b", Type: "Text", ParentID: "a", Props: model.NewMap(model.P("text", model.String("hi")))},
			},
			RootOrder: []string{"a"},
		}},
		GlobalStyles: model.NewMap(model.P("fontSize", model.String("14px"))),
		CanvasSize:   model.DefaultCanvasSize,
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Save(dir, sampleManifest(), now))
	assert.True(t, Exists(dir))

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, model.MetaVersion, m.MetaVersion)
	assert.Equal(t, "shop", m.ProjectName)
	assert.True(t, m.LastSaved.Equal(now))
	require.Len(t, m.Pages, 1)
	assert.True(t, sampleManifest().Pages[0].Equal(m.Pages[0]))
	assert.Equal(t, "14px", m.GlobalStyles.GetString("fontSize"))

	raw, err := os.ReadFile(ManifestPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"parentId": null`)

	entries, err := os.ReadDir(filepath.Join(dir, Dir))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNoProject)
}

func TestLoadLegacyManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "legacy-site")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, Dir), 0o755))
	legacy := `{
  "metaVersion": 1,
  "uiLibrary": "element-plus",
  "globalStyles": "",
  "pages": [{
    "id": "p1", "name": "Home", "route": "/",
    "componentTree": [
      {"id": "a", "type": "Button", "parentId": null, "props": {"label": "Go"},
       "events": {"click": {"action": "navigateTo", "params": {"path": "/x"}}}},
      {"id": "b", "type": "Text", "parentId": null, "events": []}
    ]
  }]
}`
	require.NoError(t, os.WriteFile(ManifestPath(dir), []byte(legacy), 0o644))

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "legacy-site", m.ProjectName)
	assert.True(t, m.AutoSave)
	assert.Equal(t, 500, m.AutoSaveInterval)
	assert.Equal(t, 0, m.GlobalStyles.Len())

	p := m.Pages[0]
	assert.Equal(t, []string{"a", "b"}, p.RootOrder)
	b, ok := p.Node("a").Events.Get("click")
	require.True(t, ok)
	assert.Equal(t, model.ActionNavigate, b.Action)
}

func TestLoadRawKeepsPagesAsWritten(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, Dir), 0o755))
	broken := `{
  "metaVersion": 2,
  "pages": [{
    "id": "p1", "name": "Home", "route": "/",
    "componentTree": [{"id": "a", "type": "Text", "parentId": null}],
    "rootOrder": ["ghost", "a", "a"]
  }]
}`
	require.NoError(t, os.WriteFile(ManifestPath(dir), []byte(broken), 0o644))

	raw, err := LoadRaw(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost", "a", "a"}, raw.Pages[0].RootOrder)

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, m.Pages[0].RootOrder)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.Error(t, err)
}

func TestNameFromDir(t *testing.T) {
	assert.Equal(t, "site", NameFromDir("/tmp/site/"))
}
