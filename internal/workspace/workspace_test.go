package workspace

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-lee/FalseClose/internal/config"
	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/project"
	"github.com/professor-lee/FalseClose/internal/store"
	"github.com/professor-lee/FalseClose/internal/testutil"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Project:  config.ProjectConfig{Dir: dir},
		History:  config.HistoryConfig{MaxEntries: config.DefaultMaxEntries},
		AutoSave: config.AutoSaveConfig{Enabled: true, Interval: time.Hour},
		Codegen:  config.CodegenConfig{UILibrary: config.DefaultUILibrary, MaxNodes: config.DefaultMaxNodes},
		Store: config.StoreConfig{
			Path:          filepath.Join(dir, ".pagebuilder", "revisions.db"),
			KeepRevisions: config.DefaultKeepRevisions,
		},
	}
}

// testOptions returns options around one id sequence. Init and Open in the
// same test share them so page and node ids never repeat.
func testOptions() []Option {
	return []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(testutil.NewFixedClock(testutil.Epoch, time.Second)),
		WithIDGenerator(testutil.NewSequenceIDs("id-")),
	}
}

// openNew initializes a project in a temp dir and opens it.
func openNew(t *testing.T, mutate func(*config.Config)) (*Workspace, string) {
	t.Helper()
	opts := testOptions()
	dir := t.TempDir()
	_, err := Init(dir, "demo", "", opts...)
	require.NoError(t, err)

	cfg := testConfig(dir)
	if mutate != nil {
		mutate(cfg)
	}
	w, err := Open(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w, dir
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	m, err := Init(dir, "", "", testOptions()...)
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(dir), m.ProjectName)
	assert.Equal(t, "element-plus", m.UILibrary)
	require.Len(t, m.Pages, 1)
	assert.Equal(t, "id-1", m.Pages[0].ID)
	assert.Equal(t, "/", m.Pages[0].Route)
	assert.True(t, project.Exists(dir))

	_, err = Init(dir, "again", "", testOptions()...)
	assert.ErrorIs(t, err, ErrProjectExists)
}

func TestOpenMissingProject(t *testing.T) {
	_, err := Open(context.Background(), testConfig(t.TempDir()), testOptions()...)
	assert.ErrorIs(t, err, project.ErrNoProject)
}

func TestOpenRecordsRevision(t *testing.T) {
	w, _ := openNew(t, nil)

	revs, err := w.Store().ListRevisions(context.Background())
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, store.OriginOpen, revs[0].Origin)
	assert.True(t, w.AutoSaveEnabled())
	assert.False(t, w.Editor().Dirty())
}

func TestEditFlushAndReopen(t *testing.T) {
	w, dir := openNew(t, nil)
	ed := w.Editor()
	home := ed.CurrentPageID()

	id, err := ed.CreateFromRegistry(home, "Button", "", -1)
	require.NoError(t, err)
	require.NoError(t, ed.SetProp(home, id, "label", model.String("Buy")))
	require.True(t, ed.Dirty())

	require.NoError(t, w.Flush(context.Background()))
	assert.False(t, ed.Dirty())

	saved, err := project.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Buy", saved.Pages[0].Node(id).Props.GetString("label"))

	segments, err := w.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.True(t, segments[0].OK(), "%+v", segments[0])
	require.NoError(t, w.Close())

	// A second session starts from the saved state.
	again, err := Open(context.Background(), testConfig(dir), testOptions()...)
	require.NoError(t, err)
	defer again.Close()
	n, ok := again.Editor().Node(home, id)
	require.True(t, ok)
	assert.Equal(t, "Button", n.Type)
	assert.False(t, again.Editor().CanUndo(), "history does not survive a reopen")
}

func TestAutosaveFiresAfterInterval(t *testing.T) {
	w, dir := openNew(t, func(cfg *config.Config) {
		cfg.AutoSave.Interval = 20 * time.Millisecond
	})
	ed := w.Editor()

	_, err := ed.CreateNode(ed.CurrentPageID(), "Text", model.NewMap(model.P("text", model.String("saved"))), model.Map{}, "", -1)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return !ed.Dirty() }, 2*time.Second, 10*time.Millisecond)
	saved, err := project.Load(dir)
	require.NoError(t, err)
	assert.Len(t, saved.Pages[0].Nodes, 1)
}

func TestAutosaveDisabledSavesOnClose(t *testing.T) {
	opts := testOptions()
	dir := t.TempDir()
	_, err := Init(dir, "demo", "", opts...)
	require.NoError(t, err)
	cfg := testConfig(dir)
	cfg.AutoSave.Enabled = false

	w, err := Open(context.Background(), cfg, opts...)
	require.NoError(t, err)
	assert.False(t, w.AutoSaveEnabled())

	_, err = w.Editor().CreatePage("About", "/about")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	saved, err := project.Load(dir)
	require.NoError(t, err)
	assert.Len(t, saved.Pages, 2)
}

func TestInitAndOpenShareIDSequence(t *testing.T) {
	w, _ := openNew(t, nil)
	ed := w.Editor()
	home := ed.CurrentPageID()

	about, err := ed.CreatePage("About", "/about")
	require.NoError(t, err)
	node, err := ed.CreateNode(home, "Text", model.Map{}, model.Map{}, "", -1)
	require.NoError(t, err)

	assert.NotEqual(t, home, about)
	assert.NotEqual(t, home, node)
	assert.NotEqual(t, about, node)
}

func TestGenerateEnforcesMaxNodes(t *testing.T) {
	w, _ := openNew(t, func(cfg *config.Config) {
		cfg.Codegen.MaxNodes = 2
	})
	ed := w.Editor()
	home := ed.CurrentPageID()

	for range 2 {
		_, err := ed.CreateNode(home, "Text", model.Map{}, model.Map{}, "", -1)
		require.NoError(t, err)
	}
	out, err := w.Generate(home)
	require.NoError(t, err)
	assert.Contains(t, out.Markup, "page-container")

	_, err = ed.CreateNode(home, "Text", model.Map{}, model.Map{}, "", -1)
	require.NoError(t, err)
	_, err = w.Generate(home)
	assert.ErrorIs(t, err, ErrPageTooLarge)

	_, err = w.Generate("ghost")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestProjectComponentCatalog(t *testing.T) {
	opts := testOptions()
	dir := t.TempDir()
	_, err := Init(dir, "demo", "", opts...)
	require.NoError(t, err)
	catalog := filepath.Join(dir, "components.cue")
	require.NoError(t, os.WriteFile(catalog, []byte(`
components: Hero: {
	displayName:     "Hero"
	category:        "container"
	canHaveChildren: true
	defaultProps: {title: "Welcome"}
}
`), 0o644))

	cfg := testConfig(dir)
	cfg.Project.Components = catalog
	w, err := Open(context.Background(), cfg, testOptions()...)
	require.NoError(t, err)
	defer w.Close()

	hero, ok := w.Registry().Lookup("Hero")
	require.True(t, ok)
	assert.Equal(t, "Welcome", hero.DefaultProps.GetString("title"))
	_, ok = w.Registry().Lookup("Button")
	assert.True(t, ok, "builtin catalog is kept")

	ed := w.Editor()
	id, err := ed.CreateFromRegistry(ed.CurrentPageID(), "Hero", "", -1)
	require.NoError(t, err)
	_, err = ed.CreateNode(ed.CurrentPageID(), "Text", model.Map{}, model.Map{}, id, 0)
	require.NoError(t, err, "Hero accepts children")
}
