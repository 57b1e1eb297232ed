// Package workspace opens a project directory for editing.
//
// A Workspace wires the pieces of an editing session together:
//
//	config ──► registry (builtin + optional project catalog)
//	       ──► editor.ProjectContext ◄── project manifest
//	                 │ bus
//	                 ├──► store.Journal   (every change, SQLite)
//	                 └──► autosave.Scheduler ──► Save ──► manifest + revision
//
// Open takes an OriginOpen revision so later journal segments have a base,
// and Close flushes pending saves before the store is closed.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/professor-lee/FalseClose/internal/autosave"
	"github.com/professor-lee/FalseClose/internal/codegen"
	"github.com/professor-lee/FalseClose/internal/config"
	"github.com/professor-lee/FalseClose/internal/editor"
	"github.com/professor-lee/FalseClose/internal/history"
	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/project"
	"github.com/professor-lee/FalseClose/internal/registry"
	"github.com/professor-lee/FalseClose/internal/store"
)

// Errors.
var (
	ErrProjectExists = errors.New("project already exists")
	ErrPageTooLarge  = errors.New("page exceeds codegen.max_nodes")
	ErrPageNotFound  = errors.New("page not found")
)

// Workspace is one open project.
type Workspace struct {
	cfg      *config.Config
	editor   *editor.ProjectContext
	registry *registry.Registry
	store    *store.Store
	journal  *store.Journal
	saver    *autosave.Scheduler
	logger   *slog.Logger
	clock    editor.Clock

	unsubscribe []func()
}

type options struct {
	logger *slog.Logger
	clock  editor.Clock
	ids    editor.IDGenerator
}

// Option configures Open and Init.
type Option func(*options)

// WithLogger sets the logger for the workspace and everything it creates.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(c editor.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithIDGenerator sets the id source for new pages and nodes.
func WithIDGenerator(g editor.IDGenerator) Option {
	return func(o *options) {
		o.ids = g
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default(), clock: editor.SystemClock{}, ids: editor.UUIDGenerator{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Init creates a new project in dir with a single "Home" page at "/".
func Init(dir, name string, uiLibrary string, opts ...Option) (*model.Manifest, error) {
	if project.Exists(dir) {
		return nil, fmt.Errorf("%s: %w", project.ManifestPath(dir), ErrProjectExists)
	}
	o := buildOptions(opts)
	if name == "" {
		name = project.NameFromDir(dir)
	}
	if uiLibrary == "" {
		uiLibrary = editor.DefaultUILibrary
	}
	m := &model.Manifest{
		MetaVersion:      model.MetaVersion,
		ProjectName:      name,
		UILibrary:        uiLibrary,
		AutoSave:         true,
		AutoSaveInterval: int(config.DefaultAutoSaveInterval.Milliseconds()),
		Pages:            []*model.Page{{ID: o.ids.Generate(), Name: "Home", Route: "/"}},
		CanvasSize:       model.DefaultCanvasSize,
	}
	if err := project.Save(dir, m, o.clock.Now()); err != nil {
		return nil, err
	}
	o.logger.Info("project created", "dir", dir, "name", name)
	return m, nil
}

// Open loads the project in cfg.Project.Dir and starts a session.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Workspace, error) {
	o := buildOptions(opts)

	reg, err := LoadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	m, err := project.Load(cfg.Project.Dir)
	if err != nil {
		return nil, err
	}
	if m.UILibrary == "" {
		m.UILibrary = cfg.Codegen.UILibrary
	}

	ed := editor.New(
		editor.WithRegistry(reg),
		editor.WithLogger(o.logger),
		editor.WithClock(o.clock),
		editor.WithIDGenerator(o.ids),
		editor.WithHistoryOptions(history.WithMaxEntries(cfg.History.MaxEntries)),
	)
	ed.Load(m)

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening revision store: %w", err)
	}
	rev, created, err := st.SaveRevision(ctx, ed.Manifest(), store.OriginOpen, o.clock.Now())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("recording open revision: %w", err)
	}

	w := &Workspace{
		cfg:      cfg,
		editor:   ed,
		registry: reg,
		store:    st,
		logger:   o.logger,
		clock:    o.clock,
	}
	w.journal = store.NewJournal(st, store.WithJournalClock(o.clock), store.WithJournalLogger(o.logger))
	w.unsubscribe = append(w.unsubscribe, ed.Subscribe(w.journal.Handle))

	if enabled, _ := ed.AutoSave(); enabled && cfg.AutoSave.Enabled {
		w.saver = autosave.New(cfg.AutoSave.Interval, ed.Dirty, func() error {
			return w.Save(context.Background())
		}, autosave.WithLogger(o.logger))
		w.unsubscribe = append(w.unsubscribe, ed.Subscribe(w.saver.Handle))
	}

	o.logger.Info("project opened",
		"dir", cfg.Project.Dir,
		"pages", len(m.Pages),
		"revision", rev.Seq,
		"new_revision", created,
		"autosave", w.saver != nil,
	)
	return w, nil
}

// LoadRegistry returns the builtin catalog merged with the project catalog
// named in cfg, if any.
func LoadRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.Project.Components == "" {
		return registry.Default()
	}
	reg, err := registry.LoadFile(cfg.Project.Components)
	if err != nil {
		return nil, fmt.Errorf("loading component catalog: %w", err)
	}
	return reg, nil
}

// Editor returns the project context edits go through.
func (w *Workspace) Editor() *editor.ProjectContext {
	return w.editor
}

// Registry returns the component catalog in use.
func (w *Workspace) Registry() *registry.Registry {
	return w.registry
}

// Store returns the revision store.
func (w *Workspace) Store() *store.Store {
	return w.store
}

// Config returns the configuration the workspace was opened with.
func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// AutoSaveEnabled reports whether a scheduler is running.
func (w *Workspace) AutoSaveEnabled() bool {
	return w.saver != nil
}

// Save writes the manifest and records a revision. A failed save leaves
// the project dirty.
func (w *Workspace) Save(ctx context.Context) error {
	m := w.editor.Checkpoint()
	if err := project.Save(w.cfg.Project.Dir, m, m.LastSaved); err != nil {
		w.editor.MarkDirty()
		return err
	}
	rev, created, err := w.store.SaveRevision(ctx, m, store.OriginSave, m.LastSaved)
	if err != nil {
		w.editor.MarkDirty()
		return fmt.Errorf("recording revision: %w", err)
	}
	if created {
		if _, err := w.store.PruneRevisions(ctx, w.cfg.Store.KeepRevisions); err != nil {
			w.logger.Warn("pruning revisions failed", "error", err)
		}
	}
	w.logger.Debug("project saved", "revision", rev.Seq, "new_revision", created)
	return nil
}

// Flush saves now if the project is dirty.
func (w *Workspace) Flush(ctx context.Context) error {
	if w.saver != nil {
		return w.saver.Flush()
	}
	if !w.editor.Dirty() {
		return nil
	}
	return w.Save(ctx)
}

// Generate renders one page, refusing pages larger than codegen.max_nodes.
func (w *Workspace) Generate(pageID string) (codegen.Output, error) {
	p, ok := w.editor.Page(pageID)
	if !ok {
		return codegen.Output{}, fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
	}
	return Generate(p, w.CodegenConfig(), w.cfg.Codegen.MaxNodes)
}

// CodegenConfig returns the generator input for the open project.
func (w *Workspace) CodegenConfig() codegen.Config {
	return codegen.Config{
		UILibrary:    w.editor.UILibrary(),
		GlobalStyles: w.editor.GlobalStyles(),
	}
}

// Generate renders p after checking it against maxNodes (0 disables the
// check).
func Generate(p *model.Page, cfg codegen.Config, maxNodes int) (codegen.Output, error) {
	if maxNodes > 0 && len(p.Nodes) > maxNodes {
		return codegen.Output{}, fmt.Errorf("page %s has %d nodes, limit %d: %w", p.ID, len(p.Nodes), maxNodes, ErrPageTooLarge)
	}
	return codegen.Generate(p, cfg), nil
}

// Verify checks that the journal reproduces the stored revisions.
func (w *Workspace) Verify(ctx context.Context) ([]store.Segment, error) {
	return w.store.Verify(ctx)
}

// Close flushes pending saves, detaches subscribers and closes the store.
// The first error encountered is returned; the store is closed regardless.
func (w *Workspace) Close() error {
	var errs []error
	if w.saver != nil {
		errs = append(errs, w.saver.Stop())
	} else if w.editor.Dirty() {
		errs = append(errs, w.Save(context.Background()))
	}
	for _, unsub := range w.unsubscribe {
		unsub()
	}
	w.unsubscribe = nil
	if err := w.journal.Err(); err != nil {
		errs = append(errs, fmt.Errorf("journal: %w", err))
	}
	errs = append(errs, w.store.Close())
	return errors.Join(errs...)
}
