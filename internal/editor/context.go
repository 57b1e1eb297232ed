package editor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/professor-lee/FalseClose/internal/history"
	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/registry"
	"github.com/professor-lee/FalseClose/internal/tree"
)

// DefaultUILibrary is the component library generated code targets.
const DefaultUILibrary = "element-plus"

// ProjectContext is one open project: its pages, history and metadata.
// All methods are safe for concurrent use.
type ProjectContext struct {
	mu sync.Mutex

	store    *tree.Store
	history  *history.Engine
	bus      *Bus
	registry *registry.Registry
	ids      IDGenerator
	clock    Clock
	logger   *slog.Logger

	historyOpts []history.Option

	dirty         bool
	currentPageID string
	meta          projectMeta
}

// projectMeta is the manifest minus its pages.
type projectMeta struct {
	name             string
	uiLibrary        string
	npmRegistry      string
	autoSave         bool
	autoSaveInterval int
	lastSaved        time.Time
	globalStyles     model.Map
	canvas           model.CanvasSize
}

func defaultMeta() projectMeta {
	return projectMeta{
		uiLibrary:        DefaultUILibrary,
		autoSave:         true,
		autoSaveInterval: 500,
		canvas:           model.DefaultCanvasSize,
	}
}

// Option configures a ProjectContext.
type Option func(*ProjectContext)

// WithIDGenerator sets the node and page id source.
// Default: UUIDGenerator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *ProjectContext) {
		c.ids = g
	}
}

// WithClock sets the timestamp source.
// Default: SystemClock.
func WithClock(clk Clock) Option {
	return func(c *ProjectContext) {
		c.clock = clk
	}
}

// WithRegistry enables registry-driven creation and container checks.
// Without a registry every type is accepted as a parent.
func WithRegistry(r *registry.Registry) Option {
	return func(c *ProjectContext) {
		c.registry = r
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *ProjectContext) {
		c.logger = l
	}
}

// WithHistoryOptions configures the history engine, e.g. its cap.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(c *ProjectContext) {
		c.historyOpts = append(c.historyOpts, opts...)
	}
}

// New creates an empty project context.
func New(opts ...Option) *ProjectContext {
	c := &ProjectContext{
		store:  tree.NewStore(),
		bus:    NewBus(),
		ids:    UUIDGenerator{},
		clock:  SystemClock{},
		logger: slog.Default(),
		meta:   defaultMeta(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.history = history.New(c.historyOpts...)
	c.bus.Subscribe(c.recordChange)
	return c
}

// recordChange is the history engine's subscription. Replayed changes are
// skipped so undo and redo never record themselves.
func (c *ProjectContext) recordChange(ev Event) {
	if ev.Type != EventNodeChanged || ev.Replay || ev.Change == nil {
		return
	}
	c.history.Record(*ev.Change)
}

// Subscribe registers a handler for change events. The handler runs while
// the context is locked and must not call back into it.
func (c *ProjectContext) Subscribe(fn Handler) (unsubscribe func()) {
	return c.bus.Subscribe(fn)
}

// Registry returns the component registry, or nil.
func (c *ProjectContext) Registry() *registry.Registry {
	return c.registry
}

// Load replaces the open project with a copy of m. Pages are normalized,
// the first page becomes current, history is cleared and the project is
// clean.
func (c *ProjectContext) Load(m *model.Manifest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Load(m.Pages)
	c.history.Clear()
	c.meta = projectMeta{
		name:             m.ProjectName,
		uiLibrary:        m.UILibrary,
		npmRegistry:      m.NPMRegistry,
		autoSave:         m.AutoSave,
		autoSaveInterval: m.AutoSaveInterval,
		lastSaved:        m.LastSaved,
		globalStyles:     m.GlobalStyles.Clone(),
		canvas:           m.CanvasSize,
	}
	if c.meta.uiLibrary == "" {
		c.meta.uiLibrary = DefaultUILibrary
	}
	if c.meta.autoSaveInterval <= 0 {
		c.meta.autoSaveInterval = 500
	}
	if c.meta.canvas == (model.CanvasSize{}) {
		c.meta.canvas = model.DefaultCanvasSize
	}
	c.currentPageID = ""
	if ids := c.store.PageIDs(); len(ids) > 0 {
		c.currentPageID = ids[0]
	}
	c.dirty = false

	c.logger.Debug("project loaded",
		"project", c.meta.name,
		"pages", len(c.store.PageIDs()),
	)
	c.bus.Publish(Event{Type: EventProjectLoaded, PageID: c.currentPageID})
}

// Reset closes the project: no pages, empty history, default metadata.
func (c *ProjectContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Reset()
	c.history.Clear()
	c.meta = defaultMeta()
	c.currentPageID = ""
	c.dirty = false
	c.bus.Publish(Event{Type: EventProjectLoaded})
}

// Manifest returns a snapshot of the whole project.
func (c *ProjectContext) Manifest() *model.Manifest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manifestLocked()
}

// Checkpoint stamps the save time, clears the dirty flag and returns the
// snapshot to persist, all in one step so no edit can fall between the
// snapshot and the flag. A caller whose save then fails calls MarkDirty.
func (c *ProjectContext) Checkpoint() *model.Manifest {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
	c.meta.lastSaved = c.clock.Now()
	return c.manifestLocked()
}

// MarkDirty sets the dirty flag.
func (c *ProjectContext) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = true
}

func (c *ProjectContext) manifestLocked() *model.Manifest {
	return &model.Manifest{
		MetaVersion:      model.MetaVersion,
		ProjectName:      c.meta.name,
		UILibrary:        c.meta.uiLibrary,
		NPMRegistry:      c.meta.npmRegistry,
		AutoSave:         c.meta.autoSave,
		AutoSaveInterval: c.meta.autoSaveInterval,
		LastSaved:        c.meta.lastSaved,
		Pages:            c.store.Pages(),
		GlobalStyles:     c.meta.globalStyles.Clone(),
		CanvasSize:       c.meta.canvas,
	}
}

// ProjectName returns the project name.
func (c *ProjectContext) ProjectName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta.name
}

// UILibrary returns the component library generated code targets.
func (c *ProjectContext) UILibrary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta.uiLibrary
}

// GlobalStyles returns a copy of the project-wide styles.
func (c *ProjectContext) GlobalStyles() model.Map {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta.globalStyles.Clone()
}

// AutoSave reports whether autosave is enabled and its interval.
func (c *ProjectContext) AutoSave() (enabled bool, interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta.autoSave, time.Duration(c.meta.autoSaveInterval) * time.Millisecond
}

// Dirty reports whether the project changed since it was loaded or last
// marked clean.
func (c *ProjectContext) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// MarkClean clears the dirty flag after a successful save and stamps the
// save time.
func (c *ProjectContext) MarkClean() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
	c.meta.lastSaved = c.clock.Now()
}

// Page returns a copy of a page.
func (c *ProjectContext) Page(pageID string) (*model.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Page(pageID)
}

// Pages returns copies of all pages in project order.
func (c *ProjectContext) Pages() []*model.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Pages()
}

// Node returns a copy of a node.
func (c *ProjectContext) Node(pageID, nodeID string) (*model.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Node(pageID, nodeID)
}

// Descendants returns the pre-order descendant ids of a node, excluding it.
func (c *ProjectContext) Descendants(pageID, nodeID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Descendants(pageID, nodeID)
}

// Hierarchy returns the read-only forest of a page.
func (c *ProjectContext) Hierarchy(pageID string) []*tree.TreeNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Hierarchy(pageID)
}

// CanUndo reports whether Undo would change anything.
func (c *ProjectContext) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanUndo()
}

// CanRedo reports whether Redo would change anything.
func (c *ProjectContext) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanRedo()
}

// HistoryPointer returns the history position, -1 when nothing can be undone.
func (c *ProjectContext) HistoryPointer() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Pointer()
}

// HistoryLen returns the number of recorded entries.
func (c *ProjectContext) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Len()
}

// HistoryEntries returns copies of the recorded entries, oldest first.
func (c *ProjectContext) HistoryEntries() []model.Change {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Entries()
}

// ClearHistory drops every recorded entry.
func (c *ProjectContext) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.Clear()
}
