package editor

import (
	"github.com/professor-lee/FalseClose/internal/model"
)

// Page management is not recorded in history: undo and redo only cover
// node edits, and entries that point at a deleted page replay as no-ops.

// CreatePage appends an empty page, makes it current and returns its id.
// An empty route defaults to "/".
func (c *ProjectContext) CreatePage(name, route string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return "", invalidInput("", "", "page name is required")
	}
	if route == "" {
		route = "/"
	}
	p := &model.Page{ID: c.ids.Generate(), Name: name, Route: route}
	if err := c.store.AddPage(p); err != nil {
		return "", fromStoreError(p.ID, "", err)
	}
	c.currentPageID = p.ID
	c.dirty = true

	c.logger.Debug("page created", "page_id", p.ID, "route", route)
	c.bus.Publish(Event{Type: EventPageCreated, PageID: p.ID, Page: p})
	return p.ID, nil
}

// RestorePage adds a page snapshot with its ids intact. It is the rebuild
// path for journal replay; interactive callers use CreatePage.
func (c *ProjectContext) RestorePage(p *model.Page) error {
	if p == nil || p.ID == "" {
		return invalidInput("", "", "page snapshot needs an id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := p.Clone()
	if err := c.store.AddPage(cp); err != nil {
		return fromStoreError(cp.ID, "", err)
	}
	if c.currentPageID == "" {
		c.currentPageID = cp.ID
	}
	c.dirty = true

	c.logger.Debug("page restored", "page_id", cp.ID, "nodes", len(cp.Nodes))
	c.bus.Publish(Event{Type: EventPageCreated, PageID: cp.ID, Page: cp})
	return nil
}

// DeletePage removes a page. When it was current, the first remaining page
// becomes current.
func (c *ProjectContext) DeletePage(pageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.store.RemovePage(pageID); err != nil {
		return fromStoreError(pageID, "", err)
	}
	if c.currentPageID == pageID {
		c.currentPageID = ""
		if ids := c.store.PageIDs(); len(ids) > 0 {
			c.currentPageID = ids[0]
		}
	}
	c.dirty = true

	c.logger.Debug("page deleted", "page_id", pageID)
	c.bus.Publish(Event{Type: EventPageDeleted, PageID: pageID})
	return nil
}

// SwitchPage makes pageID current.
func (c *ProjectContext) SwitchPage(pageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.store.HasPage(pageID) {
		return notFound(pageID, "", "page does not exist")
	}
	c.currentPageID = pageID
	return nil
}

// CurrentPageID returns the current page id, "" when the project has none.
func (c *ProjectContext) CurrentPageID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPageID
}

// CurrentPage returns a copy of the current page.
func (c *ProjectContext) CurrentPage() (*model.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Page(c.currentPageID)
}

// PageByRoute returns the first page mounted at route.
func (c *ProjectContext) PageByRoute(route string) (*model.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.store.Pages() {
		if p.Route == route {
			return p, true
		}
	}
	return nil, false
}

// UpdateGlobalStyles replaces the project-wide styles.
func (c *ProjectContext) UpdateGlobalStyles(styles model.Map) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meta.globalStyles = styles.Clone()
	c.dirty = true
	c.bus.Publish(Event{Type: EventProjectChanged})
}

// UpdateCanvasSize replaces the canvas geometry.
func (c *ProjectContext) UpdateCanvasSize(size model.CanvasSize) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meta.canvas = size
	c.dirty = true
	c.bus.Publish(Event{Type: EventProjectChanged})
}
