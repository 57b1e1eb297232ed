package editor

import (
	"slices"
	"sync"

	"github.com/professor-lee/FalseClose/internal/model"
)

// Selection tracks the selected and hovered node of an editor view.
// It learns about deletions from the context's event bus and clears itself
// when the node it points at disappears, notifying its listener with "".
//
// Thread-safety: all methods are safe for concurrent use.
type Selection struct {
	mu       sync.Mutex
	selected string
	hovered  string
	listener func(selectedID string)
	unsub    func()
}

// NewSelection attaches a selection to ctx. Call Close to detach it.
func NewSelection(ctx *ProjectContext) *Selection {
	s := &Selection{}
	s.unsub = ctx.Subscribe(s.handle)
	return s
}

// OnChange registers the function called whenever the selected id changes.
func (s *Selection) OnChange(fn func(selectedID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// Select sets the selected node; "" clears it.
func (s *Selection) Select(nodeID string) {
	s.setSelected(nodeID)
}

// Hover sets the hovered node; "" clears it.
func (s *Selection) Hover(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = nodeID
}

// Selected returns the selected node id.
func (s *Selection) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Hovered returns the hovered node id.
func (s *Selection) Hovered() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hovered
}

// Close stops listening to the context.
func (s *Selection) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

func (s *Selection) handle(ev Event) {
	switch ev.Type {
	case EventNodeChanged:
		if ev.Change == nil || ev.Change.Kind != model.ChangeDelete {
			return
		}
		removed := func(id string) bool {
			return id != "" && slices.ContainsFunc(ev.Change.Nodes, func(n *model.Node) bool { return n.ID == id })
		}
		s.mu.Lock()
		if removed(s.hovered) {
			s.hovered = ""
		}
		hit := removed(s.selected)
		s.mu.Unlock()
		if hit {
			s.setSelected("")
		}
	case EventPageDeleted, EventProjectLoaded:
		s.mu.Lock()
		s.hovered = ""
		s.mu.Unlock()
		s.setSelected("")
	}
}

func (s *Selection) setSelected(id string) {
	s.mu.Lock()
	if s.selected == id {
		s.mu.Unlock()
		return
	}
	s.selected = id
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}
