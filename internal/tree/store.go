package tree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/professor-lee/FalseClose/internal/model"
)

// Errors returned by the mutating primitives. The editor maps them onto
// its own error codes.
var (
	ErrPageNotFound   = errors.New("page not found")
	ErrNodeNotFound   = errors.New("node not found")
	ErrParentNotFound = errors.New("parent not found")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrCycle          = errors.New("move would create a cycle")
)

// pageEntry is a live page plus its id index.
type pageEntry struct {
	page  *model.Page
	nodes map[string]*model.Node
}

func newPageEntry(p *model.Page) *pageEntry {
	e := &pageEntry{page: p, nodes: make(map[string]*model.Node, len(p.Nodes))}
	for _, n := range p.Nodes {
		e.nodes[n.ID] = n
	}
	return e
}

// siblings returns the ordered id list a node with the given parent lives in.
func (e *pageEntry) siblings(parentID string) *[]string {
	if parentID == "" {
		return &e.page.RootOrder
	}
	if parent, ok := e.nodes[parentID]; ok {
		return &parent.Children
	}
	return nil
}

// Store is the Node Store for one open project.
// It is not safe for concurrent use; the editor serializes access.
type Store struct {
	pages []*pageEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the store contents with deep copies of pages, normalized.
// Pages with an id already seen are dropped.
func (s *Store) Load(pages []*model.Page) {
	s.pages = nil
	seen := make(map[string]bool, len(pages))
	for _, p := range pages {
		if p == nil || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		cp := p.Clone()
		cp.Normalize()
		s.pages = append(s.pages, newPageEntry(cp))
	}
}

// Reset removes every page.
func (s *Store) Reset() {
	s.pages = nil
}

func (s *Store) entry(pageID string) *pageEntry {
	for _, e := range s.pages {
		if e.page.ID == pageID {
			return e
		}
	}
	return nil
}

// PageIDs returns page ids in project order.
func (s *Store) PageIDs() []string {
	ids := make([]string, len(s.pages))
	for i, e := range s.pages {
		ids[i] = e.page.ID
	}
	return ids
}

// HasPage reports whether the page exists.
func (s *Store) HasPage(pageID string) bool {
	return s.entry(pageID) != nil
}

// Page returns a deep copy of the page.
func (s *Store) Page(pageID string) (*model.Page, bool) {
	e := s.entry(pageID)
	if e == nil {
		return nil, false
	}
	return e.page.Clone(), true
}

// Pages returns deep copies of every page in project order.
func (s *Store) Pages() []*model.Page {
	out := make([]*model.Page, len(s.pages))
	for i, e := range s.pages {
		out[i] = e.page.Clone()
	}
	return out
}

// Node returns a deep copy of one node.
func (s *Store) Node(pageID, nodeID string) (*model.Node, bool) {
	e := s.entry(pageID)
	if e == nil {
		return nil, false
	}
	n, ok := e.nodes[nodeID]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// NodeCount returns the number of nodes on a page.
func (s *Store) NodeCount(pageID string) int {
	if e := s.entry(pageID); e != nil {
		return len(e.page.Nodes)
	}
	return 0
}

// Descendants returns the pre-order descendant ids of a node.
func (s *Store) Descendants(pageID, nodeID string) []string {
	e := s.entry(pageID)
	if e == nil {
		return nil
	}
	return DescendantsOf(e.page, nodeID)
}

// Hierarchy assembles the forest for a page.
func (s *Store) Hierarchy(pageID string) []*TreeNode {
	e := s.entry(pageID)
	if e == nil {
		return nil
	}
	return Assemble(e.page)
}

// Position returns the parent and index a node currently occupies.
func (s *Store) Position(pageID, nodeID string) (parentID string, index int, ok bool) {
	e := s.entry(pageID)
	if e == nil {
		return "", 0, false
	}
	n, found := e.nodes[nodeID]
	if !found {
		return "", 0, false
	}
	list := e.siblings(n.ParentID)
	if list == nil {
		return n.ParentID, -1, true
	}
	return n.ParentID, slices.Index(*list, nodeID), true
}

// AddPage appends a page. The store takes ownership of p.
func (s *Store) AddPage(p *model.Page) error {
	if s.entry(p.ID) != nil {
		return fmt.Errorf("page %s: %w", p.ID, ErrDuplicateID)
	}
	p.Normalize()
	s.pages = append(s.pages, newPageEntry(p))
	return nil
}

// RemovePage removes a page and returns its former position.
func (s *Store) RemovePage(pageID string) (int, error) {
	for i, e := range s.pages {
		if e.page.ID == pageID {
			s.pages = slices.Delete(s.pages, i, i+1)
			return i, nil
		}
	}
	return -1, fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
}

// InsertSubtree adds nodes to a page. nodes[0] is the subtree root; it is
// attached at index within its ParentID's children (or rootOrder when
// ParentID is ""). The remaining nodes are its descendants and keep their
// own parent/children links. index < 0 or past the end appends.
// Returns the index actually occupied. The store takes ownership of nodes.
func (s *Store) InsertSubtree(pageID string, nodes []*model.Node, index int) (int, error) {
	e := s.entry(pageID)
	if e == nil {
		return -1, fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
	}
	if len(nodes) == 0 {
		return -1, nil
	}
	root := nodes[0]
	for _, n := range nodes {
		if _, dup := e.nodes[n.ID]; dup {
			return -1, fmt.Errorf("node %s: %w", n.ID, ErrDuplicateID)
		}
	}
	list := e.siblings(root.ParentID)
	if list == nil {
		return -1, fmt.Errorf("parent %s: %w", root.ParentID, ErrParentNotFound)
	}

	at := insertAt(list, root.ID, index)
	for _, n := range nodes {
		e.page.Nodes = append(e.page.Nodes, n)
		e.nodes[n.ID] = n
	}
	return at, nil
}

// RemoveSubtree detaches a node from its parent (or rootOrder) and removes
// it with all descendants. The removed nodes are returned root first in
// pre-order, together with the position the root occupied.
func (s *Store) RemoveSubtree(pageID, nodeID string) (removed []*model.Node, parentID string, index int, err error) {
	e := s.entry(pageID)
	if e == nil {
		return nil, "", -1, fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
	}
	root, ok := e.nodes[nodeID]
	if !ok {
		return nil, "", -1, fmt.Errorf("node %s: %w", nodeID, ErrNodeNotFound)
	}

	ids := append([]string{nodeID}, DescendantsOf(e.page, nodeID)...)
	parentID = root.ParentID
	index = -1
	if list := e.siblings(parentID); list != nil {
		index = removeID(list, nodeID)
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if n, ok := e.nodes[id]; ok {
			removed = append(removed, n)
			drop[id] = true
			delete(e.nodes, id)
		}
	}
	e.page.Nodes = slices.DeleteFunc(e.page.Nodes, func(n *model.Node) bool { return drop[n.ID] })
	if len(e.page.Nodes) == 0 {
		e.page.Nodes = nil
	}
	return removed, parentID, index, nil
}

// ReplaceContent overwrites the content fields (type, props, styles,
// events, locked) of an existing node with those of n. Structural fields
// (id, parent, children) are left alone. The store takes ownership of
// n's maps.
func (s *Store) ReplaceContent(pageID string, n *model.Node) error {
	e := s.entry(pageID)
	if e == nil {
		return fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
	}
	live, ok := e.nodes[n.ID]
	if !ok {
		return fmt.Errorf("node %s: %w", n.ID, ErrNodeNotFound)
	}
	live.Type = n.Type
	live.Props = n.Props
	live.Styles = n.Styles
	live.Events = n.Events
	live.Locked = n.Locked
	return nil
}

// Move detaches a node and reattaches it under newParentID ("" for root)
// at the clamped index. It fails without mutating when the node or new
// parent is missing, or when newParentID is the node itself or one of its
// descendants.
func (s *Store) Move(pageID, nodeID, newParentID string, index int) (oldParentID string, oldIndex, newIndex int, err error) {
	e := s.entry(pageID)
	if e == nil {
		return "", -1, -1, fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
	}
	n, ok := e.nodes[nodeID]
	if !ok {
		return "", -1, -1, fmt.Errorf("node %s: %w", nodeID, ErrNodeNotFound)
	}
	if newParentID != "" {
		if _, ok := e.nodes[newParentID]; !ok {
			return "", -1, -1, fmt.Errorf("parent %s: %w", newParentID, ErrParentNotFound)
		}
		if newParentID == nodeID || slices.Contains(DescendantsOf(e.page, nodeID), newParentID) {
			return "", -1, -1, fmt.Errorf("node %s under %s: %w", nodeID, newParentID, ErrCycle)
		}
	}

	oldParentID = n.ParentID
	oldIndex = -1
	if list := e.siblings(oldParentID); list != nil {
		oldIndex = removeID(list, nodeID)
	}
	n.ParentID = newParentID
	newIndex = insertAt(e.siblings(newParentID), nodeID, index)
	return oldParentID, oldIndex, newIndex, nil
}

// insertAt inserts id at index, appending when index is out of range.
// Returns the index used.
func insertAt(list *[]string, id string, index int) int {
	if index < 0 || index > len(*list) {
		index = len(*list)
	}
	*list = slices.Insert(*list, index, id)
	return index
}

// removeID removes every occurrence of id and returns the first index it
// held, or -1. An emptied list becomes nil.
func removeID(list *[]string, id string) int {
	at := slices.Index(*list, id)
	if at < 0 {
		return -1
	}
	*list = slices.DeleteFunc(*list, func(s string) bool { return s == id })
	if len(*list) == 0 {
		*list = nil
	}
	return at
}
