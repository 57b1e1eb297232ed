package model

import (
	"encoding/json"
	"slices"
	"time"
)

// MetaVersion is the manifest format version written by Save.
const MetaVersion = 2

// Page is one routable page of a project: a flat node collection plus the
// explicit order of its root nodes.
type Page struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Route     string   `json:"route"`
	Nodes     []*Node  `json:"componentTree"`
	RootOrder []string `json:"rootOrder"`
}

// MarshalJSON writes empty node and root lists as [] rather than null.
func (p Page) MarshalJSON() ([]byte, error) {
	type pageAlias Page
	aux := pageAlias(p)
	if aux.Nodes == nil {
		aux.Nodes = []*Node{}
	}
	if aux.RootOrder == nil {
		aux.RootOrder = []string{}
	}
	return json.Marshal(aux)
}

// Clone returns a deep copy.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	out := &Page{
		ID:        p.ID,
		Name:      p.Name,
		Route:     p.Route,
		RootOrder: cloneIDs(p.RootOrder),
	}
	if len(p.Nodes) > 0 {
		out.Nodes = make([]*Node, len(p.Nodes))
		for i, n := range p.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	return out
}

// Equal reports deep equality. Node order matters.
func (p *Page) Equal(other *Page) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.ID != other.ID || p.Name != other.Name || p.Route != other.Route {
		return false
	}
	if !slices.Equal(p.RootOrder, other.RootOrder) {
		return false
	}
	return slices.EqualFunc(p.Nodes, other.Nodes, (*Node).Equal)
}

// Node returns the node with the given id, or nil. Linear scan; the live
// store keeps its own index.
func (p *Page) Node(id string) *Node {
	for _, n := range p.Nodes {
		if n != nil && n.ID == id {
			return n
		}
	}
	return nil
}

// Normalize repairs a page read from disk: nil nodes are dropped, rootOrder
// is rebuilt when absent and completed with any parentless node it misses.
// Ids in rootOrder that do not name a parentless node are removed, as are
// duplicates.
func (p *Page) Normalize() {
	p.Nodes = slices.DeleteFunc(p.Nodes, func(n *Node) bool { return n == nil })
	if len(p.Nodes) == 0 {
		p.Nodes = nil
	}

	roots := make(map[string]bool)
	for _, n := range p.Nodes {
		if n.IsRoot() {
			roots[n.ID] = true
		}
		if len(n.Children) == 0 {
			n.Children = nil
		}
	}

	seen := make(map[string]bool, len(p.RootOrder))
	order := make([]string, 0, len(roots))
	for _, id := range p.RootOrder {
		if roots[id] && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, n := range p.Nodes {
		if n.IsRoot() && !seen[n.ID] {
			seen[n.ID] = true
			order = append(order, n.ID)
		}
	}
	p.RootOrder = cloneIDs(order)
}

// CanvasSize is the editor canvas geometry stored with the project.
type CanvasSize struct {
	Width   int  `json:"width"`
	Height  int  `json:"height"`
	IsFixed bool `json:"isFixed"`
}

// DefaultCanvasSize is used when a manifest carries none.
var DefaultCanvasSize = CanvasSize{Width: 1280, Height: 800}

// Manifest is the persisted project document.
type Manifest struct {
	MetaVersion      int        `json:"metaVersion"`
	ProjectName      string     `json:"projectName"`
	UILibrary        string     `json:"uiLibrary"`
	NPMRegistry      string     `json:"npmRegistry,omitempty"`
	AutoSave         bool       `json:"autoSave"`
	AutoSaveInterval int        `json:"autoSaveInterval"` // milliseconds
	LastSaved        time.Time  `json:"lastSaved"`
	Pages            []*Page    `json:"pages"`
	GlobalStyles     Map        `json:"globalStyles"`
	CanvasSize       CanvasSize `json:"canvasSize"`
}

// Clone returns a deep copy.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	out := *m
	out.GlobalStyles = m.GlobalStyles.Clone()
	out.Pages = nil
	if len(m.Pages) > 0 {
		out.Pages = make([]*Page, len(m.Pages))
		for i, p := range m.Pages {
			out.Pages[i] = p.Clone()
		}
	}
	return &out
}

// Page returns the page with the given id, or nil.
func (m *Manifest) Page(id string) *Page {
	for _, p := range m.Pages {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// UnmarshalJSON applies the defaults older manifests leave implicit:
// autoSave is on unless explicitly false and the interval defaults to 500ms.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	type manifestAlias Manifest
	aux := struct {
		*manifestAlias
		AutoSave   *bool       `json:"autoSave"`
		LastSaved  *string     `json:"lastSaved"`
		CanvasSize *CanvasSize `json:"canvasSize"`
	}{manifestAlias: (*manifestAlias)(m)}

	*m = Manifest{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.AutoSave = aux.AutoSave == nil || *aux.AutoSave
	if m.AutoSaveInterval <= 0 {
		m.AutoSaveInterval = 500
	}
	if aux.LastSaved != nil && *aux.LastSaved != "" {
		if t, err := time.Parse(time.RFC3339Nano, *aux.LastSaved); err == nil {
			m.LastSaved = t
		}
	}
	m.CanvasSize = DefaultCanvasSize
	if aux.CanvasSize != nil {
		m.CanvasSize = *aux.CanvasSize
	}
	m.Pages = slices.DeleteFunc(m.Pages, func(p *Page) bool { return p == nil })
	return nil
}

// Normalize repairs every page. Decoding leaves pages as written so they
// can be validated; callers that edit or render a manifest normalize it
// first.
func (m *Manifest) Normalize() {
	for _, p := range m.Pages {
		p.Normalize()
	}
}
