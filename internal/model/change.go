package model

import "time"

// ChangeKind names the four structural and property edits.
type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeDelete ChangeKind = "delete"
	ChangeUpdate ChangeKind = "update"
	ChangeMove   ChangeKind = "move"
)

// Change is a reversible record of one edit. It carries deep snapshots,
// never references to live nodes, so applying it later is unaffected by
// anything that happened to the page in between.
//
// Payload by kind:
//   - add, delete: Nodes is the subtree, root first in pre-order; ParentID and
//     Index locate the subtree root inside its parent (or rootOrder)
//   - update: Before and After are full snapshots of the node
//   - move: OldParentID/OldIndex is where the node was, ParentID/Index where it went
//
// Indices are the positions actually occupied, after clamping.
type Change struct {
	Kind        ChangeKind `json:"type"`
	PageID      string     `json:"pageId"`
	ComponentID string     `json:"componentId"`
	Nodes       []*Node    `json:"nodes,omitempty"`
	ParentID    string     `json:"parentId,omitempty"`
	Index       int        `json:"index"`
	Before      *Node      `json:"before,omitempty"`
	After       *Node      `json:"after,omitempty"`
	OldParentID string     `json:"oldParentId,omitempty"`
	OldIndex    int        `json:"oldIndex"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Inverse returns the change that undoes c. Applying c then c.Inverse()
// leaves a page as it was.
func (c Change) Inverse() Change {
	inv := c.Clone()
	switch c.Kind {
	case ChangeAdd:
		inv.Kind = ChangeDelete
	case ChangeDelete:
		inv.Kind = ChangeAdd
	case ChangeUpdate:
		inv.Before, inv.After = inv.After, inv.Before
	case ChangeMove:
		inv.ParentID, inv.OldParentID = c.OldParentID, c.ParentID
		inv.Index, inv.OldIndex = c.OldIndex, c.Index
	}
	return inv
}

// Clone returns a deep copy.
func (c Change) Clone() Change {
	out := c
	out.Before = c.Before.Clone()
	out.After = c.After.Clone()
	out.Nodes = nil
	if len(c.Nodes) > 0 {
		out.Nodes = make([]*Node, len(c.Nodes))
		for i, n := range c.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	return out
}
