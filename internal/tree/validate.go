package tree

import (
	"fmt"
	"slices"

	"github.com/professor-lee/FalseClose/internal/model"
)

// Violation describes one broken structural invariant.
type Violation struct {
	PageID  string `json:"page_id"`
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.NodeID != "" {
		return fmt.Sprintf("page %s, node %s: %s", v.PageID, v.NodeID, v.Message)
	}
	return fmt.Sprintf("page %s: %s", v.PageID, v.Message)
}

// Validate checks the structural invariants of a page:
//   - node ids are unique
//   - rootOrder holds exactly the parentless node ids, once each
//   - a child's parent exists and lists the child exactly once
//   - children lists only name existing nodes whose parentId points back
//   - no ancestor chain loops
//
// It returns every violation found, in a stable order.
func Validate(page *model.Page) []Violation {
	var out []Violation
	add := func(nodeID, format string, args ...any) {
		out = append(out, Violation{PageID: page.ID, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
	}

	index := make(map[string]*model.Node, len(page.Nodes))
	for _, n := range page.Nodes {
		if n == nil {
			add("", "nil node in collection")
			continue
		}
		if n.ID == "" {
			add("", "node with empty id")
			continue
		}
		if _, dup := index[n.ID]; dup {
			add(n.ID, "duplicate node id")
			continue
		}
		index[n.ID] = n
	}

	// rootOrder
	inRoot := make(map[string]int, len(page.RootOrder))
	for _, id := range page.RootOrder {
		inRoot[id]++
	}
	for _, id := range page.RootOrder {
		n, ok := index[id]
		switch {
		case !ok:
			add(id, "rootOrder names a missing node")
		case !n.IsRoot():
			add(id, "rootOrder names a node with parent %s", n.ParentID)
		}
	}
	for id, count := range sortedCounts(inRoot) {
		if count > 1 {
			add(id, "appears %d times in rootOrder", count)
		}
	}

	for _, n := range page.Nodes {
		if n == nil || index[n.ID] != n {
			continue
		}
		if n.IsRoot() {
			if inRoot[n.ID] == 0 {
				add(n.ID, "root node missing from rootOrder")
			}
		} else {
			parent, ok := index[n.ParentID]
			if !ok {
				add(n.ID, "parent %s does not exist", n.ParentID)
			} else if c := count(parent.Children, n.ID); c != 1 {
				add(n.ID, "listed %d times in children of parent %s", c, n.ParentID)
			}
		}
		for _, childID := range n.Children {
			child, ok := index[childID]
			if !ok {
				add(n.ID, "children names missing node %s", childID)
				continue
			}
			if child.ParentID != n.ID {
				add(n.ID, "child %s has parentId %q", childID, child.ParentID)
			}
		}
		if hasCycle(index, n) {
			add(n.ID, "ancestor chain contains a cycle")
		}
	}
	return out
}

// hasCycle follows parent links from n and reports whether they loop.
func hasCycle(index map[string]*model.Node, n *model.Node) bool {
	steps := 0
	for cur := n.ParentID; cur != ""; steps++ {
		if cur == n.ID {
			return true
		}
		if steps > len(index) {
			return true
		}
		parent, ok := index[cur]
		if !ok {
			return false
		}
		cur = parent.ParentID
	}
	return false
}

func count(ids []string, id string) int {
	c := 0
	for _, x := range ids {
		if x == id {
			c++
		}
	}
	return c
}

// sortedCounts iterates a count map in key order.
func sortedCounts(m map[string]int) func(yield func(string, int) bool) {
	return func(yield func(string, int) bool) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}
