package tree

import "github.com/professor-lee/FalseClose/internal/model"

// TreeNode is one node of an assembled hierarchy. Node is a deep copy.
type TreeNode struct {
	Node     *model.Node
	Children []*TreeNode
}

// Assemble builds the read-only forest for a page: root nodes ordered by
// rootOrder, children resolved transitively.
//
// Parentless nodes missing from rootOrder are appended after it, in
// collection order. A node whose children list is empty falls back to the
// nodes naming it as parent. Child ids with no node are skipped. Each node
// appears at most once, so cyclic input still terminates.
func Assemble(page *model.Page) []*TreeNode {
	if page == nil {
		return nil
	}
	index := indexNodes(page)
	visited := make(map[string]bool, len(index))

	var build func(id string) *TreeNode
	build = func(id string) *TreeNode {
		n, ok := index[id]
		if !ok || visited[id] {
			return nil
		}
		visited[id] = true
		tn := &TreeNode{Node: n.Clone()}
		for _, childID := range childIDs(page, n) {
			if child := build(childID); child != nil {
				tn.Children = append(tn.Children, child)
			}
		}
		return tn
	}

	var forest []*TreeNode
	for _, id := range rootIDs(page, index) {
		if tn := build(id); tn != nil {
			forest = append(forest, tn)
		}
	}
	return forest
}

// DescendantsOf returns the ids below nodeID in pre-order following
// children, excluding nodeID itself. It returns nil for unknown ids.
// The walk visits at most len(page.Nodes) nodes.
func DescendantsOf(page *model.Page, nodeID string) []string {
	if page == nil {
		return nil
	}
	index := indexNodes(page)
	root, ok := index[nodeID]
	if !ok {
		return nil
	}

	visited := map[string]bool{nodeID: true}
	var out []string
	var walk func(n *model.Node)
	walk = func(n *model.Node) {
		for _, childID := range n.Children {
			if visited[childID] || len(out) >= len(index) {
				continue
			}
			visited[childID] = true
			out = append(out, childID)
			if child, ok := index[childID]; ok {
				walk(child)
			}
		}
	}
	walk(root)
	return out
}

// Walk visits every node of the forest in pre-order. Returning false from
// fn stops the walk.
func Walk(forest []*TreeNode, fn func(tn *TreeNode, depth int) bool) {
	var visit func(nodes []*TreeNode, depth int) bool
	visit = func(nodes []*TreeNode, depth int) bool {
		for _, tn := range nodes {
			if !fn(tn, depth) {
				return false
			}
			if !visit(tn.Children, depth+1) {
				return false
			}
		}
		return true
	}
	visit(forest, 0)
}

// Count returns the number of nodes in the forest.
func Count(forest []*TreeNode) int {
	n := 0
	Walk(forest, func(*TreeNode, int) bool {
		n++
		return true
	})
	return n
}

func indexNodes(page *model.Page) map[string]*model.Node {
	index := make(map[string]*model.Node, len(page.Nodes))
	for _, n := range page.Nodes {
		if n != nil {
			if _, dup := index[n.ID]; !dup {
				index[n.ID] = n
			}
		}
	}
	return index
}

func rootIDs(page *model.Page, index map[string]*model.Node) []string {
	seen := make(map[string]bool, len(page.RootOrder))
	var ids []string
	for _, id := range page.RootOrder {
		if n, ok := index[id]; ok && n.IsRoot() && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, n := range page.Nodes {
		if n != nil && n.IsRoot() && !seen[n.ID] {
			seen[n.ID] = true
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func childIDs(page *model.Page, n *model.Node) []string {
	if len(n.Children) > 0 {
		return n.Children
	}
	var ids []string
	for _, other := range page.Nodes {
		if other != nil && other.ParentID == n.ID {
			ids = append(ids, other.ID)
		}
	}
	return ids
}
