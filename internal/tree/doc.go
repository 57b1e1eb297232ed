// Package tree owns the flat per-page node collections and derives
// hierarchical views from them.
//
// Store is the Node Store: it holds every page of the open project, keeps a
// per-page id index and exposes primitive CRUD. The primitives do not record
// history, mark anything dirty or publish events; that is the job of the
// editor package, which is the only intended caller of the mutating methods.
//
// Readers (Page, Node, Descendants, Hierarchy) hand out deep copies, so
// nothing outside the store can alias live nodes.
//
// Assemble and DescendantsOf are pure functions over a *model.Page snapshot
// and never mutate their input. Both are bounded by the page's node count,
// so a malformed cyclic page read from disk cannot make them loop.
package tree
