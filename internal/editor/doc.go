// Package editor implements the Mutation API of the page builder.
//
// ARCHITECTURE:
//
// Explicit Context:
// A ProjectContext owns everything one open project needs: the Node Store,
// the History Engine, the change-event Bus and the project-level metadata
// (name, UI library, global styles, canvas). Callers hold the context and
// pass it around; there is no package-level state.
//
// Single Seam:
// CreateNode, DeleteNode, UpdateNode and MoveNode each build a model.Change
// and hand it to apply. Undo and Redo replay recorded changes through the
// very same apply, so live edits and replay share one set of invariants.
//
// Notification Channel:
// apply publishes an Event after every successful mutation. The history
// engine and the Selection collaborator are subscribers; nothing in the
// store reaches into them directly. Replayed changes are published with
// Replay set, and the history subscriber ignores them, which is what keeps
// undo and redo from recording themselves.
//
// CRITICAL PATTERNS:
//
// Clone at the boundary:
// Every map passed into the API is deep-copied before it is stored, and
// every node or page handed back out is a copy. History entries hold
// snapshots, never live nodes.
//
// Absent targets are no-ops:
// Deleting, updating or moving a node that does not exist does nothing and
// records nothing. Only operations whose caller names an id it must exist
// for (the page of a create, the parent of a create or move, page switch
// and delete) report NOT_FOUND.
//
// Serialized access:
// A mutex guards the context. Subscribers run while it is held and must
// not call back into the ProjectContext.
package editor
