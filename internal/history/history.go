// Package history implements the undo/redo engine.
//
// The engine is a bounded list of model.Change records with a single
// pointer. Pointer -1 means "before the first entry" (nothing to undo);
// otherwise it names the entry the next Undo reverses.
//
// INVARIANTS:
//   - -1 <= pointer <= len(entries)-1
//   - len(entries) <= max
//   - entries are deep copies and are never mutated after Record
//   - Undo and Redo only apply changes through the Applier; they never
//     call Record, so replay cannot disturb the stack
package history

import (
	"fmt"

	"github.com/professor-lee/FalseClose/internal/model"
)

// DefaultMaxEntries caps the history when no other limit is configured.
const DefaultMaxEntries = 50

// Applier re-applies a change through the same seam live edits use,
// without recording it.
type Applier interface {
	Replay(c model.Change) error
}

// Engine is the undo/redo state machine.
// Not safe for concurrent use; the editor serializes access.
type Engine struct {
	entries []model.Change
	pointer int
	max     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxEntries sets the history cap. Values below 1 keep the default.
func WithMaxEntries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.max = n
		}
	}
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{pointer: -1, max: DefaultMaxEntries}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Record appends a change. Entries after the pointer (the redo branch) are
// discarded first. When the cap is exceeded the oldest entry is evicted and
// the pointer stays where it is; otherwise the pointer advances.
func (e *Engine) Record(c model.Change) {
	if e.pointer < len(e.entries)-1 {
		clear(e.entries[e.pointer+1:])
		e.entries = e.entries[:e.pointer+1]
	}

	e.entries = append(e.entries, c.Clone())

	if len(e.entries) > e.max {
		e.entries[0] = model.Change{}
		e.entries = e.entries[1:]
	} else {
		e.pointer++
	}
}

// Undo reverses the entry at the pointer. It reports whether an entry was
// applied; with nothing to undo it is a no-op returning false.
// The pointer moves before the inverse is applied, so a failing applier
// still leaves the engine consistent.
func (e *Engine) Undo(a Applier) (bool, error) {
	if e.pointer < 0 {
		return false, nil
	}
	entry := e.entries[e.pointer]
	e.pointer--
	if err := a.Replay(entry.Inverse()); err != nil {
		return true, fmt.Errorf("undo %s %s: %w", entry.Kind, entry.ComponentID, err)
	}
	return true, nil
}

// Redo re-applies the entry after the pointer. With nothing to redo it is a
// no-op returning false.
func (e *Engine) Redo(a Applier) (bool, error) {
	if e.pointer >= len(e.entries)-1 {
		return false, nil
	}
	e.pointer++
	entry := e.entries[e.pointer]
	if err := a.Replay(entry.Clone()); err != nil {
		return true, fmt.Errorf("redo %s %s: %w", entry.Kind, entry.ComponentID, err)
	}
	return true, nil
}

// Clear empties the history. Used when a project is loaded, reset or closed.
func (e *Engine) Clear() {
	e.entries = nil
	e.pointer = -1
}

// CanUndo reports whether Undo would apply an entry.
func (e *Engine) CanUndo() bool {
	return e.pointer >= 0
}

// CanRedo reports whether Redo would apply an entry.
func (e *Engine) CanRedo() bool {
	return e.pointer < len(e.entries)-1
}

// Len returns the number of stored entries.
func (e *Engine) Len() int {
	return len(e.entries)
}

// Pointer returns the current position, -1 when nothing can be undone.
func (e *Engine) Pointer() int {
	return e.pointer
}

// Max returns the configured cap.
func (e *Engine) Max() int {
	return e.max
}

// Entries returns deep copies of the stored entries, oldest first.
func (e *Engine) Entries() []model.Change {
	out := make([]model.Change, len(e.entries))
	for i, c := range e.entries {
		out[i] = c.Clone()
	}
	return out
}
