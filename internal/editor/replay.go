package editor

import (
	"github.com/professor-lee/FalseClose/internal/model"
)

// Undo reverses the most recent recorded change. It reports whether there
// was anything to undo.
func (c *ProjectContext) Undo() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Undo(replayer{c})
}

// Redo re-applies the most recently undone change. It reports whether
// there was anything to redo.
func (c *ProjectContext) Redo() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Redo(replayer{c})
}

// Replay applies a change through the mutation seam without recording it.
// It is how a journal of changes is rebuilt into a project.
func (c *ProjectContext) Replay(ch model.Change) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return replayer{c}.Replay(ch)
}

// replayer is the history.Applier for a context whose lock is already held.
type replayer struct {
	c *ProjectContext
}

// Replay applies ch with the replay flag set. Targets that no longer exist
// turn the entry into a no-op.
func (r replayer) Replay(ch model.Change) error {
	_, err := r.c.apply(ch, true)
	if IsNotFound(err) {
		r.c.logger.Debug("replay target missing, skipping",
			"kind", ch.Kind,
			"page_id", ch.PageID,
			"node_id", ch.ComponentID,
		)
		return nil
	}
	return err
}
