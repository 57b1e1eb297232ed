package harness

import (
	"errors"
	"fmt"
	"maps"

	"github.com/professor-lee/FalseClose/internal/editor"
	"github.com/professor-lee/FalseClose/internal/model"
)

// Executor applies steps to a project context, tracking aliases.
type Executor struct {
	ed   *editor.ProjectContext
	refs map[string]string
	seq  int
}

// NewExecutor returns an executor over ed.
func NewExecutor(ed *editor.ProjectContext) *Executor {
	return &Executor{ed: ed, refs: make(map[string]string)}
}

// Bind maps alias to id.
func (x *Executor) Bind(alias, id string) {
	x.refs[alias] = id
}

// Resolve returns the id bound to ref, or ref itself.
func (x *Executor) Resolve(ref string) string {
	if id, ok := x.refs[ref]; ok {
		return id
	}
	return ref
}

// Refs returns a copy of the alias table.
func (x *Executor) Refs() map[string]string {
	return maps.Clone(x.refs)
}

// PageID resolves a page reference, falling back to the current page.
func (x *Executor) PageID(ref string) string {
	if ref == "" {
		return x.ed.CurrentPageID()
	}
	return x.Resolve(ref)
}

// Apply runs one step. The trace event records what happened, including
// the error code of a failed edit. The returned error is non-nil when the
// outcome differs from st.ExpectError or the step could not be run.
func (x *Executor) Apply(st Step) (TraceEvent, error) {
	x.seq++
	ev := TraceEvent{Step: x.seq, Op: st.Op}

	err := x.run(st, &ev)
	ev.Pointer = x.ed.HistoryPointer()

	var editErr *editor.EditError
	switch {
	case err == nil:
		if st.ExpectError != "" {
			return ev, fmt.Errorf("step %d (%s): expected %s, got success", ev.Step, st.Op, st.ExpectError)
		}
		return ev, nil
	case errors.As(err, &editErr):
		ev.Error = string(editErr.Code)
		if ev.Error != st.ExpectError {
			return ev, fmt.Errorf("step %d (%s): %w", ev.Step, st.Op, err)
		}
		return ev, nil
	default:
		return ev, fmt.Errorf("step %d (%s): %w", ev.Step, st.Op, err)
	}
}

func (x *Executor) run(st Step, ev *TraceEvent) error {
	pageID := x.PageID(st.Page)
	nodeID := x.Resolve(st.Node)
	ev.Page = pageID
	ev.Node = nodeID

	switch st.Op {
	case OpCreate:
		id, err := x.create(pageID, st)
		if err != nil {
			return err
		}
		ev.Node = id
		if st.As != "" {
			x.Bind(st.As, id)
		}
		return nil

	case OpDelete:
		removed, err := x.ed.DeleteNode(pageID, nodeID)
		ev.Removed = removed
		return err

	case OpUpdate:
		return x.ed.UpdateNode(pageID, nodeID, nodeUpdate(st))

	case OpSetProp, OpSetStyle:
		v, err := model.FromAny(st.Value)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		if st.Op == OpSetProp {
			return x.ed.SetProp(pageID, nodeID, st.Key, v)
		}
		return x.ed.SetStyle(pageID, nodeID, st.Key, v)

	case OpMove:
		return x.ed.MoveNode(pageID, nodeID, x.Resolve(st.Parent), index(st.Index))

	case OpUndo, OpRedo:
		ev.Node = ""
		fn := x.ed.Undo
		if st.Op == OpRedo {
			fn = x.ed.Redo
		}
		did, err := fn()
		ev.Noop = !did
		return err

	case OpCreatePage:
		ev.Node = ""
		id, err := x.ed.CreatePage(st.Name, st.Route)
		if err != nil {
			return err
		}
		ev.Page = id
		if st.As != "" {
			x.Bind(st.As, id)
		}
		return nil

	case OpDeletePage:
		ev.Node = ""
		return x.ed.DeletePage(pageID)

	case OpSwitchPage:
		ev.Node = ""
		return x.ed.SwitchPage(pageID)
	}
	return fmt.Errorf("unknown op %q", st.Op)
}

func (x *Executor) create(pageID string, st Step) (string, error) {
	parentID := x.Resolve(st.Parent)
	if st.Defaults {
		return x.ed.CreateFromRegistry(pageID, st.Type, parentID, index(st.Index))
	}
	var opts []editor.CreateOption
	if st.Events.Len() > 0 {
		opts = append(opts, editor.WithEvents(st.Events))
	}
	return x.ed.CreateNode(pageID, st.Type, st.Props, st.Styles, parentID, index(st.Index), opts...)
}

func nodeUpdate(st Step) editor.NodeUpdate {
	var u editor.NodeUpdate
	if st.Type != "" {
		u.Type = &st.Type
	}
	if st.Props.Len() > 0 {
		u.Props = &st.Props
	}
	if st.Styles.Len() > 0 {
		u.Styles = &st.Styles
	}
	if st.Events.Len() > 0 {
		u.Events = &st.Events
	}
	return u
}

func index(i *int) int {
	if i == nil {
		return -1
	}
	return *i
}
