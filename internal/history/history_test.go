package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-lee/FalseClose/internal/model"
)

// recorder is an Applier that remembers what it was asked to replay.
type recorder struct {
	applied []model.Change
	err     error
}

func (r *recorder) Replay(c model.Change) error {
	r.applied = append(r.applied, c)
	return r.err
}

func addChange(id string) model.Change {
	return model.Change{
		Kind:        model.ChangeAdd,
		PageID:      "p1",
		ComponentID: id,
		Nodes:       []*model.Node{{ID: id, Type: "Text"}},
		Index:       -1,
	}
}

func TestNewEngineIsEmpty(t *testing.T) {
	e := New()
	assert.Equal(t, -1, e.Pointer())
	assert.Equal(t, 0, e.Len())
	assert.Equal(t, DefaultMaxEntries, e.Max())
	assert.False(t, e.CanUndo())
	assert.False(t, e.CanRedo())
}

func TestRecordAdvancesPointer(t *testing.T) {
	e := New()
	e.Record(addChange("a"))
	e.Record(addChange("b"))
	assert.Equal(t, 1, e.Pointer())
	assert.Equal(t, 2, e.Len())
	assert.True(t, e.CanUndo())
	assert.False(t, e.CanRedo())
}

func TestUndoAppliesInverse(t *testing.T) {
	e := New()
	e.Record(addChange("a"))

	r := &recorder{}
	ok, err := e.Undo(r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -1, e.Pointer())
	require.Len(t, r.applied, 1)
	assert.Equal(t, model.ChangeDelete, r.applied[0].Kind)
	assert.Equal(t, "a", r.applied[0].ComponentID)
}

func TestUndoAtStartIsNoop(t *testing.T) {
	e := New()
	r := &recorder{}
	ok, err := e.Undo(r)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, r.applied)
}

func TestUndoFirstEntry(t *testing.T) {
	// Pointer 0 still has an entry to undo.
	e := New()
	e.Record(addChange("a"))
	require.Equal(t, 0, e.Pointer())
	assert.True(t, e.CanUndo())

	ok, err := e.Undo(&recorder{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedoAppliesForward(t *testing.T) {
	e := New()
	e.Record(addChange("a"))
	r := &recorder{}
	_, err := e.Undo(r)
	require.NoError(t, err)

	ok, err := e.Redo(r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, e.Pointer())
	require.Len(t, r.applied, 2)
	assert.Equal(t, model.ChangeAdd, r.applied[1].Kind)

	ok, err = e.Redo(r)
	require.NoError(t, err)
	assert.False(t, ok, "nothing left to redo")
}

func TestScenarioAddAddUndoUndo(t *testing.T) {
	e := New()
	e.Record(addChange("a"))
	e.Record(addChange("b"))

	r := &recorder{}
	_, _ = e.Undo(r)
	_, _ = e.Undo(r)
	assert.Equal(t, -1, e.Pointer())
	require.Len(t, r.applied, 2)
	assert.Equal(t, "b", r.applied[0].ComponentID)
	assert.Equal(t, "a", r.applied[1].ComponentID)
}

func TestRecordPrunesRedoBranch(t *testing.T) {
	e := New()
	e.Record(addChange("a"))
	_, _ = e.Undo(&recorder{})
	e.Record(addChange("b"))

	assert.Equal(t, 1, e.Len())
	assert.Equal(t, 0, e.Pointer())
	assert.False(t, e.CanRedo())
	assert.Equal(t, "b", e.Entries()[0].ComponentID)
}

func TestRecordEvictsOldestAtCap(t *testing.T) {
	e := New(WithMaxEntries(3))
	for i := range 5 {
		e.Record(addChange(fmt.Sprintf("n%d", i)))
	}
	assert.Equal(t, 3, e.Len())
	assert.Equal(t, 2, e.Pointer(), "pointer stays pinned at the last index")

	var ids []string
	for _, c := range e.Entries() {
		ids = append(ids, c.ComponentID)
	}
	assert.Equal(t, []string{"n2", "n3", "n4"}, ids)
}

func TestDefaultCapIsFifty(t *testing.T) {
	e := New()
	for i := range 60 {
		e.Record(addChange(fmt.Sprintf("n%d", i)))
	}
	assert.Equal(t, 50, e.Len())
	assert.Equal(t, 49, e.Pointer())
	assert.Equal(t, "n10", e.Entries()[0].ComponentID)
}

func TestWithMaxEntriesIgnoresNonPositive(t *testing.T) {
	assert.Equal(t, DefaultMaxEntries, New(WithMaxEntries(0)).Max())
}

func TestRecordStoresCopies(t *testing.T) {
	e := New()
	c := addChange("a")
	e.Record(c)
	c.Nodes[0].Type = "Mutated"

	assert.Equal(t, "Text", e.Entries()[0].Nodes[0].Type)
}

func TestApplierErrorStillMovesPointer(t *testing.T) {
	e := New()
	e.Record(addChange("a"))

	boom := errors.New("boom")
	ok, err := e.Undo(&recorder{err: boom})
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, -1, e.Pointer())
}

func TestClear(t *testing.T) {
	e := New()
	e.Record(addChange("a"))
	e.Record(addChange("b"))
	e.Clear()
	assert.Equal(t, -1, e.Pointer())
	assert.Equal(t, 0, e.Len())
	assert.False(t, e.CanUndo())
}
