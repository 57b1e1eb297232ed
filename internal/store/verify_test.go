package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/testutil"
)

func TestVerify_JournalRebuildsLatestRevision(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	c, j := newJournaledEditor(t, s)

	_, _, err := s.SaveRevision(ctx, c.Manifest(), OriginOpen, testutil.Epoch)
	require.NoError(t, err)

	// A mix of live edits, undo/redo and page management.
	id, err := c.CreateNode("home", "Text", model.NewMap(model.P("text", model.String("a"))), model.Map{}, "box", -1)
	require.NoError(t, err)
	require.NoError(t, c.MoveNode("home", id, "", 0))
	_, err = c.Undo()
	require.NoError(t, err)
	_, err = c.Redo()
	require.NoError(t, err)
	_, err = c.DeleteNode("home", "box")
	require.NoError(t, err)
	about, err := c.CreatePage("About", "/about")
	require.NoError(t, err)
	_, err = c.CreateNode(about, "Heading", model.NewMap(model.P("text", model.String("About"))), model.Map{}, "", -1)
	require.NoError(t, err)
	require.NoError(t, j.Err())

	_, created, err := s.SaveRevision(ctx, c.Manifest(), OriginSave, testutil.Epoch)
	require.NoError(t, err)
	require.True(t, created)

	segments, err := s.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.True(t, segments[0].OK(), "%+v", segments[0])
	assert.Equal(t, int64(1), segments[0].From)
	assert.Equal(t, int64(2), segments[0].To)
	assert.Equal(t, 7, segments[0].Entries)
}

func TestVerify_DetectsTamperedSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	c, _ := newJournaledEditor(t, s)

	_, _, err := s.SaveRevision(ctx, c.Manifest(), OriginOpen, testutil.Epoch)
	require.NoError(t, err)
	require.NoError(t, c.SetProp("home", "btn", "label", model.String("Journaled")))

	// Save something the journal does not explain.
	m := c.Manifest()
	m.Pages[0].Node("btn").Props.Set("label", model.String("Tampered"))
	_, _, err = s.SaveRevision(ctx, m, OriginSave, testutil.Epoch)
	require.NoError(t, err)

	segments, err := s.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.False(t, segments[0].OK())
	require.Len(t, segments[0].Mismatches, 1)
	assert.Equal(t, "home", segments[0].Mismatches[0].PageID)
}

func TestVerify_SkipsSegmentsEndingAtOpen(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveRevision(ctx, sampleManifest(), OriginSave, testutil.Epoch)
	require.NoError(t, err)

	// Edited on disk between sessions: nothing in the journal.
	m := sampleManifest()
	m.Pages[0].Name = "Edited elsewhere"
	_, _, err = s.SaveRevision(ctx, m, OriginOpen, testutil.Epoch)
	require.NoError(t, err)

	segments, err := s.Verify(ctx)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestRebuild_ReportsBrokenJournal(t *testing.T) {
	_, err := Rebuild(sampleManifest(), []Entry{{Seq: 7, Kind: EntryAdd}})
	assert.ErrorContains(t, err, "journal 7")

	// Replaying a change onto a missing node is a no-op, not an error.
	got, err := Rebuild(sampleManifest(), []Entry{{
		Seq:    1,
		Kind:   EntryDelete,
		Change: &model.Change{Kind: model.ChangeDelete, PageID: "home", ComponentID: "ghost"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, len(got.Pages[0].Nodes))
}
