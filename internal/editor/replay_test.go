package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-lee/FalseClose/internal/model"
)

// Scenario: add A, add B, undo, undo.
func TestUndoTwoAdds(t *testing.T) {
	c, page := newTestContext(t)
	a, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)
	b, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)

	ok, err := c.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = c.Undo()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, -1, c.HistoryPointer())
	_, found := c.Node(page, a)
	assert.False(t, found)
	_, found = c.Node(page, b)
	assert.False(t, found)
	assert.Equal(t, 2, c.HistoryLen(), "undo keeps entries for redo")

	ok, err = c.Undo()
	require.NoError(t, err)
	assert.False(t, ok)
}

// Scenario: add A, delete A, undo the delete.
func TestUndoDeleteRestoresNode(t *testing.T) {
	c, page := newTestContext(t)
	a, _ := c.CreateNode(page, "Button", label("Click"),
		model.NewMap(model.P("width", model.String("100px"))), "", -1)
	original, _ := c.Node(page, a)

	_, err := c.DeleteNode(page, a)
	require.NoError(t, err)
	_, err = c.Undo()
	require.NoError(t, err)

	restored, ok := c.Node(page, a)
	require.True(t, ok)
	assert.True(t, original.Equal(restored))
}

// Scenario: move X from root 0 under Y at 0, undo.
func TestUndoMoveRestoresRootOrder(t *testing.T) {
	c, page := newTestContext(t)
	x, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)
	y, _ := c.CreateNode(page, "Container", model.Map{}, model.Map{}, "", -1)
	before, _ := c.Page(page)

	require.NoError(t, c.MoveNode(page, x, y, 0))
	_, err := c.Undo()
	require.NoError(t, err)

	after, _ := c.Page(page)
	assert.Equal(t, before.RootOrder, after.RootOrder)
	assert.Equal(t, []string{x, y}, after.RootOrder)
	assert.Empty(t, after.Node(y).Children)
	assert.True(t, after.Node(x).IsRoot())
}

func TestUndoDeleteRestoresNestedSubtree(t *testing.T) {
	c, page := newTestContext(t)
	first, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)
	box, _ := c.CreateNode(page, "Container", model.Map{}, model.Map{}, "", -1)
	_, _ = c.CreateNode(page, "Text", label("a"), model.Map{}, box, -1)
	row, _ := c.CreateNode(page, "Flex", model.Map{}, model.Map{}, box, -1)
	_, _ = c.CreateNode(page, "Button", label("b"), model.Map{}, row, -1)
	_, _ = c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)
	before := snapshot(t, c, page)

	_, err := c.DeleteNode(page, box)
	require.NoError(t, err)
	_, err = c.Undo()
	require.NoError(t, err)

	assert.Equal(t, before, snapshot(t, c, page))
	p, _ := c.Page(page)
	assert.Equal(t, first, p.RootOrder[0])
	assert.Equal(t, box, p.RootOrder[1], "subtree returns to its old position")
	requireValid(t, c)
}

func TestEveryMutationRoundTrips(t *testing.T) {
	type step struct {
		name string
		run  func(c *ProjectContext, page string, ids map[string]string) error
	}

	steps := []step{
		{"create root", func(c *ProjectContext, page string, _ map[string]string) error {
			_, err := c.CreateNode(page, "Text", label("x"), model.Map{}, "", 1)
			return err
		}},
		{"create child", func(c *ProjectContext, page string, ids map[string]string) error {
			_, err := c.CreateNode(page, "Text", model.Map{}, model.Map{}, ids["box"], 0)
			return err
		}},
		{"delete leaf", func(c *ProjectContext, page string, ids map[string]string) error {
			_, err := c.DeleteNode(page, ids["btn"])
			return err
		}},
		{"delete subtree", func(c *ProjectContext, page string, ids map[string]string) error {
			_, err := c.DeleteNode(page, ids["box"])
			return err
		}},
		{"update props", func(c *ProjectContext, page string, ids map[string]string) error {
			props := model.NewMap(model.P("text", model.String("new")))
			return c.UpdateNode(page, ids["btn"], NodeUpdate{Props: &props})
		}},
		{"update type and events", func(c *ProjectContext, page string, ids map[string]string) error {
			typ := "Link"
			events := model.NewEvents("click", model.EventBinding{Action: model.ActionCustomCode,
				Params: model.NewMap(model.P("code", model.String("alert(1)")))})
			return c.UpdateNode(page, ids["btn"], NodeUpdate{Type: &typ, Events: &events})
		}},
		{"move to root", func(c *ProjectContext, page string, ids map[string]string) error {
			return c.MoveNode(page, ids["btn"], "", 0)
		}},
		{"move across parents", func(c *ProjectContext, page string, ids map[string]string) error {
			return c.MoveNode(page, ids["img"], ids["row"], 0)
		}},
		{"move within parent", func(c *ProjectContext, page string, ids map[string]string) error {
			return c.MoveNode(page, ids["row"], ids["box"], -1)
		}},
	}

	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			c, page := newTestContext(t)
			ids := map[string]string{}
			ids["box"], _ = c.CreateNode(page, "Container", model.Map{}, model.Map{}, "", -1)
			ids["row"], _ = c.CreateNode(page, "Flex", model.Map{}, model.Map{}, ids["box"], -1)
			ids["btn"], _ = c.CreateNode(page, "Button", label("Go"), model.Map{}, ids["row"], -1)
			ids["txt"], _ = c.CreateNode(page, "Text", model.Map{}, model.Map{}, ids["box"], -1)
			ids["img"], _ = c.CreateNode(page, "Image", model.Map{}, model.Map{}, "", -1)

			before := snapshot(t, c, page)
			require.NoError(t, s.run(c, page, ids))
			requireValid(t, c)
			after := snapshot(t, c, page)
			require.NotEqual(t, before, after)

			ok, err := c.Undo()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, before, snapshot(t, c, page), "undo restores the page")
			requireValid(t, c)

			ok, err = c.Redo()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, after, snapshot(t, c, page), "redo restores the edit")
			requireValid(t, c)
		})
	}
}

func TestEditAfterUndoPrunesRedo(t *testing.T) {
	c, page := newTestContext(t)
	a, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)
	_, _ = c.Undo()
	b, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)

	assert.False(t, c.CanRedo())
	ok, err := c.Redo()
	require.NoError(t, err)
	assert.False(t, ok)

	_, found := c.Node(page, a)
	assert.False(t, found, "A is gone for good")
	_, found = c.Node(page, b)
	assert.True(t, found)
}

func TestReplaySkipsVanishedTargets(t *testing.T) {
	c, page := newTestContext(t)
	a, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)
	require.NoError(t, c.SetProp(page, a, "text", model.String("x")))

	// Removing the page out from under the history leaves entries whose
	// targets are gone; replaying them must not fail.
	require.NoError(t, c.DeletePage(page))
	ok, err := c.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -1, c.HistoryPointer())
}

func TestUndoMarksDirty(t *testing.T) {
	c, page := newTestContext(t)
	_, _ = c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)
	c.MarkClean()

	_, err := c.Undo()
	require.NoError(t, err)
	assert.True(t, c.Dirty())
}

func TestReplayDoesNotRecord(t *testing.T) {
	c, page := newTestContext(t)
	require.NoError(t, c.Replay(model.Change{
		Kind:        model.ChangeAdd,
		PageID:      page,
		ComponentID: "ext",
		Nodes:       []*model.Node{{ID: "ext", Type: "Text"}},
		Index:       -1,
	}))

	_, ok := c.Node(page, "ext")
	assert.True(t, ok)
	assert.Equal(t, 0, c.HistoryLen())
}
