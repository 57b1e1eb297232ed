package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/professor-lee/FalseClose/internal/model"
)

func TestSelectionClearsOnDelete(t *testing.T) {
	c, page := newTestContext(t)
	box, _ := c.CreateNode(page, "Container", model.Map{}, model.Map{}, "", -1)
	child, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, box, -1)
	other, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)

	sel := NewSelection(c)
	defer sel.Close()

	var notified []string
	sel.OnChange(func(id string) { notified = append(notified, id) })

	sel.Select(other)
	_, err := c.DeleteNode(page, box)
	require.NoError(t, err)
	assert.Equal(t, other, sel.Selected(), "unrelated deletes keep the selection")

	_, err = c.Undo()
	require.NoError(t, err)
	sel.Select(child)
	sel.Hover(child)
	_, err = c.DeleteNode(page, box)
	require.NoError(t, err)

	assert.Equal(t, "", sel.Selected(), "descendant of the deleted node")
	assert.Equal(t, "", sel.Hovered())
	assert.Equal(t, []string{other, child, ""}, notified)
}

func TestSelectionClearsOnUndoOfCreate(t *testing.T) {
	c, page := newTestContext(t)
	id, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)

	sel := NewSelection(c)
	defer sel.Close()
	sel.Select(id)

	_, err := c.Undo()
	require.NoError(t, err)
	assert.Equal(t, "", sel.Selected())
}

func TestSelectionClearsOnLoad(t *testing.T) {
	c, page := newTestContext(t)
	id, _ := c.CreateNode(page, "Text", model.Map{}, model.Map{}, "", -1)

	sel := NewSelection(c)
	sel.Select(id)
	c.Load(&model.Manifest{})
	assert.Equal(t, "", sel.Selected())

	sel.Close()
	sel.Select("x")
	c.Reset()
	assert.Equal(t, "x", sel.Selected(), "closed selections stop listening")
}
