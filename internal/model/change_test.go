package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeInverse(t *testing.T) {
	node := &Node{ID: "a", Type: "Text"}

	t.Run("add and delete swap", func(t *testing.T) {
		c := Change{Kind: ChangeAdd, PageID: "p", ComponentID: "a", Nodes: []*Node{node}, Index: 2}
		inv := c.Inverse()
		assert.Equal(t, ChangeDelete, inv.Kind)
		assert.Equal(t, 2, inv.Index)
		assert.Equal(t, ChangeAdd, inv.Inverse().Kind)
	})

	t.Run("update swaps images", func(t *testing.T) {
		before := &Node{ID: "a", Type: "Text", Props: NewMap(P("text", String("old")))}
		after := &Node{ID: "a", Type: "Text", Props: NewMap(P("text", String("new")))}
		c := Change{Kind: ChangeUpdate, ComponentID: "a", Before: before, After: after}
		inv := c.Inverse()
		assert.True(t, inv.Before.Equal(after))
		assert.True(t, inv.After.Equal(before))
	})

	t.Run("move swaps locations", func(t *testing.T) {
		c := Change{Kind: ChangeMove, ComponentID: "a", ParentID: "y", Index: 0, OldParentID: "", OldIndex: 3}
		inv := c.Inverse()
		assert.Equal(t, "", inv.ParentID)
		assert.Equal(t, 3, inv.Index)
		assert.Equal(t, "y", inv.OldParentID)
		assert.Equal(t, 0, inv.OldIndex)
	})
}

func TestChangeCloneDoesNotAlias(t *testing.T) {
	c := Change{
		Kind:   ChangeDelete,
		Nodes:  []*Node{{ID: "a", Props: NewMap(P("k", String("v")))}},
		Before: &Node{ID: "a"},
	}
	cp := c.Clone()
	cp.Nodes[0].Props.Set("k", String("changed"))
	cp.Before.Type = "Changed"

	assert.Equal(t, "v", c.Nodes[0].Props.GetString("k"))
	assert.Equal(t, "", c.Before.Type)
}
