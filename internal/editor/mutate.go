package editor

import (
	"slices"

	"github.com/professor-lee/FalseClose/internal/model"
)

// CreateOption adjusts a node before it is inserted.
type CreateOption func(*model.Node)

// WithEvents attaches event bindings to the new node. They are copied.
func WithEvents(events model.Events) CreateOption {
	return func(n *model.Node) {
		n.Events = events.Clone()
	}
}

// Locked creates the node locked.
func Locked() CreateOption {
	return func(n *model.Node) {
		n.Locked = true
	}
}

// CreateNode adds a node of typeTag under parentID ("" for a root) at index
// and returns its id. index < 0 or past the end appends. props and styles
// are copied; later changes to the caller's maps do not reach the node.
func (c *ProjectContext) CreateNode(pageID, typeTag string, props, styles model.Map, parentID string, index int, opts ...CreateOption) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createNode(pageID, typeTag, props, styles, parentID, index, opts...)
}

// CreateFromRegistry adds a node of a registered type, initialized with the
// registry's default props and styles.
func (c *ProjectContext) CreateFromRegistry(pageID, typeTag, parentID string, index int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registry == nil {
		return "", invalidInput(pageID, "", "no component registry configured")
	}
	comp, ok := c.registry.Lookup(typeTag)
	if !ok {
		return "", invalidInput(pageID, "", "unknown component type %q", typeTag)
	}
	return c.createNode(pageID, typeTag, comp.DefaultProps, comp.DefaultStyles, parentID, index)
}

func (c *ProjectContext) createNode(pageID, typeTag string, props, styles model.Map, parentID string, index int, opts ...CreateOption) (string, error) {
	if typeTag == "" {
		return "", invalidInput(pageID, "", "component type is required")
	}
	if !c.store.HasPage(pageID) {
		return "", notFound(pageID, "", "page does not exist")
	}
	if err := c.checkParent(pageID, parentID); err != nil {
		return "", err
	}

	n := &model.Node{
		ID:       c.ids.Generate(),
		Type:     typeTag,
		ParentID: parentID,
		Props:    props.Clone(),
		Styles:   styles.Clone(),
	}
	for _, opt := range opts {
		opt(n)
	}

	_, err := c.apply(model.Change{
		Kind:        model.ChangeAdd,
		PageID:      pageID,
		ComponentID: n.ID,
		Nodes:       []*model.Node{n},
		ParentID:    parentID,
		Index:       index,
		Timestamp:   c.clock.Now(),
	}, false)
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// checkParent verifies that parentID exists and, when the registry knows
// its type, accepts children.
func (c *ProjectContext) checkParent(pageID, parentID string) error {
	if parentID == "" {
		return nil
	}
	parent, ok := c.store.Node(pageID, parentID)
	if !ok {
		return notFound(pageID, parentID, "parent does not exist")
	}
	if c.registry != nil {
		if can, known := c.registry.CanHaveChildren(parent.Type); known && !can {
			return invalidInput(pageID, parentID, "%s cannot have children", parent.Type)
		}
	}
	return nil
}

// DeleteNode removes a node and all of its descendants and returns the
// removed ids, root first. Deleting an absent node is a no-op.
func (c *ProjectContext) DeleteNode(pageID, nodeID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Node(pageID, nodeID); !ok {
		return nil, nil
	}
	applied, err := c.apply(model.Change{
		Kind:        model.ChangeDelete,
		PageID:      pageID,
		ComponentID: nodeID,
		Timestamp:   c.clock.Now(),
	}, false)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(applied.Nodes))
	for i, n := range applied.Nodes {
		ids[i] = n.ID
	}
	return ids, nil
}

// NodeUpdate is a partial update. Nil fields are left alone; a non-nil
// Props, Styles or Events replaces that whole map.
type NodeUpdate struct {
	Type   *string
	Props  *model.Map
	Styles *model.Map
	Events *model.Events
	Locked *bool
}

// UpdateNode shallow-merges u onto a node. Updating an absent node is a
// no-op.
func (c *ProjectContext) UpdateNode(pageID, nodeID string, u NodeUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateNode(pageID, nodeID, u)
}

func (c *ProjectContext) updateNode(pageID, nodeID string, u NodeUpdate) error {
	if u.Type != nil && *u.Type == "" {
		return invalidInput(pageID, nodeID, "component type cannot be empty")
	}
	before, ok := c.store.Node(pageID, nodeID)
	if !ok {
		return nil
	}

	after := before.Clone()
	if u.Type != nil {
		after.Type = *u.Type
	}
	if u.Props != nil {
		after.Props = u.Props.Clone()
	}
	if u.Styles != nil {
		after.Styles = u.Styles.Clone()
	}
	if u.Events != nil {
		after.Events = u.Events.Clone()
	}
	if u.Locked != nil {
		after.Locked = *u.Locked
	}

	_, err := c.apply(model.Change{
		Kind:        model.ChangeUpdate,
		PageID:      pageID,
		ComponentID: nodeID,
		Before:      before,
		After:       after,
		Timestamp:   c.clock.Now(),
	}, false)
	return err
}

// SetProp sets one prop, or removes it when v is nil, as a single update.
func (c *ProjectContext) SetProp(pageID, nodeID, key string, v model.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.store.Node(pageID, nodeID)
	if !ok {
		return nil
	}
	props := n.Props.Clone()
	if v == nil {
		props.Delete(key)
	} else {
		props.Set(key, model.CloneValue(v))
	}
	return c.updateNode(pageID, nodeID, NodeUpdate{Props: &props})
}

// SetStyle sets one style, or removes it when v is nil, as a single update.
func (c *ProjectContext) SetStyle(pageID, nodeID, key string, v model.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.store.Node(pageID, nodeID)
	if !ok {
		return nil
	}
	styles := n.Styles.Clone()
	if v == nil {
		styles.Delete(key)
	} else {
		styles.Set(key, model.CloneValue(v))
	}
	return c.updateNode(pageID, nodeID, NodeUpdate{Styles: &styles})
}

// MoveNode reparents a node under newParentID ("" for root) at the clamped
// index. Moving an absent node is a no-op. A missing parent is NOT_FOUND,
// and a parent that is the node itself or one of its descendants is
// CYCLE_REJECTED; neither changes the page.
func (c *ProjectContext) MoveNode(pageID, nodeID, newParentID string, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Node(pageID, nodeID); !ok {
		return nil
	}
	if newParentID != "" {
		if _, ok := c.store.Node(pageID, newParentID); !ok {
			return notFound(pageID, newParentID, "parent does not exist")
		}
		if newParentID == nodeID || slices.Contains(c.store.Descendants(pageID, nodeID), newParentID) {
			return &EditError{
				Code:    ErrCodeCycleRejected,
				Message: "cannot move a node under itself or its descendants",
				PageID:  pageID,
				NodeID:  nodeID,
			}
		}
		if err := c.checkParent(pageID, newParentID); err != nil {
			return err
		}
	}

	_, err := c.apply(model.Change{
		Kind:        model.ChangeMove,
		PageID:      pageID,
		ComponentID: nodeID,
		ParentID:    newParentID,
		Index:       index,
		Timestamp:   c.clock.Now(),
	}, false)
	return err
}

// apply is the single seam every node mutation goes through, live or
// replayed. It performs the change on the store, fills in what actually
// happened (clamped indices, removed nodes, previous location), marks the
// project dirty and publishes the result.
func (c *ProjectContext) apply(ch model.Change, replay bool) (model.Change, error) {
	applied := ch.Clone()

	switch ch.Kind {
	case model.ChangeAdd:
		nodes := make([]*model.Node, len(ch.Nodes))
		for i, n := range ch.Nodes {
			nodes[i] = n.Clone()
		}
		at, err := c.store.InsertSubtree(ch.PageID, nodes, ch.Index)
		if err != nil {
			return ch, fromStoreError(ch.PageID, ch.ComponentID, err)
		}
		applied.Index = at

	case model.ChangeDelete:
		removed, parentID, at, err := c.store.RemoveSubtree(ch.PageID, ch.ComponentID)
		if err != nil {
			return ch, fromStoreError(ch.PageID, ch.ComponentID, err)
		}
		applied.Nodes = make([]*model.Node, len(removed))
		for i, n := range removed {
			applied.Nodes[i] = n.Clone()
		}
		applied.ParentID = parentID
		applied.Index = at

	case model.ChangeUpdate:
		if ch.After == nil {
			return ch, invalidInput(ch.PageID, ch.ComponentID, "update without a post-image")
		}
		if err := c.store.ReplaceContent(ch.PageID, ch.After.Clone()); err != nil {
			return ch, fromStoreError(ch.PageID, ch.ComponentID, err)
		}

	case model.ChangeMove:
		oldParentID, oldIndex, newIndex, err := c.store.Move(ch.PageID, ch.ComponentID, ch.ParentID, ch.Index)
		if err != nil {
			return ch, fromStoreError(ch.PageID, ch.ComponentID, err)
		}
		applied.OldParentID = oldParentID
		applied.OldIndex = oldIndex
		applied.Index = newIndex

	default:
		return ch, invalidInput(ch.PageID, ch.ComponentID, "unknown change kind %q", ch.Kind)
	}

	c.dirty = true
	c.logger.Debug("node changed",
		"kind", applied.Kind,
		"page_id", applied.PageID,
		"node_id", applied.ComponentID,
		"replay", replay,
	)
	c.bus.Publish(Event{
		Type:   EventNodeChanged,
		PageID: applied.PageID,
		Change: &applied,
		Replay: replay,
	})
	return applied, nil
}
