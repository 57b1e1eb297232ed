package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// ActionKind identifies what an event binding does when its event fires.
type ActionKind string

const (
	// ActionNavigate pushes params.path onto the router.
	ActionNavigate ActionKind = "navigate"

	// ActionToggleVisibility shows or hides the node named by params.targetId.
	ActionToggleVisibility ActionKind = "toggle-visibility"

	// ActionCustomCode runs the user-supplied params.code block.
	ActionCustomCode ActionKind = "custom-code"
)

// legacyActions maps action names written by older manifests.
var legacyActions = map[string]ActionKind{
	"navigateTo":      ActionNavigate,
	"toggleComponent": ActionToggleVisibility,
	"customCode":      ActionCustomCode,
}

// ParseActionKind normalizes an action name. Legacy names map onto the
// current constants; unknown names are kept verbatim so they round-trip.
func ParseActionKind(s string) ActionKind {
	if kind, ok := legacyActions[s]; ok {
		return kind
	}
	return ActionKind(s)
}

// Known reports whether k is one of the defined action kinds.
func (k ActionKind) Known() bool {
	switch k {
	case ActionNavigate, ActionToggleVisibility, ActionCustomCode:
		return true
	}
	return false
}

// EventBinding attaches an action to a component event.
// An empty Action means the event is declared but not wired.
type EventBinding struct {
	Action ActionKind `json:"action" yaml:"action"`
	Params Map        `json:"params" yaml:"params"`
}

// Clone returns a deep copy.
func (b EventBinding) Clone() EventBinding {
	return EventBinding{Action: b.Action, Params: b.Params.Clone()}
}

// Equal reports deep equality.
func (b EventBinding) Equal(other EventBinding) bool {
	return b.Action == other.Action && b.Params.Equal(other.Params)
}

// UnmarshalJSON normalizes legacy action names.
func (b *EventBinding) UnmarshalJSON(data []byte) error {
	var aux struct {
		Action string `json:"action"`
		Params Map    `json:"params"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = EventBinding{Action: ParseActionKind(aux.Action), Params: aux.Params}
	return nil
}

// UnmarshalYAML normalizes legacy action names.
func (b *EventBinding) UnmarshalYAML(node *yaml.Node) error {
	var aux struct {
		Action string `yaml:"action"`
		Params Map    `yaml:"params"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*b = EventBinding{Action: ParseActionKind(aux.Action), Params: aux.Params}
	return nil
}

// Events maps event names ("click", "change") to bindings, in insertion order.
type Events struct {
	ordered[EventBinding]
}

// NewEvents returns Events holding a single binding.
func NewEvents(name string, binding EventBinding) Events {
	var e Events
	e.Set(name, binding)
	return e
}

// Clone returns a deep copy.
func (e Events) Clone() Events {
	return Events{e.clone(EventBinding.Clone)}
}

// Equal reports deep equality including order.
func (e Events) Equal(other Events) bool {
	return e.equal(other.ordered, EventBinding.Equal)
}

// MarshalJSON writes events as an object in insertion order.
func (e Events) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(e.vals[name])
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", name, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping order. null and [] (what older
// manifests wrote for "no events") decode to an empty set.
func (e *Events) UnmarshalJSON(data []byte) error {
	*e = Events{}
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "null", "[]":
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("events: expected JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("events: key must be a string, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("event %q: %w", name, err)
		}
		if string(bytes.TrimSpace(raw)) == "null" {
			continue
		}
		var binding EventBinding
		if err := json.Unmarshal(raw, &binding); err != nil {
			return fmt.Errorf("event %q: %w", name, err)
		}
		e.Set(name, binding)
	}
	_, err = dec.Token()
	return err
}

// UnmarshalYAML reads a mapping keeping order.
func (e *Events) UnmarshalYAML(node *yaml.Node) error {
	*e = Events{}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return nil
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			name := node.Content[i].Value
			var binding EventBinding
			if err := node.Content[i+1].Decode(&binding); err != nil {
				return fmt.Errorf("event %q: %w", name, err)
			}
			e.Set(name, binding)
		}
		return nil
	}
	return fmt.Errorf("line %d: events must be a mapping", node.Line)
}

// Node is one component instance on a page.
type Node struct {
	ID       string
	Type     string
	ParentID string // "" for roots
	Props    Map
	Styles   Map
	Events   Events
	Children []string
	Locked   bool
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// Clone returns a deep copy that shares nothing with n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{
		ID:       n.ID,
		Type:     n.Type,
		ParentID: n.ParentID,
		Props:    n.Props.Clone(),
		Styles:   n.Styles.Clone(),
		Events:   n.Events.Clone(),
		Children: cloneIDs(n.Children),
		Locked:   n.Locked,
	}
}

// Equal reports deep equality of every field.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.ID == other.ID &&
		n.Type == other.Type &&
		n.ParentID == other.ParentID &&
		n.Locked == other.Locked &&
		slices.Equal(n.Children, other.Children) &&
		n.Props.Equal(other.Props) &&
		n.Styles.Equal(other.Styles) &&
		n.Events.Equal(other.Events)
}

// nodeJSON is the persisted shape of a Node.
type nodeJSON struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	ParentID *string  `json:"parentId"`
	Props    Map      `json:"props"`
	Styles   Map      `json:"styles"`
	Events   Events   `json:"events"`
	Children []string `json:"children"`
	Locked   bool     `json:"locked"`
}

// MarshalJSON writes parentId as null for roots and children as [] when empty.
func (n Node) MarshalJSON() ([]byte, error) {
	aux := nodeJSON{
		ID:       n.ID,
		Type:     n.Type,
		Props:    n.Props,
		Styles:   n.Styles,
		Events:   n.Events,
		Children: n.Children,
		Locked:   n.Locked,
	}
	if n.ParentID != "" {
		parent := n.ParentID
		aux.ParentID = &parent
	}
	if aux.Children == nil {
		aux.Children = []string{}
	}
	return json.Marshal(aux)
}

// UnmarshalJSON accepts null or missing parentId for roots.
func (n *Node) UnmarshalJSON(data []byte) error {
	var aux nodeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Node{
		ID:       aux.ID,
		Type:     aux.Type,
		Props:    aux.Props,
		Styles:   aux.Styles,
		Events:   aux.Events,
		Children: aux.Children,
		Locked:   aux.Locked,
	}
	if aux.ParentID != nil {
		n.ParentID = *aux.ParentID
	}
	if len(n.Children) == 0 {
		n.Children = nil
	}
	return nil
}

func cloneIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return slices.Clone(ids)
}
