// Package harness runs scripted edit scenarios against the editor.
//
// A scenario builds a project, applies a list of edits through the
// Mutation API and checks the resulting trees, history and generated code.
// The same step format drives `pagebuilder apply` on a real project.
//
// # Scenario Format
//
//	name: delete_then_undo
//	description: "Undo of a delete restores the node with its id"
//	project:                  # optional, default is one page "home" at "/"
//	  ui_library: element-plus
//	  pages:
//	    - {id: home, name: Home, route: /}
//	steps:
//	  - op: create
//	    type: Container
//	    as: box               # binds the generated id to "box"
//	  - op: create
//	    type: Text
//	    parent: box
//	    index: 0
//	    props: {text: hi}
//	    as: txt
//	  - op: delete
//	    node: box
//	  - op: move
//	    node: ghost
//	    parent: missing
//	    expect_error: NOT_FOUND
//	  - op: undo
//	assertions:
//	  - {type: node_exists, node: txt}
//	  - {type: children, node: box, nodes: [txt]}
//	  - {type: history, pointer: 1, can_redo: true}
//	  - {type: markup_contains, text: "<span>hi</span>"}
//
// Node and page references in steps and assertions are aliases bound with
// "as"; anything that is not an alias is used as a literal id. Steps act
// on the current page unless "page" is given.
//
// # Step Operations
//
//   - create: type, parent, index, props, styles, events, defaults
//   - delete, update (type, props, styles, events), set_prop, set_style
//     (key, value), move (parent, index)
//   - undo, redo
//   - create_page (name, route), delete_page, switch_page
//
// # Assertion Types
//
//   - node_exists, node_absent, node_type
//   - children, root_order, descendants
//   - prop, style, node_count
//   - history (pointer, length, can_undo, can_redo)
//   - markup_contains, markup_excludes, script_contains, style_contains
//   - valid: every structural invariant holds
//
// # Deterministic Testing
//
// Run uses testutil.SequenceIDs ("n1", "n2", ...) and a FixedClock, so a
// scenario always produces the same ids and a trace suitable for golden
// comparison.
package harness
