// Package model provides the document types shared by every other package:
// tagged property values, insertion-ordered maps, component nodes, pages,
// project manifests and the change records captured by history.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Map and Events preserve insertion order; that order is the iteration
//     order used by code generation, so it must survive JSON and YAML decoding
//   - Every value handed across a package boundary is deep-copied with Clone;
//     a Node held by history never aliases a live Node
//   - Node.ParentID is "" for roots and encodes as JSON null
//   - Canonical JSON (sorted keys, NFC strings) is used only for hashing
package model
