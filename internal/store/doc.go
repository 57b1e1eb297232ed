// Package store provides SQLite-backed durable storage for page builder
// projects.
//
// The store holds two append-only tables:
//   - Revisions: full manifest snapshots, deduplicated against the latest
//     revision by model.ProjectHash
//   - Journal: every node change and page create/delete, in the order the
//     editor applied it, written by a Journal subscribed to the editor bus
//
// # Critical Patterns
//
// CP-1: Logical Identity and Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - A revision records the journal seq it was taken at, so the journal
//     between two revisions is exactly the edits that separate them
//
// CP-2: Deterministic Query Results
//   - All multi-row queries use ORDER BY seq ASC
//   - Empty results are empty slices, not nil
//
// CP-3: Replay Verification
//   - Rebuild replays journal entries through editor.ProjectContext.Replay,
//     the same seam undo and redo use
//   - Verify compares rebuilt pages with the stored snapshot by
//     model.PageHash
//
// # Database Configuration
//
// Connections open in WAL mode with synchronous=NORMAL and a 5 second busy
// timeout. The schema version lives in PRAGMA user_version; Open creates a
// fresh database from schema.sql and upgrades older ones in place.
package store
