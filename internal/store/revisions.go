package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/professor-lee/FalseClose/internal/model"
)

// ErrNotFound is returned when a requested revision does not exist.
var ErrNotFound = errors.New("not found")

// Origin records why a revision was taken.
type Origin string

const (
	// OriginOpen marks the snapshot taken when a project is opened. It starts
	// a new journal segment: edits made outside the editor since the previous
	// revision are not in the journal.
	OriginOpen Origin = "open"

	// OriginSave marks snapshots taken by saves and autosaves.
	OriginSave Origin = "save"
)

// Revision is one stored manifest snapshot.
type Revision struct {
	Seq       int64
	Hash      string
	Origin    Origin
	PageCount int
	NodeCount int

	// JournalSeq is the last journal entry applied before the snapshot.
	JournalSeq int64
	CreatedAt  time.Time

	// Manifest is nil in listings.
	Manifest *model.Manifest
}

// SaveRevision stores a snapshot of m unless the latest revision already
// holds the same content (by model.ProjectHash). It returns the revision
// that now represents m and whether a new row was written.
func (s *Store) SaveRevision(ctx context.Context, m *model.Manifest, origin Origin, at time.Time) (Revision, bool, error) {
	hash, err := model.ProjectHash(m)
	if err != nil {
		return Revision{}, false, fmt.Errorf("hash manifest: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	latest, err := scanRevision(tx.QueryRowContext(ctx, selectRevision+`
		ORDER BY seq DESC LIMIT 1
	`), true)
	switch {
	case err == nil && latest.Hash == hash:
		return latest, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return Revision{}, false, err
	}

	var journalSeq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&journalSeq); err != nil {
		return Revision{}, false, fmt.Errorf("query journal head: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return Revision{}, false, fmt.Errorf("marshal manifest: %w", err)
	}

	rev := Revision{
		Hash:       hash,
		Origin:     origin,
		PageCount:  len(m.Pages),
		NodeCount:  countNodes(m),
		JournalSeq: journalSeq,
		CreatedAt:  at.UTC(),
		Manifest:   m.Clone(),
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (hash, origin, manifest, page_count, node_count, journal_seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rev.Hash, string(rev.Origin), string(data), rev.PageCount, rev.NodeCount, rev.JournalSeq, rev.CreatedAt.Format(timeLayout))
	if err != nil {
		return Revision{}, false, fmt.Errorf("insert revision: %w", err)
	}
	if rev.Seq, err = res.LastInsertId(); err != nil {
		return Revision{}, false, fmt.Errorf("revision seq: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Revision{}, false, fmt.Errorf("commit: %w", err)
	}
	return rev, true, nil
}

// LatestRevision returns the newest revision with its manifest.
// Returns ErrNotFound when the store is empty.
func (s *Store) LatestRevision(ctx context.Context) (Revision, error) {
	return scanRevision(s.db.QueryRowContext(ctx, selectRevision+`
		ORDER BY seq DESC LIMIT 1
	`), true)
}

// Revision returns one revision with its manifest.
func (s *Store) Revision(ctx context.Context, seq int64) (Revision, error) {
	rev, err := scanRevision(s.db.QueryRowContext(ctx, selectRevision+`
		WHERE seq = ?
	`, seq), true)
	if err != nil {
		return Revision{}, fmt.Errorf("revision %d: %w", seq, err)
	}
	return rev, nil
}

// ListRevisions returns every revision oldest first, without manifests.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListRevisions(ctx context.Context) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, selectRevision+`
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	revs := make([]Revision, 0)
	for rows.Next() {
		rev, err := scanRevision(rows, false)
		if err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revs, nil
}

// PruneRevisions keeps the newest keep revisions and drops the rest, along
// with journal entries that only older revisions needed.
// Returns the number of revisions removed.
func (s *Store) PruneRevisions(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("prune: keep must be at least 1, got %d", keep)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var cutoff, cutoffJournal sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT seq, journal_seq FROM revisions
		ORDER BY seq DESC LIMIT 1 OFFSET ?
	`, keep-1).Scan(&cutoff, &cutoffJournal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query prune cutoff: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM revisions WHERE seq < ?`, cutoff.Int64)
	if err != nil {
		return 0, fmt.Errorf("delete revisions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM journal WHERE seq <= ?`, cutoffJournal.Int64); err != nil {
		return 0, fmt.Errorf("delete journal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

const selectRevision = `
	SELECT seq, hash, origin, page_count, node_count, journal_seq, created_at, manifest
	FROM revisions
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner, withManifest bool) (Revision, error) {
	var (
		rev       Revision
		origin    string
		createdAt string
		manifest  string
	)
	err := row.Scan(&rev.Seq, &rev.Hash, &origin, &rev.PageCount, &rev.NodeCount, &rev.JournalSeq, &createdAt, &manifest)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, ErrNotFound
	}
	if err != nil {
		return Revision{}, fmt.Errorf("scan revision: %w", err)
	}
	rev.Origin = Origin(origin)
	if rev.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Revision{}, fmt.Errorf("revision %d: parse created_at: %w", rev.Seq, err)
	}
	if withManifest {
		var m model.Manifest
		if err := json.Unmarshal([]byte(manifest), &m); err != nil {
			return Revision{}, fmt.Errorf("revision %d: decode manifest: %w", rev.Seq, err)
		}
		rev.Manifest = &m
	}
	return rev, nil
}

func countNodes(m *model.Manifest) int {
	n := 0
	for _, p := range m.Pages {
		n += len(p.Nodes)
	}
	return n
}
