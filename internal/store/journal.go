package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/professor-lee/FalseClose/internal/editor"
	"github.com/professor-lee/FalseClose/internal/model"
)

// EntryKind is the journal entry type. Node kinds reuse model.ChangeKind.
type EntryKind string

const (
	EntryAdd        = EntryKind(model.ChangeAdd)
	EntryDelete     = EntryKind(model.ChangeDelete)
	EntryUpdate     = EntryKind(model.ChangeUpdate)
	EntryMove       = EntryKind(model.ChangeMove)
	EntryPageCreate EntryKind = "page_create"
	EntryPageDelete EntryKind = "page_delete"
)

// Entry is one journaled project change.
type Entry struct {
	Seq    int64
	Kind   EntryKind
	PageID string
	NodeID string

	// Replay is true for changes applied by undo or redo.
	Replay     bool
	RecordedAt time.Time

	// Change is set for node kinds, Page for EntryPageCreate.
	Change *model.Change
	Page   *model.Page
}

// AppendEntry writes e and returns its sequence number.
func (s *Store) AppendEntry(ctx context.Context, e Entry) (int64, error) {
	var payload any = struct{}{}
	switch {
	case e.Change != nil:
		payload = e.Change
	case e.Page != nil:
		payload = e.Page
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal %s payload: %w", e.Kind, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (kind, page_id, node_id, replay, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(e.Kind), e.PageID, e.NodeID, boolToInt(e.Replay), string(data), e.RecordedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert journal entry: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("journal seq: %w", err)
	}
	return seq, nil
}

// ReadJournal returns entries with after < seq <= upTo in seq order.
// upTo <= 0 means no upper bound. Returns an empty slice (not nil) when
// nothing matches.
func (s *Store) ReadJournal(ctx context.Context, after, upTo int64) ([]Entry, error) {
	query := `
		SELECT seq, kind, page_id, node_id, replay, payload, recorded_at
		FROM journal
		WHERE seq > ?`
	args := []any{after}
	if upTo > 0 {
		query += ` AND seq <= ?`
		args = append(args, upTo)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e          Entry
			kind       string
			replay     int
			payload    string
			recordedAt string
		)
		if err := rows.Scan(&e.Seq, &kind, &e.PageID, &e.NodeID, &replay, &payload, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Kind = EntryKind(kind)
		e.Replay = replay != 0
		if e.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("journal %d: parse recorded_at: %w", e.Seq, err)
		}
		if err := decodePayload(&e, payload); err != nil {
			return nil, fmt.Errorf("journal %d: %w", e.Seq, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// JournalHead returns the highest journal seq, 0 when the journal is empty.
func (s *Store) JournalHead(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query journal head: %w", err)
	}
	return seq, nil
}

func decodePayload(e *Entry, payload string) error {
	switch e.Kind {
	case EntryAdd, EntryDelete, EntryUpdate, EntryMove:
		var ch model.Change
		if err := json.Unmarshal([]byte(payload), &ch); err != nil {
			return fmt.Errorf("decode change: %w", err)
		}
		e.Change = &ch
	case EntryPageCreate:
		var p model.Page
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return fmt.Errorf("decode page: %w", err)
		}
		e.Page = &p
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Journal writes editor events to the store. Subscribe its Handle method
// on a ProjectContext.
//
// Handlers run under the editor lock, so a write failure cannot be
// returned to the caller of the edit. The first failure is kept and
// reported by Err; later events are still attempted.
type Journal struct {
	store  *Store
	clock  editor.Clock
	logger *slog.Logger

	mu      sync.Mutex
	err     error
	written int
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithJournalClock sets the clock used to stamp page events.
func WithJournalClock(c editor.Clock) JournalOption {
	return func(j *Journal) {
		j.clock = c
	}
}

// WithJournalLogger sets the logger.
func WithJournalLogger(l *slog.Logger) JournalOption {
	return func(j *Journal) {
		j.logger = l
	}
}

// NewJournal creates a journal writing to s.
func NewJournal(s *Store, opts ...JournalOption) *Journal {
	j := &Journal{store: s, clock: editor.SystemClock{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Handle is an editor.Handler.
func (j *Journal) Handle(ev editor.Event) {
	e, ok := j.entryFor(ev)
	if !ok {
		return
	}
	seq, err := j.store.AppendEntry(context.Background(), e)

	j.mu.Lock()
	defer j.mu.Unlock()
	if err != nil {
		j.logger.Error("journal write failed", "kind", e.Kind, "page_id", e.PageID, "error", err)
		if j.err == nil {
			j.err = err
		}
		return
	}
	j.written++
	j.logger.Debug("journaled", "seq", seq, "kind", e.Kind, "page_id", e.PageID, "node_id", e.NodeID)
}

// Err returns the first write failure, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Written returns the number of entries written.
func (j *Journal) Written() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.written
}

func (j *Journal) entryFor(ev editor.Event) (Entry, bool) {
	switch ev.Type {
	case editor.EventNodeChanged:
		if ev.Change == nil {
			return Entry{}, false
		}
		at := ev.Change.Timestamp
		if at.IsZero() {
			at = j.clock.Now()
		}
		return Entry{
			Kind:       EntryKind(ev.Change.Kind),
			PageID:     ev.PageID,
			NodeID:     ev.Change.ComponentID,
			Replay:     ev.Replay,
			RecordedAt: at,
			Change:     ev.Change,
		}, true
	case editor.EventPageCreated:
		return Entry{Kind: EntryPageCreate, PageID: ev.PageID, RecordedAt: j.clock.Now(), Page: ev.Page}, true
	case editor.EventPageDeleted:
		return Entry{Kind: EntryPageDelete, PageID: ev.PageID, RecordedAt: j.clock.Now()}, true
	}
	return Entry{}, false
}
