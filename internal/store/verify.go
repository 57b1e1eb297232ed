package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/professor-lee/FalseClose/internal/editor"
	"github.com/professor-lee/FalseClose/internal/model"
)

// Segment is the verification result for one pair of consecutive revisions:
// the older one plus the journal between them should rebuild the newer one.
type Segment struct {
	From    int64 `json:"from"`
	To      int64 `json:"to"`
	Entries int   `json:"entries"`

	Mismatches []PageMismatch `json:"mismatches,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// OK reports whether the segment rebuilt exactly.
func (s Segment) OK() bool {
	return s.Error == "" && len(s.Mismatches) == 0
}

// PageMismatch names a page whose rebuilt content differs from the stored
// snapshot. An empty hash means the page is missing on that side.
type PageMismatch struct {
	PageID string `json:"page_id"`
	Want   string `json:"want"`
	Got    string `json:"got"`
}

// Verify checks every journal segment. Segments ending at an OriginOpen
// revision are skipped, since the project may have been edited outside the
// editor before it was opened.
// Returns an empty slice (not nil) when there is nothing to check.
func (s *Store) Verify(ctx context.Context) ([]Segment, error) {
	revs, err := s.ListRevisions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Segment, 0)
	for i := 1; i < len(revs); i++ {
		if revs[i].Origin == OriginOpen {
			continue
		}
		seg, err := s.verifySegment(ctx, revs[i-1].Seq, revs[i].Seq)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, nil
}

func (s *Store) verifySegment(ctx context.Context, from, to int64) (Segment, error) {
	base, err := s.Revision(ctx, from)
	if err != nil {
		return Segment{}, err
	}
	target, err := s.Revision(ctx, to)
	if err != nil {
		return Segment{}, err
	}
	entries, err := s.ReadJournal(ctx, base.JournalSeq, target.JournalSeq)
	if err != nil {
		return Segment{}, err
	}

	seg := Segment{From: from, To: to, Entries: len(entries)}
	rebuilt, err := Rebuild(base.Manifest, entries)
	if err != nil {
		seg.Error = err.Error()
		return seg, nil
	}
	seg.Mismatches, err = comparePages(target.Manifest, rebuilt)
	if err != nil {
		return Segment{}, err
	}
	return seg, nil
}

// Rebuild loads base into a scratch editor and applies entries in order
// through the replay path. It returns the resulting manifest.
func Rebuild(base *model.Manifest, entries []Entry) (*model.Manifest, error) {
	ctx := editor.New(editor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx.Load(base)

	for _, e := range entries {
		var err error
		switch e.Kind {
		case EntryPageCreate:
			if e.Page == nil {
				return nil, fmt.Errorf("journal %d: page_create without a page", e.Seq)
			}
			err = ctx.RestorePage(e.Page)
		case EntryPageDelete:
			err = ctx.DeletePage(e.PageID)
		default:
			if e.Change == nil {
				return nil, fmt.Errorf("journal %d: %s without a change", e.Seq, e.Kind)
			}
			err = ctx.Replay(*e.Change)
		}
		if err != nil {
			return nil, fmt.Errorf("journal %d (%s): %w", e.Seq, e.Kind, err)
		}
	}
	return ctx.Manifest(), nil
}

func comparePages(want, got *model.Manifest) ([]PageMismatch, error) {
	wantHashes, err := pageHashes(want)
	if err != nil {
		return nil, err
	}
	gotHashes, err := pageHashes(got)
	if err != nil {
		return nil, err
	}

	var out []PageMismatch
	for _, p := range want.Pages {
		if w, g := wantHashes[p.ID], gotHashes[p.ID]; w != g {
			out = append(out, PageMismatch{PageID: p.ID, Want: w, Got: g})
		}
	}
	for _, p := range got.Pages {
		if _, ok := wantHashes[p.ID]; !ok {
			out = append(out, PageMismatch{PageID: p.ID, Got: gotHashes[p.ID]})
		}
	}
	return out, nil
}

func pageHashes(m *model.Manifest) (map[string]string, error) {
	out := make(map[string]string, len(m.Pages))
	for _, p := range m.Pages {
		h, err := model.PageHash(p)
		if err != nil {
			return nil, err
		}
		out[p.ID] = h
	}
	return out, nil
}
