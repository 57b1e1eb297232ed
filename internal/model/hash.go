package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainPage    = "pagebuilder/page/v1"
	DomainProject = "pagebuilder/project/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PageHash identifies a page snapshot by content. Two pages hash equal
// exactly when their ids, names, routes, root order and nodes are equal,
// regardless of the order of the flat node collection.
func PageHash(p *Page) (string, error) {
	canonical, err := MarshalCanonical(PageValue(p))
	if err != nil {
		return "", fmt.Errorf("PageHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPage, canonical), nil
}

// ProjectHash identifies the document content of a manifest: its pages in
// order plus the global styles. Save timestamps and editor preferences are
// excluded so that saving twice without edits yields the same hash.
func ProjectHash(m *Manifest) (string, error) {
	pages := make(List, 0, len(m.Pages))
	for _, p := range m.Pages {
		h, err := PageHash(p)
		if err != nil {
			return "", fmt.Errorf("ProjectHash: page %s: %w", p.ID, err)
		}
		pages = append(pages, String(h))
	}
	obj := NewMap(
		P("pages", pages),
		P("globalStyles", m.GlobalStyles.Clone()),
		P("uiLibrary", String(m.UILibrary)),
	)
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ProjectHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProject, canonical), nil
}

// MustPageHash is like PageHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPageHash(p *Page) string {
	h, err := PageHash(p)
	if err != nil {
		panic(err)
	}
	return h
}
