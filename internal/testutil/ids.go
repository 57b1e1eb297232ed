package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates ids "<prefix>1", "<prefix>2", ...
//
// This enables deterministic test execution and golden snapshot comparison:
// the same scenario replayed with a fresh SequenceIDs yields byte-identical
// manifests.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequenceIDs creates a generator. An empty prefix defaults to "node-".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "node-"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s%d", g.prefix, g.seq)
}

// Reset restarts the sequence at 1.
func (g *SequenceIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedIDs returns a predetermined list of ids in order.
// It panics when the list is exhausted so a test that creates more nodes
// than it planned for fails loudly.
type FixedIDs struct {
	mu    sync.Mutex
	ids   []string
	index int
}

// NewFixedIDs creates a generator over ids.
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// Generate returns the next id from the list.
func (g *FixedIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index >= len(g.ids) {
		panic(fmt.Sprintf("FixedIDs exhausted after %d ids", len(g.ids)))
	}
	id := g.ids[g.index]
	g.index++
	return id
}
