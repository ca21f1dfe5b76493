// Package ttable implements a fixed size transposition table.
//
// The table is a best effort cache: every store overwrites the slot its key maps to, and a probe only
// answers for the exact key that was stored there. It is not safe for concurrent use.
package ttable

import (
	"fmt"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
)

// Bound says how a stored score relates to the true value of the position.
type Bound uint8

const (
	Exact Bound = iota // the score is the value
	Lower              // the value is at least the score (fail high)
	Upper              // the value is at most the score (fail low)
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "exact"
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	}
	return fmt.Sprintf("Bound(%d)", uint8(b))
}

// Classify returns the bound of a search result v that was computed with the window (alpha, beta).
func Classify(v, alpha, beta score.Score) Bound {
	switch {
	case v <= alpha:
		return Upper
	case v >= beta:
		return Lower
	}
	return Exact
}

// Entry is the result of a completed node search.
type Entry struct {
	Key   game.Fingerprint
	Depth int
	Score score.Score
	Bound Bound
	Best  game.Action
}

// Stats counts table traffic since the last Clear.
type Stats struct {
	Probes     int
	Hits       int
	Stores     int
	Overwrites int // stores that evicted an entry of another key
}

// Table is a transposition table with a power of two number of slots.
type Table struct {
	mask    uint64
	entries []Entry
	used    []bool
	n       int
	stats   Stats
}

// New creates a table with at least size slots.
func New(size int) *Table {
	if size < 1 {
		size = 1
	}
	s := nextPowerOfTwo(uint64(size))
	return &Table{
		mask:    s - 1,
		entries: make([]Entry, s),
		used:    make([]bool, s),
	}
}

// Cap returns the number of slots.
func (t *Table) Cap() int { return len(t.entries) }

// Len returns the number of occupied slots.
func (t *Table) Len() int { return t.n }

func (t *Table) Stats() Stats { return t.stats }

func (t *Table) index(key game.Fingerprint) uint64 { return uint64(key) & t.mask }

// Probe returns the entry stored for key, if the slot still holds it.
func (t *Table) Probe(key game.Fingerprint) (Entry, bool) {
	t.stats.Probes++
	i := t.index(key)
	if !t.used[i] || t.entries[i].Key != key {
		return Entry{}, false
	}
	t.stats.Hits++
	return t.entries[i], true
}

// Store writes e under key, replacing whatever the slot held.
func (t *Table) Store(key game.Fingerprint, e Entry) {
	i := t.index(key)
	e.Key = key
	switch {
	case !t.used[i]:
		t.used[i] = true
		t.n++
	case t.entries[i].Key != key:
		t.stats.Overwrites++
	}
	t.entries[i] = e
	t.stats.Stores++
}

// Clear empties the table and resets its statistics.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = Entry{}
		t.used[i] = false
	}
	t.n = 0
	t.stats = Stats{}
}

func nextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	return v + 1
}
