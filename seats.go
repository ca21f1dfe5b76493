package duel

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/tcgsim/duel/game"
)

// Searcher is anything that can pick a principal variation for the player to move.
// Both *minimax.Engine and *mcts.MCTS are Searchers.
type Searcher interface {
	Search(s game.State) (game.Variation, error)
}

// Seats holds the searchers of both players of one playout. A searcher is handed out with Borrow and
// must be handed back with the returned release func before it is borrowed again.
type Seats struct {
	searchers [2]Searcher
	borrowed  [2]atomic.Bool
}

// NewSeats seats first as game.First and second as game.Second.
func NewSeats(first, second Searcher) *Seats {
	return &Seats{searchers: [2]Searcher{first, second}}
}

// Borrow hands out the searcher of p. Borrowing a seat that is already out fails with a
// *ReentrantBorrowError instead of blocking.
func (s *Seats) Borrow(p game.Player) (Searcher, func(), error) {
	seat := p.Seat()
	if seat < 0 {
		return nil, nil, errors.Errorf("no seat for %v", p)
	}
	if s.searchers[seat] == nil {
		return nil, nil, errors.Errorf("seat of %v is empty", p)
	}
	if !s.borrowed[seat].CompareAndSwap(false, true) {
		return nil, nil, &ReentrantBorrowError{Player: p}
	}
	var once atomic.Bool
	release := func() {
		if once.CompareAndSwap(false, true) {
			s.borrowed[seat].Store(false)
		}
	}
	return s.searchers[seat], release, nil
}

// Borrowed reports whether p's searcher is out.
func (s *Seats) Borrowed(p game.Player) bool {
	seat := p.Seat()
	return seat >= 0 && s.borrowed[seat].Load()
}
