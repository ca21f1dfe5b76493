package game

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/tcgsim/duel/score"
)

// Player identifies one of the two seats at the table. None is used when no player is to move
// (a chance step is pending) or when no winner has been decided.
type Player int32

const (
	None Player = iota
	First
	Second
)

// Opponent returns the other player. The opponent of None is None.
func (p Player) Opponent() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	}
	return None
}

// Seat returns the zero based index of the player, or -1 for None.
func (p Player) Seat() int {
	switch p {
	case First:
		return 0
	case Second:
		return 1
	}
	return -1
}

func (p Player) Format(s fmt.State, c rune) {
	switch c {
	case 's': // used in boards
		switch p {
		case None:
			fmt.Fprint(s, "·")
		case First:
			fmt.Fprint(s, "X")
		case Second:
			fmt.Fprint(s, "O")
		}
	default:
		switch p {
		case None:
			fmt.Fprint(s, "None")
		case First:
			fmt.Fprint(s, "First")
		case Second:
			fmt.Fprint(s, "Second")
		default:
			fmt.Fprintf(s, "Player(%d)", int32(p))
		}
	}
}

// Action is an opaque, game defined move. Actions are only meaningful to the state that listed them.
type Action int32

// NoAction is returned where a search could not produce an action.
const NoAction Action = -1

// Fingerprint is a stable 64 bit hash of a state, used as the transposition key.
// Different states may collide; the engines tolerate that.
type Fingerprint uint64

// State is the two-player state machine the engines search over.
type State interface {
	// ToMove returns the player who has to act next. It returns None while a chance step is pending.
	ToMove() Player

	// Winner returns the decided winner, or None. A state with no actions and no winner is a draw.
	Winner() Player

	// Actions lists the legal actions of the player to move. The order is stable.
	Actions() []Action

	// Advance applies an action in place. Illegal actions return an error and leave the state unchanged.
	Advance(a Action) error

	// Eval is a heuristic evaluation from p's point of view. Eval(First) == -Eval(Second).
	Eval(p Player) score.Score

	Fingerprint() Fingerprint

	// Clone returns a deep copy. Clones share no mutable data.
	Clone() State
}

// Concealer is a State that carries private information. Conceal returns a copy of the state as the
// given player is allowed to see it; the opponent's hidden information is replaced by a plausible
// determinization.
type Concealer interface {
	State
	Conceal(from Player) State
}

// ChanceResolver is a State that can settle a pending chance step (a shuffle, a draw, a coin flip).
// It is only called while ToMove returns None.
type ChanceResolver interface {
	State
	ResolveChance(r *rand.Rand) error
}

// Vectorizer is a State that can export its features for a learned evaluation.
type Vectorizer interface {
	State
	Features() []float32
}

// Ended reports whether s is terminal: a winner was decided or no actions are left.
func Ended(s State) (ended bool, winner Player) {
	if w := s.Winner(); w != None {
		return true, w
	}
	if s.ToMove() == None {
		return false, None
	}
	return len(s.Actions()) == 0, None
}
