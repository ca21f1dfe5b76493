package duel

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/tcgsim/duel/game"
)

var (
	// ErrWinnerDecided ends a playout normally: the game is over. Winner reports the winner, None for a draw.
	ErrWinnerDecided = errors.New("winner decided")

	// ErrStepLimit ends a playout normally after the maximum number of steps.
	ErrStepLimit = errors.New("step limit reached")

	// ErrTerminated is returned by every pull after a playout failed.
	ErrTerminated = errors.New("playout terminated by a prior error")
)

// Finished reports whether err is one of the normal ends of a playout.
func Finished(err error) bool {
	c := errors.Cause(err)
	return c == ErrWinnerDecided || c == ErrStepLimit
}

// SearchFailure is returned when the mover's searcher failed or produced no action on a state that
// was not over.
type SearchFailure struct {
	Player game.Player
	Err    error // nil if the search returned an empty variation
}

func (e *SearchFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("search for %v returned no action", e.Player)
	}
	return fmt.Sprintf("search for %v failed: %v", e.Player, e.Err)
}

func (e *SearchFailure) Cause() error  { return e.Err }
func (e *SearchFailure) Unwrap() error { return e.Err }

// ReentrantBorrowError is returned when a seat's searcher is borrowed while it is still out.
type ReentrantBorrowError struct {
	Player game.Player
}

func (e *ReentrantBorrowError) Error() string {
	return fmt.Sprintf("searcher of %v is already borrowed", e.Player)
}

// AdvanceError is returned when the game rejected an action, or a pending chance step could not be settled.
// Action is game.NoAction for chance steps.
type AdvanceError struct {
	Player game.Player
	Action game.Action
	Err    error
}

func (e *AdvanceError) Error() string {
	if e.Action == game.NoAction {
		return fmt.Sprintf("settling chance: %v", e.Err)
	}
	return fmt.Sprintf("%v playing %d: %v", e.Player, e.Action, e.Err)
}

func (e *AdvanceError) Cause() error  { return e.Err }
func (e *AdvanceError) Unwrap() error { return e.Err }

type manyErr []error

func (err manyErr) Error() string {
	var buf strings.Builder
	for i, e := range err {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(e.Error())
	}
	return buf.String()
}

var (
	errNoResolver         = errors.New("chance step pending on a state that cannot resolve it")
	errTooManyChanceSteps = errors.New("too many chance steps in a row")
)
