package game

import (
	"fmt"

	"github.com/tcgsim/duel/score"
)

// Variation is a principal variation: the line of play a search judged best, and its score from the
// point of view of the player to move at its start.
type Variation struct {
	Actions []Action
	Score   score.Score
}

// First returns the first action of the line, or NoAction if the line is empty.
func (v Variation) First() Action {
	if len(v.Actions) == 0 {
		return NoAction
	}
	return v.Actions[0]
}

// Len returns the number of actions in the line.
func (v Variation) Len() int { return len(v.Actions) }

func (v Variation) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "%v [", v.Score)
	for i, a := range v.Actions {
		if i > 0 {
			fmt.Fprint(s, " ")
		}
		fmt.Fprintf(s, "%d", a)
	}
	fmt.Fprint(s, "]")
}
