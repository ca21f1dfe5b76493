// Package gametest provides small explicit game trees for exercising the engines and the driver.
package gametest

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
)

// ErrIllegal is returned by Advance on a Broken node or for an unknown action.
var ErrIllegal = errors.New("illegal action")

// Node is one position of a Tree.
type Node struct {
	Mover  game.Player // None for terminal nodes and pending chance steps
	Winner game.Player
	Value  score.Score // Eval from First's point of view
	Next   []int       // child per action; action i leads to Next[i]
	Chance []int       // outcomes of a pending chance step, picked uniformly
	Broken bool        // every Advance fails
}

// Tree is an explicit game tree. Node 0 is the root.
type Tree struct {
	Nodes []Node
}

// Root returns a fresh state at the root of t.
func (t *Tree) Root() *State { return &State{tree: t} }

// Chain builds a single line of play with alternating movers, First to move at the root. Node i has
// Eval(First) == values[i]; the last node has no actions.
func Chain(values ...score.Score) *Tree {
	t := &Tree{Nodes: make([]Node, len(values))}
	mover := game.First
	for i, v := range values {
		t.Nodes[i] = Node{Mover: mover, Value: v}
		if i+1 < len(values) {
			t.Nodes[i].Next = []int{i + 1}
		}
		mover = mover.Opponent()
	}
	return t
}

var (
	_ game.State          = &State{}
	_ game.ChanceResolver = &State{}
	_ game.Concealer      = &State{}
)

// State is a position in a Tree.
type State struct {
	tree *Tree
	at   int
	view game.Player // set by Conceal
}

// At returns the index of the current node.
func (s *State) At() int { return s.at }

// View returns the player the state was concealed for, or None.
func (s *State) View() game.Player { return s.view }

func (s *State) node() *Node { return &s.tree.Nodes[s.at] }

func (s *State) ToMove() game.Player {
	n := s.node()
	if n.Winner != game.None || len(n.Chance) > 0 {
		return game.None
	}
	return n.Mover
}

func (s *State) Winner() game.Player { return s.node().Winner }

func (s *State) Actions() []game.Action {
	n := s.node()
	if n.Winner != game.None || len(n.Chance) > 0 {
		return nil
	}
	retVal := make([]game.Action, len(n.Next))
	for i := range n.Next {
		retVal[i] = game.Action(i)
	}
	return retVal
}

func (s *State) Advance(a game.Action) error {
	n := s.node()
	if n.Broken || a < 0 || int(a) >= len(n.Next) || len(n.Chance) > 0 {
		return errors.Wrapf(ErrIllegal, "action %d at node %d", a, s.at)
	}
	s.at = n.Next[a]
	return nil
}

func (s *State) Eval(p game.Player) score.Score {
	switch p {
	case game.First:
		return s.node().Value
	case game.Second:
		return -s.node().Value
	}
	return 0
}

func (s *State) Fingerprint() game.Fingerprint { return game.Fingerprint(s.at) }

func (s *State) Clone() game.State {
	c := *s
	return &c
}

func (s *State) Conceal(from game.Player) game.State {
	c := *s
	c.view = from
	return &c
}

func (s *State) ResolveChance(r *rand.Rand) error {
	n := s.node()
	if len(n.Chance) == 0 {
		return errors.Errorf("no chance step pending at node %d", s.at)
	}
	s.at = n.Chance[r.Intn(len(n.Chance))]
	return nil
}

// Opaque hides every optional capability of the wrapped state.
type Opaque struct {
	game.State
}

func (o Opaque) Clone() game.State { return Opaque{o.State.Clone()} }
