package mcts

import (
	"fmt"

	"github.com/tcgsim/duel/game"
)

// Node is one state of the search tree.
type Node struct {
	action game.Action // the action that led here from the parent
	player game.Player // the player who took action; None at the root
	visits uint32      // visits to this node - N(s, a) in the literature
	value  float32     // sum of the values backed up through this node, from player's point of view

	unexpanded []game.Action
	terminal   bool
	depth      int

	id naughty
}

// ChildStats is what a Selector sees of a child.
type ChildStats struct {
	Action game.Action
	Visits uint32
	Value  float32 // summed value, from the point of view of the player choosing between the children
}

// Average returns the mean backed up value, or 0 for an unvisited node.
func (s ChildStats) Average() float32 {
	if s.Visits == 0 {
		return 0
	}
	return s.Value / float32(s.Visits)
}

func (n *Node) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{NodeID: %v Action: %v, Player: %v, Visits: %v, Average: %v, Unexpanded: %d, Terminal: %t}",
		n.id, n.action, n.player, n.visits, n.Average(), len(n.unexpanded), n.terminal)
}

func (n *Node) ID() int { return int(n.id) }

// Action returns the action that led to the node.
func (n *Node) Action() game.Action { return n.action }

// Player returns the player who took the action.
func (n *Node) Player() game.Player { return n.player }

func (n *Node) Visits() uint32 { return n.visits }

// Value returns the summed value from Player's point of view.
func (n *Node) Value() float32 { return n.value }

// Average returns the mean value from Player's point of view.
func (n *Node) Average() float32 { return n.Stats().Average() }

func (n *Node) Stats() ChildStats {
	return ChildStats{Action: n.action, Visits: n.visits, Value: n.value}
}

// IsExpandable returns true if the node still has actions without a child.
func (n *Node) IsExpandable() bool { return !n.terminal && len(n.unexpanded) > 0 }

// update backs up a value given from the point of view of the player `of`.
func (n *Node) update(v float32, of game.Player) {
	n.visits++
	if n.player == of {
		n.value += v
	} else {
		n.value -= v
	}
}
