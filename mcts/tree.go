package mcts

import (
	"github.com/tcgsim/duel/game"
)

// naughty is essentially *Node: an index into the arena.
type naughty int

const nilNode naughty = -1

func (n naughty) isValid() bool { return n >= 0 }

// alloc creates a node for the state reached by a. s must already be settled.
func (t *MCTS) alloc(a game.Action, by game.Player, s game.State, depth int) naughty {
	id := naughty(len(t.nodes))
	n := Node{
		id:     id,
		action: a,
		player: by,
		depth:  depth,
	}
	switch {
	case s.Winner() != game.None, s.ToMove() == game.None:
		// decided, or a chance step that could not be settled
		n.terminal = true
	case t.Cutoff > 0 && depth >= t.Cutoff:
		n.terminal = true
	default:
		n.unexpanded = append([]game.Action(nil), s.Actions()...)
		n.terminal = len(n.unexpanded) == 0
	}
	t.nodes = append(t.nodes, n)
	t.children = append(t.children, nil)
	if depth > t.stats.Depth {
		t.stats.Depth = depth
	}
	return id
}

// nodeFromNaughty gets the node given the index. The pointer is invalidated by the next alloc.
func (t *MCTS) nodeFromNaughty(ptr naughty) *Node { return &t.nodes[int(ptr)] }

// Children returns the expanded children of a node, in expansion order.
func (t *MCTS) Children(of naughty) []naughty { return t.children[of] }

func (t *MCTS) addChild(parent, child naughty) {
	t.children[parent] = append(t.children[parent], child)
}

// Nodes returns the number of nodes in the current tree.
func (t *MCTS) Nodes() int { return len(t.nodes) }

// Reset discards the tree. The arena's memory is kept for the next search.
func (t *MCTS) Reset() {
	for i := range t.children {
		t.children[i] = nil
	}
	t.nodes = t.nodes[:0]
	t.children = t.children[:0]
	t.root = nilNode
	t.current = nil
	t.lumberjack.Reset()
}
