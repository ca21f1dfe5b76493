package mcts

import (
	"github.com/pkg/errors"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
)

// maxChanceSteps bounds how many chance steps in a row are settled before giving up on a state.
const maxChanceSteps = 64

// Search runs Budget iterations from s and returns the principal variation: the chain of most visited
// children from the root. The variation's score is the root action's average value scaled into the
// heuristic region. s is not modified.
func (t *MCTS) Search(s game.State) (game.Variation, error) {
	t.Reset()
	t.stats = Stats{}
	t.rand.Seed(t.Seed ^ uint64(s.Fingerprint()))

	current := s.Clone()
	if err := t.settle(current); err != nil {
		return game.Variation{}, errors.WithMessage(err, "settle root")
	}
	t.current = current
	t.rootMover = current.ToMove()
	t.root = t.alloc(game.NoAction, game.None, current, 0)
	t.log("SEARCH. Player %v\n%v", t.rootMover, current)

	if !t.nodeFromNaughty(t.root).IsExpandable() {
		return game.Variation{}, nil
	}

	for i := 0; i < t.Budget; i++ {
		t.iterate(current.Clone())
		t.stats.Iterations++
	}
	t.stats.Nodes = len(t.nodes)

	retVal := t.principalVariation()
	t.logger.Debug().
		Int("iterations", t.stats.Iterations).
		Int("nodes", t.stats.Nodes).
		Int("depth", t.stats.Depth).
		Int("failures", t.stats.Failures).
		Msgf("pv %v", retVal)
	return retVal, nil
}

// iterate runs one select, expand, evaluate, backpropagate cycle on a scratch copy of the root state.
func (t *MCTS) iterate(state game.State) {
	path := []naughty{t.root}
	n := t.root

	// SELECT
	for {
		node := t.nodeFromNaughty(n)
		if node.terminal || node.IsExpandable() || len(t.children[n]) == 0 {
			break
		}
		next := t.selectChild(n)
		child := t.nodeFromNaughty(next)
		replayed, err := t.replay(state, child.action)
		if err != nil {
			// the sampled chance outcome or hidden information differs from the one the child was built on
			t.log("\tSELECT %v: %v", child, err)
			t.stats.Failures++
			break
		}
		state = replayed
		n = next
		path = append(path, n)
	}

	// EXPAND
	if node := t.nodeFromNaughty(n); node.IsExpandable() {
		a := node.unexpanded[0]
		node.unexpanded = node.unexpanded[1:]
		depth := node.depth + 1
		mover := state.ToMove()
		if replayed, err := t.replay(state, a); err != nil {
			// a is not offered again here; n itself is evaluated instead
			t.log("\tEXPAND %v: %v", a, err)
			t.stats.Failures++
		} else {
			state = replayed
			child := t.alloc(a, mover, state, depth)
			t.addChild(n, child)
			n = child
			path = append(path, n)
		}
	}

	// EVALUATE
	leaf := t.nodeFromNaughty(n)
	of := leaf.player
	if of == game.None {
		of = t.rootMover
	}
	v := t.evaluate(state, of)
	t.log("\tEVALUATE %v for %v: %v", leaf, of, v)

	// BACKPROPAGATE
	for i := len(path) - 1; i >= 0; i-- {
		t.nodeFromNaughty(path[i]).update(v, of)
	}
}

// selectChild returns the child of n with the highest selector score. Ties go to the earlier child.
func (t *MCTS) selectChild(n naughty) naughty {
	parent := t.nodeFromNaughty(n)
	factor := t.selector.ParentFactor(parent.visits)
	best := nilNode
	var bestScore float32
	for _, kid := range t.children[n] {
		s := t.selector.ChildScore(factor, t.nodeFromNaughty(kid).Stats())
		if !best.isValid() || s > bestScore {
			best, bestScore = kid, s
		}
	}
	return best
}

// replay applies a to a copy of state and settles any chance step that follows. state is never modified,
// so on failure it is still the position of the node the action was tried from.
func (t *MCTS) replay(state game.State, a game.Action) (game.State, error) {
	next := state.Clone()
	if err := next.Advance(a); err != nil {
		return nil, err
	}
	if err := t.settle(next); err != nil {
		return nil, err
	}
	return next, nil
}

func (t *MCTS) settle(s game.State) error {
	for i := 0; s.ToMove() == game.None && s.Winner() == game.None; i++ {
		cr, ok := s.(game.ChanceResolver)
		if !ok {
			return errors.New("chance step pending on a state that cannot resolve it")
		}
		if i >= maxChanceSteps {
			return errors.Errorf("chance still pending after %d resolutions", maxChanceSteps)
		}
		if err := cr.ResolveChance(t.rand); err != nil {
			return errors.Wrap(err, "resolve chance")
		}
	}
	return nil
}

// evaluate values state for player: decided games are worth ±1, anything else is up to the evaluator.
func (t *MCTS) evaluate(state game.State, player game.Player) float32 {
	if w := state.Winner(); w != game.None {
		return outcome(w, player)
	}
	return clamp(t.evaluator.Evaluate(state, player))
}

// BestChild returns the root child that would be played, or false if the root has no children.
func (t *MCTS) BestChild() (ChildStats, bool) {
	if !t.root.isValid() {
		return ChildStats{}, false
	}
	kid := t.bestChild(t.root)
	if !kid.isValid() {
		return ChildStats{}, false
	}
	return t.nodeFromNaughty(kid).Stats(), true
}

// RootChildren returns the statistics of the root's children, best first.
func (t *MCTS) RootChildren() []ChildStats {
	if !t.root.isValid() {
		return nil
	}
	kids := t.sortedChildren(t.root)
	retVal := make([]ChildStats, len(kids))
	for i, kid := range kids {
		retVal[i] = t.nodeFromNaughty(kid).Stats()
	}
	return retVal
}

func (t *MCTS) bestChild(of naughty) naughty {
	kids := t.sortedChildren(of)
	if len(kids) == 0 {
		return nilNode
	}
	return kids[0]
}

func (t *MCTS) principalVariation() game.Variation {
	var retVal game.Variation
	for n := t.bestChild(t.root); n.isValid(); n = t.bestChild(n) {
		node := t.nodeFromNaughty(n)
		if node.visits == 0 {
			break
		}
		if len(retVal.Actions) == 0 {
			retVal.Score = score.Clamp(score.Score(node.Average() * float32(score.Tactical)))
		}
		retVal.Actions = append(retVal.Actions, node.action)
	}
	return retVal
}
