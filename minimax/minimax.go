// Package minimax implements an iterative deepening alpha-beta search over game.State.
//
// The search is negamax from an explicit point of view: the player to move may act several times in a
// row, so windows and values are only negated when the mover changes between a node and its child.
// Results are memoized in a transposition table that is kept across iterations, and the root is searched
// with aspiration windows centred on the previous iteration's score.
package minimax

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
	"github.com/tcgsim/duel/ttable"
)

// maxChanceSteps bounds how many chance steps in a row are settled before a state is considered broken.
const maxChanceSteps = 64

// Stats describes the last search.
type Stats struct {
	Depth     int   // deepest completed iteration
	Nodes     int   // nodes visited over all iterations
	TableHits int   // transposition probes that found their key
	Widenings []int // aspiration re-searches, indexed by depth-1
}

// Engine is a minimax searcher. An Engine is not safe for concurrent use; it owns its table.
type Engine struct {
	maxDepth   int
	tableSize  int
	nodeBudget int
	seed       uint64
	log        zerolog.Logger

	table *ttable.Table
	rng   *rand.Rand
	stats Stats

	// horizon is set when the running iteration cut a line short: a node with actions left at depth 0, or
	// a node answered by the table
	horizon bool
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxDepth:  DefaultDepth,
		tableSize: DefaultTableSize,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.table = ttable.New(e.tableSize)
	e.rng = rand.New(rand.NewSource(e.seed))
	return e
}

// Table returns the engine's transposition table.
func (e *Engine) Table() *ttable.Table { return e.table }

// Stats returns the statistics of the last search.
func (e *Engine) Stats() Stats { return e.stats }

// Reset clears the transposition table and reseeds the chance generator.
func (e *Engine) Reset() {
	e.table.Clear()
	e.rng.Seed(e.seed)
}

// Search returns the principal variation from s for the player to move, scored from that player's
// point of view. s is not modified. A terminal state yields an empty variation.
func (e *Engine) Search(s game.State) (game.Variation, error) {
	e.stats = Stats{Widenings: make([]int, 0, e.maxDepth)}
	root, err := e.settle(s.Clone())
	if err != nil {
		return game.Variation{}, err
	}
	pov := root.ToMove()
	if w := root.Winner(); w != game.None {
		return game.Variation{Score: decided(w, pov, 0)}, nil
	}
	if len(root.Actions()) == 0 {
		return game.Variation{Score: score.Clamp(root.Eval(pov))}, nil
	}

	var best game.Variation
	for depth := 1; depth <= e.maxDepth; depth++ {
		e.horizon = false
		pv, widenings, err := e.iterate(root, pov, depth, best.Score)
		e.stats.Widenings = append(e.stats.Widenings, widenings)
		if err != nil {
			return best, errors.WithMessagef(err, "depth %d", depth)
		}
		best = pv
		e.stats.Depth = depth
		e.log.Debug().
			Int("depth", depth).
			Int32("score", int32(pv.Score)).
			Int("nodes", e.stats.Nodes).
			Int("widenings", widenings).
			Msgf("pv %v", pv)
		if e.nodeBudget > 0 && e.stats.Nodes >= e.nodeBudget {
			break
		}
		if !e.horizon {
			// every line ended before the horizon; deeper iterations search the same tree
			break
		}
	}
	return best, nil
}

// iterate searches one depth, widening the aspiration window around prev until the result lands inside it.
func (e *Engine) iterate(root game.State, pov game.Player, depth int, prev score.Score) (game.Variation, int, error) {
	lo, hi := -score.Infinity, score.Infinity
	if depth > 1 {
		lo, hi = score.Aspiration(prev, 0)
	}
	for step := 0; ; step++ {
		v, pv, err := e.negamax(root, pov, depth, lo, hi, 0)
		if err != nil {
			return game.Variation{}, step, err
		}
		if v > lo && v < hi {
			return game.Variation{Actions: pv, Score: v}, step, nil
		}
		if lo == -score.Infinity && hi == score.Infinity {
			// nothing is outside the full window; this is only reached by broken evaluations
			return game.Variation{Actions: pv, Score: v}, step, nil
		}
		e.log.Debug().Int("depth", depth).Int32("score", int32(v)).Int32("lo", int32(lo)).Int32("hi", int32(hi)).Msg("aspiration fail")
		lo, hi = score.Aspiration(prev, step+1)
	}
}

func (e *Engine) negamax(s game.State, pov game.Player, depth int, alpha, beta score.Score, ply int) (score.Score, []game.Action, error) {
	e.stats.Nodes++
	if w := s.Winner(); w != game.None {
		return decided(w, pov, depth), nil, nil
	}
	actions := s.Actions()
	if len(actions) == 0 {
		return score.Clamp(s.Eval(pov)), nil, nil
	}
	if depth <= 0 {
		e.horizon = true
		return score.Clamp(s.Eval(pov)), nil, nil
	}

	origAlpha, origBeta := alpha, beta
	key := s.Fingerprint()
	hint := game.NoAction
	if entry, ok := e.table.Probe(key); ok {
		e.stats.TableHits++
		if entry.Depth >= depth {
			switch entry.Bound {
			case ttable.Exact:
				e.horizon = true
				return entry.Score, line(entry.Best), nil
			case ttable.Lower:
				alpha = max(alpha, entry.Score)
			case ttable.Upper:
				beta = min(beta, entry.Score)
			}
			if alpha >= beta {
				e.horizon = true
				return entry.Score, line(entry.Best), nil
			}
		}
		hint = entry.Best
	}
	actions = order(actions, hint)

	value := -score.Infinity
	bestAction := game.NoAction
	var bestLine []game.Action
	for i, a := range actions {
		child := s.Clone()
		if err := child.Advance(a); err != nil {
			return 0, nil, errors.Wrapf(err, "advance %d at ply %d", a, ply)
		}
		child, err := e.settle(child)
		if err != nil {
			return 0, nil, errors.WithMessagef(err, "after %d at ply %d", a, ply)
		}
		same, childPov := perspective(child, pov)

		var v score.Score
		var sub []game.Action
		if i == 0 {
			v, sub, err = e.child(child, childPov, same, depth-1, alpha, beta, ply)
		} else {
			nlo, nhi := score.NullWindow(alpha)
			v, sub, err = e.child(child, childPov, same, depth-1, nlo, min(nhi, beta), ply)
			if err == nil && v > alpha && v < beta {
				v, sub, err = e.child(child, childPov, same, depth-1, alpha, beta, ply)
			}
		}
		if err != nil {
			return 0, nil, err
		}

		if v > value {
			value = v
			bestAction = a
			bestLine = append(append(make([]game.Action, 0, len(sub)+1), a), sub...)
		}
		if value > alpha {
			alpha = value
		}
		if alpha >= beta {
			break
		}
	}

	e.table.Store(key, ttable.Entry{
		Depth: depth,
		Score: value,
		Bound: ttable.Classify(value, origAlpha, origBeta),
		Best:  bestAction,
	})
	return value, bestLine, nil
}

// child searches child with the parent window (alpha, beta) and returns its value as seen by the parent.
func (e *Engine) child(child game.State, childPov game.Player, same bool, depth int, alpha, beta score.Score, ply int) (score.Score, []game.Action, error) {
	lo, hi := score.Child(alpha, beta, same)
	v, sub, err := e.negamax(child, childPov, depth, lo, hi, ply+1)
	if err != nil {
		return 0, nil, err
	}
	return score.Propagate(v, same), sub, nil
}

// settle resolves pending chance steps of s in place.
func (e *Engine) settle(s game.State) (game.State, error) {
	for i := 0; s.ToMove() == game.None && s.Winner() == game.None; i++ {
		cr, ok := s.(game.ChanceResolver)
		if !ok {
			return s, errors.New("chance step pending on a state that cannot resolve it")
		}
		if i >= maxChanceSteps {
			return s, errors.Errorf("chance still pending after %d resolutions", maxChanceSteps)
		}
		if err := cr.ResolveChance(e.rng); err != nil {
			return s, errors.Wrap(err, "resolve chance")
		}
	}
	return s, nil
}

// perspective returns whether the player to move in child is pov, and the point of view to search child
// with. A decided child keeps the parent's point of view.
func perspective(child game.State, pov game.Player) (same bool, childPov game.Player) {
	m := child.ToMove()
	if m == game.None || m == pov {
		return true, pov
	}
	return false, m
}

func decided(winner, pov game.Player, depth int) score.Score {
	if winner == pov {
		return score.Win(depth)
	}
	return score.Loss(depth)
}

func line(a game.Action) []game.Action {
	if a == game.NoAction {
		return nil
	}
	return []game.Action{a}
}

// order moves hint to the front of actions, keeping the rest in their listed order.
func order(actions []game.Action, hint game.Action) []game.Action {
	if hint == game.NoAction {
		return actions
	}
	for i, a := range actions {
		if a != hint {
			continue
		}
		if i == 0 {
			return actions
		}
		retVal := make([]game.Action, 0, len(actions))
		retVal = append(retVal, hint)
		retVal = append(retVal, actions[:i]...)
		return append(retVal, actions[i+1:]...)
	}
	return actions
}
