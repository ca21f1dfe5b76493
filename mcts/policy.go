package mcts

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"
	"gorgonia.org/vecf32"

	"github.com/tcgsim/duel/game"
)

// Selector is an exploration rule. ParentFactor is computed once per parent and handed to ChildScore for
// each of its children; the child with the highest score is descended into.
//
// Implementations must be safe for concurrent use.
type Selector interface {
	ParentFactor(parentVisits uint32) float32
	ChildScore(parentFactor float32, child ChildStats) float32
}

// UCB1 is the upper confidence bound rule: avg + sqrt(C * ln(1 + N) / (n + 1)).
type UCB1 struct {
	C float32
}

func (u UCB1) ParentFactor(parentVisits uint32) float32 {
	return u.C * math32.Log(1+float32(parentVisits))
}

func (u UCB1) ChildScore(parentFactor float32, child ChildStats) float32 {
	return child.Average() + math32.Sqrt(parentFactor/float32(child.Visits+1))
}

// NoExploration always descends into the child with the best average.
type NoExploration struct{}

func (NoExploration) ParentFactor(uint32) float32 { return 0 }

func (NoExploration) ChildScore(_ float32, child ChildStats) float32 { return child.Average() }

// Evaluator values a non terminal leaf for player, in [-1, 1].
//
// Implementations must be safe for concurrent use.
type Evaluator interface {
	Evaluate(s game.State, player game.Player) float32
}

// Heuristic uses the state's own evaluation.
type Heuristic struct{}

func (Heuristic) Evaluate(s game.State, player game.Player) float32 { return s.Eval(player).Float() }

// Rollout plays uniformly random actions from the leaf until the game is decided, the state has no
// actions, or Depth actions were played, and then values the final state with Leaf.
//
// The random stream is derived from Seed and the leaf's fingerprint, so a Rollout holds no mutable state.
type Rollout struct {
	Seed  uint64
	Depth int       // zero means play to the end
	Leaf  Evaluator // nil means Heuristic
}

func (r Rollout) Evaluate(s game.State, player game.Player) float32 {
	g := s.Clone()
	rng := rand.New(rand.NewSource(r.Seed ^ uint64(s.Fingerprint())))
	for played := 0; r.Depth <= 0 || played < r.Depth; {
		if w := g.Winner(); w != game.None {
			return outcome(w, player)
		}
		if g.ToMove() == game.None {
			cr, ok := g.(game.ChanceResolver)
			if !ok || cr.ResolveChance(rng) != nil {
				break
			}
			continue
		}
		actions := g.Actions()
		if len(actions) == 0 {
			break
		}
		if err := g.Advance(actions[rng.Intn(len(actions))]); err != nil {
			break
		}
		played++
	}
	if w := g.Winner(); w != game.None {
		return outcome(w, player)
	}
	leaf := r.Leaf
	if leaf == nil {
		leaf = Heuristic{}
	}
	return leaf.Evaluate(g, player)
}

// Linear is a learned evaluation: tanh(w · features), where the features are exported by a
// game.Vectorizer from the point of view of the player to move. States that cannot be vectorized, or whose
// feature count does not match the weights, are valued by Fallback.
type Linear struct {
	Weights  []float32
	Fallback Evaluator // nil means Heuristic
}

func (l Linear) Evaluate(s game.State, player game.Player) float32 {
	vs, ok := s.(game.Vectorizer)
	mover := s.ToMove()
	if ok && mover != game.None {
		features := vs.Features()
		if len(features) == len(l.Weights) {
			prod := make([]float32, len(features))
			copy(prod, features)
			vecf32.Mul(prod, l.Weights)
			v := math32.Tanh(vecf32.Sum(prod))
			if player != mover {
				v = -v
			}
			return v
		}
	}
	fallback := l.Fallback
	if fallback == nil {
		fallback = Heuristic{}
	}
	return fallback.Evaluate(s, player)
}

func outcome(winner, player game.Player) float32 {
	if winner == player {
		return 1
	}
	return -1
}

// clamp keeps evaluator output inside [-1, 1].
func clamp(v float32) float32 {
	switch {
	case math32.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
