package duel

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
)

// Example is a training record: the features of a position as Player saw it, labelled with the final
// outcome of the playout for Player.
type Example struct {
	Features []float32
	Player   game.Player
	Value    float32
}

// Augmenter takes an example, and creates more examples from it.
type Augmenter func(ex Example) []Example

// Examples labels every recorded position of the playout with its outcome. Positions without
// features or with non finite features are skipped. If aug is not nil every example is augmented.
func (p *Playout) Examples(aug Augmenter) []Example {
	examples := lo.FilterMap(p.turns, func(t Turn, _ int) (Example, bool) {
		if t.Features == nil || !validFeatures(t.Features) {
			return Example{}, false
		}
		return Example{
			Features: t.Features,
			Player:   t.Player,
			Value:    p.Outcome(t.Player),
		}, true
	})
	if aug == nil {
		return examples
	}
	return lo.FlatMap(examples, func(ex Example, _ int) []Example { return aug(ex) })
}

func validFeatures(features []float32) bool {
	for _, v := range features {
		if math32.IsInf(v, 0) || math32.IsNaN(v) {
			return false
		}
	}
	return true
}

// PrepareExamples shuffles the examples and packs as many full batches as possible into dense tensors:
// xs has shape (batches*batchSize, features) and values has shape (batches*batchSize).
func PrepareExamples(examples []Example, batchSize int, r *rand.Rand) (xs, values *tensor.Dense, batches int, err error) {
	if batchSize <= 0 {
		return nil, nil, 0, errors.Errorf("invalid batch size %d", batchSize)
	}
	batches = len(examples) / batchSize
	if batches == 0 {
		return nil, nil, 0, errors.Errorf("%d examples do not fill a batch of %d", len(examples), batchSize)
	}
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)
	if r != nil {
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	}

	total := batches * batchSize
	width := len(shuffled[0].Features)
	xsBacking := make([]float32, 0, total*width)
	valuesBacking := make([]float32, 0, total)
	for i, ex := range shuffled[:total] {
		if len(ex.Features) != width {
			return nil, nil, 0, errors.Errorf("example %d has %d features, expected %d", i, len(ex.Features), width)
		}
		xsBacking = append(xsBacking, ex.Features...)
		valuesBacking = append(valuesBacking, ex.Value)
	}
	xs = tensor.New(tensor.WithBacking(xsBacking), tensor.WithShape(total, width))
	values = tensor.New(tensor.WithBacking(valuesBacking), tensor.WithShape(total))
	return xs, values, batches, nil
}

// Summary condenses a finished playout into a fixed set of numbers.
type Summary struct {
	Steps       int
	Winner      game.Player
	FirstTurns  int
	SecondTurns int
	FirstScore  score.Score // last score reported by First's searcher
	SecondScore score.Score // last score reported by Second's searcher
}

// SummaryLen is the length of Summary.ToVector.
const SummaryLen = 6

// Summarize summarizes the turns played so far.
func (p *Playout) Summarize() Summary {
	s := Summary{Steps: len(p.turns), Winner: p.Winner()}
	for _, t := range p.turns {
		switch t.Player {
		case game.First:
			s.FirstTurns++
			s.FirstScore = t.Score
		case game.Second:
			s.SecondTurns++
			s.SecondScore = t.Score
		}
	}
	return s
}

// ToVector lays the summary out field by field, in declaration order.
func (s Summary) ToVector() []float32 {
	return []float32{
		float32(s.Steps),
		float32(s.Winner),
		float32(s.FirstTurns),
		float32(s.SecondTurns),
		float32(s.FirstScore),
		float32(s.SecondScore),
	}
}

// SummaryFromVector is the inverse of Summary.ToVector.
func SummaryFromVector(v []float32) (Summary, error) {
	if len(v) != SummaryLen {
		return Summary{}, errors.Errorf("summary vector has length %d, expected %d", len(v), SummaryLen)
	}
	for i, x := range v {
		if math32.IsNaN(x) || math32.IsInf(x, 0) || x != math32.Trunc(x) {
			return Summary{}, errors.Errorf("summary field %d is not integral: %v", i, x)
		}
	}
	s := Summary{
		Steps:       int(v[0]),
		Winner:      game.Player(v[1]),
		FirstTurns:  int(v[2]),
		SecondTurns: int(v[3]),
		FirstScore:  score.Score(v[4]),
		SecondScore: score.Score(v[5]),
	}
	if s.Winner < game.None || s.Winner > game.Second {
		return Summary{}, errors.Errorf("invalid winner %v", v[1])
	}
	return s, nil
}
