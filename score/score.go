// Package score provides the zero-sum evaluation type shared by the search engines.
//
// A Score has three informal regions:
//	- ordinary heuristic scores, |s| < Limit
//	- tactical scores, approaching the Tactical threshold
//	- decided scores, |s| >= Tactical, encoding a forced win or loss
//
// Decided scores lose a little magnitude every ply they are carried up the tree (see Decay),
// so a quick win is always preferred to a slow one.
package score

import "fmt"

// Score is a signed fixed point evaluation. Positive is good for the player whose point of view is taken.
type Score int32

const (
	// MaxPly is the deepest ply offset a decided score can encode.
	MaxPly = 255

	// Tactical is the threshold of the decided region.
	Tactical Score = 1 << 16

	// Decided is the magnitude of a forced win found with no remaining depth.
	Decided Score = 1 << 20

	// Infinity bounds every score that a search can produce.
	Infinity Score = Decided + MaxPly + 1

	decayNum = 95
	decayDen = 100

	// floor is the smallest magnitude a decided score can reach by decay. Decay(Tactical) == floor.
	floor Score = Tactical*decayNum/decayDen - 1

	// Limit is the largest magnitude a heuristic evaluation may take. It is below floor so that a
	// decayed win always outranks a heuristic.
	Limit Score = floor - 1
)

// Margins is the table of aspiration margins, indexed by the widen step.
// The last margin opens the full window, so a search re-searched len(Margins)-1 times always succeeds.
var Margins = [...]Score{32, 128, 512, 2048, 8192, Infinity}

// Win returns the decided score of a win with offset plies of remaining depth.
func Win(offset int) Score {
	if offset < 0 {
		offset = 0
	}
	if offset > MaxPly {
		offset = MaxPly
	}
	return Decided + Score(offset)
}

// Loss returns the decided score of a loss with offset plies of remaining depth.
func Loss(offset int) Score { return -Win(offset) }

// Heuristic converts a raw evaluation into a Score, clamping it into the heuristic region.
func Heuristic(v float32) Score { return Clamp(Score(v)) }

// Clamp clamps s into [-Limit, Limit].
func Clamp(s Score) Score {
	switch {
	case s > Limit:
		return Limit
	case s < -Limit:
		return -Limit
	}
	return s
}

// Neg returns the score from the other player's point of view.
func (s Score) Neg() Score { return -s }

// IsDecided returns true if the score sits in the decided region. The threshold itself is decided.
func (s Score) IsDecided() bool { return s >= Tactical || s <= -Tactical }

// Decay applies one ply of mate distance decay. Outside the decided region it is the identity.
// Inside it the magnitude shrinks by 5%, rounded toward zero, and then by one more unit.
func (s Score) Decay() Score {
	if !s.IsDecided() {
		return s
	}
	d := Score(int64(s) * decayNum / decayDen)
	if d > 0 {
		d--
	} else {
		d++
	}
	return d
}

// Float normalizes the score to [-1, 1]. Decided scores map to the end points.
func (s Score) Float() float32 {
	switch {
	case s >= Tactical:
		return 1
	case s <= -Tactical:
		return -1
	}
	return float32(s) / float32(Tactical)
}

func (s Score) Format(f fmt.State, c rune) {
	switch {
	case s >= Tactical:
		fmt.Fprintf(f, "win(%d)", int32(s))
	case s <= -Tactical:
		fmt.Fprintf(f, "loss(%d)", int32(s))
	default:
		fmt.Fprintf(f, "%d", int32(s))
	}
}

// Aspiration returns the aspiration window around v for the given widen step.
// Steps past the end of Margins use the widest margin.
func Aspiration(v Score, step int) (lo, hi Score) {
	if step < 0 {
		step = 0
	}
	if step >= len(Margins) {
		step = len(Margins) - 1
	}
	m := Margins[step]
	if m >= Infinity {
		return -Infinity, Infinity
	}
	return saturate(int64(v) - int64(m)), saturate(int64(v) + int64(m))
}

// NullWindow returns the minimal window used to test whether a value beats v.
// In the decided region the window is one decay step wide instead of one unit.
func NullWindow(v Score) (lo, hi Score) {
	if v.IsDecided() {
		step := int64(v) - int64(v.Decay())
		if step < 0 {
			step = -step
		}
		return v, saturate(int64(v) + step)
	}
	return v, v + 1
}

// Child translates the window (alpha, beta) of a node into the window its child has to be searched with.
// The child's value is carried up through Decay, and negated when sameMover is false.
//
// Decay is not monotone across the Tactical threshold, so bounds that reach beyond floor are opened
// to infinity.
func Child(alpha, beta Score, sameMover bool) (lo, hi Score) {
	lo, hi = liftLow(alpha), liftHigh(beta)
	if sameMover {
		return lo, hi
	}
	return -hi, -lo
}

// Propagate carries a child's value up one ply.
func Propagate(child Score, sameMover bool) Score {
	if !sameMover {
		child = -child
	}
	return child.Decay()
}

func liftLow(alpha Score) Score {
	if alpha < -floor {
		return -Infinity
	}
	return alpha
}

func liftHigh(beta Score) Score {
	if beta > floor {
		return Infinity
	}
	return beta
}

func saturate(v int64) Score {
	switch {
	case v > int64(Infinity):
		return Infinity
	case v < -int64(Infinity):
		return -Infinity
	}
	return Score(v)
}
