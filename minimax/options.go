package minimax

import (
	"github.com/rs/zerolog"
)

const (
	DefaultDepth     = 4
	DefaultTableSize = 1 << 16
)

// Option configures an Engine.
type Option func(e *Engine)

// WithDepth sets the deepest iteration of iterative deepening.
func WithDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithTableSize sets the number of transposition table slots (rounded up to a power of two).
func WithTableSize(size int) Option {
	return func(e *Engine) {
		e.tableSize = size
	}
}

// WithNodeBudget stops iterative deepening once a completed iteration has visited at least nodes nodes.
// The iteration in progress always completes. Zero means no budget.
func WithNodeBudget(nodes int) Option {
	return func(e *Engine) {
		e.nodeBudget = nodes
	}
}

// WithSeed seeds the generator used to settle chance steps.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}
