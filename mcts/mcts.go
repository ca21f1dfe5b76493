// Package mcts implements Monte Carlo tree search over game.State.
//
// A search runs a fixed number of iterations of selection, expansion, evaluation and backpropagation
// on a tree that is rebuilt for every call. The exploration rule and the leaf evaluation are pluggable
// (see Selector and Evaluator). Nodes live in an arena owned by the MCTS and are addressed by index.
package mcts

import (
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/tcgsim/duel/game"
)

// Config is the structure to configure the MCTS.
type Config struct {
	// Budget is the number of iterations of a search.
	Budget int

	// Exploration is the constant C of the default UCB1 selector.
	Exploration float32

	// Cutoff bounds how many plies below the root the tree may grow. Zero means unbounded.
	Cutoff int

	// Seed seeds the generator used to settle chance steps. Searches from the same position with the
	// same seed are identical.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		Budget:      1000,
		Exploration: 1.4,
	}
}

func (c Config) IsValid() bool {
	return c.Budget > 0 && c.Exploration >= 0 && c.Cutoff >= 0
}

// Option configures the policies of an MCTS.
type Option func(t *MCTS)

// WithSelector replaces the default UCB1 selector.
func WithSelector(s Selector) Option {
	return func(t *MCTS) { t.selector = s }
}

// WithEvaluator replaces the default Heuristic evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(t *MCTS) { t.evaluator = e }
}

func WithLogger(l zerolog.Logger) Option {
	return func(t *MCTS) { t.logger = l }
}

// Stats describes the last search.
type Stats struct {
	Iterations int
	Nodes      int
	Depth      int // deepest ply reached below the root
	Failures   int // iterations cut short because an action could not be replayed
}

// MCTS is the search engine and the owner of the node arena. An MCTS is not safe for concurrent use.
type MCTS struct {
	Config
	selector  Selector
	evaluator Evaluator
	logger    zerolog.Logger
	rand      *rand.Rand

	// memory related fields
	nodes    []Node
	children [][]naughty

	root      naughty
	rootMover game.Player
	current   game.State
	stats     Stats

	lumberjack
}

// New creates an MCTS. An invalid config is replaced by DefaultConfig.
func New(conf Config, opts ...Option) *MCTS {
	if !conf.IsValid() {
		conf = DefaultConfig()
	}
	retVal := &MCTS{
		Config:     conf,
		selector:   UCB1{C: conf.Exploration},
		evaluator:  Heuristic{},
		logger:     zerolog.Nop(),
		rand:       rand.New(rand.NewSource(conf.Seed)),
		nodes:      make([]Node, 0, conf.Budget+1),
		children:   make([][]naughty, 0, conf.Budget+1),
		root:       nilNode,
		lumberjack: makeLumberJack(),
	}
	for _, opt := range opts {
		opt(retVal)
	}
	return retVal
}

// Stats returns the statistics of the last search.
func (t *MCTS) Stats() Stats { return t.stats }
