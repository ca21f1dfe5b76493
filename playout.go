// Package duel drives two searchers against each other over a game.State.
//
// A Playout is a pull iterator: each Step asks the mover's searcher for a principal variation and
// plays its first action. A Tournament plays many independent playouts concurrently and aggregates
// their results into Statistics.
package duel

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
)

const (
	// DefaultMaxSteps bounds a playout when no step limit is given.
	DefaultMaxSteps = 512

	maxChanceSteps = 64
)

// Turn is one step of a playout.
type Turn struct {
	Step   int // zero based
	Player game.Player
	Action game.Action
	State  game.State  // a copy of the state after the action
	Score  score.Score // the searcher's score, from Player's point of view

	// Features of the position Player searched, nil if the state is not a game.Vectorizer.
	Features []float32
}

// PlayoutOption configures a Playout.
type PlayoutOption func(p *Playout)

// WithMaxSteps bounds the number of turns. Non positive values keep the default.
func WithMaxSteps(n int) PlayoutOption {
	return func(p *Playout) {
		if n > 0 {
			p.maxSteps = n
		}
	}
}

// WithSeed seeds the generator that settles chance steps on the live state.
func WithSeed(seed uint64) PlayoutOption {
	return func(p *Playout) { p.rng.Seed(seed) }
}

func WithLogger(l zerolog.Logger) PlayoutOption {
	return func(p *Playout) { p.log = l }
}

// OutputEncoder records the turns of a playout as they are played. An example is the gif.Encoder.
type OutputEncoder interface {
	Encode(t Turn) error
	Flush() error
}

// WithEncoder sends every turn to enc. A failing encoder is logged and dropped; it never stops the
// playout. Flushing is left to the caller.
func WithEncoder(enc OutputEncoder) PlayoutOption {
	return func(p *Playout) { p.enc = enc }
}

// Playout plays one game between the searchers of a Seats. A Playout is not safe for concurrent use.
type Playout struct {
	state    game.State
	seats    *Seats
	maxSteps int
	rng      *rand.Rand
	log      zerolog.Logger
	enc      OutputEncoder

	turns []Turn
	turn  Turn
	err   error // sticky
	last  error // what the last Step returned
}

// NewPlayout starts a playout from s. The playout owns s and advances it in place.
func NewPlayout(s game.State, seats *Seats, opts ...PlayoutOption) *Playout {
	p := &Playout{
		state:    s,
		seats:    seats,
		maxSteps: DefaultMaxSteps,
		rng:      rand.New(rand.NewSource(0)),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Step plays one turn.
//
// A playout ends normally with ErrWinnerDecided or ErrStepLimit. It fails with a *SearchFailure,
// *ReentrantBorrowError or *AdvanceError; once it failed every further Step returns ErrTerminated.
func (p *Playout) Step() (Turn, error) {
	t, err := p.step()
	p.last = err
	return t, err
}

func (p *Playout) step() (Turn, error) {
	if p.err != nil {
		return Turn{}, ErrTerminated
	}
	if over, _ := game.Ended(p.state); over {
		return Turn{}, ErrWinnerDecided
	}
	if len(p.turns) >= p.maxSteps {
		return Turn{}, ErrStepLimit
	}
	if err := p.settle(); err != nil {
		return Turn{}, p.fail(err)
	}
	if over, _ := game.Ended(p.state); over {
		return Turn{}, ErrWinnerDecided
	}

	mover := p.state.ToMove()
	searcher, release, err := p.seats.Borrow(mover)
	if err != nil {
		return Turn{}, p.fail(err)
	}

	var view game.State
	if c, ok := p.state.(game.Concealer); ok {
		view = c.Conceal(mover)
	} else {
		view = p.state.Clone()
	}
	var features []float32
	if v, ok := view.(game.Vectorizer); ok {
		features = v.Features()
	}

	pv, err := searcher.Search(view)
	release()
	if err != nil {
		return Turn{}, p.fail(&SearchFailure{Player: mover, Err: err})
	}
	if pv.Len() == 0 {
		return Turn{}, p.fail(&SearchFailure{Player: mover})
	}

	a := pv.First()
	if err := p.state.Advance(a); err != nil {
		return Turn{}, p.fail(&AdvanceError{Player: mover, Action: a, Err: err})
	}

	t := Turn{
		Step:     len(p.turns),
		Player:   mover,
		Action:   a,
		State:    p.state.Clone(),
		Score:    pv.Score,
		Features: features,
	}
	p.turns = append(p.turns, t)
	if p.enc != nil {
		if err := p.enc.Encode(t); err != nil {
			p.log.Warn().Err(err).Int("step", t.Step).Msg("dropping output encoder")
			p.enc = nil
		}
	}
	p.log.Debug().Int("step", t.Step).Str("player", fmt.Sprint(mover)).Int32("action", int32(a)).Int32("score", int32(pv.Score)).Msg("turn")
	return t, nil
}

// settle resolves pending chance steps on the live state.
func (p *Playout) settle() error {
	for i := 0; p.state.ToMove() == game.None && p.state.Winner() == game.None; i++ {
		r, ok := p.state.(game.ChanceResolver)
		if !ok {
			return &AdvanceError{Player: game.None, Action: game.NoAction, Err: errNoResolver}
		}
		if i >= maxChanceSteps {
			return &AdvanceError{Player: game.None, Action: game.NoAction, Err: errTooManyChanceSteps}
		}
		if err := r.ResolveChance(p.rng); err != nil {
			return &AdvanceError{Player: game.None, Action: game.NoAction, Err: err}
		}
	}
	return nil
}

func (p *Playout) fail(err error) error {
	p.err = err
	p.log.Warn().Err(err).Int("step", len(p.turns)).Msg("playout failed")
	return err
}

// Next plays the next turn and reports whether there was one. Use Turn to get it and Err to check
// why the playout stopped.
func (p *Playout) Next() bool {
	t, err := p.Step()
	if err != nil {
		return false
	}
	p.turn = t
	return true
}

// Turn returns the turn played by the last successful Next.
func (p *Playout) Turn() Turn { return p.turn }

// Err returns the failure that stopped the playout, or nil if it ended normally or is still running.
func (p *Playout) Err() error { return p.err }

// Reason returns what the last Step returned.
func (p *Playout) Reason() error { return p.last }

// Run plays the playout to its end.
func (p *Playout) Run() ([]Turn, error) {
	for p.Next() {
	}
	return p.turns, p.err
}

// State returns the live state. It must not be modified.
func (p *Playout) State() game.State { return p.state }

// Turns returns the turns played so far.
func (p *Playout) Turns() []Turn { return p.turns }

// Trajectory returns the actions played so far.
func (p *Playout) Trajectory() []game.Action {
	return lo.Map(p.turns, func(t Turn, _ int) game.Action { return t.Action })
}

// Winner returns the winner of the live state.
func (p *Playout) Winner() game.Player { return p.state.Winner() }

// Outcome returns 1 if player won, -1 if player lost and 0 otherwise.
func (p *Playout) Outcome(player game.Player) float32 {
	switch w := p.state.Winner(); {
	case w == game.None || player == game.None:
		return 0
	case w == player:
		return 1
	default:
		return -1
	}
}
