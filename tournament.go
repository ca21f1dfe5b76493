package duel

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tcgsim/duel/game"
)

// Tournament plays Games independent playouts between two contenders, A (0) and B (1).
// A plays First in even games and Second in odd ones.
//
// Every playout gets a fresh state and fresh searchers, so NewGame and NewSearcher must not return
// values that share mutable state.
type Tournament struct {
	Names       [2]string // defaults to "A" and "B"
	Games       int
	Concurrency int // playouts run at once; defaults to the number of CPUs
	MaxSteps    int
	Seed        uint64 // game g settles chance with Seed+g

	NewGame     func() game.State
	NewSearcher func(contender, game int) Searcher

	// Record keeps the training examples of every game, passed through Augment if it is set.
	Record  bool
	Augment Augmenter

	Logger zerolog.Logger
}

func (t *Tournament) validate() error {
	switch {
	case t.Games < 0:
		return errors.Errorf("invalid number of games %d", t.Games)
	case t.NewGame == nil:
		return errors.New("tournament has no game")
	case t.NewSearcher == nil:
		return errors.New("tournament has no searchers")
	}
	return nil
}

// Run plays the tournament. Games that fail are counted in Statistics.Errors; their errors are also
// returned together. Run returns early only if ctx is cancelled.
func (t *Tournament) Run(ctx context.Context) (Statistics, error) {
	if err := t.validate(); err != nil {
		return Statistics{}, err
	}
	names := t.Names
	if names[0] == "" {
		names[0] = "A"
	}
	if names[1] == "" {
		names[1] = "B"
	}
	concurrency := t.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	results := make([]Result, t.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	var mu sync.Mutex
	var finished int
	for i := 0; i < t.Games; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = t.play(i)

			mu.Lock()
			finished++
			done := finished
			mu.Unlock()
			t.Logger.Debug().Int("finished", done).Int("games", t.Games).Msg("progress")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Statistics{}, errors.WithStack(err)
	}

	stats := makeStatistics(names[0], names[1])
	var allErrs manyErr
	for _, r := range results {
		stats.update(r)
		if r.Err != nil {
			allErrs = append(allErrs, errors.WithMessagef(r.Err, "game %d (%v)", r.Game, r.ID))
		}
	}
	t.Logger.Info().
		Int("games", t.Games).
		Ints("wins", stats.Wins[:]).
		Int("draws", stats.Draws[0]).
		Int("errors", stats.Errors).
		Msg("tournament finished")
	if len(allErrs) > 0 {
		return stats, allErrs
	}
	return stats, nil
}

func (t *Tournament) play(i int) Result {
	id := uuid.New()
	log := t.Logger.With().Str("playout", id.String()).Int("game", i).Logger()

	first := i % 2
	searchers := [2]Searcher{t.NewSearcher(0, i), t.NewSearcher(1, i)}
	seats := NewSeats(searchers[first], searchers[1-first])

	p := NewPlayout(t.NewGame(), seats,
		WithMaxSteps(t.MaxSteps),
		WithSeed(t.Seed+uint64(i)),
		WithLogger(log),
	)
	turns, err := p.Run()

	r := Result{
		Game:    i,
		ID:      id,
		First:   first,
		Winner:  contender(first, p.Winner()),
		Steps:   len(turns),
		Summary: p.Summarize(),
		Err:     err,
	}
	if err != nil {
		r.Winner = -1
	}
	if t.Record && err == nil {
		r.Examples = p.Examples(t.Augment)
	}
	log.Debug().Int("winner", r.Winner).Int("steps", r.Steps).Err(err).Msg("played")
	return r
}
