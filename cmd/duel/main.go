// Command duel plays a tournament of m,n,k or connect-k games between two configured engines.
//
//	duel -config match.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/tcgsim/duel"
	"github.com/tcgsim/duel/encoding/gif"
	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/game/c4"
	"github.com/tcgsim/duel/game/mnk"
	"github.com/tcgsim/duel/mcts"
	"github.com/tcgsim/duel/minimax"
)

func main() {
	configPath := flag.String("config", "", "path of the match configuration")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing log level")
	}
	log = log.Level(level)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("duel failed")
	}
}

func run(ctx context.Context, cfg Config, log zerolog.Logger) error {
	newGame := func() game.State {
		if cfg.Game.Kind == gameC4 {
			return c4.New(cfg.Game.M, cfg.Game.N, cfg.Game.K)
		}
		return mnk.New(cfg.Game.M, cfg.Game.N, cfg.Game.K)
	}
	players := [2]PlayerConfig{cfg.A, cfg.B}

	tour := &duel.Tournament{
		Names:       [2]string{cfg.A.Name, cfg.B.Name},
		Games:       cfg.Games,
		Concurrency: cfg.Concurrency,
		MaxSteps:    cfg.MaxSteps,
		Seed:        cfg.Seed,
		NewGame:     newGame,
		NewSearcher: func(contender, g int) duel.Searcher {
			return newSearcher(players[contender], cfg.Seed+uint64(g), log)
		},
		Record: cfg.Record,
		Logger: log,
	}
	if cfg.Game.Kind == gameMNK && cfg.Game.M == cfg.Game.N {
		tour.Augment = symmetries(cfg.Game.M)
	}

	start := time.Now()
	stats, err := tour.Run(ctx)
	if err != nil {
		if stats.Results == nil {
			return err
		}
		log.Warn().Err(err).Int("failed", stats.Errors).Msg("some games failed")
	}
	for i, name := range stats.Names {
		log.Info().
			Str("contender", name).
			Int("wins", stats.Wins[i]).
			Int("losses", stats.Losses[i]).
			Int("draws", stats.Draws[i]).
			Float32("win_rate", stats.WinRate(i)).
			Msg("result")
	}
	log.Info().Dur("took", time.Since(start)).Int("games", stats.Games()).Msg("tournament done")

	if cfg.Stats != "" {
		if err := stats.Dump(cfg.Stats); err != nil {
			return errors.WithMessage(err, "writing statistics")
		}
		log.Info().Str("file", cfg.Stats).Msg("statistics written")
	}
	if cfg.Record {
		if err := prepare(stats, cfg, log); err != nil {
			return err
		}
	}
	if cfg.Dot != "" {
		if err := dumpTree(newGame(), players, cfg, log); err != nil {
			return err
		}
	}
	if cfg.Gif != "" {
		if err := exhibition(newGame(), players, cfg, log); err != nil {
			return err
		}
	}
	return nil
}

func newSearcher(p PlayerConfig, seed uint64, log zerolog.Logger) duel.Searcher {
	if p.Engine == engineMCTS {
		return newMCTS(p, seed, log)
	}
	return minimax.New(
		minimax.WithDepth(p.Depth),
		minimax.WithTableSize(p.TableSize),
		minimax.WithNodeBudget(p.Nodes),
		minimax.WithSeed(seed),
		minimax.WithLogger(log.With().Str("engine", p.Name).Logger()),
	)
}

func newMCTS(p PlayerConfig, seed uint64, log zerolog.Logger) *mcts.MCTS {
	conf := mcts.Config{
		Budget:      p.Budget,
		Exploration: p.Exploration,
		Cutoff:      p.Cutoff,
		Seed:        seed,
	}
	opts := []mcts.Option{mcts.WithLogger(log.With().Str("engine", p.Name).Logger())}
	switch p.Evaluator {
	case "rollout":
		opts = append(opts, mcts.WithEvaluator(mcts.Rollout{Seed: seed, Depth: p.RolloutDepth}))
	case "linear":
		opts = append(opts, mcts.WithEvaluator(mcts.Linear{Weights: p.Weights}))
	}
	if p.Greedy {
		opts = append(opts, mcts.WithSelector(mcts.NoExploration{}))
	}
	return mcts.New(conf, opts...)
}

// symmetries augments square board examples with their rotations and reflections.
func symmetries(size int) duel.Augmenter {
	return func(ex duel.Example) []duel.Example {
		syms, err := mnk.Symmetries(ex.Features, size, size)
		if err != nil {
			return []duel.Example{ex}
		}
		retVal := make([]duel.Example, 0, len(syms))
		for _, f := range syms {
			retVal = append(retVal, duel.Example{Features: f, Player: ex.Player, Value: ex.Value})
		}
		return retVal
	}
}

func prepare(stats duel.Statistics, cfg Config, log zerolog.Logger) error {
	var examples []duel.Example
	for _, r := range stats.Results {
		examples = append(examples, r.Examples...)
	}
	xs, values, batches, err := duel.PrepareExamples(examples, cfg.BatchSize, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return errors.WithMessage(err, "preparing examples")
	}
	log.Info().
		Int("examples", len(examples)).
		Int("batches", batches).
		Ints("xs", xs.Shape()).
		Ints("values", values.Shape()).
		Msg("examples prepared")
	return nil
}

// dumpTree searches the opening position with the first MCTS contender and writes its tree.
func dumpTree(s game.State, players [2]PlayerConfig, cfg Config, log zerolog.Logger) error {
	for _, p := range players {
		if p.Engine != engineMCTS {
			continue
		}
		t := newMCTS(p, cfg.Seed, log)
		if _, err := t.Search(s); err != nil {
			return errors.WithMessage(err, "searching the opening")
		}
		dot, err := t.ToDot(uint32(p.Budget / 100))
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Dot, []byte(dot), 0644); err != nil {
			return errors.WithStack(err)
		}
		log.Info().Str("file", cfg.Dot).Str("contender", p.Name).Int("nodes", t.Nodes()).Msg("tree written")
		return nil
	}
	return errors.New("no contender uses mcts, cannot dump a tree")
}

// exhibition plays one more game, A moving first, and renders it.
func exhibition(s game.State, players [2]PlayerConfig, cfg Config, log zerolog.Logger) error {
	f, err := os.Create(cfg.Gif)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	enc := gif.NewGifEncoder(f, fmt.Sprintf("%s vs %s", players[0].Name, players[1].Name), 1200, 1200)
	seats := duel.NewSeats(newSearcher(players[0], cfg.Seed, log), newSearcher(players[1], cfg.Seed, log))
	p := duel.NewPlayout(s, seats,
		duel.WithMaxSteps(cfg.MaxSteps),
		duel.WithSeed(cfg.Seed),
		duel.WithEncoder(enc),
		duel.WithLogger(log),
	)
	if _, err := p.Run(); err != nil {
		return errors.WithMessage(err, "exhibition")
	}
	if err := enc.Flush(); err != nil {
		return errors.WithMessage(err, "writing animation")
	}
	log.Info().Str("file", cfg.Gif).Int("frames", enc.Frames()).AnErr("reason", p.Reason()).Msg("exhibition written")
	return f.Close()
}
