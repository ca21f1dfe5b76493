package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is a match between two contenders, A and B.
type Config struct {
	Game        GameConfig   `mapstructure:"game"`
	Games       int          `mapstructure:"games"`
	Concurrency int          `mapstructure:"concurrency"`
	MaxSteps    int          `mapstructure:"max_steps"`
	Seed        uint64       `mapstructure:"seed"`
	A           PlayerConfig `mapstructure:"a"`
	B           PlayerConfig `mapstructure:"b"`

	Stats     string `mapstructure:"stats"` // CSV of the results
	Dot       string `mapstructure:"dot"`   // DOT of an MCTS tree from the opening position
	Gif       string `mapstructure:"gif"`   // animation of an exhibition game
	Record    bool   `mapstructure:"record"`
	BatchSize int    `mapstructure:"batch_size"`
	LogLevel  string `mapstructure:"log_level"`
}

// GameConfig selects the game: an m,n,k game ("mnk", m x n board, k in a row) or connect-k with
// gravity ("c4", m rows, n columns).
type GameConfig struct {
	Kind string `mapstructure:"kind"`
	M    int    `mapstructure:"m"`
	N    int    `mapstructure:"n"`
	K    int    `mapstructure:"k"`
}

// PlayerConfig selects and tunes the engine of a contender.
type PlayerConfig struct {
	Name   string `mapstructure:"name"`
	Engine string `mapstructure:"engine"` // minimax or mcts

	// minimax
	Depth     int `mapstructure:"depth"`
	TableSize int `mapstructure:"table_size"`
	Nodes     int `mapstructure:"nodes"`

	// mcts
	Budget       int       `mapstructure:"budget"`
	Exploration  float32   `mapstructure:"exploration"`
	Cutoff       int       `mapstructure:"cutoff"`
	Greedy       bool      `mapstructure:"greedy"`
	Evaluator    string    `mapstructure:"evaluator"` // heuristic, rollout or linear
	RolloutDepth int       `mapstructure:"rollout_depth"`
	Weights      []float32 `mapstructure:"weights"`
}

const (
	engineMinimax = "minimax"
	engineMCTS    = "mcts"

	gameMNK = "mnk"
	gameC4  = "c4"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.kind", gameMNK)
	v.SetDefault("game.m", 3)
	v.SetDefault("game.n", 3)
	v.SetDefault("game.k", 3)
	v.SetDefault("games", 10)
	v.SetDefault("concurrency", 0)
	v.SetDefault("max_steps", 0)
	v.SetDefault("seed", 1)
	v.SetDefault("stats", "")
	v.SetDefault("dot", "")
	v.SetDefault("gif", "")
	v.SetDefault("record", false)
	v.SetDefault("batch_size", 16)
	v.SetDefault("log_level", "info")

	for _, p := range []string{"a", "b"} {
		v.SetDefault(p+".name", strings.ToUpper(p))
		v.SetDefault(p+".engine", engineMinimax)
		v.SetDefault(p+".depth", 4)
		v.SetDefault(p+".table_size", 1<<16)
		v.SetDefault(p+".nodes", 0)
		v.SetDefault(p+".budget", 1000)
		v.SetDefault(p+".exploration", 1.4)
		v.SetDefault(p+".cutoff", 0)
		v.SetDefault(p+".greedy", false)
		v.SetDefault(p+".evaluator", "heuristic")
		v.SetDefault(p+".rollout_depth", 0)
	}
}

// loadConfig reads the configuration file at path, if any. Every key can be overridden from the
// environment with the DUEL_ prefix, e.g. DUEL_A_ENGINE=mcts.
func loadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("duel")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Game.Kind != gameMNK && c.Game.Kind != gameC4:
		return errors.Errorf("unknown game %q", c.Game.Kind)
	case c.Game.M <= 0 || c.Game.N <= 0 || c.Game.K <= 0:
		return errors.Errorf("invalid game %dx%d, k=%d", c.Game.M, c.Game.N, c.Game.K)
	case c.Game.K > c.Game.M && c.Game.K > c.Game.N:
		return errors.Errorf("k=%d does not fit on a %dx%d board", c.Game.K, c.Game.M, c.Game.N)
	case c.Games < 0:
		return errors.Errorf("invalid number of games %d", c.Games)
	case c.Record && c.BatchSize <= 0:
		return errors.Errorf("invalid batch size %d", c.BatchSize)
	}
	for _, p := range []PlayerConfig{c.A, c.B} {
		if err := p.validate(); err != nil {
			return errors.WithMessagef(err, "contender %s", p.Name)
		}
	}
	return nil
}

func (p PlayerConfig) validate() error {
	switch p.Engine {
	case engineMinimax:
		if p.Depth <= 0 {
			return errors.Errorf("invalid depth %d", p.Depth)
		}
	case engineMCTS:
		if p.Budget <= 0 {
			return errors.Errorf("invalid budget %d", p.Budget)
		}
		switch p.Evaluator {
		case "heuristic", "rollout":
		case "linear":
			if len(p.Weights) == 0 {
				return errors.New("linear evaluator without weights")
			}
		default:
			return errors.Errorf("unknown evaluator %q", p.Evaluator)
		}
	default:
		return errors.Errorf("unknown engine %q", p.Engine)
	}
	return nil
}
