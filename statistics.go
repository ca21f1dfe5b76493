package duel

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tcgsim/duel/game"
)

// Result is the outcome of one tournament game.
type Result struct {
	Game     int
	ID       uuid.UUID
	First    int // contender that played game.First
	Winner   int // contender that won, -1 for a draw or a failed game
	Steps    int
	Summary  Summary
	Examples []Example // only if the tournament records examples
	Err      error
}

// Statistics aggregates tournament results per contender.
type Statistics struct {
	Names   [2]string
	Wins    [2]int
	Losses  [2]int
	Draws   [2]int
	Errors  int
	Results []Result
}

func makeStatistics(a, b string) Statistics {
	return Statistics{
		Names:   [2]string{a, b},
		Results: make([]Result, 0, 64),
	}
}

func (s *Statistics) update(r Result) {
	s.Results = append(s.Results, r)
	switch {
	case r.Err != nil:
		s.Errors++
	case r.Winner < 0:
		s.Draws[0]++
		s.Draws[1]++
	default:
		s.Wins[r.Winner]++
		s.Losses[1-r.Winner]++
	}
}

// Games returns the number of games that were played to a normal end.
func (s *Statistics) Games() int { return s.Wins[0] + s.Losses[0] + s.Draws[0] }

// WinRate returns the share of finished games the contender won.
func (s *Statistics) WinRate(contender int) float32 {
	games := s.Games()
	if games == 0 {
		return 0
	}
	return float32(s.Wins[contender]) / float32(games)
}

// Dump writes the results to filename as CSV.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	if err := s.WriteCSV(f); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes one record per game, with the running win rate of both contenders.
func (s *Statistics) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"game", "id", "first", "winner", "steps", s.Names[0], s.Names[1], "error"}
	if err := cw.Write(header); err != nil {
		return errors.WithStack(err)
	}

	var wins [2]int
	var finished int
	records := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		winner := "draw"
		errMsg := ""
		switch {
		case r.Err != nil:
			winner = ""
			errMsg = r.Err.Error()
		case r.Winner >= 0:
			winner = s.Names[r.Winner]
			wins[r.Winner]++
			finished++
		default:
			finished++
		}
		record := []string{
			strconv.Itoa(r.Game),
			r.ID.String(),
			s.Names[r.First],
			winner,
			strconv.Itoa(r.Steps),
			winRate(wins[0], finished),
			winRate(wins[1], finished),
			errMsg,
		}
		records = append(records, record)
	}
	if err := cw.WriteAll(records); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func winRate(wins, games int) string {
	if games == 0 {
		return ""
	}
	return strconv.FormatFloat(float64(wins)/float64(games), 'f', 3, 32)
}

// contender maps a seat of game g to the contender sitting in it.
func contender(first int, p game.Player) int {
	switch p {
	case game.First:
		return first
	case game.Second:
		return 1 - first
	}
	return -1
}
