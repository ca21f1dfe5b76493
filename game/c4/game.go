// Package c4 implements connect-n games with gravity, Connect Four being New(6, 7, 4).
// Actions are column indices.
package c4

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/pkg/errors"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
)

const (
	Red    = game.First
	Yellow = game.Second

	windowWeight = 8
)

var (
	_ game.State      = &Game{}
	_ game.Vectorizer = &Game{}
)

type Game struct {
	b          *Board
	history    []game.Action
	nextToMove game.Player
	winner     game.Player
	moveCount  int
}

//New creates a new game with a board of (rows,cols) and N to win (connect4 being 4 to win)
func New(rows, cols, N int) *Game {
	return &Game{
		b:          newBoard(rows, cols, N),
		history:    make([]game.Action, 0, rows*cols),
		nextToMove: Red,
	}
}

func ConnectFour() *Game { return New(6, 7, 4) }

// FromBoard creates a position from a row major board, top row first. Stones must rest on the
// bottom or on another stone; the player to move is derived from the stone count.
func FromBoard(rows, cols, n int, board []game.Player) (*Game, error) {
	if len(board) != rows*cols {
		return nil, errors.Errorf("board has %d cells, expected %dx%d", len(board), rows, cols)
	}
	g := New(rows, cols, n)
	copy(g.b.cells(), board)

	var reds, yellows int
	for y, row := range g.b.it {
		for x, p := range row {
			switch p {
			case Red:
				reds++
			case Yellow:
				yellows++
			default:
				continue
			}
			if y+1 < rows && g.b.it[y+1][x] == game.None {
				return nil, errors.Errorf("stone at row %d, column %d is floating", y, x)
			}
		}
	}
	switch reds - yellows {
	case 0:
		g.nextToMove = Red
	case 1:
		g.nextToMove = Yellow
	default:
		return nil, errors.Errorf("impossible position: %d red, %d yellow", reds, yellows)
	}
	g.moveCount = reds + yellows
	g.winner = g.b.checkWin()
	return g, nil
}

func (g *Game) BoardSize() (int, int) { return g.b.rows(), g.b.cols() }

// Board returns the row major cells of the board, top row first.
func (g *Game) Board() []game.Player { return g.b.cells() }

func (g *Game) History() []game.Action { return g.history }

func (g *Game) MoveNumber() int { return g.moveCount + 1 }

func (g *Game) ToMove() game.Player { return g.nextToMove }

func (g *Game) Winner() game.Player { return g.winner }

func (g *Game) Actions() []game.Action {
	if g.winner != game.None {
		return nil
	}
	var retVal []game.Action
	for col := 0; col < g.b.cols(); col++ {
		if g.b.it[0][col] == game.None {
			retVal = append(retVal, game.Action(col))
		}
	}
	return retVal
}

func (g *Game) Advance(a game.Action) error {
	if g.winner != game.None {
		return errors.Errorf("game already won by %v", g.winner)
	}
	row, err := g.b.drop(int(a))
	if err != nil {
		return err
	}
	g.b.it[row][a] = g.nextToMove
	g.history = append(g.history, a)
	g.moveCount++
	if g.b.connected(row, int(a)) {
		g.winner = g.nextToMove
	}
	g.nextToMove = g.nextToMove.Opponent()
	return nil
}

// Eval counts the windows of n cells still open to each player, weighted by the square of the stones
// already in them.
func (g *Game) Eval(p game.Player) score.Score {
	switch g.winner {
	case game.None:
	case p:
		return score.Limit
	default:
		return -score.Limit
	}
	var v int
	g.b.eachWindow(func(window []game.Player) {
		var reds, yellows int
		for _, c := range window {
			switch c {
			case Red:
				reds++
			case Yellow:
				yellows++
			}
		}
		switch {
		case yellows == 0 && reds > 0:
			v += reds * reds
		case reds == 0 && yellows > 0:
			v -= yellows * yellows
		}
	})
	s := score.Clamp(score.Score(v * windowWeight))
	switch p {
	case Red:
		return s
	case Yellow:
		return -s
	}
	return 0
}

func (g *Game) Fingerprint() game.Fingerprint {
	h := fnv.New64a()
	cells := g.b.cells()
	buf := make([]byte, len(cells)+1)
	for i, p := range cells {
		buf[i] = byte(p)
	}
	buf[len(cells)] = byte(g.nextToMove)
	h.Write(buf)
	var dims [12]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(g.b.rows()))
	binary.LittleEndian.PutUint32(dims[4:], uint32(g.b.cols()))
	binary.LittleEndian.PutUint32(dims[8:], uint32(g.b.n))
	h.Write(dims[:])
	return game.Fingerprint(h.Sum64())
}

// Features encodes the board from the point of view of the player to move: own stones are 1, the
// opponent's are -1.
func (g *Game) Features() []float32 {
	cells := g.b.cells()
	retVal := make([]float32, len(cells))
	for i, p := range cells {
		switch {
		case p == game.None:
		case p == g.nextToMove:
			retVal[i] = 1
		default:
			retVal[i] = -1
		}
	}
	return retVal
}

func (g *Game) Eq(other game.State) bool {
	ot, ok := other.(*Game)
	if !ok {
		return false
	}
	if !g.b.data.Eq(ot.b.data) {
		return false
	}
	return g.nextToMove == ot.nextToMove && g.moveCount == ot.moveCount
}

func (g *Game) Clone() game.State {
	history2 := make([]game.Action, len(g.history), cap(g.history))
	copy(history2, g.history)
	return &Game{
		b:          g.b.clone(),
		history:    history2,
		nextToMove: g.nextToMove,
		winner:     g.winner,
		moveCount:  g.moveCount,
	}
}

func (g *Game) Format(s fmt.State, c rune) { g.b.Format(s, c) }
