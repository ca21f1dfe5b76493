package mnk

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/pkg/errors"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
)

var (
	Cross  = game.First
	Nought = game.Second
)

var (
	_ game.State      = &MNK{}
	_ game.Vectorizer = &MNK{}
)

// lineWeight scales the open line count used by Eval.
const lineWeight = 16

// MNK is a representation of M,N,K games - a game is played on a MxN board. K in a row to win.
type MNK struct {
	board   []game.Player
	m, n, k int

	nextToMove game.Player
	history    []game.Action
	winner     game.Player
}

// New creates a new MNK game. Cross moves first.
func New(m, n, k int) *MNK {
	return &MNK{
		board:      make([]game.Player, m*n),
		history:    make([]game.Action, 0, m*n),
		m:          m,
		n:          n,
		k:          k,
		nextToMove: Cross,
	}
}

// TicTacToe creates a new MNK game for Tic Tac Toe
func TicTacToe() *MNK { return New(3, 3, 3) }

// FromBoard creates a position from a row major board. The player to move is derived from the stone count.
func FromBoard(m, n, k int, board []game.Player) (*MNK, error) {
	if len(board) != m*n {
		return nil, errors.Errorf("board has %d cells, expected %dx%d", len(board), m, n)
	}
	g := New(m, n, k)
	var crosses, noughts int
	for i, p := range board {
		switch p {
		case Cross:
			crosses++
		case Nought:
			noughts++
		}
		g.board[i] = p
	}
	switch crosses - noughts {
	case 0:
		g.nextToMove = Cross
	case 1:
		g.nextToMove = Nought
	default:
		return nil, errors.Errorf("impossible position: %d crosses, %d noughts", crosses, noughts)
	}
	g.winner = g.findWinner()
	return g, nil
}

func (g *MNK) Format(s fmt.State, c rune) {
	for i, p := range g.board {
		if i%g.n == 0 {
			fmt.Fprint(s, "⎢ ")
		}
		fmt.Fprintf(s, "%s ", p)
		if (i+1)%g.n == 0 {
			fmt.Fprint(s, "⎥\n")
		}
	}
}

func (g *MNK) BoardSize() (int, int) { return g.m, g.n }
func (g *MNK) Board() []game.Player  { return g.board }

// History returns the actions played so far.
func (g *MNK) History() []game.Action { return g.history }

func (g *MNK) ToMove() game.Player { return g.nextToMove }

func (g *MNK) Winner() game.Player { return g.winner }

func (g *MNK) Actions() []game.Action {
	if g.winner != game.None {
		return nil
	}
	retVal := make([]game.Action, 0, len(g.board)-len(g.history))
	for i, p := range g.board {
		if p == game.None {
			retVal = append(retVal, game.Action(i))
		}
	}
	return retVal
}

func (g *MNK) check(a game.Action) error {
	if g.winner != game.None {
		return errors.Errorf("game already won by %v", g.winner)
	}
	if a < 0 || int(a) >= len(g.board) {
		return errors.Errorf("cell %d is off the %dx%d board", a, g.m, g.n)
	}
	if g.board[a] != game.None {
		return errors.Errorf("cell %d is occupied by %v", a, g.board[a])
	}
	return nil
}

func (g *MNK) Advance(a game.Action) error {
	if err := g.check(a); err != nil {
		return err
	}
	g.board[a] = g.nextToMove
	g.history = append(g.history, a)
	if g.isWinner(g.nextToMove) {
		g.winner = g.nextToMove
	}
	g.nextToMove = g.nextToMove.Opponent()
	return nil
}

// Eval counts the lines still open to each player, weighted by the square of the stones already in them.
func (g *MNK) Eval(p game.Player) score.Score {
	switch g.winner {
	case game.None:
	case p:
		return score.Limit
	default:
		return -score.Limit
	}
	var v int
	g.eachLine(func(cells []int) {
		var crosses, noughts int
		for _, c := range cells {
			switch g.board[c] {
			case Cross:
				crosses++
			case Nought:
				noughts++
			}
		}
		switch {
		case noughts == 0 && crosses > 0:
			v += crosses * crosses
		case crosses == 0 && noughts > 0:
			v -= noughts * noughts
		}
	})
	s := score.Clamp(score.Score(v * lineWeight))
	switch p {
	case Cross:
		return s
	case Nought:
		return -s
	}
	return 0
}

func (g *MNK) Fingerprint() game.Fingerprint {
	h := fnv.New64a()
	buf := make([]byte, len(g.board)+1)
	for i, p := range g.board {
		buf[i] = byte(p)
	}
	buf[len(g.board)] = byte(g.nextToMove)
	h.Write(buf)
	var dims [12]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(g.m))
	binary.LittleEndian.PutUint32(dims[4:], uint32(g.n))
	binary.LittleEndian.PutUint32(dims[8:], uint32(g.k))
	h.Write(dims[:])
	return game.Fingerprint(h.Sum64())
}

// Features encodes the board from the point of view of the player to move: own stones are 1, the
// opponent's are -1.
func (g *MNK) Features() []float32 {
	return EncodeBoard(g.board, g.nextToMove, nil)
}

func (g *MNK) Eq(other game.State) bool {
	ot, ok := other.(*MNK)
	if !ok {
		return false
	}
	if g.m != ot.m || g.n != ot.n || g.k != ot.k || g.nextToMove != ot.nextToMove {
		return false
	}
	for i := range g.board {
		if g.board[i] != ot.board[i] {
			return false
		}
	}
	return true
}

func (g *MNK) Clone() game.State {
	retVal := New(g.m, g.n, g.k)
	copy(retVal.board, g.board)
	retVal.history = append(retVal.history, g.history...)
	retVal.nextToMove = g.nextToMove
	retVal.winner = g.winner
	return retVal
}

func (g *MNK) findWinner() game.Player {
	if g.isWinner(Cross) {
		return Cross
	}
	if g.isWinner(Nought) {
		return Nought
	}
	return game.None
}

func (g *MNK) isWinner(p game.Player) bool {
	var won bool
	g.eachLine(func(cells []int) {
		if won {
			return
		}
		for _, c := range cells {
			if g.board[c] != p {
				return
			}
		}
		won = true
	})
	return won
}

// eachLine calls fn with the cell indices of every segment of k cells in a row, column or diagonal.
func (g *MNK) eachLine(fn func(cells []int)) {
	cells := make([]int, g.k)
	dirs := [...][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for i := 0; i < g.m; i++ {
		for j := 0; j < g.n; j++ {
			for _, d := range dirs {
				ei, ej := i+d[0]*(g.k-1), j+d[1]*(g.k-1)
				if ei < 0 || ei >= g.m || ej < 0 || ej >= g.n {
					continue
				}
				for s := 0; s < g.k; s++ {
					cells[s] = (i+d[0]*s)*g.n + j + d[1]*s
				}
				fn(cells)
			}
		}
	}
}
