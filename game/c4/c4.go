package c4

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"

	"github.com/tcgsim/duel/game"
)

// Board is a rows x cols grid backed by a dense tensor. it is a row major view of the same memory.
type Board struct {
	data *tensor.Dense
	it   [][]game.Player
	n    int // how many to be considered a win?
}

var directions = [...][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

func newBoard(rows, cols, n int) *Board {
	backing := make([]game.Player, rows*cols)
	data := tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing))
	iter, err := native.Matrix(data)
	if err != nil {
		panic(err)
	}
	it := iter.([][]game.Player)
	return &Board{
		data: data,
		it:   it,
		n:    n,
	}
}

func (b *Board) rows() int { return b.data.Shape()[0] }
func (b *Board) cols() int { return b.data.Shape()[1] }

func (b *Board) cells() []game.Player { return b.data.Data().([]game.Player) }

func (b *Board) Format(s fmt.State, c rune) {
	for _, row := range b.it {
		fmt.Fprint(s, "⎢ ")
		for _, col := range row {
			fmt.Fprintf(s, "%s ", col)
		}
		fmt.Fprint(s, "⎥\n")
	}
}

// drop returns the row a stone dropped into col lands on.
func (b *Board) drop(col int) (row int, err error) {
	if col < 0 || col >= b.cols() {
		return -1, errors.Errorf("column %d is off the board", col)
	}
	for row = b.rows() - 1; row >= 0; row-- {
		if b.it[row][col] == game.None {
			return row, nil
		}
	}
	return -1, errors.Errorf("column %d is full", col)
}

func (b *Board) clone() *Board {
	b2 := newBoard(b.rows(), b.cols(), b.n)
	copy(b2.cells(), b.cells())
	return b2
}

// connected reports whether the stone at (row, col) completes a line of n.
func (b *Board) connected(row, col int) bool {
	p := b.it[row][col]
	if p == game.None {
		return false
	}
	for _, d := range directions {
		count := 1 + b.run(row, col, d[0], d[1], p) + b.run(row, col, -d[0], -d[1], p)
		if count >= b.n {
			return true
		}
	}
	return false
}

// run counts p's stones from (row, col) in the direction (dr, dc), excluding the start.
func (b *Board) run(row, col, dr, dc int, p game.Player) int {
	var count int
	for r, c := row+dr, col+dc; r >= 0 && r < b.rows() && c >= 0 && c < b.cols() && b.it[r][c] == p; r, c = r+dr, c+dc {
		count++
	}
	return count
}

// checkWin scans the whole board for a line of n.
func (b *Board) checkWin() game.Player {
	for y := range b.it {
		for x := range b.it[y] {
			if b.connected(y, x) {
				return b.it[y][x]
			}
		}
	}
	return game.None
}

// eachWindow calls fn with the stones of every segment of n cells in a row, column or diagonal.
func (b *Board) eachWindow(fn func(window []game.Player)) {
	rows, cols := b.rows(), b.cols()
	window := make([]game.Player, b.n)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for _, d := range directions {
				ey, ex := y+d[0]*(b.n-1), x+d[1]*(b.n-1)
				if ey < 0 || ey >= rows || ex < 0 || ex >= cols {
					continue
				}
				for i := range window {
					window[i] = b.it[y+d[0]*i][x+d[1]*i]
				}
				fn(window)
			}
		}
	}
}
