package mnk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgsim/duel/game"
)

func TestEncodeBoard(t *testing.T) {
	board := []game.Player{X, O, Z}
	assert.Equal(t, []float32{1, -1, 0}, EncodeBoard(board, Cross, nil))
	assert.Equal(t, []float32{-1, 1, 0}, EncodeBoard(board, Nought, nil))

	prealloc := make([]float32, 3)
	out := EncodeBoard(board, Cross, prealloc)
	assert.Equal(t, &prealloc[0], &out[0], "a correctly sized buffer is reused")
}

func TestRotateBoard(t *testing.T) {
	//
	// ⎢ O · · · X ⎥
	// ⎢ · O · X · ⎥ // this line is to break rotational symmetry
	// ⎢ · · · · · ⎥
	// ⎢ · · · · · ⎥
	// ⎢ X · · · O ⎥

	m, n := 5, 5
	board := EncodeBoard([]game.Player{
		O, Z, Z, Z, X,
		Z, O, Z, X, Z,
		Z, Z, Z, Z, Z,
		Z, Z, Z, Z, Z,
		X, Z, Z, Z, O,
	}, Cross, nil)

	rot1, err := RotateBoard(board, m, n)
	require.NoError(t, err)
	assert.Equal(t, float32(1), rot1[0], "the top right corner moves to the top left")
	assert.Equal(t, float32(1), rot1[6])

	rotated := rot1
	for i := 0; i < 3; i++ {
		rotated, err = RotateBoard(rotated, m, n)
		require.NoError(t, err)
	}
	assert.Equal(t, board, rotated, "After 4 rotations the board should be the same")

	_, err = RotateBoard(board, 5, 4)
	assert.Error(t, err)
}

func TestSymmetries(t *testing.T) {
	g := TicTacToe()
	require.NoError(t, g.Advance(0))
	syms, err := Symmetries(g.Features(), 3, 3)
	require.NoError(t, err)
	require.Len(t, syms, 8)
	assert.Equal(t, g.Features(), syms[0])
	for _, s := range syms {
		var sum float32
		for _, v := range s {
			sum += v
		}
		assert.Equal(t, float32(-1), sum, "O to move sees a single enemy stone")
	}
}

func TestMirrorBoard(t *testing.T) {
	board := []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	mirror, err := MirrorBoard(board, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{
		3, 2, 1,
		6, 5, 4,
		9, 8, 7,
	}, mirror)

	_, err = MirrorBoard(board, 3, 2)
	assert.Error(t, err)
}

func TestSymmetriesAreTheSquareGroup(t *testing.T) {
	board := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	syms, err := Symmetries(board, 3, 3)
	require.NoError(t, err)
	require.Len(t, syms, 8)
	assert.Equal(t, board, syms[0])

	// every symmetry is distinct for an asymmetric board
	seen := make(map[[9]float32]bool)
	for _, s := range syms {
		var k [9]float32
		copy(k[:], s)
		seen[k] = true
	}
	assert.Len(t, seen, 8)

	assert.Contains(t, syms, []float32{3, 2, 1, 6, 5, 4, 9, 8, 7}, "mirror image")
	assert.Contains(t, syms, []float32{1, 4, 7, 2, 5, 8, 3, 6, 9}, "transpose")
	assert.Contains(t, syms, []float32{9, 6, 3, 8, 5, 2, 7, 4, 1}, "anti transpose")
	assert.Contains(t, syms, []float32{7, 8, 9, 4, 5, 6, 1, 2, 3}, "vertical flip")

	_, err = Symmetries(board, 9, 1)
	assert.Error(t, err)
}
