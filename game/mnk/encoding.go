package mnk

import (
	"github.com/pkg/errors"
	"gorgonia.org/vecf32"

	"github.com/tcgsim/duel/game"
)

// EncodeBoard encodes pov's stones as 1 and the opponent's as -1.
func EncodeBoard(a []game.Player, pov game.Player, prealloc []float32) []float32 {
	if len(prealloc) != len(a) {
		prealloc = make([]float32, len(a))
	}

	for i := range a {
		switch a[i] {
		case Cross:
			prealloc[i] = 1
		case Nought:
			prealloc[i] = -1
		default:
			prealloc[i] = 0
		}
	}
	if pov == Nought {
		vecf32.Scale(prealloc, -1)
	}
	return prealloc
}

// RotateBoard rotates a square, row major board a quarter turn counter clockwise.
func RotateBoard(board []float32, m, n int) ([]float32, error) {
	if m != n {
		return nil, errors.Errorf("Cannot handle m %d, n %d. This function only takes square boards", m, n)
	}
	if len(board) != m*n {
		return nil, errors.Errorf("board of %d cells is not %dx%d", len(board), m, n)
	}
	retVal := make([]float32, len(board))
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			retVal[(n-1-j)*n+i] = board[i*n+j]
		}
	}
	return retVal, nil
}

// MirrorBoard reflects a square, row major board about its vertical axis.
func MirrorBoard(board []float32, m, n int) ([]float32, error) {
	if m != n {
		return nil, errors.Errorf("Cannot handle m %d, n %d. This function only takes square boards", m, n)
	}
	if len(board) != m*n {
		return nil, errors.Errorf("board of %d cells is not %dx%d", len(board), m, n)
	}
	retVal := make([]float32, len(board))
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			retVal[i*n+(n-1-j)] = board[i*n+j]
		}
	}
	return retVal, nil
}

// Symmetries returns the eight symmetries of a square board's features: the four rotations, the
// identity first, followed by the four rotations of its mirror image.
func Symmetries(features []float32, m, n int) ([][]float32, error) {
	mirror, err := MirrorBoard(features, m, n)
	if err != nil {
		return nil, err
	}
	retVal := make([][]float32, 0, 8)
	for _, cur := range [][]float32{append([]float32(nil), features...), mirror} {
		for i := 0; i < 4; i++ {
			retVal = append(retVal, cur)
			if cur, err = RotateBoard(cur, m, n); err != nil {
				return nil, err
			}
		}
	}
	return retVal, nil
}
