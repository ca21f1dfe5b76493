package c4

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/score"
)

const (
	X = Red
	O = Yellow
	Z = game.None
)

func TestCheckWin(t *testing.T) {
	testCases := []struct {
		name   string
		board  []game.Player
		winner game.Player
	}{
		{"open", []game.Player{
			X, Z, Z, Z, Z, Z, Z,
			O, Z, Z, Z, Z, Z, Z,
			O, Z, Z, Z, Z, Z, Z,
			X, Z, Z, Z, Z, Z, Z,
			O, O, Z, Z, X, Z, X,
			X, O, Z, O, X, Z, X,
		}, Z},
		{"full board", []game.Player{
			X, O, X, O, X, O, X,
			O, O, X, O, X, O, O,
			X, X, X, O, X, O, X,
			O, X, O, X, O, X, O,
			X, O, O, X, O, O, X,
			X, X, O, X, O, X, X,
		}, Z},
		{"diagonal", []game.Player{
			X, Z, Z, Z, Z, Z, Z,
			O, Z, Z, Z, Z, Z, Z,
			O, Z, Z, X, Z, Z, Z,
			X, Z, X, Z, Z, Z, Z,
			O, X, Z, Z, X, Z, X,
			X, O, Z, O, X, Z, X,
		}, X},
		{"anti diagonal", []game.Player{
			X, Z, Z, Z, Z, Z, Z,
			O, Z, Z, Z, Z, Z, Z,
			O, X, Z, O, Z, Z, Z,
			X, Z, X, Z, Z, Z, Z,
			O, X, Z, X, X, Z, X,
			X, O, Z, O, X, Z, X,
		}, X},
		{"vertical", []game.Player{
			X, Z, Z, Z, Z, Z, Z,
			O, Z, Z, Z, X, Z, Z,
			O, Z, Z, X, X, Z, Z,
			X, Z, Z, Z, X, Z, Z,
			O, X, Z, Z, X, Z, X,
			X, O, Z, O, O, Z, X,
		}, X},
		{"horizontal", []game.Player{
			X, Z, Z, Z, Z, Z, Z,
			O, Z, Z, Z, Z, Z, Z,
			O, Z, Z, O, Z, Z, Z,
			X, Z, Z, Z, O, Z, Z,
			O, X, Z, Z, O, Z, O,
			O, O, O, O, X, Z, X,
		}, O},
	}
	for _, tc := range testCases {
		g := New(6, 7, 4)
		copy(g.b.cells(), tc.board)
		assert.Equal(t, tc.winner, g.b.checkWin(), "%s\n%v", tc.name, g)
	}
}

func TestGravity(t *testing.T) {
	g := New(4, 3, 3)
	require.NoError(t, g.Advance(1))
	require.NoError(t, g.Advance(1))
	assert.Equal(t, X, g.b.it[3][1])
	assert.Equal(t, O, g.b.it[2][1])
	assert.Equal(t, X, g.ToMove())

	require.NoError(t, g.Advance(1))
	require.NoError(t, g.Advance(1))
	assert.Equal(t, []game.Action{0, 2}, g.Actions(), "a full column is not an action")
	assert.Error(t, g.Advance(1))
	assert.Error(t, g.Advance(3))
	assert.Error(t, g.Advance(-1))
	assert.Equal(t, 5, g.MoveNumber())
}

func TestVerticalWin(t *testing.T) {
	g := ConnectFour()
	for _, a := range []game.Action{3, 4, 3, 4, 3, 4, 3} {
		require.NoError(t, g.Advance(a))
	}
	assert.Equal(t, X, g.Winner())
	assert.Nil(t, g.Actions())
	assert.Error(t, g.Advance(0))
	assert.Equal(t, score.Limit, g.Eval(X))
	assert.Equal(t, -score.Limit, g.Eval(O))

	ended, winner := game.Ended(g)
	assert.True(t, ended)
	assert.Equal(t, X, winner)
}

func TestEvalIsZeroSum(t *testing.T) {
	g := ConnectFour()
	for _, a := range []game.Action{3, 2, 3, 4, 1} {
		require.NoError(t, g.Advance(a))
		assert.Equal(t, g.Eval(X), -g.Eval(O))
	}
	assert.True(t, g.Eval(X) > 0, "red has more open windows")
	assert.Equal(t, score.Score(0), g.Eval(game.None))
}

func TestCloneIsIndependent(t *testing.T) {
	g := ConnectFour()
	require.NoError(t, g.Advance(3))
	c := g.Clone().(*Game)
	require.True(t, g.Eq(c))
	assert.Equal(t, g.Fingerprint(), c.Fingerprint())

	require.NoError(t, c.Advance(3))
	assert.False(t, g.Eq(c))
	assert.NotEqual(t, g.Fingerprint(), c.Fingerprint())
	assert.Equal(t, Z, g.b.it[4][3])
	assert.Len(t, g.History(), 1)
}

func TestFeatures(t *testing.T) {
	g := New(2, 2, 2)
	require.NoError(t, g.Advance(0))
	// yellow to move: red's stone is the opponent's
	assert.Equal(t, []float32{0, 0, -1, 0}, g.Features())
	require.NoError(t, g.Advance(1))
	assert.Equal(t, []float32{0, 0, 1, -1}, g.Features())
}

func TestFromBoard(t *testing.T) {
	g, err := FromBoard(3, 3, 3, []game.Player{
		Z, Z, Z,
		O, Z, Z,
		X, X, Z,
	})
	require.NoError(t, err)
	assert.Equal(t, O, g.ToMove())
	assert.Equal(t, game.None, g.Winner())
	assert.Equal(t, []game.Action{0, 1, 2}, g.Actions())

	_, err = FromBoard(3, 3, 3, []game.Player{
		Z, Z, Z,
		O, Z, Z,
		Z, X, Z,
	})
	assert.Error(t, err, "floating stone")

	_, err = FromBoard(3, 3, 3, []game.Player{
		Z, Z, Z,
		Z, Z, Z,
		X, X, Z,
	})
	assert.Error(t, err, "too many red stones")

	_, err = FromBoard(3, 3, 3, make([]game.Player, 4))
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	g := New(2, 3, 2)
	require.NoError(t, g.Advance(2))
	assert.Equal(t, "⎢ · · · ⎥\n⎢ · · X ⎥\n", fmt.Sprintf("%v", g))
}
