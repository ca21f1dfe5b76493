package gif

import (
	"bytes"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgsim/duel"
	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/game/mnk"
)

type firstAction struct{}

func (firstAction) Search(s game.State) (game.Variation, error) {
	return game.Variation{Actions: s.Actions()[:1]}, nil
}

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewGifEncoder(&buf, "Tic Tac Toe", 1000, 1000)
	p := duel.NewPlayout(mnk.TicTacToe(), duel.NewSeats(firstAction{}, firstAction{}), duel.WithEncoder(enc))
	turns, err := p.Run()
	require.NoError(t, err)
	require.Equal(t, len(turns), enc.Frames())
	require.NoError(t, enc.Flush())

	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, g.Image, len(turns))
	assert.Equal(t, finalDelay, g.Delay[len(g.Delay)-1])
	assert.Equal(t, turnDelay, g.Delay[0])
	assert.Equal(t, enc.W, g.Image[0].Bounds().Dx())
	assert.Equal(t, enc.H, g.Image[0].Bounds().Dy())
}

func TestEncoderRespectsMaxSize(t *testing.T) {
	var buf bytes.Buffer
	enc := NewGifEncoder(&buf, "tiny", 20, 30)
	require.NoError(t, enc.Encode(duel.Turn{State: mnk.TicTacToe()}))
	assert.Equal(t, 20, enc.H)
	assert.Equal(t, 30, enc.W)
}

func TestEncoderErrors(t *testing.T) {
	enc := NewGifEncoder(&bytes.Buffer{}, "empty", 100, 100)
	assert.Error(t, enc.Flush(), "nothing to write")
	assert.Error(t, enc.Encode(duel.Turn{}))
}
