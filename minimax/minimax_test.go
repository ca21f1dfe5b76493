package minimax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgsim/duel/game"
	"github.com/tcgsim/duel/game/mnk"
	"github.com/tcgsim/duel/internal/gametest"
	"github.com/tcgsim/duel/score"
	"github.com/tcgsim/duel/ttable"
)

// oneMoveWin: the root has a quiet action and an action that wins on the spot.
func oneMoveWin() *gametest.Tree {
	return &gametest.Tree{Nodes: []gametest.Node{
		{Mover: game.First, Next: []int{1, 2}},
		{Mover: game.Second, Value: 10},
		{Winner: game.First},
	}}
}

func TestDepthOneWin(t *testing.T) {
	e := New(WithDepth(1))
	pv, err := e.Search(oneMoveWin().Root())
	require.NoError(t, err)
	if diff := cmp.Diff([]game.Action{1}, pv.Actions); diff != "" {
		t.Errorf("pv mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, score.Decided.Decay(), pv.Score)
	assert.Equal(t, 1, e.Stats().Depth)
}

func TestSearchDoesNotModifyState(t *testing.T) {
	root := oneMoveWin().Root()
	_, err := New(WithDepth(3)).Search(root)
	require.NoError(t, err)
	assert.Equal(t, 0, root.At())
}

func TestTerminalRoot(t *testing.T) {
	root := oneMoveWin().Root()
	require.NoError(t, root.Advance(1))
	pv, err := New().Search(root)
	require.NoError(t, err)
	assert.Empty(t, pv.Actions, "no actions left")
	assert.Equal(t, score.Score(-10), pv.Score, "Second's evaluation of a quiet leaf")

	won := oneMoveWin().Root()
	require.NoError(t, won.Advance(2))
	pv, err = New().Search(won)
	require.NoError(t, err)
	assert.Empty(t, pv.Actions)
	assert.True(t, pv.Score.IsDecided())
}

func TestSameMoverTwice(t *testing.T) {
	tree := &gametest.Tree{Nodes: []gametest.Node{
		{Mover: game.First, Next: []int{1, 2}},
		{Mover: game.First, Next: []int{3, 4}},
		{Mover: game.Second, Value: 100},
		{Mover: game.Second, Value: -50},
		{Winner: game.First},
	}}
	e := New(WithDepth(2))
	pv, err := e.Search(tree.Root())
	require.NoError(t, err)
	if diff := cmp.Diff([]game.Action{0, 1}, pv.Actions); diff != "" {
		t.Errorf("pv mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, score.Decided.Decay().Decay(), pv.Score, "no negation between two actions of the same player")
}

func TestOpponentWinIsAvoided(t *testing.T) {
	tree := &gametest.Tree{Nodes: []gametest.Node{
		{Mover: game.First, Next: []int{1, 2}},
		{Mover: game.Second, Next: []int{3, 4}},
		{Mover: game.Second, Next: []int{5}},
		{Mover: game.First, Value: 30},
		{Winner: game.Second},
		{Mover: game.First, Value: -20},
	}}
	pv, err := New(WithDepth(2)).Search(tree.Root())
	require.NoError(t, err)
	if diff := cmp.Diff([]game.Action{1, 0}, pv.Actions); diff != "" {
		t.Errorf("pv mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, score.Score(-20), pv.Score)
}

func TestChanceIsSettled(t *testing.T) {
	tree := &gametest.Tree{Nodes: []gametest.Node{
		{Mover: game.First, Next: []int{1, 2}},
		{Chance: []int{3, 3}},
		{Mover: game.Second, Value: 5},
		{Winner: game.First},
	}}
	pv, err := New(WithDepth(1), WithSeed(7)).Search(tree.Root())
	require.NoError(t, err)
	assert.Equal(t, game.Action(0), pv.First())
	assert.Equal(t, score.Decided.Decay(), pv.Score)

	_, err = New(WithDepth(1)).Search(gametest.Opaque{State: tree.Root()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chance")
}

func TestAdvanceErrorIsReturned(t *testing.T) {
	tree := &gametest.Tree{Nodes: []gametest.Node{
		{Mover: game.First, Next: []int{1}},
		{Mover: game.Second, Next: []int{2}, Broken: true},
		{Mover: game.First},
	}}
	e := New(WithDepth(3))
	pv, err := e.Search(tree.Root())
	require.Error(t, err)
	assert.Equal(t, gametest.ErrIllegal, errors.Cause(err))
	assert.Equal(t, game.Action(0), pv.First(), "the last completed iteration is still returned")
	assert.Equal(t, 1, e.Stats().Depth)
}

func TestAspirationWidening(t *testing.T) {
	// every iteration lands far outside the previous one's window
	tree := gametest.Chain(0, -5000, 10000, -15000, 20000, -25000)
	e := New(WithDepth(4))
	pv, err := e.Search(tree.Root())
	require.NoError(t, err)
	assert.Equal(t, score.Score(20000), pv.Score)

	st := e.Stats()
	assert.Equal(t, 4, st.Depth)
	assert.Equal(t, []int{0, len(score.Margins) - 1, len(score.Margins) - 1, len(score.Margins) - 1}, st.Widenings)
	for _, w := range st.Widenings {
		assert.True(t, w <= len(score.Margins)-1)
	}
}

func TestStableIterationsNeverWiden(t *testing.T) {
	tree := gametest.Chain(0, 3, 5, 7, 9, 11)
	e := New(WithDepth(5))
	pv, err := e.Search(tree.Root())
	require.NoError(t, err)
	assert.Equal(t, score.Score(11), pv.Score)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, e.Stats().Widenings)
	if diff := cmp.Diff([]game.Action{0, 0, 0, 0, 0}, pv.Actions); diff != "" {
		t.Errorf("pv mismatch (-want +got):\n%s", diff)
	}
}

func TestTableRoundTrip(t *testing.T) {
	root := oneMoveWin().Root()
	e := New(WithDepth(3))
	e.Table().Store(root.Fingerprint(), ttable.Entry{Depth: 5, Score: 777, Bound: ttable.Exact, Best: 0})

	pv, err := e.Search(root)
	require.NoError(t, err)
	assert.Equal(t, score.Score(777), pv.Score)
	assert.Equal(t, []game.Action{0}, pv.Actions)
	st := e.Stats()
	assert.Equal(t, 3, st.Nodes, "every iteration is answered by the table at the root")
	assert.Equal(t, 3, st.TableHits)

	e.Reset()
	pv, err = e.Search(root)
	require.NoError(t, err)
	assert.Equal(t, game.Action(1), pv.First(), "a cleared table searches again")
}

func TestShallowEntryIsIgnored(t *testing.T) {
	root := oneMoveWin().Root()
	e := New(WithDepth(2))
	e.Table().Store(root.Fingerprint(), ttable.Entry{Depth: 1, Score: 777, Bound: ttable.Exact, Best: 0})

	pv, err := e.Search(root)
	require.NoError(t, err)
	assert.Equal(t, game.Action(1), pv.First())
	assert.True(t, pv.Score.IsDecided())
}

// failsLow: after action 0 scores 10, action 1 is tried with a null window. Its first reply (node 4)
// already refutes it, so without help the search visits node 4 and stops.
func failsLow() *gametest.Tree {
	return &gametest.Tree{Nodes: []gametest.Node{
		{Mover: game.First, Next: []int{1, 2}},
		{Mover: game.Second, Next: []int{3}},
		{Mover: game.Second, Next: []int{4, 5}},
		{Mover: game.First, Value: 10},
		{Mover: game.First, Value: 5},
		{Mover: game.First, Value: 6},
	}}
}

func TestLowerBoundCutsOff(t *testing.T) {
	plain := New(WithDepth(2))
	want, err := plain.Search(failsLow().Root())
	require.NoError(t, err)
	assert.Equal(t, score.Score(10), want.Score)

	// node 2 is worth at least -10 to Second, which is all the null window asks
	e := New(WithDepth(2))
	e.Table().Store(2, ttable.Entry{Depth: 5, Score: -10, Bound: ttable.Lower, Best: game.NoAction})
	got, err := e.Search(failsLow().Root())
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("variation mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, plain.Stats().Nodes-1, e.Stats().Nodes, "nothing below node 2 is searched")
}

// refuted: action 1 leads to node 2 whose only reply reaches node 4. Node 4 is searched at depth 1 with
// First's window (10, 11) and both of its replies fall short of it.
func refuted() *gametest.Tree {
	return &gametest.Tree{Nodes: []gametest.Node{
		{Mover: game.First, Next: []int{1, 2}},
		{Mover: game.Second, Next: []int{3}},
		{Mover: game.Second, Next: []int{4}},
		{Mover: game.First, Next: []int{5}},
		{Mover: game.First, Next: []int{6, 7}},
		{Mover: game.Second, Value: 10},
		{Mover: game.Second, Value: 5},
		{Mover: game.Second, Value: 4},
	}}
}

func TestUpperBoundCutsOff(t *testing.T) {
	plain := New(WithDepth(3))
	want, err := plain.Search(refuted().Root())
	require.NoError(t, err)
	assert.Equal(t, score.Score(10), want.Score)
	if diff := cmp.Diff([]game.Action{0, 0, 0}, want.Actions); diff != "" {
		t.Errorf("pv mismatch (-want +got):\n%s", diff)
	}

	// node 4 is worth at most 5 to First, below the 10 it has to beat
	e := New(WithDepth(3))
	e.Table().Store(4, ttable.Entry{Depth: 5, Score: 5, Bound: ttable.Upper, Best: game.NoAction})
	got, err := e.Search(refuted().Root())
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("variation mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, plain.Stats().Nodes-2, e.Stats().Nodes, "neither reply of node 4 is searched")
}

func TestBoundsDoNotCutInsideTheWindow(t *testing.T) {
	plain := New(WithDepth(2))
	_, err := plain.Search(failsLow().Root())
	require.NoError(t, err)

	// a lower bound below what the null window asks only narrows it
	e := New(WithDepth(2))
	e.Table().Store(2, ttable.Entry{Depth: 5, Score: -20, Bound: ttable.Lower, Best: game.NoAction})
	got, err := e.Search(failsLow().Root())
	require.NoError(t, err)
	assert.Equal(t, score.Score(10), got.Score)
	assert.Equal(t, plain.Stats().Nodes, e.Stats().Nodes)
}

func TestExhaustedTreeStopsEarly(t *testing.T) {
	e := New(WithDepth(5))
	pv, err := e.Search(oneMoveWin().Root())
	require.NoError(t, err)
	assert.Equal(t, game.Action(1), pv.First())
	assert.Equal(t, 1, e.Stats().Depth, "every line ends within one ply")
}

func TestTableAnswerKeepsDeepening(t *testing.T) {
	tree := &gametest.Tree{Nodes: []gametest.Node{
		{Mover: game.First, Next: []int{1, 2}},
		{Mover: game.Second, Next: []int{3}},
		{Mover: game.Second, Next: []int{5}},
		{Mover: game.First, Next: []int{4}},
		{Mover: game.Second},
		{Mover: game.First, Value: 1},
	}}
	// the table claims Second loses at node 1 but keeps no line, so the variation stops after one action
	e := New(WithDepth(3))
	e.Table().Store(1, ttable.Entry{Depth: 10, Score: score.Loss(3), Bound: ttable.Exact, Best: game.NoAction})
	pv, err := e.Search(tree.Root())
	require.NoError(t, err)
	assert.Equal(t, game.Action(0), pv.First())
	assert.True(t, pv.Score.IsDecided())
	assert.Equal(t, 1, pv.Len())
	assert.Equal(t, 3, e.Stats().Depth, "a short line from the table is not the end of the game")
}

func TestNodeBudget(t *testing.T) {
	e := New(WithDepth(4), WithNodeBudget(1))
	_, err := e.Search(gametest.Chain(0, 1, 2, 3, 4, 5).Root())
	require.NoError(t, err)
	assert.Equal(t, 1, e.Stats().Depth, "the budget is checked after each iteration")
}

func TestTicTacToeTakesTheWin(t *testing.T) {
	const (
		X = game.First
		O = game.Second
		Z = game.None
	)
	g, err := mnk.FromBoard(3, 3, 3, []game.Player{
		X, X, Z,
		O, O, Z,
		Z, Z, Z,
	})
	require.NoError(t, err)
	pv, err := New(WithDepth(4)).Search(g)
	require.NoError(t, err)
	assert.Equal(t, game.Action(2), pv.First())
	assert.True(t, pv.Score.IsDecided())
	assert.True(t, pv.Score > 0)
}

func TestTicTacToeBlocks(t *testing.T) {
	const (
		X = game.First
		O = game.Second
		Z = game.None
	)
	g, err := mnk.FromBoard(3, 3, 3, []game.Player{
		X, Z, Z,
		O, O, Z,
		X, Z, Z,
	})
	require.NoError(t, err)
	// X to move: 3 is taken so X cannot finish the column; O threatens 5
	pv, err := New(WithDepth(5)).Search(g)
	require.NoError(t, err)
	assert.Equal(t, game.Action(5), pv.First())
}

func TestTicTacToeIsADraw(t *testing.T) {
	if testing.Short() {
		t.Skip("full depth search")
	}
	e := New(WithDepth(9))
	pv, err := e.Search(mnk.TicTacToe())
	require.NoError(t, err)
	assert.False(t, pv.Score.IsDecided(), "perfect play draws, got %v", pv)
	for _, w := range e.Stats().Widenings {
		assert.True(t, w <= len(score.Margins)-1)
	}
}
