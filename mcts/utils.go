package mcts

import (
	"sort"
)

// fancySort orders children best first: most visits, then the higher average, then the lower action.
// Visits come first so that an under sampled child with a lucky average is never chosen.
type fancySort struct {
	l []naughty
	t *MCTS
}

func (l fancySort) Len() int      { return len(l.l) }
func (l fancySort) Swap(i, j int) { l.l[i], l.l[j] = l.l[j], l.l[i] }
func (l fancySort) Less(i, j int) bool {
	li := l.t.nodeFromNaughty(l.l[i])
	lj := l.t.nodeFromNaughty(l.l[j])

	if li.visits != lj.visits {
		return li.visits > lj.visits
	}
	if ai, aj := li.Average(), lj.Average(); ai != aj {
		return ai > aj
	}
	return li.action < lj.action
}

// sortedChildren returns a sorted copy of the children of a node.
func (t *MCTS) sortedChildren(of naughty) []naughty {
	kids := append([]naughty(nil), t.children[of]...)
	sort.Sort(fancySort{l: kids, t: t})
	return kids
}

// byAction sorts nodes by the action that led to them.
type byAction struct {
	t *MCTS
	l []naughty
}

func (l byAction) Len() int { return len(l.l) }
func (l byAction) Less(i, j int) bool {
	return l.t.nodeFromNaughty(l.l[i]).action < l.t.nodeFromNaughty(l.l[j]).action
}
func (l byAction) Swap(i, j int) { l.l[i], l.l[j] = l.l[j], l.l[i] }
