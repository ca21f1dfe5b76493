//go:build debug

package mcts

import (
	"bytes"
	"fmt"
)

// lumberjack keeps a trace of every iteration of the last search. It is only compiled in with the debug tag.
type lumberjack struct {
	*bytes.Buffer
}

func makeLumberJack() lumberjack {
	return lumberjack{
		Buffer: new(bytes.Buffer),
	}
}

func (l *lumberjack) log(msg string, args ...interface{}) {
	fmt.Fprintf(l.Buffer, msg, args...)
	l.WriteByte('\n')
}

func (l *lumberjack) Reset() { l.Buffer.Reset() }

// Log returns the trace of the last search.
func (l lumberjack) Log() string { return l.String() }
