// File: internal/session/inputqueue.go
// Package session
// Author: momentics <momentics@gmail.com>
//
// FIFO of keystrokes decoded from client text frames.

package session

import (
	"github.com/eapache/queue"

	"github.com/momentics/hioload-canvas/api"
)

// InputQueue is an unbounded FIFO of typed characters. It grows with the
// keystroke rate and is never pre-allocated beyond the ring's minimum.
type InputQueue struct {
	q *queue.Queue
}

// NewInputQueue returns an empty queue.
func NewInputQueue() *InputQueue {
	return &InputQueue{q: queue.New()}
}

// Push appends r.
func (iq *InputQueue) Push(r rune) {
	iq.q.Add(r)
}

// Len returns the number of queued keystrokes.
func (iq *InputQueue) Len() int {
	return iq.q.Length()
}

// Pop removes and returns the oldest keystroke.
func (iq *InputQueue) Pop() (rune, error) {
	if iq.q.Length() == 0 {
		return 0, api.ErrNoKeyTyped
	}
	r := iq.q.Peek().(rune)
	iq.q.Remove()
	return r, nil
}
