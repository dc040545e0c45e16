package pwdriver

import (
	"sync"

	"github.com/qaharness/uiharness/framework/helpers"
	"github.com/qaharness/uiharness/framework/opt"
)

const maxQueuedDialogs = 8

// dialogQueue holds JavaScript dialogs that have opened but not been handled yet. Playwright
// delivers them through a callback and the page stays blocked until one is accepted or
// dismissed.
type dialogQueue[D any] struct {
	ch      chan D
	pending opt.Maybe[D]
	lock    sync.Mutex
}

func newDialogQueue[D any]() *dialogQueue[D] {
	return &dialogQueue[D]{ch: make(chan D, maxQueuedDialogs)}
}

// push returns false if the queue is full; the caller should dismiss the dialog itself.
func (q *dialogQueue[D]) push(d D) bool {
	return helpers.NonBlockingSend(q.ch, d)
}

// peek returns the oldest unhandled dialog without removing it.
func (q *dialogQueue[D]) peek() opt.Maybe[D] {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.fill()
}

// take removes and returns the oldest unhandled dialog.
func (q *dialogQueue[D]) take() opt.Maybe[D] {
	q.lock.Lock()
	defer q.lock.Unlock()
	d := q.fill()
	q.pending = opt.None[D]()
	return d
}

func (q *dialogQueue[D]) fill() opt.Maybe[D] {
	if !q.pending.IsDefined() {
		select {
		case d := <-q.ch:
			q.pending = opt.Some(d)
		default:
		}
	}
	return q.pending
}
