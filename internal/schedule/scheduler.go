// Package schedule implements the single-threaded cooperative scheduler
// described in spec.md §5: one execution context dispatches timer, read,
// write, and event tasks in FIFO/deadline order, and tasks run to
// completion with no preemption points. Timer tasks (Loop.After) return a
// Handle that cancels them; event tasks (Loop.Event) have no handle.
//
// The Go rendition is one goroutine (Loop.Run) draining a channel of
// func() closures. Every "thread_add_event" in the source becomes a
// zero-delay Loop.Event call; every timer becomes a time.AfterFunc that
// posts its closure onto the same channel rather than running on the
// timer goroutine directly, so two tasks never execute concurrently and
// task bodies never need their own locking. This generalizes the select
// loop in pkg/p2pnet/netmonitor.go (Run) from two hard-coded cases to an
// arbitrary task queue, and isolates blocking I/O the way pkg/p2pnet/ping.go
// isolates a blocking dial into its own goroutine that reports back over a
// channel instead of blocking the main loop.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task is a unit of work the Loop will run to completion without
// preemption.
type Task func()

// Handle cancels a previously-scheduled timer task. Cancellation is
// idempotent and, once it returns, guarantees the task will not run
// (spec.md §5 "no deferred completion is emitted after cancellation").
type Handle struct {
	timer *time.Timer
	loop  *Loop
	seq   uint64
}

// Cancel stops the underlying timer and marks the task's sequence number
// as cancelled so that a timer which already fired and is queued for
// dispatch, but not yet run, is skipped instead of executed.
func (h *Handle) Cancel() {
	if h == nil || h.timer == nil {
		return
	}
	h.timer.Stop()
	h.loop.mu.Lock()
	h.loop.cancelled[h.seq] = struct{}{}
	h.loop.mu.Unlock()
}

// Loop is the cooperative scheduler. Zero value is not usable; use New.
type Loop struct {
	tasks chan func()

	mu        sync.Mutex
	nextSeq   uint64
	cancelled map[uint64]struct{}
}

// New creates a Loop with the given task queue depth. A depth of 0 means
// unbuffered (posting blocks until Run drains it), which is fine since
// Run always keeps draining while active.
func New(queueDepth int) *Loop {
	return &Loop{
		tasks:     make(chan func(), queueDepth),
		cancelled: make(map[uint64]struct{}),
	}
}

// Event posts t to run as soon as the current task returns -- the
// "thread_add_event" equivalent. Safe to call from within a running task
// or from another goroutine (e.g. a reader goroutine reporting a readable
// socket).
func (l *Loop) Event(t Task) {
	l.tasks <- t
}

// After schedules t to run once, after d has elapsed, on the Loop's single
// goroutine (never on the timer's own goroutine). The returned Handle
// cancels it.
func (l *Loop) After(d time.Duration, t Task) *Handle {
	l.mu.Lock()
	seq := l.nextSeq
	l.nextSeq++
	l.mu.Unlock()

	h := &Handle{loop: l, seq: seq}
	h.timer = time.AfterFunc(d, func() {
		l.tasks <- func() {
			l.mu.Lock()
			_, cancelled := l.cancelled[seq]
			if cancelled {
				delete(l.cancelled, seq)
			}
			l.mu.Unlock()
			if cancelled {
				return
			}
			t()
		}
	})
	return h
}

// Run drains the task queue until ctx is cancelled. Each task runs to
// completion before the next is dequeued -- this is the only suspension
// point in the model.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-l.tasks:
			t()
		}
	}
}
