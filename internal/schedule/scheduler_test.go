package schedule

import (
	"context"
	"testing"
	"time"
)

func TestEventRunsInPostedOrder(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var order []int
	done := make(chan struct{})
	l.Event(func() { order = append(order, 1) })
	l.Event(func() { order = append(order, 2) })
	l.Event(func() { order = append(order, 3); close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for events")
	}
	want := []int{1, 2, 3}
	for i, v := range want {
		if order[i] != v {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestCancelPreventsTimerTask(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	ran := false
	h := l.After(20*time.Millisecond, func() { ran = true })
	h.Cancel()

	time.Sleep(80 * time.Millisecond)
	if ran {
		t.Fatal("cancelled timer task ran")
	}
}

func TestAfterFiresOnLoopGoroutine(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{})
	l.After(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer task never ran")
	}
}

func TestCancelIdempotent(t *testing.T) {
	l := New(8)
	h := l.After(time.Hour, func() {})
	h.Cancel()
	h.Cancel() // must not panic
}
