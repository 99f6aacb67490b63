package privdata

import "testing"

func TestAddAllocatesSmallestFreeID(t *testing.T) {
	l := NewList()
	var id1, id2, id3 int
	if err := l.Add(&id1, "a"); err != nil || id1 != 1 {
		t.Fatalf("id1=%d err=%v", id1, err)
	}
	if err := l.Add(&id2, "b"); err != nil || id2 != 2 {
		t.Fatalf("id2=%d err=%v", id2, err)
	}
	l.Del(id1)
	if err := l.Add(&id3, "c"); err != nil || id3 != 1 {
		t.Fatalf("expected reuse of freed id 1, got %d err=%v", id3, err)
	}
}

func TestAddExplicitIDCollision(t *testing.T) {
	l := NewList()
	id := 5
	if err := l.Add(&id, "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2 := 5
	if err := l.Add(&id2, "y"); err != ErrIDExists {
		t.Fatalf("expected ErrIDExists, got %v", err)
	}
	if got := l.Get(5); got != "x" {
		t.Fatalf("collision must not overwrite existing entry, got %v", got)
	}
}

func TestGetDelAbsent(t *testing.T) {
	l := NewList()
	if got := l.Get(42); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := l.Del(42); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestDelReturnsAndRemoves(t *testing.T) {
	l := NewList()
	var id int
	_ = l.Add(&id, "payload")
	if got := l.Del(id); got != "payload" {
		t.Fatalf("got %v", got)
	}
	if got := l.Get(id); got != nil {
		t.Fatalf("expected removed, got %v", got)
	}
}
