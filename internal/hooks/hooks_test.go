package hooks

import (
	"errors"
	"testing"
)

func TestAddRunOrder(t *testing.T) {
	l := New[func(int)]()
	var order []int
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	must(l.Add("a", func(i int) { order = append(order, i*10+1) }))
	must(l.Add("b", func(i int) { order = append(order, i*10+2) }))
	must(l.Add("c", func(i int) { order = append(order, i*10+3) }))

	l.Each(func(fn func(int)) { fn(1) })

	want := []int{11, 12, 13}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
}

func TestAddDuplicateRejected(t *testing.T) {
	l := New[func()]()
	if err := l.Add("x", func() {}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := l.Add("x", func() {}); !errors.Is(err, ErrDuplicateHook) {
		t.Fatalf("expected ErrDuplicateHook, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("expected list unchanged at len 1, got %d", l.Len())
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	l := New[func()]()
	l.Remove("nope") // must not panic
	if l.Len() != 0 {
		t.Fatalf("expected empty list")
	}
}

func TestRemoveDropsOnlyNamedHook(t *testing.T) {
	l := New[func(*[]string)]()
	_ = l.Add("first", func(out *[]string) { *out = append(*out, "first") })
	_ = l.Add("second", func(out *[]string) { *out = append(*out, "second") })
	l.Remove("first")

	var out []string
	l.Each(func(fn func(*[]string)) { fn(&out) })
	if len(out) != 1 || out[0] != "second" {
		t.Fatalf("got %v", out)
	}
}
