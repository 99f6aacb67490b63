// Package hooks implements the typed callback registries described in
// spec.md §4.H and §9 ("Callback lists and per-object private data"). The
// source's void*/function-pointer lists become one generic ordered list per
// hook class, matching how pkg/p2pnet/service.go keys a registry by
// identity and rejects duplicates.
package hooks

import "errors"

// ErrDuplicateHook is returned by List.Add when the callback is already
// registered (compared by identity via the caller-supplied key).
var ErrDuplicateHook = errors.New("hooks: callback already registered")

// List is an ordered collection of callbacks of type F, keyed by an
// opaque identity the caller chooses (typically a function's package-level
// name or a pointer-derived value, since Go funcs aren't comparable).
//
// add_hook/remove_hook/run_hooks map directly onto Add/Remove/Each. Hooks
// must not call Add or Remove on the same List while Each is iterating it;
// doing so yields an undefined order, per spec.md §4.H.
type List[F any] struct {
	keys  []string
	funcs []F
}

// New creates an empty hook list for callback type F.
func New[F any]() *List[F] {
	return &List[F]{}
}

// Add registers fn under key in registration order. Returns
// ErrDuplicateHook if key is already present; the list is unchanged.
func (l *List[F]) Add(key string, fn F) error {
	for _, k := range l.keys {
		if k == key {
			return ErrDuplicateHook
		}
	}
	l.keys = append(l.keys, key)
	l.funcs = append(l.funcs, fn)
	return nil
}

// Remove drops the callback registered under key. It is a no-op if key is
// absent.
func (l *List[F]) Remove(key string) {
	for i, k := range l.keys {
		if k == key {
			l.keys = append(l.keys[:i], l.keys[i+1:]...)
			l.funcs = append(l.funcs[:i], l.funcs[i+1:]...)
			return
		}
	}
}

// Len reports how many callbacks are currently registered.
func (l *List[F]) Len() int { return len(l.funcs) }

// Each calls visit once per registered callback, in registration order.
// Run_hooks(list, args...) from the spec is expressed by callers as
//
//	list.Each(func(fn F) { fn(args...) })
//
// since Go has no variadic-over-arbitrary-signature dispatch.
func (l *List[F]) Each(visit func(F)) {
	snapshot := append([]F(nil), l.funcs...)
	for _, fn := range snapshot {
		visit(fn)
	}
}
