// Package privdata implements the per-object private-data registry of
// spec.md §4.I: interfaces, neighbors, and areas each carry a List that
// lets unrelated module code stash arbitrary data under a dense,
// auto-allocated, strictly-positive id. The id space is not shared between
// objects of different classes; List.Add allocates the smallest free
// strictly-positive id, so an id released by Del can be handed out again.
package privdata

import "errors"

// ErrIDExists is returned by Add when a caller-supplied (nonzero) id is
// already present in the list.
var ErrIDExists = errors.New("privdata: id already registered")

// List holds arbitrary per-object data keyed by dense integer ids, one List
// per host object (an Interface, a Neighbor, or an Area).
type List struct {
	entries map[int]any
}

// NewList creates an empty private-data list for one host object.
func NewList() *List {
	return &List{entries: make(map[int]any)}
}

// Add stores data under *id. If *id is 0, the smallest strictly-positive id
// not already present is allocated and written back through *id. Otherwise
// *id is used as given and ErrIDExists is returned (without modifying the
// list) if that id is already occupied.
func (l *List) Add(id *int, data any) error {
	if *id == 0 {
		candidate := 1
		for {
			if _, used := l.entries[candidate]; !used {
				break
			}
			candidate++
		}
		l.entries[candidate] = data
		*id = candidate
		return nil
	}
	if _, used := l.entries[*id]; used {
		return ErrIDExists
	}
	l.entries[*id] = data
	return nil
}

// Get returns the data stored under id, or nil if absent.
func (l *List) Get(id int) any {
	return l.entries[id]
}

// Del removes and returns the data stored under id, or nil if absent.
func (l *List) Del(id int) any {
	data, ok := l.entries[id]
	if !ok {
		return nil
	}
	delete(l.entries, id)
	return data
}
