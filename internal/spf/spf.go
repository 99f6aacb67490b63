// Package spf implements the per-area modified-Dijkstra SPF engine of
// spec.md §4.E: a min-priority-queue walk over router/network-LSA
// descriptors, seeded not only from the root's own LSA but also from
// every routable or Full MDR neighbor, with nexthop-merging route
// installation. The per-pass maps keyed by vertex are owned by one
// Calculate call and need no locking; together with a small in-package
// priority queue they follow the map-keyed tracking-table shape
// pkg/p2pnet/pathtracker.go uses for its own per-peer tracking table,
// adapted here to per-vertex SPF state instead of per-peer path info.
package spf

import (
	"net"
	"sort"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// MultiPathLimit caps the number of nexthops merged onto one route
// (spec.md §4.E "capped at MULTI_PATH_LIMIT").
const MultiPathLimit = 4

// Nexthop is one (interface, address) pair a route can be forwarded
// through.
type Nexthop struct {
	IfIndex int
	Address net.IP
}

func (n Nexthop) less(o Nexthop) bool {
	if n.IfIndex != o.IfIndex {
		return n.IfIndex < o.IfIndex
	}
	return n.Address.String() < o.Address.String()
}

// VertexKind distinguishes router vertices from transit-network
// vertices in the SPF tree.
type VertexKind int

const (
	VertexRouter VertexKind = iota
	VertexNetwork
)

// Route is one installed SPF result: reachability to a router or
// transit network, with cost, hop count, and a deduplicated, sorted,
// capped nexthop set.
type Route struct {
	Kind      VertexKind
	RouterID  router6.ID // valid when Kind == VertexRouter
	NetworkID uint32     // networkKey(AdvRouter, InterfaceID) identity (AdvRouter<<8 XOR InterfaceID) for VertexNetwork, opaque to callers
	Cost      uint32
	Hops      int
	Nexthops  []Nexthop
}

// mergeNexthops implements spec.md §4.E's install rule for equal-cost
// duplicates: union existing and incoming, unique by (ifindex, address),
// sorted deterministically, capped at MultiPathLimit.
func mergeNexthops(existing, incoming []Nexthop) []Nexthop {
	merged := append([]Nexthop{}, existing...)
	for _, nh := range incoming {
		dup := false
		for _, e := range merged {
			if e.IfIndex == nh.IfIndex && e.Address.Equal(nh.Address) {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, nh)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].less(merged[j]) })
	if len(merged) > MultiPathLimit {
		merged = merged[:MultiPathLimit]
	}
	return merged
}
