package spf

import (
	"container/heap"
	"log/slog"
	"net"

	"github.com/ospf6mdr/ospf6d/internal/lsa"
	"github.com/ospf6mdr/ospf6d/internal/router6"
)

func logSkippedNexthop(from, to router6.ID) {
	slog.Default().Warn("spf: skipping route with no resolvable nexthop",
		"from", from.String(), "to", to.String())
}

func logSkippedNetworkNexthop(netAdvRouter router6.ID, netInterfaceID uint32, to router6.ID) {
	slog.Default().Warn("spf: skipping route across transit network with no resolvable nexthop",
		"network_dr", netAdvRouter.String(), "network_ifid", netInterfaceID, "to", to.String())
}

// NeighborSeed is one MDR neighbor the SPF walk seeds directly as a
// one-hop child of the root (spec.md §4.E). Calculate installs every seed
// in Params.NeighborSeeds as given; it does not check whether the
// neighbor has a router-LSA or a link-LSA in the DB.
type NeighborSeed struct {
	RouterID  router6.ID
	Cost      uint32
	IfIndex   int
	LinkLocal net.IP
}

// Params bundles one area's SPF computation inputs.
type Params struct {
	Root          router6.ID
	DB            lsa.DB
	NeighborSeeds []NeighborSeed

	// AllRootNeighborsAdded, when true, skips the root's own LSA
	// descriptor walk (spec.md §4.E: "every interface is MDR and none
	// requires full adjacencies with full LSAs").
	AllRootNeighborsAdded bool
}

// Result is the full set of installed routes from one Calculate call.
type Result struct {
	Routers  map[router6.ID]Route
	Networks map[uint32]Route // keyed by a caller-opaque network identity; see networkKey
}

func networkKey(advRouter router6.ID, interfaceID uint32) uint32 {
	return uint32(advRouter)<<8 ^ interfaceID
}

type vertexState struct {
	id       vertexID
	cost     uint32
	hops     int
	nexthops []Nexthop
	settled  bool
	// via is the predecessor this vertex actually settled through, so
	// propagation only cascades into children that are still reached
	// through the vertex being merged.
	via vertexID
}

// spfRun carries the mutable state one Calculate pass threads through
// relax and the nexthop-propagation step: the LSDB being walked, the
// work queue, the settled-vertex table, and the parent/child edges of
// the tree actually pushed so far -- both already-settled vertices and
// ones still waiting in the queue, since both need a parent's merged
// nexthop set to reach them within the same pass.
type spfRun struct {
	db       lsa.DB
	pq       *priorityQueue
	settled  map[vertexID]*vertexState
	children map[vertexID][]vertexID
	pushed   map[vertexID][]*queueItem
}

// push enqueues item and records the parent/child edge (item.via -> item.id)
// so a later equal-cost merge at item.via can find item again, whether it
// has settled yet or is still sitting in the queue.
func (r *spfRun) push(item *queueItem) {
	heap.Push(r.pq, item)
	r.children[item.via] = append(r.children[item.via], item.id)
	r.pushed[item.id] = append(r.pushed[item.id], item)
}

// Calculate runs one modified-Dijkstra SPF pass over the area LSDB
// rooted at Params.Root, per spec.md §4.E.
func Calculate(p Params) Result {
	run := &spfRun{
		db:       p.DB,
		pq:       &priorityQueue{},
		settled:  make(map[vertexID]*vertexState),
		children: make(map[vertexID][]vertexID),
		pushed:   make(map[vertexID][]*queueItem),
	}
	heap.Init(run.pq)

	rootID := vertexID{kind: VertexRouter, routerID: p.Root}
	run.push(&queueItem{id: rootID, cost: 0, hops: 0})

	for _, seed := range p.NeighborSeeds {
		id := vertexID{kind: VertexRouter, routerID: seed.RouterID}
		nh := []Nexthop{{IfIndex: seed.IfIndex, Address: seed.LinkLocal}}
		run.push(&queueItem{id: id, cost: seed.Cost, hops: 1, nexthops: nh, via: rootID})
	}

	for run.pq.Len() > 0 {
		item := heap.Pop(run.pq).(*queueItem)
		existing, ok := run.settled[item.id]
		if ok {
			if item.cost > existing.cost {
				continue // strictly higher cost than the installed route: discard
			}
			if item.cost == existing.cost {
				existing.nexthops = mergeNexthops(existing.nexthops, item.nexthops)
				propagateNexthopsToChildren(run, item.id, existing.nexthops)
				continue
			}
			// strictly lower cost: replace
		}
		run.settled[item.id] = &vertexState{id: item.id, cost: item.cost, hops: item.hops, nexthops: item.nexthops, settled: true, via: item.via}

		if item.id.kind == VertexRouter && item.id.routerID == p.Root && p.AllRootNeighborsAdded {
			continue // skip the root's own descriptor walk
		}
		relax(run, item)
	}

	result := Result{Routers: make(map[router6.ID]Route), Networks: make(map[uint32]Route)}
	for id, v := range run.settled {
		if id.routerID == p.Root && id.kind == VertexRouter {
			continue // the root itself is not an installed route
		}
		switch id.kind {
		case VertexRouter:
			result.Routers[id.routerID] = Route{Kind: VertexRouter, RouterID: id.routerID, Cost: v.cost, Hops: v.hops, Nexthops: v.nexthops}
		case VertexNetwork:
			key := networkKey(id.advRouter, id.interfaceID)
			result.Networks[key] = Route{Kind: VertexNetwork, NetworkID: key, Cost: v.cost, Hops: v.hops, Nexthops: v.nexthops}
		}
	}
	return result
}

// propagateNexthopsToChildren implements "new nexthops are also
// propagated to every already-installed child" (spec.md §4.E). A vertex
// relaxed from `of` inherits its nexthop set verbatim (relax only
// resolves a fresh nexthop when the predecessor's set was empty, which
// past the first hop never happens), so an equal-cost merge at `of`
// must reach every vertex still depending on that inherited set --
// whether it has already settled, or is still sitting in the queue
// waiting to. spec.md §8.7 guarantees a rerun on an unchanged LSDB is
// bit-identical, so waiting for the next pass would never reconcile an
// incomplete set computed this way.
func propagateNexthopsToChildren(run *spfRun, of vertexID, nexthops []Nexthop) {
	for _, childID := range run.children[of] {
		if child, ok := run.settled[childID]; ok && child.via == of {
			merged := mergeNexthops(child.nexthops, nexthops)
			if nexthopsEqual(child.nexthops, merged) {
				continue
			}
			child.nexthops = merged
			propagateNexthopsToChildren(run, childID, merged)
			continue
		}
		// Not settled yet (or settled via a different, cheaper path):
		// update any still-queued item pushed from `of` in place, so
		// its eventual settle uses the merged set. relax() has not run
		// for it yet, so it has no descendants of its own to recurse
		// into -- those get pushed with the merged set once it settles.
		for _, qi := range run.pushed[childID] {
			if qi.via != of {
				continue
			}
			qi.nexthops = mergeNexthops(qi.nexthops, nexthops)
		}
	}
}

func nexthopsEqual(a, b []Nexthop) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IfIndex != b[i].IfIndex || !a[i].Address.Equal(b[i].Address) {
			return false
		}
	}
	return true
}

func relax(run *spfRun, item *queueItem) {
	switch item.id.kind {
	case VertexRouter:
		relaxRouter(run, item)
	case VertexNetwork:
		relaxNetwork(run, item)
	}
}

func relaxRouter(run *spfRun, item *queueItem) {
	db := run.db
	rlsa, ok := db.RouterLSA(item.id.routerID)
	if !ok {
		return
	}
	for _, d := range rlsa.Descriptors {
		switch d.Type {
		case lsa.DescPointToPoint:
			if !hasBacklink(db, d, item.id.routerID) {
				continue
			}
			newCost := item.cost + uint32(d.Metric)
			nh := item.nexthops
			if len(nh) == 0 {
				ll, ok := linkLocalFor(db, d.NeighborRouter, d.NeighborIfID)
				if !ok {
					// No link-LSA and no inherited nexthop: an
					// empty-nexthop vertex is only valid for the root's
					// own vertex (spec.md §3 Vertex invariant). Log and
					// skip rather than install an unusable route.
					logSkippedNexthop(item.id.routerID, d.NeighborRouter)
					continue
				}
				nh = []Nexthop{{IfIndex: int(d.InterfaceID), Address: ll}}
			}
			run.push(&queueItem{
				id:       vertexID{kind: VertexRouter, routerID: d.NeighborRouter},
				cost:     newCost,
				hops:     item.hops + 1,
				nexthops: nh,
				via:      item.id,
			})
		case lsa.DescTransitNetwork:
			netID := vertexID{kind: VertexNetwork, advRouter: d.NeighborRouter, interfaceID: d.NeighborIfID}
			if !networkListsAttachedRouter(db, netID, item.id.routerID) {
				continue // no matching backlink from the network-LSA yet
			}
			run.push(&queueItem{
				id:       netID,
				cost:     item.cost + uint32(d.Metric),
				hops:     item.hops + 1,
				nexthops: item.nexthops,
				via:      item.id,
			})
		}
	}
}

// relaxNetwork implements the transit-network half of spec.md §4.E: on
// dequeuing a VertexNetwork, walk its network-LSA's AttachedRouters and
// enqueue each one as a router vertex at the network vertex's own cost
// (crossing a transit network from the network side costs 0; the metric
// was already charged on the router's DescTransitNetwork edge into the
// network). Each attached router must in turn advertise a
// DescTransitNetwork descriptor back to this same (AdvRouter,
// InterfaceID) -- the "matching backlink" requirement -- and that
// descriptor's own InterfaceID is what resolves the router's link-local
// nexthop address via its link-LSA when no nexthop was inherited.
func relaxNetwork(run *spfRun, item *queueItem) {
	db := run.db
	nlsa, ok := db.NetworkLSA(item.id.advRouter, item.id.interfaceID)
	if !ok {
		return
	}
	for _, attached := range nlsa.AttachedRouters {
		ifaceID, ok := networkBacklinkInterfaceID(db, attached, item.id.advRouter, item.id.interfaceID)
		if !ok {
			continue
		}
		nh := item.nexthops
		if len(nh) == 0 {
			ll, ok := linkLocalFor(db, attached, ifaceID)
			if !ok {
				logSkippedNetworkNexthop(item.id.advRouter, item.id.interfaceID, attached)
				continue
			}
			nh = []Nexthop{{IfIndex: int(ifaceID), Address: ll}}
		}
		run.push(&queueItem{
			id:       vertexID{kind: VertexRouter, routerID: attached},
			cost:     item.cost,
			hops:     item.hops + 1,
			nexthops: nh,
			via:      item.id,
		})
	}
}

// networkListsAttachedRouter requires the network-LSA to already list
// fromRouter among its attached routers before a router->network edge
// is followed -- the router->network side of the "matching backlink"
// check §4.E requires for every descriptor.
func networkListsAttachedRouter(db lsa.DB, netID vertexID, fromRouter router6.ID) bool {
	nlsa, ok := db.NetworkLSA(netID.advRouter, netID.interfaceID)
	if !ok {
		return false
	}
	for _, r := range nlsa.AttachedRouters {
		if r == fromRouter {
			return true
		}
	}
	return false
}

// networkBacklinkInterfaceID is the network->router side of the
// backlink check: attachedRouter's own router-LSA must carry a
// DescTransitNetwork descriptor pointing back to (netAdvRouter,
// netInterfaceID), and that descriptor's InterfaceID is
// attachedRouter's own interface onto the segment -- the key
// linkLocalFor needs to resolve its nexthop address.
func networkBacklinkInterfaceID(db lsa.DB, attachedRouter, netAdvRouter router6.ID, netInterfaceID uint32) (uint32, bool) {
	far, ok := db.RouterLSA(attachedRouter)
	if !ok {
		return 0, false
	}
	for _, fd := range far.Descriptors {
		if fd.Type != lsa.DescTransitNetwork {
			continue
		}
		if fd.NeighborRouter == netAdvRouter && fd.NeighborIfID == netInterfaceID {
			return fd.InterfaceID, true
		}
	}
	return 0, false
}

func hasBacklink(db lsa.DB, d lsa.RouterDescriptor, fromRouter router6.ID) bool {
	far, ok := db.RouterLSA(d.NeighborRouter)
	if !ok {
		return false
	}
	for _, fd := range far.Descriptors {
		if fd.Type != lsa.DescPointToPoint {
			continue
		}
		if fd.NeighborRouter == fromRouter && fd.NeighborIfID == d.InterfaceID && fd.InterfaceID == d.NeighborIfID {
			return true
		}
	}
	return false
}

func linkLocalFor(db lsa.DB, routerID router6.ID, interfaceID uint32) (net.IP, bool) {
	l, ok := db.LinkLSA(routerID, interfaceID)
	if !ok {
		return nil, false
	}
	return l.LinkLocalAddr, l.LinkLocalAddr != nil
}
