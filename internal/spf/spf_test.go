package spf

import (
	"net"
	"testing"

	"github.com/ospf6mdr/ospf6d/internal/lsa"
	"github.com/ospf6mdr/ospf6d/internal/router6"
)

func TestMergeNexthopsDedupsAndCaps(t *testing.T) {
	existing := []Nexthop{{IfIndex: 1, Address: net.ParseIP("fe80::1")}}
	incoming := []Nexthop{
		{IfIndex: 1, Address: net.ParseIP("fe80::1")}, // duplicate
		{IfIndex: 2, Address: net.ParseIP("fe80::2")},
		{IfIndex: 3, Address: net.ParseIP("fe80::3")},
		{IfIndex: 4, Address: net.ParseIP("fe80::4")},
		{IfIndex: 5, Address: net.ParseIP("fe80::5")},
	}
	merged := mergeNexthops(existing, incoming)
	if len(merged) != MultiPathLimit {
		t.Fatalf("expected cap of %d, got %d", MultiPathLimit, len(merged))
	}
}

func buildLineTopology() *lsa.MemDB {
	db := lsa.NewMemDB()
	// root(1) -- 2 -- 3, point-to-point, cost 10 each hop
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 1,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 1, NeighborRouter: 2},
		},
	})
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 2,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 1, NeighborRouter: 1},
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 2, NeighborIfID: 1, NeighborRouter: 3},
		},
	})
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 3,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 2, NeighborRouter: 2},
		},
	})
	// Link-LSAs give relax() a link-local address to resolve each hop's
	// nexthop through; without one (see TestCalculateSkipsUnresolvableNexthop)
	// the route is logged and skipped rather than installed with no nexthop.
	db.PutLinkLSA(lsa.LinkLSA{AdvRouter: 2, InterfaceID: 1, LinkLocalAddr: net.ParseIP("fe80::2")})
	db.PutLinkLSA(lsa.LinkLSA{AdvRouter: 3, InterfaceID: 1, LinkLocalAddr: net.ParseIP("fe80::3")})
	return db
}

func TestCalculateLineTopology(t *testing.T) {
	db := buildLineTopology()
	result := Calculate(Params{Root: 1, DB: db})

	r2, ok := result.Routers[2]
	if !ok || r2.Cost != 10 || r2.Hops != 1 {
		t.Fatalf("expected router 2 at cost 10 hops 1, got %+v ok=%v", r2, ok)
	}
	r3, ok := result.Routers[3]
	if !ok || r3.Cost != 20 || r3.Hops != 2 {
		t.Fatalf("expected router 3 at cost 20 hops 2, got %+v ok=%v", r3, ok)
	}
	if _, ok := result.Routers[1]; ok {
		t.Fatal("root itself should not appear as an installed route")
	}
}

func TestCalculateRejectsOneSidedLink(t *testing.T) {
	db := lsa.NewMemDB()
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 1,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 1, NeighborRouter: 2},
		},
	})
	// router 2 never advertises a backlink to 1.
	db.PutRouterLSA(lsa.RouterLSA{AdvRouter: 2})

	result := Calculate(Params{Root: 1, DB: db})
	if _, ok := result.Routers[2]; ok {
		t.Fatal("expected one-sided link without a backlink to be rejected")
	}
}

func TestCalculateSkipsUnresolvableNexthop(t *testing.T) {
	db := lsa.NewMemDB()
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 1,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 1, NeighborRouter: 2},
		},
	})
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 2,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 1, NeighborRouter: 1},
		},
	})
	// No link-LSA for router 2's interface 1, and no inherited nexthop
	// from a seed: the route to 2 must be skipped, not installed with an
	// empty nexthop (spec.md §3 Vertex invariant).

	result := Calculate(Params{Root: 1, DB: db})
	if _, ok := result.Routers[2]; ok {
		t.Fatal("expected route with unresolvable nexthop to be skipped")
	}
}

func TestCalculateRelaxesTransitNetwork(t *testing.T) {
	db := lsa.NewMemDB()
	// root(1) --- network(DR=2, ifid=5) --- router(3), a broadcast
	// segment with router 3 reachable only as the DR's attached
	// neighbor (spec.md §8.1's DROther-behind-a-DR scenario).
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 1,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescTransitNetwork, Metric: 10, InterfaceID: 1, NeighborIfID: 5, NeighborRouter: 2},
		},
	})
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 3,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescTransitNetwork, Metric: 10, InterfaceID: 7, NeighborIfID: 5, NeighborRouter: 2},
		},
	})
	db.PutNetworkLSA(lsa.NetworkLSA{AdvRouter: 2, InterfaceID: 5, AttachedRouters: []router6.ID{1, 3}})
	db.PutLinkLSA(lsa.LinkLSA{AdvRouter: 3, InterfaceID: 7, LinkLocalAddr: net.ParseIP("fe80::3")})

	result := Calculate(Params{Root: 1, DB: db})

	net5, ok := result.Networks[networkKey(2, 5)]
	if !ok || net5.Cost != 10 || net5.Hops != 1 {
		t.Fatalf("expected network (2,5) at cost 10 hops 1, got %+v ok=%v", net5, ok)
	}
	r3, ok := result.Routers[3]
	if !ok || r3.Cost != 10 || r3.Hops != 2 {
		t.Fatalf("expected router 3 reached across the network at cost 10 hops 2, got %+v ok=%v", r3, ok)
	}
	if len(r3.Nexthops) != 1 || r3.Nexthops[0].IfIndex != 7 || !r3.Nexthops[0].Address.Equal(net.ParseIP("fe80::3")) {
		t.Fatalf("expected router 3's nexthop resolved via its own backlink interface, got %+v", r3.Nexthops)
	}
}

func TestCalculateRejectsTransitNetworkWithoutBacklink(t *testing.T) {
	db := lsa.NewMemDB()
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 1,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescTransitNetwork, Metric: 10, InterfaceID: 1, NeighborIfID: 5, NeighborRouter: 2},
		},
	})
	// Router 3 is listed as attached but never advertises a
	// DescTransitNetwork descriptor back to (2, 5).
	db.PutRouterLSA(lsa.RouterLSA{AdvRouter: 3})
	db.PutNetworkLSA(lsa.NetworkLSA{AdvRouter: 2, InterfaceID: 5, AttachedRouters: []router6.ID{1, 3}})

	result := Calculate(Params{Root: 1, DB: db})
	if _, ok := result.Routers[3]; ok {
		t.Fatal("expected router 3 without a matching backlink to be rejected")
	}
}

func TestCalculatePropagatesMergedNexthopsToChildren(t *testing.T) {
	db := lsa.NewMemDB()
	// root(1) is dual-homed to router(2) over two equal-cost
	// point-to-point links; router(2) in turn reaches router(3).
	// Router 3's route must end up carrying both of router 2's
	// nexthops, not just whichever one settled router 2 first.
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 1,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 1, NeighborRouter: 2},
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 2, NeighborIfID: 2, NeighborRouter: 2},
		},
	})
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 2,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 1, NeighborRouter: 1},
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 2, NeighborIfID: 2, NeighborRouter: 1},
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 3, NeighborIfID: 1, NeighborRouter: 3},
		},
	})
	db.PutRouterLSA(lsa.RouterLSA{
		AdvRouter: 3,
		Descriptors: []lsa.RouterDescriptor{
			{Type: lsa.DescPointToPoint, Metric: 10, InterfaceID: 1, NeighborIfID: 3, NeighborRouter: 2},
		},
	})
	db.PutLinkLSA(lsa.LinkLSA{AdvRouter: 2, InterfaceID: 1, LinkLocalAddr: net.ParseIP("fe80::2a")})
	db.PutLinkLSA(lsa.LinkLSA{AdvRouter: 2, InterfaceID: 2, LinkLocalAddr: net.ParseIP("fe80::2b")})
	db.PutLinkLSA(lsa.LinkLSA{AdvRouter: 3, InterfaceID: 1, LinkLocalAddr: net.ParseIP("fe80::3")})

	result := Calculate(Params{Root: 1, DB: db})

	r2, ok := result.Routers[2]
	if !ok || len(r2.Nexthops) != 2 {
		t.Fatalf("expected router 2 to merge both equal-cost nexthops, got %+v ok=%v", r2, ok)
	}
	r3, ok := result.Routers[3]
	if !ok {
		t.Fatal("expected router 3 to be installed")
	}
	if len(r3.Nexthops) != 2 {
		t.Fatalf("expected router 3 to inherit both of router 2's merged nexthops, got %+v", r3.Nexthops)
	}
}

func TestCalculateSeedsFromMDRNeighbors(t *testing.T) {
	db := lsa.NewMemDB()
	result := Calculate(Params{
		Root: 1,
		DB:   db,
		NeighborSeeds: []NeighborSeed{
			{RouterID: router6.ID(5), Cost: 42, IfIndex: 3, LinkLocal: net.ParseIP("fe80::5")},
		},
	})
	r5, ok := result.Routers[5]
	if !ok || r5.Cost != 42 || r5.Hops != 1 {
		t.Fatalf("expected seeded neighbor 5 at cost 42 hops 1, got %+v ok=%v", r5, ok)
	}
}
