package area

import (
	"github.com/ospf6mdr/ospf6d/internal/linkmetrics"
	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// neighborByLinkLocal finds the neighbor on interface ifIndex whose last
// known link-local address matches peer, the lookup
// linkmetrics.NeighborLookup needs to turn a zebra sample's (ifindex,
// address) pair back into a router-id (spec.md §4.F event flow step 1).
func (i *Interface) neighborByLinkLocal(peer string) (router6.ID, bool) {
	for _, n := range i.Neighbors.Sorted() {
		if n.LinkLocal() == peer {
			return n.RouterID, true
		}
	}
	return 0, false
}

// NeighborLookup implements linkmetrics.NeighborLookup across every
// interface this area owns.
func (a *Area) NeighborLookup(ifIndex int, peerLinkLocal string) (router6.ID, bool) {
	i, ok := a.Interface(ifIndex)
	if !ok {
		return 0, false
	}
	return i.neighborByLinkLocal(peerLinkLocal)
}

// CurrentNeighborCost is the read side of linkmetrics.CostStore's
// per-(interface,neighbor) cost, distinct from Cost/SetCost's single
// interface-wide value: the per-neighbor cost most recently stored by a
// prior sample, or the interface's static cost if none has been
// recorded yet.
func (i *Interface) CurrentNeighborCost(neighbor router6.ID) uint16 {
	i.mu.Lock()
	defer i.mu.Unlock()
	if c, ok := i.perNeighborCost[neighbor]; ok {
		return c
	}
	return i.cost
}

// SetNeighborCost is the write side of linkmetrics.CostStore's
// per-(interface,neighbor) cost.
func (i *Interface) SetNeighborCost(neighbor router6.ID, cost uint16) {
	i.mu.Lock()
	i.perNeighborCost[neighbor] = cost
	i.mu.Unlock()
}

// costStoreAdapter narrows (ifIndex, neighbor) onto one Interface's
// per-neighbor cost map so linkmetrics.CostStore's interface, which
// spec.md §4.F scopes per-interface, can be satisfied by the Area that
// owns several interfaces at once.
type costStoreAdapter struct {
	area *Area
}

func (c costStoreAdapter) CurrentCost(ifIndex int, neighbor router6.ID) uint16 {
	i, ok := c.area.Interface(ifIndex)
	if !ok {
		return 0
	}
	return i.CurrentNeighborCost(neighbor)
}

func (c costStoreAdapter) SetCost(ifIndex int, neighbor router6.ID, cost uint16) {
	if i, ok := c.area.Interface(ifIndex); ok {
		i.SetNeighborCost(neighbor, cost)
	}
}

// ScheduleRouterLSA logs the re-origination request. Actually producing
// and flooding the router-LSA is the base LSDB machinery spec.md §1
// treats as an external collaborator; this daemon's boundary stops at
// requesting it the way onSPFResult's boundary stops at computing routes.
func (c costStoreAdapter) ScheduleRouterLSA(ifIndex int) {
	c.area.Logger.Info("area: router-lsa re-origination requested", "ifindex", ifIndex)
}

// HandleLinkMetricsSample feeds one zebra-reported sample through
// linkmetrics.UpdateFromSample (spec.md §4.F steps 1-3).
func (a *Area) HandleLinkMetricsSample(ifIndex int, peerLinkLocal string, m linkmetrics.Metrics) linkmetrics.Outcome {
	i, ok := a.Interface(ifIndex)
	if !ok {
		return linkmetrics.OutcomeUnknownNeighbor
	}
	return linkmetrics.UpdateFromSample(i.LinkMetrics, a.NeighborLookup, costStoreAdapter{a}, ifIndex, peerLinkLocal, m, a.Logger)
}

// FireImmediateHello implements linkmetrics.HelloKicker, dispatching by
// ifindex to the owning interface's rate-limited trigger.
func (a *Area) FireImmediateHello(ifIndex int) {
	if i, ok := a.Interface(ifIndex); ok {
		i.FireImmediateHello()
	}
}

// ForceInactivity implements linkmetrics.InactivityForcer, dispatching by
// ifindex to the owning interface's neighbor table.
func (a *Area) ForceInactivity(ifIndex int, neighbor router6.ID) {
	if i, ok := a.Interface(ifIndex); ok {
		i.ForceInactivity(neighbor)
	}
}

// HandleLinkStatusEvent feeds one zebra-reported UP/DOWN event through
// linkmetrics.HandleLinkStatus (spec.md §4.F point 4).
func (a *Area) HandleLinkStatusEvent(ev linkmetrics.LinkStatusEvent, peerLinkLocal string) {
	linkmetrics.HandleLinkStatus(ev, a.NeighborLookup, peerLinkLocal, a, a)
}
