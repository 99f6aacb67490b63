package linkmetrics

import (
	"log/slog"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// NeighborLookup resolves a (ifindex, peer link-local) tuple to the
// owning neighbor's router-id, per spec.md §4.F event flow step 1.
type NeighborLookup func(ifIndex int, peerLinkLocal string) (router6.ID, bool)

// CostStore records the currently advertised per-neighbor cost and
// triggers router-LSA re-origination when it changes -- the narrow
// surface this package needs onto the external LSA-origination
// collaborator (spec.md §1), kept as an interface so tests can use a
// map-backed fake.
type CostStore interface {
	CurrentCost(ifIndex int, neighbor router6.ID) uint16
	SetCost(ifIndex int, neighbor router6.ID, cost uint16)
	ScheduleRouterLSA(ifIndex int)
}

// Config is one interface's link-metrics configuration (spec.md §6).
type Config struct {
	Formula Formula
	Filter  Filter
	Weights Weights
}

// Outcome reports what UpdateFromSample did, for metrics instrumentation
// (internal/metrics LinkMetricUpdates counter).
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeUpdated
	OutcomeUnknownNeighbor
)

// UpdateFromSample implements spec.md §4.F's event flow steps 1-3: look
// up the neighbor, apply the filter, run the formula, and store+schedule
// re-origination if the cost changed.
func UpdateFromSample(cfg Config, lookup NeighborLookup, store CostStore, ifIndex int, peerLinkLocal string, m Metrics, logger *slog.Logger) Outcome {
	if logger == nil {
		logger = slog.Default()
	}
	neighbor, ok := lookup(ifIndex, peerLinkLocal)
	if !ok {
		logger.Warn("linkmetrics: dropping sample for unknown neighbor", "ifindex", ifIndex, "peer", peerLinkLocal)
		return OutcomeUnknownNeighbor
	}

	if cfg.Filter != nil {
		m = cfg.Filter(m)
	}

	prior := store.CurrentCost(ifIndex, neighbor)
	formula := cfg.Formula
	if formula == nil {
		formula = CiscoFormula
	}
	cost := formula(m, cfg.Weights, prior, logger)

	if cost == prior {
		return OutcomeUnchanged
	}
	store.SetCost(ifIndex, neighbor, cost)
	store.ScheduleRouterLSA(ifIndex)
	return OutcomeUpdated
}

// LinkStatusEvent is the separate UP/DOWN signal spec.md §4.F describes,
// distinct from a metrics sample.
type LinkStatusEvent struct {
	IfIndex int
	Up      bool
}

// HelloKicker cancels a pending Hello timer and fires an immediate one,
// the side effect of an unmatched link-UP event.
type HelloKicker interface {
	FireImmediateHello(ifIndex int)
}

// InactivityForcer tears an adjacency down immediately, the side effect
// of a link-DOWN event on a known neighbor.
type InactivityForcer interface {
	ForceInactivity(ifIndex int, neighbor router6.ID)
}

// HandleLinkStatus implements spec.md §4.F's link-status event flow:
// UP with no matching neighbor accelerates discovery via an immediate
// Hello; DOWN with a matching neighbor forces the adjacency down.
func HandleLinkStatus(ev LinkStatusEvent, lookup NeighborLookup, peerLinkLocal string, kicker HelloKicker, forcer InactivityForcer) {
	neighbor, known := lookup(ev.IfIndex, peerLinkLocal)
	switch {
	case ev.Up && !known:
		kicker.FireImmediateHello(ev.IfIndex)
	case !ev.Up && known:
		forcer.ForceInactivity(ev.IfIndex, neighbor)
	}
}
