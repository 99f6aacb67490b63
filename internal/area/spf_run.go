package area

import (
	"context"
	"time"

	"github.com/ospf6mdr/ospf6d/internal/iface"
	"github.com/ospf6mdr/ospf6d/internal/neighbor"
	"github.com/ospf6mdr/ospf6d/internal/router6"
	"github.com/ospf6mdr/ospf6d/internal/schedule"
	"github.com/ospf6mdr/ospf6d/internal/spf"
)

// ResultFunc receives every freshly computed SPF result, used by the
// daemon wiring to drive route installation (spec.md §4.E's
// "intra_route_calculation... external collaborator" -- this package
// stops at producing Result; turning it into kernel routes needs the
// intra-prefix LSA decode that is itself out of scope here).
type ResultFunc func(*Area, spf.Result)

// ScheduleSPF implements spec.md §4.E's spf_schedule coalescing: at most
// one computation is pending per area, so a call while one is pending does
// nothing. Otherwise a run is armed SPFDelay from now or, if less than
// SPFHoldtime has passed since the last run, when the holdtime since that
// run expires.
func (a *Area) ScheduleSPF(loop *schedule.Loop, onResult ResultFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pendingSPF != nil {
		return // one pending computation per area, per spec.md §4.E
	}

	wait := a.SPFDelay
	if elapsed := time.Since(a.lastSPFRun); elapsed < a.SPFHoldtime {
		wait = a.SPFHoldtime - elapsed
	}
	a.pendingSPF = loop.After(wait, func() {
		a.runSPF(onResult)
	})
}

// runSPF executes one SPF pass (plus, per spec.md §4.E, at most one
// immediate re-run if an interface's routable-neighbor set changed as a
// result) and reports the final Result to onResult.
func (a *Area) runSPF(onResult ResultFunc) {
	a.mu.Lock()
	a.pendingSPF = nil
	a.mu.Unlock()

	result := a.computeSPF()

	changed := false
	for _, i := range a.Interfaces() {
		if !i.Config.MDR.UpdateRoutableImmediately {
			continue
		}
		if i.recomputeRoutable(result) {
			changed = true
		}
	}
	if changed {
		result = a.computeSPF()
	}

	a.mu.Lock()
	a.lastSPFRun = time.Now()
	a.result = result
	a.mu.Unlock()

	if onResult != nil {
		onResult(a, result)
	}
}

// computeSPF gathers every MDR interface's routable-or-Full neighbors as
// NeighborSeeds and runs one spf.Calculate pass rooted at selfRouterID.
func (a *Area) computeSPF() spf.Result {
	var seeds []spf.NeighborSeed
	var root router6.ID
	for _, i := range a.Interfaces() {
		root = i.MDRParams.SelfRouterID
		if i.FSM.Type != iface.TypeMDR {
			continue
		}
		for _, n := range i.Neighbors.Sorted() {
			if n.State() != neighbor.StateFull && !n.MDR.Routable {
				continue
			}
			seeds = append(seeds, spf.NeighborSeed{
				RouterID:  n.RouterID,
				Cost:      uint32(i.Cost()),
				IfIndex:   i.IfIndex,
				LinkLocal: i.linkLocalOf(),
			})
		}
	}
	return spf.Calculate(spf.Params{
		Root:          root,
		DB:            a.DB,
		NeighborSeeds: seeds,
	})
}

// recomputeRoutable implements the routable-neighbor half of spec.md
// §4.E's "consults each MDR interface's update_routable_neighbors_immediately
// flag": a neighbor counts as routable once the freshly computed SPF
// table carries a path to it at all. It returns whether any neighbor's
// routable flag flipped, the condition that triggers the guaranteed
// one-shot re-run.
func (i *Interface) recomputeRoutable(result spf.Result) bool {
	changed := false
	for _, n := range i.Neighbors.Sorted() {
		_, reachable := result.Routers[n.RouterID]
		if n.MDR.Routable != reachable {
			n.MDR.Routable = reachable
			changed = true
		}
	}
	return changed
}

// Run drives this area's scheduler-facing lifecycle until ctx is done;
// callers needing SPF runs register through ScheduleSPF, this just keeps
// Area-level bookkeeping (currently none beyond what ScheduleSPF already
// does) ready for future per-area background work.
func (a *Area) Run(ctx context.Context) {
	<-ctx.Done()
}
