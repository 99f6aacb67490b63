package area

import (
	"github.com/ospf6mdr/ospf6d/internal/mdr"
	"github.com/ospf6mdr/ospf6d/internal/neighbor"
	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// toMDRState narrows a neighbor's real eight-value state to the three
// buckets mdr.Calculate compares against (the MDR algorithm itself never
// distinguishes ExStart from Full -- only the LSA-fullness layer needs
// that, via FullState below).
func toMDRState(s neighbor.State) mdr.NeighborState {
	switch {
	case s < neighbor.StateTwoWay:
		return mdr.StateBelowTwoWay
	case s == neighbor.StateTwoWay:
		return mdr.StateTwoWay
	default:
		return mdr.StateExStartOrAbove
	}
}

// buildNeighborInputs snapshots an interface's neighbor table into the
// slice both mdr.Calculate and mdr.ComputeAdvertised read, capturing the
// previous run's advertised flag for the lexicographic tie-break
// advMinCost needs (spec.md §4.B).
func (i *Interface) buildNeighborInputs() []mdr.NeighborInput {
	sorted := i.Neighbors.Sorted()
	inputs := make([]mdr.NeighborInput, len(sorted))

	i.mu.Lock()
	prevAdv := make(map[router6.ID]bool, len(i.advertised))
	for id, adv := range i.advertised {
		prevAdv[id] = adv
	}
	i.mu.Unlock()

	for idx, n := range sorted {
		dr, bdr := n.DRBDR()
		inputs[idx] = mdr.NeighborInput{
			RouterID:    n.RouterID,
			Priority:    n.Priority(),
			Level:       n.MDR.Level,
			State:       toMDRState(n.State()),
			Report2Hop:  n.MDR.Report2Hop,
			RNL:         n.MDR.RNL,
			DNL:         n.MDR.DNL,
			SANL:        n.MDR.SANL,
			ReportedDR:  dr,
			ReportedBDR: bdr,
			Routable:    n.MDR.Routable,
			FullState:   n.State() == neighbor.StateFull,
			Abit:        n.MDR.Abit,
			PriorSelAdv: prevAdv[n.RouterID],
		}
	}
	return inputs
}

// RunMDR runs one full election + LSA-fullness pass for the interface:
// mdr.Calculate decides the local MDR/BMDR/Other level and per-neighbor
// hops/dependent flags, mdr.ComputeAdvertised then decides which
// neighbors the next router-LSA lists. Results are written back onto
// each neighbor's MDR sub-record and onto the interface's own level and
// parent/backup-parent fields. The returned bool reports whether either
// the level or any neighbor's advertised flag flipped, which is exactly
// the condition spec.md §4.B ties to router-LSA re-origination.
func (i *Interface) RunMDR() (mdr.Result, bool) {
	inputs := i.buildNeighborInputs()

	i.mu.Lock()
	params := i.MDRParams
	params.SelfLevel = i.lastLevel
	i.mu.Unlock()

	result := mdr.Calculate(params, inputs)

	byID := make(map[router6.ID]mdr.NeighborResult, len(result.Neighbors))
	for _, nr := range result.Neighbors {
		byID[nr.RouterID] = nr
	}
	for _, n := range i.Neighbors.Sorted() {
		nr, ok := byID[n.RouterID]
		if !ok {
			continue
		}
		n.MDR.Hops = nr.Hops
		n.MDR.Hops2 = nr.Hops2
		n.MDR.Dependent = nr.Dependent
	}

	adv := mdr.ComputeAdvertised(params, result.Level, i.Fullness, inputs)

	i.mu.Lock()
	levelChanged := i.lastLevel != result.Level
	i.lastLevel = result.Level
	i.parent, i.hasParent = result.Parent, result.HasParent
	i.bparent, i.hasBParent = result.BackupParent, result.HasBackupParent

	advChanged := false
	newAdvertised := make(map[router6.ID]bool, len(adv))
	for _, a := range adv {
		newAdvertised[a.RouterID] = a.Adv
		if i.advertised[a.RouterID] != a.Adv {
			advChanged = true
		}
	}
	if len(newAdvertised) != len(i.advertised) {
		advChanged = true
	}
	i.advertised = newAdvertised
	i.mu.Unlock()

	for _, n := range i.Neighbors.Sorted() {
		n.MDR.SelAdv = newAdvertised[n.RouterID]
	}

	i.OnUpdateMDRLevel.Each(func(fn UpdateMDRLevelFunc) { fn(i, result) })

	return result, levelChanged || advChanged
}
