package mdr

import "github.com/ospf6mdr/ospf6d/internal/router6"

// Fullness selects how many neighbors an interface's router-LSA
// advertises (spec.md §4.B "LSA-fullness decision", §6 knob
// "LSAFullness"), grounded on original_source/ospf6d/ospf6_mdr.c's
// ospf6_mdr_update_lsa dispatch over OSPF6_LSA_FULLNESS_*.
type Fullness int

const (
	FullnessMin Fullness = iota
	FullnessMinCost
	FullnessMinCost2Paths
	FullnessFull
	FullnessMDRFull
)

// AdvResult is the per-neighbor outcome of one ComputeAdvertised call: the
// "adv" flag compared against the previous run's value to decide whether
// a new router-LSA must be originated (spec.md §4.B "flip triggers
// router-LSA re-origination").
type AdvResult struct {
	RouterID router6.ID
	Adv      bool
}

func contains(list []router6.ID, id router6.ID) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}

// backbone reports whether neighbor in is a "backbone" neighbor requiring
// full adjacency regardless of the MDR fullness policy in force --
// original_source's ospf6_mdr_backbone. Only the fully-connected-policy
// branch (Abit=0 signals a neighbor not running adjacency reduction) is
// modeled; the mixed MDR/non-MDR-network need_adjacency() branch does not
// apply here since every interface in this deployment runs one policy
// throughout its lifetime (spec.md §3 Interface "type" is fixed per
// interface, never mixed mid-flight).
func backbone(adjConn AdjConnectivity, in NeighborInput) bool {
	if adjConn == AdjFullyConnected {
		return !in.Abit
	}
	return false
}

// lexGreaterBool is ospf6_sidcds_lexicographic specialized to the
// (bool, bool, router-id) tuples ospf6_mdr_update_lsa_mincost compares:
// san_matrix/selected_by flags stand in for "priority", the neighbor's
// prior sel_adv flag stands in for "mdr level", router-id breaks ties.
func lexGreaterBool(aFlag1, bFlag1, aFlag2, bFlag2 bool, idA, idB router6.ID) bool {
	if aFlag1 != bFlag1 {
		return aFlag1 && !bFlag1
	}
	if aFlag2 != bFlag2 {
		return aFlag2 && !bFlag2
	}
	return idA > idB
}

// ComputeAdvertised implements spec.md §4.B's LSA-fullness layer: given
// the MDR level Calculate just produced and the configured Fullness
// policy, decide which neighbors the next router-LSA must list.
// FullnessFull is forbidden in combination with AdjConnectivity=Fully per
// spec.md §4.B; callers are expected to have already rejected that
// configuration (internal/config.Validate).
func ComputeAdvertised(p Params, level router6.MDRLevel, fullness Fullness, neighbors []NeighborInput) []AdvResult {
	nodes := make([]*node, len(neighbors))
	for i, in := range neighbors {
		nodes[i] = &node{in: in, idx: i}
	}

	switch fullness {
	case FullnessFull:
		return advFull(p, nodes)
	case FullnessMDRFull:
		if level == router6.LevelMDR {
			return advFull(p, nodes)
		}
		return advMinimal(p, nodes)
	case FullnessMin:
		return advMinimal(p, nodes)
	default: // FullnessMinCost, FullnessMinCost2Paths
		costMatrix := buildCostMatrix(nodes)
		return advMinCost(p, nodes, costMatrix, fullness == FullnessMinCost2Paths)
	}
}

// advFull implements ospf6_mdr_update_lsa_full: every routable-or-Full
// neighbor is advertised, unconditionally of SANL/backbone status.
func advFull(p Params, nodes []*node) []AdvResult {
	out := make([]AdvResult, len(nodes))
	for i, n := range nodes {
		out[i] = AdvResult{RouterID: n.in.RouterID, Adv: n.in.Routable || n.in.FullState}
	}
	return out
}

// advMinimal implements ospf6_mdr_update_lsa_minimal: Full neighbors are
// always advertised; a routable neighbor is advertised only if it is a
// selected-advertised (SANL) relay for self, or it selects self in its own
// SANL, or it is a backbone neighbor. SANL itself stays empty under this
// policy (sel_adv is always false), matching the source's "SANL is empty
// for minimal LSAs".
func advMinimal(p Params, nodes []*node) []AdvResult {
	out := make([]AdvResult, len(nodes))
	for i, n := range nodes {
		selectedByJ := contains(n.in.SANL, p.SelfRouterID)
		bb := backbone(p.AdjConnectivity, n.in)
		adv := n.in.FullState || (n.in.Routable && (selectedByJ || bb))
		out[i] = AdvResult{RouterID: n.in.RouterID, Adv: adv}
	}
	return out
}

// advMinCost implements ospf6_mdr_update_lsa_mincost. MinCost2Paths goes
// through the same cost-relay search: twoPaths only lets the search go on
// to count a second relay before it stops, and the result depends only on
// whether one relay was found, so MinCost2Paths advertises the same
// neighbors as MinCost; no second, redundant relay is retained.
func advMinCost(p Params, nodes []*node, cost [][]int, twoPaths bool) []AdvResult {
	n := len(nodes)
	san := make([][]bool, n)
	adj := make([][]bool, n)
	for i := range nodes {
		san[i] = make([]bool, n)
		adj[i] = make([]bool, n)
	}
	for _, j := range nodes {
		for _, k := range nodes {
			if j == k || cost[j.idx][k.idx] != 1 {
				continue
			}
			if contains(j.in.SANL, k.in.RouterID) {
				san[j.idx][k.idx] = true
			}
			if adj[j.idx][k.idx] {
				continue
			}
			needAdj := (j.in.Level >= router6.LevelBMDR && k.in.Level >= router6.LevelBMDR && contains(j.in.DNL, k.in.RouterID)) ||
				(k.in.Level >= router6.LevelBMDR && (j.in.ReportedDR == k.in.RouterID || j.in.ReportedBDR == k.in.RouterID))
			if needAdj {
				adj[j.idx][k.idx] = true
				adj[k.idx][j.idx] = true
			}
		}
	}

	out := make([]AdvResult, n)
	for _, j := range nodes {
		selectedByJ := contains(j.in.SANL, p.SelfRouterID)
		bb := backbone(p.AdjConnectivity, j.in)
		selAdv := false
		relayCount := 0

		if j.in.State >= StateTwoWay && !bb {
			for _, k := range nodes {
				if k == j || k.in.State < StateTwoWay || cost[j.idx][k.idx] == 1 {
					continue // k must be bidirectional and not already a neighbor of j
				}
				betterRelay := false
				for _, u := range nodes {
					if u == j || u == k || u.in.State < StateTwoWay {
						continue
					}
					if cost[u.idx][k.idx] != 1 || cost[u.idx][j.idx] != 1 {
						continue // u must be a common neighbor of j and k
					}
					if adj[u.idx][j.idx] ||
						lexGreaterBool(san[j.idx][u.idx], selectedByJ, san[u.idx][j.idx], j.in.PriorSelAdv, u.in.RouterID, p.SelfRouterID) {
						betterRelay = true
						break
					}
				}
				if !betterRelay {
					selAdv = true
					relayCount++
					if !twoPaths {
						break // one relay suffices unless a second redundant path is required
					}
					if relayCount >= 2 {
						break
					}
				}
			}
		}

		adv := (j.in.FullState || j.in.Routable) && (selAdv || selectedByJ || bb)
		out[j.idx] = AdvResult{RouterID: j.in.RouterID, Adv: adv}
	}
	return out
}
