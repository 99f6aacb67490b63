// Package mdr implements the RFC 5614 MDR/BMDR election algorithm of
// spec.md §4.B: the five-phase neighbor-graph calculation that decides
// whether an interface's local router is an MDR, a BMDR, or Other, plus
// parent/backup-parent selection and the non-flooding-MDR test. The
// phase structure (cost matrix -> MDR BFS -> BMDR tree-labeling -> parent
// selection -> non-flooding test) follows
// original_source/ospf6d/ospf6_mdr.c's ospf6_calculate_mdr almost
// one-to-one; only the queue/tree bookkeeping is rewritten in idiomatic
// Go (slices instead of the C file's intrusive linked lists), grounded
// on pkg/p2pnet/pathtracker.go's BFS-over-adjacency style.
package mdr

import (
	"github.com/ospf6mdr/ospf6d/internal/router6"
)

const infinity = 10000 // spec.md/original_source INFTY

// AdjConnectivity is the interface-level adjacency-reduction policy
// (spec.md §6 knob "AdjConnectivity").
type AdjConnectivity int

const (
	AdjFullyConnected AdjConnectivity = iota
	AdjBiConnected
	AdjConnected
)

// NeighborInput is the per-neighbor state the MDR calculation reads. It
// is filled in by the caller (internal/neighbor + internal/hello) from
// each neighbor's last-reported Hello content; Calculate never mutates
// the neighbor table directly, it returns NeighborResult values for the
// caller to apply.
type NeighborInput struct {
	RouterID   router6.ID
	Priority   uint8
	Level      router6.MDRLevel
	State      NeighborState
	Report2Hop bool
	RNL        []router6.ID // neighbor's reported 2-hop neighbor list

	// The following fields feed only the LSA-fullness advertised-neighbor
	// decision (fullness.go / ComputeAdvertised), not the five-phase
	// election above; Calculate ignores them.
	DNL          []router6.ID // neighbor's reported dependent neighbor list
	SANL         []router6.ID // neighbor's reported selected-advertised list
	ReportedDR   router6.ID   // DR field from the neighbor's last Hello
	ReportedBDR  router6.ID   // BDR field from the neighbor's last Hello
	Routable     bool         // spec.md §3 "routable neighbor"
	FullState    bool         // true iff the neighbor's real (8-value) state is exactly Full
	Abit         bool         // neighbor's Abit (A=0 means no-adjacency-reduction, RFC 5614 §4.2.1)
	PriorSelAdv  bool         // this neighbor's own mdr.sel_adv value from the previous run
}

// NeighborState is the subset of neighbor.State the algorithm needs to
// compare against TwoWay/Exchange thresholds, kept distinct from
// internal/neighbor.State so this package does not import
// internal/neighbor.
type NeighborState int

const (
	StateBelowTwoWay NeighborState = iota
	StateTwoWay
	StateExStartOrAbove
)

// NeighborResult is the per-neighbor output of one Calculate call.
type NeighborResult struct {
	RouterID  router6.ID
	Hops      int
	Hops2     int
	Dependent bool
}

// Result is the interface-level output of one Calculate call.
type Result struct {
	Level          router6.MDRLevel
	NonFloodingMDR bool
	Parent         router6.ID // zero means none (self, for an MDR)
	HasParent      bool
	BackupParent   router6.ID
	HasBackupParent bool
	Neighbors      []NeighborResult
}

// Params bundles the interface-level inputs to Calculate: this router's
// own priority/level/id and the adjacency-reduction policy, plus the
// MDRConstraint knob (spec.md §6).
type Params struct {
	SelfRouterID    router6.ID
	SelfPriority    uint8
	SelfLevel       router6.MDRLevel
	AdjConnectivity AdjConnectivity
	MDRConstraint   int
}

// sidcdsLexicographic implements original_source's
// ospf6_sidcds_lexicographic: A is lexicographically greater than B by
// (priority, mdr-level, router-id), compared in that order.
func sidcdsLexicographic(priorityA, priorityB uint8, levelA, levelB router6.MDRLevel, idA, idB router6.ID) bool {
	if priorityA > priorityB {
		return true
	}
	if priorityA == priorityB && levelA > levelB {
		return true
	}
	if priorityA == priorityB && levelA == levelB && idA > idB {
		return true
	}
	return false
}

type node struct {
	in       NeighborInput
	idx      int
	hops     int
	hops2    int
	dependent bool

	parent  *node // tree parent once added to the BFS tree
	secNode *node // "second node": the hop-1 ancestor on the tree path to root
	labeled bool
}

// Calculate runs the full five-phase election for one interface given
// its current neighbor set. neighbors should include every neighbor
// regardless of state; Calculate filters to TwoWay-or-above internally,
// matching ospf6_mdr_cost's "nbr must be twoway" gate.
func Calculate(p Params, neighbors []NeighborInput) Result {
	nodes := make([]*node, len(neighbors))
	for i, in := range neighbors {
		nodes[i] = &node{in: in, idx: i, hops: infinity, hops2: infinity}
	}

	costMatrix := buildCostMatrix(nodes)

	cost := func(j, k *node) int {
		if j.in.State < StateTwoWay {
			return 0
		}
		if k == nil {
			return 1
		}
		if sidcdsLexicographic(p.SelfPriority, j.in.Priority, p.SelfLevel, j.in.Level, p.SelfRouterID, j.in.RouterID) {
			return infinity
		}
		return costMatrix[j.idx][k.idx]
	}

	// ###### PHASE 2: MDR calculation ######
	var maxOn, maxOn2 *node
	var maxID, maxID2 router6.ID
	var maxLevel, maxLevel2 router6.MDRLevel = router6.LevelOther, router6.LevelOther
	var maxPriority, maxPriority2 uint8 = 1, 1

	for _, n := range nodes {
		n.dependent = false
		n.hops = infinity
		n.hops2 = infinity
		if cost(n, nil) != 1 {
			continue
		}
		if sidcdsLexicographic(n.in.Priority, maxPriority, n.in.Level, maxLevel, n.in.RouterID, maxID) {
			maxID2, maxPriority2, maxLevel2, maxOn2 = maxID, maxPriority, maxLevel, maxOn
			maxID, maxPriority, maxLevel, maxOn = n.in.RouterID, n.in.Priority, n.in.Level, n
		} else if sidcdsLexicographic(n.in.Priority, maxPriority2, n.in.Level, maxLevel2, n.in.RouterID, maxID2) {
			maxID2, maxPriority2, maxLevel2, maxOn2 = n.in.RouterID, n.in.Priority, n.in.Level, n
		}
	}

	if maxOn == nil {
		// no twoway neighbors
		return Result{Level: router6.LevelOther, Neighbors: collectResults(nodes)}
	}

	if sidcdsLexicographic(p.SelfPriority, maxPriority, p.SelfLevel, maxLevel, p.SelfRouterID, maxID) {
		// Step 2.2: self outranks every neighbor -> self is MDR.
		if p.AdjConnectivity != AdjFullyConnected {
			for _, n := range nodes {
				if cost(n, nil) != 1 {
					continue
				}
				if n.in.Level == router6.LevelMDR ||
					(p.AdjConnectivity == AdjBiConnected && n.in.Level == router6.LevelBMDR) {
					n.dependent = true
				}
			}
		}
		return Result{Level: router6.LevelMDR, Neighbors: collectResults(nodes)}
	}

	// Step 2.4: BFS from maxOn using only twoway-adjacent links.
	maxOn.hops = 0
	maxOn.secNode = nil
	queue := []*node{maxOn}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, u := range nodes {
			if cost(u, nil) != 1 {
				continue
			}
			if cost(k, u) != 1 {
				continue
			}
			if k.hops+1 < u.hops {
				u.hops = k.hops + 1
				u.parent = k
				if u.hops == 1 {
					u.secNode = u
				} else {
					u.secNode = k.secNode
				}
				queue = append(queue, u)
			}
		}
	}

	dr := false
	for _, k := range nodes {
		if cost(k, nil) != 1 {
			continue
		}
		if k.hops > p.MDRConstraint {
			dr = true
			if p.AdjConnectivity == AdjFullyConnected {
				break
			}
			if k.in.Level == router6.LevelMDR ||
				(p.AdjConnectivity == AdjBiConnected && k.in.Level == router6.LevelBMDR) {
				k.dependent = true
			}
		}
	}
	if dr && p.AdjConnectivity != AdjFullyConnected && maxOn.in.Level > router6.LevelOther {
		maxOn.dependent = true
	}

	level := p.SelfLevel
	if dr {
		level = router6.LevelMDR
	} else if level == router6.LevelMDR {
		level = router6.LevelBMDR
	}

	// ###### PHASE 3: BMDR calculation (version-9 tree-labeling algorithm) ######
	maxOn.hops2 = 0
	maxOn.labeled = true

	for _, v := range nodes {
		if v == maxOn {
			continue
		}
		if !onTree(v, maxOn) {
			continue
		}
		for _, u := range nodes {
			if u == maxOn {
				continue
			}
			if !onTree(u, maxOn) {
				continue
			}
			if u.secNode == v.secNode {
				continue
			}
			if cost(u, v) == 1 {
				v.hops2 = 0
				break
			}
		}
	}

	for {
		var minOn *node
		for _, k := range nodes {
			if cost(k, nil) != 1 {
				continue
			}
			if !onTree(k, maxOn) || k.labeled {
				continue
			}
			if k.hops2 == 0 {
				minOn = k
				break
			}
		}
		if minOn == nil {
			break
		}
		minOn.labeled = true

		root := minOn.parent
		for root != nil && root.parent != nil && !root.labeled && root.parent != maxOn {
			root = root.parent
		}
		if root == nil {
			root = maxOn
		}

		rootSubtree := dfsSubtree(root, nodes)
		minSubtree := dfsSubtree(minOn, nodes)
		for _, u := range rootSubtree {
			for _, v := range minSubtree {
				if cost(u, v) == 1 && v.hops2 != 0 {
					v.hops2 = 0
				}
				if cost(v, u) == 1 && u.hops2 != 0 {
					u.hops2 = 0
				}
			}
		}
	}

	bdr := false
	for _, k := range nodes {
		if cost(k, nil) != 1 {
			continue
		}
		if k.hops2 == infinity {
			if !dr {
				bdr = true
			}
			if !k.dependent && p.AdjConnectivity == AdjBiConnected && k.in.Level >= router6.LevelBMDR {
				k.dependent = true
			}
		}
	}
	if bdr && p.AdjConnectivity == AdjBiConnected && maxOn.in.Level > router6.LevelOther {
		maxOn.dependent = true
	}
	if bdr {
		level = router6.LevelBMDR
	}
	if !dr && !bdr {
		level = router6.LevelOther
	}

	// ###### PHASE 4: parent selection ######
	result := Result{Level: level, Neighbors: collectResults(nodes)}

	var parent, bparent *node
	var hasParent, hasBParent bool
	if dr {
		hasParent = false // parent of MDR is self
		hasBParent = true
		bparent = maxOn
	} else {
		maxID, maxLevel, maxPriority = 0, router6.LevelOther, 0
		var best *node
		for _, n := range nodes {
			if n.in.State < StateExStartOrAbove {
				continue
			}
			if n.in.Level < router6.LevelMDR {
				continue
			}
			if sidcdsLexicographic(n.in.Priority, maxPriority, n.in.Level, maxLevel, n.in.RouterID, maxID) {
				maxID, maxLevel, maxPriority, best = n.in.RouterID, n.in.Level, n.in.Priority, n
			}
		}
		if best != nil {
			parent, hasParent = best, true
		} else {
			parent, hasParent = maxOn, true
		}

		if !bdr && p.AdjConnectivity == AdjBiConnected {
			maxID, maxLevel, maxPriority = 0, router6.LevelOther, 0
			var best2 *node
			for _, n := range nodes {
				if n.in.State < StateExStartOrAbove {
					continue
				}
				if n == parent {
					continue
				}
				if n.in.Level < router6.LevelBMDR {
					continue
				}
				if sidcdsLexicographic(n.in.Priority, maxPriority, n.in.Level, maxLevel, n.in.RouterID, maxID) {
					maxID, maxLevel, maxPriority, best2 = n.in.RouterID, n.in.Level, n.in.Priority, n
				}
			}
			switch {
			case best2 != nil:
				bparent, hasBParent = best2, true
			case parent != maxOn:
				bparent, hasBParent = maxOn, true
			default:
				bparent, hasBParent = maxOn2, maxOn2 != nil
			}
		}
	}

	if hasParent && parent != nil {
		result.Parent = parent.in.RouterID
		result.HasParent = true
	}
	if hasBParent && bparent != nil {
		result.BackupParent = bparent.in.RouterID
		result.HasBackupParent = true
	}

	// ###### PHASE 5: non-flooding MDR test ######
	if dr {
		for _, n := range nodes {
			n.hops = infinity
		}
		maxOn.hops = 0
		queue = []*node{maxOn}
		for len(queue) > 0 {
			k := queue[0]
			queue = queue[1:]
			for _, u := range nodes {
				if cost(u, nil) != 1 {
					continue
				}
				if costMatrix[k.idx][u.idx] != 1 {
					continue
				}
				if k.hops+1 < u.hops {
					u.hops = k.hops + 1
					if u.in.Level == router6.LevelMDR && u.in.RouterID < p.SelfRouterID {
						queue = append(queue, u)
					}
				}
			}
		}
		nonFlooding := true
		for _, k := range nodes {
			if cost(k, nil) != 1 {
				continue
			}
			if k.hops > p.MDRConstraint {
				nonFlooding = false
				break
			}
		}
		result.NonFloodingMDR = nonFlooding
	}

	result.Neighbors = collectResults(nodes)
	return result
}

// onTree reports whether n was reached by the Phase 2 BFS at all (i.e.
// has hops < infinity), which is the tree original_source walks in Phase
// 3 (every node with a treenode).
func onTree(n, root *node) bool {
	return n == root || n.hops < infinity
}

// isDescendantOf reports whether root is n itself or appears on n's
// parent chain.
func isDescendantOf(n, root *node) bool {
	if n == root {
		return true
	}
	for p := n.parent; p != nil; p = p.parent {
		if p == root {
			return true
		}
	}
	return false
}

// dfsSubtree returns every tree node (from the full set built during
// Phase 2) whose ancestor chain passes through root, root included. It
// replaces original_source's explicit child/sibling-linked dfs_next walk
// with a direct membership test over parent pointers -- the node set is
// one interface's neighbor count, small enough that the O(n) scan per
// call is not a concern.
func dfsSubtree(root *node, all []*node) []*node {
	var out []*node
	for _, n := range all {
		if !onTree(n, root) {
			continue
		}
		if isDescendantOf(n, root) {
			out = append(out, n)
		}
	}
	return out
}

func collectResults(nodes []*node) []NeighborResult {
	out := make([]NeighborResult, len(nodes))
	for i, n := range nodes {
		out[i] = NeighborResult{RouterID: n.in.RouterID, Hops: n.hops, Hops2: n.hops2, Dependent: n.dependent}
	}
	return out
}

// buildCostMatrix implements ospf6_mdr_create_cost_matrix: cost[j][k]=1
// iff j and k are both twoway and at least one of them reports the other
// in its 2-hop neighbor list, symmetrized according to each side's
// Report2Hop flag.
func buildCostMatrix(nodes []*node) [][]int {
	n := len(nodes)
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	reports := func(j *node, rid router6.ID) bool {
		for _, id := range j.in.RNL {
			if id == rid {
				return true
			}
		}
		return false
	}
	for _, j := range nodes {
		for _, k := range nodes {
			if j == k {
				continue
			}
			if j.in.State < StateTwoWay || k.in.State < StateTwoWay {
				continue
			}
			if !j.in.Report2Hop && !k.in.Report2Hop {
				continue
			}
			if reports(j, k.in.RouterID) {
				m[j.idx][k.idx] = 1
			}
		}
	}
	for _, j := range nodes {
		for _, k := range nodes {
			if j == k {
				continue
			}
			if j.in.State < StateTwoWay || k.in.State < StateTwoWay {
				continue
			}
			switch {
			case j.in.Report2Hop && k.in.Report2Hop:
				v := m[j.idx][k.idx] * m[k.idx][j.idx]
				m[j.idx][k.idx] = v
				m[k.idx][j.idx] = v
			case j.in.Report2Hop && !k.in.Report2Hop:
				m[k.idx][j.idx] = m[j.idx][k.idx]
			case !j.in.Report2Hop && k.in.Report2Hop:
				m[j.idx][k.idx] = m[k.idx][j.idx]
			}
		}
	}
	return m
}
