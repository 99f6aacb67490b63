package mdr

import (
	"testing"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

func TestComputeAdvertisedMinOnlyAdvertisesFull(t *testing.T) {
	neighbors := []NeighborInput{
		{RouterID: 2, State: StateExStartOrAbove, FullState: true},
		{RouterID: 3, State: StateExStartOrAbove, FullState: false, Routable: true},
	}
	out := ComputeAdvertised(baseParams(1), router6.LevelOther, FullnessMin, neighbors)
	want := map[router6.ID]bool{2: true, 3: false}
	for _, r := range out {
		if r.Adv != want[r.RouterID] {
			t.Fatalf("router %v: got adv=%v, want %v", r.RouterID, r.Adv, want[r.RouterID])
		}
	}
}

func TestComputeAdvertisedFullAdvertisesRoutableAndFull(t *testing.T) {
	neighbors := []NeighborInput{
		{RouterID: 2, State: StateExStartOrAbove, FullState: true},
		{RouterID: 3, State: StateTwoWay, Routable: true},
		{RouterID: 4, State: StateTwoWay, Routable: false},
	}
	out := ComputeAdvertised(baseParams(1), router6.LevelOther, FullnessFull, neighbors)
	want := map[router6.ID]bool{2: true, 3: true, 4: false}
	for _, r := range out {
		if r.Adv != want[r.RouterID] {
			t.Fatalf("router %v: got adv=%v, want %v", r.RouterID, r.Adv, want[r.RouterID])
		}
	}
}

func TestComputeAdvertisedMDRFullSwitchesOnLevel(t *testing.T) {
	neighbors := []NeighborInput{
		{RouterID: 2, State: StateTwoWay, Routable: true},
	}
	mdrOut := ComputeAdvertised(baseParams(1), router6.LevelMDR, FullnessMDRFull, neighbors)
	otherOut := ComputeAdvertised(baseParams(1), router6.LevelOther, FullnessMDRFull, neighbors)
	if !mdrOut[0].Adv {
		t.Fatalf("MDR level with MdrFull policy should advertise routable neighbors like Full")
	}
	if otherOut[0].Adv {
		t.Fatalf("Other level with MdrFull policy should fall back to Min, which does not advertise a non-Full neighbor")
	}
}

func TestComputeAdvertisedMinCostAdvertisesUnrelayedNeighbor(t *testing.T) {
	// j (2) and k (3) are not neighbors of each other and have no common
	// relay u, so self must advertise j to let k reach it (and vice
	// versa): both become selected-advertised relays.
	neighbors := []NeighborInput{
		{RouterID: 2, State: StateTwoWay, Routable: true, Report2Hop: true},
		{RouterID: 3, State: StateTwoWay, Routable: true, Report2Hop: true},
	}
	out := ComputeAdvertised(baseParams(1), router6.LevelOther, FullnessMinCost, neighbors)
	for _, r := range out {
		if !r.Adv {
			t.Fatalf("router %v: expected advertised as mutual relay, got false", r.RouterID)
		}
	}
}

func TestComputeAdvertisedMinCostSkipsAlreadyConnectedPair(t *testing.T) {
	// j and k already directly connect (cost matrix entry 1), so neither
	// needs the other advertised as a relay and routability alone does not
	// trigger inclusion without SANL/backbone membership.
	neighbors := []NeighborInput{
		{RouterID: 2, State: StateTwoWay, Routable: true, Report2Hop: true, RNL: []router6.ID{3}},
		{RouterID: 3, State: StateTwoWay, Routable: true, Report2Hop: true, RNL: []router6.ID{2}},
	}
	out := ComputeAdvertised(baseParams(1), router6.LevelOther, FullnessMinCost, neighbors)
	for _, r := range out {
		if r.Adv {
			t.Fatalf("router %v: expected not advertised, both already mutually adjacent", r.RouterID)
		}
	}
}
