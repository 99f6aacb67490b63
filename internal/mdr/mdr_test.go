package mdr

import (
	"testing"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

func baseParams(self router6.ID) Params {
	return Params{
		SelfRouterID:    self,
		SelfPriority:    1,
		SelfLevel:       router6.LevelOther,
		AdjConnectivity: AdjConnected,
		MDRConstraint:   3,
	}
}

func TestCalculateNoNeighborsIsOther(t *testing.T) {
	result := Calculate(baseParams(1), nil)
	if result.Level != router6.LevelOther {
		t.Fatalf("expected Other with no neighbors, got %v", result.Level)
	}
}

func TestCalculateLowestPriorityRouterDefersToNeighbor(t *testing.T) {
	// self has the lowest rank; the higher-ranked, fully reachable
	// neighbor with no unreachable others should end up MDR, self Other.
	neighbors := []NeighborInput{
		{RouterID: 100, Priority: 1, State: StateTwoWay, Report2Hop: true},
	}
	result := Calculate(baseParams(1), neighbors)
	if result.Level != router6.LevelOther {
		t.Fatalf("expected self to remain Other with a single stronger neighbor, got %v", result.Level)
	}
}

func TestCalculateSelfOutranksAllBecomesMDR(t *testing.T) {
	neighbors := []NeighborInput{
		{RouterID: 2, Priority: 1, State: StateTwoWay, Report2Hop: true},
		{RouterID: 3, Priority: 1, State: StateTwoWay, Report2Hop: true},
	}
	p := baseParams(100)
	p.SelfPriority = 10
	result := Calculate(p, neighbors)
	if result.Level != router6.LevelMDR {
		t.Fatalf("expected self to become MDR when it lexicographically outranks every neighbor, got %v", result.Level)
	}
}

func TestCalculateBelowTwoWayNeighborsIgnored(t *testing.T) {
	neighbors := []NeighborInput{
		{RouterID: 2, Priority: 1, State: StateBelowTwoWay},
	}
	result := Calculate(baseParams(1), neighbors)
	if result.Level != router6.LevelOther {
		t.Fatalf("expected Other when the only neighbor is below TwoWay, got %v", result.Level)
	}
}

func TestSidcdsLexicographicOrdering(t *testing.T) {
	if !sidcdsLexicographic(2, 1, router6.LevelOther, router6.LevelOther, 1, 1) {
		t.Fatal("higher priority should win regardless of level/id")
	}
	if sidcdsLexicographic(1, 1, router6.LevelOther, router6.LevelMDR, 5, 1) {
		t.Fatal("lower level at equal priority should lose")
	}
	if !sidcdsLexicographic(1, 1, router6.LevelMDR, router6.LevelMDR, 9, 1) {
		t.Fatal("higher router id should win the final tiebreak")
	}
}
