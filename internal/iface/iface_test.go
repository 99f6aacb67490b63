package iface

import "testing"

type fakeGroups struct {
	joinedSPF, leftSPF, joinedDR, leftDR int
}

func (f *fakeGroups) JoinAllSPFRouters() error  { f.joinedSPF++; return nil }
func (f *fakeGroups) LeaveAllSPFRouters() error { f.leftSPF++; return nil }
func (f *fakeGroups) JoinAllDRouters() error    { f.joinedDR++; return nil }
func (f *fakeGroups) LeaveAllDRouters() error   { f.leftDR++; return nil }

func TestUpPassiveForcesLoopback(t *testing.T) {
	i := New("eth0", TypeBroadcast, 1, 1, nil, nil)
	i.Passive = true
	if state := i.Up(); state != StateLoopback {
		t.Fatalf("expected Loopback, got %s", state)
	}
}

func TestUpMDRSkipsElection(t *testing.T) {
	i := New("eth0", TypeMDR, 1, 1, nil, nil)
	if state := i.Up(); state != StatePointToPoint {
		t.Fatalf("expected PointToPoint for MDR type, got %s", state)
	}
}

func TestUpBroadcastEntersWaiting(t *testing.T) {
	i := New("eth0", TypeBroadcast, 1, 1, nil, nil)
	if state := i.Up(); state != StateWaiting {
		t.Fatalf("expected Waiting, got %s", state)
	}
}

func TestWaitTimerElectsSelfAsDR(t *testing.T) {
	i := New("eth0", TypeBroadcast, 10, 200, nil, nil)
	i.Up()
	candidates := []Candidate{
		{RouterID: 10, Priority: 200, IsSelf: true},
		{RouterID: 2, Priority: 1},
	}
	if state := i.WaitTimer(candidates); state != StateDR {
		t.Fatalf("expected self to become DR, got %s", state)
	}
}

func TestWaitTimerPriorityZeroNeverWins(t *testing.T) {
	i := New("eth0", TypeBroadcast, 10, 0, nil, nil)
	i.Up()
	candidates := []Candidate{
		{RouterID: 10, Priority: 0, IsSelf: true},
		{RouterID: 2, Priority: 5},
	}
	if state := i.WaitTimer(candidates); state == StateDR {
		t.Fatal("priority-0 router must never become DR")
	}
}

func TestGroupMembershipTiedToStateCrossing(t *testing.T) {
	g := &fakeGroups{}
	i := New("eth0", TypeMDR, 1, 1, g, nil)
	i.Up() // Down -> PointToPoint, should join AllSPFRouters
	if g.joinedSPF != 1 {
		t.Fatalf("expected 1 AllSPFRouters join, got %d", g.joinedSPF)
	}
	i.Down()
	if g.leftSPF != 1 {
		t.Fatalf("expected 1 AllSPFRouters leave, got %d", g.leftSPF)
	}
}

func TestGroupMembershipIdempotentOnLoopback(t *testing.T) {
	g := &fakeGroups{}
	i := New("eth0", TypeBroadcast, 1, 1, g, nil)
	i.Passive = true
	i.Up()
	i.Down()
	i.Up()
	if g.joinedSPF != 0 {
		t.Fatalf("expected passive interface to never join AllSPFRouters, got %d joins", g.joinedSPF)
	}
}

func TestNeighborChangeIgnoredBeforeElection(t *testing.T) {
	i := New("eth0", TypeBroadcast, 10, 1, nil, nil)
	i.Up() // Waiting
	candidates := []Candidate{{RouterID: 10, Priority: 1, IsSelf: true}}
	if state := i.NeighborChange(candidates); state != StateWaiting {
		t.Fatalf("expected NeighborChange to be a no-op during Waiting, got %s", state)
	}
}
