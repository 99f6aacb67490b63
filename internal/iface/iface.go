// Package iface implements the per-interface lifecycle FSM of spec.md
// §4.D: RFC 2328 §9.3's Down/Waiting/DR-election state machine, extended
// so an MDR-typed interface skips DR election entirely (MDR elects at
// the interface-group level, via internal/mdr, not per-link). The
// event-driven, debounce-free run loop mirrors
// pkg/p2pnet/netmonitor.go's NetworkMonitor.Run shape (select over a
// small event set, react, call back out) adapted from "watch the kernel
// for address changes" to "watch neighbor events for DR/BDR changes".
package iface

import (
	"log/slog"
	"sync"
)

// Type is the OSPFv3 interface network type (spec.md §6 knob NetworkType).
type Type int

const (
	TypeBroadcast Type = iota
	TypeMDR
	TypePointToPoint
)

// State is the interface FSM state (RFC 2328 §9.1, minus NBMA/virtual
// states this deployment never uses).
type State int

const (
	StateDown State = iota
	StateLoopback
	StateWaiting
	StatePointToPoint
	StateDROther
	StateBackup
	StateDR
)

func (s State) String() string {
	switch s {
	case StateDown:
		return "Down"
	case StateLoopback:
		return "Loopback"
	case StateWaiting:
		return "Waiting"
	case StatePointToPoint:
		return "PointToPoint"
	case StateDROther:
		return "DROther"
	case StateBackup:
		return "Backup"
	case StateDR:
		return "DR"
	default:
		return "Unknown"
	}
}

// Event is one of the six FSM events named in spec.md §4.D.
type Event int

const (
	EventInterfaceUp Event = iota
	EventWaitTimer
	EventBackupSeen
	EventNeighborChange
	EventInterfaceDown
	EventAdjConnectivityChange
)

// Candidate is one eligible router considered during DR/BDR election:
// self or a neighbor in state >= TwoWay with nonzero priority.
type Candidate struct {
	RouterID uint32
	Priority uint8
	DR       uint32
	BDR      uint32
	IsSelf   bool
}

// GroupJoiner is the multicast-membership side effect surface: joining
// AllSPFRouters is tied to leaving Loopback, AllDRouters to becoming
// DR/BDR/DROther. Implementations must tolerate repeat join/leave calls
// (spec.md §4.D "these calls are idempotent").
type GroupJoiner interface {
	JoinAllSPFRouters() error
	LeaveAllSPFRouters() error
	JoinAllDRouters() error
	LeaveAllDRouters() error
}

// Interface is one OSPFv3 interface's FSM instance.
type Interface struct {
	Name     string
	Type     Type
	Passive  bool
	Priority uint8
	RouterID uint32

	Groups GroupJoiner
	Logger *slog.Logger

	mu    sync.Mutex
	state State
	dr    uint32
	bdr   uint32
}

// New creates an interface FSM in state Down.
func New(name string, typ Type, routerID uint32, priority uint8, groups GroupJoiner, logger *slog.Logger) *Interface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interface{
		Name: name, Type: typ, RouterID: routerID, Priority: priority,
		Groups: groups, Logger: logger, state: StateDown,
	}
}

func (i *Interface) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Interface) DRBDR() (dr, bdr uint32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dr, i.bdr
}

// transitionGroups applies the join/leave side effects for moving
// between old and next, tolerating a nil Groups collaborator in tests.
func (i *Interface) transitionGroups(old, next State) {
	if i.Groups == nil {
		return
	}
	wasLoopback := old == StateLoopback || old == StateDown
	willLoopback := next == StateLoopback || next == StateDown
	if wasLoopback && !willLoopback {
		if err := i.Groups.JoinAllSPFRouters(); err != nil {
			i.Logger.Warn("iface: join AllSPFRouters failed", "interface", i.Name, "error", err)
		}
	} else if !wasLoopback && willLoopback {
		if err := i.Groups.LeaveAllSPFRouters(); err != nil {
			i.Logger.Warn("iface: leave AllSPFRouters failed", "interface", i.Name, "error", err)
		}
	}

	wasDRGroup := old == StateDR || old == StateBackup || old == StateDROther
	willDRGroup := next == StateDR || next == StateBackup || next == StateDROther
	if willDRGroup && !wasDRGroup {
		if err := i.Groups.JoinAllDRouters(); err != nil {
			i.Logger.Warn("iface: join AllDRouters failed", "interface", i.Name, "error", err)
		}
	} else if wasDRGroup && !willDRGroup {
		if err := i.Groups.LeaveAllDRouters(); err != nil {
			i.Logger.Warn("iface: leave AllDRouters failed", "interface", i.Name, "error", err)
		}
	}
}

// Up handles EventInterfaceUp: PASSIVE forces Loopback regardless of
// Type; an MDR-typed interface skips straight to PointToPoint (no DR
// election); otherwise a broadcast interface enters Waiting.
func (i *Interface) Up() State {
	i.mu.Lock()
	old := i.state
	switch {
	case i.Passive:
		i.state = StateLoopback
	case i.Type == TypeMDR:
		i.state = StatePointToPoint
	case i.Type == TypePointToPoint:
		i.state = StatePointToPoint
	default:
		i.state = StateWaiting
	}
	next := i.state
	i.mu.Unlock()
	i.transitionGroups(old, next)
	i.Logger.Info("iface: up", "interface", i.Name, "state", next.String())
	return next
}

// Down handles EventInterfaceDown: always drops to Down.
func (i *Interface) Down() {
	i.mu.Lock()
	old := i.state
	i.state = StateDown
	i.dr, i.bdr = 0, 0
	i.mu.Unlock()
	i.transitionGroups(old, StateDown)
	i.Logger.Info("iface: down", "interface", i.Name)
}

// WaitTimer runs the RFC 2328 §9.4 DR-election algorithm: BDR elected
// first from candidates that did not vote for themselves as DR, then
// DR elected from all candidates, tie-broken by priority then router-id.
// If self's resulting role changed relative to its first pass, the
// second election re-runs once more per RFC 2328's stated fixpoint rule.
func (i *Interface) WaitTimer(candidates []Candidate) State {
	i.mu.Lock()
	if i.state != StateWaiting {
		state := i.state
		i.mu.Unlock()
		return state
	}

	dr, bdr := electDRBDR(candidates)
	for idx, c := range candidates {
		if !c.IsSelf {
			continue
		}
		if (c.DR == c.RouterID) != (dr == c.RouterID) || (c.BDR == c.RouterID) != (bdr == c.RouterID) {
			again := append([]Candidate(nil), candidates...)
			again[idx].DR, again[idx].BDR = dr, bdr
			dr, bdr = electDRBDR(again)
		}
		break
	}
	i.dr, i.bdr = dr, bdr

	var next State
	switch {
	case dr == i.RouterID:
		next = StateDR
	case bdr == i.RouterID:
		next = StateBackup
	default:
		next = StateDROther
	}
	old := i.state
	i.state = next
	i.mu.Unlock()
	i.transitionGroups(old, next)
	return next
}

// electDRBDR implements RFC 2328 §9.4: elect BDR among candidates that
// did not declare themselves DR, then elect DR among all candidates;
// priority 0 routers never win either role.
func electDRBDR(candidates []Candidate) (dr, bdr uint32) {
	better := func(a, b Candidate) bool {
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.RouterID > b.RouterID
	}

	var bdrCandidates []Candidate
	for _, c := range candidates {
		if c.Priority == 0 {
			continue
		}
		if c.DR != c.RouterID { // didn't declare itself DR
			bdrCandidates = append(bdrCandidates, c)
		}
	}
	var bestBDR *Candidate
	// prefer routers that already declared themselves BDR
	for idx := range bdrCandidates {
		c := &bdrCandidates[idx]
		if c.BDR != c.RouterID {
			continue
		}
		if bestBDR == nil || better(*c, *bestBDR) {
			bestBDR = c
		}
	}
	if bestBDR == nil {
		for idx := range bdrCandidates {
			c := &bdrCandidates[idx]
			if bestBDR == nil || better(*c, *bestBDR) {
				bestBDR = c
			}
		}
	}
	if bestBDR != nil {
		bdr = bestBDR.RouterID
	}

	var drCandidates []Candidate
	for _, c := range candidates {
		if c.Priority != 0 {
			drCandidates = append(drCandidates, c)
		}
	}
	var bestDR *Candidate
	for idx := range drCandidates {
		c := &drCandidates[idx]
		if c.DR != c.RouterID {
			continue
		}
		if bestDR == nil || better(*c, *bestDR) {
			bestDR = c
		}
	}
	if bestDR == nil {
		for idx := range drCandidates {
			c := &drCandidates[idx]
			if bestDR == nil || better(*c, *bestDR) {
				bestDR = c
			}
		}
	}
	if bestDR != nil {
		dr = bestDR.RouterID
	}
	return dr, bdr
}

// BackupSeen transitions out of Waiting early once a BDR is known
// (RFC 2328 §9.3 event 4), re-running the same election as WaitTimer.
func (i *Interface) BackupSeen(candidates []Candidate) State {
	return i.WaitTimer(candidates)
}

// NeighborChange re-runs DR/BDR election outside Waiting, per RFC 2328
// §9.3 event 5, applicable only once the interface has already completed
// its initial election (DR/Backup/DROther).
func (i *Interface) NeighborChange(candidates []Candidate) State {
	i.mu.Lock()
	if i.state != StateDR && i.state != StateBackup && i.state != StateDROther {
		defer i.mu.Unlock()
		return i.state
	}
	i.mu.Unlock()

	dr, bdr := electDRBDR(candidates)
	i.mu.Lock()
	i.dr, i.bdr = dr, bdr
	old := i.state
	var next State
	switch {
	case dr == i.RouterID:
		next = StateDR
	case bdr == i.RouterID:
		next = StateBackup
	default:
		next = StateDROther
	}
	i.state = next
	i.mu.Unlock()
	if next != old {
		i.transitionGroups(old, next)
	}
	return next
}
