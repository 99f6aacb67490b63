// Package neighbor implements the per-interface neighbor table and state
// machine of spec.md §4.A: the RFC 2328 state DFA extended with the MDR
// bookkeeping fields of spec.md §3 (routable, reverse-2way, dependent,
// sel_adv, ...). The map-keyed-by-router-id plus mutex-guarded lifecycle
// shape follows pkg/p2pnet/peermanager.go's ManagedPeer/PeerManager split:
// a small value struct per peer, owned by a table that exposes
// create/delete/state_change as methods instead of free functions
// operating on a linked list.
package neighbor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ospf6mdr/ospf6d/internal/hooks"
	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// State is the RFC 2328 §10.1 neighbor state, unmodified by the MDR
// extension (the extension only changes which transitions above TwoWay
// are permitted, not the state set itself).
type State int

const (
	StateDown State = iota
	StateAttempt
	StateInit
	StateTwoWay
	StateExStart
	StateExchange
	StateLoading
	StateFull
)

func (s State) String() string {
	switch s {
	case StateDown:
		return "Down"
	case StateAttempt:
		return "Attempt"
	case StateInit:
		return "Init"
	case StateTwoWay:
		return "TwoWay"
	case StateExStart:
		return "ExStart"
	case StateExchange:
		return "Exchange"
	case StateLoading:
		return "Loading"
	case StateFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// ListType enumerates which of the five Hello neighbor lists a neighbor is
// currently classified into for differential-Hello purposes (spec.md
// §4.C "send").
type ListType int

const (
	ListNone ListType = iota
	ListLost
	ListInit
	ListDependent
	ListSelAdv
	ListOtherBidir
)

// MDRData is the MDR sub-record carried per neighbor (spec.md §3
// "Neighbor... MDR sub-record").
type MDRData struct {
	Hops              int
	Hops2             int
	Dependent         bool
	SelAdv            bool
	Routable          bool
	Reverse2Way       bool
	Report2Hop        bool
	Abit              bool
	DependentSelector bool
	Level             router6.MDRLevel
	ConsecHellos      int
	HSN               uint16
	ListType          ListType
	ChangedHSN        uint16

	// RNL/DNL/SANL are the neighbor's own most-recently-reported lists,
	// used to build the interface-level cost matrix (spec.md §4.B Phase 1).
	RNL []router6.ID
	DNL []router6.ID
	SANL []router6.ID
}

// Neighbor is one entry in an interface's neighbor table.
type Neighbor struct {
	RouterID      router6.ID
	InterfaceName string

	mu               sync.Mutex
	state            State
	priority         uint8
	dr, bdr          router6.ID
	linkLocal        string // peer's link-local IPv6 address presentation form
	lastHelloRecv    time.Time
	inactivityHandle any // *schedule.Handle, stored as any to avoid an import cycle; see Table

	retransList map[uint32]struct{} // keyed by LS-type<<24|... in the real LSDB; placeholder identity set
	summaryList map[uint32]struct{}
	requestList map[uint32]struct{}

	MDR MDRData
}

// State returns the neighbor's current RFC 2328/MDR state.
func (n *Neighbor) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Priority, DR, BDR return the neighbor's last-reported Hello fields.
func (n *Neighbor) Priority() uint8 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.priority
}

func (n *Neighbor) SetHelloFields(priority uint8, dr, bdr router6.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.priority = priority
	n.dr = dr
	n.bdr = bdr
	n.lastHelloRecv = time.Now()
}

func (n *Neighbor) DRBDR() (dr, bdr router6.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dr, n.bdr
}

func (n *Neighbor) LastHelloRecv() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastHelloRecv
}

// LinkLocal returns the peer's link-local IPv6 address in presentation
// form, as last set by SetLinkLocal, or "" if never learned.
func (n *Neighbor) LinkLocal() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.linkLocal
}

// SetLinkLocal records the peer's link-local IPv6 address, learned from
// the source address of its Hello packets.
func (n *Neighbor) SetLinkLocal(addr string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.linkLocal = addr
}

// HasRetransList reports whether the three adjacency LSDBs are allocated,
// the invariant spec.md §8 #1 checks ("n.state > TwoWay ⇒ n.retrans_list
// is allocated").
func (n *Neighbor) HasRetransList() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.retransList != nil
}

// Hooks fired on state transitions and deletion, one registry per
// interface owning the table (spec.md §4.A, §9 "InterfaceOps").
type StateChangeFunc func(n *Neighbor, prev, next State)
type DeleteFunc func(n *Neighbor)

// Table is the per-interface neighbor list, sorted by router-id as
// spec.md §3 requires.
type Table struct {
	InterfaceName string
	Logger        *slog.Logger

	// RelaxInactivity mirrors the interface-level
	// relax_neighbor_inactivity flag (spec.md §4.A(c)).
	RelaxInactivity bool
	DeadInterval    time.Duration

	mu        sync.Mutex
	neighbors map[router6.ID]*Neighbor

	OnStateChange *hooks.List[StateChangeFunc]
	OnDelete      *hooks.List[DeleteFunc]
}

// NewTable creates an empty neighbor table for one interface.
func NewTable(interfaceName string, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{
		InterfaceName: interfaceName,
		Logger:        logger,
		neighbors:     make(map[router6.ID]*Neighbor),
		OnStateChange: hooks.New[StateChangeFunc](),
		OnDelete:      hooks.New[DeleteFunc](),
	}
}

// Create allocates a new neighbor in state Down. Per spec.md §4.A this is
// idempotent with respect to the table: creating an already-present
// router-id returns the existing entry rather than silently duplicating
// it, since duplicate router-id is a protocol-violation condition handled
// by the caller (the Hello receive path), not by Create.
func (t *Table) Create(routerID router6.ID) *Neighbor {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.neighbors[routerID]; ok {
		return existing
	}
	n := &Neighbor{
		RouterID:      routerID,
		InterfaceName: t.InterfaceName,
		state:         StateDown,
	}
	t.neighbors[routerID] = n
	return n
}

// Get returns the neighbor for routerID, or nil.
func (t *Table) Get(routerID router6.ID) *Neighbor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.neighbors[routerID]
}

// Sorted returns every neighbor, sorted by router-id (spec.md §3 Interface
// invariant: "neighbor list (sorted by router-id)").
func (t *Table) Sorted() []*Neighbor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Neighbor, 0, len(t.neighbors))
	for _, n := range t.neighbors {
		out = append(out, n)
	}
	sortByRouterID(out)
	return out
}

func sortByRouterID(ns []*Neighbor) {
	for i := 1; i < len(ns); i++ {
		for j := i; j > 0 && ns[j].RouterID < ns[j-1].RouterID; j-- {
			ns[j], ns[j-1] = ns[j-1], ns[j]
		}
	}
}

// Delete tears down a neighbor: fires delete hooks in reverse registration
// order, empties the three adjacency LSDBs, and removes it from the
// table. Per spec.md §4.A this is the normal removal path; the one
// exception is InactivityFired, which may finalize a deletion itself.
func (t *Table) Delete(n *Neighbor) {
	t.mu.Lock()
	delete(t.neighbors, n.RouterID)
	t.mu.Unlock()

	// "fires delete callbacks in registered interface-ops in reverse
	// registration order" -- hooks.List iterates forward, so reverse here.
	var fns []DeleteFunc
	t.OnDelete.Each(func(fn DeleteFunc) { fns = append(fns, fn) })
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i](n)
	}

	n.mu.Lock()
	n.retransList = nil
	n.summaryList = nil
	n.requestList = nil
	n.mu.Unlock()
}

// allowedTransitions encodes the RFC 2328 §10.1 DFA augmented with the
// MDR addition that TwoWay may be held across adjacency-reduction
// transitions (spec.md §4.A): a neighbor that drops below ExStart due to
// AdjOK re-evaluation returns to TwoWay, not Init, as long as it is still
// bidirectional.
func allowedTransitions(prev, next State) bool {
	if prev == next {
		return true
	}
	switch next {
	case StateDown, StateAttempt:
		return true // always reachable (timeout/reset)
	case StateInit:
		return prev == StateDown || prev == StateAttempt || prev == StateInit
	case StateTwoWay:
		return prev == StateInit || prev == StateTwoWay ||
			prev == StateExStart || prev == StateExchange ||
			prev == StateLoading || prev == StateFull
	case StateExStart:
		return prev == StateTwoWay || prev == StateExStart ||
			prev == StateExchange || prev == StateLoading || prev == StateFull
	case StateExchange:
		return prev == StateExStart
	case StateLoading:
		return prev == StateExchange
	case StateFull:
		return prev == StateLoading || prev == StateExchange
	}
	return false
}

// StateChange validates and applies a transition, then invokes registered
// hooks in order with the prior and new state. Invalid transitions are
// rejected with ok=false, logged here as a warning, and leave the neighbor
// unchanged -- a protocol-violation per spec.md §7.
func (t *Table) StateChange(n *Neighbor, next State) (ok bool) {
	n.mu.Lock()
	prev := n.state
	if !allowedTransitions(prev, next) {
		n.mu.Unlock()
		t.Logger.Warn("neighbor: rejected state transition",
			"interface", t.InterfaceName, "neighbor", n.RouterID.String(),
			"from", prev.String(), "to", next.String())
		return false
	}

	// (b) on TwoWay->higher, the neighbor's retrans-list is initialized;
	// on any-><=TwoWay, all three lists are emptied.
	wasAdjacent := prev > StateTwoWay
	willBeAdjacent := next > StateTwoWay
	if !wasAdjacent && willBeAdjacent {
		n.retransList = make(map[uint32]struct{})
		n.summaryList = make(map[uint32]struct{})
		n.requestList = make(map[uint32]struct{})
	} else if wasAdjacent && !willBeAdjacent {
		n.retransList = nil
		n.summaryList = nil
		n.requestList = nil
	}
	n.state = next
	n.mu.Unlock()

	t.OnStateChange.Each(func(fn StateChangeFunc) { fn(n, prev, next) })

	t.Logger.Info("neighbor: state change",
		"interface", t.InterfaceName, "neighbor", n.RouterID.String(),
		"from", prev.String(), "to", next.String())
	return true
}

// InactivityFired drops n to Down on dead-interval expiry. If
// RelaxInactivity is set and the last Hello was received within
// DeadInterval of now, the caller should have already rearmed the timer
// instead of calling this -- see ShouldRelax.
func (t *Table) InactivityFired(n *Neighbor) {
	t.StateChange(n, StateDown)
	t.Delete(n)
}

// ShouldRelax implements spec.md §4.A(c): when RelaxInactivity is set, the
// inactivity timer should be restarted rather than fire immediately if the
// last Hello was received within DeadInterval of now.
func (t *Table) ShouldRelax(n *Neighbor, now time.Time) bool {
	if !t.RelaxInactivity {
		return false
	}
	return now.Sub(n.LastHelloRecv()) < t.DeadInterval
}
