// Package area wires the lettered components of spec.md §4 into the two
// owning containers spec.md §3 actually names -- Area and Interface -- the
// way the teacher's cmd/peerup ties p2pnet.Network, daemon.Server, and
// metrics together into one serveRuntime, except here the wiring lives in
// its own package so cmd/ospf6d stays a
// thin flag-dispatch shell. Per spec.md §9 "Back-reference-rich graph",
// ownership is expressed as dense containers keyed by stable ids (ifindex,
// router-id, area-id) rather than raw back-pointers: Area owns a
// map[int]*Interface, Interface owns a *neighbor.Table keyed by router-id.
package area

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ospf6mdr/ospf6d/internal/config"
	"github.com/ospf6mdr/ospf6d/internal/hello"
	"github.com/ospf6mdr/ospf6d/internal/hooks"
	"github.com/ospf6mdr/ospf6d/internal/iface"
	"github.com/ospf6mdr/ospf6d/internal/kif"
	"github.com/ospf6mdr/ospf6d/internal/linkmetrics"
	"github.com/ospf6mdr/ospf6d/internal/lsa"
	"github.com/ospf6mdr/ospf6d/internal/mdr"
	"github.com/ospf6mdr/ospf6d/internal/neighbor"
	"github.com/ospf6mdr/ospf6d/internal/privdata"
	"github.com/ospf6mdr/ospf6d/internal/router6"
	"github.com/ospf6mdr/ospf6d/internal/schedule"
	"github.com/ospf6mdr/ospf6d/internal/spf"
)

// CostUpdateFunc and UpdateMDRLevelFunc are two of the hook classes
// spec.md §9 names explicitly ("InterfaceOps", "MdrLevelUpdate"):
// extension points module code registers against an interface's
// lifecycle, fired in registration order (spec.md §4.H).
type CostUpdateFunc func(i *Interface)
type UpdateMDRLevelFunc func(i *Interface, result mdr.Result)

// ImmediateHelloFunc is invoked when FireImmediateHello clears the rate
// limit: it stands in for "cancel the pending Hello timer and replace it
// with a zero-delay event" (spec.md §4.F point 4), the side effect a
// Hello-transmission collaborator subscribes to.
type ImmediateHelloFunc func(i *Interface)

// Interface is one OSPFv3 interface: the kernel record, the FSM, the
// neighbor table, and the MDR/link-metrics configuration, all reachable
// from the owning Area by ifindex.
type Interface struct {
	Name    string
	IfIndex int
	Kernel  kif.Record

	Config config.InterfaceConfig

	FSM        *iface.Interface
	Neighbors  *neighbor.Table
	PrivData   *privdata.List

	MDRParams    mdr.Params
	Fullness     mdr.Fullness
	LinkMetrics  linkmetrics.Config
	TLVMode      hello.TLVMode

	OnCostUpdate     *hooks.List[CostUpdateFunc]
	OnUpdateMDRLevel *hooks.List[UpdateMDRLevelFunc]
	OnImmediateHello *hooks.List[ImmediateHelloFunc]

	mu             sync.Mutex
	cost           uint16
	advertised     map[router6.ID]bool // last-run adv flags, spec.md §4.B "flip triggers re-origination"
	lastLevel      router6.MDRLevel
	parent         router6.ID
	hasParent      bool
	bparent        router6.ID
	hasBParent     bool
	routable       map[router6.ID]bool
	perNeighborCost map[router6.ID]uint16

	// helloLimiter gates spec.md §5's "Immediate-Hello rate limit": no two
	// immediate Hellos within initialImmediateHelloDelay, implemented as a
	// one-token bucket that refills once per delay instead of a hand-rolled
	// timestamp comparison.
	helloLimiter *rate.Limiter
}

const initialImmediateHelloDelay = 2 * time.Second

// Cost returns the interface's currently configured OSPF cost.
func (i *Interface) Cost() uint16 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cost
}

// SetCost updates the interface cost and fires OnCostUpdate hooks
// (spec.md §4.D "Cost changes ... invoke cost_update callbacks").
func (i *Interface) SetCost(cost uint16) {
	i.mu.Lock()
	i.cost = cost
	i.mu.Unlock()
	i.OnCostUpdate.Each(func(fn CostUpdateFunc) { fn(i) })
}

// FireImmediateHello implements the rate-limited half of
// linkmetrics.HelloKicker: an unmatched link-UP event wants a Hello right
// away, but a flapping link must not be able to induce a Hello storm
// (spec.md §5). Callers outside a rate-limited window get no-op silence
// rather than an error, matching a dropped token-bucket request.
func (i *Interface) FireImmediateHello() {
	if !i.helloLimiter.Allow() {
		return
	}
	i.OnImmediateHello.Each(func(fn ImmediateHelloFunc) { fn(i) })
}

// ForceInactivity implements linkmetrics.InactivityForcer: a link-DOWN
// event on a known neighbor tears the adjacency down immediately instead
// of waiting out the dead interval (spec.md §4.F point 4).
func (i *Interface) ForceInactivity(neighborID router6.ID) {
	n := i.Neighbors.Get(neighborID)
	if n == nil {
		return
	}
	i.Neighbors.InactivityFired(n)
}

// Area is one OSPFv3 area: its interfaces (keyed by stable kernel ifindex,
// per spec.md §9's "dense vector... indexed by a stable handle"), the LSDB
// read-boundary, and the SPF scheduling state of spec.md §3/§4.E.
type Area struct {
	AreaID router6.ID
	DB     lsa.DB

	SPFDelay    time.Duration
	SPFHoldtime time.Duration

	PrivData *privdata.List
	Logger   *slog.Logger

	mu         sync.Mutex
	interfaces map[int]*Interface
	lastSPFRun time.Time
	pendingSPF *schedule.Handle
	result     spf.Result
}

// NewArea constructs an Area from its static configuration and LSDB
// collaborator. Interfaces are added afterward via AddInterface once
// kernel records are discovered (spec.md §1 "kernel interface discovery"
// is an external collaborator).
func NewArea(id router6.ID, cfg config.AreaConfig, db lsa.DB, logger *slog.Logger) *Area {
	if logger == nil {
		logger = slog.Default()
	}
	spfDelay := time.Duration(cfg.SPFDelayMsec) * time.Millisecond
	spfHold := time.Duration(cfg.SPFHoldMsec) * time.Millisecond
	return &Area{
		AreaID:      id,
		DB:          db,
		SPFDelay:    spfDelay,
		SPFHoldtime: spfHold,
		PrivData:    privdata.NewList(),
		Logger:      logger,
		interfaces:  make(map[int]*Interface),
	}
}

// Interfaces returns every interface owned by the area, in no particular
// order; callers needing a stable order should sort by IfIndex.
func (a *Area) Interfaces() []*Interface {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Interface, 0, len(a.interfaces))
	for _, i := range a.interfaces {
		out = append(out, i)
	}
	return out
}

// Result returns the most recently computed SPF result for this area.
func (a *Area) Result() spf.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Interface looks up one owned interface by kernel ifindex.
func (a *Area) Interface(ifIndex int) (*Interface, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.interfaces[ifIndex]
	return i, ok
}

func parseNetworkType(s string) iface.Type {
	switch s {
	case "point-to-point", "virtual-link":
		return iface.TypePointToPoint
	case "manet-designated-router":
		return iface.TypeMDR
	default: // broadcast, nbma, p2mp, loopback all map onto the broadcast
		// FSM shape; loopback additionally sets Passive (spec.md §4.D).
		return iface.TypeBroadcast
	}
}

func parseAdjConnectivity(s string) mdr.AdjConnectivity {
	switch s {
	case "fully":
		return mdr.AdjFullyConnected
	case "uniconnected":
		return mdr.AdjConnected
	default: // "biconnected" and unset
		return mdr.AdjBiConnected
	}
}

func parseFullness(s string) mdr.Fullness {
	switch s {
	case "minlsa":
		return mdr.FullnessMin
	case "mincost2lsa":
		return mdr.FullnessMinCost2Paths
	case "fulllsa":
		return mdr.FullnessFull
	case "mdrfulllsa":
		return mdr.FullnessMDRFull
	default: // "mincostlsa" and unset
		return mdr.FullnessMinCost
	}
}

func parseTLVMode(s string) hello.TLVMode {
	if s == "legacy" {
		return hello.TLVModeLegacy
	}
	return hello.TLVModeRFC
}

func parseFormula(name string) linkmetrics.Formula {
	switch name {
	case "nrl-cable":
		return linkmetrics.NRLCableFormula
	case "cisco":
		return linkmetrics.CiscoFormula
	default:
		return nil
	}
}

func parseFilter(name string) linkmetrics.Filter {
	if name == "adjust-values" {
		return linkmetrics.AdjustValues
	}
	return nil
}

// GroupJoiner wraps the kernel multicast-group membership operations
// Interface FSM transitions trigger; nil is accepted everywhere (tests,
// or a platform with no group-membership collaborator wired yet).
type GroupJoiner = iface.GroupJoiner

// AddInterface constructs an Interface from its kernel record and static
// configuration, registers it under the area by ifindex, and returns it.
func (a *Area) AddInterface(rec kif.Record, cfg config.InterfaceConfig, selfRouterID router6.ID, groups GroupJoiner, logger *slog.Logger) *Interface {
	if logger == nil {
		logger = a.Logger
	}
	mdrCfg := cfg.MDR

	weights := linkmetrics.Weights{
		Throughput: uint8(cfg.LinkMetricWeightThroughput),
		Resources:  uint8(cfg.LinkMetricWeightResources),
		Latency:    uint8(cfg.LinkMetricWeightLatency),
		L2Factor:   uint8(cfg.LinkMetricWeightL2Factor),
	}

	i := &Interface{
		Name:    cfg.Name,
		IfIndex: rec.Index,
		Kernel:  rec,
		Config:  cfg,
		FSM: iface.New(cfg.Name, parseNetworkType(cfg.NetworkType), uint32(selfRouterID),
			cfg.Priority, groups, logger),
		Neighbors: func() *neighbor.Table {
			t := neighbor.NewTable(cfg.Name, logger)
			t.RelaxInactivity = cfg.RelaxNeighborInactivity
			t.DeadInterval = time.Duration(cfg.DeadInterval) * time.Second
			return t
		}(),
		PrivData: privdata.NewList(),
		MDRParams: mdr.Params{
			SelfRouterID:    selfRouterID,
			SelfPriority:    cfg.Priority,
			SelfLevel:       router6.LevelOther,
			AdjConnectivity: parseAdjConnectivity(mdrCfg.AdjConnectivity),
			MDRConstraint:   mdrCfg.MDRConstraint,
		},
		Fullness: parseFullness(mdrCfg.LSAFullness),
		LinkMetrics: linkmetrics.Config{
			Formula: parseFormula(cfg.LinkMetricFormula),
			Filter:  parseFilter(cfg.LinkMetricUpdateFilter),
			Weights: weights,
		},
		TLVMode:         parseTLVMode(cfg.MDRTLVInterop),
		OnCostUpdate:    hooks.New[CostUpdateFunc](),
		OnUpdateMDRLevel: hooks.New[UpdateMDRLevelFunc](),
		OnImmediateHello: hooks.New[ImmediateHelloFunc](),
		cost:            cfg.Cost,
		advertised:      make(map[router6.ID]bool),
		routable:        make(map[router6.ID]bool),
		perNeighborCost: make(map[router6.ID]uint16),
		helloLimiter:    rate.NewLimiter(rate.Every(initialImmediateHelloDelay), 1),
	}
	if cfg.Passive || cfg.NetworkType == "loopback" {
		i.FSM.Passive = true
	}

	a.mu.Lock()
	a.interfaces[rec.Index] = i
	a.mu.Unlock()
	return i
}

// linkLocalOf returns the interface's own link-local IPv6 address, or nil.
func (i *Interface) linkLocalOf() net.IP { return i.Kernel.LinkLocalIPv6 }
