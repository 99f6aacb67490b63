package area

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/ospf6mdr/ospf6d/internal/config"
	"github.com/ospf6mdr/ospf6d/internal/kif"
	"github.com/ospf6mdr/ospf6d/internal/linkmetrics"
	"github.com/ospf6mdr/ospf6d/internal/lsa"
	"github.com/ospf6mdr/ospf6d/internal/metrics"
	"github.com/ospf6mdr/ospf6d/internal/router6"
	"github.com/ospf6mdr/ospf6d/internal/schedule"
	"github.com/ospf6mdr/ospf6d/internal/spf"
	"github.com/ospf6mdr/ospf6d/internal/watchdog"
	"github.com/ospf6mdr/ospf6d/internal/zebra"
)

// Daemon is the process-level container cmd/ospf6d's entry point
// constructs: every configured Area, the scheduler all of them share, and
// the Zebra/metrics/watchdog collaborators spec.md §1 names as external
// but still must be wired into one running process, the way the
// teacher's cmd/peerup serveRuntime ties p2pnet.Network, auth, and
// metrics together.
type Daemon struct {
	Config *config.Config
	Areas  map[router6.ID]*Area

	Scheduler *schedule.Loop
	Metrics   *metrics.Metrics
	Zebra     *zebra.Client
	Logger    *slog.Logger

	routerID     router6.ID
	areaByIfIndex map[int]*Area
}

// areaFor finds the Area that owns ifIndex, so an asynchronously
// delivered zebra sample (which only carries an ifindex) can be routed
// to the right per-area neighbor table.
func (d *Daemon) areaFor(ifIndex int) (*Area, bool) {
	a, ok := d.areaByIfIndex[ifIndex]
	return a, ok
}

// NewDaemon builds a Daemon from loaded configuration, discovering kernel
// interfaces and constructing one Area (with an in-memory LSDB stand-in,
// since RFC 5340 LSDB origination/flooding is the external collaborator
// spec.md §1 names) per configured area, each populated with the
// interfaces its configuration names.
func NewDaemon(cfg *config.Config, version string, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}

	routerID, err := router6.ParseID(cfg.RouterID)
	if err != nil {
		return nil, fmt.Errorf("daemon: router_id: %w", err)
	}

	kernelIfaces, err := kif.Discover()
	if err != nil {
		return nil, fmt.Errorf("daemon: discover kernel interfaces: %w", err)
	}
	byName := make(map[string]kif.Record, len(kernelIfaces))
	for _, rec := range kernelIfaces {
		byName[rec.Name] = rec
	}

	d := &Daemon{
		Config:        cfg,
		Areas:         make(map[router6.ID]*Area),
		Scheduler:     schedule.New(64),
		Metrics:       metrics.New(version, runtime.Version()),
		Logger:        logger,
		routerID:      routerID,
		areaByIfIndex: make(map[int]*Area),
	}

	for _, areaCfg := range cfg.Areas {
		areaID, err := router6.ParseID(areaCfg.AreaID)
		if err != nil {
			return nil, fmt.Errorf("daemon: area_id %q: %w", areaCfg.AreaID, err)
		}
		area := NewArea(areaID, areaCfg, lsa.NewMemDB(), logger.With("area", areaID.String()))
		for _, ifCfg := range areaCfg.Interfaces {
			rec, ok := byName[ifCfg.Name]
			if !ok {
				logger.Warn("daemon: configured interface not present on host", "interface", ifCfg.Name)
				continue
			}
			area.AddInterface(rec, ifCfg, routerID, nil, logger)
			d.areaByIfIndex[rec.Index] = area
		}
		d.Areas[areaID] = area
	}

	return d, nil
}

// RouterID returns the daemon's own router-id.
func (d *Daemon) RouterID() router6.ID { return d.routerID }

// Run drives the daemon until ctx is cancelled: the scheduler loop, the
// Zebra client's receive loop, the optional metrics HTTP server, and the
// watchdog heartbeat all run as sibling goroutines; ScheduleSPF is armed
// once up front for every area to compute an initial tree.
func (d *Daemon) Run(ctx context.Context) error {
	go d.Scheduler.Run(ctx)

	if d.Config.Zebra.SocketPath != "" {
		var opts []zebra.Option
		if min, err := time.ParseDuration(d.Config.Zebra.ReconnectMin); err == nil {
			if max, err := time.ParseDuration(d.Config.Zebra.ReconnectMax); err == nil {
				opts = append(opts, zebra.WithReconnectBackoff(min, max))
			}
		}
		client, err := zebra.Dial("unix", d.Config.Zebra.SocketPath, d.Logger, opts...)
		if err != nil {
			d.Logger.Warn("daemon: zebra unavailable at startup, continuing without route installation", "error", err)
		} else {
			d.Zebra = client
			client.OnLinkMetrics(d.onLinkMetrics)
			client.OnLinkStatus(d.onLinkStatus)
			go client.Run()
			go func() {
				<-ctx.Done()
				client.Close()
			}()
		}
	}

	if d.Config.Telemetry.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", d.Metrics.Handler())
		server := &http.Server{Addr: d.Config.Telemetry.Metrics.ListenAddress, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				d.Logger.Error("daemon: metrics server failed", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	go watchdog.Run(ctx, watchdog.Config{}, d.healthChecks())

	for _, area := range d.Areas {
		area.ScheduleSPF(d.Scheduler, d.onSPFResult)
	}

	<-ctx.Done()
	return nil
}

// onLinkMetrics routes one decoded zebra LinkMetrics frame to the area
// that owns its interface (spec.md §4.F steps 1-3).
func (d *Daemon) onLinkMetrics(m zebra.LinkMetrics) {
	a, ok := d.areaFor(int(m.IfIndex))
	if !ok {
		d.Logger.Warn("daemon: link metrics for unowned interface", "ifindex", m.IfIndex)
		return
	}
	a.HandleLinkMetricsSample(int(m.IfIndex), m.LinkLocalAddr.String(), linkmetrics.Metrics{
		RLQ:             m.Metrics.RLQ,
		Resource:        m.Metrics.Resource,
		Latency:         m.Metrics.Latency,
		CurrentDatarate: m.Metrics.CurrentDatarate,
		MaxDatarate:     m.Metrics.MaxDatarate,
	})
}

// onLinkStatus routes one decoded zebra LinkStatus frame to the area
// that owns its interface (spec.md §4.F point 4).
func (d *Daemon) onLinkStatus(m zebra.LinkStatusMsg) {
	a, ok := d.areaFor(int(m.IfIndex))
	if !ok {
		d.Logger.Warn("daemon: link status for unowned interface", "ifindex", m.IfIndex)
		return
	}
	a.HandleLinkStatusEvent(linkmetrics.LinkStatusEvent{
		IfIndex: int(m.IfIndex),
		Up:      m.Status == zebra.LinkStatusUp,
	}, m.LinkLocalAddr.String())
}

func (d *Daemon) onSPFResult(a *Area, result spf.Result) {
	d.Logger.Info("daemon: spf computed", "area", a.AreaID.String(),
		"routers", len(result.Routers), "networks", len(result.Networks))
	if d.Zebra == nil {
		return
	}
	// Prefix-level route installation needs the intra-prefix LSA decode,
	// which is the "intra_route_calculation... external collaborator" of
	// spec.md §4.E; this daemon stops at making Result available to that
	// collaborator rather than fabricating prefixes of its own.
}

// ZebraConnected implements watchdog.ZebraConn: healthy when Zebra route
// installation was not configured at all, or when it was configured and
// the client connected.
func (d *Daemon) ZebraConnected() bool {
	if d.Config.Zebra.SocketPath == "" {
		return true
	}
	return d.Zebra != nil
}

// AreaMissingSPFTree implements watchdog.AreaSPFStatus: reports the
// first configured area, if any, that has not yet completed an SPF run.
func (d *Daemon) AreaMissingSPFTree() (string, bool) {
	for id, a := range d.Areas {
		a.mu.Lock()
		ran := !a.lastSPFRun.IsZero()
		a.mu.Unlock()
		if !ran {
			return id.String(), true
		}
	}
	return "", false
}

func (d *Daemon) healthChecks() []watchdog.HealthCheck {
	return watchdog.OSPF6Checks(d, d)
}
