// Package metrics exposes Prometheus collectors for ospf6d, following the
// isolated-registry pattern of pkg/p2pnet/metrics.go: one private
// prometheus.Registry per process so these collectors never collide with
// another binary's default registry, Go runtime/process collectors
// registered alongside the domain metrics, and a "*_info" build gauge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all ospf6d Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	// Neighbor state machine (spec.md §4.A)
	NeighborStateTransitions *prometheus.CounterVec
	NeighborsByState         *prometheus.GaugeVec

	// MDR engine (spec.md §4.B)
	MDRLevel            *prometheus.GaugeVec
	MDRRunsTotal         *prometheus.CounterVec
	AdvertisedNeighbors  *prometheus.GaugeVec

	// Hello/DD codec (spec.md §4.C)
	HellosSentTotal      *prometheus.CounterVec
	HellosRejectedTotal  *prometheus.CounterVec

	// Area SPF (spec.md §4.E)
	SPFRunsTotal         *prometheus.CounterVec
	SPFDurationSeconds   *prometheus.HistogramVec
	SPFTriggeredRerun    prometheus.Counter

	// Link metrics (spec.md §4.F)
	LinkCost             *prometheus.GaugeVec
	LinkMetricUpdates    *prometheus.CounterVec

	// Zebra client (spec.md §4.G)
	ZebraReconnectsTotal prometheus.Counter
	ZebraFramesTotal     *prometheus.CounterVec

	// Build info
	BuildInfo *prometheus.GaugeVec
}

// New creates a Metrics instance with all collectors registered on an
// isolated registry. version and goVersion become labels on the
// ospf6d_info gauge.
func New(version, goVersion string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		NeighborStateTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf6d_neighbor_state_transitions_total",
				Help: "Total neighbor state transitions by interface and resulting state.",
			},
			[]string{"interface", "state"},
		),
		NeighborsByState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ospf6d_neighbors_by_state",
				Help: "Current neighbor count by interface and state.",
			},
			[]string{"interface", "state"},
		),
		MDRLevel: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ospf6d_mdr_level",
				Help: "Current MDR level per interface (0=Other, 1=BMDR, 2=MDR).",
			},
			[]string{"interface"},
		),
		MDRRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf6d_mdr_engine_runs_total",
				Help: "Total MDR engine runs by interface.",
			},
			[]string{"interface"},
		),
		AdvertisedNeighbors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ospf6d_advertised_neighbors",
				Help: "Number of neighbors currently advertised in the router-LSA, per interface.",
			},
			[]string{"interface"},
		),
		HellosSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf6d_hellos_sent_total",
				Help: "Total Hello packets sent, by interface and kind (full|diff).",
			},
			[]string{"interface", "kind"},
		),
		HellosRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf6d_hellos_rejected_total",
				Help: "Total Hello packets rejected on receipt, by reason.",
			},
			[]string{"interface", "reason"},
		),
		SPFRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf6d_spf_runs_total",
				Help: "Total SPF computations, by area.",
			},
			[]string{"area"},
		),
		SPFDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ospf6d_spf_duration_seconds",
				Help:    "Duration of SPF computations in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100us to ~1.6s
			},
			[]string{"area"},
		),
		SPFTriggeredRerun: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ospf6d_spf_routable_neighbor_rerun_total",
				Help: "Total second-pass SPF runs triggered by a routable-neighbor set change.",
			},
		),
		LinkCost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ospf6d_link_cost",
				Help: "Current per-neighbor link cost as computed by the configured cost formula.",
			},
			[]string{"interface", "neighbor"},
		),
		LinkMetricUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf6d_link_metric_updates_total",
				Help: "Total link-metrics reports processed, by interface and outcome.",
			},
			[]string{"interface", "outcome"},
		),
		ZebraReconnectsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ospf6d_zebra_reconnects_total",
				Help: "Total Zebra client reconnect attempts.",
			},
		),
		ZebraFramesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ospf6d_zebra_frames_total",
				Help: "Total Zebra protocol frames exchanged, by direction and command.",
			},
			[]string{"direction", "command"},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ospf6d_info",
				Help: "Build information for the running ospf6d instance.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.NeighborStateTransitions,
		m.NeighborsByState,
		m.MDRLevel,
		m.MDRRunsTotal,
		m.AdvertisedNeighbors,
		m.HellosSentTotal,
		m.HellosRejectedTotal,
		m.SPFRunsTotal,
		m.SPFDurationSeconds,
		m.SPFTriggeredRerun,
		m.LinkCost,
		m.LinkMetricUpdates,
		m.ZebraReconnectsTotal,
		m.ZebraFramesTotal,
		m.BuildInfo,
	)

	m.BuildInfo.WithLabelValues(version, goVersion).Set(1)

	return m
}

// Handler returns an http.Handler serving the Prometheus metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
