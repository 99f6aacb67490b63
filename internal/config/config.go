// Package config defines the static YAML configuration surface for
// ospf6d. The live VTY/CLI described in spec.md §6 is an external
// collaborator (out of scope per spec.md §1); every per-interface and
// per-area knob it lists is instead a YAML field here, loaded once at
// startup; a running daemon does not reload it. The struct layout follows the teacher's
// internal/config/config.go: a root struct of nested "XxxConfig" structs
// with yaml tags and a CurrentConfigVersion constant for migrations.
package config

// CurrentConfigVersion is the latest configuration schema version. Bump
// when adding fields that require migration.
const CurrentConfigVersion = 1

// Config is the top-level daemon configuration.
type Config struct {
	Version   int              `yaml:"version,omitempty"`
	RouterID  string           `yaml:"router_id"`
	Zebra     ZebraConfig      `yaml:"zebra"`
	Telemetry TelemetryConfig  `yaml:"telemetry,omitempty"`
	MDR       MDRDefaults      `yaml:"mdr_defaults,omitempty"`
	Areas     []AreaConfig     `yaml:"areas"`
}

// ZebraConfig configures the Unix-socket connection to the Zebra daemon
// (spec.md §4.G).
type ZebraConfig struct {
	SocketPath    string `yaml:"socket_path"`
	ReconnectMin  string `yaml:"reconnect_min,omitempty"`  // e.g. "250ms"
	ReconnectMax  string `yaml:"reconnect_max,omitempty"`  // e.g. "30s"
	InstanceID    uint8  `yaml:"instance_id,omitempty"`
}

// TelemetryConfig controls observability surfaces. Metrics is opt-in,
// matching the teacher's TelemetryConfig (all-disabled-by-default).
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// MetricsConfig controls Prometheus metrics exposure.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address"` // default: "127.0.0.1:9091"
}

// MDRDefaults holds the MDR tunables (spec.md §3 "MDR interface
// sub-record") applied to any interface that does not override them.
type MDRDefaults struct {
	AdjConnectivity              string `yaml:"adjacency_connectivity,omitempty"` // uniconnected|biconnected|fully
	LSAFullness                  string `yaml:"lsa_fullness,omitempty"`           // minlsa|mincostlsa|mincost2lsa|mdrfulllsa|fulllsa
	MDRConstraint                int    `yaml:"mdr_constraint,omitempty"`         // 2 or 3
	TwoHopRefresh                int    `yaml:"twohoprefresh,omitempty"`
	HelloRepeatCount              int   `yaml:"hellorepeatcount,omitempty"`
	BackupWaitInterval           int    `yaml:"backupwaitinterval,omitempty"`
	AckInterval                  int    `yaml:"ackinterval,omitempty"`
	ConsecHelloThreshold          int   `yaml:"consec_hello_threshold,omitempty"`
	UpdateRoutableImmediately    bool   `yaml:"update_routable_neighbors_immediately,omitempty"`
}

// AreaConfig configures one OSPFv3 area and its interfaces.
type AreaConfig struct {
	AreaID         string              `yaml:"area_id"`
	SPFDelayMsec   int                 `yaml:"spf_delay_msec,omitempty"`
	SPFHoldMsec    int                 `yaml:"spf_holdtime_msec,omitempty"`
	Interfaces     []InterfaceConfig   `yaml:"interfaces"`
}

// InterfaceConfig is the per-interface knob set of spec.md §6.
type InterfaceConfig struct {
	Name                       string `yaml:"name"`
	NetworkType                string `yaml:"network_type"` // broadcast|point-to-point|manet-designated-router|p2mp|nbma|virtual-link|loopback
	Priority                   uint8  `yaml:"priority,omitempty"`
	HelloInterval              int    `yaml:"hello_interval,omitempty"`
	DeadInterval               int    `yaml:"dead_interval,omitempty"`
	RetransmitInterval         int    `yaml:"retransmit_interval,omitempty"`
	Cost                       uint16 `yaml:"cost,omitempty"`
	IfMTU                      int    `yaml:"ifmtu,omitempty"`
	Passive                    bool   `yaml:"passive,omitempty"`
	MTUIgnore                  bool   `yaml:"mtu_ignore,omitempty"`
	LinkLSASuppression         bool   `yaml:"link_lsa_suppression,omitempty"`
	FloodDelay                 int    `yaml:"flood_delay,omitempty"`
	AdjacencyFormationLimit    int    `yaml:"adjacency_formation_limit,omitempty"`
	AllowImmediateHello        bool   `yaml:"allow_immediate_hello,omitempty"`
	RelaxNeighborInactivity    bool   `yaml:"relax_neighbor_inactivity,omitempty"`
	AdvertisePrefixList        string `yaml:"advertise_prefix_list,omitempty"`
	LinkMetricFormula          string `yaml:"linkmetric_formula,omitempty"` // cisco|nrl-cable
	LinkMetricWeightThroughput int    `yaml:"linkmetric_weight_throughput,omitempty"`
	LinkMetricWeightResources  int    `yaml:"linkmetric_weight_resources,omitempty"`
	LinkMetricWeightLatency    int    `yaml:"linkmetric_weight_latency,omitempty"`
	LinkMetricWeightL2Factor   int    `yaml:"linkmetric_weight_l2_factor,omitempty"`
	LinkMetricUpdateFilter     string `yaml:"linkmetric_update_filter,omitempty"` // adjust-values
	LinkStatus                 bool   `yaml:"link_status,omitempty"`
	MDR                        *MDRDefaults `yaml:"mdr,omitempty"` // overrides MDR defaults when set
	MDRTLVInterop              string `yaml:"mdr_tlv_interop,omitempty"` // "rfc" or "legacy"; see Open Question (a)
}
