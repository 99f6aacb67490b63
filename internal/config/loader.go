package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaults mirror the documented defaults from spec.md §3/§4/§6.
const (
	defaultSPFDelayMsec     = 50
	defaultSPFHoldtimeMsec  = 200
	defaultHelloInterval    = 2
	defaultDeadInterval     = 6
	defaultRetransmitIvl    = 5
	defaultCost             = 10
	defaultMDRConstraint    = 3
	defaultTwoHopRefresh    = 3
	defaultHelloRepeatCount = 3
	defaultBackupWaitIvl    = 6
	defaultAckInterval      = 1
	defaultConsecHelloThr   = 1
	defaultThroughputWeight = 0
	defaultResourcesWeight  = 29
	defaultLatencyWeight    = 29
	defaultL2FactorWeight   = 29
	defaultZebraSocketPath  = "/var/run/zebra.api"
	defaultReconnectMin     = "250ms"
	defaultReconnectMax     = "30s"
)

// Load reads, defaults, and validates the daemon configuration at path.
// Fields left zero-valued in YAML are filled with the documented spec.md
// defaults, matching the teacher's "no form returning to the documented
// default" configuration philosophy (spec.md §6).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Version > CurrentConfigVersion {
		return nil, fmt.Errorf("%w: version %d exceeds supported version %d", ErrConfigVersionTooNew, cfg.Version, CurrentConfigVersion)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Zebra.SocketPath == "" {
		cfg.Zebra.SocketPath = defaultZebraSocketPath
	}
	if cfg.Zebra.ReconnectMin == "" {
		cfg.Zebra.ReconnectMin = defaultReconnectMin
	}
	if cfg.Zebra.ReconnectMax == "" {
		cfg.Zebra.ReconnectMax = defaultReconnectMax
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = "127.0.0.1:9091"
	}
	applyMDRDefaults(&cfg.MDR)

	for ai := range cfg.Areas {
		area := &cfg.Areas[ai]
		if area.SPFDelayMsec == 0 {
			area.SPFDelayMsec = defaultSPFDelayMsec
		}
		if area.SPFHoldMsec == 0 {
			area.SPFHoldMsec = defaultSPFHoldtimeMsec
		}
		for ii := range area.Interfaces {
			iface := &area.Interfaces[ii]
			if iface.HelloInterval == 0 {
				iface.HelloInterval = defaultHelloInterval
			}
			if iface.DeadInterval == 0 {
				iface.DeadInterval = defaultDeadInterval
			}
			if iface.RetransmitInterval == 0 {
				iface.RetransmitInterval = defaultRetransmitIvl
			}
			if iface.Cost == 0 {
				iface.Cost = defaultCost
			}
			if iface.LinkMetricWeightResources == 0 {
				iface.LinkMetricWeightResources = defaultResourcesWeight
			}
			if iface.LinkMetricWeightLatency == 0 {
				iface.LinkMetricWeightLatency = defaultLatencyWeight
			}
			if iface.LinkMetricWeightL2Factor == 0 {
				iface.LinkMetricWeightL2Factor = defaultL2FactorWeight
			}
			if iface.NetworkType == "" {
				iface.NetworkType = "broadcast"
			}
			if iface.MDR == nil {
				merged := cfg.MDR
				iface.MDR = &merged
			} else {
				applyMDRDefaults(iface.MDR)
			}
			if iface.MDRTLVInterop == "" {
				iface.MDRTLVInterop = "rfc"
			}
		}
	}
}

func applyMDRDefaults(m *MDRDefaults) {
	if m.AdjConnectivity == "" {
		m.AdjConnectivity = "biconnected"
	}
	if m.LSAFullness == "" {
		m.LSAFullness = "mincostlsa"
	}
	if m.MDRConstraint == 0 {
		m.MDRConstraint = defaultMDRConstraint
	}
	if m.TwoHopRefresh == 0 {
		m.TwoHopRefresh = defaultTwoHopRefresh
	}
	if m.HelloRepeatCount == 0 {
		m.HelloRepeatCount = defaultHelloRepeatCount
	}
	if m.BackupWaitInterval == 0 {
		m.BackupWaitInterval = defaultBackupWaitIvl
	}
	if m.AckInterval == 0 {
		m.AckInterval = defaultAckInterval
	}
	if m.ConsecHelloThreshold == 0 {
		m.ConsecHelloThreshold = defaultConsecHelloThr
	}
}

// Validate checks configuration-conflict-class errors (spec.md §7): weight
// ranges, MDRConstraint domain, that fulllsa is not combined with fully
// adjacency connectivity, and that at least one area is configured.
// It fails the whole config atomically -- no partial state change, matching
// the "Configuration conflict" action in spec.md §7.
func Validate(cfg *Config) error {
	if len(cfg.Areas) == 0 {
		return ErrNoAreas
	}
	for _, area := range cfg.Areas {
		if err := validateMDR(&area, area.Interfaces); err != nil {
			return err
		}
	}
	return nil
}

func validateMDR(area *AreaConfig, ifaces []InterfaceConfig) error {
	for _, iface := range ifaces {
		if iface.MDR != nil {
			if iface.MDR.MDRConstraint != 2 && iface.MDR.MDRConstraint != 3 {
				return fmt.Errorf("area %s interface %s: %w", area.AreaID, iface.Name, ErrInvalidMDRConstraint)
			}
			if iface.MDR.LSAFullness == "fulllsa" && iface.MDR.AdjConnectivity == "fully" {
				return fmt.Errorf("area %s interface %s: lsa_fullness fulllsa cannot be combined with adjacency_connectivity fully", area.AreaID, iface.Name)
			}
		}
		for _, w := range []int{
			iface.LinkMetricWeightThroughput,
			iface.LinkMetricWeightResources,
			iface.LinkMetricWeightLatency,
			iface.LinkMetricWeightL2Factor,
		} {
			if w < 0 || w > 100 {
				return fmt.Errorf("area %s interface %s: %w", area.AreaID, iface.Name, ErrInvalidWeight)
			}
		}
	}
	return nil
}
