// Package linkmetrics implements the cost-formula and filter layer of
// spec.md §4.F: RFC 4938 link-metric tuples (rlq, resource, latency,
// current/max datarate) turned into an OSPF cost via one of two
// formulas, with an optional pre-formula filter. The exact constants and
// per-term fallback-and-warn behavior are ported from
// original_source/ospf6d/ospf6_interface_linkmetrics.c; the Go
// formula/filter-as-function-value shape is grounded on
// pkg/p2pnet/netintel.go's small-function-table style for pluggable
// per-link scoring.
package linkmetrics

import (
	"log/slog"
	"math"
)

// Metrics is one RFC 4938 link-metrics sample (lib/zebra_linkmetrics.h
// struct zebra_rfc4938_linkmetrics).
type Metrics struct {
	RLQ             uint8 // resource link quality, 0-100
	Resource        uint8 // 0-100
	Latency         uint16
	CurrentDatarate uint16
	MaxDatarate     uint16
}

// Formula computes an OSPF cost in [1, 65535] from one metrics sample;
// weights come from the owning interface's configuration.
type Formula func(m Metrics, w Weights, priorCost uint16, logger *slog.Logger) uint16

// Weights holds the four Cisco-formula per-class weights (spec.md §6);
// NRL-CABLE only consults Latency and Throughput.
type Weights struct {
	Throughput uint8
	Resources  uint8
	Latency    uint8
	L2Factor   uint8
}

const (
	minCost = 1
	maxCost = 65535
)

func clamp(v float64) uint16 {
	if v < minCost {
		return minCost
	}
	if v > maxCost {
		return maxCost
	}
	return uint16(v)
}

// CiscoFormula implements spec.md §4.F's RFC-5614-style weighted
// formula: cost = oc + bw + res + lat + l2.
func CiscoFormula(m Metrics, w Weights, priorCost uint16, logger *slog.Logger) uint16 {
	if logger == nil {
		logger = slog.Default()
	}
	if m.MaxDatarate == 0 {
		logger.Warn("linkmetrics: max_datarate is zero, retaining prior cost")
		return priorCost
	}
	oc := 1e5 / float64(m.MaxDatarate)

	var bw float64
	if m.CurrentDatarate == 0 || m.MaxDatarate == 0 {
		logger.Warn("linkmetrics: datarate term is zero")
	} else {
		bw = (65536 * (100 - 100*float64(m.CurrentDatarate)/float64(m.MaxDatarate)) / 100) * float64(w.Throughput) / 100
	}

	var res float64
	if m.Resource == 0 {
		logger.Warn("linkmetrics: resource term is zero")
	} else {
		tmp := 100 - float64(m.Resource)
		res = (tmp * tmp * tmp * 65536 / 1e6) * float64(w.Resources) / 100
	}

	var lat float64
	if m.Latency == 0 {
		logger.Warn("linkmetrics: latency term is zero")
	} else {
		lat = float64(m.Latency) * float64(w.Latency) / 100
	}

	var l2 float64
	if m.RLQ == 0 {
		logger.Warn("linkmetrics: rlq term is zero")
	} else {
		l2 = ((100 - float64(m.RLQ)) * 65536 / 100) * float64(w.L2Factor) / 100
	}

	cost := oc + bw + res + lat + l2
	if cost < 0 {
		logger.Error("linkmetrics: computed negative cost, retaining prior cost")
		return priorCost
	}
	return clamp(cost)
}

const (
	nrlMaxCost      = 1000
	nrlLatSteepness = 0.0015
	nrlCdrSteepness = 0.0015
)

// NRLCableFormula implements spec.md §4.F's NRL-CABLE exponential
// formula.
func NRLCableFormula(m Metrics, w Weights, priorCost uint16, logger *slog.Logger) uint16 {
	latCost := nrlMaxCost * (1 - math.Exp(-nrlLatSteepness*float64(m.Latency))) * float64(w.Latency) / 100
	cdrCost := nrlMaxCost * math.Exp(-nrlCdrSteepness*float64(m.CurrentDatarate)) * float64(w.Throughput) / 100
	cost := latCost + cdrCost
	if cost <= 0 {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("linkmetrics: NRL-CABLE produced non-positive cost, retaining prior cost")
		return priorCost
	}
	return clamp(cost)
}

// Filter adjusts a raw metrics sample before the formula runs.
type Filter func(Metrics) Metrics

// AdjustValues is the sole filter spec.md §4.F names: clamps rlq and
// resource to 100, and promotes max_datarate up to current_datarate if
// the latter exceeds it.
func AdjustValues(m Metrics) Metrics {
	if m.RLQ > 100 {
		m.RLQ = 100
	}
	if m.Resource > 100 {
		m.Resource = 100
	}
	if m.CurrentDatarate > m.MaxDatarate {
		m.MaxDatarate = m.CurrentDatarate
	}
	return m
}
