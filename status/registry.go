// Package status is a lock-free metric registry read by the debug panel
package status

import (
	"strconv"
	"sync/atomic"
)

// Well-known metric keys
const (
	KeyTicks           = "engine.ticks"
	KeyRejectedDeposit = "engine.rejected_deposits"
	KeyRate            = "economy.gps"
	KeyClickPower      = "economy.click_power"
	KeyRateMultiplier  = "economy.rate_multiplier"
	KeySaves           = "persistence.saves"
	KeySaveErrors      = "persistence.save_errors"
	KeySavesThrottled  = "persistence.saves_throttled"
	KeyBackend         = "persistence.backend"
	KeySchedulerLive   = "scheduler.running"
	KeySchedulerLoops  = "scheduler.loops"
	KeyJobPanics       = "scheduler.job_panics"
	KeyFirewallActive  = "minigame.firewall_active"
	KeyEventsPending   = "events.pending"
)

// Registry is the central metrics facade
// Components cache pointers at construction; hot paths write atomics directly
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Line is one formatted metric
type Line struct {
	Key   string
	Value string
}

// Lines formats every metric, grouped by type and sorted by key within each group
func (r *Registry) Lines() []Line {
	lines := make([]Line, 0, r.TotalCount())
	for k, v := range r.Bools.All() {
		lines = append(lines, Line{k, strconv.FormatBool(v.Load())})
	}
	for k, v := range r.Ints.All() {
		lines = append(lines, Line{k, strconv.FormatInt(v.Load(), 10)})
	}
	for k, v := range r.Floats.All() {
		lines = append(lines, Line{k, strconv.FormatFloat(v.Get(), 'g', 4, 64)})
	}
	for k, v := range r.Strings.All() {
		lines = append(lines, Line{k, v.Load()})
	}
	return lines
}
