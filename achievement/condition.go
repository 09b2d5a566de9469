// Package achievement evaluates data-driven unlock conditions for achievements and story events
package achievement

import (
	"errors"
	"fmt"
)

// Metric names a readable quantity of the game state
type Metric string

const (
	MetricTotalClicks      Metric = "total_clicks"
	MetricLifetimeBits     Metric = "lifetime_bits"
	MetricCryptos          Metric = "cryptos"
	MetricLevel            Metric = "root_access_level"
	MetricRate             Metric = "gps"
	MetricFirewallsCleared Metric = "firewalls_cleared"
	// MetricGeneratorCount reads the owned count of Condition.Target
	MetricGeneratorCount Metric = "generator_count"
	// MetricOwnedGenerators counts generator types with at least one unit
	MetricOwnedGenerators Metric = "owned_generators"
	// MetricMaxedSkills counts skills at their max level
	MetricMaxedSkills Metric = "maxed_skills"
)

var knownMetrics = map[Metric]bool{
	MetricTotalClicks:      true,
	MetricLifetimeBits:     true,
	MetricCryptos:          true,
	MetricLevel:            true,
	MetricRate:             true,
	MetricFirewallsCleared: true,
	MetricGeneratorCount:   true,
	MetricOwnedGenerators:  true,
	MetricMaxedSkills:      true,
}

// Op is a comparison operator
type Op string

const (
	OpGTE Op = ">="
	OpGT  Op = ">"
	OpLTE Op = "<="
	OpLT  Op = "<"
	OpEQ  Op = "=="
)

// View is a read-only projection of game state used by conditions
type View interface {
	Metric(m Metric, target string) float64
}

// Condition compares one metric against a threshold
type Condition struct {
	Metric Metric  `yaml:"metric"`
	Target string  `yaml:"target,omitempty"`
	Op     Op      `yaml:"op"`
	Value  float64 `yaml:"value"`
}

// Eval reports whether the condition holds for v
func (c Condition) Eval(v View) bool {
	got := v.Metric(c.Metric, c.Target)
	switch c.Op {
	case OpGTE, "":
		return got >= c.Value
	case OpGT:
		return got > c.Value
	case OpLTE:
		return got <= c.Value
	case OpLT:
		return got < c.Value
	case OpEQ:
		return got == c.Value
	default:
		return false
	}
}

// Validate checks metric and operator names
func (c Condition) Validate() error {
	var errs []error
	if !knownMetrics[c.Metric] {
		errs = append(errs, fmt.Errorf("unknown metric %q", c.Metric))
	}
	if c.Metric == MetricGeneratorCount && c.Target == "" {
		errs = append(errs, fmt.Errorf("metric %q requires a target", c.Metric))
	}
	switch c.Op {
	case OpGTE, OpGT, OpLTE, OpLT, OpEQ, "":
	default:
		errs = append(errs, fmt.Errorf("unknown operator %q", c.Op))
	}
	return errors.Join(errs...)
}

func (c Condition) String() string {
	op := c.Op
	if op == "" {
		op = OpGTE
	}
	if c.Target != "" {
		return fmt.Sprintf("%s[%s] %s %g", c.Metric, c.Target, op, c.Value)
	}
	return fmt.Sprintf("%s %s %g", c.Metric, op, c.Value)
}
