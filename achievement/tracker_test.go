package achievement

import (
	"testing"
)

// mapView is a mutable metric table standing in for live game state
type mapView map[Metric]float64

func (m mapView) Metric(metric Metric, target string) float64 {
	if target != "" {
		return m[Metric(string(metric)+":"+target)]
	}
	return m[metric]
}

// TestConditionOperators verifies each comparison operator
func TestConditionOperators(t *testing.T) {
	v := mapView{MetricTotalClicks: 100}

	tests := []struct {
		op   Op
		val  float64
		want bool
	}{
		{OpGTE, 100, true},
		{OpGTE, 101, false},
		{OpGT, 100, false},
		{OpGT, 99, true},
		{OpLTE, 100, true},
		{OpLT, 100, false},
		{OpEQ, 100, true},
		{"", 100, true},
		{"~", 1, false},
	}

	for _, tt := range tests {
		c := Condition{Metric: MetricTotalClicks, Op: tt.op, Value: tt.val}
		if got := c.Eval(v); got != tt.want {
			t.Errorf("%s = %v, want %v", c, got, tt.want)
		}
	}
}

// TestConditionTarget verifies targeted metrics read the target's value
func TestConditionTarget(t *testing.T) {
	v := mapView{"generator_count:matrix": 1}
	c := Condition{Metric: MetricGeneratorCount, Target: "matrix", Op: OpGTE, Value: 1}
	if !c.Eval(v) {
		t.Error("expected matrix condition to hold")
	}
	c.Target = "bender"
	if c.Eval(v) {
		t.Error("expected bender condition to fail")
	}
}

// TestEvaluateSequentialSamePass verifies a reward granted by an earlier unlock
// is observed by a later condition in the same evaluation
func TestEvaluateSequentialSamePass(t *testing.T) {
	defs := []Definition{
		{ID: "millionaire", Condition: Condition{Metric: MetricLifetimeBits, Op: OpGTE, Value: 1e6}, Reward: 10},
		{ID: "crypto_miner", Condition: Condition{Metric: MetricCryptos, Op: OpGTE, Value: 10}, Reward: 5},
	}
	tr := NewTracker(defs)
	v := mapView{MetricLifetimeBits: 2e6, MetricCryptos: 0}

	newly := tr.Evaluate(v, func(d Definition) {
		v[MetricCryptos] += d.Reward
	})

	if len(newly) != 2 {
		t.Fatalf("unlocked %d definitions, want 2", len(newly))
	}
	if v[MetricCryptos] != 15 {
		t.Errorf("cryptos = %v, want 15", v[MetricCryptos])
	}
}

// TestEvaluateOneWay verifies unlocks never revert and never fire twice
func TestEvaluateOneWay(t *testing.T) {
	tr := NewTracker([]Definition{
		{ID: "first_click", Condition: Condition{Metric: MetricTotalClicks, Op: OpGTE, Value: 1}},
	})
	v := mapView{MetricTotalClicks: 1}

	fired := 0
	tr.Evaluate(v, func(Definition) { fired++ })
	v[MetricTotalClicks] = 0
	tr.Evaluate(v, func(Definition) { fired++ })

	if fired != 1 {
		t.Errorf("onUnlock fired %d times, want 1", fired)
	}
	if !tr.Unlocked("first_click") {
		t.Error("unlock reverted")
	}
}

// TestResetRelocks verifies a reset tracker unlocks and fires again
func TestResetRelocks(t *testing.T) {
	tr := NewTracker([]Definition{
		{ID: "first_click", Condition: Condition{Metric: MetricTotalClicks, Op: OpGTE, Value: 1}},
	})
	v := mapView{MetricTotalClicks: 1}

	fired := 0
	tr.Evaluate(v, func(Definition) { fired++ })
	tr.Reset()
	if tr.Unlocked("first_click") {
		t.Fatal("still unlocked after Reset")
	}
	if got, total := tr.Progress(); got != 0 || total != 1 {
		t.Errorf("Progress() after Reset = %d/%d, want 0/1", got, total)
	}

	tr.Evaluate(v, func(Definition) { fired++ })
	if fired != 2 {
		t.Errorf("onUnlock fired %d times, want 2", fired)
	}
}

// TestRestoreIgnoresUnknown verifies persisted entries for removed definitions are dropped
func TestRestoreIgnoresUnknown(t *testing.T) {
	tr := NewTracker([]Definition{{ID: "a"}, {ID: "b"}})
	tr.Restore([]Entry{{ID: "a", Unlocked: true}, {ID: "zzz", Unlocked: true}, {ID: "b", Unlocked: false}})

	entries := tr.Entries()
	if len(entries) != 2 || !entries[0].Unlocked || entries[1].Unlocked {
		t.Errorf("Entries() = %+v", entries)
	}
	if got, total := tr.Progress(); got != 1 || total != 2 {
		t.Errorf("Progress() = %d/%d, want 1/2", got, total)
	}
}

// TestValidateDefinitions verifies duplicate ids and bad metrics are reported together
func TestValidateDefinitions(t *testing.T) {
	err := ValidateDefinitions([]Definition{
		{ID: "x", Condition: Condition{Metric: MetricCryptos}},
		{ID: "x", Condition: Condition{Metric: "nope"}},
		{ID: "y", Condition: Condition{Metric: MetricGeneratorCount}},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	if err := ValidateDefinitions([]Definition{{ID: "ok", Condition: Condition{Metric: MetricRate, Op: OpGTE, Value: 1e9}}}); err != nil {
		t.Errorf("valid definition rejected: %v", err)
	}
}
