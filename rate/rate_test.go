package rate

import (
	"math"
	"testing"
	"time"

	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/modifier"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixture(t *testing.T) *catalog.Generators {
	t.Helper()
	gens := catalog.NewGenerators([]catalog.Generator{
		{ID: "autoClicker", BaseCost: 15, Rate: 0.1, CostGrowth: 1.15},
		{ID: "bot", BaseCost: 100, Rate: 1, CostGrowth: 1.15},
		{ID: "clicker", BaseCost: 30, ClickBonus: 1, CostGrowth: 1.15},
	})
	if err := gens.SetCount("autoClicker", 10); err != nil {
		t.Fatal(err)
	}
	if err := gens.SetCount("bot", 2); err != nil {
		t.Fatal(err)
	}
	return gens
}

// TestComputeUnmodified verifies the plain sum of rate times count
func TestComputeUnmodified(t *testing.T) {
	got := Compute(fixture(t), modifier.New(), 0, now)
	if math.Abs(got-3.0) > 1e-12 {
		t.Errorf("Compute = %v, want 3.0", got)
	}
}

// TestComputeComposed verifies R * (1+0.1L) * P * m1 * m2 * 0.5
func TestComputeComposed(t *testing.T) {
	gens := fixture(t)
	mods := modifier.New()
	mods.AddPermanent(0.25)
	mods.AddRateBoost(2, now, time.Minute)
	mods.AddRateBoost(5, now, time.Minute)
	mods.SetPenalty(true)

	const level = 4
	want := 3.0 * (1 + 0.1*level) * 1.25 * 2 * 5 * 0.5
	got := Compute(gens, mods, level, now)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Compute = %v, want %v", got, want)
	}
}

// TestComputeIsPure verifies identical inputs give identical outputs
func TestComputeIsPure(t *testing.T) {
	gens := fixture(t)
	mods := modifier.New()
	mods.AddRateBoost(2, now, time.Minute)

	a := Compute(gens, mods, 1, now)
	b := Compute(gens, mods, 1, now)
	if a != b {
		t.Errorf("Compute not deterministic: %v vs %v", a, b)
	}
}

// TestClickPower verifies base click plus bonuses times click boosts
func TestClickPower(t *testing.T) {
	gens := fixture(t)
	if err := gens.SetCount("clicker", 3); err != nil {
		t.Fatal(err)
	}
	mods := modifier.New()

	if got := ClickPower(gens, mods, now); got != 4 {
		t.Errorf("ClickPower = %v, want 4", got)
	}

	mods.AddClickBoost(6, now, 20*time.Second)
	if got := ClickPower(gens, mods, now); got != 24 {
		t.Errorf("boosted ClickPower = %v, want 24", got)
	}
	if got := ClickPower(gens, mods, now.Add(20*time.Second)); got != 4 {
		t.Errorf("expired ClickPower = %v, want 4", got)
	}
}
