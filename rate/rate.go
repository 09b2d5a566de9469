// Package rate derives generation rate and click power from owned generators and modifiers
package rate

import (
	"time"
)

// Source supplies unmodified generator totals
type Source interface {
	BaseRate() float64
	ClickBase() float64
}

// Modifiers supplies the composed multipliers
type Modifiers interface {
	RateMultiplier(now time.Time, level uint64) float64
	ClickMultiplier(now time.Time) float64
}

// Compute returns Bits per second: base rate times the composed rate multiplier
// Expired boosts are pruned as a side effect of reading the multiplier
func Compute(src Source, mods Modifiers, level uint64, now time.Time) float64 {
	return src.BaseRate() * mods.RateMultiplier(now, level)
}

// ClickPower returns Bits per click: base click power times the composed click multiplier
func ClickPower(src Source, mods Modifiers, now time.Time) float64 {
	return src.ClickBase() * mods.ClickMultiplier(now)
}
