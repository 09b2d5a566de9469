// Package modifier composes temporary boosts, permanent multipliers and the firewall penalty
package modifier

import (
	"time"
)

const (
	// PrestigeBonusPerLevel is the additive rate bonus per root access level
	PrestigeBonusPerLevel = 0.10
	// PenaltyFactor halves the rate while a firewall is active
	PenaltyFactor = 0.5
)

// Boost is a time-limited multiplier
type Boost struct {
	Multiplier float64
	ExpiresAt  time.Time
}

// Stack holds every modifier that feeds the rate and click power
// Not safe for concurrent use
type Stack struct {
	rateBoosts  []Boost
	clickBoosts []Boost
	permanent   float64
	offline     float64
	penalty     bool

	// Derived from skill levels; recomputed by the owner, never persisted
	skillRate  float64
	skillClick float64
}

// New creates a stack with neutral multipliers
func New() *Stack {
	return &Stack{
		permanent:  1,
		offline:    1,
		skillRate:  1,
		skillClick: 1,
	}
}

// AddRateBoost appends a rate boost expiring d after now
func (s *Stack) AddRateBoost(multiplier float64, now time.Time, d time.Duration) {
	s.rateBoosts = append(s.rateBoosts, Boost{Multiplier: multiplier, ExpiresAt: now.Add(d)})
}

// AddClickBoost appends a click boost expiring d after now
func (s *Stack) AddClickBoost(multiplier float64, now time.Time, d time.Duration) {
	s.clickBoosts = append(s.clickBoosts, Boost{Multiplier: multiplier, ExpiresAt: now.Add(d)})
}

// AddPermanent adds delta onto the permanent multiplier; negative deltas are ignored
func (s *Stack) AddPermanent(delta float64) {
	if delta > 0 {
		s.permanent += delta
	}
}

// ScalePermanent multiplies the permanent multiplier; factors below 1 are ignored
func (s *Stack) ScalePermanent(factor float64) {
	if factor >= 1 {
		s.permanent *= factor
	}
}

// Permanent returns the permanent multiplier
func (s *Stack) Permanent() float64 { return s.permanent }

// AddOffline adds delta onto the offline multiplier
func (s *Stack) AddOffline(delta float64) {
	if delta > 0 {
		s.offline += delta
	}
}

// Offline returns the purchased offline multiplier, excluding skill bonuses
func (s *Stack) Offline() float64 { return s.offline }

// SetPenalty toggles the firewall penalty
func (s *Stack) SetPenalty(active bool) { s.penalty = active }

// Penalty reports whether the firewall penalty is active
func (s *Stack) Penalty() bool { return s.penalty }

// SetSkillFactors sets the skill-derived rate and click factors
func (s *Stack) SetSkillFactors(rate, click float64) {
	s.skillRate = max(rate, 1)
	s.skillClick = max(click, 1)
}

// RateMultiplier prunes expired rate boosts and returns the composed rate factor
// The penalty is applied last
func (s *Stack) RateMultiplier(now time.Time, level uint64) float64 {
	s.rateBoosts = prune(s.rateBoosts, now)

	m := s.permanent * (1 + float64(level)*PrestigeBonusPerLevel) * s.skillRate
	for _, b := range s.rateBoosts {
		m *= b.Multiplier
	}
	if s.penalty {
		m *= PenaltyFactor
	}
	return m
}

// ClickMultiplier prunes expired click boosts and returns the composed click factor
func (s *Stack) ClickMultiplier(now time.Time) float64 {
	s.clickBoosts = prune(s.clickBoosts, now)

	m := s.skillClick
	for _, b := range s.clickBoosts {
		m *= b.Multiplier
	}
	return m
}

// RateBoosts returns live rate boosts as of now
func (s *Stack) RateBoosts(now time.Time) []Boost {
	s.rateBoosts = prune(s.rateBoosts, now)
	return append([]Boost(nil), s.rateBoosts...)
}

// ClickBoosts returns live click boosts as of now
func (s *Stack) ClickBoosts(now time.Time) []Boost {
	s.clickBoosts = prune(s.clickBoosts, now)
	return append([]Boost(nil), s.clickBoosts...)
}

// ClearRateBoosts drops every rate boost; click boosts are kept
func (s *Stack) ClearRateBoosts() {
	s.rateBoosts = nil
}

// Restore replaces persisted modifiers, dropping boosts already expired at now
func (s *Stack) Restore(permanent, offline float64, rate, click []Boost, now time.Time) {
	s.permanent = max(permanent, 1)
	s.offline = max(offline, 1)
	s.rateBoosts = prune(append([]Boost(nil), rate...), now)
	s.clickBoosts = prune(append([]Boost(nil), click...), now)
	s.penalty = false
}

// prune removes boosts whose expiry is at or before now, in place
func prune(boosts []Boost, now time.Time) []Boost {
	live := boosts[:0]
	for _, b := range boosts {
		if b.ExpiresAt.After(now) {
			live = append(live, b)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return live
}
