// Package prestige implements the reboot state machine and the skill tree it funds
package prestige

import (
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/lixenwraith/cyber-clicker/catalog"
)

const (
	// Floor is the lifetime Bits below which no root access level is available
	Floor = 1e7
	// LevelsPerDecade is how many levels one order of magnitude above Floor is worth
	LevelsPerDecade = 5
	// ResetFactor scales the permanent multiplier once per reboot
	ResetFactor = 1.1
	// minDiscountFactor keeps the discounted requirement positive
	minDiscountFactor = 0.1
)

var (
	// ErrNotEligible is returned when the potential level does not exceed the current level
	ErrNotEligible = errors.New("not eligible for reboot")
	// ErrMaxLevel is returned when a skill is already at its cap
	ErrMaxLevel = errors.New("skill at max level")
	// ErrInsufficientPoints is returned when a skill costs more points than available
	ErrInsufficientPoints = errors.New("insufficient skill points")
)

// PotentialLevel returns the root access level lifetime Bits would grant
// discount is the fractional requirement reduction from skills, e.g. 0.2 for two levels
func PotentialLevel(lifetime, discount float64) uint64 {
	if math.IsNaN(lifetime) || math.IsInf(lifetime, 0) || lifetime < Floor {
		return 0
	}
	factor := 1 - discount
	if math.IsNaN(factor) || factor > 1 {
		factor = 1
	}
	factor = max(factor, minDiscountFactor)

	scaled := lifetime / factor
	v := math.Floor(math.Log10(scaled/Floor) * LevelsPerDecade)
	// log10 can land one ulp off an integer; settle on the threshold itself
	if scaled >= threshold(v+1) {
		v++
	} else if v > 0 && scaled < threshold(v) {
		v--
	}
	if v <= 0 {
		return 0
	}
	return uint64(v)
}

// threshold is the undiscounted lifetime Bits at which level v begins
func threshold(v float64) float64 {
	return Floor * math.Pow(10, v/LevelsPerDecade)
}

// Requirement returns the lifetime Bits needed to reach level with the given discount
func Requirement(level uint64, discount float64) float64 {
	factor := max(min(1-discount, 1), minDiscountFactor)
	return threshold(float64(level)) * factor
}

// State is the persisted prestige progress
type State struct {
	Level       uint64
	SkillPoints uint64
	Skills      map[string]uint64
}

// Ledger is the part of the resource ledger a reboot touches
type Ledger interface {
	ResetCurrent()
	DepositSecondary(amount float64) error
}

// Resetter zeroes owned generators
type Resetter interface {
	ResetAll()
}

// Modifiers is the part of the modifier stack a reboot touches
type Modifiers interface {
	ScalePermanent(factor float64)
	ClearRateBoosts()
}

// Result describes a completed reboot
type Result struct {
	From   uint64
	To     uint64
	Gained uint64
}

// Controller owns root access level, skill points and skill levels
type Controller struct {
	state State
}

// NewController creates a controller at level zero
func NewController() *Controller {
	return &Controller{state: State{Skills: make(map[string]uint64)}}
}

// Level returns the current root access level
func (c *Controller) Level() uint64 { return c.state.Level }

// SkillPoints returns unspent skill points
func (c *Controller) SkillPoints() uint64 { return c.state.SkillPoints }

// SkillLevel returns the level of skill id
func (c *Controller) SkillLevel(id string) uint64 { return c.state.Skills[id] }

// State returns a copy of the persisted state
func (c *Controller) State() State {
	s := c.state
	s.Skills = maps.Clone(c.state.Skills)
	return s
}

// Restore replaces the persisted state
func (c *Controller) Restore(s State) {
	c.state = s
	c.state.Skills = maps.Clone(s.Skills)
	if c.state.Skills == nil {
		c.state.Skills = make(map[string]uint64)
	}
}

// Eligible reports whether a reboot to potential would raise the level
func (c *Controller) Eligible(potential uint64) bool {
	return potential > c.state.Level
}

// Reset performs a reboot to potential
// Current Bits and generators are zeroed and rate boosts dropped; lifetime Bits,
// click boosts, Cryptos, achievements and skills survive. Gained levels are paid
// out as Cryptos and skill points and the permanent multiplier scales once.
func (c *Controller) Reset(potential uint64, l Ledger, gens Resetter, mods Modifiers) (Result, error) {
	if !c.Eligible(potential) {
		return Result{}, fmt.Errorf("%w: potential %d, current %d", ErrNotEligible, potential, c.state.Level)
	}

	res := Result{From: c.state.Level, To: potential, Gained: potential - c.state.Level}

	if err := l.DepositSecondary(float64(res.Gained)); err != nil {
		return Result{}, fmt.Errorf("reboot reward: %w", err)
	}
	c.state.SkillPoints += res.Gained
	mods.ScalePermanent(ResetFactor)
	l.ResetCurrent()
	c.state.Level = potential
	gens.ResetAll()
	mods.ClearRateBoosts()

	return res, nil
}

// BuySkill spends points to raise s by one level and returns the new level
func (c *Controller) BuySkill(s catalog.Skill) (uint64, error) {
	lvl := c.state.Skills[s.ID]
	if lvl >= s.MaxLevel {
		return lvl, fmt.Errorf("%w: %s", ErrMaxLevel, s.ID)
	}
	if c.state.SkillPoints < s.Cost {
		return lvl, fmt.Errorf("%w: have %d, need %d", ErrInsufficientPoints, c.state.SkillPoints, s.Cost)
	}
	c.state.SkillPoints -= s.Cost
	c.state.Skills[s.ID] = lvl + 1
	return lvl + 1, nil
}

// MaxedSkills counts skills at their max level
func (c *Controller) MaxedSkills(tree []catalog.Skill) int {
	n := 0
	for _, s := range tree {
		if c.state.Skills[s.ID] >= s.MaxLevel {
			n++
		}
	}
	return n
}

// Bonus returns the summed per-level effect of every skill in tree
func (c *Controller) Bonus(tree []catalog.Skill) float64 {
	var b float64
	for _, s := range tree {
		b += float64(min(c.state.Skills[s.ID], s.MaxLevel)) * s.PerLevel
	}
	return b
}

// MigrateSkillPoints grants points to saves that predate skill points
// Every level ever gained is worth one point, so the grant is level minus points already spent
func (c *Controller) MigrateSkillPoints(tree []catalog.Skill) uint64 {
	if c.state.Level == 0 || c.state.SkillPoints != 0 {
		return 0
	}
	var spent uint64
	for _, s := range tree {
		spent += c.state.Skills[s.ID] * s.Cost
	}
	if spent >= c.state.Level {
		return 0
	}
	grant := c.state.Level - spent
	c.state.SkillPoints = grant
	return grant
}
