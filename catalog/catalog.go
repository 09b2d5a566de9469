// Package catalog defines generators, black market items and skills, and owns the purchase engine
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/cyber-clicker/achievement"
)

//go:embed default.yaml
var defaultData []byte

// ErrUnknownItem is returned for ids that are not in the catalog
var ErrUnknownItem = errors.New("unknown item")

// Generator is the immutable template of a purchasable generator
type Generator struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	BaseCost    float64 `yaml:"base_cost"`
	Rate        float64 `yaml:"rate"`
	ClickBonus  float64 `yaml:"click_bonus"`
	CostGrowth  float64 `yaml:"cost_growth"`
}

// MarketKind selects what a black market item does when bought
type MarketKind string

const (
	MarketRateBoost  MarketKind = "rate_boost"
	MarketClickBoost MarketKind = "click_boost"
	// MarketInstant credits Duration worth of the current rate
	MarketInstant    MarketKind = "instant"
	MarketPermanent  MarketKind = "permanent"
	MarketOffline    MarketKind = "offline"
	// MarketAutoGlitch is a one-time unlock
	MarketAutoGlitch MarketKind = "auto_glitch"
)

// MarketItem is a black market offer paid in Cryptos
type MarketItem struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Cost        float64       `yaml:"cost"`
	Kind        MarketKind    `yaml:"kind"`
	Multiplier  float64       `yaml:"multiplier,omitempty"`
	Duration    time.Duration `yaml:"duration,omitempty"`
	Delta       float64       `yaml:"delta,omitempty"`
	Chance      float64       `yaml:"chance,omitempty"`
}

// SkillEffect names the quantity a skill level modifies
type SkillEffect string

const (
	EffectClickPower       SkillEffect = "click_power"
	EffectRate             SkillEffect = "rate"
	EffectFirewallChance   SkillEffect = "firewall_chance"
	EffectGlitchDelay      SkillEffect = "glitch_delay"
	EffectGlitchReward     SkillEffect = "glitch_reward"
	EffectOffline          SkillEffect = "offline"
	EffectPrestigeDiscount SkillEffect = "prestige_discount"
)

// Skill is a skill tree node bought with skill points
type Skill struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Cost        uint64      `yaml:"cost"`
	MaxLevel    uint64      `yaml:"max_level"`
	Effect      SkillEffect `yaml:"effect"`
	PerLevel    float64     `yaml:"per_level"`
}

// Data is the complete static content of the game
type Data struct {
	Generators   []Generator              `yaml:"generators"`
	Market       []MarketItem             `yaml:"market"`
	Skills       []Skill                  `yaml:"skills"`
	Achievements []achievement.Definition `yaml:"achievements"`
	Story        []achievement.Definition `yaml:"story"`
}

// Default returns the built-in catalog
func Default() (*Data, error) {
	var d Data
	if err := decode(defaultData, &d); err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return &d, nil
}

// Load returns the built-in catalog with entries from path merged over it by id
// An empty path or a missing file yields the defaults
func Load(path string) (*Data, error) {
	d, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return d, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var override Data
	if err := decode(b, &override); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	d.Generators = mergeByID(d.Generators, override.Generators, func(g Generator) string { return g.ID })
	d.Market = mergeByID(d.Market, override.Market, func(m MarketItem) string { return m.ID })
	d.Skills = mergeByID(d.Skills, override.Skills, func(s Skill) string { return s.ID })
	d.Achievements = mergeByID(d.Achievements, override.Achievements, func(a achievement.Definition) string { return a.ID })
	d.Story = mergeByID(d.Story, override.Story, func(a achievement.Definition) string { return a.ID })

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return d, nil
}

func decode(b []byte, out *Data) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// mergeByID replaces base entries that share an id with override and appends the rest
func mergeByID[T any](base, override []T, id func(T) string) []T {
	if len(override) == 0 {
		return base
	}
	index := make(map[string]int, len(base))
	for i, v := range base {
		index[id(v)] = i
	}
	for _, v := range override {
		if i, ok := index[id(v)]; ok {
			base[i] = v
			continue
		}
		index[id(v)] = len(base)
		base = append(base, v)
	}
	return base
}

// Validate collects every problem in the catalog into one error
func (d *Data) Validate() error {
	var errs []error

	seen := make(map[string]bool)
	for _, g := range d.Generators {
		switch {
		case g.ID == "":
			errs = append(errs, errors.New("generator with empty id"))
		case seen[g.ID]:
			errs = append(errs, fmt.Errorf("generator %q: duplicate id", g.ID))
		}
		seen[g.ID] = true
		if !positive(g.BaseCost) {
			errs = append(errs, fmt.Errorf("generator %q: base_cost must be positive", g.ID))
		}
		if !finite(g.CostGrowth) || g.CostGrowth <= 1 {
			errs = append(errs, fmt.Errorf("generator %q: cost_growth must be > 1", g.ID))
		}
		if !finite(g.Rate) || g.Rate < 0 || !finite(g.ClickBonus) || g.ClickBonus < 0 {
			errs = append(errs, fmt.Errorf("generator %q: rate and click_bonus must be non-negative", g.ID))
		}
	}

	clear(seen)
	for _, m := range d.Market {
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("market item %q: duplicate id", m.ID))
		}
		seen[m.ID] = true
		if !positive(m.Cost) {
			errs = append(errs, fmt.Errorf("market item %q: cost must be positive", m.ID))
		}
		switch m.Kind {
		case MarketRateBoost, MarketClickBoost:
			if !positive(m.Multiplier) || m.Duration <= 0 {
				errs = append(errs, fmt.Errorf("market item %q: boost needs multiplier and duration", m.ID))
			}
		case MarketInstant:
			if m.Duration <= 0 {
				errs = append(errs, fmt.Errorf("market item %q: instant needs duration", m.ID))
			}
		case MarketPermanent, MarketOffline:
			if !positive(m.Delta) {
				errs = append(errs, fmt.Errorf("market item %q: delta must be positive", m.ID))
			}
		case MarketAutoGlitch:
			if m.Chance <= 0 || m.Chance > 1 {
				errs = append(errs, fmt.Errorf("market item %q: chance must be in (0, 1]", m.ID))
			}
		default:
			errs = append(errs, fmt.Errorf("market item %q: unknown kind %q", m.ID, m.Kind))
		}
	}

	clear(seen)
	for _, s := range d.Skills {
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("skill %q: duplicate id", s.ID))
		}
		seen[s.ID] = true
		if s.Cost == 0 || s.MaxLevel == 0 {
			errs = append(errs, fmt.Errorf("skill %q: cost and max_level must be positive", s.ID))
		}
		if !finite(s.PerLevel) || s.PerLevel < 0 {
			errs = append(errs, fmt.Errorf("skill %q: per_level must be non-negative", s.ID))
		}
	}

	if err := achievement.ValidateDefinitions(d.Achievements); err != nil {
		errs = append(errs, fmt.Errorf("achievements: %w", err))
	}
	if err := achievement.ValidateDefinitions(d.Story); err != nil {
		errs = append(errs, fmt.Errorf("story: %w", err))
	}

	return errors.Join(errs...)
}

// MarketItem looks up a black market item
func (d *Data) MarketItem(id string) (MarketItem, bool) {
	for _, m := range d.Market {
		if m.ID == id {
			return m, true
		}
	}
	return MarketItem{}, false
}

// Skill looks up a skill tree node
func (d *Data) Skill(id string) (Skill, bool) {
	for _, s := range d.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

// SkillsByEffect returns the skills that modify effect
func (d *Data) SkillsByEffect(effect SkillEffect) []Skill {
	var out []Skill
	for _, s := range d.Skills {
		if s.Effect == effect {
			out = append(out, s)
		}
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }
