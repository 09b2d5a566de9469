package game

import (
	"time"

	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/persistence"
	"github.com/lixenwraith/cyber-clicker/prestige"
)

// GeneratorLine is one row of the generator shop
type GeneratorLine struct {
	catalog.Generator
	Count      uint64
	Cost       float64
	Affordable bool
}

// MarketLine is one row of the black market
type MarketLine struct {
	catalog.MarketItem
	Owned      bool
	Affordable bool
}

// SkillLine is one node of the skill tree
type SkillLine struct {
	catalog.Skill
	Level      uint64
	Affordable bool
}

// AchievementLine is one achievement with its unlock flag
type AchievementLine struct {
	Name        string
	Description string
	Reward      float64
	Unlocked    bool
}

// Summary is a consistent read of everything the front end draws
type Summary struct {
	Bits           float64
	Lifetime       float64
	Cryptos        float64
	Rate           float64
	ClickPower     float64
	RateMultiplier float64
	Permanent      float64
	Offline        float64
	Penalty        bool

	Level       uint64
	Potential   uint64
	NextLevelAt float64
	SkillPoints uint64

	Generators []GeneratorLine
	Market     []MarketLine
	Skills     []SkillLine

	Achievements         []AchievementLine
	AchievementsUnlocked int
	AchievementsTotal    int

	FirewallCode  string
	FirewallInput string
	FirewallUp    bool
	Glitch        *Glitch
	Breach        *BreachView

	Stats        persistence.Statistics
	TutorialSeen bool
	AutoGlitch   bool
	RateBoosts   int
	ClickBoosts  int
}

// Summary reads the full display state under one lock
func (g *Game) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	level := g.prestige.Level()
	discount := g.discount()

	s := Summary{
		Bits:           g.ledger.Current(),
		Lifetime:       g.ledger.Lifetime(),
		Cryptos:        g.ledger.Secondary(),
		Rate:           g.rateLocked(now),
		ClickPower:     g.clickPowerLocked(now),
		RateMultiplier: g.mods.RateMultiplier(now, level),
		Permanent:      g.mods.Permanent(),
		Offline:        g.offlineMultiplier(),
		Penalty:        g.mods.Penalty(),
		Level:          level,
		Potential:      prestige.PotentialLevel(g.ledger.Lifetime(), discount),
		NextLevelAt:    prestige.Requirement(level+1, discount),
		SkillPoints:    g.prestige.SkillPoints(),
		Stats:          g.stats,
		TutorialSeen:   g.tutorialSeen,
		AutoGlitch:     g.autoGlitch,
		RateBoosts:     len(g.mods.RateBoosts(now)),
		ClickBoosts:    len(g.mods.ClickBoosts(now)),
	}
	s.Stats.PlayTimeSeconds = uint64(g.playTime / time.Second)
	s.AchievementsUnlocked, s.AchievementsTotal = g.achievements.Progress()
	for _, d := range g.achievements.Definitions() {
		s.Achievements = append(s.Achievements, AchievementLine{
			Name:        d.Name,
			Description: d.Description,
			Reward:      d.Reward,
			Unlocked:    g.achievements.Unlocked(d.ID),
		})
	}

	for _, d := range g.gens.Definitions() {
		_, o, _ := g.gens.Get(d.ID)
		s.Generators = append(s.Generators, GeneratorLine{
			Generator:  d,
			Count:      o.Count,
			Cost:       o.Cost,
			Affordable: s.Bits >= o.Cost,
		})
	}
	for _, m := range g.data.Market {
		owned := m.Kind == catalog.MarketAutoGlitch && g.autoGlitch
		s.Market = append(s.Market, MarketLine{
			MarketItem: m,
			Owned:      owned,
			Affordable: !owned && s.Cryptos >= m.Cost,
		})
	}
	for _, sk := range g.data.Skills {
		lvl := g.prestige.SkillLevel(sk.ID)
		s.Skills = append(s.Skills, SkillLine{
			Skill:      sk,
			Level:      lvl,
			Affordable: lvl < sk.MaxLevel && s.SkillPoints >= sk.Cost,
		})
	}

	if g.firewall != nil {
		s.FirewallUp = true
		s.FirewallCode = g.firewall.Code()
		s.FirewallInput = g.firewall.Input()
	}
	if g.glitch != nil {
		gl := *g.glitch
		s.Glitch = &gl
	}
	if g.breach != nil {
		bv := g.breachView(now)
		s.Breach = &bv
	}
	return s
}
