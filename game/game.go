// Package game owns the complete game state and serializes every mutation behind one lock
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/cyber-clicker/achievement"
	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/clock"
	"github.com/lixenwraith/cyber-clicker/config"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/ledger"
	"github.com/lixenwraith/cyber-clicker/minigame"
	"github.com/lixenwraith/cyber-clicker/modifier"
	"github.com/lixenwraith/cyber-clicker/persistence"
	"github.com/lixenwraith/cyber-clicker/prestige"
	"github.com/lixenwraith/cyber-clicker/status"
)

var (
	// ErrNotActive is returned for mini-game input when that mini-game is not running
	ErrNotActive = errors.New("mini-game not active")
	// ErrAlreadyActive is returned when starting a mini-game that is running
	ErrAlreadyActive = errors.New("mini-game already active")
	// ErrAlreadyOwned is returned when buying a one-time unlock twice
	ErrAlreadyOwned = errors.New("already owned")
)

// Rand is the random source for spawns and mini-games; *rand.Rand satisfies it
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Options configures a Game; zero fields take defaults
type Options struct {
	Config  *config.Config
	Catalog *catalog.Data
	Clock   clock.Provider
	Rand    Rand
	Logger  *slog.Logger
	Events  *events.EventQueue
	Status  *status.Registry
}

// Game is the owning controller for all state
// Every exported method takes the lock; the scheduler and front end call in concurrently
type Game struct {
	mu sync.Mutex

	cfg    *config.Config
	data   *catalog.Data
	clock  clock.Provider
	rng    Rand
	log    *slog.Logger
	events *events.EventQueue

	ledger       *ledger.Ledger
	gens         *catalog.Generators
	mods         *modifier.Stack
	prestige     *prestige.Controller
	achievements *achievement.Tracker
	story        *achievement.Tracker

	stats        persistence.Statistics
	playTime     time.Duration
	tutorialSeen bool
	autoGlitch   bool
	autoChance   float64
	lastTick     time.Time

	firewall *minigame.Firewall
	glitch   *Glitch
	breach   *minigame.Breach

	dirty bool

	// Cached metric pointers
	statTicks      *atomic.Int64
	statRejected   *atomic.Int64
	statRate       *status.AtomicFloat
	statClick      *status.AtomicFloat
	statMultiplier *status.AtomicFloat
	statFirewall   *atomic.Bool
	statPending    *atomic.Int64
}

// New creates a game in fresh state
func New(opts Options) (*Game, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Catalog == nil {
		data, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		opts.Catalog = data
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = events.NewEventQueue()
	}
	if opts.Status == nil {
		opts.Status = status.NewRegistry()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	g := &Game{
		cfg:            opts.Config,
		data:           opts.Catalog,
		clock:          opts.Clock,
		rng:            opts.Rand,
		log:            opts.Logger,
		events:         opts.Events,
		statTicks:      opts.Status.Ints.Get(status.KeyTicks),
		statRejected:   opts.Status.Ints.Get(status.KeyRejectedDeposit),
		statRate:       opts.Status.Floats.Get(status.KeyRate),
		statClick:      opts.Status.Floats.Get(status.KeyClickPower),
		statMultiplier: opts.Status.Floats.Get(status.KeyRateMultiplier),
		statFirewall:   opts.Status.Bools.Get(status.KeyFirewallActive),
		statPending:    opts.Status.Ints.Get(status.KeyEventsPending),
		achievements:   achievement.NewTracker(opts.Catalog.Achievements),
		story:          achievement.NewTracker(opts.Catalog.Story),
	}

	g.autoChance = 0.5
	for _, m := range g.data.Market {
		if m.Kind == catalog.MarketAutoGlitch && m.Chance > 0 {
			g.autoChance = m.Chance
		}
	}

	g.resetLocked(g.clock.Now())
	return g, nil
}

// resetLocked puts every component in fresh state
func (g *Game) resetLocked(now time.Time) {
	g.ledger = ledger.New()
	g.gens = catalog.NewGenerators(g.data.Generators)
	g.mods = modifier.New()
	g.prestige = prestige.NewController()
	g.achievements.Reset()
	g.story.Reset()
	g.stats = persistence.Statistics{SessionStartTime: now.UnixMilli()}
	g.playTime = 0
	g.tutorialSeen = false
	g.autoGlitch = false
	g.lastTick = now
	g.firewall = nil
	g.glitch = nil
	g.breach = nil
	g.applySkills()
	g.updateMetrics(now)
}

// Now returns the game clock time
func (g *Game) Now() time.Time {
	return g.clock.Now()
}

// Events returns the notification queue
func (g *Game) Events() *events.EventQueue {
	return g.events
}

// Config returns the active configuration
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Catalog returns the static content
func (g *Game) Catalog() *catalog.Data {
	return g.data
}

// Dirty reports whether state changed in a way worth saving before the next autosave
func (g *Game) Dirty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dirty
}

// ClearDirty acknowledges a save
func (g *Game) ClearDirty() {
	g.mu.Lock()
	g.dirty = false
	g.mu.Unlock()
}

// SetTutorialSeen records that the intro has been dismissed
func (g *Game) SetTutorialSeen() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tutorialSeen = true
	g.dirty = true
}

// emit pushes a notification stamped with now
func (g *Game) emit(now time.Time, t events.EventType, msg string, amount float64, payload any) {
	g.events.Push(events.GameEvent{
		Type:      t,
		Message:   msg,
		Amount:    amount,
		Payload:   payload,
		Timestamp: now,
	})
}

// reject reports a refused action on the side channel and returns err unchanged
func (g *Game) reject(now time.Time, action string, err error) error {
	g.log.Debug("action rejected", "action", action, "error", err)
	g.emit(now, events.EventRejected, fmt.Sprintf("%s failed: %v", action, err), 0, action)
	return err
}

// deposit credits Bits and keeps statistics in step; a rejected amount is logged and counted
func (g *Game) deposit(amount float64, source string) bool {
	if err := g.ledger.Deposit(amount); err != nil {
		g.statRejected.Add(1)
		g.log.Warn("deposit rejected", "source", source, "amount", amount, "error", err)
		return false
	}
	g.stats.TotalBitsEarned += amount
	return true
}

// evaluate runs achievements then story events against the live state
func (g *Game) evaluate(now time.Time) {
	v := view{g: g, now: now}

	g.achievements.Evaluate(v, func(d achievement.Definition) {
		if d.Reward > 0 {
			if err := g.ledger.DepositSecondary(d.Reward); err != nil {
				g.log.Warn("achievement reward rejected", "id", d.ID, "error", err)
			}
		}
		g.dirty = true
		g.log.Info("achievement unlocked", "id", d.ID, "reward", d.Reward)
		g.emit(now, events.EventAchievement, "Achievement unlocked: "+d.Name, d.Reward, d)
	})

	g.story.Evaluate(v, func(d achievement.Definition) {
		g.dirty = true
		g.emit(now, events.EventStory, d.Message, 0, d)
	})
}

// applySkills refreshes skill-derived modifier factors
func (g *Game) applySkills() {
	rateBonus := g.skillBonus(catalog.EffectRate)
	clickBonus := g.skillBonus(catalog.EffectClickPower)
	g.mods.SetSkillFactors(1+rateBonus, 1+clickBonus)
}

func (g *Game) skillBonus(effect catalog.SkillEffect) float64 {
	return g.prestige.Bonus(g.data.SkillsByEffect(effect))
}

func (g *Game) updateMetrics(now time.Time) {
	g.statRate.Set(g.rateLocked(now))
	g.statClick.Set(g.clickPowerLocked(now))
	g.statMultiplier.Set(g.mods.RateMultiplier(now, g.prestige.Level()))
	g.statFirewall.Store(g.firewall != nil)
	g.statPending.Store(int64(g.events.Len()))
}

// view exposes live state to achievement conditions
type view struct {
	g   *Game
	now time.Time
}

func (v view) Metric(m achievement.Metric, target string) float64 {
	g := v.g
	switch m {
	case achievement.MetricTotalClicks:
		return float64(g.stats.TotalClicks)
	case achievement.MetricLifetimeBits:
		return g.ledger.Lifetime()
	case achievement.MetricCryptos:
		return g.ledger.Secondary()
	case achievement.MetricLevel:
		return float64(g.prestige.Level())
	case achievement.MetricRate:
		return g.rateLocked(v.now)
	case achievement.MetricFirewallsCleared:
		return float64(g.stats.FirewallsCleared)
	case achievement.MetricGeneratorCount:
		return float64(g.gens.Count(target))
	case achievement.MetricOwnedGenerators:
		return float64(g.gens.OwnedTypes())
	case achievement.MetricMaxedSkills:
		return float64(g.prestige.MaxedSkills(g.data.Skills))
	}
	return 0
}
