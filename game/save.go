package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/cyber-clicker/achievement"
	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/modifier"
	"github.com/lixenwraith/cyber-clicker/persistence"
	"github.com/lixenwraith/cyber-clicker/prestige"
)

// Snapshot projects the current state into the persisted shape
func (g *Game) Snapshot() persistence.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(g.clock.Now())
}

func (g *Game) snapshotLocked(now time.Time) persistence.Snapshot {
	ps := g.prestige.State()

	s := persistence.Snapshot{
		Version:             persistence.CurrentVersion,
		Bits:                g.ledger.Current(),
		LifetimeBits:        g.ledger.Lifetime(),
		Cryptos:             g.ledger.Secondary(),
		PermanentMultiplier: g.mods.Permanent(),
		OfflineMultiplier:   g.mods.Offline(),
		SkillPoints:         ps.SkillPoints,
		Skills:              ps.Skills,
		RootAccessLevel:     ps.Level,
		Upgrades:            make(map[string]persistence.Upgrade),
		Statistics:          g.stats,
		TutorialSeen:        g.tutorialSeen,
		AutoGlitchEnabled:   g.autoGlitch,
		LastSaveTime:        now.UnixMilli(),
	}
	s.Statistics.PlayTimeSeconds = uint64(g.playTime / time.Second)

	for id, n := range g.gens.Counts() {
		s.Upgrades[id] = persistence.Upgrade{Count: n}
	}
	for _, e := range g.achievements.Entries() {
		s.Achievements = append(s.Achievements, persistence.Achievement{ID: e.ID, Unlocked: e.Unlocked})
	}
	for _, e := range g.story.Entries() {
		s.StoryEvents = append(s.StoryEvents, persistence.StoryEvent{ID: e.ID, Triggered: e.Unlocked})
	}
	s.ActiveBoosts = []persistence.RateBoost{}
	for _, b := range g.mods.RateBoosts(now) {
		s.ActiveBoosts = append(s.ActiveBoosts, persistence.RateBoost{Multiplier: b.Multiplier, EndTime: b.ExpiresAt.UnixMilli()})
	}
	s.ActiveClickBoosts = []persistence.ClickBoost{}
	for _, b := range g.mods.ClickBoosts(now) {
		s.ActiveClickBoosts = append(s.ActiveClickBoosts, persistence.ClickBoost{ClickMultiplier: b.Multiplier, EndTime: b.ExpiresAt.UnixMilli()})
	}
	return s
}

// Restore replaces the whole state with s
// Expired boosts are dropped, skill points are migrated and the accrual reference moves to now
func (g *Game) Restore(s persistence.Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restoreLocked(s, g.clock.Now())
}

func (g *Game) restoreLocked(s persistence.Snapshot, now time.Time) {
	g.resetLocked(now)
	s.DropExpired(now)

	g.ledger.Restore(s.Bits, s.LifetimeBits, s.Cryptos)
	for id, u := range s.Upgrades {
		if err := g.gens.SetCount(id, u.Count); err != nil {
			g.log.Warn("unknown generator in save", "id", id)
		}
	}

	rate := make([]modifier.Boost, 0, len(s.ActiveBoosts))
	for _, b := range s.ActiveBoosts {
		rate = append(rate, modifier.Boost{Multiplier: b.Multiplier, ExpiresAt: time.UnixMilli(b.EndTime)})
	}
	click := make([]modifier.Boost, 0, len(s.ActiveClickBoosts))
	for _, b := range s.ActiveClickBoosts {
		click = append(click, modifier.Boost{Multiplier: b.ClickMultiplier, ExpiresAt: time.UnixMilli(b.EndTime)})
	}
	g.mods.Restore(s.PermanentMultiplier, s.OfflineMultiplier, rate, click, now)

	g.prestige.Restore(prestige.State{Level: s.RootAccessLevel, SkillPoints: s.SkillPoints, Skills: s.Skills})
	if grant := g.prestige.MigrateSkillPoints(g.data.Skills); grant > 0 {
		g.log.Info("skill points migrated", "granted", grant)
	}
	g.applySkills()

	entries := make([]achievement.Entry, 0, len(s.Achievements))
	for _, a := range s.Achievements {
		entries = append(entries, achievement.Entry{ID: a.ID, Unlocked: a.Unlocked})
	}
	g.achievements.Restore(entries)
	entries = entries[:0]
	for _, e := range s.StoryEvents {
		entries = append(entries, achievement.Entry{ID: e.ID, Unlocked: e.Triggered})
	}
	g.story.Restore(entries)

	g.stats = s.Statistics
	if g.stats.SessionStartTime == 0 {
		g.stats.SessionStartTime = now.UnixMilli()
	}
	g.playTime = time.Duration(s.Statistics.PlayTimeSeconds) * time.Second
	g.tutorialSeen = s.TutorialSeen
	g.autoGlitch = s.AutoGlitchEnabled
	g.updateMetrics(now)
}

// CatchUp credits offline progress for the absence since lastSave
// Nothing is credited at or below the threshold; the absence is capped
func (g *Game) CatchUp(lastSave time.Time) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.catchUpLocked(g.clock.Now(), lastSave)
}

func (g *Game) catchUpLocked(now, lastSave time.Time) float64 {
	if lastSave.IsZero() {
		return 0
	}
	elapsed := now.Sub(lastSave)
	if elapsed <= g.cfg.Offline.Threshold {
		return 0
	}
	elapsed = min(elapsed, g.cfg.Offline.Cap)

	amount := g.rateLocked(now) * elapsed.Seconds() * g.offlineMultiplier()
	if amount <= 0 || !g.deposit(amount, "offline") {
		return 0
	}

	g.log.Info("offline progress", "elapsed", elapsed, "amount", amount)
	g.emit(now, events.EventOfflineProgress,
		fmt.Sprintf("Welcome back! Offline for %s, earned %.0f Bits", elapsed.Round(time.Second), amount),
		amount, elapsed)
	g.evaluate(now)
	g.updateMetrics(now)
	return amount
}

// offlineMultiplier is a straight scalar on the rate: purchases plus the offline skill
func (g *Game) offlineMultiplier() float64 {
	return g.mods.Offline() + g.skillBonus(catalog.EffectOffline)
}

// Load restores from store and credits offline progress
// A missing save starts fresh; a corrupt save is reported and also starts fresh
func (g *Game) Load(ctx context.Context, store persistence.Store) error {
	snap, err := persistence.LoadSnapshot(ctx, store)

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()

	switch {
	case errors.Is(err, persistence.ErrNoSave):
		g.log.Info("no save found, starting fresh")
		g.resetLocked(now)
		return nil
	case errors.Is(err, persistence.ErrInvalidFormat):
		g.log.Warn("corrupt save, starting fresh", "error", err)
		g.emit(now, events.EventError, "Save data corrupted. Starting a new session", 0, nil)
		g.resetLocked(now)
		return nil
	case err != nil:
		return fmt.Errorf("load save: %w", err)
	}

	g.restoreLocked(snap, now)
	g.catchUpLocked(now, snap.SavedAt())
	g.evaluate(now)
	g.log.Info("save loaded", "bits", snap.Bits, "level", snap.RootAccessLevel)
	return nil
}

// Export returns the portable save string
func (g *Game) Export() (string, error) {
	return persistence.Export(g.Snapshot())
}

// Import replaces the state from a save string
// On any validation failure the current state is left untouched
func (g *Game) Import(encoded string) error {
	snap, err := persistence.Import(encoded)

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()

	if err != nil {
		g.log.Warn("import rejected", "error", err)
		g.emit(now, events.EventError, "Import failed: invalid save string", 0, nil)
		return err
	}

	g.restoreLocked(snap, now)
	g.dirty = true
	g.emit(now, events.EventImported, "Save imported", 0, nil)
	g.evaluate(now)
	return nil
}

// Wipe discards all progress
func (g *Game) Wipe() {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()
	g.resetLocked(now)
	g.dirty = true
	g.log.Info("hard reset")
}
