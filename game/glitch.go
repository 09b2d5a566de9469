package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/events"
)

// minGlitchDelayFactor bounds how far lucky_hacker can shorten the spawn delay
const minGlitchDelayFactor = 0.1

// Glitch is a collectible Cryptos drop with a short lifetime
type Glitch struct {
	ID        uuid.UUID
	Reward    float64
	SpawnedAt time.Time
	ExpiresAt time.Time
	// AutoAt is when the auto-glitch bot grabs it; zero when the bot missed
	AutoAt time.Time
}

// NextGlitchDelay draws the wait before the next spawn
func (g *Game) NextGlitchDelay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	cfg := g.cfg.Glitch
	d := cfg.MinDelay
	if span := cfg.MaxDelay - cfg.MinDelay; span > 0 {
		d += time.Duration(g.rng.Float64() * float64(span))
	}
	factor := max(1-g.skillBonus(catalog.EffectGlitchDelay), minGlitchDelayFactor)
	return time.Duration(float64(d) * factor)
}

// SpawnGlitch creates a glitch unless one is already live
func (g *Game) SpawnGlitch() (Glitch, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if g.glitch != nil {
		return Glitch{}, false
	}

	cfg := g.cfg.Glitch
	reward := cfg.MinReward + g.rng.IntN(cfg.MaxReward-cfg.MinReward+1)
	gl := &Glitch{
		ID:        uuid.New(),
		Reward:    float64(reward) + g.skillBonus(catalog.EffectGlitchReward),
		SpawnedAt: now,
		ExpiresAt: now.Add(cfg.Lifetime),
	}
	if g.autoGlitch && g.rng.Float64() < g.autoChance {
		delay := cfg.AutoMinDelay
		if span := cfg.AutoMaxDelay - cfg.AutoMinDelay; span > 0 {
			delay += time.Duration(g.rng.IntN(int(span)))
		}
		gl.AutoAt = now.Add(delay)
	}
	g.glitch = gl

	g.log.Debug("glitch spawned", "id", gl.ID, "reward", gl.Reward, "auto", !gl.AutoAt.IsZero())
	g.emit(now, events.EventGlitchSpawned, "Glitch detected in the system!", gl.Reward, gl.ID)
	return *gl, true
}

// CollectGlitch captures the live glitch with the given id
func (g *Game) CollectGlitch(id uuid.UUID) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if g.glitch == nil || g.glitch.ID != id || !now.Before(g.glitch.ExpiresAt) {
		return 0, g.reject(now, "glitch", fmt.Errorf("%w: glitch %s", ErrNotActive, id))
	}
	return g.collectGlitch(now, "Glitch captured"), nil
}

// ActiveGlitch returns the live glitch, if any
func (g *Game) ActiveGlitch() (Glitch, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.glitch == nil {
		return Glitch{}, false
	}
	return *g.glitch, true
}

func (g *Game) collectGlitch(now time.Time, msg string) float64 {
	reward := g.glitch.Reward
	g.glitch = nil
	if err := g.ledger.DepositSecondary(reward); err != nil {
		g.log.Warn("glitch reward rejected", "error", err)
		return 0
	}
	g.dirty = true
	g.emit(now, events.EventGlitchCollected, fmt.Sprintf("%s: +%.0f Cryptos", msg, reward), reward, nil)
	g.evaluate(now)
	return reward
}

// tickGlitch resolves auto-collection and expiry
func (g *Game) tickGlitch(now time.Time) {
	if g.glitch == nil {
		return
	}
	if !g.glitch.AutoAt.IsZero() && !now.Before(g.glitch.AutoAt) && now.Before(g.glitch.ExpiresAt) {
		g.collectGlitch(now, "Auto-Glitch bot captured a glitch")
		return
	}
	if !now.Before(g.glitch.ExpiresAt) {
		g.glitch = nil
		g.emit(now, events.EventGlitchLost, "Glitch faded away", 0, nil)
	}
}
