package game

import (
	"fmt"
	"time"

	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/minigame"
)

// FirewallChance is the per-roll encounter probability after skills
func (g *Game) FirewallChance() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.firewallChance()
}

func (g *Game) firewallChance() float64 {
	return g.cfg.Firewall.Chance * max(1-g.skillBonus(catalog.EffectFirewallChance), 0)
}

// RollFirewall may raise a firewall, engaging the rate penalty
// Returns whether one was raised
func (g *Game) RollFirewall() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.firewall != nil || g.rng.Float64() >= g.firewallChance() {
		return false
	}
	now := g.clock.Now()
	g.raiseFirewall(now)
	return true
}

// raiseFirewall engages the penalty with a fresh code
func (g *Game) raiseFirewall(now time.Time) {
	g.firewall = minigame.NewFirewall(g.rng)
	g.mods.SetPenalty(true)
	g.stats.FirewallsEncountered++

	g.log.Info("firewall raised", "code", g.firewall.Code())
	g.emit(now, events.EventFirewallSpawned, "FIREWALL DETECTED! GPS halved until bypassed", 0, g.firewall.Code())
	g.updateMetrics(now)
}

// Firewall returns the code and typed input of the active firewall
func (g *Game) Firewall() (code, input string, active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.firewall == nil {
		return "", "", false
	}
	return g.firewall.Code(), g.firewall.Input(), true
}

// FirewallKey feeds one character to the active firewall
// A full match lifts the penalty and credits the unpenalized rate for the reward window
func (g *Game) FirewallKey(ch rune) (minigame.KeyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if g.firewall == nil {
		return minigame.KeyIgnored, ErrNotActive
	}

	res := g.firewall.Key(ch)
	switch res {
	case minigame.KeyAccepted:
		g.emit(now, events.EventFirewallKey, "", 0, ch)
	case minigame.KeyMismatch:
		g.emit(now, events.EventFirewallMiss, "Access denied: wrong code", 0, nil)
		g.emit(now, events.EventError, "Firewall code rejected", 0, nil)
	case minigame.KeyMatched:
		g.clearFirewall(now)
	}
	return res, nil
}

// FirewallBackspace deletes the last typed character
func (g *Game) FirewallBackspace() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.firewall == nil {
		return ErrNotActive
	}
	g.firewall.Backspace()
	return nil
}

func (g *Game) clearFirewall(now time.Time) {
	g.firewall = nil
	g.mods.SetPenalty(false)
	g.stats.FirewallsCleared++

	reward := g.rateLocked(now) * g.cfg.Firewall.Reward.Seconds()
	if reward > 0 {
		g.deposit(reward, "firewall")
	}

	g.dirty = true
	g.log.Info("firewall cleared", "reward", reward)
	g.emit(now, events.EventFirewallCleared, fmt.Sprintf("Firewall bypassed! +%.0f Bits", reward), reward, nil)
	g.evaluate(now)
	g.updateMetrics(now)
}
