package game

import (
	"fmt"

	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/prestige"
)

func (g *Game) discount() float64 {
	return g.skillBonus(catalog.EffectPrestigeDiscount)
}

// PotentialLevel returns the root access level a reboot would reach now
func (g *Game) PotentialLevel() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return prestige.PotentialLevel(g.ledger.Lifetime(), g.discount())
}

// Reboot performs a prestige reset to the potential level
// Not eligible is reported and leaves every field untouched
func (g *Game) Reboot() (prestige.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	potential := prestige.PotentialLevel(g.ledger.Lifetime(), g.discount())
	res, err := g.prestige.Reset(potential, g.ledger, g.gens, g.mods)
	if err != nil {
		return res, g.reject(now, "reboot", err)
	}
	g.stats.RebootCount++
	g.lastTick = now

	g.dirty = true
	g.log.Info("reboot", "from", res.From, "to", res.To, "gained", res.Gained)
	g.emit(now, events.EventReboot,
		fmt.Sprintf("System rebooted. Root access level %d (+%d)", res.To, res.Gained),
		float64(res.Gained), res)
	g.evaluate(now)
	g.updateMetrics(now)
	return res, nil
}
