package game

import (
	"fmt"
	"time"

	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/rate"
)

func (g *Game) rateLocked(now time.Time) float64 {
	return rate.Compute(g.gens, g.mods, g.prestige.Level(), now)
}

func (g *Game) clickPowerLocked(now time.Time) float64 {
	return rate.ClickPower(g.gens, g.mods, now)
}

// Rate returns the effective Bits per second
func (g *Game) Rate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rateLocked(g.clock.Now())
}

// ClickPower returns the Bits credited per click
func (g *Game) ClickPower() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clickPowerLocked(g.clock.Now())
}

// Click credits click power immediately and counts the click
func (g *Game) Click() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	power := g.clickPowerLocked(now)
	if !g.deposit(power, "click") {
		return 0
	}
	g.stats.TotalClicks++
	g.emit(now, events.EventClick, "", power, nil)
	g.evaluate(now)
	return power
}

// Tick credits rate times the wall-clock delta since the previous tick
// Expired mini-games are resolved here; a rejected deposit is logged and the tick carries on
func (g *Game) Tick(now time.Time) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	elapsed := now.Sub(g.lastTick)
	g.lastTick = now
	g.statTicks.Add(1)
	if elapsed <= 0 {
		return 0
	}
	g.playTime += elapsed

	var credited float64
	amount := g.rateLocked(now) * elapsed.Seconds()
	if amount > 0 && g.deposit(amount, "tick") {
		credited = amount
	}

	g.tickGlitch(now)
	g.tickBreach(now)
	g.evaluate(now)
	g.updateMetrics(now)
	return credited
}

// ResetTick moves the accrual reference to now without crediting the gap
func (g *Game) ResetTick(now time.Time) {
	g.mu.Lock()
	g.lastTick = now
	g.mu.Unlock()
}

// Purchase buys one unit of generator id with Bits
func (g *Game) Purchase(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	def, owned, ok := g.gens.Get(id)
	if !ok {
		return g.reject(now, "purchase", fmt.Errorf("%w: generator %s", catalog.ErrUnknownItem, id))
	}
	if err := g.gens.Purchase(id, g.ledger); err != nil {
		return g.reject(now, "purchase "+def.Name, err)
	}

	g.dirty = true
	g.log.Debug("generator purchased", "id", id, "cost", owned.Cost, "count", owned.Count+1)
	g.emit(now, events.EventPurchase, "Purchased "+def.Name, owned.Cost, id)
	g.evaluate(now)
	g.updateMetrics(now)
	return nil
}

// BuyMarketItem spends Cryptos on a black market item and applies it
func (g *Game) BuyMarketItem(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	item, ok := g.data.MarketItem(id)
	if !ok {
		return g.reject(now, "market", fmt.Errorf("%w: market item %s", catalog.ErrUnknownItem, id))
	}
	if item.Kind == catalog.MarketAutoGlitch && g.autoGlitch {
		return g.reject(now, "market "+item.Name, fmt.Errorf("%w: %s", ErrAlreadyOwned, id))
	}
	if err := g.ledger.WithdrawSecondary(item.Cost); err != nil {
		return g.reject(now, "market "+item.Name, err)
	}

	switch item.Kind {
	case catalog.MarketRateBoost:
		g.mods.AddRateBoost(item.Multiplier, now, item.Duration)
	case catalog.MarketClickBoost:
		g.mods.AddClickBoost(item.Multiplier, now, item.Duration)
	case catalog.MarketInstant:
		g.deposit(g.rateLocked(now)*item.Duration.Seconds(), "market")
	case catalog.MarketPermanent:
		g.mods.AddPermanent(item.Delta)
	case catalog.MarketOffline:
		g.mods.AddOffline(item.Delta)
	case catalog.MarketAutoGlitch:
		g.autoGlitch = true
	}

	g.dirty = true
	g.log.Info("market item bought", "id", id, "kind", item.Kind)
	g.emit(now, events.EventMarketPurchase, "Acquired "+item.Name, item.Cost, id)
	g.evaluate(now)
	g.updateMetrics(now)
	return nil
}

// BuySkill spends skill points on one level of skill id
func (g *Game) BuySkill(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	skill, ok := g.data.Skill(id)
	if !ok {
		return g.reject(now, "skill", fmt.Errorf("%w: skill %s", catalog.ErrUnknownItem, id))
	}
	level, err := g.prestige.BuySkill(skill)
	if err != nil {
		return g.reject(now, "skill "+skill.Name, err)
	}
	g.applySkills()

	g.dirty = true
	g.emit(now, events.EventSkillPurchase, fmt.Sprintf("%s upgraded to level %d", skill.Name, level), float64(level), id)
	g.evaluate(now)
	g.updateMetrics(now)
	return nil
}
