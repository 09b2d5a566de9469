package catalog

import (
	"fmt"
	"math"
)

// Wallet is the spending side of the ledger used by purchases
type Wallet interface {
	Current() float64
	Withdraw(amount float64) error
}

// Owned is the per-player state of one generator
type Owned struct {
	Count uint64
	Cost  float64
}

// Generators tracks owned counts and current costs for every definition
type Generators struct {
	defs  []Generator
	index map[string]int
	owned []Owned
}

// NewGenerators creates the owned set with every count at zero and cost at base
func NewGenerators(defs []Generator) *Generators {
	g := &Generators{
		defs:  append([]Generator(nil), defs...),
		index: make(map[string]int, len(defs)),
		owned: make([]Owned, len(defs)),
	}
	for i, d := range g.defs {
		g.index[d.ID] = i
	}
	g.ResetAll()
	return g
}

// Definitions returns generator templates in display order
func (g *Generators) Definitions() []Generator {
	return g.defs
}

// Get returns the definition and owned state for id
func (g *Generators) Get(id string) (Generator, Owned, bool) {
	i, ok := g.index[id]
	if !ok {
		return Generator{}, Owned{}, false
	}
	return g.defs[i], g.owned[i], true
}

// Count returns the owned count of id, zero when unknown
func (g *Generators) Count(id string) uint64 {
	if i, ok := g.index[id]; ok {
		return g.owned[i].Count
	}
	return 0
}

// Cost returns the current price of id
func (g *Generators) Cost(id string) (float64, bool) {
	if i, ok := g.index[id]; ok {
		return g.owned[i].Cost, true
	}
	return 0, false
}

// Purchase buys one unit of id from w
// On failure nothing changes; on success the cost compounds from the price just paid
func (g *Generators) Purchase(id string, w Wallet) error {
	i, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: generator %q", ErrUnknownItem, id)
	}
	o := &g.owned[i]
	if err := w.Withdraw(o.Cost); err != nil {
		return fmt.Errorf("buy %s: %w", id, err)
	}
	o.Count++
	o.Cost = math.Ceil(o.Cost * g.defs[i].CostGrowth)
	return nil
}

// ResetAll zeroes every count and restores base costs
func (g *Generators) ResetAll() {
	for i, d := range g.defs {
		g.owned[i] = Owned{Count: 0, Cost: d.BaseCost}
	}
}

// SetCount restores a persisted count; cost is rebuilt from the closed form
func (g *Generators) SetCount(id string, count uint64) error {
	i, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: generator %q", ErrUnknownItem, id)
	}
	d := g.defs[i]
	g.owned[i] = Owned{
		Count: count,
		Cost:  math.Ceil(d.BaseCost * math.Pow(d.CostGrowth, float64(count))),
	}
	return nil
}

// Counts returns a copy of all owned counts keyed by id
func (g *Generators) Counts() map[string]uint64 {
	out := make(map[string]uint64, len(g.defs))
	for i, d := range g.defs {
		out[d.ID] = g.owned[i].Count
	}
	return out
}

// OwnedTypes returns how many generator types have at least one unit
func (g *Generators) OwnedTypes() int {
	n := 0
	for _, o := range g.owned {
		if o.Count > 0 {
			n++
		}
	}
	return n
}

// BaseRate is the unmodified passive rate: sum of rate times count
func (g *Generators) BaseRate() float64 {
	var sum float64
	for i, d := range g.defs {
		sum += d.Rate * float64(g.owned[i].Count)
	}
	return sum
}

// ClickBase is the unmodified click power: one plus sum of click bonus times count
func (g *Generators) ClickBase() float64 {
	sum := 1.0
	for i, d := range g.defs {
		sum += d.ClickBonus * float64(g.owned[i].Count)
	}
	return sum
}
