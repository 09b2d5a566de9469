package game

import (
	"fmt"
	"time"

	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/minigame"
)

// BreachView is a read-only copy of the data breach grid
type BreachView struct {
	Nodes     [minigame.GridCells]minigame.NodeKind
	Revealed  [minigame.GridCells]bool
	Hacked    int
	Total     int
	Remaining time.Duration
}

// StartBreach opens a data breach grid
func (g *Game) StartBreach() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if g.breach != nil {
		return g.reject(now, "breach", ErrAlreadyActive)
	}
	g.breach = minigame.NewBreach(g.cfg.Breach.BreachConfig, g.rng, now)
	_, total := g.breach.Score()

	g.log.Debug("breach started", "data", total)
	g.emit(now, events.EventBreachStarted, fmt.Sprintf("Data breach initiated: extract %d nodes", total), 0, nil)
	return nil
}

// HackNode reveals cell i of the active breach
func (g *Game) HackNode(i int) (minigame.NodeKind, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if g.breach == nil {
		return minigame.NodeEmpty, ErrNotActive
	}

	kind, err := g.breach.Hack(i, now)
	if err != nil {
		g.tickBreach(now)
		return kind, err
	}
	g.emit(now, events.EventBreachNode, "", 0, kind)
	g.tickBreach(now)
	return kind, nil
}

// Breach returns a copy of the active breach grid
func (g *Game) Breach() (BreachView, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.breach == nil {
		return BreachView{}, false
	}
	return g.breachView(g.clock.Now()), true
}

func (g *Game) breachView(now time.Time) BreachView {
	var v BreachView
	for i := range minigame.GridCells {
		v.Nodes[i], v.Revealed[i] = g.breach.Node(i)
	}
	v.Hacked, v.Total = g.breach.Score()
	v.Remaining = g.breach.Remaining(now)
	return v
}

// tickBreach pays out a won breach and closes a lost one
func (g *Game) tickBreach(now time.Time) {
	if g.breach == nil {
		return
	}
	switch g.breach.Check(now) {
	case minigame.BreachWon:
		g.breach = nil
		reward := g.rateLocked(now) * g.cfg.Breach.Reward.Seconds()
		if reward > 0 {
			g.deposit(reward, "breach")
		}
		g.dirty = true
		g.log.Info("breach won", "reward", reward)
		g.emit(now, events.EventBreachEnded, fmt.Sprintf("Breach successful! +%.0f Bits", reward), reward, true)
		g.evaluate(now)
	case minigame.BreachLost:
		g.breach = nil
		g.log.Info("breach lost")
		g.emit(now, events.EventBreachEnded, "Breach failed: connection traced", 0, false)
	}
}
