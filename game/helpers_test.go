package game

import (
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/clock"
	"github.com/lixenwraith/cyber-clicker/config"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/persistence"
)

var t0 = time.UnixMilli(1_700_000_000_000)

// stubRand returns fixed draws
type stubRand struct {
	f float64
	i int
}

func (r stubRand) IntN(n int) int   { return r.i % n }
func (r stubRand) Float64() float64 { return r.f }

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// noRewards strips achievements and story events so balances stay exact
func noRewards(d *catalog.Data) {
	d.Achievements = nil
	d.Story = nil
}

func newTestGame(t *testing.T, r Rand, mutate func(*catalog.Data)) (*Game, *clock.Mock) {
	t.Helper()
	data, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if mutate != nil {
		mutate(data)
	}
	clk := clock.NewMock(t0)
	g, err := New(Options{
		Config:  config.Default(),
		Catalog: data,
		Clock:   clk,
		Rand:    r,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g, clk
}

// withBots restores a snapshot owning n Script Bots (1 Bit/s each)
func withBots(g *Game, n uint64, edit func(*persistence.Snapshot)) {
	s := persistence.Fresh(g.Now())
	s.Upgrades["bot"] = persistence.Upgrade{Count: n}
	if edit != nil {
		edit(&s)
	}
	g.Restore(s)
}

func drain(g *Game) []events.GameEvent {
	return g.Events().Consume()
}

func hasEvent(evs []events.GameEvent, t events.EventType) bool {
	for _, ev := range evs {
		if ev.Type == t {
			return true
		}
	}
	return false
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}
