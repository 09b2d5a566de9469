package game

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/minigame"
	"github.com/lixenwraith/cyber-clicker/persistence"
)

// TestFirewallPenaltyAndClear verifies the penalty halves the rate until the code is entered
func TestFirewallPenaltyAndClear(t *testing.T) {
	g, _ := newTestGame(t, stubRand{f: 0, i: 0}, noRewards)
	withBots(g, 10, nil)

	if _, err := g.FirewallKey('0'); !errors.Is(err, ErrNotActive) {
		t.Fatalf("FirewallKey without firewall = %v, want ErrNotActive", err)
	}

	if !g.RollFirewall() {
		t.Fatal("RollFirewall did not raise with a zero draw")
	}
	if g.RollFirewall() {
		t.Error("second firewall raised while one is active")
	}
	if r := g.Rate(); r != 5 {
		t.Errorf("penalized rate = %v, want 5", r)
	}
	code, _, active := g.Firewall()
	if !active || code != "0000" {
		t.Fatalf("firewall code=%q active=%v", code, active)
	}

	for i, want := range []minigame.KeyResult{minigame.KeyAccepted, minigame.KeyAccepted, minigame.KeyAccepted, minigame.KeyMatched} {
		res, err := g.FirewallKey('0')
		if err != nil || res != want {
			t.Fatalf("key %d = %v, %v; want %v", i, res, err, want)
		}
	}

	s := g.Summary()
	if s.Penalty || s.FirewallUp {
		t.Error("penalty still active after match")
	}
	if s.Bits != 10*300 {
		t.Errorf("reward = %v, want 300s of unpenalized rate", s.Bits)
	}
	if s.Stats.FirewallsEncountered != 1 || s.Stats.FirewallsCleared != 1 {
		t.Errorf("stats = %+v", s.Stats)
	}
	if !hasEvent(drain(g), events.EventFirewallCleared) {
		t.Error("no clear event")
	}
}

// TestFirewallMismatch verifies a wrong full code reports an error and resets input
func TestFirewallMismatch(t *testing.T) {
	g, _ := newTestGame(t, stubRand{}, noRewards)
	g.RollFirewall()
	drain(g)

	var last minigame.KeyResult
	for _, ch := range "1234" {
		last, _ = g.FirewallKey(ch)
	}
	if last != minigame.KeyMismatch {
		t.Fatalf("last key = %v, want KeyMismatch", last)
	}

	_, input, active := g.Firewall()
	if !active || input != "" {
		t.Errorf("after mismatch active=%v input=%q", active, input)
	}
	evs := drain(g)
	if !hasEvent(evs, events.EventFirewallMiss) || !hasEvent(evs, events.EventError) {
		t.Error("missing miss or error event")
	}
}

// TestFirewallChance verifies the roll threshold and the bypass skill
func TestFirewallChance(t *testing.T) {
	g, _ := newTestGame(t, stubRand{f: 0.09}, noRewards)
	if c := g.FirewallChance(); c != 0.1 {
		t.Errorf("base chance = %v, want 0.1", c)
	}

	withBots(g, 0, func(s *persistence.Snapshot) {
		s.Skills = map[string]uint64{"firewall_bypass": 3}
		s.SkillPoints = 1
	})
	if c := g.FirewallChance(); !approx(c, 0.07) {
		t.Errorf("bypassed chance = %v, want 0.07", c)
	}
	if g.RollFirewall() {
		t.Error("draw 0.09 raised a firewall at chance 0.07")
	}
}

// TestGlitchCollect verifies spawn, wrong-id rejection and collection
func TestGlitchCollect(t *testing.T) {
	g, _ := newTestGame(t, stubRand{}, noRewards)
	withBots(g, 0, func(s *persistence.Snapshot) {
		s.Skills = map[string]uint64{"crypto_magnet": 2}
		s.SkillPoints = 1
	})

	gl, ok := g.SpawnGlitch()
	if !ok {
		t.Fatal("SpawnGlitch failed")
	}
	if gl.Reward != 3 {
		t.Errorf("reward = %v, want 1 + 2 magnet", gl.Reward)
	}
	if _, again := g.SpawnGlitch(); again {
		t.Error("second glitch spawned while one is live")
	}

	if _, err := g.CollectGlitch(uuid.New()); !errors.Is(err, ErrNotActive) {
		t.Errorf("wrong id = %v, want ErrNotActive", err)
	}

	got, err := g.CollectGlitch(gl.ID)
	if err != nil || got != 3 {
		t.Fatalf("CollectGlitch = %v, %v", got, err)
	}
	if c := g.Summary().Cryptos; c != 3 {
		t.Errorf("cryptos = %v, want 3", c)
	}
	if _, live := g.ActiveGlitch(); live {
		t.Error("glitch still live after collect")
	}
}

// TestGlitchExpires verifies an uncollected glitch is lost after its lifetime
func TestGlitchExpires(t *testing.T) {
	g, clk := newTestGame(t, stubRand{}, noRewards)
	gl, _ := g.SpawnGlitch()
	drain(g)

	g.Tick(clk.Advance(11 * time.Second))

	if _, live := g.ActiveGlitch(); live {
		t.Fatal("glitch survived its lifetime")
	}
	if !hasEvent(drain(g), events.EventGlitchLost) {
		t.Error("no lost event")
	}
	if _, err := g.CollectGlitch(gl.ID); !errors.Is(err, ErrNotActive) {
		t.Errorf("collect after expiry = %v, want ErrNotActive", err)
	}
}

// TestAutoGlitch verifies the bot collects after its reaction delay
func TestAutoGlitch(t *testing.T) {
	g, clk := newTestGame(t, stubRand{f: 0}, noRewards)
	withBots(g, 0, func(s *persistence.Snapshot) { s.AutoGlitchEnabled = true })

	gl, _ := g.SpawnGlitch()
	if gl.AutoAt.IsZero() || gl.AutoAt.Sub(gl.SpawnedAt) != 100*time.Millisecond {
		t.Fatalf("auto at %v after spawn, want 100ms", gl.AutoAt.Sub(gl.SpawnedAt))
	}

	g.Tick(clk.Advance(50 * time.Millisecond))
	if _, live := g.ActiveGlitch(); !live {
		t.Fatal("collected before reaction delay")
	}

	g.Tick(clk.Advance(100 * time.Millisecond))
	if _, live := g.ActiveGlitch(); live {
		t.Fatal("auto-glitch did not collect")
	}
	if c := g.Summary().Cryptos; c != 1 {
		t.Errorf("cryptos = %v, want 1", c)
	}
}

// TestGlitchDelay verifies the spawn delay range and the lucky_hacker reduction
func TestGlitchDelay(t *testing.T) {
	g, _ := newTestGame(t, stubRand{f: 0.5}, noRewards)
	if d := g.NextGlitchDelay(); d != 120*time.Second {
		t.Errorf("delay = %v, want 120s", d)
	}

	withBots(g, 0, func(s *persistence.Snapshot) {
		s.Skills = map[string]uint64{"lucky_hacker": 3}
		s.SkillPoints = 1
	})
	d := g.NextGlitchDelay()
	if diff := d - 84*time.Second; diff < -time.Microsecond || diff > time.Microsecond {
		t.Errorf("delay = %v, want about 84s", d)
	}
}

// TestBreachWin verifies hacking every data node pays the breach reward
func TestBreachWin(t *testing.T) {
	g, _ := newTestGame(t, seededRand(), noRewards)
	withBots(g, 10, nil)

	if _, err := g.HackNode(0); !errors.Is(err, ErrNotActive) {
		t.Fatalf("HackNode without breach = %v, want ErrNotActive", err)
	}
	if err := g.StartBreach(); err != nil {
		t.Fatalf("StartBreach: %v", err)
	}
	if err := g.StartBreach(); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("second StartBreach = %v, want ErrAlreadyActive", err)
	}

	view, ok := g.Breach()
	if !ok {
		t.Fatal("no active breach")
	}
	for i, kind := range view.Nodes {
		if kind != minigame.NodeData {
			continue
		}
		if _, err := g.HackNode(i); err != nil {
			t.Fatalf("HackNode(%d): %v", i, err)
		}
	}

	if _, live := g.Breach(); live {
		t.Error("breach still active after all data hacked")
	}
	if bits := g.Summary().Bits; bits != 10*300 {
		t.Errorf("reward = %v, want 300s of rate", bits)
	}

	var ended bool
	for _, ev := range drain(g) {
		if ev.Type == events.EventBreachEnded && ev.Payload == true {
			ended = true
		}
	}
	if !ended {
		t.Error("no successful breach end event")
	}
}

// TestBreachTimeout verifies an unfinished breach fails on tick after its deadline
func TestBreachTimeout(t *testing.T) {
	g, clk := newTestGame(t, seededRand(), noRewards)
	if err := g.StartBreach(); err != nil {
		t.Fatal(err)
	}
	drain(g)

	g.Tick(clk.Advance(11 * time.Second))

	if _, live := g.Breach(); live {
		t.Fatal("breach survived its deadline")
	}
	var failed bool
	for _, ev := range drain(g) {
		if ev.Type == events.EventBreachEnded && ev.Payload == false {
			failed = true
		}
	}
	if !failed {
		t.Error("no failed breach end event")
	}
}
