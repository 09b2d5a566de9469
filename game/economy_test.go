package game

import (
	"errors"
	"testing"
	"time"

	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/ledger"
	"github.com/lixenwraith/cyber-clicker/persistence"
	"github.com/lixenwraith/cyber-clicker/prestige"
)

// TestClickThenPurchase verifies the fresh-game purchase walkthrough
func TestClickThenPurchase(t *testing.T) {
	g, _ := newTestGame(t, stubRand{}, nil)

	for range 10 {
		g.Click()
	}
	if s := g.Summary(); s.Bits != 10 || s.Stats.TotalClicks != 10 {
		t.Fatalf("after 10 clicks bits=%v clicks=%d", s.Bits, s.Stats.TotalClicks)
	}

	err := g.Purchase("autoClicker")
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("Purchase = %v, want ErrInsufficientFunds", err)
	}
	if g.Summary().Bits != 10 {
		t.Errorf("failed purchase changed bits")
	}
	if !hasEvent(drain(g), events.EventRejected) {
		t.Error("no rejection event")
	}

	for range 10 {
		g.Click()
	}
	if err := g.Purchase("autoClicker"); err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	_, owned, _ := g.gens.Get("autoClicker")
	if g.Summary().Bits != 5 || owned.Count != 1 || owned.Cost != 18 {
		t.Errorf("bits=%v count=%d cost=%v, want 5/1/18", g.Summary().Bits, owned.Count, owned.Cost)
	}
}

// TestTickCreditsMeasuredDelta verifies accrual uses the wall-clock delta
func TestTickCreditsMeasuredDelta(t *testing.T) {
	g, clk := newTestGame(t, stubRand{}, noRewards)
	withBots(g, 2, nil)

	got := g.Tick(clk.Advance(1500 * time.Millisecond))
	if got != 3 {
		t.Errorf("Tick credited %v, want 3", got)
	}
	if again := g.Tick(clk.Now()); again != 0 {
		t.Errorf("zero-delta tick credited %v", again)
	}

	// Backwards clock credits nothing
	clk.Set(t0.Add(-time.Hour))
	if back := g.Tick(clk.Now()); back != 0 {
		t.Errorf("backwards tick credited %v", back)
	}
	if bits := g.Summary().Bits; bits != 3 {
		t.Errorf("bits = %v, want 3", bits)
	}
}

// TestPurchaseUnknown verifies unknown generator ids are rejected
func TestPurchaseUnknown(t *testing.T) {
	g, _ := newTestGame(t, stubRand{}, nil)
	if err := g.Purchase("flux_capacitor"); !errors.Is(err, catalog.ErrUnknownItem) {
		t.Errorf("Purchase = %v, want ErrUnknownItem", err)
	}
}

// TestBlackMarket verifies each item kind applies its effect and is paid in Cryptos
func TestBlackMarket(t *testing.T) {
	g, _ := newTestGame(t, stubRand{}, noRewards)
	withBots(g, 10, func(s *persistence.Snapshot) { s.Cryptos = 1000 })

	steps := []struct {
		id    string
		check func(t *testing.T, s Summary)
	}{
		{"warp", func(t *testing.T, s Summary) {
			if s.Bits != 36000 {
				t.Errorf("warp bits = %v, want 36000", s.Bits)
			}
		}},
		{"boost", func(t *testing.T, s Summary) {
			if s.Rate != 20 {
				t.Errorf("boosted rate = %v, want 20", s.Rate)
			}
		}},
		{"clickMultiplier", func(t *testing.T, s Summary) {
			if s.ClickPower != 6 {
				t.Errorf("click power = %v, want 6", s.ClickPower)
			}
		}},
		{"core", func(t *testing.T, s Summary) {
			if !approx(s.Permanent, 1.1) {
				t.Errorf("permanent = %v, want 1.1", s.Permanent)
			}
		}},
		{"offlineBoost", func(t *testing.T, s Summary) {
			if s.Offline != 1.5 {
				t.Errorf("offline = %v, want 1.5", s.Offline)
			}
		}},
		{"autoGlitch", func(t *testing.T, s Summary) {
			if !s.AutoGlitch {
				t.Error("auto glitch not unlocked")
			}
		}},
	}

	spent := 0.0
	for _, st := range steps {
		t.Run(st.id, func(t *testing.T) {
			item, _ := g.Catalog().MarketItem(st.id)
			if err := g.BuyMarketItem(st.id); err != nil {
				t.Fatalf("BuyMarketItem: %v", err)
			}
			spent += item.Cost
			s := g.Summary()
			if s.Cryptos != 1000-spent {
				t.Errorf("cryptos = %v, want %v", s.Cryptos, 1000-spent)
			}
			st.check(t, s)
		})
	}

	if err := g.BuyMarketItem("autoGlitch"); !errors.Is(err, ErrAlreadyOwned) {
		t.Errorf("second autoGlitch = %v, want ErrAlreadyOwned", err)
	}
	if err := g.BuyMarketItem("nope"); !errors.Is(err, catalog.ErrUnknownItem) {
		t.Errorf("unknown item = %v, want ErrUnknownItem", err)
	}
}

// TestBlackMarketInsufficient verifies a failed Cryptos spend changes nothing
func TestBlackMarketInsufficient(t *testing.T) {
	g, _ := newTestGame(t, stubRand{}, noRewards)
	withBots(g, 1, func(s *persistence.Snapshot) { s.Cryptos = 1 })

	if err := g.BuyMarketItem("boost"); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("BuyMarketItem = %v, want ErrInsufficientFunds", err)
	}
	if s := g.Summary(); s.Cryptos != 1 || s.RateBoosts != 0 {
		t.Errorf("cryptos=%v boosts=%d after failed buy", s.Cryptos, s.RateBoosts)
	}
}

// TestBuySkill verifies skill purchases, caps and effects
func TestBuySkill(t *testing.T) {
	g, _ := newTestGame(t, stubRand{}, noRewards)
	withBots(g, 10, func(s *persistence.Snapshot) {
		s.RootAccessLevel = 8
		s.SkillPoints = 8
	})

	if err := g.BuySkill("click_efficiency"); err != nil {
		t.Fatalf("BuySkill: %v", err)
	}
	if p := g.ClickPower(); p != 1.5 {
		t.Errorf("click power = %v, want 1.5", p)
	}

	if err := g.BuySkill("gps_overclock"); err != nil {
		t.Fatalf("BuySkill: %v", err)
	}
	// 10 bots, level 8 bonus x1.8, overclock x1.1
	if r := g.Rate(); !approx(r, 10*1.8*1.1) {
		t.Errorf("rate = %v, want %v", r, 10*1.8*1.1)
	}

	if err := g.BuySkill("prestige_master"); !errors.Is(err, prestige.ErrInsufficientPoints) {
		t.Errorf("BuySkill = %v, want ErrInsufficientPoints", err)
	}

	for range 4 {
		if err := g.BuySkill("click_efficiency"); err != nil {
			t.Fatalf("BuySkill: %v", err)
		}
	}
	if err := g.BuySkill("click_efficiency"); !errors.Is(err, prestige.ErrMaxLevel) {
		t.Errorf("BuySkill past max = %v, want ErrMaxLevel", err)
	}
	if s := g.Summary(); s.SkillPoints != 1 {
		t.Errorf("skill points = %d, want 1", s.SkillPoints)
	}
}

// TestAchievementRewardsSamePass verifies a reward can unlock a later achievement in the same evaluation
func TestAchievementRewardsSamePass(t *testing.T) {
	g, _ := newTestGame(t, stubRand{}, nil)
	withBots(g, 0, func(s *persistence.Snapshot) {
		s.Bits = 999_999.5
		s.LifetimeBits = 999_999.5
	})

	g.Click()

	if !g.achievements.Unlocked("millionaire") || !g.achievements.Unlocked("crypto_miner") {
		t.Fatalf("millionaire=%v crypto_miner=%v", g.achievements.Unlocked("millionaire"), g.achievements.Unlocked("crypto_miner"))
	}
	if c := g.Summary().Cryptos; c != 15 {
		t.Errorf("cryptos = %v, want 10 + 5", c)
	}

	evs := drain(g)
	if !hasEvent(evs, events.EventAchievement) || !hasEvent(evs, events.EventStory) {
		t.Error("missing achievement or story events")
	}
}
