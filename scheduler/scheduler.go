// Package scheduler drives the game's recurring jobs: accrual, autosave, firewall rolls and glitch spawns
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/cyber-clicker/clock"
	"github.com/lixenwraith/cyber-clicker/config"
	"github.com/lixenwraith/cyber-clicker/core"
	"github.com/lixenwraith/cyber-clicker/game"
	"github.com/lixenwraith/cyber-clicker/persistence"
	"github.com/lixenwraith/cyber-clicker/status"
)

const (
	// saveTimeout bounds one store write
	saveTimeout = 5 * time.Second
	// fallbackGlitchDelay re-arms the glitch timer when the delay itself could not be computed
	fallbackGlitchDelay = time.Minute
)

// Game is the part of the controller the jobs drive
type Game interface {
	Tick(now time.Time) float64
	ResetTick(now time.Time)
	RollFirewall() bool
	SpawnGlitch() (game.Glitch, bool)
	NextGlitchDelay() time.Duration
	Snapshot() persistence.Snapshot
	Dirty() bool
	ClearDirty()
}

// Saver writes snapshots; *persistence.Saver satisfies it
type Saver interface {
	Request(ctx context.Context, snap persistence.Snapshot) (bool, error)
	Flush(ctx context.Context, snap persistence.Snapshot) error
}

// Scheduler owns the single accrual loop
// Start while running is a no-op and Restart waits for the previous loop to exit,
// so two loops never credit concurrently
type Scheduler struct {
	game  Game
	saver Saver
	clock clock.Provider
	log   *slog.Logger

	tickInterval     time.Duration
	autosaveInterval time.Duration
	firewallInterval time.Duration

	// Control: mu serializes lifecycle transitions; each run owns its stop channel and WaitGroup
	mu      sync.Mutex
	running atomic.Bool
	stop    chan struct{}
	wg      *sync.WaitGroup

	// Cached metric pointers
	statLive   *atomic.Bool
	statLoops  *atomic.Int64
	statPanics *atomic.Int64
}

// New creates a stopped scheduler; saver may be nil to disable saving
func New(g Game, saver Saver, cfg *config.Config, clk clock.Provider, reg *status.Registry, log *slog.Logger) *Scheduler {
	if cfg == nil {
		cfg = config.Default()
	}
	if clk == nil {
		clk = clock.New()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		game:             g,
		saver:            saver,
		clock:            clk,
		log:              log,
		tickInterval:     cfg.Tick.Interval,
		autosaveInterval: cfg.Autosave.Interval,
		firewallInterval: cfg.Firewall.Interval,
		statLive:         reg.Bools.Get(status.KeySchedulerLive),
		statLoops:        reg.Ints.Get(status.KeySchedulerLoops),
		statPanics:       reg.Ints.Get(status.KeyJobPanics),
	}
}

// Running reports whether a loop is active
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Start launches the loop unless one is already running
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.CompareAndSwap(false, true) {
		return
	}
	stop := make(chan struct{})
	wg := &sync.WaitGroup{}
	s.stop, s.wg = stop, wg

	wg.Add(1)
	s.statLive.Store(true)
	// Use core.Go for safe execution with centralized crash handling
	core.Go(func() { s.loop(stop, wg) })
	s.log.Debug("scheduler started")
}

// Stop halts the loop, waits for it to exit and flushes a final save
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.CompareAndSwap(true, false) {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.statLive.Store(false)
	s.flush()
	s.log.Debug("scheduler stopped")
}

// Restart cancels the current loop before starting a fresh one
// Used after reboot, import and wipe so timers re-arm against the new state
func (s *Scheduler) Restart() {
	s.Stop()
	s.Start()
}

func (s *Scheduler) loop(stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	s.statLoops.Add(1)
	defer s.statLoops.Add(-1)

	// Offline catch-up already covered the gap up to now
	s.run("reset tick", func() { s.game.ResetTick(s.clock.Now()) })

	tick := time.NewTicker(s.tickInterval)
	defer tick.Stop()
	autosave := time.NewTicker(s.autosaveInterval)
	defer autosave.Stop()
	firewall := time.NewTicker(s.firewallInterval)
	defer firewall.Stop()
	glitch := time.NewTimer(s.nextGlitch())
	defer glitch.Stop()

	for {
		select {
		case <-stop:
			return

		case <-tick.C:
			s.run("tick", func() {
				s.game.Tick(s.clock.Now())
				s.requestSave()
			})

		case <-autosave.C:
			s.run("autosave", s.flush)

		case <-firewall.C:
			s.run("firewall", func() { s.game.RollFirewall() })

		case <-glitch.C:
			s.run("glitch", func() { s.game.SpawnGlitch() })
			glitch.Reset(s.nextGlitch())
		}
	}
}

// run executes one job, logging and counting a panic instead of ending the loop
func (s *Scheduler) run(job string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.statPanics.Add(1)
			s.log.Error("scheduler job panicked", "job", job, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (s *Scheduler) nextGlitch() time.Duration {
	d := fallbackGlitchDelay
	s.run("glitch delay", func() { d = s.game.NextGlitchDelay() })
	if d <= 0 {
		d = fallbackGlitchDelay
	}
	return d
}

// requestSave writes a throttled save when the game has unsaved changes
func (s *Scheduler) requestSave() {
	if s.saver == nil || !s.game.Dirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	saved, err := s.saver.Request(ctx, s.game.Snapshot())
	if saved && err == nil {
		s.game.ClearDirty()
	}
}

func (s *Scheduler) flush() {
	if s.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.saver.Flush(ctx, s.game.Snapshot()); err != nil {
		s.log.Warn("autosave failed", "error", err)
		return
	}
	s.game.ClearDirty()
}
