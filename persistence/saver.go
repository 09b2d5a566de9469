package persistence

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/lixenwraith/cyber-clicker/clock"
	"github.com/lixenwraith/cyber-clicker/status"
)

// DefaultSaveInterval bounds how often event-triggered saves reach the store
const DefaultSaveInterval = 2 * time.Second

// Saver serializes writes to a Store
// Request is throttled for saves triggered by purchases and unlocks; Flush always writes
type Saver struct {
	mu      sync.Mutex
	store   Store
	limiter *rate.Limiter
	clock   clock.Provider
	log     *slog.Logger

	saves     *atomic.Int64
	errors    *atomic.Int64
	throttled *atomic.Int64
}

// NewSaver wraps store; minInterval <= 0 uses DefaultSaveInterval
func NewSaver(store Store, minInterval time.Duration, clk clock.Provider, reg *status.Registry, log *slog.Logger) *Saver {
	if minInterval <= 0 {
		minInterval = DefaultSaveInterval
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
	return &Saver{
		store:     store,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		clock:     clk,
		log:       log,
		saves:     reg.Ints.Get(status.KeySaves),
		errors:    reg.Ints.Get(status.KeySaveErrors),
		throttled: reg.Ints.Get(status.KeySavesThrottled),
	}
}

// Request writes snap unless a save happened within the throttle window
// Returns whether a write was attempted
func (s *Saver) Request(ctx context.Context, snap Snapshot) (bool, error) {
	if !s.limiter.AllowN(s.clock.Now(), 1) {
		s.throttled.Add(1)
		return false, nil
	}
	return true, s.write(ctx, snap)
}

// Flush writes snap unconditionally
func (s *Saver) Flush(ctx context.Context, snap Snapshot) error {
	return s.write(ctx, snap)
}

func (s *Saver) write(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := SaveSnapshot(ctx, s.store, snap); err != nil {
		s.errors.Add(1)
		s.log.Error("save failed", "error", err)
		return err
	}
	s.saves.Add(1)
	s.log.Debug("saved", "bits", snap.Bits, "level", snap.RootAccessLevel)
	return nil
}
