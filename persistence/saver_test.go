package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/lixenwraith/cyber-clicker/clock"
	"github.com/lixenwraith/cyber-clicker/persistence"
	"github.com/lixenwraith/cyber-clicker/persistence/mocks"
	"github.com/lixenwraith/cyber-clicker/status"
)

// TestSaverThrottlesRequests verifies event-triggered saves are rate limited while Flush is not
func TestSaverThrottlesRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	clk := clock.NewMock(time.Unix(1000, 0))
	reg := status.NewRegistry()
	s := persistence.NewSaver(store, 2*time.Second, clk, reg, nil)
	snap := persistence.Fresh(clk.Now())
	ctx := context.Background()

	if ok, err := s.Request(ctx, snap); !ok || err != nil {
		t.Fatalf("first Request = %v, %v; want write", ok, err)
	}
	if ok, _ := s.Request(ctx, snap); ok {
		t.Error("second Request inside window was not throttled")
	}

	if err := s.Flush(ctx, snap); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	clk.Advance(3 * time.Second)
	if ok, err := s.Request(ctx, snap); !ok || err != nil {
		t.Errorf("Request after window = %v, %v; want write", ok, err)
	}

	if got := reg.Ints.Get(status.KeySaves).Load(); got != 3 {
		t.Errorf("saves = %d, want 3", got)
	}
	if got := reg.Ints.Get(status.KeySavesThrottled).Load(); got != 1 {
		t.Errorf("throttled = %d, want 1", got)
	}
}

// TestSaverCountsErrors verifies a failing store is reported and counted
func TestSaverCountsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("disk full")
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(boom)

	reg := status.NewRegistry()
	s := persistence.NewSaver(store, time.Second, clock.NewMock(time.Unix(0, 0)), reg, nil)

	if err := s.Flush(context.Background(), persistence.Fresh(time.Unix(0, 0))); !errors.Is(err, boom) {
		t.Fatalf("Flush = %v, want %v", err, boom)
	}
	if got := reg.Ints.Get(status.KeySaveErrors).Load(); got != 1 {
		t.Errorf("save errors = %d, want 1", got)
	}
}

// TestSaverWritesDecodableBlob verifies the bytes handed to the store decode back
func TestSaverWritesDecodableBlob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var written []byte
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, data []byte) error {
		written = data
		return nil
	})

	s := persistence.NewSaver(store, time.Second, nil, nil, nil)
	snap := persistence.Fresh(time.Unix(50, 0))
	snap.Bits = 321
	if err := s.Flush(context.Background(), snap); err != nil {
		t.Fatal(err)
	}

	got, err := persistence.Decode(written)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Bits != 321 {
		t.Errorf("Bits = %v, want 321", got.Bits)
	}
}
