package persistence

import (
	"context"
	"errors"
)

//go:generate go tool mockgen -destination=./mocks/store_mock.go -package=mocks . Store

// ErrNoSave is returned by Load when nothing has been stored yet
var ErrNoSave = errors.New("no save data")

// Store holds the encoded save blob
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
	Close() error
}

// LoadSnapshot reads and decodes the stored save
// Returns ErrNoSave when empty and ErrInvalidFormat when corrupt
func LoadSnapshot(ctx context.Context, s Store) (Snapshot, error) {
	data, err := s.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if len(data) == 0 {
		return Snapshot{}, ErrNoSave
	}
	return Decode(data)
}

// SaveSnapshot encodes and writes snap
func SaveSnapshot(ctx context.Context, s Store, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	return s.Save(ctx, data)
}
