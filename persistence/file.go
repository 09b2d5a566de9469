package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// SaveFileName is the blob file inside the data directory
const SaveFileName = "save.json"

// FileStore keeps the save as a single JSON file
type FileStore struct {
	basePath string
}

// NewFileStore creates a store rooted at basePath; the directory is created on first save
func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// FilePath returns the save file location
func (f *FileStore) FilePath() string {
	return filepath.Join(f.basePath, SaveFileName)
}

func (f *FileStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.FilePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSave
	}
	return data, err
}

// Save writes through a temp file and rename so a crash never leaves a torn save
func (f *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.basePath, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.basePath, SaveFileName+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.FilePath())
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(f.FilePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) Close() error { return nil }
