package store

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the encoding store in a single gob file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file is not touched.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the store file.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes enc to a temp file next to the store and renames it into place,
// so an interrupted run leaves the previous store (or none) behind.
func (s *FileStore) Save(ctx context.Context, enc *Encodings) error {
	if err := enc.Check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(enc); err != nil {
		tmp.Close()
		return fmt.Errorf("encode store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Load reads the whole store into memory.
func (s *FileStore) Load(ctx context.Context) (*Encodings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var enc Encodings
	if err := gob.NewDecoder(f).Decode(&enc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if err := enc.Check(); err != nil {
		return nil, err
	}
	return &enc, nil
}

// Reset deletes the store file. A missing file is not an error.
func (s *FileStore) Reset(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op; the file is opened and closed within each call.
func (s *FileStore) Close(ctx context.Context) {}
