package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/andresmejia3/facepipe/internal/types"
)

func vecAt(i int, v float32) types.Embedding {
	var e types.Embedding
	e[i] = v
	return e
}

func sampleEncodings() *Encodings {
	enc := &Encodings{
		Model:       "hog",
		Fingerprint: "abc123",
		RunID:       "run-1",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	enc.Add("alice", vecAt(0, 1))
	enc.Add("bob", vecAt(1, 1))
	enc.Add("alice", vecAt(2, 0.5))
	return enc
}

func TestLabels(t *testing.T) {
	got := sampleEncodings().Labels()
	want := []LabelCount{{Name: "alice", Count: 2}, {Name: "bob", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Labels() = %+v, want %+v", got, want)
	}
}

func TestCheck(t *testing.T) {
	enc := sampleEncodings()
	if err := enc.Check(); err != nil {
		t.Fatalf("Check() on consistent store = %v", err)
	}
	enc.Names = append(enc.Names, "carol")
	if err := enc.Check(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Check() = %v, want ErrCorrupt", err)
	}
}

func TestFileStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "output", "encodings.gob"))

	want := sampleEncodings()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got.Names, want.Names) {
		t.Errorf("Names = %v, want %v", got.Names, want.Names)
	}
	if !reflect.DeepEqual(got.Vectors, want.Vectors) {
		t.Error("Vectors differ after round trip")
	}
	if got.Fingerprint != want.Fingerprint || got.Model != want.Model || got.RunID != want.RunID {
		t.Errorf("metadata mismatch: got %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestFileStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "encodings.gob"))

	if err := s.Save(ctx, sampleEncodings()); err != nil {
		t.Fatal(err)
	}
	second := &Encodings{RunID: "run-2"}
	second.Add("carol", vecAt(3, 1))
	if err := s.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Names, []string{"carol"}) {
		t.Errorf("expected full overwrite, got names %v", got.Names)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(s.Path()))
	if len(entries) != 1 {
		t.Errorf("expected only the store file, found %d entries", len(entries))
	}
}

func TestFileStoreEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "encodings.gob"))

	if err := s.Save(ctx, &Encodings{RunID: "empty"}); err != nil {
		t.Fatalf("Save() of empty store error = %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
}

func TestFileStoreErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing := NewFileStore(filepath.Join(dir, "missing.gob"))
	if _, err := missing.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() on missing file = %v, want ErrNotFound", err)
	}
	if err := missing.Reset(ctx); err != nil {
		t.Errorf("Reset() on missing file = %v, want nil", err)
	}

	garbage := filepath.Join(dir, "garbage.gob")
	if err := os.WriteFile(garbage, []byte("not gob"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(garbage).Load(ctx); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load() on garbage = %v, want ErrCorrupt", err)
	}

	bad := sampleEncodings()
	bad.Vectors = bad.Vectors[:1]
	if err := NewFileStore(filepath.Join(dir, "bad.gob")).Save(ctx, bad); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Save() of inconsistent store = %v, want ErrCorrupt", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.gob")); !os.IsNotExist(err) {
		t.Error("inconsistent store must not be written")
	}
}

func TestFileStoreReset(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "encodings.gob"))
	if err := s.Save(ctx, sampleEncodings()); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Reset = %v, want ErrNotFound", err)
	}
}
