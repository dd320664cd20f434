package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/andresmejia3/facepipe/internal/types"
)

var (
	// ErrNotFound is returned by Load when no encoding store has been written yet.
	ErrNotFound = errors.New("encoding store not found")
	// ErrCorrupt is returned when a loaded store breaks the names/vectors invariant.
	ErrCorrupt = errors.New("encoding store is corrupt")
)

// Encodings is the persisted collection of (label, embedding) pairs.
// Names[i] is the label of Vectors[i]; the same label may appear many times.
type Encodings struct {
	Names   []string
	Vectors []types.Embedding

	Model       string
	Fingerprint string
	RunID       string
	// CreatedAt is the newest modification time in the training set, so an
	// unchanged training set always serializes to the same bytes.
	CreatedAt time.Time
}

// Len returns the number of enrolled embeddings.
func (e *Encodings) Len() int {
	return len(e.Names)
}

// Add appends one (label, embedding) pair.
func (e *Encodings) Add(name string, vec types.Embedding) {
	e.Names = append(e.Names, name)
	e.Vectors = append(e.Vectors, vec)
}

// Check verifies that both sequences have the same length.
func (e *Encodings) Check() error {
	if len(e.Names) != len(e.Vectors) {
		return fmt.Errorf("%w: %d names but %d vectors", ErrCorrupt, len(e.Names), len(e.Vectors))
	}
	return nil
}

// LabelCount is the number of embeddings enrolled under one label.
type LabelCount struct {
	Name  string
	Count int
}

// Labels summarises the store per label, sorted by name.
func (e *Encodings) Labels() []LabelCount {
	counts := make(map[string]int)
	for _, n := range e.Names {
		counts[n]++
	}
	out := make([]LabelCount, 0, len(counts))
	for n, c := range counts {
		out = append(out, LabelCount{Name: n, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Store persists and loads the encoding store. Save fully replaces any prior content.
type Store interface {
	Save(ctx context.Context, enc *Encodings) error
	Load(ctx context.Context) (*Encodings, error)
	Reset(ctx context.Context) error
	Close(ctx context.Context)
}
