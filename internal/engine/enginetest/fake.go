// Package enginetest provides an in-memory engine.Engine for tests.
package enginetest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/andresmejia3/facepipe/internal/engine"
	"github.com/andresmejia3/facepipe/internal/types"
)

// Fake returns canned detections keyed by the JPEG bytes it receives.
// Unregistered images have no faces.
type Fake struct {
	faces  map[string][]types.Detection
	fail   map[string]error
	Calls  int
	Models []engine.Model
	Closed bool
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		faces: make(map[string][]types.Detection),
		fail:  make(map[string]error),
	}
}

func key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Set registers the detections returned for an image.
func (f *Fake) Set(jpeg []byte, dets ...types.Detection) {
	f.faces[key(jpeg)] = dets
}

// Fail makes Detect return err for an image.
func (f *Fake) Fail(jpeg []byte, err error) {
	f.fail[key(jpeg)] = err
}

// Detect implements engine.Engine.
func (f *Fake) Detect(jpeg []byte, model engine.Model) ([]types.Detection, error) {
	if f.Closed {
		return nil, errors.New("engine closed")
	}
	f.Calls++
	f.Models = append(f.Models, model)
	k := key(jpeg)
	if err, ok := f.fail[k]; ok {
		return nil, err
	}
	dets := f.faces[k]
	out := make([]types.Detection, len(dets))
	copy(out, dets)
	return out, nil
}

// Close implements engine.Engine.
func (f *Fake) Close() {
	f.Closed = true
}

// Embedding returns a unit vector along axis i, scaled by v.
func Embedding(i int, v float32) types.Embedding {
	var e types.Embedding
	e[i] = v
	return e
}
