// Package engine wraps the external face detection and embedding library.
package engine

import (
	"errors"
	"fmt"

	"github.com/andresmejia3/facepipe/internal/types"
)

// Model selects the face localization strategy.
type Model string

const (
	// HOG is the CPU-oriented detector (fast, less accurate).
	HOG Model = "hog"
	// CNN is the GPU-oriented detector (slower, more accurate).
	CNN Model = "cnn"
)

// ErrModelsMissing is returned when the dlib model files are not in the models directory.
var ErrModelsMissing = errors.New("face recognition model files missing")

// ParseModel validates a model name from the CLI or config.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case HOG, CNN:
		return Model(s), nil
	}
	return "", fmt.Errorf("unknown detection model %q (want %q or %q)", s, HOG, CNN)
}

// Engine detects faces in a JPEG image and returns one embedding per face,
// in detector order. Implementations are not safe for concurrent use.
type Engine interface {
	Detect(jpeg []byte, model Model) ([]types.Detection, error)
	Close()
}
