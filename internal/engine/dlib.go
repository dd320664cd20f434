package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kagami/go-face"
	"github.com/andresmejia3/facepipe/internal/types"
)

// Model files expected in the models directory.
const (
	ShapePredictorFile = "shape_predictor_5_face_landmarks.dat"
	ResNetFile         = "dlib_face_recognition_resnet_model_v1.dat"
	CNNDetectorFile    = "mmod_human_face_detector.dat"
)

// Dlib runs detection and embedding through dlib via go-face.
type Dlib struct {
	rec *face.Recognizer
}

// RequiredFiles lists the model files needed to run the given detector.
// go-face loads the CNN detector when the recognizer is created, so it is
// required for hog as well.
func RequiredFiles(model Model) []string {
	return []string{ShapePredictorFile, ResNetFile, CNNDetectorFile}
}

// CheckModels reports which model files are missing from dir.
func CheckModels(dir string, model Model) error {
	var missing []string
	for _, f := range RequiredFiles(model) {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w in %s: %s", ErrModelsMissing, dir, strings.Join(missing, ", "))
	}
	return nil
}

// NewDlib loads the dlib models from modelsDir.
func NewDlib(modelsDir string, model Model) (*Dlib, error) {
	if err := CheckModels(modelsDir, model); err != nil {
		return nil, err
	}
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	return &Dlib{rec: rec}, nil
}

// Detect finds every face in the JPEG and computes its descriptor.
func (d *Dlib) Detect(jpeg []byte, model Model) ([]types.Detection, error) {
	var (
		faces []face.Face
		err   error
	)
	switch model {
	case CNN:
		faces, err = d.rec.RecognizeCNN(jpeg)
	default:
		faces, err = d.rec.Recognize(jpeg)
	}
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	out := make([]types.Detection, len(faces))
	for i, f := range faces {
		out[i] = types.Detection{
			Box:       types.BoxFromRect(f.Rectangle),
			Embedding: types.Embedding(f.Descriptor),
		}
	}
	return out, nil
}

// Close releases the recognizer resources.
func (d *Dlib) Close() {
	if d.rec != nil {
		d.rec.Close()
		d.rec = nil
	}
}
