// Package encoder builds the encoding store from a directory of labeled images.
package encoder

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/andresmejia3/facepipe/internal/engine"
	"github.com/andresmejia3/facepipe/internal/imageio"
	"github.com/andresmejia3/facepipe/internal/logging"
	"github.com/andresmejia3/facepipe/internal/store"
	"github.com/andresmejia3/facepipe/internal/utils"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// Options configures a training run.
type Options struct {
	Root     string
	Model    engine.Model
	Progress io.Writer // progress bar destination; nil disables the bar
}

// Report counts what a training run saw.
type Report struct {
	Files     int
	Faces     int
	Labels    int
	NoFace    []string
	MultiFace []string
}

// Train scans Root/<label>/<file>, extracts one embedding per detected face
// and returns the resulting store. Images with zero or several faces are kept
// (contributing zero or several entries) but listed in the report.
func Train(ctx context.Context, eng engine.Engine, opts Options) (*store.Encodings, *Report, error) {
	files, err := utils.TrainingImages(opts.Root)
	if err != nil {
		return nil, nil, err
	}
	fingerprint, err := utils.Fingerprint(opts.Root)
	if err != nil {
		return nil, nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("🧠 Encoding faces"),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionShowCount(),
		)
	}

	enc := &store.Encodings{
		Model:       string(opts.Model),
		Fingerprint: fingerprint,
		RunID:       RunID(opts.Model, fingerprint),
	}
	report := &Report{}
	labels := make(map[string]struct{})

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, err
		}
		if mt := info.ModTime().UTC(); mt.After(enc.CreatedAt) {
			enc.CreatedAt = mt
		}

		img, err := imageio.Load(path)
		if err != nil {
			return nil, nil, err
		}
		dets, err := eng.Detect(img.JPEG, opts.Model)
		if err != nil {
			return nil, nil, err
		}

		name := filepath.Base(filepath.Dir(path))
		for _, d := range dets {
			enc.Add(name, d.Embedding)
			labels[name] = struct{}{}
		}

		report.Files++
		report.Faces += len(dets)
		switch {
		case len(dets) == 0:
			report.NoFace = append(report.NoFace, path)
			logging.Log.WithField("file", path).Warn("no face detected, image contributes nothing")
		case len(dets) > 1:
			report.MultiFace = append(report.MultiFace, path)
			logging.Log.WithFields(logrus.Fields{"file": path, "faces": len(dets)}).
				Warn("several faces detected, all enrolled under the same label")
		}

		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	report.Labels = len(labels)
	return enc, report, nil
}

// RunID names a training run by what it was built from: the same model and
// training set always give the same id.
func RunID(model engine.Model, fingerprint string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(model)+":"+fingerprint)).String()
}
