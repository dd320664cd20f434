// Package pipeline runs detection, matching and annotation on one image.
package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/andresmejia3/facepipe/internal/annotate"
	"github.com/andresmejia3/facepipe/internal/engine"
	"github.com/andresmejia3/facepipe/internal/imageio"
	"github.com/andresmejia3/facepipe/internal/logging"
	"github.com/andresmejia3/facepipe/internal/matcher"
	"github.com/andresmejia3/facepipe/internal/store"
	"github.com/andresmejia3/facepipe/internal/types"
	"github.com/sirupsen/logrus"
)

// Result is the annotated copy of an input image plus what was found in it.
type Result struct {
	Path  string
	Image *image.RGBA
	Faces []types.Recognition
}

// Pipeline holds everything needed to recognize faces in a single image.
type Pipeline struct {
	Engine    engine.Engine
	Model     engine.Model
	Tolerance float64
	Style     annotate.Style
}

// Run detects faces in the image at path, labels each one against enc and
// draws the result. Faces are reported in detector order.
func (p *Pipeline) Run(ctx context.Context, path string, enc *store.Encodings) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}

	dets, err := p.Engine.Detect(img.JPEG, p.Model)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	res := &Result{Path: path, Image: img.RGBA, Faces: make([]types.Recognition, 0, len(dets))}
	for _, d := range dets {
		vote, ok := matcher.Recognize(d.Embedding, enc, p.Tolerance)
		rec := types.Recognition{
			Label: matcher.Label(vote, ok),
			Box:   d.Box,
			Votes: vote.Count,
			Known: ok,
		}
		p.Style.Draw(res.Image, d.Box, rec.Label)
		res.Faces = append(res.Faces, rec)

		logging.Log.WithFields(logrus.Fields{
			"file":  path,
			"label": rec.Label,
			"votes": rec.Votes,
		}).Debug("face recognized")
	}
	return res, nil
}
