// Package validator runs the recognition pipeline over a directory tree.
package validator

import (
	"context"
	"fmt"

	"github.com/andresmejia3/facepipe/internal/display"
	"github.com/andresmejia3/facepipe/internal/logging"
	"github.com/andresmejia3/facepipe/internal/pipeline"
	"github.com/andresmejia3/facepipe/internal/store"
	"github.com/andresmejia3/facepipe/internal/utils"
)

// Validate runs p on every regular file below dir, in lexical order, and
// hands each result to v. The first failure stops the walk. It returns the
// number of images shown.
func Validate(ctx context.Context, p *pipeline.Pipeline, enc *store.Encodings, dir string, v display.Viewer) (int, error) {
	files, err := utils.WalkFiles(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	logging.Log.WithField("files", len(files)).Debugf("validating %s", dir)

	for i, path := range files {
		res, err := p.Run(ctx, path, enc)
		if err != nil {
			return i, err
		}
		if err := v.Show(ctx, res); err != nil {
			return i, fmt.Errorf("failed to show %s: %w", path, err)
		}
	}
	return len(files), nil
}
