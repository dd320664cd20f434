package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andresmejia3/facepipe/internal/annotate"
	"github.com/andresmejia3/facepipe/internal/config"
	"github.com/andresmejia3/facepipe/internal/display"
	"github.com/andresmejia3/facepipe/internal/encoder"
	"github.com/andresmejia3/facepipe/internal/engine"
	"github.com/andresmejia3/facepipe/internal/logging"
	"github.com/andresmejia3/facepipe/internal/pipeline"
	"github.com/andresmejia3/facepipe/internal/store"
	"github.com/andresmejia3/facepipe/internal/utils"
	"github.com/andresmejia3/facepipe/internal/validator"
)

// validateStages checks flag combinations that cannot be expressed in cobra.
func validateStages(o Options) error {
	if !o.Test {
		// -f is only read by --test
		return nil
	}
	if o.File == "" {
		return errors.New("--test requires an image path via -f")
	}
	info, err := os.Stat(o.File)
	if err != nil {
		return fmt.Errorf("test image: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("test image %s is a directory", o.File)
	}
	return nil
}

// runStages runs the selected stages in the order train, validate, test.
func runStages(ctx context.Context, o Options, cfg *config.Config, st store.Store) error {
	if err := validateStages(o); err != nil {
		return err
	}
	model, err := engine.ParseModel(cfg.Model)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "🔌 Loading %s face models from %s...\n", model, cfg.ModelsDir)
	eng, err := newEngine(cfg.ModelsDir, model)
	if err != nil {
		return err
	}
	defer eng.Close()

	var enc *store.Encodings
	if o.Train {
		if enc, err = train(ctx, eng, model, cfg, st); err != nil {
			return err
		}
	}
	if !o.Validate && !o.Test {
		return nil
	}

	if enc == nil {
		if enc, err = ensureStore(ctx, eng, model, cfg, st); err != nil {
			return err
		}
	}

	style, err := annotate.NewStyle(cfg.BoxColor, cfg.TextColor)
	if err != nil {
		return err
	}
	p := &pipeline.Pipeline{Engine: eng, Model: model, Tolerance: cfg.Tolerance, Style: style}
	viewer, err := display.New(cfg.Display, cfg.SaveDir, os.Stdout)
	if err != nil {
		return err
	}

	if o.Validate {
		fmt.Fprintf(os.Stderr, "🔎 Validating images in %s...\n", cfg.ValidationDir)
		n, err := validator.Validate(ctx, p, enc, cfg.ValidationDir, viewer)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✅ Validated %d image(s).\n", n)
	}

	if o.Test {
		fmt.Fprintf(os.Stderr, "🧪 Testing %s...\n", o.File)
		res, err := p.Run(ctx, o.File, enc)
		if err != nil {
			return err
		}
		if err := viewer.Show(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// train encodes the training directory and overwrites the store.
func train(ctx context.Context, eng engine.Engine, model engine.Model, cfg *config.Config, st store.Store) (*store.Encodings, error) {
	fmt.Fprintf(os.Stderr, "🚀 Training from %s (model: %s)\n", cfg.TrainingDir, model)
	enc, report, err := encoder.Train(ctx, eng, encoder.Options{
		Root:     cfg.TrainingDir,
		Model:    model,
		Progress: os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Save(ctx, enc); err != nil {
		return nil, fmt.Errorf("failed to save encodings: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n✅ Encoded %d face(s) for %d label(s) from %d image(s).\n", report.Faces, report.Labels, report.Files)
	if n := len(report.NoFace); n > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  %d image(s) had no detectable face.\n", n)
	}
	if n := len(report.MultiFace); n > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  %d image(s) had more than one face.\n", n)
	}
	return enc, nil
}

// ensureStore returns the stored encodings, training first when no store
// exists yet or when the training set changed since it was written.
func ensureStore(ctx context.Context, eng engine.Engine, model engine.Model, cfg *config.Config, st store.Store) (*store.Encodings, error) {
	fingerprint, err := utils.Fingerprint(cfg.TrainingDir)
	if err != nil {
		return nil, err
	}

	enc, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(os.Stderr, "📭 No encoding store found.")
	case err != nil:
		return nil, err
	case enc.Fingerprint != fingerprint:
		fmt.Fprintln(os.Stderr, "♻️  Training set changed since the store was written.")
	default:
		logging.Log.WithField("run", enc.RunID).Debugf("using %d stored encodings", enc.Len())
		return enc, nil
	}
	return train(ctx, eng, model, cfg, st)
}
