package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/facepipe/internal/config"
	"github.com/andresmejia3/facepipe/internal/engine"
	"github.com/andresmejia3/facepipe/internal/logging"
	"github.com/andresmejia3/facepipe/internal/store"
	"github.com/andresmejia3/facepipe/internal/utils"
	"github.com/spf13/cobra"
)

// Options holds the command line flags. Values left unset fall back to the
// config file, then the environment, then the defaults.
type Options struct {
	Train     bool
	Validate  bool
	Test      bool
	Model     string
	File      string
	Tolerance float64
	Display   string
	SaveDir   string

	ConfigPath  string
	Store       string
	DatabaseURL string
	ModelsDir   string
	Verbose     bool
}

var (
	opts Options
	// Cfg is the merged configuration, loaded before any command runs.
	Cfg *config.Config
	// Store is the encoding store shared by subcommands.
	Store store.Store

	// newEngine is swapped out in tests.
	newEngine = func(modelsDir string, model engine.Model) (engine.Engine, error) {
		return engine.NewDlib(modelsDir, model)
	}
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "facepipe",
	Short: "Train, validate and test a face recognition store",
	Long: `facepipe enrolls faces from training/<label>/<image>, then labels the faces
found in new images by majority vote among the known encodings.

Stages run in a fixed order: --train, then --validate, then --test.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		Cfg = cfg

		if err := utils.EnsureDirs(cfg.Dirs()...); err != nil {
			return err
		}

		Store, err = openStore(cmd.Context(), cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if Store != nil {
			// The command context may already be cancelled (Ctrl+C) but the
			// connection still has to be closed.
			Store.Close(context.Background())
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !opts.Train && !opts.Validate && !opts.Test {
			return cmd.Help()
		}
		return runStages(cmd.Context(), opts, Cfg, Store)
	},
}

// loadConfig merges defaults, the config file, the environment and the
// flags the user actually set, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts, cmd.Flags().Changed)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, o Options, changed func(string) bool) {
	if changed("model") {
		cfg.Model = o.Model
	}
	if changed("tolerance") {
		cfg.Tolerance = o.Tolerance
	}
	if changed("display") {
		cfg.Display = o.Display
	}
	if changed("save-dir") {
		cfg.SaveDir = o.SaveDir
	}
	if changed("store") {
		cfg.StoreBackend = o.Store
	}
	if changed("db") {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if changed("models") {
		cfg.ModelsDir = o.ModelsDir
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == config.BackendPostgres {
		s, err := store.NewPGStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return s, nil
	}
	return store.NewFileStore(cfg.StorePath), nil
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		utils.ShowError("command failed", err, nil)
		stop()
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&opts.Train, "train", false, "Encode faces from the training directory and overwrite the store")
	f.BoolVar(&opts.Validate, "validate", false, "Run recognition on every image under the validation directory")
	f.BoolVar(&opts.Test, "test", false, "Run recognition on the image given by -f")
	f.StringVarP(&opts.Model, "model", "m", config.ModelHOG, "Detection model: hog (CPU) or cnn (GPU)")
	f.StringVarP(&opts.File, "file", "f", "", "Image to recognize with --test")
	f.Float64Var(&opts.Tolerance, "tolerance", 0.6, "Maximum embedding distance counted as a match")
	f.StringVar(&opts.Display, "display", config.DisplaySystem, "How results are shown: system (viewer, images kept in $TMPDIR/facepipe until the next run), window, save or none")
	f.StringVar(&opts.SaveDir, "save-dir", "output/annotated", "Directory for annotated images with --display save")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&opts.Store, "store", config.BackendFile, "Encoding store backend: file or postgres")
	pf.StringVar(&opts.DatabaseURL, "db", "", "PostgreSQL connection string for --store postgres")
	pf.StringVar(&opts.ModelsDir, "models", "models", "Directory holding the dlib model files")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
}
