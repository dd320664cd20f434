package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Detection models understood by the engine.
const (
	ModelHOG = "hog"
	ModelCNN = "cnn"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Display modes.
const (
	DisplaySystem = "system"
	DisplayWindow = "window"
	DisplaySave   = "save"
	DisplayNone   = "none"
)

// Config holds every recognized option for the train, validate and test stages.
type Config struct {
	TrainingDir   string `yaml:"training_dir"`
	ValidationDir string `yaml:"validation_dir"`
	OutputDir     string `yaml:"output_dir"`

	StoreBackend string `yaml:"store"`
	StorePath    string `yaml:"store_path"`
	DatabaseURL  string `yaml:"database_url"`

	ModelsDir string  `yaml:"models_dir"`
	Model     string  `yaml:"model"`
	Tolerance float64 `yaml:"tolerance"`

	BoxColor  string `yaml:"box_color"`
	TextColor string `yaml:"text_color"`
	Display   string `yaml:"display"`
	SaveDir   string `yaml:"save_dir"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		TrainingDir:   "training",
		ValidationDir: "validation",
		OutputDir:     "output",
		StoreBackend:  BackendFile,
		StorePath:     filepath.Join("output", "encodings.gob"),
		ModelsDir:     "models",
		Model:         ModelHOG,
		Tolerance:     0.6,
		BoxColor:      "blue",
		TextColor:     "white",
		Display:       DisplaySystem,
		SaveDir:       filepath.Join("output", "annotated"),
		LogLevel:      "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if any),
// then FACEPIPE_* environment variables. A .env file in the working directory
// is loaded first and never overrides variables already set.
func Load(path string) (*Config, error) {
	// .env file is optional
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envString("FACEPIPE_TRAINING_DIR", &cfg.TrainingDir)
	envString("FACEPIPE_VALIDATION_DIR", &cfg.ValidationDir)
	envString("FACEPIPE_OUTPUT_DIR", &cfg.OutputDir)
	envString("FACEPIPE_STORE", &cfg.StoreBackend)
	envString("FACEPIPE_STORE_PATH", &cfg.StorePath)
	envString("FACEPIPE_DATABASE_URL", &cfg.DatabaseURL)
	envString("FACEPIPE_MODELS_DIR", &cfg.ModelsDir)
	envString("FACEPIPE_MODEL", &cfg.Model)
	envString("FACEPIPE_BOX_COLOR", &cfg.BoxColor)
	envString("FACEPIPE_TEXT_COLOR", &cfg.TextColor)
	envString("FACEPIPE_DISPLAY", &cfg.Display)
	envString("FACEPIPE_SAVE_DIR", &cfg.SaveDir)
	envString("FACEPIPE_LOG_LEVEL", &cfg.LogLevel)
	cfg.Tolerance = envFloat("FACEPIPE_TOLERANCE", cfg.Tolerance)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envFloat reads an environment variable as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// Validate checks option values before any heavy work starts.
func (c *Config) Validate() error {
	switch c.Model {
	case ModelHOG, ModelCNN:
	default:
		return fmt.Errorf("invalid model %q: must be %q or %q", c.Model, ModelHOG, ModelCNN)
	}
	if c.Tolerance <= 0 || c.Tolerance > 1.0 {
		return fmt.Errorf("invalid tolerance: must be between 0.0 and 1.0, got %f", c.Tolerance)
	}
	switch c.StoreBackend {
	case BackendFile:
		if c.StorePath == "" {
			return fmt.Errorf("store path is required for the %q backend", BackendFile)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for the %q backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("invalid store backend %q", c.StoreBackend)
	}
	switch c.Display {
	case DisplaySystem, DisplayWindow, DisplaySave, DisplayNone:
	default:
		return fmt.Errorf("invalid display mode %q", c.Display)
	}
	if _, err := ParseColor(c.BoxColor); err != nil {
		return fmt.Errorf("box color: %w", err)
	}
	if _, err := ParseColor(c.TextColor); err != nil {
		return fmt.Errorf("text color: %w", err)
	}
	return nil
}

// Dirs returns the working directories that must exist before any stage runs.
func (c *Config) Dirs() []string {
	return []string{c.TrainingDir, c.OutputDir, c.ValidationDir}
}

var namedColors = map[string]color.RGBA{
	"black":  {0, 0, 0, 255},
	"white":  {255, 255, 255, 255},
	"red":    {255, 0, 0, 255},
	"green":  {0, 128, 0, 255},
	"blue":   {0, 0, 255, 255},
	"yellow": {255, 255, 0, 255},
}

// ParseColor accepts a color name or a #rrggbb hex value.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}
