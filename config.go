package glyphtrace

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of an extraction and training run.
type Config struct {
	// Resolution is the row size of seed grids and definitions.
	Resolution int `yaml:"resolution"`

	// MaxReductions bounds the erosion rounds of the accumulation.
	MaxReductions int `yaml:"max_reductions"`

	// MinimumRun is the shortest straight run kept by the recurrent filter.
	MinimumRun int `yaml:"minimum_run"`

	// MaxChecksFactor bounds a curve walk to grid length times this factor.
	MaxChecksFactor int `yaml:"max_checks_factor"`

	// ErrorMargin is the rating every compatibility check must reach.
	ErrorMargin float64 `yaml:"error_margin"`

	// BinarizeThreshold is the gray level below which a pixel is ink. Zero
	// selects a threshold per image.
	BinarizeThreshold uint8 `yaml:"binarize_threshold"`
}

// DefaultConfig returns the settings used when no configuration file is
// given.
func DefaultConfig() Config {
	return Config{
		Resolution:      64,
		MaxReductions:   DefaultMaxReductions,
		MinimumRun:      6,
		MaxChecksFactor: DefaultMaxChecksFactor,
		ErrorMargin:     0.5,
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Resolution < 3:
		return fmt.Errorf("resolution must be at least 3, got %d", c.Resolution)
	case c.MaxReductions < 1:
		return fmt.Errorf("max_reductions must be positive, got %d", c.MaxReductions)
	case c.MinimumRun < 1:
		return fmt.Errorf("minimum_run must be positive, got %d", c.MinimumRun)
	case c.MaxChecksFactor < 1:
		return fmt.Errorf("max_checks_factor must be positive, got %d", c.MaxChecksFactor)
	case c.ErrorMargin < 0 || c.ErrorMargin > 1:
		return fmt.Errorf("error_margin must be within [0, 1], got %g", c.ErrorMargin)
	}
	return nil
}

// ParseConfig reads a YAML configuration. Settings missing from the
// document keep their DefaultConfig value.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return ParseConfig(f)
}
