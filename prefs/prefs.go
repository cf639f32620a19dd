// Package prefs loads engine defaults from a YAML preferences file.
//
// Every field has a sensible default; a missing file or a partial file is
// not an error. Loaded values are validated so the engine never starts with
// an unusable configuration.
package prefs

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sametz/fit-o-mat/internal/codec"
)

// Preferences holds the tunable engine defaults.
type Preferences struct {
	// DisplayMin and DisplayMax bound the default simulation range when no
	// dataset is loaded.
	DisplayMin float64 `yaml:"display_min"`
	DisplayMax float64 `yaml:"display_max"`

	// ValidationPoints is the sample count used to shape-check a freshly
	// compiled formula.
	ValidationPoints int `yaml:"validation_points"`

	// MaxIterations caps one least-squares solver run.
	MaxIterations int `yaml:"max_iterations"`

	// SearchCycles and StallLimit tune the stochastic parameter search.
	SearchCycles int `yaml:"search_cycles"`
	StallLimit   int `yaml:"stall_limit"`

	// GridBudget caps per-cycle evaluations of the grid search.
	GridBudget int `yaml:"grid_budget"`

	// SnapshotCompression selects the session snapshot codec: one of
	// "none", "zstd", "s2" or "lz4".
	SnapshotCompression string `yaml:"snapshot_compression"`
}

// Default returns the built-in preferences.
func Default() Preferences {
	return Preferences{
		DisplayMin:          0,
		DisplayMax:          1,
		ValidationPoints:    2000,
		MaxIterations:       100,
		SearchCycles:        5,
		StallLimit:          10000,
		GridBudget:          10000,
		SnapshotCompression: "zstd",
	}
}

// Load reads preferences from path, filling unset fields with defaults. A
// missing file yields the defaults without error.
func Load(path string) (Preferences, error) {
	p := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}

		return p, err
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Default(), fmt.Errorf("parse preferences %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid preferences %s: %w", path, err)
	}

	return p, nil
}

// Validate checks the cross-field invariants.
func (p Preferences) Validate() error {
	if p.DisplayMax <= p.DisplayMin {
		return fmt.Errorf("display range [%g, %g] is empty", p.DisplayMin, p.DisplayMax)
	}
	if p.ValidationPoints < 2 {
		return fmt.Errorf("validation_points must be >= 2, got %d", p.ValidationPoints)
	}
	if p.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", p.MaxIterations)
	}
	if p.SearchCycles < 1 {
		return fmt.Errorf("search_cycles must be >= 1, got %d", p.SearchCycles)
	}
	if p.StallLimit < 1 {
		return fmt.Errorf("stall_limit must be >= 1, got %d", p.StallLimit)
	}
	if p.GridBudget < 1 {
		return fmt.Errorf("grid_budget must be >= 1, got %d", p.GridBudget)
	}
	if _, err := p.Compression(); err != nil {
		return err
	}

	return nil
}

// Compression maps the snapshot_compression string to a codec tag.
func (p Preferences) Compression() (codec.Compression, error) {
	switch p.SnapshotCompression {
	case "", "none":
		return codec.CompressionNone, nil
	case "zstd":
		return codec.CompressionZstd, nil
	case "s2":
		return codec.CompressionS2, nil
	case "lz4":
		return codec.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown snapshot_compression %q", p.SnapshotCompression)
	}
}

// Save writes the preferences to path as YAML.
func (p Preferences) Save(path string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(p)
	if err != nil {
		return err
	}

	return os.WriteFile(path, raw, 0o644)
}
