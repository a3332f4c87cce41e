/*
PURPOSE:
  Defines the configuration structure and loading logic for Benchpress.
  One immutable Options bundle per measurement; a Config bundles suite-wide
  defaults, the storage location and the benchmark definitions.

REQUIREMENTS:
  User-specified:
  - Allow tuning of min/max time, rounds, calibration precision, warmup,
    GC suspension and timer selection.
  - Per-benchmark overrides of any option.

  Implementation-discovered:
  - Needs YAML parsing (gopkg.in/yaml.v3).
  - Unknown fields must be rejected at load time, not silently dropped:
    a typo like "min_round" would otherwise mask an intended override.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/session, internal/engine
  - Dependencies: gopkg.in/yaml.v3, internal/timer (name validation)

ERROR HANDLING:
  - Explicit error for an invalid or unparsable config file.
  - Missing file falls back to defaults (not an error).
  - Validate() rejects out-of-range values before any measurement starts.

IMPLEMENTATION RULES:
  - min_time/max_time are plain seconds (floats), matching the persisted
    schema and the threshold expressions.
  - Options is never mutated after a Runner is built from it.

USAGE:
  cfg, err := config.Load("benchpress.yaml")
  opts := cfg.Options.Apply(bench.Options)

RELATED FILES:
  - internal/cli/run.go (flag overrides)
  - internal/engine/runner.go (consumer)

MAINTENANCE:
  - New options need a field here, a patch field, a flag in cli/run.go and
    a default below.
*/

package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/benchpress/benchpress/internal/timer"
)

// Options is the immutable per-measurement configuration.
// Times are in seconds.
type Options struct {
	MinTime              float64 `yaml:"min_time" json:"min_time"`
	MaxTime              float64 `yaml:"max_time" json:"max_time"`
	MinRounds            int     `yaml:"min_rounds" json:"min_rounds"`
	CalibrationPrecision int     `yaml:"calibration_precision" json:"calibration_precision"`
	Warmup               bool    `yaml:"warmup" json:"warmup"`
	WarmupIterations     int     `yaml:"warmup_iterations" json:"warmup_iterations"`
	DisableGC            bool    `yaml:"disable_gc" json:"disable_gc"`
	Timer                string  `yaml:"timer" json:"timer"`
}

// OptionsPatch is a partial Options used for per-benchmark overrides.
// Nil fields inherit the suite default.
type OptionsPatch struct {
	MinTime              *float64 `yaml:"min_time"`
	MaxTime              *float64 `yaml:"max_time"`
	MinRounds            *int     `yaml:"min_rounds"`
	CalibrationPrecision *int     `yaml:"calibration_precision"`
	Warmup               *bool    `yaml:"warmup"`
	WarmupIterations     *int     `yaml:"warmup_iterations"`
	DisableGC            *bool    `yaml:"disable_gc"`
	Timer                *string  `yaml:"timer"`
}

// Benchmark defines one candidate operation in the suite file.
type Benchmark struct {
	Name    string            `yaml:"name"`
	Group   string            `yaml:"group"`
	Command []string          `yaml:"command"`
	Params  map[string]string `yaml:"params"`
	Options *OptionsPatch     `yaml:"options"`
}

// Config represents the full configuration for Benchpress.
type Config struct {
	Options    Options     `yaml:"options"`
	Storage    string      `yaml:"storage"`
	Benchmarks []Benchmark `yaml:"benchmarks"`
}

// DefaultOptions returns the default measurement options.
func DefaultOptions() Options {
	return Options{
		MinTime:              0.000005, // 5us per round, floor
		MaxTime:              1.0,
		MinRounds:            5,
		CalibrationPrecision: 10,
		Warmup:               false,
		WarmupIterations:     100000,
		DisableGC:            false,
		Timer:                "mono",
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Options: DefaultOptions(),
		Storage: "./.benchmarks",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		// Search for defaults
		defaults := []string{"benchpress.yaml", "benchpress.yml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	// Closed field set: typos and unrecognized options fail here, not at
	// measurement time.
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects out-of-range options and malformed benchmark entries.
func (c *Config) Validate() error {
	if err := c.Options.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Benchmarks))
	for i, b := range c.Benchmarks {
		if b.Name == "" {
			return fmt.Errorf("benchmark %d: name is required", i)
		}
		if len(b.Command) == 0 {
			return fmt.Errorf("benchmark %q: command is required", b.Name)
		}
		key := b.Group + "/" + b.Name
		if seen[key] {
			return fmt.Errorf("benchmark %q: duplicate group/name", key)
		}
		seen[key] = true
	}
	return nil
}

// Validate checks a single options bundle.
func (o Options) Validate() error {
	if o.MinTime < 0 {
		return fmt.Errorf("min_time must be >= 0, got %g", o.MinTime)
	}
	if o.MaxTime <= 0 {
		return fmt.Errorf("max_time must be > 0, got %g", o.MaxTime)
	}
	if o.MinRounds < 1 {
		return fmt.Errorf("min_rounds must be >= 1, got %d", o.MinRounds)
	}
	if o.CalibrationPrecision < 1 {
		return fmt.Errorf("calibration_precision must be >= 1, got %d", o.CalibrationPrecision)
	}
	if o.WarmupIterations < 0 {
		return fmt.Errorf("warmup_iterations must be >= 0, got %d", o.WarmupIterations)
	}
	if _, err := timer.ByName(o.Timer); err != nil {
		return err
	}
	return nil
}

// Apply returns a copy of o with the non-nil patch fields overridden.
// A nil patch returns o unchanged.
func (o Options) Apply(p *OptionsPatch) Options {
	if p == nil {
		return o
	}
	if p.MinTime != nil {
		o.MinTime = *p.MinTime
	}
	if p.MaxTime != nil {
		o.MaxTime = *p.MaxTime
	}
	if p.MinRounds != nil {
		o.MinRounds = *p.MinRounds
	}
	if p.CalibrationPrecision != nil {
		o.CalibrationPrecision = *p.CalibrationPrecision
	}
	if p.Warmup != nil {
		o.Warmup = *p.Warmup
	}
	if p.WarmupIterations != nil {
		o.WarmupIterations = *p.WarmupIterations
	}
	if p.DisableGC != nil {
		o.DisableGC = *p.DisableGC
	}
	if p.Timer != nil {
		o.Timer = *p.Timer
	}
	return o
}

// MinTimeDuration returns min_time as a time.Duration.
func (o Options) MinTimeDuration() time.Duration {
	return time.Duration(o.MinTime * float64(time.Second))
}

// MaxTimeDuration returns max_time as a time.Duration.
func (o Options) MaxTimeDuration() time.Duration {
	return time.Duration(o.MaxTime * float64(time.Second))
}
