package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benchpress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.000005, cfg.Options.MinTime)
	assert.Equal(t, 1.0, cfg.Options.MaxTime)
	assert.Equal(t, 5, cfg.Options.MinRounds)
	assert.Equal(t, 10, cfg.Options.CalibrationPrecision)
	assert.False(t, cfg.Options.Warmup)
	assert.Equal(t, 100000, cfg.Options.WarmupIterations)
	assert.False(t, cfg.Options.DisableGC)
	assert.Equal(t, "mono", cfg.Options.Timer)
	assert.Equal(t, "./.benchmarks", cfg.Storage)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
options:
  min_time: 0.0001
  max_time: 2.5
  min_rounds: 10
  warmup: true
storage: /tmp/bench-store
benchmarks:
  - name: gzip
    group: compression
    command: ["gzip", "-c", "testdata/big.txt"]
    params:
      level: "6"
    options:
      min_rounds: 20
      disable_gc: true
  - name: cat
    group: io
    command: ["cat", "/etc/hostname"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.0001, cfg.Options.MinTime)
	assert.Equal(t, 2.5, cfg.Options.MaxTime)
	assert.Equal(t, 10, cfg.Options.MinRounds)
	assert.True(t, cfg.Options.Warmup)
	// Untouched fields keep their defaults.
	assert.Equal(t, 10, cfg.Options.CalibrationPrecision)
	assert.Equal(t, "/tmp/bench-store", cfg.Storage)

	require.Len(t, cfg.Benchmarks, 2)
	gz := cfg.Benchmarks[0]
	assert.Equal(t, "compression", gz.Group)
	assert.Equal(t, map[string]string{"level": "6"}, gz.Params)

	merged := cfg.Options.Apply(gz.Options)
	assert.Equal(t, 20, merged.MinRounds)
	assert.True(t, merged.DisableGC)
	assert.Equal(t, 0.0001, merged.MinTime, "non-overridden values inherit")
	// The original is untouched.
	assert.Equal(t, 10, cfg.Options.MinRounds)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	wd, err0 := os.Getwd()
	require.NoError(t, err0)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Options, cfg.Options)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
options:
  min_round: 10
`)
	_, err := Load(path)
	require.Error(t, err, "a typo must not be silently dropped")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []string{
		"options:\n  max_time: 0\n",
		"options:\n  min_rounds: 0\n",
		"options:\n  calibration_precision: 0\n",
		"options:\n  min_time: -1\n",
		"options:\n  timer: sundial\n",
		"benchmarks:\n  - group: g\n    command: [\"true\"]\n", // missing name
		"benchmarks:\n  - name: x\n",                           // missing command
		"benchmarks:\n  - name: x\n    command: [\"true\"]\n  - name: x\n    command: [\"true\"]\n", // duplicate
	}
	for _, content := range cases {
		path := writeConfig(t, content)
		_, err := Load(path)
		assert.Error(t, err, "expected rejection of:\n%s", content)
	}
}

func TestOptions_Durations(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 5*time.Microsecond, opts.MinTimeDuration())
	assert.Equal(t, time.Second, opts.MaxTimeDuration())
}

func TestOptions_ApplyNilPatch(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, opts, opts.Apply(nil))
}
