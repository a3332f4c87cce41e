package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchpress/benchpress/internal/compare"
	"github.com/benchpress/benchpress/internal/config"
	"github.com/benchpress/benchpress/internal/storage"
)

// stubProviders keeps the tests independent of the host and of git.
type stubProviders struct{}

func (stubProviders) MachineInfo() map[string]string { return map[string]string{"node": "test"} }
func (stubProviders) CommitInfo() map[string]string  { return map[string]string{"id": "unknown"} }

// fastSuite is a one-benchmark suite that spawns `true` a handful of
// times: a deliberately tiny budget keeps calibration to one batch and
// measurement to exactly min_rounds.
func fastSuite(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage = filepath.Join(t.TempDir(), "store")
	cfg.Options.MinTime = 0
	cfg.Options.MaxTime = 1e-9
	cfg.Options.MinRounds = 2
	cfg.Options.CalibrationPrecision = 1
	cfg.Options.WarmupIterations = 1
	cfg.Benchmarks = []config.Benchmark{
		{Name: "noop", Group: "sys", Command: []string{"true"}},
	}
	return cfg
}

func newTestSession(cfg *config.Config, opts Options) *Session {
	s := New(cfg, opts)
	s.SetProviders(stubProviders{}, stubProviders{})
	return s
}

func TestSession_RunMeasuresAndSaves(t *testing.T) {
	cfg := fastSuite(t)
	jsonPath := filepath.Join(t.TempDir(), "report.json")

	s := newTestSession(cfg, Options{Save: "case", JSONPath: jsonPath})
	require.NoError(t, s.Run())

	results := s.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "sys/noop", results[0].Run.Identity.FullName())
	assert.Equal(t, 2, results[0].Record.Rounds)

	// Saved run: stats only (no --save-data).
	st := storage.New(cfg.Storage)
	saved, src, err := st.LoadRef("")
	require.NoError(t, err)
	assert.Equal(t, "0001_case.json", filepath.Base(src))
	require.Len(t, saved.Benchmarks, 1)
	assert.Equal(t, "sys/noop", saved.Benchmarks[0].FullName)
	assert.Contains(t, saved.Benchmarks[0].Stats, "mean")
	assert.Empty(t, saved.Benchmarks[0].Data)
	assert.Equal(t, "test", saved.MachineInfo["node"])

	// JSON report: always full fidelity.
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var report storage.SavedRun
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Benchmarks, 1)
	assert.Len(t, report.Benchmarks[0].Data, 2)
}

func TestSession_SaveDataIncludesRounds(t *testing.T) {
	cfg := fastSuite(t)
	s := newTestSession(cfg, Options{Save: "raw", SaveData: true})
	require.NoError(t, s.Run())

	saved, _, err := storage.New(cfg.Storage).LoadRef("")
	require.NoError(t, err)
	assert.Len(t, saved.Benchmarks[0].Data, 2)
}

func TestSession_FailingCandidate(t *testing.T) {
	cfg := fastSuite(t)
	cfg.Benchmarks = []config.Benchmark{
		{Name: "broken", Group: "sys", Command: []string{"false"}},
	}

	s := newTestSession(cfg, Options{Save: "never"})
	err := s.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sys/broken")
	assert.Empty(t, s.Results())

	// Nothing to save from a fully failed session.
	names, lerr := storage.New(cfg.Storage).List()
	require.NoError(t, lerr)
	assert.Empty(t, names)
}

func TestSession_FailureDoesNotStopOtherBenchmarks(t *testing.T) {
	cfg := fastSuite(t)
	cfg.Benchmarks = []config.Benchmark{
		{Name: "broken", Group: "sys", Command: []string{"false"}},
		{Name: "noop", Group: "sys", Command: []string{"true"}},
	}

	s := newTestSession(cfg, Options{})
	err := s.Run()
	require.Error(t, err, "the broken benchmark still fails the session")
	require.Len(t, s.Results(), 1, "the healthy benchmark still ran")
	assert.Equal(t, "sys/noop", s.Results()[0].Run.Identity.FullName())
}

func TestSession_CompareRegressionFails(t *testing.T) {
	cfg := fastSuite(t)

	// A fabricated baseline with mean=0: any real measurement exceeds a
	// zero absolute tolerance.
	baseline := &storage.SavedRun{
		MachineInfo: map[string]string{"node": "test"},
		Benchmarks: []storage.SavedBenchmark{
			{FullName: "sys/noop", Stats: map[string]float64{"mean": 0}},
		},
	}
	_, err := storage.New(cfg.Storage).Save(baseline, "baseline")
	require.NoError(t, err)

	th, err := compare.ParseThreshold("mean:0")
	require.NoError(t, err)

	s := newTestSession(cfg, Options{Compare: true, CompareFail: []compare.Threshold{th}})
	err = s.Run()
	require.Error(t, err)

	var regression *compare.RegressionError
	require.ErrorAs(t, err, &regression)
	require.Len(t, regression.Violations, 1)
	assert.Equal(t, "sys/noop", regression.Violations[0].FullName)
}

func TestSession_CompareWithinToleranceSucceeds(t *testing.T) {
	cfg := fastSuite(t)

	baseline := &storage.SavedRun{
		MachineInfo: map[string]string{"node": "test"},
		Benchmarks: []storage.SavedBenchmark{
			{FullName: "sys/noop", Stats: map[string]float64{"mean": 3600}},
		},
	}
	_, err := storage.New(cfg.Storage).Save(baseline, "generous")
	require.NoError(t, err)

	th, err := compare.ParseThreshold("mean:10%")
	require.NoError(t, err)

	s := newTestSession(cfg, Options{Compare: true, CompareFail: []compare.Threshold{th}})
	assert.NoError(t, s.Run(), "an hour-long baseline mean cannot regress here")
}

func TestSession_MissingBaselineIsNonFatal(t *testing.T) {
	cfg := fastSuite(t)
	s := newTestSession(cfg, Options{Compare: true})
	assert.NoError(t, s.Run(), "comparison is disabled with a warning")
}

func TestSession_SaveTag(t *testing.T) {
	cfg := fastSuite(t)

	s := newTestSession(cfg, Options{Save: "explicit", Autosave: true})
	assert.Equal(t, "explicit", s.saveTag(), "--save wins over --autosave")

	s = newTestSession(cfg, Options{Autosave: true})
	tag := s.saveTag()
	assert.True(t, strings.HasPrefix(tag, "unversioned_"), "tag %q", tag)

	s = newTestSession(cfg, Options{})
	assert.Equal(t, "", s.saveTag())
}

func TestCommandOperation(t *testing.T) {
	require.NoError(t, CommandOperation([]string{"true"})())

	err := CommandOperation([]string{"false"})()
	require.Error(t, err)

	err = CommandOperation([]string{"sh", "-c", "echo kaboom >&2; exit 3"})()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom", "stderr is surfaced in the error")
}
