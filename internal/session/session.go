/*
PURPOSE:
  High-level session that orchestrates a benchmark suite.
  Loops through the configured benchmarks, drives the measurement engine
  serially, then compares, reports, exports and saves.

REQUIREMENTS:
  User-specified:
  - Run every benchmark even when one fails; report all failures at the
    end, with regression failures kept distinct from candidate failures.
  - Save/autosave/export are post-measurement concerns and must never
    abort measurements already taken.

  Implementation-discovered:
  - Benchmarks must run strictly one at a time on the calling goroutine;
    any parallelism here would contaminate the timing of its neighbors.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine, internal/stats, internal/compare,
    internal/storage, internal/machine, internal/output

ERROR HANDLING:
  - Candidate failures are logged and collected (the session continues).
  - A missing baseline disables comparison with a warning.
  - The returned error joins every benchmark failure with the aggregate
    RegressionError, so one exit reports everything.

USAGE:
  s := session.New(cfg, opts)
  err := s.Run()

RELATED FILES:
  - internal/cli/run.go
  - internal/engine/runner.go

MAINTENANCE:
  - Keep the phase order: measure, compare, report, export, save.
*/

package session

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/benchpress/benchpress/internal/compare"
	"github.com/benchpress/benchpress/internal/config"
	"github.com/benchpress/benchpress/internal/engine"
	"github.com/benchpress/benchpress/internal/machine"
	"github.com/benchpress/benchpress/internal/model"
	"github.com/benchpress/benchpress/internal/output"
	"github.com/benchpress/benchpress/internal/stats"
	"github.com/benchpress/benchpress/internal/storage"
)

// Options are the session-level switches (reporting, persistence,
// comparison), as opposed to the per-measurement config.Options.
type Options struct {
	Save            string
	Autosave        bool
	SaveData        bool
	JSONPath        string
	CSVPath         string
	HistogramPrefix string
	Compare         bool
	CompareRef      string
	CompareFail     []compare.Threshold
	Columns         []string
	Sort            string
	GroupBy         string
}

// Result pairs a sealed run with its derived statistics.
type Result struct {
	Run    *engine.Run
	Record stats.Record
}

// Session executes one suite end to end.
type Session struct {
	cfg   *config.Config
	opts  Options
	store *storage.Storage

	// Metadata providers, resolved once per session.
	machineProv machine.InfoProvider
	commitProv  machine.CommitProvider

	results  []Result
	failures []error
}

// New builds a session with the default metadata providers.
func New(cfg *config.Config, opts Options) *Session {
	if len(opts.Columns) == 0 {
		opts.Columns = stats.Columns
	}
	if opts.Sort == "" {
		opts.Sort = "min"
	}
	if opts.GroupBy == "" {
		opts.GroupBy = "group"
	}
	return &Session{
		cfg:         cfg,
		opts:        opts,
		store:       storage.New(cfg.Storage),
		machineProv: machine.Host{},
		commitProv:  machine.Git{},
	}
}

// SetProviders overrides the metadata providers (tests, embedders).
func (s *Session) SetProviders(info machine.InfoProvider, commit machine.CommitProvider) {
	s.machineProv = info
	s.commitProv = commit
}

// Results exposes the measured benchmarks after Run.
func (s *Session) Results() []Result { return s.results }

// Run executes the whole session.
func (s *Session) Run() error {
	machineInfo := s.machineProv.MachineInfo()

	// 1. Baseline
	var comparator *compare.Comparator
	if s.opts.Compare {
		baseline, src, err := s.store.LoadRef(s.opts.CompareRef)
		if err != nil {
			output.Logger.Warn("cannot load baseline, comparison disabled", "ref", s.opts.CompareRef, "error", err)
		} else {
			output.Logger.Info("comparing against baseline", "baseline", src)
			comparator = compare.New(baseline, src, s.opts.CompareFail, machineInfo)
		}
	}

	// 2. Measurement (strictly serial)
	for _, b := range s.cfg.Benchmarks {
		id := model.Identity{Group: b.Group, Name: b.Name, Params: b.Params}
		opts := s.cfg.Options.Apply(b.Options)

		runner, err := engine.NewRunner(id, opts)
		if err != nil {
			output.Logger.Error("invalid benchmark configuration", "benchmark", id.FullName(), "error", err)
			s.failures = append(s.failures, err)
			continue
		}

		output.Logger.Info("benchmarking", "benchmark", id.FullName(), "timer", opts.Timer)
		run, err := runner.Run(CommandOperation(b.Command))
		if err != nil {
			output.Logger.Error("benchmark failed", "benchmark", id.FullName(), "error", err)
			s.failures = append(s.failures, err)
			continue
		}

		rec, err := run.Stats()
		if err != nil {
			s.failures = append(s.failures, err)
			continue
		}
		output.Logger.Info("measured",
			"benchmark", id.FullName(),
			"rounds", rec.Rounds,
			"loops", run.Loops(),
			"mean", time.Duration(rec.Mean*float64(time.Second)),
		)
		s.results = append(s.results, Result{Run: run, Record: rec})
	}

	// 3. Comparison
	if comparator != nil {
		for _, r := range s.results {
			comparator.Check(r.Run.Identity.FullName(), r.Record)
		}
	}

	// 4. Report table
	rows := s.rows()
	groups, err := output.GroupRows(rows, s.opts.GroupBy)
	if err != nil {
		s.failures = append(s.failures, err)
	} else if len(rows) > 0 {
		if err := output.RenderTable(os.Stdout, groups, s.opts.Columns, s.opts.Sort); err != nil {
			s.failures = append(s.failures, err)
		}
	}

	// 5. Exports
	if s.opts.CSVPath != "" && len(rows) > 0 {
		if err := s.writeCSV(rows); err != nil {
			output.Logger.Error("failed to write CSV", "path", s.opts.CSVPath, "error", err)
			s.failures = append(s.failures, err)
		}
	}
	if s.opts.JSONPath != "" {
		// The JSON report always carries full data.
		if err := output.WriteJSONReport(s.opts.JSONPath, s.report(machineInfo, true)); err != nil {
			output.Logger.Error("failed to write JSON report", "path", s.opts.JSONPath, "error", err)
			s.failures = append(s.failures, err)
		}
	}
	if s.opts.HistogramPrefix != "" && len(rows) > 0 {
		files, err := output.WriteHistograms(s.opts.HistogramPrefix, groups)
		if err != nil {
			output.Logger.Error("failed to write histograms", "error", err)
			s.failures = append(s.failures, err)
		}
		for _, f := range files {
			output.Logger.Info("generated histogram", "path", f)
		}
	}

	// 6. Save
	if tag := s.saveTag(); tag != "" && len(s.results) > 0 {
		path, err := s.store.Save(s.report(machineInfo, s.opts.SaveData), tag)
		if err != nil {
			output.Logger.Error("failed to save run", "error", err)
			s.failures = append(s.failures, err)
		} else {
			output.Logger.Info("saved benchmark data", "path", path)
		}
	}

	// 7. Aggregate outcome: all candidate failures plus one regression
	// failure, never first-fail.
	outcome := s.failures
	if comparator != nil {
		if err := comparator.Finish(); err != nil {
			var regression *compare.RegressionError
			if errors.As(err, &regression) {
				output.Logger.Error("performance regressed", "violations", len(regression.Violations))
			}
			outcome = append(outcome, err)
		}
	}
	return errors.Join(outcome...)
}

// rows converts the measured results into renderable rows.
func (s *Session) rows() []output.Row {
	rows := make([]output.Row, 0, len(s.results))
	for _, r := range s.results {
		rows = append(rows, output.Row{
			Identity: r.Run.Identity,
			Labels:   r.Record.Labels(),
		})
	}
	return rows
}

// report assembles the persisted-run document. Errored runs never make
// it into s.results, so they are excluded by construction.
func (s *Session) report(machineInfo map[string]string, includeData bool) *storage.SavedRun {
	run := &storage.SavedRun{
		MachineInfo: machineInfo,
		CommitInfo:  s.commitProv.CommitInfo(),
		DateTime:    time.Now().UTC().Format(time.RFC3339),
		Version:     model.Version,
		Benchmarks:  make([]storage.SavedBenchmark, 0, len(s.results)),
	}
	for _, r := range s.results {
		b := storage.SavedBenchmark{
			Group:    r.Run.Identity.Group,
			Name:     r.Run.Identity.Name,
			FullName: r.Run.Identity.FullName(),
			Params:   r.Run.Identity.Params,
			Options:  r.Run.Options,
			Loops:    r.Run.Loops(),
			Stats:    r.Record.Labels(),
		}
		if includeData {
			b.Data = r.Run.PerIterationSeconds()
		}
		run.Benchmarks = append(run.Benchmarks, b)
	}
	return run
}

// writeCSV exports the rows with the selected columns.
func (s *Session) writeCSV(rows []output.Row) error {
	w, err := output.NewCSVWriter(s.opts.CSVPath, s.opts.Columns)
	if err != nil {
		return err
	}
	defer w.Close()
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// saveTag resolves the filename tag: --save NAME wins, --autosave
// derives one from the commit (or host) and the current time.
func (s *Session) saveTag() string {
	if s.opts.Save != "" {
		return s.opts.Save
	}
	if !s.opts.Autosave {
		return ""
	}
	ref := "unversioned"
	if commit := s.commitProv.CommitInfo(); commit["id"] != "" && commit["id"] != "unknown" {
		id := commit["id"]
		if len(id) > 8 {
			id = id[:8]
		}
		ref = id
	}
	return fmt.Sprintf("%s_%s", ref, time.Now().Format("20060102_150405"))
}
