/*
PURPOSE:
  Executes one benchmark: calibration, warmup, then strictly sequential
  timed rounds until both the minimum round count and the time budget
  are satisfied. Produces a sealed Run from which statistics derive.

REQUIREMENTS:
  User-specified:
  - Round sequence is append-only and never reordered.
  - Minimum rounds take precedence over the maximum time budget.
  - A candidate failure anywhere is fatal for that benchmark: the run is
    marked errored, no statistics are produced, the error propagates.
  - Optional GC suspension per timed batch, released on every exit path.

  Implementation-discovered:
  - The rounds are timed on the calling goroutine with nothing else
    scheduled by this package; parallel rounds would corrupt the signal.
  - Statistics must be computed at most once per run (sync.Once), from
    per-iteration durations (round duration / loops).

ARCHITECTURE INTEGRATION:
  - Called by: internal/session
  - Uses: internal/config, internal/model, internal/timer, internal/stats

ERROR HANDLING:
  - BenchmarkError wraps the candidate's error together with the phase
    it failed in; errors.Is/As reach the cause.

IMPLEMENTATION RULES:
  - No cancellation mid-round; the external stop request is only checked
    between rounds, like the time budget.

USAGE:
  r, err := engine.NewRunner(id, opts)
  run, err := r.Run(op)
  rec, err := run.Stats()

RELATED FILES:
  - internal/engine/calibrate.go
  - internal/engine/gcguard.go

MAINTENANCE:
  - Keep the hot loop free of allocations and logging.
*/

package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benchpress/benchpress/internal/config"
	"github.com/benchpress/benchpress/internal/model"
	"github.com/benchpress/benchpress/internal/stats"
	"github.com/benchpress/benchpress/internal/timer"
)

// Operation is one candidate invocation with its arguments already bound.
// A non-nil error aborts the benchmark.
type Operation func() error

// State tracks a run through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateCalibrating
	StateWarming
	StateMeasuring
	StateSealed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalibrating:
		return "calibrating"
	case StateWarming:
		return "warming"
	case StateMeasuring:
		return "measuring"
	case StateSealed:
		return "sealed"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// BenchmarkError marks a run that failed during calibration, warmup or
// measurement. The candidate's own error is the cause.
type BenchmarkError struct {
	FullName string
	Phase    State
	Err      error
}

func (e *BenchmarkError) Error() string {
	return fmt.Sprintf("benchmark %s failed while %s: %v", e.FullName, e.Phase, e.Err)
}

func (e *BenchmarkError) Unwrap() error { return e.Err }

// Run owns the ordered round measurements of one benchmark. It is
// mutable only while the Runner drives it; once sealed (or errored) it
// is read-only.
type Run struct {
	Identity    model.Identity
	Options     config.Options
	TimerName   string
	Calibration CalibrationResult

	// Rounds holds one elapsed duration per round, in execution order.
	Rounds     []time.Duration
	Iterations int

	state State
	err   error

	statsOnce sync.Once
	statsRec  stats.Record
	statsErr  error
}

// State reports where the run is in its lifecycle.
func (run *Run) State() State { return run.state }

// Err returns the failure that errored the run, or nil.
func (run *Run) Err() error { return run.err }

// Loops is the invocation count batched into each round.
func (run *Run) Loops() int { return run.Calibration.Loops }

// PerIterationSeconds normalizes each round duration by the loop count,
// yielding seconds per single invocation.
func (run *Run) PerIterationSeconds() []float64 {
	out := make([]float64, len(run.Rounds))
	loops := float64(run.Calibration.Loops)
	for i, d := range run.Rounds {
		out[i] = d.Seconds() / loops
	}
	return out
}

// Stats derives the descriptive statistics of a sealed run. Computed at
// most once; an errored or unfinished run has no statistics.
func (run *Run) Stats() (stats.Record, error) {
	switch run.state {
	case StateSealed:
	case StateErrored:
		return stats.Record{}, fmt.Errorf("run %s is errored, no statistics available: %w", run.Identity.FullName(), run.err)
	default:
		return stats.Record{}, fmt.Errorf("run %s is not sealed (state %s)", run.Identity.FullName(), run.state)
	}
	run.statsOnce.Do(func() {
		run.statsRec, run.statsErr = stats.Compute(run.PerIterationSeconds(), run.Iterations)
	})
	return run.statsRec, run.statsErr
}

// Runner executes one benchmark with a fixed configuration.
type Runner struct {
	id   model.Identity
	opts config.Options
	tm   timer.Timer
	stop atomic.Bool
}

// NewRunner validates the options and resolves the configured timer.
func NewRunner(id model.Identity, opts config.Options) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", id.FullName(), err)
	}
	tm, err := timer.ByName(opts.Timer)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", id.FullName(), err)
	}
	return &Runner{id: id, opts: opts, tm: tm}, nil
}

// RequestStop asks the runner to stop after the current round, once the
// minimum round count is satisfied. Safe from other goroutines.
func (r *Runner) RequestStop() { r.stop.Store(true) }

// Run drives the full lifecycle: Idle -> Calibrating -> (Warming) ->
// Measuring -> Sealed, or Errored from any active phase.
func (r *Runner) Run(op Operation) (*Run, error) {
	run := &Run{
		Identity:  r.id,
		Options:   r.opts,
		TimerName: r.tm.Name,
		state:     StateIdle,
	}

	run.state = StateCalibrating
	cal, err := r.calibrate(op, run)
	if err != nil {
		return run, r.fail(run, err)
	}
	run.Calibration = cal

	run.state = StateMeasuring
	maxTime := r.opts.MaxTimeDuration()
	var cumulative time.Duration
	for {
		elapsed, err := r.timedBatch(op, cal.Loops)
		if err != nil {
			return run, r.fail(run, err)
		}
		run.Rounds = append(run.Rounds, elapsed)
		run.Iterations += cal.Loops
		cumulative += elapsed

		// Minimum rounds take precedence over the time budget and over
		// external stop requests.
		if len(run.Rounds) < r.opts.MinRounds {
			continue
		}
		if cumulative >= maxTime || r.stop.Load() {
			break
		}
	}

	run.state = StateSealed
	return run, nil
}

// timedBatch invokes op loops times between two timer readings. The GC
// guard, when requested, is released on every exit path including a
// candidate failure or panic.
func (r *Runner) timedBatch(op Operation, loops int) (time.Duration, error) {
	if r.opts.DisableGC {
		guard := AcquireGC()
		defer guard.Release()
	}
	start := r.tm.Now()
	for i := 0; i < loops; i++ {
		if err := op(); err != nil {
			return 0, err
		}
	}
	return r.tm.Now() - start, nil
}

// fail transitions the run to Errored, recording the phase it died in.
func (r *Runner) fail(run *Run, cause error) error {
	err := &BenchmarkError{
		FullName: r.id.FullName(),
		Phase:    run.state,
		Err:      cause,
	}
	run.state = StateErrored
	run.err = err
	return err
}
