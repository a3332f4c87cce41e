/*
PURPOSE:
  Chooses how many invocations of the candidate operation to batch into
  one timed round (loops), so that a round's duration dwarfs the timer's
  resolution and meets the configured minimum round time.

REQUIREMENTS:
  User-specified:
  - loops >= 1 always.
  - Geometric growth until the observed batch duration reaches the
    target, with guaranteed progress when the observed duration is zero.
  - A warmup-iterations cap bounds the whole calibration; hitting it is
    graceful degradation (keep the best loops found), not an error.
  - Warmup, when enabled, spends what remains of the cap after
    calibration, and is itself bounded by max_time.

  Implementation-discovered:
  - Below a tenth of the target duration the observed batch time is too
    noisy to extrapolate from; grow by a flat factor of 10 instead of
    scaling by the observed ratio.

ARCHITECTURE INTEGRATION:
  - Called by: Runner.Run before the measurement phase.
  - Uses: internal/timer (resolution), internal/output (diagnostics)

ERROR HANDLING:
  - A candidate failure during calibration aborts the run (propagated by
    the caller as a BenchmarkError in the Calibrating/Warming phase).

RELATED FILES:
  - internal/engine/runner.go

MAINTENANCE:
  - The growth strategy only needs to converge monotonically; it is not
    part of the persisted schema.
*/

package engine

import (
	"math"
	"time"

	"github.com/benchpress/benchpress/internal/output"
)

// CalibrationResult is the outcome of the calibration phase.
type CalibrationResult struct {
	// Loops is the invocation count batched into each timed round.
	Loops int `json:"loops"`
	// WarmupIterations counts every discarded invocation performed
	// during calibration and warmup.
	WarmupIterations int `json:"warmup_iterations"`
	// LowConfidence is set when the warmup budget ran out before the
	// target round duration was reached.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// calibrate grows loops geometrically until one batch lasts at least the
// effective minimum round time, then optionally burns the remaining
// warmup budget. All invocations here are discarded.
func (r *Runner) calibrate(op Operation, run *Run) (CalibrationResult, error) {
	res := CalibrationResult{Loops: 1}

	// The effective target: the configured floor, or enough ticks of the
	// timer that resolution error stays below 1/precision.
	minTime := r.opts.MinTimeDuration()
	if floor := r.tm.Resolution * time.Duration(r.opts.CalibrationPrecision); floor > minTime {
		minTime = floor
	}
	estimateFloor := minTime / 10
	maxTime := r.opts.MaxTimeDuration()
	budget := r.opts.WarmupIterations

	output.Logger.Debug("calibrating",
		"benchmark", r.id.FullName(),
		"timer", r.tm.Name,
		"resolution", r.tm.Resolution,
		"target", minTime,
	)

	start := r.tm.Now()
	loops := 1
	for {
		elapsed, err := r.timedBatch(op, loops)
		if err != nil {
			return res, err
		}
		res.WarmupIterations += loops
		res.Loops = loops

		if elapsed >= minTime {
			break
		}
		if res.WarmupIterations >= budget || r.tm.Now()-start >= maxTime {
			// Budget exhausted before the target precision: keep the best
			// loops found and flag the run for diagnostics.
			res.LowConfidence = true
			output.Logger.Warn("calibration ran out of warmup budget before reaching target precision",
				"benchmark", r.id.FullName(),
				"loops", loops,
				"observed", elapsed,
				"target", minTime,
			)
			return res, nil
		}
		if elapsed >= estimateFloor {
			grown := int(math.Ceil(float64(minTime) * float64(loops) / float64(elapsed)))
			if grown <= loops {
				grown = loops + 1
			}
			loops = grown
		} else {
			// Observed duration is zero or far below target; the ratio is
			// meaningless, so grow by a flat factor.
			loops *= 10
		}
		output.Logger.Debug("calibration step", "loops", loops, "observed", elapsed)
	}

	// Spend what remains of the budget warming caches, bounded by
	// max_time so a slow candidate cannot stall startup indefinitely.
	if r.opts.Warmup {
		run.state = StateWarming
		for res.WarmupIterations < budget && r.tm.Now()-start < maxTime {
			if _, err := r.timedBatch(op, res.Loops); err != nil {
				return res, err
			}
			res.WarmupIterations += res.Loops
		}
		output.Logger.Debug("warmup complete",
			"benchmark", r.id.FullName(),
			"iterations", res.WarmupIterations,
		)
	}

	return res, nil
}
