/*
PURPOSE:
  Reduces a sealed sequence of per-iteration durations (seconds) into one
  immutable descriptive record: central tendency, spread, quartiles,
  Tukey outlier count and throughput.

REQUIREMENTS:
  User-specified:
  - Sample standard deviation (n-1 denominator), zero for a single round.
  - Median-of-halves quartiles, with the median element included in both
    halves when the count is odd (Tukey hinges).
  - Outliers counted outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].

  Implementation-discovered:
  - The input must be copied before sorting; callers hold the sealed
    round sequence in recorded order and export it raw.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (after a run seals), internal/session
  - Consumed by: internal/output, internal/compare (via Labels map)

ERROR HANDLING:
  - Compute returns an error for an empty sample set. Errored runs never
    reach this package.

IMPLEMENTATION RULES:
  - Pure functions, float64 seconds throughout. Identical input yields
    bit-identical output.

USAGE:
  rec, err := stats.Compute(samples, iterations)
  rec.Labels()["mean"]

RELATED FILES:
  - internal/engine/runner.go (producer)
  - internal/compare/compare.go (metric accessors)

MAINTENANCE:
  - New metrics need a field, a Labels entry and a Columns entry, plus an
    accessor in internal/compare if they should be comparable.
*/

package stats

import (
	"fmt"
	"math"
	"sort"
)

// Columns is the display order of the metric labels.
var Columns = []string{"min", "max", "mean", "stddev", "median", "iqr", "outliers", "ops", "rounds", "iterations"}

// Record is the frozen descriptive statistics of one benchmark run.
// All durations are seconds per iteration.
type Record struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"stddev"`
	Median     float64 `json:"median"`
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
	Outliers   int     `json:"outliers"`
	Ops        float64 `json:"ops"`
	Rounds     int     `json:"rounds"`
	Iterations int     `json:"iterations"`
}

// Compute derives a Record from per-iteration durations in seconds.
// iterations is the total invocation count across all rounds.
func Compute(samples []float64, iterations int) (Record, error) {
	n := len(samples)
	if n == 0 {
		return Record{}, fmt.Errorf("cannot compute statistics of zero rounds")
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	// Sample standard deviation, defined as 0 for a single round.
	stddev := 0.0
	if n > 1 {
		var sq float64
		for _, v := range sorted {
			d := v - mean
			sq += d * d
		}
		stddev = math.Sqrt(sq / float64(n-1))
	}

	median := medianOf(sorted)
	q1, q3 := quartilesOf(sorted)
	iqr := q3 - q1

	// Tukey fence at 1.5*IQR.
	lo, hi := q1-1.5*iqr, q3+1.5*iqr
	outliers := 0
	for _, v := range sorted {
		if v < lo || v > hi {
			outliers++
		}
	}

	ops := math.NaN()
	if mean != 0 {
		ops = 1 / mean
	}

	return Record{
		Min:        sorted[0],
		Max:        sorted[n-1],
		Mean:       mean,
		StdDev:     stddev,
		Median:     median,
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		Outliers:   outliers,
		Ops:        ops,
		Rounds:     n,
		Iterations: iterations,
	}, nil
}

// medianOf returns the median of an already sorted, non-empty slice.
func medianOf(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// quartilesOf computes Q1/Q3 as the medians of the lower and upper halves.
// For an odd count the median element belongs to both halves.
func quartilesOf(sorted []float64) (q1, q3 float64) {
	n := len(sorted)
	lower := sorted[:n/2+n%2]
	upper := sorted[n/2:]
	return medianOf(lower), medianOf(upper)
}

// Labels exposes the record as a label -> value mapping so reporting and
// export collaborators can select and order columns by name.
func (r Record) Labels() map[string]float64 {
	return map[string]float64{
		"min":        r.Min,
		"max":        r.Max,
		"mean":       r.Mean,
		"stddev":     r.StdDev,
		"median":     r.Median,
		"q1":         r.Q1,
		"q3":         r.Q3,
		"iqr":        r.IQR,
		"outliers":   float64(r.Outliers),
		"ops":        r.Ops,
		"rounds":     float64(r.Rounds),
		"iterations": float64(r.Iterations),
	}
}
