/*
PURPOSE:
  Judges current measurements against a previously saved baseline run.
  Parses "metric:threshold" expressions, evaluates every expression for
  every matched benchmark, and aggregates all violations into a single
  regression failure at the end of the session.

REQUIREMENTS:
  User-specified:
  - metric is one of the stats labels; threshold is "N%" (relative) or a
    bare number (absolute seconds).
  - Relative fail: current > baseline * (1 + pct/100).
    Absolute fail: current > baseline + threshold.
  - A benchmark absent from the baseline is silently skipped.
  - A machine-info mismatch is a warning only.
  - Evaluation never stops at the first failure.

  Implementation-discovered:
  - Unknown metric names must be rejected when the expression is parsed,
    before any measurement runs; discovering the typo after a ten-minute
    suite wastes the run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/session
  - Consumes: internal/storage.SavedRun (read-only; no file I/O here),
    internal/stats.Record

ERROR HANDLING:
  - RegressionError is a distinguished error carrying every violated
    (benchmark, metric, baseline) triple; it is not a generic failure.

USAGE:
  th, err := compare.ParseThreshold("mean:10%")
  c := compare.New(baseline, src, []compare.Threshold{th}, machineInfo)
  c.Check(fullname, rec)
  err = c.Finish()

RELATED FILES:
  - internal/storage/storage.go (schema)
  - internal/stats/stats.go (metric values)

MAINTENANCE:
  - New comparable metrics: extend metricAccessors (keep it a closed set).
*/

package compare

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"

	"github.com/benchpress/benchpress/internal/output"
	"github.com/benchpress/benchpress/internal/stats"
	"github.com/benchpress/benchpress/internal/storage"
)

// Metric is one of the comparable statistics.
type Metric string

const (
	MetricMin    Metric = "min"
	MetricMax    Metric = "max"
	MetricMean   Metric = "mean"
	MetricStdDev Metric = "stddev"
	MetricMedian Metric = "median"
	MetricIQR    Metric = "iqr"
	MetricOps    Metric = "ops"
)

// metricAccessors is the closed set of comparable metrics. String-keyed
// dispatch stops here; everything past parse time works on Metric.
var metricAccessors = map[Metric]func(stats.Record) float64{
	MetricMin:    func(r stats.Record) float64 { return r.Min },
	MetricMax:    func(r stats.Record) float64 { return r.Max },
	MetricMean:   func(r stats.Record) float64 { return r.Mean },
	MetricStdDev: func(r stats.Record) float64 { return r.StdDev },
	MetricMedian: func(r stats.Record) float64 { return r.Median },
	MetricIQR:    func(r stats.Record) float64 { return r.IQR },
	MetricOps:    func(r stats.Record) float64 { return r.Ops },
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := metricAccessors[m]; !ok {
		names := make([]string, 0, len(metricAccessors))
		for k := range metricAccessors {
			names = append(names, string(k))
		}
		sort.Strings(names)
		return "", fmt.Errorf("unknown metric %q (available: %s)", s, strings.Join(names, ", "))
	}
	return m, nil
}

// Value reads this metric from a stats record.
func (m Metric) Value(r stats.Record) float64 {
	return metricAccessors[m](r)
}

// Threshold is one parsed "metric:threshold" expression.
type Threshold struct {
	Metric   Metric
	Value    float64
	Relative bool // true for "N%", false for absolute seconds
}

// ParseThreshold parses expressions like "mean:10%" or "min:0.001".
func ParseThreshold(expr string) (Threshold, error) {
	name, raw, ok := strings.Cut(expr, ":")
	if !ok {
		return Threshold{}, fmt.Errorf("malformed threshold %q, expected metric:threshold (eg: mean:10%% or min:0.001)", expr)
	}
	metric, err := ParseMetric(name)
	if err != nil {
		return Threshold{}, fmt.Errorf("threshold %q: %w", expr, err)
	}
	t := Threshold{Metric: metric}
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "%") {
		t.Relative = true
		raw = strings.TrimSuffix(raw, "%")
	}
	t.Value, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("threshold %q: invalid number %q", expr, raw)
	}
	if t.Value < 0 {
		return Threshold{}, fmt.Errorf("threshold %q: tolerance must be >= 0", expr)
	}
	return t, nil
}

func (t Threshold) String() string {
	if t.Relative {
		return fmt.Sprintf("%s:%g%%", t.Metric, t.Value)
	}
	return fmt.Sprintf("%s:%g", t.Metric, t.Value)
}

// allowed computes the largest passing value for a baseline reading.
func (t Threshold) allowed(baseline float64) float64 {
	if t.Relative {
		return baseline * (1 + t.Value/100)
	}
	return baseline + t.Value
}

// Violation records one failed threshold for one benchmark.
type Violation struct {
	FullName  string
	Threshold Threshold
	Baseline  float64
	Current   float64
	Allowed   float64
	Source    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s failed, %.6g > %.6g (baseline %.6g from %s)",
		v.FullName, v.Threshold, v.Current, v.Allowed, v.Baseline, v.Source)
}

// RegressionError aggregates every violation of a session.
type RegressionError struct {
	Violations []Violation
}

func (e *RegressionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "performance regressed on %d threshold(s):", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n\t")
		b.WriteString(v.String())
	}
	return b.String()
}

// Comparator matches current measurements against one baseline run.
type Comparator struct {
	baseline   *storage.SavedRun
	source     string
	thresholds []Threshold
	violations []Violation
}

// New builds a comparator. The machine-info check happens once, here:
// a mismatch warns but never affects verdicts.
func New(baseline *storage.SavedRun, source string, thresholds []Threshold, machineInfo map[string]string) *Comparator {
	if machineInfo != nil && !maps.Equal(baseline.MachineInfo, machineInfo) {
		output.Logger.Warn("baseline was recorded on a different machine; comparison may not be meaningful",
			"baseline", source,
			"saved", formatInfo(baseline.MachineInfo),
			"current", formatInfo(machineInfo),
		)
	}
	return &Comparator{baseline: baseline, source: source, thresholds: thresholds}
}

// Check looks the benchmark up in the baseline and evaluates every
// threshold expression against it. Absence of a match is not an error;
// nil is returned and nothing is recorded. All violations across calls
// accumulate for Finish.
func (c *Comparator) Check(fullname string, rec stats.Record) *storage.SavedBenchmark {
	base := c.baseline.Find(fullname)
	if base == nil {
		output.Logger.Debug("no baseline entry, skipping comparison", "benchmark", fullname)
		return nil
	}
	for _, t := range c.thresholds {
		baseValue, ok := base.Stats[string(t.Metric)]
		if !ok {
			output.Logger.Warn("baseline is missing a metric, skipping expression",
				"benchmark", fullname, "metric", t.Metric, "baseline", c.source)
			continue
		}
		current := t.Metric.Value(rec)
		allowed := t.allowed(baseValue)
		if current > allowed {
			c.violations = append(c.violations, Violation{
				FullName:  fullname,
				Threshold: t,
				Baseline:  baseValue,
				Current:   current,
				Allowed:   allowed,
				Source:    c.source,
			})
		}
	}
	return base
}

// Finish returns the aggregate regression failure, or nil when every
// evaluated expression passed.
func (c *Comparator) Finish() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &RegressionError{Violations: c.violations}
}

func formatInfo(info map[string]string) string {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+info[k])
	}
	return strings.Join(parts, " ")
}
