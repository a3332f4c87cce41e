/*
PURPOSE:
  Pluggable monotonic clock used by the measurement engine.
  Timers are identified by name so the configuration can select one and
  reports can display which clock produced the numbers.

REQUIREMENTS:
  User-specified:
  - Swappable without touching any other component.
  - Subtracting two readings yields elapsed time.

  Implementation-discovered:
  - The engine needs the timer's resolution to decide how many loops a
    round must batch before timing error becomes negligible. Resolution
    is probed once per timer, not assumed.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine (calibration + rounds)
  - Selected by: internal/config (timer name)

ERROR HANDLING:
  - ByName returns an explicit error for unknown names (rejected at
    configuration time, not at use time).

USAGE:
  tm, err := timer.ByName("mono")
  start := tm.Now()
  ...
  elapsed := tm.Now() - start

MAINTENANCE:
  - Register new clocks in ByName and document them in the run --help.
*/

package timer

import (
	"fmt"
	"time"
)

// Timer is a named monotonic clock. Now returns a reading whose absolute
// value is meaningless; only differences between readings matter.
type Timer struct {
	Name       string
	Now        func() time.Duration
	Resolution time.Duration
}

var processStart = time.Now()

// mono reads the runtime monotonic clock.
func mono() time.Duration {
	return time.Since(processStart)
}

// wall reads the wall clock. Only useful for diagnosing suspicious mono
// readings; it can jump on NTP adjustments.
func wall() time.Duration {
	return time.Duration(time.Now().UnixNano())
}

// ByName resolves a timer by its configuration name.
func ByName(name string) (Timer, error) {
	switch name {
	case "", "mono":
		return Timer{Name: "mono", Now: mono, Resolution: probeResolution(mono)}, nil
	case "wall":
		return Timer{Name: "wall", Now: wall, Resolution: probeResolution(wall)}, nil
	default:
		return Timer{}, fmt.Errorf("unknown timer %q (available: mono, wall)", name)
	}
}

// probeResolution measures the smallest observable tick of a clock: read
// until the value changes, keep the smallest delta seen over a few trials.
func probeResolution(now func() time.Duration) time.Duration {
	best := time.Duration(0)
	for trial := 0; trial < 10; trial++ {
		t0 := now()
		t1 := now()
		for t1 == t0 {
			t1 = now()
		}
		d := t1 - t0
		if best == 0 || d < best {
			best = d
		}
	}
	if best <= 0 {
		// Clock claims infinite resolution; assume one nanosecond so the
		// calibrator still has a non-zero error bound to work against.
		best = 1
	}
	return best
}
