/*
PURPOSE:
  Scoped suspension of the garbage collector around a timed batch.
  Models the process-wide GC toggle as an owned guard instead of an
  ambient flag, so release happens on every exit path.

REQUIREMENTS:
  User-specified:
  - GC must be re-enabled even when the candidate operation fails
    mid-batch.

  Implementation-discovered:
  - debug.SetGCPercent returns the previous setting, which is exactly
    the restore value the guard must hold. Hardcoding 100 would clobber
    a user's GOGC.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine (timedBatch)

ERROR HANDLING:
  - Release is idempotent; double release is a no-op, not a panic.

USAGE:
  guard := engine.AcquireGC()
  defer guard.Release()

MAINTENANCE:
  - Not safe for concurrent use; the measurement loop owns the guard
    for the duration of one batch.
*/

package engine

import "runtime/debug"

// GCGuard holds the collector disabled until released.
type GCGuard struct {
	prev     int
	released bool
}

// AcquireGC disables automatic collection and returns the guard that
// restores the previous setting.
func AcquireGC() *GCGuard {
	return &GCGuard{prev: debug.SetGCPercent(-1)}
}

// Release restores the collector setting captured at acquisition.
// Safe to call more than once.
func (g *GCGuard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	debug.SetGCPercent(g.prev)
}
