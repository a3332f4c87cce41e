/*
PURPOSE:
  Builds candidate operations for the suite runner: each benchmark's
  argv is bound into an engine.Operation that spawns the process once
  per invocation with its output discarded.

REQUIREMENTS:
  User-specified:
  - The suite file describes candidates as commands.

  Implementation-discovered:
  - stderr must be captured (bounded) so a failing candidate reports
    something more useful than "exit status 1".
  - Stdout is discarded, not captured: accumulating it would allocate
    inside the timed window.

ARCHITECTURE INTEGRATION:
  - Called by: internal/session
  - Produces: engine.Operation

ERROR HANDLING:
  - A non-zero exit errors the operation, which errors the whole run.

USAGE:
  op := session.CommandOperation([]string{"gzip", "-c", "big.txt"})

RELATED FILES:
  - internal/engine/runner.go (consumer)

MAINTENANCE:
  - Library embedders bypass this entirely and hand the engine their own
    closures.
*/

package session

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/benchpress/benchpress/internal/engine"
)

const stderrCaptureLimit = 4096

// CommandOperation binds an argv into a candidate operation. Each
// invocation runs the command to completion.
func CommandOperation(argv []string) engine.Operation {
	return func() error {
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Stdout = io.Discard
		var stderr bytes.Buffer
		cmd.Stderr = &limitedWriter{w: &stderr, n: stderrCaptureLimit}

		if err := cmd.Run(); err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg != "" {
				return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
			}
			return fmt.Errorf("%s: %w", argv[0], err)
		}
		return nil
	}
}

// limitedWriter keeps the first n bytes and drops the rest.
type limitedWriter struct {
	w *bytes.Buffer
	n int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if remaining := lw.n - lw.w.Len(); remaining > 0 {
		if len(p) > remaining {
			lw.w.Write(p[:remaining])
		} else {
			lw.w.Write(p)
		}
	}
	return len(p), nil
}
