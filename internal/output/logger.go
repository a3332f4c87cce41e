/*
PURPOSE:
  Provides a structured logger for Benchpress.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy; diagnostics behind --verbose.

  Implementation-discovered:
  - Benchmark output goes to stdout, so the log stream must stay on
    stderr or it corrupts piped tables/CSV.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

ERROR HANDLING:
  - N/A

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+) with a tint handler on stderr.

USAGE:
  output.Logger.Info("message", "key", "value")

MAINTENANCE:
  - Log level is switched once at startup via SetVerbose.
*/

package output

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "15:04:05",
	}))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// SetVerbose lowers the level so calibration and progress diagnostics show.
func SetVerbose(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	Logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}
