/*
PURPOSE:
  Dumps the full JSON report of a session: machine/commit metadata plus
  every benchmark's statistics and, always, the raw per-round data.

REQUIREMENTS:
  User-specified:
  - --json PATH writes one complete document (full fidelity, unlike the
    saved-run files which include raw data only on request).

ARCHITECTURE INTEGRATION:
  - Called by: internal/session
  - Consumes: internal/storage.SavedRun (same schema as saved runs)

ERROR HANDLING:
  - Returns error on file creation or encoding failure.

USAGE:
  err := output.WriteJSONReport("report.json", report)

RELATED FILES:
  - internal/storage/storage.go (schema)

MAINTENANCE:
  - The report shares the saved-run schema; change them together.
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/benchpress/benchpress/internal/storage"
)

// WriteJSONReport writes the report as one indented JSON document.
func WriteJSONReport(path string, report *storage.SavedRun) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report %s: %w", path, err)
	}
	return nil
}
