/*
PURPOSE:
  Writes benchmark results to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV with the same column selection as the table.

  Implementation-discovered:
  - Params are rendered as one "k=v,..." cell; a column per parameter
    would make the header depend on the suite contents.

ARCHITECTURE INTEGRATION:
  - Called by: internal/session
  - Consumes: output.Row

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (crash resilience).
  - Mutex-guarded; the session is serial today but writers stay safe.

USAGE:
  w, err := output.NewCSVWriter("results.csv", columns)
  w.Write(row)
  w.Close()

RELATED FILES:
  - internal/output/table.go

MAINTENANCE:
  - Update the fixed header prefix when identity gains fields.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	file    *os.File
	writer  *csv.Writer
	columns []string
	mu      sync.Mutex
}

// NewCSVWriter creates a new CSVWriter with the given metric columns.
// It overwrites the file if it exists.
func NewCSVWriter(path string, columns []string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := append([]string{"group", "name", "fullname", "params"}, columns...)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:    f,
		writer:  w,
		columns: columns,
	}, nil
}

// Write writes a single result row. It is thread-safe.
func (cw *CSVWriter) Write(r Row) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		r.Identity.Group,
		r.Identity.Name,
		r.Identity.FullName(),
		r.Identity.ParamString(),
	}
	for _, col := range cw.columns {
		v, ok := r.Labels[col]
		if !ok {
			return fmt.Errorf("unknown column %q", col)
		}
		record = append(record, fmt.Sprintf("%.9g", v))
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
