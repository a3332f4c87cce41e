/*
PURPOSE:
  Renders the result table: grouped, sorted, column-selected views of
  the per-benchmark statistics, with time columns scaled to a readable
  unit per column.

REQUIREMENTS:
  User-specified:
  - --columns selects and orders metric columns.
  - --sort orders rows by a metric (or by name).
  - --group-by supports group, name, fullname, func, fullfunc, param and
    param:NAME.

  Implementation-discovered:
  - A single fixed unit makes microsecond benchmarks unreadable next to
    second-long ones; each time column picks its unit from its own
    smallest value.

ARCHITECTURE INTEGRATION:
  - Called by: internal/session, internal/cli (compare subcommand)
  - Consumes: label -> value maps produced by internal/stats

ERROR HANDLING:
  - Unknown group-by/sort/column names are rejected before rendering.

USAGE:
  groups, err := output.GroupRows(rows, "group")
  output.RenderTable(os.Stdout, groups, columns, "min")

RELATED FILES:
  - internal/stats/stats.go (column labels)

MAINTENANCE:
  - Keep the column set in sync with stats.Columns.
*/

package output

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/benchpress/benchpress/internal/model"
)

// Row is one benchmark's rendered data: its identity plus the stats
// label mapping.
type Row struct {
	Identity model.Identity
	Labels   map[string]float64
}

// Group is a named set of rows rendered as one table section.
type Group struct {
	Key  string
	Rows []Row
}

// timeColumns are scaled into ns/us/ms/s; everything else renders raw.
var timeColumns = map[string]bool{
	"min": true, "max": true, "mean": true, "stddev": true,
	"median": true, "iqr": true, "q1": true, "q3": true,
}

var intColumns = map[string]bool{
	"outliers": true, "rounds": true, "iterations": true,
}

// GroupRows splits rows into table sections per the group-by mode.
func GroupRows(rows []Row, groupBy string) ([]Group, error) {
	key := func(r Row) string {
		full := r.Identity.FullName()
		switch {
		case groupBy == "group":
			return r.Identity.Group
		case groupBy == "name":
			return r.Identity.Name
		case groupBy == "fullname":
			return full
		case groupBy == "func":
			name, _, _ := strings.Cut(r.Identity.Name, "[")
			return name
		case groupBy == "fullfunc":
			name, _, _ := strings.Cut(full, "[")
			return name
		case groupBy == "param":
			return r.Identity.ParamString()
		case strings.HasPrefix(groupBy, "param:"):
			return r.Identity.Params[strings.TrimPrefix(groupBy, "param:")]
		}
		return ""
	}

	switch groupBy {
	case "group", "name", "fullname", "func", "fullfunc", "param":
	default:
		if !strings.HasPrefix(groupBy, "param:") {
			return nil, fmt.Errorf("unsupported grouping %q", groupBy)
		}
	}

	buckets := make(map[string][]Row)
	for _, r := range rows {
		k := key(r)
		buckets[k] = append(buckets[k], r)
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{Key: k, Rows: buckets[k]})
	}
	return groups, nil
}

// SortRows orders rows in place by a metric column, or by fullname when
// column is "name".
func SortRows(rows []Row, column string) error {
	if column == "name" || column == "fullname" {
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].Identity.FullName() < rows[j].Identity.FullName()
		})
		return nil
	}
	if len(rows) > 0 {
		if _, ok := rows[0].Labels[column]; !ok {
			return fmt.Errorf("unknown sort column %q", column)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Labels[column] < rows[j].Labels[column]
	})
	return nil
}

// RenderTable writes one section per group.
func RenderTable(w io.Writer, groups []Group, columns []string, sortColumn string) error {
	for _, g := range groups {
		if err := SortRows(g.Rows, sortColumn); err != nil {
			return err
		}
		title := g.Key
		if title == "" {
			title = "(ungrouped)"
		}
		fmt.Fprintf(w, "\n--- benchmark %q: %d tests ---\n", title, len(g.Rows))

		// Per-column unit, chosen from the column's smallest value.
		units := make(map[string]unit, len(columns))
		for _, col := range columns {
			if timeColumns[col] {
				units[col] = unitFor(columnMin(g.Rows, col))
			}
		}

		tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
		header := make([]string, 0, len(columns)+1)
		header = append(header, "name")
		for _, col := range columns {
			if u, ok := units[col]; ok {
				header = append(header, fmt.Sprintf("%s (%s)", col, u.suffix))
			} else {
				header = append(header, col)
			}
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))

		for _, r := range g.Rows {
			cells := make([]string, 0, len(columns)+1)
			cells = append(cells, r.Identity.FullName())
			for _, col := range columns {
				v, ok := r.Labels[col]
				if !ok {
					return fmt.Errorf("unknown column %q", col)
				}
				cells = append(cells, formatCell(col, v, units))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

type unit struct {
	suffix string
	scale  float64
}

func unitFor(seconds float64) unit {
	abs := math.Abs(seconds)
	switch {
	case abs >= 1:
		return unit{"s", 1}
	case abs >= 1e-3:
		return unit{"ms", 1e3}
	case abs >= 1e-6:
		return unit{"us", 1e6}
	default:
		return unit{"ns", 1e9}
	}
}

func columnMin(rows []Row, col string) float64 {
	m := math.Inf(1)
	for _, r := range rows {
		if v, ok := r.Labels[col]; ok && v < m {
			m = v
		}
	}
	if math.IsInf(m, 1) {
		return 0
	}
	return m
}

func formatCell(col string, v float64, units map[string]unit) string {
	switch {
	case intColumns[col]:
		return fmt.Sprintf("%d", int64(v))
	case timeColumns[col]:
		u := units[col]
		return fmt.Sprintf("%.4f", v*u.scale)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}
