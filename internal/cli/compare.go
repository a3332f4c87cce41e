/*
PURPOSE:
  Defines the 'compare' subcommand.
  Renders saved runs side by side without re-running anything, each run
  as its own table section.

REQUIREMENTS:
  User-specified:
  - Inspect and compare previously saved runs offline.

  Implementation-discovered:
  - Reuses the run table's columns/sort flags so the two views line up.

ARCHITECTURE INTEGRATION:
  - Calls: internal/storage, internal/output

ERROR HANDLING:
  - Any unresolvable reference aborts; a partial comparison is
    misleading.

USAGE:
  benchpress compare           # latest run
  benchpress compare 2 5       # runs 0002_* and 0005_*
  benchpress compare a.json b.json

RELATED FILES:
  - internal/cli/run.go
  - internal/output/table.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/benchpress/benchpress/internal/model"
	"github.com/benchpress/benchpress/internal/output"
	"github.com/benchpress/benchpress/internal/stats"
	"github.com/benchpress/benchpress/internal/storage"
)

var (
	compareSortFlag    string
	compareColumnsFlag string
)

var compareCmd = &cobra.Command{
	Use:   "compare [REF...]",
	Short: "Display saved runs side by side",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := storageDir()
		if err != nil {
			return err
		}
		st := storage.New(dir)

		refs := args
		if len(refs) == 0 {
			refs = []string{""} // latest
		}

		columns := stats.Columns
		if compareColumnsFlag != "" {
			var err error
			columns, err = parseColumns(compareColumnsFlag)
			if err != nil {
				return err
			}
		}

		var groups []output.Group
		for _, ref := range refs {
			run, src, err := st.LoadRef(ref)
			if err != nil {
				return err
			}
			g := output.Group{Key: src}
			for _, b := range run.Benchmarks {
				g.Rows = append(g.Rows, output.Row{
					Identity: model.Identity{Group: b.Group, Name: b.Name, Params: b.Params},
					Labels:   b.Stats,
				})
			}
			groups = append(groups, g)
		}

		return output.RenderTable(os.Stdout, groups, columns, compareSortFlag)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVar(&compareSortFlag, "sort", "min", "Column to sort rows by (a metric, or 'name')")
	compareCmd.Flags().StringVar(&compareColumnsFlag, "columns", "", "Comma-separated metric columns (default: all)")
}
