/*
PURPOSE:
  Defines the 'list' subcommand.
  Shows the saved runs in the storage directory, for picking a
  --compare reference.

REQUIREMENTS:
  User-specified:
  - List saved runs.

  Implementation-discovered:
  - Showing the recorded datetime and benchmark count saves the user
    from opening the JSON to identify a run.

ARCHITECTURE INTEGRATION:
  - Calls: internal/storage

ERROR HANDLING:
  - Unreadable files are reported per-entry; the listing continues.

USAGE:
  benchpress list --storage ./.benchmarks

RELATED FILES:
  - internal/storage/storage.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benchpress/benchpress/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved benchmark runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := storageDir()
		if err != nil {
			return err
		}
		st := storage.New(dir)

		names, err := st.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Printf("No saved runs in %s\n", dir)
			return nil
		}

		for _, name := range names {
			path := filepath.Join(dir, name)
			run, err := st.Load(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Printf("- %s  (%s, %d benchmarks)\n", name, run.DateTime, len(run.Benchmarks))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
