/*
PURPOSE:
  Defines the root Cobra command for the Benchpress CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config, --storage and --verbose.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/benchpress/main.go
  - Calls: Child commands (run, list, compare)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

RELATED FILES:
  - cmd/benchpress/main.go

MAINTENANCE:
  - Update when adding new global configuration options.
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/benchpress/benchpress/internal/config"
	"github.com/benchpress/benchpress/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string
	// storageOverride points at a non-default saved-run directory
	storageOverride string
	verbose         bool

	rootCmd = &cobra.Command{
		Use:   "benchpress",
		Short: "Adaptive benchmarking with baseline regression detection",
		Long: `Benchpress measures command execution time with adaptive calibration,
compares runs against saved baselines, and fails on regressions.
Use 'run --help' for measurement options.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

// storageDir resolves the saved-run directory: --storage wins, then the
// config file's storage setting, then the built-in default.
func storageDir() (string, error) {
	if storageOverride != "" {
		return storageOverride, nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return "", err
	}
	return cfg.Storage, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./benchpress.yaml)")
	rootCmd.PersistentFlags().StringVar(&storageOverride, "storage", "", "directory for saved runs (default is ./.benchmarks)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "dump calibration and progress diagnostics")
}
