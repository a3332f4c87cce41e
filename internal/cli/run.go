/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the configured benchmark suite.

REQUIREMENTS:
  User-specified:
  - Run the benchmarks with flag overrides of any measurement option.
  - Opt-in saving, exports and baseline comparison.

  Implementation-discovered:
  - Overrides must apply only when the flag was actually set
    (cmd.Flags().Changed), otherwise flag defaults would clobber the
    config file.
  - --compare takes an optional value: bare --compare means "latest".

ARCHITECTURE INTEGRATION:
  - Calls: internal/session.Run()
  - Uses: internal/config, internal/compare (expression parsing)

ERROR HANDLING:
  - Returns error if config load fails, an expression is malformed, or
    the session reports failures/regressions.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Session.Run.

USAGE:
  benchpress run --compare --compare-fail mean:10% --autosave

RELATED FILES:
  - internal/cli/root.go
  - internal/session/session.go

MAINTENANCE:
  - New measurement options need an override block here.
*/

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benchpress/benchpress/internal/compare"
	"github.com/benchpress/benchpress/internal/config"
	"github.com/benchpress/benchpress/internal/session"
	"github.com/benchpress/benchpress/internal/stats"
)

var (
	minTimeFlag              float64
	maxTimeFlag              float64
	minRoundsFlag            int
	calibrationPrecisionFlag int
	warmupFlag               bool
	warmupIterationsFlag     int
	disableGCFlag            bool
	timerFlag                string

	saveFlag        string
	autosaveFlag    bool
	saveDataFlag    bool
	jsonFlag        string
	csvFlag         string
	histogramFlag   string
	compareFlag     string
	compareFailFlag []string
	sortFlag        string
	groupByFlag     string
	columnsFlag     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark suite",
	Long: `Executes every benchmark defined in the config file, serially:
1. Calibration: picks how many invocations to batch per timed round.
2. Warmup: optionally burns the remaining warmup budget.
3. Measurement: records rounds until the minimum round count and the
   time budget are both satisfied.
4. Comparison: judges the results against a saved baseline if requested.

Results render as a grouped table; saving and exports are opt-in.`,
	Example: `  # Run with defaults (uses benchpress.yaml)
  benchpress run

  # Save this run as a named baseline
  benchpress run --save pre-refactor

  # Compare against the latest saved run, fail on >10% mean regression
  benchpress run --compare --compare-fail mean:10%

  # Compare against saved run number 3, absolute tolerance of 1ms on min
  benchpress run --compare 3 --compare-fail min:0.001

  # Full-fidelity JSON report plus per-group charts
  benchpress run --json report.json --histogram charts/bench`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if len(cfg.Benchmarks) == 0 {
			return fmt.Errorf("no benchmarks defined (create benchpress.yaml or pass --config)")
		}

		// 2. Overrides (only flags the user actually set)
		if storageOverride != "" {
			cfg.Storage = storageOverride
		}
		flags := cmd.Flags()
		if flags.Changed("min-time") {
			cfg.Options.MinTime = minTimeFlag
		}
		if flags.Changed("max-time") {
			cfg.Options.MaxTime = maxTimeFlag
		}
		if flags.Changed("min-rounds") {
			cfg.Options.MinRounds = minRoundsFlag
		}
		if flags.Changed("calibration-precision") {
			cfg.Options.CalibrationPrecision = calibrationPrecisionFlag
		}
		if flags.Changed("warmup") {
			cfg.Options.Warmup = warmupFlag
		}
		if flags.Changed("warmup-iterations") {
			cfg.Options.WarmupIterations = warmupIterationsFlag
		}
		if flags.Changed("disable-gc") {
			cfg.Options.DisableGC = disableGCFlag
		}
		if flags.Changed("timer") {
			cfg.Options.Timer = timerFlag
		}
		if err := cfg.Options.Validate(); err != nil {
			return err
		}

		// 3. Session options
		opts := session.Options{
			Save:            saveFlag,
			Autosave:        autosaveFlag,
			SaveData:        saveDataFlag,
			JSONPath:        jsonFlag,
			CSVPath:         csvFlag,
			HistogramPrefix: histogramFlag,
			Sort:            sortFlag,
			GroupBy:         groupByFlag,
		}
		if flags.Changed("compare") {
			opts.Compare = true
			if compareFlag != "latest" {
				opts.CompareRef = compareFlag
			}
		}
		for _, expr := range compareFailFlag {
			t, err := compare.ParseThreshold(expr)
			if err != nil {
				return err
			}
			opts.CompareFail = append(opts.CompareFail, t)
		}
		if columnsFlag != "" {
			opts.Columns, err = parseColumns(columnsFlag)
			if err != nil {
				return err
			}
		}

		// 4. Execution
		return session.New(cfg, opts).Run()
	},
}

// parseColumns validates a comma-separated column list against the
// labels the stats engine produces.
func parseColumns(raw string) ([]string, error) {
	known := stats.Record{}.Labels()
	var cols []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(strings.ToLower(c))
		if c == "" {
			continue
		}
		if _, ok := known[c]; !ok {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("empty column list")
	}
	return cols, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64Var(&minTimeFlag, "min-time", 0.000005, "Minimum time per round in seconds")
	runCmd.Flags().Float64Var(&maxTimeFlag, "max-time", 1.0, "Maximum total time per benchmark in seconds (min-rounds takes precedence)")
	runCmd.Flags().IntVar(&minRoundsFlag, "min-rounds", 5, "Minimum rounds, even if total time would exceed --max-time")
	runCmd.Flags().IntVar(&calibrationPrecisionFlag, "calibration-precision", 10, "How many timer ticks a round must span during calibration")
	runCmd.Flags().BoolVar(&warmupFlag, "warmup", false, "Spend the remaining warmup budget before measuring")
	runCmd.Flags().IntVar(&warmupIterationsFlag, "warmup-iterations", 100000, "Max invocations for calibration and warmup combined")
	runCmd.Flags().BoolVar(&disableGCFlag, "disable-gc", false, "Suspend the garbage collector during timed rounds")
	runCmd.Flags().StringVar(&timerFlag, "timer", "mono", "Timer to use when measuring (mono, wall)")

	runCmd.Flags().StringVar(&saveFlag, "save", "", "Save the current run into STORAGE/NNNN_NAME.json")
	runCmd.Flags().BoolVar(&autosaveFlag, "autosave", false, "Autosave the current run under a commit/time derived name")
	runCmd.Flags().BoolVar(&saveDataFlag, "save-data", false, "Include raw per-round data in the saved run")
	runCmd.Flags().StringVar(&jsonFlag, "json", "", "Dump a full JSON report (always includes raw data) into PATH")
	runCmd.Flags().StringVar(&csvFlag, "csv", "", "Write the result table as CSV into PATH")
	runCmd.Flags().StringVar(&histogramFlag, "histogram", "", "Write per-group HTML charts as PREFIX-<group>.html")
	runCmd.Flags().StringVar(&compareFlag, "compare", "", "Compare against saved run NUM/PATH, or the latest if no value given")
	runCmd.Flags().Lookup("compare").NoOptDefVal = "latest"
	runCmd.Flags().StringArrayVar(&compareFailFlag, "compare-fail", nil, "Fail if a metric regresses past EXPR (eg: mean:10% or min:0.001; repeatable)")
	runCmd.Flags().StringVar(&sortFlag, "sort", "min", "Column to sort rows by (a metric, or 'name')")
	runCmd.Flags().StringVar(&groupByFlag, "group-by", "group", "How to group the table: group, name, fullname, func, fullfunc, param, param:NAME")
	runCmd.Flags().StringVar(&columnsFlag, "columns", "", "Comma-separated metric columns (default: all)")
}
