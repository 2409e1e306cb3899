package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	output  string
	pkgName string

	stateVals   []float64
	controlVals []float64
	scale       float64
	csvPath     string
	jsonPath    string
	save        bool

	samples      int
	seed         int64
	selftestSeed int64

	numeric bool

	sweepIndex int
	sweepEntry int
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	sweepU     []float64

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dyngen",
		Short: "symbolic rocket dynamics and evaluator generator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dyngen", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "default", "constants preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "derive f, A, B symbolically and write the evaluator module",
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from config)")
	generateCmd.Flags().StringVar(&pkgName, "package", "", "package name of the generated file")

	evalCmd := &cobra.Command{
		Use:   "eval [f|A|B]",
		Short: "evaluate a matrix with numeric constants",
		Args:  cobra.ExactArgs(1),
		RunE:  runEval,
	}
	evalCmd.Flags().Float64SliceVar(&stateVals, "x", nil, "state (14 values, default hover)")
	evalCmd.Flags().Float64SliceVar(&controlVals, "u", nil, "control (3 values, default zero)")
	evalCmd.Flags().Float64Var(&scale, "s", 1.0, "time scale")
	evalCmd.Flags().StringVar(&csvPath, "csv", "", "write values as CSV")
	evalCmd.Flags().StringVar(&jsonPath, "json", "", "write values as JSON")
	evalCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "finite-difference, round-trip and sparsity checks",
		RunE:  runCheck,
	}
	checkCmd.Flags().IntVar(&samples, "samples", 0, "number of random samples (default from config)")
	checkCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default from config)")
	checkCmd.Flags().BoolVar(&save, "save", false, "save the results to the data directory")

	selftestCmd := &cobra.Command{
		Use:   "selftest",
		Short: "generate, load and call the evaluator module",
		RunE:  runSelftest,
	}
	selftestCmd.Flags().Int64Var(&selftestSeed, "seed", time.Now().UnixNano(), "random seed")

	sparsityCmd := &cobra.Command{
		Use:   "sparsity",
		Short: "show the nonzero pattern of A and B",
		RunE:  runSparsity,
	}
	sparsityCmd.Flags().BoolVar(&numeric, "numeric", false, "use the pattern of numerically bound constants")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "plot one entry of f along a sweep of one state",
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepIndex, "index", 11, "state index to sweep")
	sweepCmd.Flags().IntVar(&sweepEntry, "entry", 11, "entry of f to plot")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", -1, "sweep start")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "sweep end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 80, "number of points")
	sweepCmd.Flags().Float64SliceVar(&sweepU, "u", []float64{1, 0.1, 0}, "control held during the sweep")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list constant presets",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "show a saved run and its values",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	rootCmd.AddCommand(generateCmd, evalCmd, checkCmd, selftestCmd, sparsityCmd, sweepCmd, presetsCmd, listCmd, showCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
