package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dyngen/internal/check"
	"github.com/san-kum/dyngen/internal/codegen"
	"github.com/san-kum/dyngen/internal/config"
	"github.com/san-kum/dyngen/internal/dynamo"
	"github.com/san-kum/dyngen/internal/loader"
	"github.com/san-kum/dyngen/internal/rocket"
	"github.com/san-kum/dyngen/internal/storage"
	"github.com/san-kum/dyngen/internal/viz"
)

// loadConfig applies the config file if given, else the preset.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	return cfg, nil
}

// source names where constants came from, for run metadata.
func source() string {
	if configFile != "" {
		return configFile
	}
	return preset
}

func deriveSymbolic(cmd *cobra.Command) (*rocket.Dynamics, error) {
	return rocket.New(cmd.Context(), rocket.SymbolicDerivation{}, logger)
}

func deriveNumeric(cmd *cobra.Command, c config.Constants) (*rocket.Dynamics, error) {
	return rocket.New(cmd.Context(), rocket.NumericConfiguration{Constants: c}, logger)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("output") {
		output = cfg.Generate.Output
	}
	if !cmd.Flags().Changed("package") {
		pkgName = cfg.Generate.Package
	}

	fmt.Println("deriving dynamics...")
	start := time.Now()
	d, err := deriveSymbolic(cmd)
	if err != nil {
		return err
	}

	gen, err := codegen.New(d, codegen.WithPackage(pkgName), codegen.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := gen.WriteFile(output); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("wrote %s (package %s)\n", output, pkgName)
	return nil
}

// sampleFromFlags builds the evaluation point, defaulting to hover with
// zero thrust.
func sampleFromFlags() (dynamo.Sample, error) {
	x := dynamo.HoverState()
	if len(stateVals) > 0 {
		x = dynamo.State(stateVals)
	}
	u := make(dynamo.Control, dynamo.ControlDim)
	if len(controlVals) > 0 {
		u = dynamo.Control(controlVals)
	}
	p := dynamo.Sample{X: x, U: u, S: scale}
	return p, p.Validate()
}

func runEval(cmd *cobra.Command, args []string) error {
	m, err := rocket.ParseMatrix(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := sampleFromFlags()
	if err != nil {
		return err
	}

	d, err := deriveNumeric(cmd, cfg.Constants)
	if err != nil {
		return err
	}
	values, err := d.Evaluate(m, p.X, p.U, p.S)
	if err != nil {
		return err
	}

	rows, cols := values.Dims()
	fmt.Printf("%s (%dx%d), constants: %s\n\n", m, rows, cols, source())
	fmt.Printf("%v\n", mat.Formatted(values, mat.Squeeze()))

	if csvPath != "" {
		if err := storage.ExportCSV(csvPath, values); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", csvPath)
	}
	if jsonPath != "" {
		data := storage.NewExportData(string(m), source(), p.X, p.U, p.S, values)
		if err := storage.ExportJSON(jsonPath, data); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", jsonPath)
	}
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Kind:    "eval",
			Preset:  source(),
			Matrix:  string(m),
			State:   p.X,
			Control: p.U,
			Scale:   p.S,
		}, values)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("samples") {
		cfg.Check.Samples = samples
	}
	if cmd.Flags().Changed("seed") {
		cfg.Check.Seed = seed
	}
	c := cfg.Constants
	points := check.Samples(cfg.Check.Samples, cfg.Check.Seed, cfg.Check.Scale)

	fmt.Println("deriving dynamics...")
	d, err := deriveSymbolic(cmd)
	if err != nil {
		return err
	}
	num, err := deriveNumeric(cmd, c)
	if err != nil {
		return err
	}

	var results []check.Result
	for _, dyn := range []*rocket.Dynamics{d, num} {
		ra, rb, err := check.FiniteDifference(dyn, c, points, check.FiniteDifferenceTol)
		if err != nil {
			return err
		}
		label := " (symbolic)"
		if !dyn.Symbolic() {
			label = " (numeric)"
		}
		ra.Name += label
		rb.Name += label
		results = append(results, ra, rb)
	}

	gen, err := codegen.New(d, codegen.WithLogger(logger))
	if err != nil {
		return err
	}
	results = append(results, check.Sparsity(d, gen))

	src, err := gen.Source()
	if err != nil {
		return err
	}
	ev, err := loader.Load(src, c)
	if err != nil {
		return err
	}
	rt, err := check.RoundTrip(d, ev, c, points, check.RoundTripTol)
	if err != nil {
		return err
	}
	results = append(results, rt...)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSAMPLES\tVIOLATIONS\tMAX ERR\tSTATUS")
	failed := 0
	metrics := make(map[string]float64, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3g\t%s\n", r.Name, r.Samples, r.Violations, r.MaxErr, viz.Status(r.Passed()))
		if !r.Passed() {
			failed++
		}
		metrics[strings.ReplaceAll(r.Name, " ", "_")] = r.MaxErr
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Kind:    "check",
			Preset:  source(),
			Scale:   cfg.Check.Scale,
			Metrics: metrics,
		}, nil)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func runSelftest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	start := time.Now()
	d, err := deriveSymbolic(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("derived in %v\n", time.Since(start).Round(time.Millisecond))

	gen, err := codegen.New(d, codegen.WithLogger(logger))
	if err != nil {
		return err
	}
	src, err := gen.Source()
	if err != nil {
		return err
	}

	start = time.Now()
	ev, err := loader.Load(src, cfg.Constants)
	if err != nil {
		return err
	}
	fmt.Printf("loaded %d bytes in %v\n", len(src), time.Since(start).Round(time.Millisecond))

	rng := rand.New(rand.NewSource(selftestSeed))
	p := check.RandomSample(rng, 0.5+rng.Float64())
	logger.Debug("selftest sample", zap.Float64s("x", p.X), zap.Float64s("u", p.U), zap.Float64("s", p.S))

	f := ev.F(p.X, p.U)
	a := ev.A(p.X, p.U, p.S)
	b := ev.B(p.X, p.U, p.S)

	fmt.Printf("f: %d\n", len(f))
	fmt.Printf("A: %dx%d\n", len(a), len(a[0]))
	fmt.Printf("B: %dx%d\n", len(b), len(b[0]))
	fmt.Println(viz.Metric("|f|", mat.Norm(mat.NewVecDense(len(f), f), 2)))
	return nil
}

func runSparsity(cmd *cobra.Command, args []string) error {
	var (
		d   *rocket.Dynamics
		err error
	)
	if numeric {
		cfg, cerr := loadConfig()
		if cerr != nil {
			return cerr
		}
		d, err = deriveNumeric(cmd, cfg.Constants)
	} else {
		d, err = deriveSymbolic(cmd)
	}
	if err != nil {
		return err
	}

	for _, m := range []rocket.Matrix{rocket.MatrixA, rocket.MatrixB} {
		zero := d.ZeroMask(m)
		assigned := make([][]bool, len(zero))
		for i, row := range zero {
			assigned[i] = make([]bool, len(row))
			for j, z := range row {
				assigned[i][j] = !z
			}
		}
		cols := rocket.StateNames[:]
		if m == rocket.MatrixB {
			cols = rocket.ControlNames[:]
		}
		fmt.Println(viz.RenderMask(string(m), assigned, rocket.StateNames[:], cols))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if sweepIndex < 0 || sweepIndex >= dynamo.StateDim {
		return fmt.Errorf("state index %d out of range [0, %d)", sweepIndex, dynamo.StateDim)
	}
	if sweepEntry < 0 || sweepEntry >= dynamo.StateDim {
		return fmt.Errorf("entry %d out of range [0, %d)", sweepEntry, dynamo.StateDim)
	}
	if !(dynamo.State{sweepFrom, sweepTo}).IsValid() {
		return fmt.Errorf("sweep range [%g, %g] must be finite", sweepFrom, sweepTo)
	}
	u := dynamo.Control(sweepU)
	if err := (dynamo.Sample{X: dynamo.HoverState(), U: u, S: 1}).Validate(); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := deriveNumeric(cmd, cfg.Constants)
	if err != nil {
		return err
	}

	// Spin about the other body axes so the gyroscopic coupling shows.
	x := dynamo.HoverState()
	x[rocket.IdxOmega+1] = 0.5
	x[rocket.IdxOmega+2] = -0.3

	xs := viz.Sweep(sweepFrom, sweepTo, sweepSteps)
	ys := make([]float64, len(xs))
	for i, v := range xs {
		x[sweepIndex] = v
		f, err := d.Evaluate(rocket.MatrixF, x, u, 1)
		if err != nil {
			return err
		}
		ys[i] = f.At(sweepEntry, 0)
	}

	caption := fmt.Sprintf("f[%d] vs %s", sweepEntry, rocket.StateNames[sweepIndex])
	fmt.Println(viz.SweepPlot(ys, caption, sweepFrom, sweepTo))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tALPHA\tRTB\tJ DIAG\tG")
	for _, name := range config.ListPresets() {
		c := config.Presets[name].Constants
		fmt.Fprintf(w, "%s\t%g\t%v\t[%g %g %g]\t%v\n",
			name, c.Alpha, c.RTB, c.J[0][0], c.J[1][1], c.J[2][2], c.G)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tCONSTANTS\tTIME\tMATRIX\tSHAPE")

	for _, run := range runs {
		shape := "-"
		if run.Rows > 0 {
			shape = fmt.Sprintf("%dx%d", run.Rows, run.Cols)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Kind,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Matrix,
			shape,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	run, err := st.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", args[0], err)
	}

	fmt.Println(viz.HeaderStyle.Render(run.ID))
	fmt.Printf("kind: %s\nconstants: %s\ntime: %s\n",
		run.Kind, run.Preset, run.Timestamp.Format("2006-01-02 15:04:05"))
	if run.Matrix != "" {
		fmt.Printf("matrix: %s (%dx%d), s = %g\n", run.Matrix, run.Rows, run.Cols, run.Scale)
	}
	names := make([]string, 0, len(run.Metrics))
	for name := range run.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(viz.Metric(name, run.Metrics[name]))
	}

	if run.Rows == 0 {
		return nil
	}
	values, err := st.LoadValues(run.ID)
	if err != nil {
		return fmt.Errorf("failed to load values of %s: %w", run.ID, err)
	}
	fmt.Printf("\n%v\n", mat.Formatted(values, mat.Squeeze()))
	return nil
}
