package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/ratenet/internal/config"
	"github.com/san-kum/ratenet/internal/experiment"
	"github.com/san-kum/ratenet/internal/integrators"
	"github.com/san-kum/ratenet/internal/ode"
	"github.com/san-kum/ratenet/internal/petri"
	"github.com/san-kum/ratenet/internal/sample"
	"github.com/san-kum/ratenet/internal/storage"
	"github.com/san-kum/ratenet/internal/viz"
)

var (
	dataDir    string
	configFile string
	integrator string
	t0         float64
	t1         float64
	dt         float64
	seed       int64
	runs       int
	doSample   bool
	fallback   bool
	adaptive   bool
	tolerance  float64
	bound      float64
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ratenet",
		Short: "simulate rate-based petri-net models",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ratenet", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model.json]",
		Short: "run one simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model.json]",
		Short: "run parallel simulations with sampled parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of runs")

	validateCmd := &cobra.Command{
		Use:   "validate [model.json]",
		Short: "validate a model document",
		Args:  cobra.ExactArgs(1),
		RunE:  validateModel,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model.json]",
		Short: "step a model with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	rootCmd.AddCommand(runCmd, ensembleCmd, validateCmd, listCmd, plotCmd, exportCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&integrator, "integrator", "rk4",
		fmt.Sprintf("integrator (%s)", strings.Join(integrators.Names(), ", ")))
	cmd.Flags().Float64Var(&t0, "t0", 0.0, "span start")
	cmd.Flags().Float64Var(&t1, "t1", 10.0, "span end")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().BoolVar(&doSample, "sample", false, "draw uncertain parameters")
	cmd.Flags().BoolVar(&fallback, "fallback-defaults", false, "use default values for unsupported distributions")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive stepping")
	cmd.Flags().Float64Var(&tolerance, "tol", 1e-6, "adaptive tolerance")
	cmd.Flags().Float64Var(&bound, "bound", config.DefaultBound, "divergence bound")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
}

// applyConfigFile folds a yaml config under the CLI flags; explicitly set
// flags win.
func applyConfigFile(cmd *cobra.Command) error {
	if configFile == "" {
		return nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cmd.Flags().Changed("integrator") {
		integrator = cfg.Integrator
	}
	if !cmd.Flags().Changed("t0") {
		t0 = cfg.T0
	}
	if !cmd.Flags().Changed("t1") {
		t1 = cfg.T1
	}
	if !cmd.Flags().Changed("dt") {
		dt = cfg.Dt
	}
	if cfg.Seed != 0 && !cmd.Flags().Changed("seed") {
		seed = cfg.Seed
	}
	if !cmd.Flags().Changed("sample") {
		doSample = cfg.Sample
	}
	if !cmd.Flags().Changed("fallback-defaults") {
		fallback = cfg.FallbackDefaults
	}
	if !cmd.Flags().Changed("adaptive") {
		adaptive = cfg.Adaptive
	}
	if cfg.Tolerance > 0 && !cmd.Flags().Changed("tol") {
		tolerance = cfg.Tolerance
	}
	if cfg.Bound > 0 && !cmd.Flags().Changed("bound") {
		bound = cfg.Bound
	}
	if cfg.Runs > 0 && cmd.Flags().Lookup("runs") != nil && !cmd.Flags().Changed("runs") {
		runs = cfg.Runs
	}
	if cfg.DataDir != "" && !cmd.Root().PersistentFlags().Changed("data") {
		dataDir = cfg.DataDir
	}
	return nil
}

func loadModel(path string) (*petri.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return petri.Load(data)
}

func modelName(m *petri.Model, path string) string {
	if m.Name != "" {
		return strings.ToLower(strings.ReplaceAll(m.Name, " ", "_"))
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func expConfig() experiment.Config {
	return experiment.Config{
		Integrator:       integrator,
		T0:               t0,
		T1:               t1,
		Dt:               dt,
		Seed:             seed,
		Runs:             runs,
		Sample:           doSample,
		FallbackDefaults: fallback,
		Adaptive:         adaptive,
		Tolerance:        tolerance,
		Bound:            bound,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	if err := applyConfigFile(cmd); err != nil {
		return err
	}

	model, err := loadModel(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(model, expConfig())

	name := modelName(model, args[0])
	fmt.Printf("running %s...\n", name)
	start := time.Now()

	result, err := exp.Run(context.Background(), seed)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(name, model.StateIDs(), seed, t0, t1, dt, integrator, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(result.States))
	if len(result.Sampled) > 0 {
		fmt.Println("\nsampled parameters:")
		for id, v := range result.Sampled {
			fmt.Printf("  %s: %.6f\n", id, v)
		}
	}
	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6g\n", name, val)
		}
	}

	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	if err := applyConfigFile(cmd); err != nil {
		return err
	}

	model, err := loadModel(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	cfg := expConfig()
	if !cmd.Flags().Changed("sample") && !doSample {
		// An ensemble without sampling would repeat the identical run.
		cfg.Sample = true
	}
	exp := experiment.New(model, cfg)

	name := modelName(model, args[0])
	fmt.Printf("running %d x %s...\n", cfg.Runs, name)
	start := time.Now()

	results, err := exp.RunEnsemble(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tID\tSEED\tSAMPLED")
	for i, result := range results {
		runSeed := cfg.Seed + int64(i)
		runID, err := st.Save(name, model.StateIDs(), runSeed, t0, t1, dt, integrator, result)
		if err != nil {
			return err
		}
		sampled := make([]string, 0, len(result.Sampled))
		for id, v := range result.Sampled {
			sampled = append(sampled, fmt.Sprintf("%s=%.4f", id, v))
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i, runID, runSeed, strings.Join(sampled, " "))
	}
	return w.Flush()
}

func validateModel(cmd *cobra.Command, args []string) error {
	model, err := loadModel(args[0])
	if err != nil {
		return err
	}

	// Compiling against the default parameter environment catches bad
	// expressions and unresolved symbols, not just structural problems.
	sys, err := ode.Compile(model, sample.Defaults(model.Parameters))
	if err != nil {
		return err
	}
	x0, err := sys.InitialState()
	if err != nil {
		return err
	}
	if _, err := sys.Rates(x0, t0); err != nil {
		return err
	}

	fmt.Printf("ok: %s\n", args[0])
	fmt.Printf("  states: %d\n", len(model.States))
	fmt.Printf("  transitions: %d\n", len(model.Transitions))
	fmt.Printf("  parameters: %d (%d uncertain)\n", len(model.Parameters), len(model.Uncertain()))
	fmt.Printf("  time unit: %s\n", model.Time.Units)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runList, err := st.List()
	if err != nil {
		return err
	}

	if len(runList) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSPAN\tDT\tINTEG")
	for _, run := range runList {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%g\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0, run.T1,
			run.Dt,
			run.Integrator,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	times, states, ids, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\nmodel: %s\n\n", meta.ID, meta.Model)
	fmt.Println(viz.PlotTrajectory(times, states, ids))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func runLive(cmd *cobra.Command, args []string) error {
	if err := applyConfigFile(cmd); err != nil {
		return err
	}

	model, err := loadModel(args[0])
	if err != nil {
		return err
	}

	var env map[string]float64
	if doSample {
		env, _, err = sample.New(seed).Resolve(model.Parameters, fallback)
		if err != nil {
			return err
		}
	} else {
		env = sample.Defaults(model.Parameters)
	}

	sys, err := ode.Compile(model, env)
	if err != nil {
		return err
	}
	x0, err := sys.InitialState()
	if err != nil {
		return err
	}
	integ, err := integrators.ByName(integrator)
	if err != nil {
		return err
	}

	m := viz.NewLive(sys, integ, x0, model.StateIDs(), dt, frameRate, modelName(model, args[0]))
	return viz.RunLive(m)
}
