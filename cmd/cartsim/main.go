package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/cartsim/internal/cartpole"
	"github.com/san-kum/cartsim/internal/config"
	"github.com/san-kum/cartsim/internal/dynamo"
	"github.com/san-kum/cartsim/internal/integrators"
	"github.com/san-kum/cartsim/internal/metrics"
	"github.com/san-kum/cartsim/internal/store"
	"github.com/san-kum/cartsim/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	pos        float64
	theta      float64
	vel        float64
	omega      float64
	cartMass   float64
	pendMass   float64
	pendLength float64
	viscosity  float64
	force      float64
	integrator string
	configFile string
	preset     string
	frameRate  int
	xAxis      int
	yAxis      int
	sweepRuns  int
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cartsim",
		Short: "cart-and-pendulum simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cartsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the trajectory",
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored state trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 1, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 3, "state index for y-axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write stored run data as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write stored run data as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parallel parameter sweep",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 8, "number of sweep points")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "pendulum_mass", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.1, "first parameter value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1.0, "last parameter value")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive live view",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, exportCSVCmd,
		exportJSONCmd, presetsCmd, compareCmd, sweepCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	cmd.Flags().Float64Var(&pos, "pos", 0.0, "initial cart position")
	cmd.Flags().Float64Var(&theta, "theta", 0.01, "initial pendulum angle")
	cmd.Flags().Float64Var(&vel, "vel", 0.0, "initial cart velocity")
	cmd.Flags().Float64Var(&omega, "omega", 0.0, "initial angular velocity")
	cmd.Flags().Float64Var(&cartMass, "cart-mass", 1.0, "cart mass")
	cmd.Flags().Float64Var(&pendMass, "pendulum-mass", 1.0, "pendulum mass")
	cmd.Flags().Float64Var(&pendLength, "length", 1.0, "pendulum length")
	cmd.Flags().Float64Var(&viscosity, "viscosity", 0.0, "damping coefficient")
	cmd.Flags().Float64Var(&force, "force", 0.0, "constant horizontal force on the cart")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// scenario gathers the effective run settings after merging the preset,
// the config file, and explicit CLI flags (flags win).
func scenario(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
	}

	setIfChanged := func(name string, dst *float64, v float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	setIfChanged("dt", &cfg.Dt, dt)
	setIfChanged("time", &cfg.Duration, duration)
	setIfChanged("pos", &cfg.InitState.Pos, pos)
	setIfChanged("theta", &cfg.InitState.Theta, theta)
	setIfChanged("vel", &cfg.InitState.Vel, vel)
	setIfChanged("omega", &cfg.InitState.Omega, omega)
	setIfChanged("cart-mass", &cfg.Params.CartMass, cartMass)
	setIfChanged("pendulum-mass", &cfg.Params.PendulumMass, pendMass)
	setIfChanged("length", &cfg.Params.PendulumLength, pendLength)
	setIfChanged("viscosity", &cfg.Params.Viscosity, viscosity)
	setIfChanged("force", &cfg.Force, force)
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}

	return cfg, nil
}

func newIntegrator(name string) (dynamo.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4", "":
		return integrators.NewRK4(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func buildModel(cfg *config.Config, integ dynamo.Integrator) (*cartpole.Model, error) {
	m := cartpole.New(integ)
	if err := m.SetParameters(cfg.Params.CartMass, cfg.Params.PendulumMass, cfg.Params.PendulumLength); err != nil {
		return nil, err
	}
	if err := m.SetViscosity(cfg.Params.Viscosity); err != nil {
		return nil, err
	}
	if err := m.SetForce(cfg.Force); err != nil {
		return nil, err
	}
	if err := m.SetState(cfg.GetInitState()); err != nil {
		return nil, err
	}
	return m, nil
}

func runScenario(cfg *config.Config) (*cartpole.Model, *dynamo.Result, error) {
	integ, err := newIntegrator(cfg.Integrator)
	if err != nil {
		return nil, nil, err
	}
	model, err := buildModel(cfg, integ)
	if err != nil {
		return nil, nil, err
	}

	sim := dynamo.New(model, integ, dynamo.ConstantForce(cfg.Force))
	sim.AddMetric(metrics.NewEnergy(model))
	sim.AddMetric(metrics.NewEnergyDrift(model))
	sim.AddMetric(metrics.NewExcursion(10.0))

	result, err := sim.Run(context.Background(), model.State(), dynamo.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
	})
	return model, result, err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := scenario(cmd)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()

	fmt.Println("running cart-pole simulation...")
	start := time.Now()

	_, result, err := runScenario(cfg)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(ctx, store.RunMetadata{
		Dt:             cfg.Dt,
		Duration:       cfg.Duration,
		Integrator:     cfg.Integrator,
		CartMass:       cfg.Params.CartMass,
		PendulumMass:   cfg.Params.PendulumMass,
		PendulumLength: cfg.Params.PendulumLength,
		Viscosity:      cfg.Params.Viscosity,
		Force:          cfg.Force,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(ctx)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tDURATION\tDT\tINTEG\tM\tm\tL\tFORCE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
			run.ID,
			humanize.Time(run.Timestamp),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.CartMass,
			run.PendulumMass,
			run.PendulumLength,
			run.Force,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*store.RunMetadata, [][]float64, []float64, error) {
	st := store.New(dataDir)
	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		return nil, nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(ctx, runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	return meta, states, times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s  (dt=%.4f, %s)\n\n", meta.ID, meta.Dt, meta.Integrator)
	for idx := range states[0] {
		fmt.Println(viz.PlotSeries(states, idx, 80, 10))
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	_, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := viz.PhasePortrait(states, xAxis, yAxis, 60, 20)
	if out == "" {
		return fmt.Errorf("state indices out of range")
	}
	fmt.Print(out)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	f, err := os.Open(filepath.Join(dataDir, args[0], "states.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(os.Stdout, f)
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	result := &dynamo.Result{
		States:  make([]dynamo.State, len(states)),
		Times:   times,
		Metrics: meta.Metrics,
	}
	for i, s := range states {
		result.States[i] = s
	}

	return store.ExportJSON(os.Stdout, *meta, result)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := scenario(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tFINAL X\tFINAL THETA\tENERGY DRIFT")

	for _, name := range args {
		runCfg := *cfg
		runCfg.Integrator = name

		_, result, err := runScenario(&runCfg)
		if err != nil {
			return err
		}

		final := result.States[len(result.States)-1]
		fmt.Fprintf(w, "%s\t%+.6f\t%+.6f\t%.3g\n",
			name, final[cartpole.IdxPos], final[cartpole.IdxTheta], result.EnergyDrift)
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := scenario(cmd)
	if err != nil {
		return err
	}
	if sweepRuns < 2 {
		return fmt.Errorf("need at least 2 sweep points")
	}

	paramValue := func(run int) float64 {
		frac := float64(run) / float64(sweepRuns-1)
		return sweepFrom + frac*(sweepTo-sweepFrom)
	}

	// Validate the scenario and sweep bounds once up front so the per-run
	// factories below cannot fail.
	if _, err := newIntegrator(cfg.Integrator); err != nil {
		return err
	}
	for _, v := range []float64{sweepFrom, sweepTo} {
		probe, err := buildModel(cfg, nil)
		if err != nil {
			return err
		}
		if err := probe.SetParam(sweepParam, v); err != nil {
			return fmt.Errorf("cannot sweep %q to %g: %w", sweepParam, v, err)
		}
	}

	ensemble := dynamo.NewEnsemble(
		func(run int) dynamo.System {
			integ, _ := newIntegrator(cfg.Integrator)
			model, _ := buildModel(cfg, integ)
			_ = model.SetParam(sweepParam, paramValue(run))
			return model
		},
		func(run int) dynamo.Integrator {
			integ, _ := newIntegrator(cfg.Integrator)
			return integ
		},
		dynamo.ConstantForce(cfg.Force),
		sweepRuns,
	)

	results, err := ensemble.Run(context.Background(), cfg.GetInitState(), dynamo.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL X\tFINAL THETA\tENERGY DRIFT\n", sweepParam)
	for i, r := range results {
		final := r.States[len(r.States)-1]
		fmt.Fprintf(w, "%.4f\t%+.6f\t%+.6f\t%.3g\n",
			paramValue(i), final[cartpole.IdxPos], final[cartpole.IdxTheta], r.EnergyDrift)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := scenario(cmd)
	if err != nil {
		return err
	}

	integ, err := newIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	model, err := buildModel(cfg, integ)
	if err != nil {
		return err
	}

	return viz.RunLive(model, cfg.Dt, frameRate)
}
