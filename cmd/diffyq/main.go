package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/diffyq/internal/automation"
	"github.com/san-kum/diffyq/internal/config"
	"github.com/san-kum/diffyq/internal/experiment"
	"github.com/san-kum/diffyq/internal/export"
	"github.com/san-kum/diffyq/internal/integrators"
	"github.com/san-kum/diffyq/internal/metrics"
	"github.com/san-kum/diffyq/internal/optim"
	"github.com/san-kum/diffyq/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/stat"
)

var (
	solveOpts   solveOptions
	compareOpts solveOptions
	plotOpts    solveOptions
	traceOpts   solveOptions
	replOpts    solveOptions

	plotFrom, plotTo float64
	plotPoints       int
	plotIntegrators  []string
	plotHeight       int
	plotWidth        int

	traceTo    float64
	traceBound float64

	sweepOpts   solveOptions
	sweepSteps  []float64
	sweepMetric string

	mcOpts    solveOptions
	mcTrials  int
	mcPerturb float64
	mcUntil   float64
	mcBound   float64
	mcSeed    int64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	viper.SetEnvPrefix("DIFFYQ")
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "diffyq",
		Short: "numerical solutions of dx/dt = f(t, x)",
		RunE:  runREPL,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging to stderr")
	rootCmd.PersistentFlags().String("theme", "default", "color theme ("+strings.Join(viz.ListThemes(), ", ")+")")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))

	solveCmd := &cobra.Command{
		Use:   "solve [equation]",
		Short: "solve at the given points",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	solveOpts.register(solveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [equation] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same equation",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompare,
	}
	compareOpts.register(compareCmd)

	plotCmd := &cobra.Command{
		Use:   "plot [equation]",
		Short: "plot integrators against the exact solution",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlot,
	}
	plotOpts.register(plotCmd)
	plotCmd.Flags().Float64Var(&plotFrom, "from", 0, "first plotted time (defaults to t0)")
	plotCmd.Flags().Float64Var(&plotTo, "to", 2, "last plotted time")
	plotCmd.Flags().IntVar(&plotPoints, "n", 80, "number of plotted intervals")
	plotCmd.Flags().StringSliceVar(&plotIntegrators, "integrators", []string{"euler", "rk4", "dopri"}, "integrators to plot")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	traceCmd := &cobra.Command{
		Use:   "trace [equation]",
		Short: "adaptive step size trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrace,
	}
	traceOpts.register(traceCmd)
	traceCmd.Flags().Float64Var(&traceTo, "to", 5, "integrate up to this time")
	traceCmd.Flags().Float64Var(&traceBound, "bound", 1e6, "magnitude counted as unstable")

	sweepCmd := &cobra.Command{
		Use:   "sweep [equation]",
		Short: "grid search over step sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepOpts.register(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepSteps, "steps", []float64{0.1, 0.05, 0.02, 0.01}, "step sizes to try")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_abs", "metric to minimize ("+strings.Join(optim.Metrics, ", ")+")")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of solves",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [equation]",
		Short: "sensitivity to perturbed initial values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	mcOpts.register(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Float64Var(&mcPerturb, "perturb", 0.1, "maximum perturbation of x0")
	monteCarloCmd.Flags().Float64Var(&mcUntil, "until", 5, "solve each trial up to this time")
	monteCarloCmd.Flags().Float64Var(&mcBound, "bound", 1e6, "magnitude counted as unstable")
	monteCarloCmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (0 uses the clock)")

	equationsCmd := &cobra.Command{
		Use:   "equations",
		Short: "list built-in equations",
		RunE:  runEquations,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [equation]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresets,
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "interactive solver",
		RunE:  runREPL,
	}
	replOpts.register(replCmd)

	rootCmd.AddCommand(solveCmd, compareCmd, plotCmd, traceCmd, sweepCmd, scenarioCmd, monteCarloCmd, equationsCmd, presetsCmd, replCmd)
	return rootCmd
}

func newLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if viper.GetBool("verbose") {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowWarn())
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := solveOpts.resolve(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger()
	level.Debug(logger).Log("msg", "solving", "equation", cfg.Equation, "integrator", cfg.Integrator, "points", len(cfg.Points))

	exp := experiment.New(experimentConfig(cfg), experiment.NewRegistry(), integrators.WithLogger(logger))
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch solveOpts.format {
	case "csv":
		return export.WriteCSV(out, res)
	case "json":
		return export.WriteJSON(out, res)
	case "pretty":
		fmt.Fprintln(out, viz.RenderTable(viz.GetTheme(viper.GetString("theme")), res))
	default:
		writeRows(out, res)
	}
	writeSummary(out, res)
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := compareOpts.resolve(cmd, args[:1])
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	names := args[1:]
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}
	logger := newLogger()

	results, err := experiment.Compare(cmd.Context(), experimentConfig(cfg), registry, names, integrators.WithLogger(logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch compareOpts.format {
	case "csv":
		return export.WriteCSV(out, results...)
	case "json":
		return export.WriteJSON(out, results...)
	}

	fmt.Fprintf(out, "\n%s  dx/dt = %s  (t0, x0) = (%g, %g)  h = %g\n\n", cfg.Equation, formula(registry, cfg.Equation), cfg.T0, cfg.X0, cfg.Step)
	fmt.Fprintln(out, viz.RenderTable(viz.GetTheme(viper.GetString("theme")), results...))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSAMPLES\tMAX ABS ERR\tRMS ERR\tMAX REL ERR")
	for _, res := range results {
		if res.Errors.Count == 0 {
			fmt.Fprintf(w, "%s\t%d\t-\t-\t-\n", res.Integrator, res.Samples)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%.3e\n", res.Integrator, res.Samples, res.Errors.MaxAbs, res.Errors.RMS, res.Errors.MaxRel)
	}
	return w.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, err := plotOpts.resolve(cmd, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	eq, err := registry.GetEquation(cfg.Equation)
	if err != nil {
		return err
	}

	from := cfg.T0
	if cmd.Flags().Changed("from") {
		from = plotFrom
	}
	if plotTo <= from {
		return fmt.Errorf("--to %g must be after %g", plotTo, from)
	}
	points := experiment.Grid(from, plotTo, plotPoints)
	logger := newLogger()

	var series []viz.Series
	for _, name := range plotIntegrators {
		integ, err := registry.NewIntegrator(name, eq.F, cfg.T0, cfg.X0, cfg.SolverConfig(), integrators.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		series = append(series, viz.SampleSeries(integ, points))
	}
	if eq.Exact != nil {
		series = append(series, viz.ExactSeries(eq.Exact(cfg.T0, cfg.X0), points))
	}

	caption := fmt.Sprintf("dx/dt = %s, x(%g) = %g, h = %g, t in [%g, %g]", eq.Formula, cfg.T0, cfg.X0, cfg.Step, from, plotTo)
	fmt.Fprintln(cmd.OutOrStdout(), viz.Plot(series, viz.PlotOptions{Width: plotWidth, Height: plotHeight, Caption: caption}))
	return nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := traceOpts.resolve(cmd, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	eq, err := registry.GetEquation(cfg.Equation)
	if err != nil {
		return err
	}

	integ, err := integrators.NewDormandPrince(eq.F, cfg.T0, cfg.X0, cfg.SolverConfig(), integrators.WithLogger(newLogger()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	x, solveErr := integ.SolveAtPoint(traceTo)
	if solveErr != nil {
		fmt.Fprintf(out, "stopped early: %v\n", solveErr)
	}

	sizes := integ.StepSizes()
	steps := metrics.NewStepStats(sizes, cfg.MinStep, cfg.MaxStep)
	stability := metrics.NewStability(traceBound)
	stability.ObserveAll(integ.Trajectory())
	frontier := integ.Frontier()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "equation\t%s (dx/dt = %s)\n", eq.Name, eq.Formula)
	fmt.Fprintf(w, "bounds\t[%g, %g]\n", cfg.MinStep, cfg.MaxStep)
	fmt.Fprintf(w, "frontier\t%v\n", frontier)
	if solveErr == nil {
		fmt.Fprintf(w, "x(%g)\t%.10g\n", traceTo, x)
	}
	fmt.Fprintf(w, "steps\t%d\n", steps.Count)
	fmt.Fprintf(w, "h min/mean/max\t%.4g / %.4g / %.4g\n", steps.Min, steps.Mean, steps.Max)
	fmt.Fprintf(w, "h std dev\t%.4g\n", steps.StdDev)
	fmt.Fprintf(w, "within bounds\t%t\n", steps.InBounds)
	fmt.Fprintf(w, "stability\t%.3f\n", stability.Value())
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.SparklineChart(sizes, plotWidthOr(80, len(sizes))))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := sweepOpts.resolve(cmd, args)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch([]string{"h"}, [][]float64{sweepSteps})
	if err != nil {
		return err
	}

	best, value, trials, err := g.Search(cmd.Context(), experimentConfig(cfg), experiment.NewRegistry(), sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "H\tSAMPLES\t%s\n", strings.ToUpper(sweepMetric))
	for _, tr := range trials {
		if tr.Err != nil {
			fmt.Fprintf(w, "%g\t-\t%v\n", tr.Params["h"], tr.Err)
			continue
		}
		fmt.Fprintf(w, "%g\t%d\t%.3e\n", tr.Params["h"], tr.Result.Samples, tr.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best == nil {
		return fmt.Errorf("no step size answered every query")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nbest h = %g (%s = %.3e)\n", best["h"], sweepMetric, value)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), newLogger())
	out := cmd.OutOrStdout()
	for _, res := range results {
		writeRows(out, res)
		writeSummary(out, res)
		fmt.Fprintln(out)
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := mcOpts.resolve(cmd, args)
	if err != nil {
		return err
	}
	mc := &automation.MonteCarloConfig{
		Equation:     cfg.Equation,
		Integrator:   cfg.Integrator,
		T0:           cfg.T0,
		X0:           cfg.X0,
		Perturbation: mcPerturb,
		Until:        mcUntil,
		Bound:        mcBound,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
		Solver:       cfg.SolverConfig(),
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), mc, experiment.NewRegistry(), newLogger())
	if err != nil {
		return err
	}

	finals := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			finals = append(finals, r.Final.X)
		}
	}
	stable, unstable := automation.MonteCarloStats(results)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "trials\t%d\n", len(results))
	fmt.Fprintf(w, "x0 range\t[%g, %g]\n", cfg.X0-mcPerturb, cfg.X0+mcPerturb)
	fmt.Fprintf(w, "stable\t%d\n", stable)
	fmt.Fprintf(w, "unstable\t%d\n", unstable)
	if len(finals) > 0 {
		mean, std := stat.MeanStdDev(finals, nil)
		fmt.Fprintf(w, "x(%g) mean\t%.6g\n", mcUntil, mean)
		fmt.Fprintf(w, "x(%g) std dev\t%.6g\n", mcUntil, std)
	}
	return w.Flush()
}

func runEquations(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDX/DT\tEXACT\tDESCRIPTION")
	for _, name := range registry.ListEquations() {
		eq, _ := registry.GetEquation(name)
		exact := "no"
		if eq.Exact != nil {
			exact = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", eq.Name, eq.Formula, exact, eq.Description)
	}
	return w.Flush()
}

func runPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	equations := config.PresetEquations()
	if len(args) > 0 {
		equations = args
	}
	for _, eq := range equations {
		presets := config.ListPresets(eq)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for equation: %s\n", eq)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", eq)
		for _, p := range presets {
			fmt.Fprintf(out, "  %s\n", p)
		}
	}
	return nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if cmd.Flags().Lookup("config") != nil {
		resolved, err := replOpts.resolve(cmd, nil)
		if err != nil {
			return err
		}
		cfg = resolved
	}
	return viz.RunREPL(experiment.NewRegistry(), cfg.SolverConfig(), viz.GetTheme(viper.GetString("theme")))
}

func writeRows(out io.Writer, res *experiment.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tSAMPLE T\tX\tEXACT\tABS ERR")
	for _, row := range res.Rows {
		if row.Err != nil {
			fmt.Fprintf(w, "%g\t-\t-\t-\t%v\n", row.T, row.Err)
			continue
		}
		if !row.HasExact {
			fmt.Fprintf(w, "%g\t%g\t%.10g\t-\t-\n", row.T, row.SampleT, row.X)
			continue
		}
		fmt.Fprintf(w, "%g\t%g\t%.10g\t%.10g\t%.3e\n", row.T, row.SampleT, row.X, row.Exact, math.Abs(row.X-row.Exact))
	}
	w.Flush()
}

func writeSummary(out io.Writer, res *experiment.Result) {
	fmt.Fprintf(out, "\n%s with %s: %d samples", res.Equation, res.Integrator, res.Samples)
	if res.Errors.Count > 0 {
		fmt.Fprintf(out, ", max abs error %.3e", res.Errors.MaxAbs)
	}
	if res.Steps.Count > 0 {
		fmt.Fprintf(out, ", h in [%.4g, %.4g]", res.Steps.Min, res.Steps.Max)
	}
	fmt.Fprintln(out)
}

func formula(registry *experiment.Registry, name string) string {
	eq, err := registry.GetEquation(name)
	if err != nil {
		return "?"
	}
	return eq.Formula
}

func plotWidthOr(width, n int) int {
	if n < width {
		return max(n, 1)
	}
	return width
}
