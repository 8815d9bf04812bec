package main

import (
	"fmt"

	"github.com/san-kum/diffyq/internal/config"
	"github.com/san-kum/diffyq/internal/experiment"
	"github.com/spf13/cobra"
)

// solveOptions holds the flags shared by the solving commands.
type solveOptions struct {
	configFile string
	preset     string
	integrator string
	t0, x0     float64
	h          float64
	minStep    float64
	maxStep    float64
	tol        float64
	maxSteps   int
	points     []float64
	format     string
}

func (o *solveOptions) register(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&o.configFile, "config", "", "config file path (yaml)")
	f.StringVar(&o.preset, "preset", "", "use preset configuration")
	f.StringVar(&o.integrator, "integrator", def.Integrator, "integrator (euler, rk4, dopri)")
	f.Float64Var(&o.t0, "t0", def.T0, "initial time")
	f.Float64Var(&o.x0, "x0", def.X0, "initial value")
	f.Float64Var(&o.h, "h", def.Step, "step size")
	f.Float64Var(&o.minStep, "min-step", def.MinStep, "minimum adaptive step size")
	f.Float64Var(&o.maxStep, "max-step", def.MaxStep, "maximum adaptive step size")
	f.Float64Var(&o.tol, "tol", def.Tolerance, "adaptive error tolerance")
	f.IntVar(&o.maxSteps, "max-steps", def.MaxSteps, "step limit per query")
	f.Float64SliceVar(&o.points, "at", def.Points, "query points (repeatable or comma separated)")
	f.StringVar(&o.format, "format", "table", "output format: table, pretty, csv, json")
}

// resolve builds the effective configuration. A preset replaces the
// defaults, a config file replaces the preset, and explicitly set flags
// override both. A positional equation wins over any file value.
func (o *solveOptions) resolve(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Equation = args[0]
	}

	if o.preset != "" {
		p := config.GetPreset(cfg.Equation, o.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", o.preset, config.ListPresets(cfg.Equation))
		}
		cfg = p
	}

	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Equation = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = o.integrator
	}
	if flags.Changed("t0") {
		cfg.T0 = o.t0
	}
	if flags.Changed("x0") {
		cfg.X0 = o.x0
	}
	if flags.Changed("h") {
		cfg.Step = o.h
	}
	if flags.Changed("min-step") {
		cfg.MinStep = o.minStep
	}
	if flags.Changed("max-step") {
		cfg.MaxStep = o.maxStep
	}
	if flags.Changed("tol") {
		cfg.Tolerance = o.tol
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = o.maxSteps
	}
	if flags.Changed("at") {
		cfg.Points = append([]float64(nil), o.points...)
	}

	switch o.format {
	case "table", "pretty", "csv", "json":
	default:
		return nil, fmt.Errorf("unknown format: %s", o.format)
	}
	return cfg, nil
}

func experimentConfig(cfg *config.Config) experiment.Config {
	return experiment.Config{
		Equation:   cfg.Equation,
		Integrator: cfg.Integrator,
		T0:         cfg.T0,
		X0:         cfg.X0,
		Points:     cfg.Points,
		Solver:     cfg.SolverConfig(),
	}
}
