package config

import (
	"sort"

	"github.com/san-kum/diffyq/internal/dynamo"
)

var Presets = map[string]map[string]*Config{
	"growth": {
		"unit": {
			Equation: "growth", Integrator: "rk4", T0: 0, X0: 1, Step: 0.01,
			Points: []float64{0.5, 1, 1.5, 2},
		},
		"coarse": {
			Equation: "growth", Integrator: "euler", T0: 0, X0: 1, Step: 0.1,
			Points: []float64{0.5, 1, 1.5, 2},
		},
		"adaptive": {
			Equation: "growth", Integrator: "dopri", T0: 0, X0: 1, Step: 0.01,
			MinStep: 0.001, MaxStep: 0.5, Points: []float64{1, 2, 3},
		},
	},
	"decay": {
		"half-life": {
			Equation: "decay", Integrator: "rk4", T0: 0, X0: 1, Step: 0.01,
			Points: []float64{0.693147, 1.386294, 2.079442},
		},
		"long": {
			Equation: "decay", Integrator: "dopri", T0: 0, X0: 100, Step: 0.1,
			MinStep: 0.01, MaxStep: 1, Points: []float64{5, 10, 20},
		},
	},
	"logistic": {
		"sigmoid": {
			Equation: "logistic", Integrator: "rk4", T0: 0, X0: 0.01, Step: 0.05,
			Points: []float64{2, 4, 6, 8, 10},
		},
	},
	"riccati": {
		"blowup": {
			Equation: "riccati", Integrator: "rk4", T0: 0, X0: 0, Step: 0.01,
			MaxSteps: 1000, Points: []float64{1, 1.5, 2},
		},
	},
}

// GetPreset returns a copy of the named preset with unset solver fields
// filled from the defaults, or nil when it does not exist.
func GetPreset(equation, preset string) *Config {
	eqPresets, ok := Presets[equation]
	if !ok {
		return nil
	}
	p, ok := eqPresets[preset]
	if !ok {
		return nil
	}

	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.MinStep == 0 {
		cfg.MinStep = def.MinStep
	}
	if cfg.MaxStep == 0 {
		cfg.MaxStep = def.MaxStep
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = dynamo.DefaultTolerance
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = dynamo.DefaultMaxSteps
	}
	if cfg.Precision == 0 {
		cfg.Precision = dynamo.DefaultTimePrecision
	}
	return cfg
}

func ListPresets(equation string) []string {
	eqPresets, ok := Presets[equation]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(eqPresets))
	for name := range eqPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetEquations lists the equations that have presets.
func PresetEquations() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
