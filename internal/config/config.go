package config

import (
	"os"

	"github.com/san-kum/diffyq/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEquation   = "growth"
	DefaultIntegrator = "rk4"
	DefaultStep       = 0.01
	DefaultMinStep    = 0.001
	DefaultMaxStep    = 1.0
)

type Config struct {
	Equation   string    `yaml:"equation"`
	Integrator string    `yaml:"integrator"`
	T0         float64   `yaml:"t0"`
	X0         float64   `yaml:"x0"`
	Step       float64   `yaml:"step"`
	MinStep    float64   `yaml:"min_step"`
	MaxStep    float64   `yaml:"max_step"`
	Tolerance  float64   `yaml:"tolerance"`
	MaxSteps   int       `yaml:"max_steps"`
	Precision  int       `yaml:"time_precision"`
	Points     []float64 `yaml:"points"`
}

func DefaultConfig() *Config {
	return &Config{
		Equation:   DefaultEquation,
		Integrator: DefaultIntegrator,
		T0:         0,
		X0:         1,
		Step:       DefaultStep,
		MinStep:    DefaultMinStep,
		MaxStep:    DefaultMaxStep,
		Tolerance:  dynamo.DefaultTolerance,
		MaxSteps:   dynamo.DefaultMaxSteps,
		Precision:  dynamo.DefaultTimePrecision,
		Points:     []float64{1},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SolverConfig maps the file settings onto the integrator configuration.
func (c *Config) SolverConfig() dynamo.Config {
	sc := dynamo.DefaultConfig()
	sc.StepSize = c.Step
	sc.MinStep = c.MinStep
	sc.MaxStep = c.MaxStep
	sc.Tolerance = c.Tolerance
	sc.MaxSteps = c.MaxSteps
	sc.TimePrecision = c.Precision
	return sc
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Points = append([]float64(nil), c.Points...)
	return &out
}
