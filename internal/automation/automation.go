package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/diffyq/internal/dynamo"
	"github.com/san-kum/diffyq/internal/experiment"
	"github.com/san-kum/diffyq/internal/export"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of solves.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one solve in a scenario. Zero solver fields take the
// defaults of dynamo.DefaultConfig.
type ScenarioStep struct {
	Equation   string    `yaml:"equation"`
	Integrator string    `yaml:"integrator"`
	T0         float64   `yaml:"t0"`
	X0         float64   `yaml:"x0"`
	Step       float64   `yaml:"step"`
	MinStep    float64   `yaml:"min_step"`
	MaxStep    float64   `yaml:"max_step"`
	MaxSteps   int       `yaml:"max_steps"`
	Points     []float64 `yaml:"points"`
	SaveAs     string    `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

func (s ScenarioStep) config() experiment.Config {
	cfg := dynamo.DefaultConfig()
	if s.Step != 0 {
		cfg.StepSize = s.Step
	}
	if s.MinStep != 0 {
		cfg.MinStep = s.MinStep
	}
	if s.MaxStep != 0 {
		cfg.MaxStep = s.MaxStep
	}
	if s.MaxSteps != 0 {
		cfg.MaxSteps = s.MaxSteps
	}
	integ := s.Integrator
	if integ == "" {
		integ = "rk4"
	}
	return experiment.Config{
		Equation:   s.Equation,
		Integrator: integ,
		T0:         s.T0,
		X0:         s.X0,
		Points:     s.Points,
		Solver:     cfg,
	}
}

// RunScenario executes every step in order and stops at the first step that
// cannot run. Steps with SaveAs set are written as JSON.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger log.Logger) ([]*experiment.Result, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = log.With(logger, "scenario", scenario.Name)
	results := make([]*experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		level.Info(logger).Log("msg", "running step", "step", i+1, "of", len(scenario.Steps), "equation", step.Equation)

		result, err := experiment.New(step.config(), registry).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, result)

		if step.SaveAs != "" {
			if err := export.SaveJSON(step.SaveAs, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial value uniformly within
// +/- Perturbation and solves each trial up to Until.
type MonteCarloConfig struct {
	Equation     string
	Integrator   string
	T0           float64
	X0           float64
	Perturbation float64
	Until        float64
	Bound        float64
	NumTrials    int
	Seed         int64
	Solver       dynamo.Config
}

type MonteCarloResult struct {
	TrialID int
	X0      float64
	Final   dynamo.Sample
	// Stable is false when the solve failed or |x| exceeded the bound.
	Stable bool
	Err    error
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger log.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	eq, err := registry.GetEquation(cfg.Equation)
	if err != nil {
		return nil, err
	}
	bound := cfg.Bound
	if bound <= 0 {
		bound = 1e6
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		x0 := cfg.X0 + (rng.Float64()-0.5)*2*cfg.Perturbation
		integ, err := registry.NewIntegrator(cfg.Integrator, eq.F, cfg.T0, x0, cfg.Solver)
		if err != nil {
			return nil, err
		}

		res := MonteCarloResult{TrialID: trial, X0: x0}
		smp, err := integ.SampleAt(cfg.Until)
		if err != nil {
			res.Err = err
			res.Final = integ.Frontier()
		} else {
			res.Final = smp
			res.Stable = math.Abs(smp.X) <= bound
		}
		results = append(results, res)

		if (trial+1)%10 == 0 {
			level.Debug(logger).Log("msg", "monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
