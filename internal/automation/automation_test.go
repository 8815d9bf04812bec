package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/diffyq/internal/dynamo"
	"github.com/san-kum/diffyq/internal/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
name: smoke
description: decay then growth
steps:
  - equation: decay
    x0: 1
    points: [0.5, 1]
  - equation: growth
    integrator: dopri
    x0: 1
    points: [1]
    save_as: %s
`

func writeScenario(t *testing.T, saveAs string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(scenarioYAML, saveAs)), 0644))
	return path
}

func TestRunScenario(t *testing.T) {
	out := filepath.Join(t.TempDir(), "growth.json")
	scenario, err := LoadScenario(writeScenario(t, out))
	require.NoError(t, err)
	assert.Equal(t, "smoke", scenario.Name)
	require.Len(t, scenario.Steps, 2)

	results, err := RunScenario(context.Background(), scenario, experiment.NewRegistry(), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "rk4", results[0].Integrator)
	assert.Equal(t, "dopri", results[1].Integrator)

	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestRunScenario_StopsAtBadStep(t *testing.T) {
	scenario := &Scenario{Name: "bad", Steps: []ScenarioStep{
		{Equation: "decay", X0: 1, Points: []float64{1}},
		{Equation: "nope", Points: []float64{1}},
		{Equation: "decay", X0: 1, Points: []float64{1}},
	}}

	results, err := RunScenario(context.Background(), scenario, experiment.NewRegistry(), nil)
	assert.ErrorContains(t, err, "step 2")
	assert.Len(t, results, 1)
}

func TestLoadScenario_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: empty\n"), 0644))
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{
		Equation:     "logistic",
		Integrator:   "rk4",
		X0:           0.5,
		Perturbation: 0.1,
		Until:        5,
		NumTrials:    20,
		Seed:         42,
		Solver:       dynamo.DefaultConfig(),
	}

	results, err := RunMonteCarlo(context.Background(), cfg, experiment.NewRegistry(), nil)
	require.NoError(t, err)
	require.Len(t, results, 20)

	stable, unstable := MonteCarloStats(results)
	assert.Equal(t, 20, stable)
	assert.Zero(t, unstable)
	for _, r := range results {
		assert.InDelta(t, 0.5, r.X0, 0.1)
		assert.Equal(t, 5.0, r.Final.T)
	}
}

func TestRunMonteCarlo_Blowup(t *testing.T) {
	cfg := &MonteCarloConfig{
		Equation:     "riccati",
		Integrator:   "rk4",
		Perturbation: 0.5,
		Until:        3,
		NumTrials:    5,
		Seed:         1,
		Solver:       dynamo.DefaultConfig(),
	}

	results, err := RunMonteCarlo(context.Background(), cfg, experiment.NewRegistry(), nil)
	require.NoError(t, err)
	stable, unstable := MonteCarloStats(results)
	assert.Zero(t, stable)
	assert.Equal(t, 5, unstable)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}
