package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/diffyq/internal/experiment"
)

// Params names the experiment settings a grid search can vary.
var Params = []string{"h", "t0", "x0", "tol", "min_step", "max_step"}

// Metrics names the result values a grid search can minimize.
var Metrics = []string{"max_abs", "rms", "max_rel", "samples"}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Result *experiment.Result
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d params and %d ranges", len(params), len(ranges))
	}
	for _, p := range params {
		if !contains(Params, p) {
			return nil, fmt.Errorf("unknown parameter: %s", p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs base once per grid point and returns the parameters minimizing
// metric together with every trial in grid order. Trials whose run fails or
// whose queries do not all succeed are recorded with an infinite value.
func (g *GridSearch) Search(ctx context.Context, base experiment.Config, registry *experiment.Registry, metric string) (map[string]float64, float64, []Trial, error) {
	if !contains(Metrics, metric) {
		return nil, 0, nil, fmt.Errorf("unknown metric: %s", metric)
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		trial := Trial{Params: params, Value: math.Inf(1)}
		res, err := experiment.New(apply(base, params), registry).Run(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			trial.Err = err
		default:
			trial.Result = res
			trial.Err = firstRowError(res)
			if trial.Err == nil {
				trial.Value = metricValue(res, metric)
			}
		}
		trials = append(trials, trial)

		if trial.Value < best {
			best = trial.Value
			bestParams = params
		}
		return nil
	})
	if err != nil {
		return nil, 0, trials, err
	}

	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

func apply(cfg experiment.Config, params map[string]float64) experiment.Config {
	cfg.Points = append([]float64(nil), cfg.Points...)
	for name, v := range params {
		switch name {
		case "h":
			cfg.Solver.StepSize = v
		case "t0":
			cfg.T0 = v
		case "x0":
			cfg.X0 = v
		case "tol":
			cfg.Solver.Tolerance = v
		case "min_step":
			cfg.Solver.MinStep = v
		case "max_step":
			cfg.Solver.MaxStep = v
		}
	}
	return cfg
}

func metricValue(res *experiment.Result, metric string) float64 {
	switch metric {
	case "samples":
		return float64(res.Samples)
	case "rms":
		return res.Errors.RMS
	case "max_rel":
		return res.Errors.MaxRel
	default:
		return res.Errors.MaxAbs
	}
}

func firstRowError(res *experiment.Result) error {
	for _, row := range res.Rows {
		if row.Err != nil {
			return row.Err
		}
	}
	return nil
}

// SortedNames returns the parameter names of a trial in a stable order.
func SortedNames(params map[string]float64) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
