package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/diffyq/internal/dynamo"
	"github.com/san-kum/diffyq/internal/integrators"
	"github.com/san-kum/diffyq/internal/metrics"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Equation   string
	Integrator string
	T0         float64
	X0         float64
	Points     []float64
	Solver     dynamo.Config
}

// Row is the answer to one point query.
type Row struct {
	T        float64
	X        float64
	SampleT  float64
	Exact    float64
	HasExact bool
	Err      error
}

type Result struct {
	Equation   string
	Integrator string
	Rows       []Row
	Samples    int
	StepSizes  []float64
	Errors     metrics.ErrorStats
	Steps      metrics.StepStats
}

type Experiment struct {
	cfg      Config
	registry *Registry
	opts     []integrators.Option
}

func New(cfg Config, registry *Registry, opts ...integrators.Option) *Experiment {
	return &Experiment{cfg: cfg, registry: registry, opts: opts}
}

// Run answers every configured point with a fresh integrator. A failed query
// is recorded on its row and does not stop the remaining ones.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	eq, err := e.registry.GetEquation(e.cfg.Equation)
	if err != nil {
		return nil, err
	}

	integ, err := e.registry.NewIntegrator(e.cfg.Integrator, eq.F, e.cfg.T0, e.cfg.X0, e.cfg.Solver, e.opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.cfg.Integrator, err)
	}

	var exact func(float64) float64
	if eq.Exact != nil {
		exact = eq.Exact(e.cfg.T0, e.cfg.X0)
	}

	result := &Result{
		Equation:   eq.Name,
		Integrator: integ.Name(),
		Rows:       make([]Row, 0, len(e.cfg.Points)),
	}

	var computed, expected []float64
	for _, p := range e.cfg.Points {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		row := Row{T: p}
		smp, err := integ.SampleAt(p)
		if err != nil {
			row.Err = err
			result.Rows = append(result.Rows, row)
			continue
		}
		row.X, row.SampleT = smp.X, smp.T
		if exact != nil {
			row.Exact, row.HasExact = exact(smp.T), true
			computed = append(computed, smp.X)
			expected = append(expected, row.Exact)
		}
		result.Rows = append(result.Rows, row)
	}

	result.Samples = integ.Len()
	result.Errors = metrics.NewErrorStats(computed, expected)
	if adaptive, ok := integ.(dynamo.AdaptiveIntegrator); ok {
		result.StepSizes = adaptive.StepSizes()
		result.Steps = metrics.NewStepStats(result.StepSizes, e.cfg.Solver.MinStep, e.cfg.Solver.MaxStep)
	}

	return result, nil
}

// Compare runs the same configuration through several integrators
// concurrently. Each integrator is owned by its own goroutine.
func Compare(ctx context.Context, cfg Config, registry *Registry, names []string, opts ...integrators.Option) ([]*Result, error) {
	results := make([]*Result, len(names))
	g, ctx := errgroup.WithContext(ctx)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			c := cfg
			c.Integrator = name
			res, err := New(c, registry, opts...).Run(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Grid returns n+1 evenly spaced points over [from, to].
func Grid(from, to float64, n int) []float64 {
	if n <= 0 {
		return []float64{from}
	}
	pts := make([]float64, n+1)
	step := (to - from) / float64(n)
	for i := range pts {
		pts[i] = dynamo.RoundTime(from+float64(i)*step, dynamo.DefaultTimePrecision)
	}
	return pts
}
