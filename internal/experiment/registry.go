package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/diffyq/internal/dynamo"
	"github.com/san-kum/diffyq/internal/integrators"
)

// Equation is a named right-hand side with an optional closed-form solution.
type Equation struct {
	Name        string
	Formula     string
	Description string
	F           dynamo.Func
	// Exact returns the analytic solution through (t0, x0), or nil when the
	// equation has none in closed form.
	Exact func(t0, x0 float64) func(t float64) float64
}

type IntegratorFactory func(f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts ...integrators.Option) (dynamo.Integrator, error)

type Registry struct {
	equations   map[string]Equation
	integrators map[string]IntegratorFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		equations:   make(map[string]Equation),
		integrators: make(map[string]IntegratorFactory),
	}

	r.AddEquation(Equation{
		Name: "growth", Formula: "t*x", Description: "gaussian growth",
		F: func(t, x float64) float64 { return t * x },
		Exact: func(t0, x0 float64) func(float64) float64 {
			return func(t float64) float64 { return x0 * math.Exp(0.5*(t*t-t0*t0)) }
		},
	})
	r.AddEquation(Equation{
		Name: "decay", Formula: "-x", Description: "exponential decay",
		F: func(t, x float64) float64 { return -x },
		Exact: func(t0, x0 float64) func(float64) float64 {
			return func(t float64) float64 { return x0 * math.Exp(-(t - t0)) }
		},
	})
	r.AddEquation(Equation{
		Name: "logistic", Formula: "x*(1-x)", Description: "logistic population",
		F: func(t, x float64) float64 { return x * (1 - x) },
		Exact: func(t0, x0 float64) func(float64) float64 {
			return func(t float64) float64 {
				e := math.Exp(t - t0)
				return x0 * e / (1 - x0 + x0*e)
			}
		},
	})
	r.AddEquation(Equation{
		Name: "forced", Formula: "cos(t)", Description: "pure forcing",
		F: func(t, x float64) float64 { return math.Cos(t) },
		Exact: func(t0, x0 float64) func(float64) float64 {
			return func(t float64) float64 { return x0 + math.Sin(t) - math.Sin(t0) }
		},
	})
	r.AddEquation(Equation{
		Name: "linear", Formula: "t+x", Description: "linear inhomogeneous",
		F: func(t, x float64) float64 { return t + x },
		Exact: func(t0, x0 float64) func(float64) float64 {
			return func(t float64) float64 { return (x0+t0+1)*math.Exp(t-t0) - t - 1 }
		},
	})
	r.AddEquation(Equation{
		Name: "riccati", Formula: "x^2+1", Description: "finite-time blowup",
		F: func(t, x float64) float64 { return x*x + 1 },
		Exact: func(t0, x0 float64) func(float64) float64 {
			return func(t float64) float64 { return math.Tan(t - t0 + math.Atan(x0)) }
		},
	})
	r.AddEquation(Equation{
		Name: "sine", Formula: "sin(t*x)", Description: "nonlinear, no closed form",
		F: func(t, x float64) float64 { return math.Sin(t * x) },
	})

	r.integrators["euler"] = func(f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts ...integrators.Option) (dynamo.Integrator, error) {
		return integrators.NewEuler(f, t0, x0, cfg, opts...)
	}
	r.integrators["rk4"] = func(f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts ...integrators.Option) (dynamo.Integrator, error) {
		return integrators.NewRK4(f, t0, x0, cfg, opts...)
	}
	r.integrators["dopri"] = func(f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts ...integrators.Option) (dynamo.Integrator, error) {
		return integrators.NewDormandPrince(f, t0, x0, cfg, opts...)
	}

	return r
}

func (r *Registry) AddEquation(eq Equation) {
	r.equations[eq.Name] = eq
}

func (r *Registry) GetEquation(name string) (Equation, error) {
	eq, ok := r.equations[name]
	if !ok {
		return Equation{}, fmt.Errorf("unknown equation: %s", name)
	}
	return eq, nil
}

// NewIntegrator builds the named integrator. Construction errors are
// returned as is so callers can match dynamo sentinel errors.
func (r *Registry) NewIntegrator(name string, f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts ...integrators.Option) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	integ, err := fn(f, t0, x0, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return integ, nil
}

func (r *Registry) ListEquations() []string {
	names := make([]string, 0, len(r.equations))
	for name := range r.equations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
