package integrators

import "github.com/san-kum/diffyq/internal/dynamo"

// Euler is the fixed-step explicit Euler method.
type Euler struct {
	solver
}

func NewEuler(f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts ...Option) (*Euler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := newSolver("euler", f, t0, x0, cfg, opts)
	if err != nil {
		return nil, err
	}
	e := &Euler{solver: s}
	e.advance = e.next
	return e, nil
}

func (e *Euler) next(prev dynamo.Sample) (dynamo.Sample, float64) {
	h := e.h
	return dynamo.Sample{
		T: e.roundTime(prev.T + h),
		X: prev.X + h*e.f(prev.T, prev.X),
	}, h
}
