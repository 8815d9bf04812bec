package integrators

import "github.com/san-kum/diffyq/internal/dynamo"

// RK4 is the classical fixed-step fourth-order Runge-Kutta method.
type RK4 struct {
	solver
}

func NewRK4(f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts ...Option) (*RK4, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := newSolver("rk4", f, t0, x0, cfg, opts)
	if err != nil {
		return nil, err
	}
	r := &RK4{solver: s}
	r.advance = r.next
	return r, nil
}

func (r *RK4) next(prev dynamo.Sample) (dynamo.Sample, float64) {
	t, x, h := prev.T, prev.X, r.h
	halfH := 0.5 * h

	k1 := r.f(t, x)
	k2 := r.f(t+halfH, x+halfH*k1)
	k3 := r.f(t+halfH, x+halfH*k2)
	k4 := r.f(t+h, x+h*k3)

	h6 := h / 6.0
	return dynamo.Sample{
		T: r.roundTime(t + h),
		X: x + h6*(k1+2*k2+2*k3+k4),
	}, h
}
