package integrators

import (
	"math"

	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/diffyq/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Tableau holds the coefficients of an embedded Runge-Kutta pair.
type Tableau struct {
	C  []float64
	A  [][]float64
	B1 []float64 // weights of the propagated solution
	B2 []float64 // weights of the embedded solution, used for error estimation
	E  []float64 // B2 - B1
}

// DormandPrince45 is the 7-stage Dormand-Prince 5(4) pair.
var DormandPrince45 = newTableau(
	[]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
	[][]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	},
	[]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
	[]float64{5179.0 / 57600.0, 0, 7571.0 / 16695.0, 393.0 / 640.0, -92097.0 / 339200.0, 187.0 / 2100.0, 1.0 / 40.0},
)

func newTableau(c []float64, a [][]float64, b1, b2 []float64) Tableau {
	e := make([]float64, len(b1))
	floats.SubTo(e, b2, b1)
	return Tableau{C: c, A: a, B1: b1, B2: b2, E: e}
}

// Stages returns the number of stages of the pair.
func (tb Tableau) Stages() int { return len(tb.C) }

// DormandPrince is the adaptive Dormand-Prince 4(5) method. Each step uses
// the current step size; the error estimate of that step only rescales the
// step size used by the next one.
type DormandPrince struct {
	solver
	tableau Tableau
	k       []float64
	minStep float64
	maxStep float64
}

func NewDormandPrince(f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts ...Option) (*DormandPrince, error) {
	if err := cfg.ValidateAdaptive(); err != nil {
		return nil, err
	}
	cfg.StepSize = clamp(cfg.StepSize, cfg.MinStep, cfg.MaxStep)
	s, err := newSolver("dopri", f, t0, x0, cfg, opts)
	if err != nil {
		return nil, err
	}
	d := &DormandPrince{
		solver:  s,
		tableau: DormandPrince45,
		k:       make([]float64, DormandPrince45.Stages()),
		minStep: cfg.MinStep,
		maxStep: cfg.MaxStep,
	}
	d.advance = d.next
	return d, nil
}

// SetStepSize sets the step size, clamped into the configured bounds, and
// resets the trajectory to the initial condition.
func (d *DormandPrince) SetStepSize(h float64) error {
	if err := dynamo.ValidateStep(h, d.cfg.TimePrecision); err != nil {
		return err
	}
	return d.solver.SetStepSize(clamp(h, d.minStep, d.maxStep))
}

// SetStepBounds changes the step size bounds and resets the trajectory to
// the initial condition.
func (d *DormandPrince) SetStepBounds(min, max float64) error {
	if err := dynamo.ValidateBounds(min, max); err != nil {
		return err
	}
	d.minStep, d.maxStep = min, max
	d.cfg.MinStep, d.cfg.MaxStep = min, max
	d.cfg.StepSize = clamp(d.cfg.StepSize, min, max)
	d.h = d.cfg.StepSize
	d.reset(d.traj.Initial())
	return nil
}

// StepSize returns the step size the next step will use.
func (d *DormandPrince) StepSize() float64 { return d.h }

// StepSizes returns the step sizes of every step taken since the last reset.
func (d *DormandPrince) StepSizes() []float64 {
	out := make([]float64, len(d.taken))
	copy(out, d.taken)
	return out
}

func (d *DormandPrince) next(prev dynamo.Sample) (dynamo.Sample, float64) {
	tb := d.tableau
	t, x, h := prev.T, prev.X, d.h

	for i := 0; i < tb.Stages(); i++ {
		xi := x + floats.Dot(tb.A[i], d.k[:i])
		d.k[i] = h * d.f(t+tb.C[i]*h, xi)
	}

	xNext := x + floats.Dot(tb.B1, d.k)
	errEst := math.Abs(floats.Dot(tb.E, d.k))

	factor := math.Pow(d.cfg.Tolerance*h/(2*errEst), 0.2)
	hNext := h * factor
	if math.IsNaN(hNext) {
		hNext = h
	}
	hNext = clamp(hNext, d.minStep, d.maxStep)

	level.Debug(d.logger).Log("msg", "error estimate", "err", errEst, "factor", factor, "h_next", hNext)

	return dynamo.Sample{T: t + h, X: xNext}, hNext
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
