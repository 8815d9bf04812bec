package integrators

import (
	"fmt"
	"math"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/diffyq/internal/dynamo"
)

// Option configures an integrator at construction.
type Option func(*solver)

// WithLogger routes debug output of queries and steps to logger.
func WithLogger(logger log.Logger) Option {
	return func(s *solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// advanceFunc computes the sample following prev and the step size to use for
// the step after it.
type advanceFunc func(prev dynamo.Sample) (next dynamo.Sample, nextH float64)

// solver holds the state shared by every engine: the right-hand side, the
// current step size and the trajectory, plus the point-query facade.
type solver struct {
	name    string
	f       dynamo.Func
	h       float64
	cfg     dynamo.Config
	traj    *dynamo.Trajectory
	taken   []float64
	advance advanceFunc
	logger  log.Logger
}

func newSolver(name string, f dynamo.Func, t0, x0 float64, cfg dynamo.Config, opts []Option) (solver, error) {
	if f == nil {
		return solver{}, dynamo.ErrNilFunc
	}
	s := solver{
		name:   name,
		f:      f,
		h:      cfg.StepSize,
		cfg:    cfg,
		traj:   dynamo.NewTrajectory(dynamo.Sample{T: t0, X: x0}),
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = log.With(s.logger, "integrator", name)
	return s, nil
}

func (s *solver) Name() string { return s.name }

func (s *solver) Trajectory() []dynamo.Sample { return s.traj.Samples() }

func (s *solver) Frontier() dynamo.Sample { return s.traj.Frontier() }

func (s *solver) Len() int { return s.traj.Len() }

// Step advances the trajectory by one step and appends the new sample.
func (s *solver) Step() (dynamo.Sample, error) {
	prev := s.traj.Frontier()
	hUsed := s.h
	next, nextH := s.advance(prev)
	if s.cfg.ValidateState && !next.IsValid() {
		return next, fmt.Errorf("%s step from %v: %w", s.name, prev, dynamo.ErrNonFinite)
	}
	s.traj.Append(next)
	s.taken = append(s.taken, hUsed)
	s.h = nextH
	level.Debug(s.logger).Log("msg", "step", "t", next.T, "x", next.X, "h", hUsed)
	return next, nil
}

// SolveAtPoint returns x at the first computed sample with t >= the query.
func (s *solver) SolveAtPoint(t float64) (float64, error) {
	smp, err := s.SampleAt(t)
	if err != nil {
		return math.NaN(), err
	}
	return smp.X, nil
}

// SampleAt extends the trajectory until it reaches t when t lies past the
// frontier, and otherwise searches the samples already computed.
func (s *solver) SampleAt(t float64) (dynamo.Sample, error) {
	frontier := s.traj.Frontier()
	if math.IsNaN(t) {
		return dynamo.Sample{}, &dynamo.QueryError{T: t, Frontier: frontier, Wrapped: dynamo.ErrInvalidQuery}
	}

	if t <= frontier.T {
		level.Debug(s.logger).Log("msg", "searching solved points", "t", t, "frontier", frontier.T)
		return s.traj.Search(t), nil
	}

	level.Debug(s.logger).Log("msg", "extending trajectory", "t", t, "frontier", frontier.T)
	for steps := 0; steps < s.cfg.MaxSteps; steps++ {
		smp, err := s.Step()
		if err != nil {
			return dynamo.Sample{}, &dynamo.QueryError{T: t, Frontier: s.traj.Frontier(), Steps: steps, Wrapped: err}
		}
		if smp.T >= t {
			return smp, nil
		}
	}

	level.Warn(s.logger).Log("msg", "step limit reached", "t", t, "max_steps", s.cfg.MaxSteps)
	return dynamo.Sample{}, &dynamo.QueryError{
		T:        t,
		Frontier: s.traj.Frontier(),
		Steps:    s.cfg.MaxSteps,
		Wrapped:  dynamo.ErrUnreachable,
	}
}

// SetStepSize changes the step size and discards every computed sample
// except the initial condition.
func (s *solver) SetStepSize(h float64) error {
	if err := dynamo.ValidateStep(h, s.cfg.TimePrecision); err != nil {
		return err
	}
	s.h = h
	s.cfg.StepSize = h
	s.reset(s.traj.Initial())
	return nil
}

// SetFn replaces the right-hand side and discards every computed sample
// except the initial condition.
func (s *solver) SetFn(f dynamo.Func) error {
	if f == nil {
		return dynamo.ErrNilFunc
	}
	s.f = f
	s.h = s.cfg.StepSize
	s.reset(s.traj.Initial())
	return nil
}

// SetInitialPoint replaces the initial condition and discards the trajectory.
func (s *solver) SetInitialPoint(t0, x0 float64) {
	s.h = s.cfg.StepSize
	s.reset(dynamo.Sample{T: t0, X: x0})
}

func (s *solver) reset(initial dynamo.Sample) {
	s.traj.Reset(initial)
	s.taken = s.taken[:0]
	level.Debug(s.logger).Log("msg", "reset", "t0", initial.T, "x0", initial.X, "h", s.h)
}

func (s *solver) roundTime(t float64) float64 {
	return dynamo.RoundTime(t, s.cfg.TimePrecision)
}

var (
	_ dynamo.Integrator         = (*Euler)(nil)
	_ dynamo.Integrator         = (*RK4)(nil)
	_ dynamo.AdaptiveIntegrator = (*DormandPrince)(nil)
)
