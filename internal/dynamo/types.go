package dynamo

import (
	"fmt"
	"math"
)

// Func is the right-hand side of dx/dt = f(t, x).
type Func func(t, x float64) float64

// Sample is one point on an approximated trajectory.
type Sample struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
}

func (s Sample) IsValid() bool {
	return !math.IsNaN(s.T) && !math.IsInf(s.T, 0) && !math.IsNaN(s.X) && !math.IsInf(s.X, 0)
}

func (s Sample) String() string {
	return fmt.Sprintf("(%g, %g)", s.T, s.X)
}

// Stepper advances a trajectory by exactly one step and returns the new sample.
type Stepper interface {
	Step() (Sample, error)
}

// Integrator is a stepping engine together with the point-query facade over
// the trajectory it produces.
type Integrator interface {
	Stepper
	Name() string
	SolveAtPoint(t float64) (float64, error)
	SampleAt(t float64) (Sample, error)
	SetStepSize(h float64) error
	SetFn(f Func) error
	SetInitialPoint(t0, x0 float64)
	Trajectory() []Sample
	Frontier() Sample
	Len() int
}

// AdaptiveIntegrator rescales its step size from an embedded error estimate.
type AdaptiveIntegrator interface {
	Integrator
	SetStepBounds(min, max float64) error
	StepSize() float64
	StepSizes() []float64
}

const (
	// DefaultTimePrecision is the number of decimal digits fixed-step
	// integrators keep when accumulating time.
	DefaultTimePrecision = 8

	// DefaultMaxSteps bounds the forward extension of a single query.
	DefaultMaxSteps = 10_000_000

	// DefaultTolerance is the error proxy used by adaptive step control
	// (float64 machine epsilon).
	DefaultTolerance = 2.220446049250313e-16
)

type Config struct {
	StepSize      float64
	MinStep       float64
	MaxStep       float64
	Tolerance     float64
	MaxSteps      int
	TimePrecision int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		StepSize:      0.01,
		MinStep:       0.001,
		MaxStep:       1.0,
		Tolerance:     DefaultTolerance,
		MaxSteps:      DefaultMaxSteps,
		TimePrecision: DefaultTimePrecision,
		ValidateState: true,
	}
}

// Validate checks the fields shared by every integrator.
func (c Config) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d: %w", c.MaxSteps, ErrParameterBounds)
	}
	if c.TimePrecision < 1 || c.TimePrecision > 15 {
		return fmt.Errorf("time precision must be within [1, 15], got %d: %w", c.TimePrecision, ErrParameterBounds)
	}
	return ValidateStep(c.StepSize, c.TimePrecision)
}

// ValidateStep rejects step sizes that are not positive or that vanish when
// time is rounded to the given number of digits.
func ValidateStep(h float64, digits int) error {
	if !(h > 0) || math.IsInf(h, 0) {
		return fmt.Errorf("step size must be positive, got %g: %w", h, ErrParameterBounds)
	}
	if h < math.Pow(10, -float64(digits)) {
		return fmt.Errorf("step size %g is below time precision of %d digits: %w", h, digits, ErrParameterBounds)
	}
	return nil
}

// ValidateAdaptive additionally checks step bounds and tolerance.
func (c Config) ValidateAdaptive() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := ValidateBounds(c.MinStep, c.MaxStep); err != nil {
		return err
	}
	if !(c.Tolerance > 0) {
		return fmt.Errorf("tolerance must be positive, got %g: %w", c.Tolerance, ErrParameterBounds)
	}
	return nil
}

func ValidateBounds(min, max float64) error {
	if !(min > 0) {
		return fmt.Errorf("min step must be positive, got %g: %w", min, ErrParameterBounds)
	}
	if !(max >= min) || math.IsInf(max, 0) {
		return fmt.Errorf("max step %g must be finite and >= min step %g: %w", max, min, ErrParameterBounds)
	}
	return nil
}

// RoundTime rounds t to the given number of decimal digits so repeated
// additions of a step land on the same grid values a caller would type.
func RoundTime(t float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(t*scale) / scale
}
