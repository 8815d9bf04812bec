package metrics

import (
	"math"

	"github.com/san-kum/diffyq/internal/dynamo"
)

// Stability reports the fraction of trajectory samples whose magnitude stays
// within a threshold.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(smp dynamo.Sample) {
	s.samples++
	if !smp.IsValid() || math.Abs(smp.X) > s.threshold {
		s.violations++
	}
}

func (s *Stability) ObserveAll(samples []dynamo.Sample) {
	for _, smp := range samples {
		s.Observe(smp)
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
