package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StepStats summarizes a step-size trace.
type StepStats struct {
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	InBounds bool    `json:"in_bounds"`
}

// NewStepStats summarizes sizes and checks every entry lies in [lo, hi].
func NewStepStats(sizes []float64, lo, hi float64) StepStats {
	if len(sizes) == 0 {
		return StepStats{InBounds: true}
	}
	s := StepStats{
		Count: len(sizes),
		Min:   floats.Min(sizes),
		Max:   floats.Max(sizes),
	}
	s.Mean, s.StdDev = stat.MeanStdDev(sizes, nil)
	s.InBounds = s.Min >= lo && s.Max <= hi
	return s
}
