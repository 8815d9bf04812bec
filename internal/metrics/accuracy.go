package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrorStats summarizes computed values against an exact solution.
type ErrorStats struct {
	Count     int     `json:"count"`
	MaxAbs    float64 `json:"max_abs"`
	RMS       float64 `json:"rms"`
	MaxRel    float64 `json:"max_rel"`
	WorstIndex int    `json:"-"`
}

// NewErrorStats compares computed against expected element-wise. Slices of
// different length are compared up to the shorter one.
func NewErrorStats(computed, expected []float64) ErrorStats {
	n := len(computed)
	if len(expected) < n {
		n = len(expected)
	}
	if n == 0 {
		return ErrorStats{}
	}

	diff := make([]float64, n)
	floats.SubTo(diff, computed[:n], expected[:n])

	stats := ErrorStats{Count: n}
	stats.RMS = floats.Norm(diff, 2) / math.Sqrt(float64(n))
	for i, d := range diff {
		abs := math.Abs(d)
		if abs > stats.MaxAbs {
			stats.MaxAbs = abs
			stats.WorstIndex = i
		}
		if e := math.Abs(expected[i]); e > 0 {
			stats.MaxRel = math.Max(stats.MaxRel, abs/e)
		}
	}
	return stats
}
