package dynamo

import "sort"

// Trajectory is the ordered, append-only sample history of one integrator.
// The first sample is always the initial condition and times never decrease.
type Trajectory struct {
	samples []Sample
}

func NewTrajectory(initial Sample) *Trajectory {
	return &Trajectory{samples: []Sample{initial}}
}

func (tr *Trajectory) Len() int { return len(tr.samples) }

// Initial returns the initial condition. It panics on an empty trajectory,
// which can only happen through a programming error.
func (tr *Trajectory) Initial() Sample {
	if len(tr.samples) == 0 {
		panic("dynamo: empty trajectory")
	}
	return tr.samples[0]
}

// Frontier returns the most recently computed sample.
func (tr *Trajectory) Frontier() Sample {
	if len(tr.samples) == 0 {
		panic("dynamo: empty trajectory")
	}
	return tr.samples[len(tr.samples)-1]
}

func (tr *Trajectory) Append(s Sample) {
	tr.samples = append(tr.samples, s)
}

// Samples returns a copy of the history.
func (tr *Trajectory) Samples() []Sample {
	out := make([]Sample, len(tr.samples))
	copy(out, tr.samples)
	return out
}

// Reset discards every sample and restarts from initial.
func (tr *Trajectory) Reset(initial Sample) {
	tr.samples = append(tr.samples[:0], initial)
}

// Search returns the first sample with T >= t. Queries below the initial
// time resolve to the initial sample; queries past the frontier resolve to
// the frontier. Values are never interpolated.
func (tr *Trajectory) Search(t float64) Sample {
	n := len(tr.samples)
	idx := sort.Search(n, func(i int) bool { return tr.samples[i].T >= t })
	if idx == n {
		idx = n - 1
	}
	return tr.samples[idx]
}
