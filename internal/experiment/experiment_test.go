package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/diffyq/internal/dynamo"
)

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.ListEquations() {
		eq, err := r.GetEquation(name)
		if err != nil {
			t.Fatalf("GetEquation(%q): %v", name, err)
		}
		if eq.F == nil {
			t.Errorf("%s: nil right-hand side", name)
		}
	}

	if _, err := r.GetEquation("nope"); err == nil {
		t.Error("expected error for unknown equation")
	}

	want := []string{"dopri", "euler", "rk4"}
	got := r.ListIntegrators()
	if len(got) != len(want) {
		t.Fatalf("integrators = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("integrators[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRegistryNewIntegrator(t *testing.T) {
	r := NewRegistry()
	f := func(t, x float64) float64 { return x }

	for _, name := range r.ListIntegrators() {
		integ, err := r.NewIntegrator(name, f, 0, 1, dynamo.DefaultConfig())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if integ.Name() != name {
			t.Errorf("Name() = %s, want %s", integ.Name(), name)
		}
	}

	if _, err := r.NewIntegrator("leapfrog", f, 0, 1, dynamo.DefaultConfig()); err == nil {
		t.Error("expected error for unknown integrator")
	}

	cfg := dynamo.DefaultConfig()
	cfg.StepSize = -1
	integ, err := r.NewIntegrator("rk4", f, 0, 1, cfg)
	if !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if integ != nil {
		t.Error("expected nil integrator on error")
	}
}

func TestExactSolutionsSatisfyInitialCondition(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.ListEquations() {
		eq, _ := r.GetEquation(name)
		if eq.Exact == nil {
			continue
		}
		if got := eq.Exact(0.5, 0.25)(0.5); math.Abs(got-0.25) > 1e-12 {
			t.Errorf("%s: exact(t0) = %v, want 0.25", name, got)
		}
	}
}

func TestRun(t *testing.T) {
	cfg := Config{
		Equation:   "growth",
		Integrator: "rk4",
		T0:         0,
		X0:         1,
		Points:     []float64{0, 0.5, 1},
		Solver:     dynamo.DefaultConfig(),
	}

	res, err := New(cfg, NewRegistry()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(res.Rows))
	}
	for _, row := range res.Rows {
		if row.Err != nil {
			t.Errorf("t=%v: %v", row.T, row.Err)
		}
		if !row.HasExact {
			t.Errorf("t=%v: missing exact value", row.T)
		}
		if math.Abs(row.X-row.Exact) > 1e-6 {
			t.Errorf("t=%v: x=%v exact=%v", row.T, row.X, row.Exact)
		}
	}
	if res.Samples != 101 {
		t.Errorf("samples = %d, want 101", res.Samples)
	}
	if res.Errors.Count != 3 {
		t.Errorf("error stats count = %d, want 3", res.Errors.Count)
	}
	if res.StepSizes != nil {
		t.Error("fixed-step integrator should not report step sizes")
	}
}

func TestRunAdaptiveReportsSteps(t *testing.T) {
	cfg := Config{
		Equation:   "decay",
		Integrator: "dopri",
		X0:         1,
		Points:     []float64{2},
		Solver:     dynamo.DefaultConfig(),
	}

	res, err := New(cfg, NewRegistry()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps.Count == 0 || res.Steps.Count != len(res.StepSizes) {
		t.Errorf("step stats count = %d, sizes = %d", res.Steps.Count, len(res.StepSizes))
	}
	if !res.Steps.InBounds {
		t.Errorf("steps out of bounds: %+v", res.Steps)
	}
}

func TestRunRecordsBlowup(t *testing.T) {
	cfg := Config{
		Equation:   "riccati",
		Integrator: "rk4",
		Points:     []float64{1, 3},
		Solver:     dynamo.DefaultConfig(),
	}

	res, err := New(cfg, NewRegistry()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Rows[0].Err != nil {
		t.Errorf("t=1 before blowup: %v", res.Rows[0].Err)
	}
	blown := res.Rows[1].Err
	if !errors.Is(blown, dynamo.ErrNonFinite) && !errors.Is(blown, dynamo.ErrUnreachable) {
		t.Errorf("expected non-finite or unreachable past blowup, got %v", blown)
	}
	var qerr *dynamo.QueryError
	if !errors.As(blown, &qerr) {
		t.Fatalf("expected *dynamo.QueryError, got %T", blown)
	}
	if qerr.Frontier.T >= 3 {
		t.Errorf("frontier %v should stop before the query", qerr.Frontier)
	}
}

func TestRunUnknownNames(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	if _, err := New(Config{Equation: "nope", Integrator: "rk4", Solver: dynamo.DefaultConfig()}, r).Run(ctx); err == nil {
		t.Error("expected error for unknown equation")
	}
	if _, err := New(Config{Equation: "decay", Integrator: "nope", Solver: dynamo.DefaultConfig()}, r).Run(ctx); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Equation: "decay", Integrator: "euler", Points: []float64{1}, Solver: dynamo.DefaultConfig()}
	_, err := New(cfg, NewRegistry()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	cfg := Config{
		Equation: "growth",
		X0:       1,
		Points:   Grid(0, 1, 4),
		Solver:   dynamo.DefaultConfig(),
	}
	names := []string{"euler", "rk4", "dopri"}

	results, err := Compare(context.Background(), cfg, NewRegistry(), names)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(names) {
		t.Fatalf("results = %d, want %d", len(results), len(names))
	}
	for i, res := range results {
		if res.Integrator != names[i] {
			t.Errorf("results[%d] = %s, want %s", i, res.Integrator, names[i])
		}
	}
	if results[0].Errors.MaxAbs <= results[1].Errors.MaxAbs {
		t.Errorf("euler error %v should exceed rk4 error %v", results[0].Errors.MaxAbs, results[1].Errors.MaxAbs)
	}

	if _, err := Compare(context.Background(), cfg, NewRegistry(), []string{"rk4", "nope"}); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestGrid(t *testing.T) {
	tests := []struct {
		from, to float64
		n        int
		want     []float64
	}{
		{0, 1, 4, []float64{0, 0.25, 0.5, 0.75, 1}},
		{0, 0.3, 3, []float64{0, 0.1, 0.2, 0.3}},
		{2, 5, 0, []float64{2}},
	}

	for _, tt := range tests {
		got := Grid(tt.from, tt.to, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("Grid(%v, %v, %d) = %v", tt.from, tt.to, tt.n, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Grid(%v, %v, %d)[%d] = %v, want %v", tt.from, tt.to, tt.n, i, got[i], tt.want[i])
			}
		}
	}
}
