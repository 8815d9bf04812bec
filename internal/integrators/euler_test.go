package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/diffyq/internal/dynamo"
)

func TestEulerStep(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.StepSize = 0.1
	integ, err := NewEuler(func(t, x float64) float64 { return 2*t + x }, 1, 3, cfg)
	if err != nil {
		t.Fatalf("NewEuler: %v", err)
	}

	smp, err := integ.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}

	if smp.T != 1.1 {
		t.Errorf("expected t=1.1, got %.17g", smp.T)
	}
	if want := 3 + 0.1*(2*1+3); math.Abs(smp.X-want) > 1e-12 {
		t.Errorf("expected x=%.12f, got %.12f", want, smp.X)
	}
}

func TestEulerFixedStepTime(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.StepSize = 0.1
	integ, err := NewEuler(growth, 0, 1, cfg)
	if err != nil {
		t.Fatalf("NewEuler: %v", err)
	}

	for i := 1; i <= 100; i++ {
		smp, err := integ.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if want := float64(i) * 0.1; math.Abs(smp.T-want) > 1e-9 {
			t.Fatalf("step %d: expected t=%.10f, got %.10f", i, want, smp.T)
		}
	}
}

func TestEulerLessAccurateThanRK4(t *testing.T) {
	cfg := dynamo.DefaultConfig()

	euler, err := NewEuler(growth, 0, 1, cfg)
	if err != nil {
		t.Fatalf("NewEuler: %v", err)
	}
	rk4, err := NewRK4(growth, 0, 1, cfg)
	if err != nil {
		t.Fatalf("NewRK4: %v", err)
	}

	xe, err := euler.SolveAtPoint(1.0)
	if err != nil {
		t.Fatalf("euler: %v", err)
	}
	xr, err := rk4.SolveAtPoint(1.0)
	if err != nil {
		t.Fatalf("rk4: %v", err)
	}

	expected := growthExact(1.0)
	errEuler := math.Abs(xe - expected)
	errRK4 := math.Abs(xr - expected)

	t.Logf("euler: %.8f (err %.2e), rk4: %.8f (err %.2e)", xe, errEuler, xr, errRK4)

	if errEuler < 1e-3 {
		t.Errorf("euler error unexpectedly small: %.2e", errEuler)
	}
	if errEuler < 100*errRK4 {
		t.Errorf("expected euler error (%.2e) to dwarf rk4 error (%.2e)", errEuler, errRK4)
	}
}
