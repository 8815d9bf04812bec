// Package dynamo provides core primitives for solving scalar first-order
// ordinary differential equations dx/dt = f(t, x).
//
// The package defines the fundamental interfaces and types shared by every
// stepping algorithm:
//
//   - [Func]: the right-hand side f(t, x)
//   - [Sample]: one (t, x) point on an approximated trajectory
//   - [Trajectory]: the ordered, append-only history of samples
//   - [Integrator]: a stepping engine plus point-query facade
//   - [Config]: step size, bounds and guard settings
//
// # Example
//
//	f := func(t, x float64) float64 { return t * x }
//	integ, _ := integrators.NewRK4(f, 0, 1, dynamo.DefaultConfig())
//	x, err := integ.SolveAtPoint(1.0)
//
// # Thread Safety
//
// Integrators and trajectories are NOT thread-safe. Each instance is owned by
// exactly one caller; run independent instances in separate goroutines to
// solve in parallel.
package dynamo
