// Package viz renders solver results in the terminal.
//
//   - [RenderTable]: colored comparison table, one column per integrator
//   - [Plot]: asciigraph chart of several integrators against the exact solution
//   - [NewREPL]: interactive Bubble Tea front end that walks through
//     equation, initial condition, query points and step size, then prints
//     the comparison table
//
// # Key Bindings
//
//	j/k    - Move through the equation list
//	enter  - Confirm the current input
//	esc    - Finish entering points / go back
//	y/n    - Continue or quit after a table
//	ctrl+c - Quit
package viz
