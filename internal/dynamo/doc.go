// Package dynamo provides core simulation primitives for continuous
// dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepping interface
//   - [Simulator]: orchestrates one run over a time span
//   - [Ensemble]: fans independent, reseeded runs out in parallel
//
// # Example
//
//	sys, _ := ode.Compile(model, params)
//	sim := dynamo.New(sys, integrators.NewRK4())
//	result, _ := sim.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel simulations, use
// [Ensemble], which gives every run its own simulator and seed.
package dynamo
