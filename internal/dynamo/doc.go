// Package dynamo provides the shared primitives of the lab simulation core.
//
//   - [Vec3]: scene-space vector
//   - [State]: vector of solver variables (positions, then velocities)
//   - [System]: ODE system (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper
//   - [Params]: immutable parameter snapshot, replaced wholesale on change
//   - [Phase]: discrete state of an experiment's state machine
//
// # Thread Safety
//
// Nothing in this package is synchronized. The whole core runs on a single
// scheduler goroutine.
package dynamo
