// Package physics holds the pure solvers behind the lab experiments.
//
//   - [Projectile]: closed-form drag-free ballistics
//   - [Pendulum]: nonlinear damped pendulum, implements [dynamo.System]
//   - [Circuit]: steady-state Ohm's law quantities
//   - [ChargePath]: arc-length parameterized closed loop for charge markers
//
// All models use idealized textbook equations. The projectile ignores air
// resistance, the circuit has a single resistive loop, and the pendulum's
// [Pendulum.NominalPeriod] uses the small-angle approximation even though
// the integrated motion does not.
//
// Zero gravity, length or resistance are caller errors. The values arrive
// pre-validated from the control surface.
package physics
