// Package experiment holds the three lab benches as explicit state
// machines: projectile motion, the simple pendulum and Ohm's law.
//
// An experiment is built against a boundary.Session, attached to a
// scheduler with Load and torn down with Dispose. Dispose unregisters the
// tick callback before anything else is released, so no update can observe
// a freed effect pool or trail.
//
//	reg := experiment.NewRegistry()
//	exp, _ := reg.New("pendulum", cfg, sess)
//	_ = exp.Load(sched)
//	_ = exp.Action(experiment.ActionStart)
//	defer exp.Dispose()
package experiment
