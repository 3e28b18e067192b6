// Package scheduler drives the lab's single update/render loop.
//
// A [Scheduler] is an explicit, constructible object rather than a global
// animation loop. The host (the bubbletea lab, or a headless runner) calls
// [Scheduler.Tick] at its redraw cadence; each tick clamps the frame delta
// to at most [DefaultMaxDelta], invokes registered callbacks in order and
// then signals the redraw hook.
//
//	sched := scheduler.New(scheduler.SystemClock())
//	h := sched.Register(func(delta, elapsed float64) { ... })
//	sched.Start()
//	defer sched.Unregister(h)
package scheduler
