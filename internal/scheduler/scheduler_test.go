package scheduler_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/labsim/internal/scheduler"
)

var _ = Describe("Scheduler", func() {
	var (
		clock *scheduler.ManualClock
		sched *scheduler.Scheduler
		draws int
	)

	BeforeEach(func() {
		draws = 0
		clock = scheduler.NewManualClock()
		sched = scheduler.New(clock, scheduler.WithRedraw(func() { draws++ }))
	})

	It("does nothing until started", func() {
		calls := 0
		sched.Register(func(delta, elapsed float64) { calls++ })
		Expect(sched.Step(clock, 16*time.Millisecond)).To(BeFalse())
		Expect(calls).To(BeZero())
		Expect(draws).To(BeZero())
	})

	It("passes delta and elapsed to callbacks, then redraws", func() {
		var deltas, elapsed []float64
		sched.Register(func(d, e float64) {
			deltas = append(deltas, d)
			elapsed = append(elapsed, e)
		})
		sched.Start()
		sched.Step(clock, 16*time.Millisecond)
		sched.Step(clock, 20*time.Millisecond)

		Expect(deltas).To(HaveLen(2))
		Expect(deltas[0]).To(BeNumerically("~", 0.016, 1e-9))
		Expect(deltas[1]).To(BeNumerically("~", 0.020, 1e-9))
		Expect(elapsed[1]).To(BeNumerically("~", 0.036, 1e-9))
		Expect(draws).To(Equal(2))
	})

	It("clamps pathological frame gaps", func() {
		var got float64
		sched.Register(func(d, _ float64) { got = d })
		sched.Start()
		sched.Step(clock, 5*time.Second)
		Expect(got).To(BeNumerically("~", 0.040, 1e-12))
		Expect(sched.Elapsed()).To(BeNumerically("~", 0.040, 1e-12))
	})

	It("honours a custom clamp", func() {
		s := scheduler.New(clock, scheduler.WithMaxDelta(10*time.Millisecond))
		var got float64
		s.Register(func(d, _ float64) { got = d })
		s.Start()
		s.Step(clock, time.Second)
		Expect(got).To(BeNumerically("~", 0.010, 1e-12))
	})

	It("invokes callbacks in registration order", func() {
		var order []string
		sched.Register(func(_, _ float64) { order = append(order, "a") })
		sched.Register(func(_, _ float64) { order = append(order, "b") })
		sched.Register(func(_, _ float64) { order = append(order, "c") })
		sched.Start()
		sched.Step(clock, time.Millisecond)
		Expect(order).To(Equal([]string{"a", "b", "c"}))
	})

	It("never calls a callback after it was unregistered mid-tick", func() {
		var later scheduler.Handle
		laterCalls := 0
		sched.Register(func(_, _ float64) { sched.Unregister(later) })
		later = sched.Register(func(_, _ float64) { laterCalls++ })
		sched.Start()
		sched.Step(clock, time.Millisecond)
		sched.Step(clock, time.Millisecond)
		Expect(laterCalls).To(BeZero())
		Expect(sched.Len()).To(Equal(1))
	})

	It("reports unknown handles on unregister", func() {
		h := sched.Register(func(_, _ float64) {})
		Expect(sched.Unregister(h)).To(BeTrue())
		Expect(sched.Unregister(h)).To(BeFalse())
	})

	It("has idempotent start and stop", func() {
		sched.Start()
		sched.Start()
		Expect(sched.Running()).To(BeTrue())
		sched.Stop()
		sched.Stop()
		Expect(sched.Running()).To(BeFalse())
	})

	It("skips remaining callbacks and the redraw once stopped mid-tick", func() {
		second := 0
		sched.Register(func(_, _ float64) { sched.Stop() })
		sched.Register(func(_, _ float64) { second++ })
		sched.Start()
		sched.Step(clock, time.Millisecond)
		Expect(second).To(BeZero())
		Expect(draws).To(BeZero())
	})

	It("does not count time spent stopped", func() {
		var got float64
		sched.Register(func(d, _ float64) { got = d })
		sched.Start()
		sched.Step(clock, 10*time.Millisecond)
		sched.Stop()
		clock.Advance(time.Hour)
		sched.Start()
		sched.Step(clock, 5*time.Millisecond)
		Expect(got).To(BeNumerically("~", 0.005, 1e-12))
	})

	It("runs on a real ticker until the context ends", func() {
		s := scheduler.New(scheduler.SystemClock())
		ticks := 0
		s.Register(func(_, _ float64) { ticks++ })
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
		defer cancel()
		err := s.Run(ctx, 5*time.Millisecond)
		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(ticks).To(BeNumerically(">", 0))
		Expect(s.Running()).To(BeFalse())
	})

	It("returns from Run when a callback stops it", func() {
		s := scheduler.New(scheduler.SystemClock())
		s.Register(func(_, _ float64) { s.Stop() })
		Expect(s.Run(context.Background(), time.Millisecond)).To(Succeed())
	})
})
