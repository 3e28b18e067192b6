package experiment_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/effects"
	"github.com/san-kum/labsim/internal/experiment"
	"github.com/san-kum/labsim/internal/physics"
)

var _ = Describe("Circuit", func() {
	var (
		b *bench
		c *experiment.Circuit
	)

	BeforeEach(func() {
		b = newBench()
		c = experiment.NewCircuit(b.cfg.Circuit, b.cfg.TrailCapacity, b.session())
		Expect(c.Load(b.sched)).To(Succeed())
		b.sched.Start()
	})

	It("shows the Ohm's law example", func() {
		Expect(c.Phase()).To(Equal(dynamo.PhaseOn))
		Expect(b.label("current")).To(Equal("1.200"))
		Expect(b.label("power")).To(Equal("14.40"))
		Expect(b.label("conductance")).To(Equal("0.100"))
		Expect(b.label("voltage-drop")).To(Equal("12.0"))
	})

	It("drops to zero when switched off and reports the toggle", func() {
		Expect(c.Action(experiment.ActionToggle)).To(Succeed())
		Expect(c.Phase()).To(Equal(dynamo.PhaseOff))
		Expect(b.label("current")).To(Equal("0.000"))
		Expect(b.label("power")).To(Equal("0.00"))

		Expect(b.eval.count(boundary.ResultCurrent)).To(Equal(1))
		Expect(b.eval.last(boundary.ResultCurrent)).To(BeZero())
		Expect(b.tones.Count(boundary.ToneToggle)).To(Equal(1))
		v, _ := b.ctrl.Value("power")
		Expect(v).To(BeZero())
	})

	It("switches back on during reset without reporting a toggle", func() {
		Expect(c.Toggle()).To(Succeed())
		Expect(b.eval.reports).To(HaveLen(2))
		Expect(b.tones.Count(boundary.ToneToggle)).To(Equal(1))

		Expect(c.Action(experiment.ActionReset)).To(Succeed())
		Expect(c.Phase()).To(Equal(dynamo.PhaseOn))
		Expect(b.label("current")).To(Equal("1.200"))
		Expect(b.eval.reports).To(HaveLen(2))
		Expect(b.tones.Count(boundary.ToneToggle)).To(Equal(1))

		n, _ := b.arena.Get(c.MarkerHandles()[0])
		Expect(n.Opacity).To(Equal(1.0))

		Expect(c.Toggle()).To(Succeed())
		Expect(b.eval.reports).To(HaveLen(4))
	})

	It("recomputes on every parameter change without ticking", func() {
		Expect(c.SetParameter("resistance", 6)).To(Succeed())
		Expect(b.label("current")).To(Equal("2.000"))
		Expect(b.eval.reports).To(BeEmpty())
	})

	It("moves markers at a speed proportional to current", func() {
		before := c.MarkerProgress()
		b.ticks(10, frame)
		after := c.MarkerProgress()
		want := physics.WrapProgress(before[0] + 1.2*0.08*0.016*10)
		Expect(after[0]).To(BeNumerically("~", want, 1e-9))
		Expect(c.MarkerSpeed()).To(BeNumerically("~", 0.096, 1e-12))
	})

	It("freezes and dims markers while off", func() {
		Expect(c.Toggle()).To(Succeed())
		before := c.MarkerProgress()
		b.ticks(30, frame)
		Expect(c.MarkerProgress()).To(Equal(before))

		n, ok := b.arena.Get(c.MarkerHandles()[0])
		Expect(ok).To(BeTrue())
		Expect(n.Opacity).To(BeNumerically("<", 1))
		Expect(c.MarkerSpeed()).To(Equal(0.001))
	})

	It("sparks under overload and settles once it ends", func() {
		Expect(c.SetParameter("voltage", 24)).To(Succeed())
		Expect(c.Danger()).To(BeTrue())
		b.ticks(300, frame)
		Expect(c.Effects().Spawned()).To(BeNumerically(">", 0))
		Expect(c.Effects().CountKind(effects.Spark)).To(Equal(c.Effects().Len()))
		Expect(b.tones.Count(boundary.ToneSpark)).To(Equal(c.Effects().Spawned()))

		Expect(c.SetParameter("voltage", 12)).To(Succeed())
		Expect(c.Danger()).To(BeFalse())
		b.ticks(60, frame)
		Expect(c.Effects().Len()).To(BeZero())
	})

	It("does not spark at 40 W or below", func() {
		Expect(c.SetParameter("voltage", 20)).To(Succeed())
		b.ticks(300, frame)
		Expect(c.Effects().Spawned()).To(BeZero())
	})

	It("restores the starting values on reset", func() {
		Expect(c.SetParameter("voltage", 3)).To(Succeed())
		Expect(c.Toggle()).To(Succeed())
		c.Reset()
		Expect(c.Phase()).To(Equal(dynamo.PhaseOn))
		Expect(b.label("current")).To(Equal("1.200"))
	})
})
