package experiment_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/experiment"
)

var _ = Describe("Lifecycle", func() {
	var (
		b   *bench
		reg *experiment.Registry
	)

	BeforeEach(func() {
		b = newBench()
		reg = experiment.NewRegistry()
	})

	It("lists experiments in a stable order", func() {
		Expect(reg.Names()).To(Equal([]string{"projectile", "pendulum", "ohms-law"}))
		Expect(reg.Next("ohms-law")).To(Equal("projectile"))
		Expect(reg.Next("projectile")).To(Equal("pendulum"))
	})

	It("refuses unknown names", func() {
		_, err := reg.New("optics", b.cfg, b.session())
		Expect(err).To(MatchError(dynamo.ErrUnknownExperiment))
	})

	It("refuses parameter writes before load", func() {
		exp, err := reg.New("projectile", b.cfg, b.session())
		Expect(err).NotTo(HaveOccurred())
		Expect(exp.SetParameter("angle", 30)).To(MatchError(dynamo.ErrNotLoaded))
	})

	DescribeTable("dispose releases everything the experiment held",
		func(name, action string) {
			exp, err := reg.New(name, b.cfg, b.session())
			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Load(b.sched)).To(Succeed())
			b.sched.Start()
			if action != "" {
				Expect(exp.Action(action)).To(Succeed())
			}
			if name == "ohms-law" {
				Expect(exp.SetParameter("voltage", 24)).To(Succeed())
			}
			b.ticks(60, frame)
			writes := b.sink.Writes()

			exp.Dispose()
			Expect(b.sched.Len()).To(BeZero())
			Expect(b.arena.Live()).To(BeZero())
			Expect(b.ctrl.Listeners()).To(BeZero())
			Expect(exp.Effects().Len()).To(BeZero())
			Expect(exp.Trail().Len()).To(BeZero())

			b.ticks(10, frame)
			_, _ = b.ctrl.Set("voltage", 1)
			Expect(b.sink.Writes()).To(Equal(writes))
			Expect(exp.SetParameter("mass", 1)).To(MatchError(dynamo.ErrDisposed))
			Expect(exp.Action("reset")).To(MatchError(dynamo.ErrDisposed))
			Expect(exp.Load(b.sched)).To(MatchError(dynamo.ErrDisposed))

			exp.Dispose()
		},
		Entry("projectile mid-flight", "projectile", experiment.ActionLaunch),
		Entry("pendulum swinging", "pendulum", experiment.ActionStart),
		Entry("circuit overloaded", "ohms-law", ""),
	)

	It("hands the control surface to the next experiment", func() {
		first, _ := reg.New("pendulum", b.cfg, b.session())
		Expect(first.Load(b.sched)).To(Succeed())
		first.Dispose()

		second, _ := reg.New("ohms-law", b.cfg, b.session())
		Expect(second.Load(b.sched)).To(Succeed())
		Expect(b.ctrl.Listeners()).To(Equal(1))
		_, ok := b.ctrl.Value("length")
		Expect(ok).To(BeFalse())
		Expect(second.SetParameter("resistance", 20)).To(Succeed())
		Expect(b.label("current")).To(Equal("0.600"))
	})
})
