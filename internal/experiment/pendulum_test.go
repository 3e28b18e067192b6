package experiment_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/experiment"
)

var _ = Describe("Pendulum", func() {
	var (
		b *bench
		p *experiment.Pendulum
	)

	load := func() {
		var err error
		p, err = experiment.NewPendulum(b.cfg.Pendulum, b.cfg.Integrator, b.cfg.TrailCapacity, b.session())
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Load(b.sched)).To(Succeed())
		b.sched.Start()
	}

	BeforeEach(func() {
		b = newBench()
		b.cfg.Pendulum.Length = 1
		b.cfg.Pendulum.Amplitude = 8
	})

	It("rejects an unknown integrator", func() {
		_, err := experiment.NewPendulum(b.cfg.Pendulum, "leapfrog", 10, b.session())
		Expect(err).To(HaveOccurred())
	})

	Context("with a small amplitude", func() {
		BeforeEach(load)

		It("rests on the amplitude until started", func() {
			b.ticks(30, frame)
			Expect(p.Phase()).To(Equal(dynamo.PhaseIdle))
			Expect(p.State()[0]).To(BeNumerically("~", 8*math.Pi/180, 1e-12))
			Expect(p.Elapsed()).To(BeZero())
			Expect(b.label("period")).To(Equal("2.007"))
			Expect(b.label("measured-period")).To(Equal("—"))
		})

		It("measures a period close to 2π√(L/g)", func() {
			Expect(p.Action(experiment.ActionStart)).To(Succeed())
			b.ticks(int(10*time.Second/frame), frame)

			T, ok := p.MeasuredPeriod()
			Expect(ok).To(BeTrue())
			nominal := 2 * math.Pi * math.Sqrt(1/9.8)
			Expect(math.Abs(T-nominal) / nominal).To(BeNumerically("<", 0.05))
			Expect(p.Oscillations()).To(BeNumerically(">=", 3))
		})

		It("reports each measured period exactly once", func() {
			p.Toggle()
			b.ticks(int(10*time.Second/frame), frame)
			Expect(b.eval.count(boundary.ResultPeriod)).To(Equal(p.Oscillations()))
			Expect(b.tones.Count(boundary.ToneTick)).To(Equal(p.Oscillations()))
		})

		It("conserves energy over 1000 undamped steps", func() {
			ke0, pe0 := p.Energy()
			e0 := ke0 + pe0
			for i := 0; i < 1000; i++ {
				p.Step(0.01)
				ke, pe := p.Energy()
				Expect(math.Abs(ke+pe-e0) / e0).To(BeNumerically("<", 0.05))
			}
			Expect(p.EnergyDrift()).To(BeNumerically("<", 0.05))
		})

		It("clamps oversized steps", func() {
			p.Step(5)
			Expect(p.Elapsed()).To(BeNumerically("~", 0.04, 1e-12))
			Expect(dynamo.State(p.State()).IsValid()).To(BeTrue())
		})

		It("pauses and resumes without losing state", func() {
			p.Toggle()
			b.ticks(20, frame)
			p.Toggle()
			Expect(p.Phase()).To(Equal(dynamo.PhasePaused))
			frozen := p.State()
			t := p.Elapsed()
			b.ticks(20, frame)
			Expect(p.State()).To(Equal(frozen))

			p.Toggle()
			b.ticks(1, frame)
			Expect(p.Elapsed()).To(BeNumerically("~", t+0.016, 1e-9))
		})

		It("re-seats the angle on parameter changes only while idle", func() {
			Expect(p.SetParameter("amplitude", 20)).To(Succeed())
			Expect(p.State()[0]).To(BeNumerically("~", 20*math.Pi/180, 1e-12))

			p.Toggle()
			b.ticks(5, frame)
			before := p.State()
			Expect(p.SetParameter("amplitude", 40)).To(Succeed())
			Expect(p.State()).To(Equal(before))
		})

		It("resets to the amplitude and clears counters", func() {
			p.Toggle()
			b.ticks(400, frame)
			Expect(p.Action(experiment.ActionReset)).To(Succeed())

			Expect(p.Phase()).To(Equal(dynamo.PhaseIdle))
			Expect(p.State()).To(Equal(dynamo.State{8 * math.Pi / 180, 0}))
			Expect(p.Oscillations()).To(BeZero())
			Expect(p.Trail().Len()).To(BeZero())
			Expect(p.PhaseHistory().Len()).To(BeZero())
			Expect(b.label("measured-period")).To(Equal("—"))
		})
	})

	Context("with damping", func() {
		BeforeEach(func() {
			b.cfg.Pendulum.Damping = 0.2
			b.cfg.Pendulum.Amplitude = 30
			load()
		})

		It("loses energy from cycle to cycle", func() {
			p.Toggle()
			var energies []float64
			last := 0
			for i := 0; i < int(15*time.Second/frame); i++ {
				b.sched.Step(b.clock, frame)
				if p.Oscillations() != last {
					last = p.Oscillations()
					ke, pe := p.Energy()
					energies = append(energies, ke+pe)
				}
			}
			Expect(len(energies)).To(BeNumerically(">=", 3))
			for i := 1; i < len(energies); i++ {
				Expect(energies[i]).To(BeNumerically("<", energies[i-1]))
			}
			total, _ := b.sink.Get("total-energy")
			Expect(total.Unit).To(Equal("J"))
		})
	})

	Context("with light damping", func() {
		BeforeEach(func() {
			b.cfg.Pendulum.Damping = 0.01
			b.cfg.Pendulum.Amplitude = 30
			load()
		})

		It("still loses energy every cycle despite tick-level wobble", func() {
			p.Toggle()
			ke, pe := p.Energy()
			e0 := ke + pe
			var perCycle []float64
			worstRise := 0.0
			prev := e0
			last := 0
			for i := 0; i < int(15*time.Second/frame); i++ {
				b.sched.Step(b.clock, frame)
				ke, pe := p.Energy()
				e := ke + pe
				worstRise = math.Max(worstRise, (e-prev)/e0)
				prev = e
				if p.Oscillations() != last {
					last = p.Oscillations()
					perCycle = append(perCycle, e)
				}
			}
			Expect(len(perCycle)).To(BeNumerically(">=", 4))
			for i := 1; i < len(perCycle); i++ {
				Expect(perCycle[i]).To(BeNumerically("<", perCycle[i-1]*0.995))
			}
			Expect(worstRise).To(BeNumerically("<", 0.001))
		})
	})
})
