package experiment_test

import (
	"math"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/experiment"
	"github.com/san-kum/labsim/internal/scene"
)

const frame = 16 * time.Millisecond

func flyUntilLanded(b *bench, p *experiment.Projectile) {
	for i := 0; i < 2000 && p.Phase() != dynamo.PhaseLanded; i++ {
		b.sched.Step(b.clock, frame)
	}
	Expect(p.Phase()).To(Equal(dynamo.PhaseLanded))
}

var _ = Describe("Projectile", func() {
	var (
		b *bench
		p *experiment.Projectile
	)

	BeforeEach(func() {
		b = newBench()
		p = experiment.NewProjectile(b.cfg.Projectile, b.cfg.TrailCapacity, b.session())
		Expect(p.Load(b.sched)).To(Succeed())
		b.sched.Start()
	})

	It("predicts the textbook example on load", func() {
		Expect(p.Phase()).To(Equal(dynamo.PhaseIdle))
		Expect(b.label("range")).To(Equal("40.82"))
		Expect(b.label("max-height")).To(Equal("10.20"))
		Expect(b.label("flight-time")).To(Equal("2.89"))
	})

	It("lands at the closed-form range", func() {
		Expect(p.Action(experiment.ActionLaunch)).To(Succeed())
		Expect(p.Phase()).To(Equal(dynamo.PhaseFlying))
		flyUntilLanded(b, p)

		Expect(p.LandedRange()).To(BeNumerically("~", 40.8163, 1e-3))
		Expect(p.FlightTime()).To(BeNumerically("~", 2.8862, 1e-3))
		Expect(p.Kinematics().Y).To(BeNumerically("~", 0, 1e-9))
		Expect(b.label("measured-range")).To(Equal("40.82"))
		Expect(b.tones.Count(boundary.ToneLaunch)).To(Equal(1))
		Expect(b.tones.Count(boundary.ToneImpact)).To(Equal(1))
	})

	It("reports range and apex height exactly once per flight", func() {
		p.Launch()
		flyUntilLanded(b, p)
		b.ticks(100, frame)

		Expect(b.eval.count(boundary.ResultRange)).To(Equal(1))
		Expect(b.eval.count(boundary.ResultHeight)).To(Equal(1))
		Expect(b.eval.last(boundary.ResultHeight)).To(BeNumerically("~", 10.204, 1e-3))

		p.Launch()
		flyUntilLanded(b, p)
		Expect(b.eval.count(boundary.ResultRange)).To(Equal(2))
	})

	It("keeps position and distance fixed once landed", func() {
		p.Launch()
		flyUntilLanded(b, p)
		k := p.Kinematics()
		r := p.LandedRange()
		trailLen := p.Trail().Len()

		b.ticks(500, frame)
		Expect(p.Kinematics()).To(Equal(k))
		Expect(p.LandedRange()).To(Equal(r))
		Expect(p.Trail().Len()).To(Equal(trailLen))
		n, _ := b.arena.Get(p.BallHandle())
		Expect(n.Pos.X).To(Equal(r))
	})

	DescribeTable("complementary angles land together",
		func(angle float64) {
			land := func(a float64) float64 {
				Expect(p.SetParameter("angle", a)).To(Succeed())
				p.Launch()
				flyUntilLanded(b, p)
				return p.LandedRange()
			}
			Expect(land(angle)).To(BeNumerically("~", land(90-angle), 1e-9))
		},
		Entry("15/75", 15.0),
		Entry("30/60", 30.0),
		Entry("40/50", 40.0),
	)

	It("ignores parameter changes for the flight in the air", func() {
		p.Launch()
		b.ticks(10, frame)
		Expect(p.SetParameter("velocity", 40)).To(Succeed())
		flyUntilLanded(b, p)
		Expect(p.LandedRange()).To(BeNumerically("~", 40.8163, 1e-3))
		Expect(b.label("range")).To(Equal("163.27"))
	})

	It("arms on a parameter change and redraws the preview", func() {
		Expect(p.SetParameter("angle", 60)).To(Succeed())
		Expect(p.Phase()).To(Equal(dynamo.PhaseArmed))
		Expect(p.Params()["angle"]).To(Equal(60.0))
		Expect(b.label("range")).To(Equal(formatRange(20, 60, 9.8)))
	})

	It("emits launch and impact effects that die out", func() {
		p.Launch()
		Expect(p.Effects().Len()).To(Equal(38))
		flyUntilLanded(b, p)
		b.ticks(120, frame)
		Expect(p.Effects().Len()).To(BeZero())
	})

	It("keeps saved shots until reset", func() {
		Expect(p.SaveShot()).To(BeFalse())
		p.Launch()
		flyUntilLanded(b, p)
		Expect(p.Action(experiment.ActionSaveShot)).To(Succeed())
		Expect(p.Shots()).To(HaveLen(1))
		Expect(p.Shots()[0].Range).To(Equal(p.LandedRange()))

		p.Reset()
		Expect(p.Shots()).To(BeEmpty())
		Expect(p.Phase()).To(Equal(dynamo.PhaseIdle))
		Expect(p.Trail().Len()).To(BeZero())
		Expect(b.label("ke")).To(Equal("0.00"))
	})

	It("tags its scene nodes with bench roles", func() {
		p.Launch()
		flyUntilLanded(b, p)
		roles := b.roles()
		Expect(roles).To(HaveKeyWithValue("ground", scene.RoleGround))
		Expect(roles).To(HaveKeyWithValue("preview", scene.RolePreview))
		Expect(roles).To(HaveKeyWithValue("ball", scene.RoleBody))
		Expect(roles).To(HaveKeyWithValue("trail", scene.RoleTrail))
		Expect(roles).To(HaveKeyWithValue("apex", scene.RoleMarker))
		Expect(roles).To(HaveKeyWithValue("landing", scene.RoleBody))
		Expect(roles).To(HaveKeyWithValue("status", scene.RoleLabel))
	})

	It("rejects unknown actions", func() {
		Expect(p.Action("fire")).To(MatchError(ContainSubstring("unknown action")))
	})
})

func formatRange(v, angle, g float64) string {
	r := v * v * math.Sin(2*angle*math.Pi/180) / g
	return strconv.FormatFloat(r, 'f', 2, 64)
}
