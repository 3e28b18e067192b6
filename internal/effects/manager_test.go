package effects_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/effects"
	"github.com/san-kum/labsim/internal/scene"
)

var _ = Describe("Manager", func() {
	var (
		arena *scene.Arena
		root  scene.Handle
		m     *effects.Manager
	)

	BeforeEach(func() {
		arena = scene.NewArena()
		root = arena.Add(scene.Root, scene.NewNode(scene.KindGroup, "lab"))
		m = effects.New(arena, root, rand.New(rand.NewSource(7)))
	})

	It("creates one scene node per entity", func() {
		n := m.Spawn(effects.LaunchBurst(dynamo.V(0, 0.36, 0), 0.785))
		Expect(n).To(Equal(30))
		Expect(m.Len()).To(Equal(30))
		Expect(arena.Live()).To(Equal(31))
		Expect(m.CountKind(effects.Burst)).To(Equal(30))
		Expect(m.CountKind(effects.Smoke)).To(BeZero())
	})

	It("returns to zero once every lifetime has elapsed", func() {
		m.Spawn(effects.LaunchBurst(dynamo.V(0, 0.36, 0), 0.785))
		m.Spawn(effects.LaunchSmoke(dynamo.V(0, 0.36, 0)))
		m.Spawn(effects.ImpactBurst(dynamo.V(40, 0, 0)))
		for i := 0; i < 5; i++ {
			m.Spawn(effects.OverloadSpark(dynamo.V(2.5, 1.3, 0.5)))
		}
		total := m.Len()
		Expect(total).To(Equal(30 + 8 + 25 + 5))

		for elapsed := 0.0; elapsed <= 1.6; elapsed += 0.016 {
			m.Advance(0.016)
		}
		Expect(m.Len()).To(BeZero())
		Expect(m.Retired()).To(Equal(total))
		Expect(arena.Live()).To(Equal(1))
	})

	It("keeps age within lifetime for live effects", func() {
		m.Spawn(effects.ImpactBurst(dynamo.V(0, 0, 0)))
		for i := 0; i < 40; i++ {
			m.Advance(0.016)
			m.Each(func(e *effects.Effect) {
				Expect(e.Age).To(BeNumerically(">=", 0))
				Expect(e.Age).To(BeNumerically("<=", e.Lifetime))
			})
		}
	})

	It("fades nodes as they age", func() {
		m.Spawn(effects.OverloadSpark(dynamo.V(0, 0, 0)))
		var h scene.Handle
		for _, c := range arena.Children(root) {
			h = c
		}
		m.Advance(0.1)
		n, ok := arena.Get(h)
		Expect(ok).To(BeTrue())
		Expect(n.Opacity).To(BeNumerically("<", 1))
		Expect(n.Opacity).To(BeNumerically(">", 0))
	})

	It("pulls sparks downwards", func() {
		m.Spawn(effects.OverloadSpark(dynamo.V(0, 0, 0)))
		var before float64
		m.Each(func(e *effects.Effect) { before = e.Vel.Y })
		m.Advance(0.05)
		m.Each(func(e *effects.Effect) {
			Expect(e.Vel.Y).To(BeNumerically("~", before-8*0.05, 1e-12))
		})
	})

	It("releases everything on Clear", func() {
		m.Spawn(effects.LaunchSmoke(dynamo.V(0, 0, 0)))
		m.Clear()
		Expect(m.Len()).To(BeZero())
		Expect(arena.Live()).To(Equal(1))
		m.Advance(0.016)
		Expect(m.Len()).To(BeZero())
	})

	It("replays identically from the same seed", func() {
		positions := func() []dynamo.Vec3 {
			a := scene.NewArena()
			mm := effects.New(a, scene.Root, rand.New(rand.NewSource(42)))
			mm.Spawn(effects.ImpactBurst(dynamo.V(1, 0, 0)))
			mm.Advance(0.2)
			var out []dynamo.Vec3
			mm.Each(func(e *effects.Effect) { out = append(out, e.Pos) })
			return out
		}
		Expect(positions()).To(Equal(positions()))
	})
})
