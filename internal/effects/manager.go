package effects

import (
	"math/rand"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/scene"
)

// Effect is one live transient entity. 0 <= Age <= Lifetime holds for
// every effect still held by a Manager.
type Effect struct {
	Kind     Kind
	Pos      dynamo.Vec3
	Vel      dynamo.Vec3
	Age      float64
	Lifetime float64

	gravity float64
	grow    float64
	peak    float64
	handle  scene.Handle
}

func (e *Effect) fade() float64 { return 1 - e.Age/e.Lifetime }

// Manager owns the transient effects of one experiment. Every effect has a
// scene node under the manager's parent; the node is released in the same
// Advance pass that retires the effect.
type Manager struct {
	surface scene.Surface
	parent  scene.Handle
	rng     *rand.Rand
	live    []*Effect

	spawned int
	retired int
}

// New builds a manager drawing into surface under parent. rng must not be
// shared with another goroutine.
func New(surface scene.Surface, parent scene.Handle, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Manager{surface: surface, parent: parent, rng: rng}
}

// Spawn creates em.Count entities and returns how many were created.
func (m *Manager) Spawn(em Emitter) int {
	for i := 0; i < em.Count; i++ {
		pos := em.Origin
		if em.Offset != nil {
			pos = pos.Add(em.Offset(m.rng))
		}
		var vel dynamo.Vec3
		if em.Velocity != nil {
			vel = em.Velocity(m.rng)
		}
		life := em.Lifetime.Draw(m.rng)
		if life <= 0 {
			life = 1e-3
		}
		peak := em.Opacity
		if peak == 0 {
			peak = 1
		}
		e := &Effect{
			Kind:     em.Kind,
			Pos:      pos,
			Vel:      vel,
			Lifetime: life,
			gravity:  em.Gravity,
			peak:     peak,
		}
		if em.Grow.Max > 0 {
			e.grow = em.Grow.Draw(m.rng)
		}
		node := scene.NewNode(scene.KindPoint, em.Kind.String()).
			At(pos).WithRole(em.Role).WithGlyph(em.Glyph)
		node.Opacity = peak
		e.handle = m.surface.Add(m.parent, node)
		m.live = append(m.live, e)
	}
	m.spawned += em.Count
	return em.Count
}

// Advance ages every effect by dt. Expired effects are removed along with
// their scene node; the rest move ballistically and fade.
func (m *Manager) Advance(dt float64) {
	kept := m.live[:0]
	for _, e := range m.live {
		e.Age += dt
		if e.Age > e.Lifetime {
			m.surface.Remove(e.handle)
			m.retired++
			continue
		}
		e.Pos = e.Pos.Add(e.Vel.Scale(dt))
		e.Vel.Y -= e.gravity * dt

		fade := e.fade()
		scale := 1 - (1-fade)*0.5
		if e.grow > 0 {
			scale = 1 + e.Age*e.grow
		}
		m.surface.Move(e.handle, e.Pos)
		m.surface.SetOpacity(e.handle, e.peak*fade)
		m.surface.SetScale(e.handle, scale)
		kept = append(kept, e)
	}
	for i := len(kept); i < len(m.live); i++ {
		m.live[i] = nil
	}
	m.live = kept
}

// Clear releases every live effect immediately.
func (m *Manager) Clear() {
	for i, e := range m.live {
		m.surface.Remove(e.handle)
		m.live[i] = nil
		m.retired++
	}
	m.live = m.live[:0]
}

func (m *Manager) Len() int { return len(m.live) }

func (m *Manager) CountKind(k Kind) int {
	n := 0
	for _, e := range m.live {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Each calls fn for every live effect; fn must not retain e.
func (m *Manager) Each(fn func(e *Effect)) {
	for _, e := range m.live {
		fn(e)
	}
}

// Chance reports true with probability p, drawn from the manager's source.
func (m *Manager) Chance(p float64) bool {
	return m.rng.Float64() < p
}

func (m *Manager) Spawned() int { return m.spawned }

func (m *Manager) Retired() int { return m.retired }
