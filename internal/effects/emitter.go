package effects

import (
	"math"
	"math/rand"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/scene"
)

type Kind int

const (
	Burst Kind = iota
	Smoke
	Impact
	Spark
)

func (k Kind) String() string {
	switch k {
	case Burst:
		return "burst"
	case Smoke:
		return "smoke"
	case Impact:
		return "impact"
	case Spark:
		return "spark"
	default:
		return "unknown"
	}
}

// Range is a uniform distribution over [Min, Max).
type Range struct {
	Min, Max float64
}

func (r Range) Draw(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Sampler draws a vector from some distribution.
type Sampler func(rng *rand.Rand) dynamo.Vec3

// Emitter describes one spawn event. Velocity and Offset are sampled per
// entity; a nil Offset spawns every entity at Origin.
type Emitter struct {
	Kind     Kind
	Origin   dynamo.Vec3
	Offset   Sampler
	Count    int
	Velocity Sampler
	Lifetime Range
	// Gravity is the constant downward bias applied to velocity.
	Gravity float64
	// Grow > 0 makes entities swell with age (smoke); otherwise they
	// shrink to half size over their lifetime.
	Grow    Range
	Opacity float64
	Role    scene.Role
	Glyph   rune
}

func centered(rng *rand.Rand, width float64) float64 {
	return (rng.Float64() - 0.5) * width
}

// LaunchBurst throws hot debris backwards from a launch at angle (radians).
func LaunchBurst(origin dynamo.Vec3, angle float64) Emitter {
	return Emitter{
		Kind:   Burst,
		Origin: origin,
		Count:  30,
		Velocity: func(rng *rand.Rand) dynamo.Vec3 {
			spread := angle + math.Pi + centered(rng, 1.5)
			speed := 2 + rng.Float64()*4
			return dynamo.V(
				math.Cos(spread)*speed,
				math.Sin(spread)*speed+rng.Float64()*2,
				centered(rng, 3),
			)
		},
		Lifetime: Range{0.5, 1.0},
		Gravity:  5,
		Opacity:  0.9,
		Role:     scene.RoleDebris,
		Glyph:    '*',
	}
}

func LaunchSmoke(origin dynamo.Vec3) Emitter {
	return Emitter{
		Kind:   Smoke,
		Origin: origin,
		Count:  8,
		Velocity: func(rng *rand.Rand) dynamo.Vec3 {
			return dynamo.V(centered(rng, 1.5), rng.Float64()*2, centered(rng, 1.5))
		},
		Lifetime: Range{1.0, 1.5},
		Grow:     Range{1, 2},
		Opacity:  0.4,
		Role:     scene.RoleSmoke,
		Glyph:    'o',
	}
}

func ImpactBurst(origin dynamo.Vec3) Emitter {
	return Emitter{
		Kind:   Impact,
		Origin: origin,
		Count:  25,
		Velocity: func(rng *rand.Rand) dynamo.Vec3 {
			a := rng.Float64() * math.Pi
			speed := 1 + rng.Float64()*4
			dir := 1.0
			if rng.Float64() <= 0.5 {
				dir = -0.3
			}
			return dynamo.V(math.Cos(a)*speed*dir, math.Sin(a)*speed, centered(rng, 3))
		},
		Lifetime: Range{0.4, 1.0},
		Gravity:  5,
		Opacity:  0.8,
		Role:     scene.RoleDebris,
		Glyph:    '.',
	}
}

// OverloadSpark spits a single spark from the area around origin.
func OverloadSpark(origin dynamo.Vec3) Emitter {
	return Emitter{
		Kind:   Spark,
		Origin: origin,
		Offset: func(rng *rand.Rand) dynamo.Vec3 {
			return dynamo.V(centered(rng, 0.5), rng.Float64()*0.5, centered(rng, 0.3))
		},
		Count: 1,
		Velocity: func(rng *rand.Rand) dynamo.Vec3 {
			return dynamo.V(centered(rng, 3), 1+rng.Float64()*3, centered(rng, 3))
		},
		Lifetime: Range{0.3, 0.6},
		Gravity:  8,
		Opacity:  1,
		Role:     scene.RoleSpark,
		Glyph:    '+',
	}
}
