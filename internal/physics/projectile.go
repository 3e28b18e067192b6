package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/labsim/internal/dynamo"
)

// Projectile is drag-free closed-form ballistics. Angle is in degrees and
// Gravity must be non-zero. Positions are relative to the launch point.
type Projectile struct {
	Angle   float64
	Speed   float64
	Gravity float64
	Mass    float64
}

// Kinematics is the evaluated closed form at flight time T.
type Kinematics struct {
	T, X, Y, VX, VY float64
}

func (k Kinematics) Speed() float64 {
	return math.Hypot(k.VX, k.VY)
}

func NewProjectile() *Projectile {
	return &Projectile{
		Angle:   45,
		Speed:   20,
		Gravity: 9.8,
		Mass:    1,
	}
}

func (p *Projectile) radians() float64 {
	return p.Angle * math.Pi / 180
}

// Velocity0 returns the launch velocity components.
func (p *Projectile) Velocity0() (vx, vy float64) {
	rad := p.radians()
	return p.Speed * math.Cos(rad), p.Speed * math.Sin(rad)
}

func (p *Projectile) At(t float64) Kinematics {
	vx, vy := p.Velocity0()
	return Kinematics{
		T:  t,
		X:  vx * t,
		Y:  vy*t - 0.5*p.Gravity*t*t,
		VX: vx,
		VY: vy - p.Gravity*t,
	}
}

// FlightTime is 2v·sinθ/g for a return to launch height.
func (p *Projectile) FlightTime() float64 {
	_, vy := p.Velocity0()
	return 2 * vy / p.Gravity
}

func (p *Projectile) Range() float64 {
	rad := p.radians()
	return p.Speed * p.Speed * math.Sin(2*rad) / p.Gravity
}

func (p *Projectile) MaxHeight() float64 {
	s := math.Sin(p.radians())
	return p.Speed * p.Speed * s * s / (2 * p.Gravity)
}

// ApexTime is when vertical velocity reaches zero.
func (p *Projectile) ApexTime() float64 {
	_, vy := p.Velocity0()
	return vy / p.Gravity
}

// LandingTime solves y(t) = -drop for the positive root, where drop is how
// far the landing plane lies below the launch point. Negative drop (landing
// plane above launch) is clamped to the apex if the plane is unreachable.
func (p *Projectile) LandingTime(drop float64) float64 {
	_, vy := p.Velocity0()
	disc := vy*vy + 2*p.Gravity*drop
	if disc < 0 {
		return p.ApexTime()
	}
	return (vy + math.Sqrt(disc)) / p.Gravity
}

// Preview samples the trajectory over t ∈ [0, FlightTime] and stops at the
// first sample below launch height. Rounding at the final sample is
// tolerated so the path closes at the range.
func (p *Projectile) Preview(steps int) []dynamo.Vec3 {
	if steps < 1 {
		steps = 1
	}
	total := p.FlightTime()
	points := make([]dynamo.Vec3, 0, steps+1)
	for i := 0; i <= steps; i++ {
		k := p.At(float64(i) / float64(steps) * total)
		if k.Y < -1e-9 && i > 0 {
			break
		}
		points = append(points, dynamo.V(k.X, math.Max(k.Y, 0), 0))
	}
	return points
}

// Energy returns KE = ½m|v|² and PE = m·g·max(height, 0).
func (p *Projectile) Energy(k Kinematics, height float64) (ke, pe float64) {
	v2 := k.VX*k.VX + k.VY*k.VY
	return 0.5 * p.Mass * v2, p.Mass * p.Gravity * math.Max(height, 0)
}

func (p *Projectile) GetParams() map[string]float64 {
	return map[string]float64{
		"angle":    p.Angle,
		"velocity": p.Speed,
		"gravity":  p.Gravity,
		"mass":     p.Mass,
	}
}

func (p *Projectile) SetParam(name string, value float64) error {
	switch name {
	case "angle":
		p.Angle = value
	case "velocity":
		p.Speed = value
	case "gravity":
		p.Gravity = value
	case "mass":
		p.Mass = value
	default:
		return fmt.Errorf("projectile: %w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
