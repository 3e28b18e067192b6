package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/labsim/internal/dynamo"
)

// Pendulum is the nonlinear simple pendulum with linear damping.
// State is [theta, omega]. Length and Gravity must be non-zero.
//
// Mass scales the energies only. The period does not depend on it, which
// matches the physics; the coupling is deliberately absent.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    0.5,
		Length:  2.0,
		Damping: 0,
		Gravity: 9.8,
	}
}

func (p *Pendulum) StateDim() int {
	return 2
}

// Derive gives [omega, alpha] with alpha = -(g/L) sin(theta) - c*omega.
// No small-angle linearization is applied.
func (p *Pendulum) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], p.Acceleration(x[0], x[1])}
}

func (p *Pendulum) Acceleration(theta, omega float64) float64 {
	return -(p.Gravity/p.Length)*math.Sin(theta) - p.Damping*omega
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	ke, pe := p.EnergySplit(x[0], x[1])
	return ke + pe
}

// EnergySplit returns KE = ½m(Lω)² and PE = mgL(1 − cos θ).
func (p *Pendulum) EnergySplit(theta, omega float64) (ke, pe float64) {
	v := p.Length * omega
	ke = 0.5 * p.Mass * v * v
	pe = p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(theta))
	return ke, pe
}

// NominalPeriod is the small-angle period 2π√(L/g). It is only accurate
// below roughly 15° of amplitude.
func (p *Pendulum) NominalPeriod() float64 {
	return 2 * math.Pi * math.Sqrt(p.Length/p.Gravity)
}

func (p *Pendulum) NaturalFrequency() float64 {
	return math.Sqrt(p.Gravity / p.Length)
}

// BobPosition is the bob offset from the pivot for angle theta.
func (p *Pendulum) BobPosition(theta float64) dynamo.Vec3 {
	return dynamo.V(p.Length*math.Sin(theta), -p.Length*math.Cos(theta), 0)
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "length":
		p.Length = value
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("pendulum: %w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
