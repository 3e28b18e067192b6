package physics

import (
	"math"
	"testing"

	"github.com/san-kum/labsim/internal/dynamo"
)

func TestPendulumEquilibrium(t *testing.T) {
	p := NewPendulum()

	dx := p.Derive(dynamo.State{0, 0}, 0)

	if math.Abs(dx[0]) > 1e-10 {
		t.Errorf("expected zero velocity at equilibrium, got %f", dx[0])
	}
	if math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected zero acceleration at equilibrium, got %f", dx[1])
	}
}

func TestPendulumNonlinearAcceleration(t *testing.T) {
	p := &Pendulum{Mass: 1, Length: 1, Gravity: 9.8}

	dx := p.Derive(dynamo.State{math.Pi / 2, 0}, 0)
	if math.Abs(dx[1]+9.8) > 1e-9 {
		t.Errorf("expected -g/L at 90°, got %f", dx[1])
	}

	// sin, not the linearized angle
	dx = p.Derive(dynamo.State{1.0, 0}, 0)
	if math.Abs(dx[1]+9.8*math.Sin(1.0)) > 1e-9 {
		t.Errorf("expected -(g/L)sin(1), got %f", dx[1])
	}
}

func TestPendulumDamping(t *testing.T) {
	p := &Pendulum{Mass: 1, Length: 1, Gravity: 9.8, Damping: 0.2}
	dx := p.Derive(dynamo.State{0, 3}, 0)
	if math.Abs(dx[1]+0.6) > 1e-12 {
		t.Errorf("expected damping term -0.6, got %f", dx[1])
	}
}

func TestPendulumMassIndependence(t *testing.T) {
	light := &Pendulum{Mass: 0.1, Length: 1.5, Gravity: 9.8}
	heavy := &Pendulum{Mass: 5, Length: 1.5, Gravity: 9.8}

	x := dynamo.State{0.7, -0.3}
	if light.Derive(x, 0)[1] != heavy.Derive(x, 0)[1] {
		t.Error("mass must not affect the dynamics")
	}
	if light.NominalPeriod() != heavy.NominalPeriod() {
		t.Error("mass must not affect the period")
	}
	if light.Energy(x) >= heavy.Energy(x) {
		t.Error("mass should scale the energy")
	}
}

func TestPendulumNominalPeriod(t *testing.T) {
	p := &Pendulum{Length: 1, Gravity: 9.8}
	if got := p.NominalPeriod(); math.Abs(got-2.007) > 0.001 {
		t.Errorf("period = %.4f, want ≈2.007", got)
	}
}

func TestPendulumEnergySplit(t *testing.T) {
	p := &Pendulum{Mass: 2, Length: 1, Gravity: 10}
	ke, pe := p.EnergySplit(math.Pi/2, 1)
	if math.Abs(ke-1) > 1e-12 {
		t.Errorf("KE = %g, want 1", ke)
	}
	if math.Abs(pe-20) > 1e-12 {
		t.Errorf("PE = %g, want 20", pe)
	}
}

func TestPendulumConfigurable(t *testing.T) {
	p := NewPendulum()
	var c dynamo.Configurable = p
	if err := c.SetParam("length", 1.2); err != nil {
		t.Fatal(err)
	}
	if c.GetParams()["length"] != 1.2 {
		t.Errorf("length not applied")
	}
	if err := c.SetParam("amplitude", 10); err == nil {
		t.Error("amplitude is not a solver parameter")
	}
}
