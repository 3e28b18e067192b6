package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/labsim/internal/dynamo"
)

type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int { return 2 }

func (o *oscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestRK4Accuracy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

// Over a long undamped run RK4 drifts steadily while symplectic Euler only
// oscillates, which is what compare puts side by side.
func TestRK4DriftsWhereSymplecticStaysBounded(t *testing.T) {
	sys := &oscillator{}
	rk, se := NewRK4(), NewSemiImplicitEuler()
	xr := dynamo.State{1, 0}
	xs := dynamo.State{1, 0}
	e0 := sys.Energy(xr)
	dt := 0.2

	worstSE := 0.0
	for i := 0; i < 40000; i++ {
		tt := float64(i) * dt
		xr = rk.Step(sys, xr, tt, dt)
		xs = se.Step(sys, xs, tt, dt)
		worstSE = math.Max(worstSE, math.Abs(sys.Energy(xs)-e0)/e0)
	}

	driftRK := math.Abs(sys.Energy(xr)-e0) / e0
	if worstSE > 0.15 {
		t.Errorf("symplectic Euler energy error %.3f should stay bounded", worstSE)
	}
	if driftRK < 0.01 {
		t.Errorf("RK4 drift %.5f unexpectedly small", driftRK)
	}
}

func TestRK4ReturnsFreshState(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK4()
	a := integ.Step(sys, dynamo.State{1, 0}, 0, 0.1)
	keep := a[0]
	integ.Step(sys, dynamo.State{0, 1}, 0, 0.1)
	if a[0] != keep {
		t.Error("second step overwrote the first result")
	}
}
