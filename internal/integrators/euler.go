package integrators

import "github.com/san-kum/labsim/internal/dynamo"

// Euler is the explicit forward Euler method. It drifts in energy on
// oscillators and is kept for comparison only.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	dx := sys.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
