package dynamo

import (
	"fmt"
	"math"
	"sort"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// System is an ODE dX/dt = f(X, t). States are laid out as positions
// followed by their velocities so symplectic steppers can split them.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Params is an immutable snapshot of named parameter values. With returns
// a modified copy; the receiver is never mutated.
type Params map[string]float64

func (p Params) Get(name string) float64 { return p[name] }

// Switched reads a toggle parameter. Anything at or above one half is on,
// matching the snapping toggle sliders apply.
func Switched(v float64) bool { return v >= 0.5 }

func (p Params) With(name string, value float64) Params {
	c := make(Params, len(p)+1)
	for k, v := range p {
		c[k] = v
	}
	c[name] = value
	return c
}

func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Params) String() string {
	s := ""
	for i, k := range p.Keys() {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%g", k, p[k])
	}
	return s
}

// Phase is the discrete state of an experiment's state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseArmed    Phase = "armed"
	PhaseFlying   Phase = "flying"
	PhaseLanded   Phase = "landed"
	PhaseSwinging Phase = "swinging"
	PhasePaused   Phase = "paused"
	PhaseOn       Phase = "on"
	PhaseOff      Phase = "off"
)
