package physics

import (
	"fmt"

	"github.com/san-kum/labsim/internal/dynamo"
)

// Circuit is a single-loop resistive circuit treated as instantly reaching
// steady state. Resistance must be strictly positive; the control surface
// enforces its minimum and it is not re-checked here.
type Circuit struct {
	Voltage    float64
	Resistance float64
	On         bool
}

func NewCircuit() *Circuit {
	return &Circuit{Voltage: 12, Resistance: 10, On: true}
}

func (c *Circuit) Current() float64 {
	if !c.On {
		return 0
	}
	return c.Voltage / c.Resistance
}

func (c *Circuit) Power() float64 {
	return c.Voltage * c.Current()
}

func (c *Circuit) Conductance() float64 {
	return 1 / c.Resistance
}

// VoltageDrop across the resistor equals the EMF in a single loop.
func (c *Circuit) VoltageDrop() float64 {
	if !c.On {
		return 0
	}
	return c.Voltage
}

func (c *Circuit) GetParams() map[string]float64 {
	on := 0.0
	if c.On {
		on = 1
	}
	return map[string]float64{
		"voltage":    c.Voltage,
		"resistance": c.Resistance,
		"power":      on,
	}
}

func (c *Circuit) SetParam(name string, value float64) error {
	switch name {
	case "voltage":
		c.Voltage = value
	case "resistance":
		c.Resistance = value
	case "power":
		c.On = dynamo.Switched(value)
	default:
		return fmt.Errorf("circuit: %w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
