package physics

import (
	"math"
	"testing"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/dynamo"
)

func TestCircuitOhmsLaw(t *testing.T) {
	c := &Circuit{Voltage: 12, Resistance: 10, On: true}

	if got := c.Current(); math.Abs(got-1.2) > 1e-12 {
		t.Errorf("current = %g, want 1.2", got)
	}
	if got := c.Power(); math.Abs(got-14.4) > 1e-12 {
		t.Errorf("power = %g, want 14.4", got)
	}
	if got := c.Conductance(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("conductance = %g, want 0.1", got)
	}

	c.On = false
	if c.Current() != 0 || c.Power() != 0 {
		t.Errorf("off circuit: current=%g power=%g", c.Current(), c.Power())
	}
	if c.Conductance() != 0.1 {
		t.Error("conductance does not depend on the switch")
	}
}

func TestCircuitSetParam(t *testing.T) {
	c := NewCircuit()
	if err := c.SetParam("power", 0); err != nil {
		t.Fatal(err)
	}
	if c.On {
		t.Error("power=0 should switch the circuit off")
	}
	if err := c.SetParam("capacitance", 1); err == nil {
		t.Error("expected unknown param error")
	}
}

// The model and the toggle slider must agree on where the switch flips.
func TestCircuitPowerThresholdMatchesSlider(t *testing.T) {
	slider := boundary.Slider{ID: "power", Max: 1, Toggle: true}
	for _, v := range []float64{0, 0.3, 0.49, 0.5, 0.7, 1} {
		c := NewCircuit()
		if err := c.SetParam("power", v); err != nil {
			t.Fatal(err)
		}
		if want := slider.Clamp(v) == 1; c.On != want {
			t.Errorf("power=%g: model on=%v, slider on=%v", v, c.On, want)
		}
	}
	c := NewCircuit()
	_ = c.SetParam("power", 0.3)
	if c.On || c.Current() != 0 {
		t.Error("power=0.3 should leave the circuit off")
	}
}

func TestCircuitUnknownParam(t *testing.T) {
	c := NewCircuit()
	if err := c.SetParam("capacitance", 1); err == nil {
		t.Error("expected unknown param error")
	}
}

func TestChargePathArcLength(t *testing.T) {
	p := NewChargePath(
		dynamo.V(0, 0, 0),
		dynamo.V(3, 0, 0),
		dynamo.V(3, 1, 0),
		dynamo.V(0, 1, 0),
	)

	if math.Abs(p.Length()-8) > 1e-12 {
		t.Fatalf("length = %g, want 8", p.Length())
	}
	if p.Segments() != 4 {
		t.Fatalf("segments = %d, want 4", p.Segments())
	}

	tests := []struct {
		progress float64
		want     dynamo.Vec3
	}{
		{0, dynamo.V(0, 0, 0)},
		{0.25, dynamo.V(2, 0, 0)},
		{0.375, dynamo.V(3, 0, 0)},
		{0.5, dynamo.V(3, 1, 0)},
		{0.75, dynamo.V(1, 1, 0)},
		{0.9375, dynamo.V(0, 0.5, 0)},
		{1.25, dynamo.V(2, 0, 0)},
		{-0.75, dynamo.V(2, 0, 0)},
	}

	for _, tt := range tests {
		if got := p.At(tt.progress); got.Dist(tt.want) > 1e-9 {
			t.Errorf("At(%v) = %v, want %v", tt.progress, got, tt.want)
		}
	}
}

func TestDefaultCircuitLoop(t *testing.T) {
	p := DefaultCircuitLoop()
	if p.Length() <= 0 {
		t.Fatal("empty loop")
	}
	start := p.At(0)
	if start.Dist(p.At(0.999999)) > 0.01 {
		t.Errorf("loop is not closed: %v vs %v", start, p.At(0.999999))
	}
}

func TestWrapProgress(t *testing.T) {
	if got := WrapProgress(1.25); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("WrapProgress(1.25) = %g", got)
	}
	if got := WrapProgress(-0.25); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("WrapProgress(-0.25) = %g", got)
	}
}
