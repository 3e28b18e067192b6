package boundary

import (
	"errors"
	"testing"

	"github.com/san-kum/labsim/internal/dynamo"
)

func TestSliderClamp(t *testing.T) {
	s := Slider{ID: "angle", Min: 5, Max: 85, Step: 1}
	tests := []struct {
		in, want float64
	}{
		{45, 45},
		{45.4, 45},
		{45.6, 46},
		{0, 5},
		{120, 85},
	}
	for _, tt := range tests {
		if got := s.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	fine := Slider{Min: 0.5, Max: 3, Step: 0.1}
	if got := fine.Clamp(1.04); got != 1.0 {
		t.Errorf("fine clamp = %v", got)
	}

	tog := Slider{Toggle: true, Max: 1}
	if tog.Clamp(0.7) != 1 || tog.Clamp(0.2) != 0 {
		t.Error("toggle clamp")
	}
}

func TestControlsNotify(t *testing.T) {
	c := NewControls(
		Slider{ID: "voltage", Min: 1, Max: 24, Step: 0.5, Value: 12},
		Slider{ID: "resistance", Min: 1, Max: 100, Step: 1, Value: 10},
	)

	var gotName string
	var gotAll dynamo.Params
	unsub := c.Subscribe(ListenerFunc(func(name string, v float64, all dynamo.Params) {
		gotName, gotAll = name, all
	}))

	v, err := c.Set("resistance", 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 || gotName != "resistance" || gotAll["resistance"] != 1 || gotAll["voltage"] != 12 {
		t.Errorf("v = %v name = %q all = %v", v, gotName, gotAll)
	}

	unsub()
	gotName = ""
	if err := c.SetParameterProgrammatically("voltage", 6); err != nil {
		t.Fatal(err)
	}
	if gotName != "" {
		t.Error("listener called after unsubscribe")
	}
	if val, _ := c.Value("voltage"); val != 6 {
		t.Errorf("voltage = %v", val)
	}
}

func TestControlsUnknown(t *testing.T) {
	c := NewControls()
	_, err := c.Set("nope", 1)
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("err = %v", err)
	}
	if err := c.ApplyPreset(dynamo.Params{"nope": 1}); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("preset err = %v", err)
	}
}

func TestControlsNudge(t *testing.T) {
	c := NewControls(
		Slider{ID: "length", Min: 0.5, Max: 3, Step: 0.1, Value: 2},
		Slider{ID: "power", Max: 1, Value: 1, Toggle: true},
	)
	if v, _ := c.Nudge("length", -3); v != 1.7 {
		t.Errorf("length = %v", v)
	}
	if v, _ := c.Nudge("power", 1); v != 0 {
		t.Errorf("power = %v", v)
	}
}

func TestSessionDefaults(t *testing.T) {
	s := Session{}.WithDefaults()
	if s.Surface == nil || s.Sink == nil || s.Evaluator == nil || s.Tones == nil ||
		s.Controls == nil || s.Rand == nil || s.Logger == nil {
		t.Errorf("missing defaults: %+v", s)
	}
}
