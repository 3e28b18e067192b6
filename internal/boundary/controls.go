package boundary

import (
	"fmt"
	"math"

	"github.com/san-kum/labsim/internal/dynamo"
)

// ParameterListener is notified synchronously after every control change.
type ParameterListener interface {
	OnParameterChange(name string, value float64, all dynamo.Params)
}

type ListenerFunc func(name string, value float64, all dynamo.Params)

func (f ListenerFunc) OnParameterChange(name string, value float64, all dynamo.Params) {
	f(name, value, all)
}

// Slider describes one control. A Toggle slider only takes 0 or 1.
type Slider struct {
	ID     string
	Label  string
	Min    float64
	Max    float64
	Step   float64
	Value  float64
	Unit   string
	Toggle bool
}

// Clamp snaps v onto the slider's grid and bounds it to [Min, Max].
func (s Slider) Clamp(v float64) float64 {
	if s.Toggle {
		if dynamo.Switched(v) {
			return 1
		}
		return 0
	}
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
		v = math.Round(v*1e9) / 1e9
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Controls is an in-memory control surface. Values are always inside
// their slider bounds, which is what lets the solvers skip range checks.
type Controls struct {
	sliders   []Slider
	index     map[string]int
	listeners []*subscription
}

type subscription struct {
	l ParameterListener
}

func NewControls(sliders ...Slider) *Controls {
	c := &Controls{}
	c.Configure(sliders...)
	return c
}

// Configure replaces the slider set. Listeners stay subscribed.
func (c *Controls) Configure(sliders ...Slider) {
	c.sliders = make([]Slider, len(sliders))
	c.index = make(map[string]int, len(sliders))
	for i, s := range sliders {
		s.Value = s.Clamp(s.Value)
		c.sliders[i] = s
		c.index[s.ID] = i
	}
}

// Subscribe registers l and returns a function that removes it.
func (c *Controls) Subscribe(l ParameterListener) func() {
	sub := &subscription{l: l}
	c.listeners = append(c.listeners, sub)
	return func() {
		for i, s := range c.listeners {
			if s == sub {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Controls) Listeners() int { return len(c.listeners) }

// Set applies a user change: clamp, store, notify.
func (c *Controls) Set(name string, v float64) (float64, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, &dynamo.ParamError{Name: name, Wrapped: dynamo.ErrUnknownParam}
	}
	v = c.sliders[i].Clamp(v)
	c.sliders[i].Value = v
	all := c.Values()
	for _, s := range append([]*subscription(nil), c.listeners...) {
		s.l.OnParameterChange(name, v, all)
	}
	return v, nil
}

// SetParameterProgrammatically routes a preset or reset through the same
// path as a user change.
func (c *Controls) SetParameterProgrammatically(name string, v float64) error {
	_, err := c.Set(name, v)
	return err
}

// ApplyPreset sets each named value in key order.
func (c *Controls) ApplyPreset(values dynamo.Params) error {
	for _, k := range values.Keys() {
		if err := c.SetParameterProgrammatically(k, values[k]); err != nil {
			return fmt.Errorf("apply preset: %w", err)
		}
	}
	return nil
}

// Nudge moves a slider by whole steps; toggles flip.
func (c *Controls) Nudge(name string, steps int) (float64, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, &dynamo.ParamError{Name: name, Wrapped: dynamo.ErrUnknownParam}
	}
	s := c.sliders[i]
	if s.Toggle {
		return c.Set(name, 1-s.Value)
	}
	step := s.Step
	if step <= 0 {
		step = (s.Max - s.Min) / 100
	}
	return c.Set(name, s.Value+float64(steps)*step)
}

func (c *Controls) Value(name string) (float64, bool) {
	i, ok := c.index[name]
	if !ok {
		return 0, false
	}
	return c.sliders[i].Value, true
}

func (c *Controls) Values() dynamo.Params {
	p := make(dynamo.Params, len(c.sliders))
	for _, s := range c.sliders {
		p[s.ID] = s.Value
	}
	return p
}

func (c *Controls) Sliders() []Slider {
	return append([]Slider(nil), c.sliders...)
}

func (c *Controls) Slider(name string) (Slider, bool) {
	i, ok := c.index[name]
	if !ok {
		return Slider{}, false
	}
	return c.sliders[i], true
}
