package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/config"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/effects"
	"github.com/san-kum/labsim/internal/physics"
	"github.com/san-kum/labsim/internal/scene"
	"github.com/san-kum/labsim/internal/scheduler"
)

const (
	ActionToggle = "toggle"

	minMarkerSpeed = 0.001
	dimOpacity     = 0.15
)

var circuitSliders = []boundary.Slider{
	{ID: "voltage", Label: "Voltage (EMF)", Min: 0, Max: 24, Step: 0.5, Unit: "V"},
	{ID: "resistance", Label: "Resistance", Min: 1, Max: 100, Step: 1, Unit: "Ω"},
	{ID: "power", Label: "Circuit Power", Max: 1, Toggle: true},
}

var resistorSite = dynamo.V(2.5, 1.3, 0.5)

type marker struct {
	progress float64
	handle   scene.Handle
}

// Circuit recomputes its steady state on every parameter change. Only the
// charge markers and overload sparks move per tick.
type Circuit struct {
	base
	cfg config.CircuitConfig

	model   physics.Circuit
	path    *physics.ChargePath
	markers []marker
	danger  bool
	t       float64

	dangerSign scene.Handle

	currentReport *boundary.Reporter
	powerReport   *boundary.Reporter
	resetting     bool
}

func NewCircuit(cfg config.CircuitConfig, trailCap int, sess boundary.Session) *Circuit {
	c := &Circuit{
		base: newBase("ohms-law", sess, trailCap),
		cfg:  cfg,
		path: physics.DefaultCircuitLoop(),
	}
	c.params = cfg.Params()
	c.applyModel()
	c.currentReport = boundary.NewReporter(c.sess.Evaluator)
	c.powerReport = boundary.NewReporter(c.sess.Evaluator)

	loop := make([]dynamo.Vec3, 0, 64)
	for i := 0; i <= 64; i++ {
		loop = append(loop, c.path.At(float64(i)/64))
	}
	c.surface.Add(c.root, scene.NewNode(scene.KindLine, "wire").WithPoints(loop).WithRole(scene.RoleStructure))
	c.surface.Add(c.root, scene.NewNode(scene.KindMarker, "resistor").At(resistorSite).WithRole(scene.RoleStructure).WithGlyph('▥'))
	c.dangerSign = c.surface.Add(c.root, scene.NewNode(scene.KindLabel, "danger").
		At(resistorSite.Add(dynamo.V(0, 0.8, 0))).WithText("⚠ OVERLOAD").WithRole(scene.RoleDanger))
	c.surface.SetVisible(c.dangerSign, false)

	n := cfg.Markers
	if n <= 0 {
		n = 1
	}
	c.markers = make([]marker, n)
	for i := range c.markers {
		prog := float64(i) / float64(n)
		c.markers[i] = marker{
			progress: prog,
			handle: c.surface.Add(c.root, scene.NewNode(scene.KindPoint, "charge").
				At(c.path.At(prog)).WithRole(scene.RoleCharge).WithGlyph('•')),
		}
	}
	return c
}

func (c *Circuit) applyModel() {
	c.model = physics.Circuit{
		Voltage:    c.params["voltage"],
		Resistance: c.params["resistance"],
		On:         dynamo.Switched(c.params["power"]),
	}
}

func (c *Circuit) phase() dynamo.Phase {
	if c.model.On {
		return dynamo.PhaseOn
	}
	return dynamo.PhaseOff
}

func (c *Circuit) Phase() dynamo.Phase { return c.phase() }

func (c *Circuit) Actions() []string { return []string{ActionToggle, ActionReset} }

func (c *Circuit) Load(sched *scheduler.Scheduler) error {
	sliders := make([]boundary.Slider, len(circuitSliders))
	for i, s := range circuitSliders {
		s.Value = c.params[s.ID]
		sliders[i] = s
	}
	if err := c.attach(sched, c, c.Update, sliders); err != nil {
		return err
	}
	c.params = c.sess.Controls.Values()
	c.applyModel()
	c.recompute()
	c.dim()
	return nil
}

func (c *Circuit) SetParameter(name string, value float64) error {
	return c.setParameter(name, value)
}

func (c *Circuit) OnParameterChange(name string, value float64, all dynamo.Params) {
	wasOn := c.model.On
	c.params = all.Clone()
	c.applyModel()
	c.recompute()
	if c.model.On != wasOn {
		c.dim()
		if c.resetting {
			return
		}
		c.sess.Tones.Play(boundary.ToneToggle)
		c.currentReport.Fire(c.model.Current(), boundary.ResultCurrent)
		c.powerReport.Fire(c.model.Power(), boundary.ResultPower)
		c.logger.Debug("circuit: toggled", "on", c.model.On, "current", c.model.Current())
	}
}

// recompute writes every steady-state quantity and the overload flag.
func (c *Circuit) recompute() {
	i := c.model.Current()
	pw := c.model.Power()
	c.labels.Set("current", i, 3, "A")
	c.labels.Set("power", pw, 2, "W")
	c.labels.Set("voltage-drop", c.model.VoltageDrop(), 1, "V")
	c.labels.Set("energy", pw, 2, "J/s")
	c.labels.Set("conductance", c.model.Conductance(), 3, "S")
	c.labels.Set("charge-rate", i, 3, "C/s")

	danger := pw > c.cfg.DangerPower
	if danger != c.danger {
		c.danger = danger
		c.surface.SetVisible(c.dangerSign, danger)
		if danger {
			c.status.SetText(fmt.Sprintf("Overload: %.1f W", pw))
			c.logger.Debug("circuit: overload", "power", pw)
		} else {
			c.status.SetText("")
		}
	}
}

func (c *Circuit) dim() {
	op := 1.0
	if !c.model.On {
		op = dimOpacity
	}
	for _, m := range c.markers {
		c.surface.SetOpacity(m.handle, op)
	}
}

func (c *Circuit) Action(id string) error {
	if err := c.checkAction(id, c.Actions()...); err != nil {
		return err
	}
	switch id {
	case ActionToggle:
		return c.Toggle()
	case ActionReset:
		c.Reset()
	}
	return nil
}

// Toggle flips the power switch through the control surface so listeners
// see the same change a user click would produce.
func (c *Circuit) Toggle() error {
	on := 1.0
	if c.model.On {
		on = 0
	}
	return c.SetParameter("power", on)
}

// MarkerSpeed is the progress rate of the charge markers, proportional to
// current with a small floor so a weak current still visibly flows.
func (c *Circuit) MarkerSpeed() float64 {
	return math.Max(c.model.Current()*c.cfg.SpeedFactor, minMarkerSpeed)
}

func (c *Circuit) Update(delta, elapsed float64) {
	c.fx.Advance(delta)
	c.t += delta

	if c.model.On {
		step := c.MarkerSpeed() * delta
		for i := range c.markers {
			m := &c.markers[i]
			m.progress = physics.WrapProgress(m.progress + step)
			c.surface.Move(m.handle, c.path.At(m.progress))
		}
	}

	pw := c.model.Power()
	if pw > c.cfg.SparkPower && c.fx.Chance(delta*c.cfg.SparkRate) {
		c.fx.Spawn(effects.OverloadSpark(resistorSite))
		c.sess.Tones.Play(boundary.ToneSpark)
	}
	c.trail.Append(dynamo.V(c.t, pw, c.model.Current()))
}

// Reset restores the starting parameters and re-spaces the markers. A
// switch turned back on by the reset is not a user toggle: it plays no
// tone and reports nothing.
func (c *Circuit) Reset() {
	if c.disposed {
		return
	}
	c.fx.Clear()
	c.trail.Clear()
	c.t = 0
	for i := range c.markers {
		c.markers[i].progress = float64(i) / float64(len(c.markers))
		c.surface.Move(c.markers[i].handle, c.path.At(c.markers[i].progress))
	}
	if c.loaded {
		c.resetting = true
		defer func() { c.resetting = false }()
		if err := c.sess.Controls.ApplyPreset(c.cfg.Params()); err != nil {
			c.logger.Warn("circuit: reset", "err", err)
		}
	}
	c.logger.Debug("circuit: reset")
}

func (c *Circuit) Model() physics.Circuit { return c.model }

func (c *Circuit) Danger() bool { return c.danger }

// MarkerProgress returns each marker's position along the loop in [0, 1).
func (c *Circuit) MarkerProgress() []float64 {
	out := make([]float64, len(c.markers))
	for i, m := range c.markers {
		out[i] = m.progress
	}
	return out
}

func (c *Circuit) MarkerHandles() []scene.Handle {
	out := make([]scene.Handle, len(c.markers))
	for i, m := range c.markers {
		out[i] = m.handle
	}
	return out
}

func (c *Circuit) Dispose() {
	c.release()
	c.markers = nil
}
