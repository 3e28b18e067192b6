package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/config"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/integrators"
	"github.com/san-kum/labsim/internal/logging"
	"github.com/san-kum/labsim/internal/metrics"
	"github.com/san-kum/labsim/internal/physics"
	"github.com/san-kum/labsim/internal/scene"
	"github.com/san-kum/labsim/internal/scheduler"
	"github.com/san-kum/labsim/internal/trail"
)

const (
	ActionStart = "start"

	// pendulumMaxStep bounds a single integration step regardless of the
	// scheduler's own clamp.
	pendulumMaxStep = 0.04
)

var pendulumSliders = []boundary.Slider{
	{ID: "length", Label: "String Length", Min: 0.3, Max: 4, Step: 0.1, Unit: "m"},
	{ID: "gravity", Label: "Gravity", Min: 1, Max: 20, Step: 0.1, Unit: "m/s²"},
	{ID: "amplitude", Label: "Amplitude", Min: 5, Max: 80, Step: 1, Unit: "°"},
	{ID: "damping", Label: "Damping", Min: 0, Max: 0.5, Step: 0.01},
	{ID: "mass", Label: "Bob Mass", Min: 0.1, Max: 5, Step: 0.1, Unit: "kg"},
}

var pendulumPivot = dynamo.V(0, 4.5, 0)

// Pendulum integrates the nonlinear equation with a clamped step. Phases:
// idle (at rest on the amplitude), swinging, paused.
//
// The displayed total energy is KE+PE of the simulated state, so with
// damping it decays visibly; nothing is added back for dissipated work.
// The decay holds cycle over cycle. Within a cycle the symplectic step
// trades a little energy back and forth (well under 0.1% at 60 fps), so
// KE+PE can tick up briefly when damping is light.
type Pendulum struct {
	base
	cfg config.PendulumConfig

	model physics.Pendulum
	integ dynamo.Integrator
	state dynamo.State
	phase dynamo.Phase
	t     float64

	meter    *metrics.PeriodMeter
	drift    *metrics.EnergyDrift
	phases   *trail.Recorder
	maxSpeed float64

	rod scene.Handle
	bob scene.Handle

	periodReport *boundary.Reporter
}

func NewPendulum(cfg config.PendulumConfig, integrator string, trailCap int, sess boundary.Session) (*Pendulum, error) {
	integ, err := integrators.Get(integrator)
	if err != nil {
		return nil, fmt.Errorf("pendulum: %w", err)
	}
	p := &Pendulum{
		base:   newBase("pendulum", sess, trailCap),
		cfg:    cfg,
		integ:  integ,
		phase:  dynamo.PhaseIdle,
		meter:  metrics.NewPeriodMeter(),
		phases: trail.New(cfg.PhaseCapacity),
	}
	p.params = cfg.Params()
	p.applyModel()
	p.drift = metrics.NewEnergyDrift(&p.model)
	p.periodReport = boundary.NewReporter(p.sess.Evaluator)
	p.seat()

	p.surface.Add(p.root, scene.NewNode(scene.KindMarker, "pivot").At(pendulumPivot).WithRole(scene.RoleStructure).WithGlyph('┬'))
	bob := p.bobWorld()
	p.rod = p.surface.Add(p.root, scene.NewNode(scene.KindLine, "rod").
		WithPoints([]dynamo.Vec3{pendulumPivot, bob}).WithRole(scene.RoleStructure))
	p.bob = p.surface.Add(p.root, scene.NewNode(scene.KindPoint, "bob").
		At(bob).WithRole(scene.RoleBody).WithGlyph('●'))
	p.trail.Bind(p.surface, p.root, scene.NewNode(scene.KindLine, "trace").WithRole(scene.RoleTrail))
	return p, nil
}

func (p *Pendulum) Phase() dynamo.Phase { return p.phase }

func (p *Pendulum) Actions() []string { return []string{ActionStart, ActionReset} }

func (p *Pendulum) Load(sched *scheduler.Scheduler) error {
	sliders := make([]boundary.Slider, len(pendulumSliders))
	for i, s := range pendulumSliders {
		s.Value = p.params[s.ID]
		sliders[i] = s
	}
	if err := p.attach(sched, p, p.Update, sliders); err != nil {
		return err
	}
	p.params = p.sess.Controls.Values()
	p.applyModel()
	p.seat()
	p.writeNominal()
	p.writeLive()
	p.labels.SetText("measured-period", "—", "")
	return nil
}

func (p *Pendulum) SetParameter(name string, value float64) error {
	return p.setParameter(name, value)
}

func (p *Pendulum) OnParameterChange(name string, value float64, all dynamo.Params) {
	p.params = all.Clone()
	p.applyModel()
	p.writeNominal()
	if p.phase == dynamo.PhaseIdle {
		p.seat()
		p.syncScene()
		p.writeLive()
	}
	p.surface.SetScale(p.bob, 0.7+p.model.Mass*0.2)
}

func (p *Pendulum) applyModel() {
	p.model.Length = p.params["length"]
	p.model.Gravity = p.params["gravity"]
	p.model.Damping = p.params["damping"]
	p.model.Mass = p.params["mass"]
}

func (p *Pendulum) amplitude() float64 {
	return p.params["amplitude"] * math.Pi / 180
}

// seat puts the bob at rest on the signed amplitude.
func (p *Pendulum) seat() {
	p.state = dynamo.State{p.amplitude(), 0}
}

func (p *Pendulum) writeNominal() {
	T := p.model.NominalPeriod()
	p.labels.Set("period", T, 3, "s")
	p.labels.Set("frequency", 1/T, 3, "Hz")
	p.labels.Set("omega", p.model.NaturalFrequency(), 3, "rad/s")
}

func (p *Pendulum) Action(id string) error {
	if err := p.checkAction(id, p.Actions()...); err != nil {
		return err
	}
	switch id {
	case ActionStart:
		p.Toggle()
	case ActionReset:
		p.Reset()
	}
	return nil
}

// Toggle starts a fresh swing from idle and otherwise flips between
// swinging and paused.
func (p *Pendulum) Toggle() {
	if p.disposed {
		return
	}
	switch p.phase {
	case dynamo.PhaseIdle:
		p.restart()
		p.phase = dynamo.PhaseSwinging
		p.logger.Debug("pendulum: start", "amplitude", p.params["amplitude"])
	case dynamo.PhaseSwinging:
		p.phase = dynamo.PhasePaused
	case dynamo.PhasePaused:
		p.phase = dynamo.PhaseSwinging
	}
}

func (p *Pendulum) restart() {
	p.seat()
	p.t = 0
	p.maxSpeed = 0
	p.meter.Reset()
	p.drift.Reset()
	p.trail.Clear()
	p.phases.Clear()
	p.periodReport.Disarm()
}

func (p *Pendulum) Update(delta, elapsed float64) {
	p.fx.Advance(delta)
	if p.phase != dynamo.PhaseSwinging {
		return
	}
	p.Step(delta)
}

// Step advances the simulation by delta, clamped to the maximum step.
func (p *Pendulum) Step(delta float64) {
	dt := math.Min(delta, pendulumMaxStep)
	if dt <= 0 {
		return
	}
	p.state = p.integ.Step(&p.model, p.state, p.t, dt)
	p.t += dt

	p.drift.Observe(p.state, p.t)
	if p.meter.Observe(p.state, p.t) {
		T := p.meter.Value()
		p.labels.Set("measured-period", T, 3, "s")
		p.status.SetText(fmt.Sprintf("T: %.3fs", T))
		p.sess.Tones.Play(boundary.ToneTick)
		p.periodReport.Fire(T, boundary.ResultPeriod)
		p.logger.Debug("pendulum: period measured", "period", T, "oscillations", p.meter.Oscillations())
	}

	speed := math.Abs(p.state[1]) * p.model.Length
	p.maxSpeed = math.Max(p.maxSpeed, speed)

	p.syncScene()
	p.trail.Append(p.bobWorld())
	p.trail.Sync()
	p.phases.Append(dynamo.V(p.state[0], p.state[1], p.t))
	p.writeLive()
	logging.Trace(p.logger, "pendulum: tick", "t", p.t, "theta", p.state[0], "omega", p.state[1])
}

func (p *Pendulum) bobWorld() dynamo.Vec3 {
	return pendulumPivot.Add(p.model.BobPosition(p.state[0]))
}

func (p *Pendulum) syncScene() {
	bob := p.bobWorld()
	p.surface.Move(p.bob, bob)
	p.surface.SetPoints(p.rod, []dynamo.Vec3{pendulumPivot, bob})
}

func (p *Pendulum) writeLive() {
	ke, pe := p.model.EnergySplit(p.state[0], p.state[1])
	p.labels.Set("current-angle", p.state[0]*180/math.Pi, 1, "°")
	p.labels.Set("angular-vel", p.state[1], 3, "rad/s")
	p.labels.Set("bob-speed", math.Abs(p.state[1])*p.model.Length, 3, "m/s")
	p.labels.Set("ke", ke, 3, "J")
	p.labels.Set("pe", pe, 3, "J")
	p.labels.Set("total-energy", ke+pe, 3, "J")
	p.labels.Set("oscillations", float64(p.meter.Oscillations()), 0, "")
	p.labels.Set("elapsed", p.t, 1, "s")
}

// Reset returns the bob to the amplitude at rest and clears all counters.
func (p *Pendulum) Reset() {
	if p.disposed {
		return
	}
	p.phase = dynamo.PhaseIdle
	p.restart()
	p.fx.Clear()
	p.syncScene()
	p.writeLive()
	p.labels.SetText("measured-period", "—", "")
	p.status.SetText("")
	p.logger.Debug("pendulum: reset")
}

func (p *Pendulum) State() dynamo.State { return p.state.Clone() }

func (p *Pendulum) Elapsed() float64 { return p.t }

func (p *Pendulum) Model() physics.Pendulum { return p.model }

// Energy returns the current kinetic and potential energy.
func (p *Pendulum) Energy() (ke, pe float64) {
	return p.model.EnergySplit(p.state[0], p.state[1])
}

func (p *Pendulum) MeasuredPeriod() (float64, bool) {
	return p.meter.Value(), p.meter.Measured()
}

func (p *Pendulum) Oscillations() int { return p.meter.Oscillations() }

func (p *Pendulum) EnergyDrift() float64 { return p.drift.Value() }

func (p *Pendulum) MaxSpeed() float64 { return p.maxSpeed }

// PhaseHistory holds (theta, omega, t) samples for the phase portrait.
func (p *Pendulum) PhaseHistory() *trail.Recorder { return p.phases }

func (p *Pendulum) Dispose() {
	p.release()
	p.phases.Clear()
}
