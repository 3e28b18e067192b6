package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/config"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/effects"
	"github.com/san-kum/labsim/internal/logging"
	"github.com/san-kum/labsim/internal/physics"
	"github.com/san-kum/labsim/internal/scene"
	"github.com/san-kum/labsim/internal/scheduler"
)

const (
	ActionLaunch     = "launch"
	ActionReset      = "reset"
	ActionSaveShot   = "save"
	ActionClearShots = "clear-saved"
)

var projectileSliders = []boundary.Slider{
	{ID: "angle", Label: "Launch Angle", Min: 5, Max: 85, Step: 1, Unit: "°"},
	{ID: "velocity", Label: "Initial Velocity", Min: 1, Max: 50, Step: 0.5, Unit: "m/s"},
	{ID: "gravity", Label: "Gravity", Min: 1, Max: 20, Step: 0.1, Unit: "m/s²"},
	{ID: "mass", Label: "Mass", Min: 0.1, Max: 10, Step: 0.1, Unit: "kg"},
}

// Shot is a finished flight kept for comparison.
type Shot struct {
	Params dynamo.Params
	Range  float64
	Points []dynamo.Vec3
	handle scene.Handle
}

// Projectile walks idle → armed → flying → landed. Flight positions come
// from the closed form at the accumulated flight time, never from
// integration, so a landed shot cannot drift.
type Projectile struct {
	base
	cfg config.ProjectileConfig

	model  physics.Projectile
	flight physics.Projectile
	phase  dynamo.Phase

	flightTime float64
	apexDone   bool
	current    physics.Kinematics
	landedX    float64
	launches   int

	shots []Shot

	ball    scene.Handle
	preview scene.Handle
	apex    scene.Handle
	landing scene.Handle

	rangeReport  *boundary.Reporter
	heightReport *boundary.Reporter
}

func NewProjectile(cfg config.ProjectileConfig, trailCap int, sess boundary.Session) *Projectile {
	p := &Projectile{
		base:  newBase("projectile", sess, trailCap),
		cfg:   cfg,
		phase: dynamo.PhaseIdle,
	}
	p.params = cfg.Params()
	p.model = physics.Projectile{Angle: cfg.Angle, Speed: cfg.Velocity, Gravity: cfg.Gravity, Mass: cfg.Mass}
	p.rangeReport = boundary.NewReporter(p.sess.Evaluator)
	p.heightReport = boundary.NewReporter(p.sess.Evaluator)

	p.surface.Add(p.root, scene.NewNode(scene.KindLine, "ground").
		WithPoints([]dynamo.Vec3{dynamo.V(-2, cfg.GroundOffset, 0), dynamo.V(60, cfg.GroundOffset, 0)}).
		WithRole(scene.RoleGround))
	p.preview = p.surface.Add(p.root, scene.NewNode(scene.KindDashed, "preview").WithRole(scene.RolePreview))
	p.ball = p.surface.Add(p.root, scene.NewNode(scene.KindPoint, "ball").
		At(p.origin()).WithRole(scene.RoleBody).WithGlyph('●'))
	p.trail.Bind(p.surface, p.root, scene.NewNode(scene.KindLine, "trail").WithRole(scene.RoleTrail))
	return p
}

func (p *Projectile) origin() dynamo.Vec3 {
	return dynamo.V(0, p.cfg.LaunchHeight, 0)
}

func (p *Projectile) Phase() dynamo.Phase { return p.phase }

func (p *Projectile) Actions() []string {
	return []string{ActionLaunch, ActionReset, ActionSaveShot, ActionClearShots}
}

func (p *Projectile) Load(sched *scheduler.Scheduler) error {
	sliders := make([]boundary.Slider, len(projectileSliders))
	for i, s := range projectileSliders {
		s.Value = p.params[s.ID]
		sliders[i] = s
	}
	if err := p.attach(sched, p, p.Update, sliders); err != nil {
		return err
	}
	p.params = p.sess.Controls.Values()
	p.applyModel()
	p.refreshPreview()
	p.writeLiveLabels(physics.Kinematics{}, false)
	return nil
}

func (p *Projectile) SetParameter(name string, value float64) error {
	return p.setParameter(name, value)
}

func (p *Projectile) OnParameterChange(name string, value float64, all dynamo.Params) {
	p.params = all.Clone()
	p.applyModel()
	p.refreshPreview()
	if p.phase == dynamo.PhaseIdle {
		p.phase = dynamo.PhaseArmed
	}
}

func (p *Projectile) applyModel() {
	p.model = physics.Projectile{
		Angle:   p.params["angle"],
		Speed:   p.params["velocity"],
		Gravity: p.params["gravity"],
		Mass:    p.params["mass"],
	}
}

// refreshPreview redraws the dashed path and the predicted labels. The
// flight in progress, if any, is untouched.
func (p *Projectile) refreshPreview() {
	steps := p.cfg.PreviewSteps
	pts := p.model.Preview(steps)
	o := p.origin()
	for i := range pts {
		pts[i] = pts[i].Add(o)
	}
	p.surface.SetPoints(p.preview, pts)
	p.labels.Set("range", p.model.Range(), 2, "m")
	p.labels.Set("max-height", p.model.MaxHeight(), 2, "m")
	p.labels.Set("flight-time", p.model.FlightTime(), 2, "s")
}

func (p *Projectile) Action(id string) error {
	if err := p.checkAction(id, p.Actions()...); err != nil {
		return err
	}
	switch id {
	case ActionLaunch:
		p.Launch()
	case ActionReset:
		p.Reset()
	case ActionSaveShot:
		if !p.SaveShot() {
			return fmt.Errorf("projectile: no landed shot to save")
		}
	case ActionClearShots:
		p.ClearShots()
	}
	return nil
}

// Launch starts a flight with the current parameters. A launch while a
// flight is in the air is ignored.
func (p *Projectile) Launch() {
	if p.disposed || p.phase == dynamo.PhaseFlying {
		return
	}
	p.flight = p.model
	p.flightTime = 0
	p.apexDone = false
	p.current = p.flight.At(0)
	p.launches++

	p.trail.Clear()
	p.removeMarkers()
	p.surface.Move(p.ball, p.origin())
	p.trail.Append(p.origin())

	rad := p.flight.Angle * math.Pi / 180
	p.fx.Spawn(effects.LaunchBurst(p.origin(), rad))
	p.fx.Spawn(effects.LaunchSmoke(p.origin()))
	p.sess.Tones.Play(boundary.ToneLaunch)

	p.rangeReport.Arm()
	p.heightReport.Arm()
	p.phase = dynamo.PhaseFlying
	p.status.SetText("")
	p.logger.Debug("projectile: launch", "n", p.launches, "params", p.params.String())
}

func (p *Projectile) Update(delta, elapsed float64) {
	p.fx.Advance(delta)
	if p.phase != dynamo.PhaseFlying {
		return
	}

	p.flightTime += delta * p.cfg.TimeScale
	k := p.flight.At(p.flightTime)

	if !p.apexDone && k.VY <= 0 {
		p.markApex()
	}

	worldY := p.cfg.LaunchHeight + k.Y
	if worldY <= p.cfg.GroundOffset+p.cfg.Epsilon && p.flightTime > p.cfg.LandingGuard {
		p.land()
		return
	}

	p.current = k
	pos := dynamo.V(k.X, worldY, 0)
	p.surface.Move(p.ball, pos)
	p.trail.Append(pos)
	p.trail.Sync()
	p.writeLiveLabels(k, true)
	logging.Trace(p.logger, "projectile: tick", "t", p.flightTime, "x", k.X, "y", k.Y)
}

func (p *Projectile) markApex() {
	p.apexDone = true
	t := p.flight.ApexTime()
	k := p.flight.At(t)
	h := p.flight.MaxHeight()
	pos := dynamo.V(k.X, p.cfg.LaunchHeight+k.Y, 0)
	p.apex = p.surface.Add(p.root, scene.NewNode(scene.KindMarker, "apex").
		At(pos).WithRole(scene.RoleMarker).WithGlyph('▲').WithText(fmt.Sprintf("H = %.2f m", h)))
	p.heightReport.Report(h, boundary.ResultHeight)
	p.logger.Debug("projectile: apex", "height", h, "t", t)
}

// land resolves the exact contact time with the ground plane and freezes
// the flight there.
func (p *Projectile) land() {
	if !p.apexDone {
		p.markApex()
	}
	t := p.flight.LandingTime(p.cfg.LaunchHeight - p.cfg.GroundOffset)
	k := p.flight.At(t)
	p.flightTime = t
	p.current = k
	p.landedX = k.X
	p.phase = dynamo.PhaseLanded

	pos := dynamo.V(k.X, p.cfg.GroundOffset, 0)
	p.surface.Move(p.ball, pos)
	p.trail.Append(pos)
	p.trail.Sync()
	p.writeLiveLabels(k, true)

	p.fx.Spawn(effects.ImpactBurst(pos))
	p.sess.Tones.Play(boundary.ToneImpact)
	p.landing = p.surface.Add(p.root, scene.NewNode(scene.KindMarker, "landing").
		At(pos).WithRole(scene.RoleBody).WithGlyph('▼').WithText(fmt.Sprintf("%.2f m", k.X)))
	p.status.SetText(fmt.Sprintf("Landed at %.2f m", k.X))
	p.labels.Set("measured-range", k.X, 2, "m")

	if out, sent := p.rangeReport.Report(k.X, boundary.ResultRange); sent && out.Success {
		p.logger.Info("challenge complete", "score", out.Score, "elapsed", out.Elapsed)
	}
	p.logger.Debug("projectile: landed", "range", k.X, "t", t)
}

func (p *Projectile) writeLiveLabels(k physics.Kinematics, live bool) {
	if !live {
		p.labels.Set("ke", 0, 2, "J")
		p.labels.Set("pe", 0, 2, "J")
		p.labels.SetText("current-x", "—", "")
		p.labels.SetText("current-y", "—", "")
		p.labels.SetText("speed", "—", "")
		return
	}
	ke, pe := p.flight.Energy(k, k.Y)
	p.labels.Set("ke", ke, 2, "J")
	p.labels.Set("pe", pe, 2, "J")
	p.labels.Set("current-x", k.X, 2, "m")
	p.labels.Set("current-y", math.Max(p.cfg.LaunchHeight+k.Y, p.cfg.GroundOffset), 2, "m")
	p.labels.Set("speed", k.Speed(), 2, "m/s")
}

func (p *Projectile) removeMarkers() {
	if p.apex != (scene.Handle{}) {
		p.surface.Remove(p.apex)
		p.apex = scene.Handle{}
	}
	if p.landing != (scene.Handle{}) {
		p.surface.Remove(p.landing)
		p.landing = scene.Handle{}
	}
}

// Reset returns to idle without rebuilding the scene.
func (p *Projectile) Reset() {
	if p.disposed {
		return
	}
	p.phase = dynamo.PhaseIdle
	p.flightTime = 0
	p.apexDone = false
	p.current = physics.Kinematics{}
	p.landedX = 0
	p.rangeReport.Disarm()
	p.heightReport.Disarm()

	p.fx.Clear()
	p.trail.Clear()
	p.removeMarkers()
	p.ClearShots()
	p.surface.Move(p.ball, p.origin())
	p.status.SetText("")
	p.writeLiveLabels(physics.Kinematics{}, false)
	p.refreshPreview()
	p.logger.Debug("projectile: reset")
}

// SaveShot keeps the landed trajectory as a ghost path. The oldest ghost
// is dropped once the configured limit is reached.
func (p *Projectile) SaveShot() bool {
	if p.phase != dynamo.PhaseLanded {
		return false
	}
	pts := p.trail.Points()
	h := p.surface.Add(p.root, scene.NewNode(scene.KindDashed, "saved").WithPoints(pts).WithRole(scene.RoleGhost))
	p.shots = append(p.shots, Shot{Params: p.params.Clone(), Range: p.landedX, Points: pts, handle: h})
	if limit := p.cfg.SavedShots; limit > 0 && len(p.shots) > limit {
		p.surface.Remove(p.shots[0].handle)
		p.shots = p.shots[1:]
	}
	return true
}

func (p *Projectile) ClearShots() {
	for _, s := range p.shots {
		p.surface.Remove(s.handle)
	}
	p.shots = nil
}

func (p *Projectile) Shots() []Shot {
	return append([]Shot(nil), p.shots...)
}

// Kinematics is the state at the current flight time. After landing it is
// the contact point.
func (p *Projectile) Kinematics() physics.Kinematics { return p.current }

func (p *Projectile) FlightTime() float64 { return p.flightTime }

// LandedRange is the measured distance of the last landing.
func (p *Projectile) LandedRange() float64 { return p.landedX }

func (p *Projectile) Launches() int { return p.launches }

func (p *Projectile) Model() physics.Projectile { return p.model }

func (p *Projectile) BallHandle() scene.Handle { return p.ball }

func (p *Projectile) Dispose() {
	p.release()
	p.shots = nil
}
