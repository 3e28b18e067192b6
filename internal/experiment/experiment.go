package experiment

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/effects"
	"github.com/san-kum/labsim/internal/scene"
	"github.com/san-kum/labsim/internal/scheduler"
	"github.com/san-kum/labsim/internal/trail"
)

// Experiment is one interactive lab bench. Everything time-dependent runs
// inside Update, which Load registers with the scheduler. Parameter
// changes arrive through OnParameterChange and never advance simulated
// time.
type Experiment interface {
	Name() string
	Load(sched *scheduler.Scheduler) error
	OnParameterChange(name string, value float64, all dynamo.Params)
	SetParameter(name string, value float64) error
	Reset()
	Update(delta, elapsed float64)
	Action(id string) error
	Actions() []string
	Phase() dynamo.Phase
	Params() dynamo.Params
	Dispose()
	Trail() *trail.Recorder
	Effects() *effects.Manager
}

// base holds the wiring every experiment shares: scene subtree, effect
// pool, trail, labels and the scheduler registration.
type base struct {
	name    string
	sess    boundary.Session
	logger  *slog.Logger
	labels  *boundary.Labels
	surface scene.Surface
	root    scene.Handle
	status  *scene.Billboard
	fx      *effects.Manager
	trail   *trail.Recorder
	params  dynamo.Params

	sched       *scheduler.Scheduler
	tick        scheduler.Handle
	unsubscribe func()
	loaded      bool
	disposed    bool
}

func newBase(name string, sess boundary.Session, trailCap int) base {
	sess = sess.WithDefaults()
	root := sess.Surface.Add(scene.Root, scene.NewNode(scene.KindGroup, name))
	return base{
		name:    name,
		sess:    sess,
		logger:  sess.Logger.With("experiment", name),
		labels:  boundary.NewLabels(sess.Sink),
		surface: sess.Surface,
		root:    root,
		status:  scene.NewBillboard(sess.Surface, root, "status", scene.RoleLabel),
		fx:      effects.New(sess.Surface, root, sess.Rand),
		trail:   trail.New(trailCap),
	}
}

func (b *base) Name() string { return b.name }

func (b *base) Trail() *trail.Recorder { return b.trail }

func (b *base) Effects() *effects.Manager { return b.fx }

func (b *base) Params() dynamo.Params { return b.params.Clone() }

// Root is the experiment's scene subtree.
func (b *base) Root() scene.Handle { return b.root }

func (b *base) Status() string { return b.status.Text() }

// attach installs the sliders, subscribes l to the controls and registers
// update with sched.
func (b *base) attach(sched *scheduler.Scheduler, l boundary.ParameterListener, update scheduler.Callback, sliders []boundary.Slider) error {
	if b.disposed {
		return dynamo.ErrDisposed
	}
	if b.loaded {
		return fmt.Errorf("%s: already loaded", b.name)
	}
	b.sess.Controls.Configure(sliders...)
	b.unsubscribe = b.sess.Controls.Subscribe(l)
	b.sched = sched
	b.tick = sched.Register(update)
	b.loaded = true
	b.labels.Forget()
	b.logger.Debug("experiment: load", "params", b.params.String())
	return nil
}

func (b *base) setParameter(name string, value float64) error {
	if b.disposed {
		return dynamo.ErrDisposed
	}
	if !b.loaded {
		return dynamo.ErrNotLoaded
	}
	return b.sess.Controls.SetParameterProgrammatically(name, value)
}

// release tears the experiment down: the tick callback goes first so no
// update can run against the pool or trail being freed.
func (b *base) release() {
	if b.disposed {
		return
	}
	if b.loaded {
		b.sched.Unregister(b.tick)
	}
	b.fx.Clear()
	b.trail.Unbind()
	b.trail.Clear()
	b.surface.Remove(b.root)
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.labels.Detach()
	b.disposed = true
	b.logger.Debug("experiment: dispose", "effects_spawned", b.fx.Spawned())
}

func (b *base) checkAction(id string, known ...string) error {
	if b.disposed {
		return dynamo.ErrDisposed
	}
	for _, k := range known {
		if k == id {
			return nil
		}
	}
	return fmt.Errorf("%s: %w: %s", b.name, dynamo.ErrUnknownAction, id)
}
