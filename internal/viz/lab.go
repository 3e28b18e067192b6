package viz

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/challenge"
	"github.com/san-kum/labsim/internal/config"
	"github.com/san-kum/labsim/internal/experiment"
	"github.com/san-kum/labsim/internal/scene"
	"github.com/san-kum/labsim/internal/scheduler"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 600
)

type frameMsg time.Time

// Lab hosts one experiment at a time. Each frame message ticks the
// scheduler once; the scheduler owns delta clamping and callback order.
type Lab struct {
	cfg      *config.Config
	registry *experiment.Registry
	logger   *slog.Logger

	clock    scheduler.Clock
	sched    *scheduler.Scheduler
	arena    *scene.Arena
	sink     *boundary.MemorySink
	controls *boundary.Controls
	tones    boundary.ToneRenderer
	judge    *challenge.Evaluator
	rng      *rand.Rand

	exp      experiment.Experiment
	name     string
	canvas   *Canvas
	view     Viewport
	theme    int
	param    int
	preset   int
	quest    int
	history  []float64
	frames   int
	redraws  int
	notice   string
	showHelp bool
	quitting bool
}

type LabOption func(*Lab)

func WithClock(c scheduler.Clock) LabOption {
	return func(l *Lab) { l.clock = c }
}

func WithTones(t boundary.ToneRenderer) LabOption {
	return func(l *Lab) { l.tones = t }
}

func WithLogger(lg *slog.Logger) LabOption {
	return func(l *Lab) { l.logger = lg }
}

func NewLab(cfg *config.Config, reg *experiment.Registry, opts ...LabOption) (*Lab, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if reg == nil {
		reg = experiment.NewRegistry()
	}
	l := &Lab{
		cfg:      cfg,
		registry: reg,
		logger:   slog.Default(),
		clock:    scheduler.SystemClock(),
		arena:    scene.NewArena(),
		sink:     boundary.NewMemorySink(),
		controls: boundary.NewControls(),
		tones:    boundary.NopTones{},
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		theme:    themeIndex(cfg.Theme),
		quest:    -1,
	}
	for _, o := range opts {
		o(l)
	}
	l.judge = challenge.New(l.clock.Now, l.logger)
	l.sched = scheduler.New(l.clock,
		scheduler.WithMaxDelta(cfg.MaxDeltaDuration()),
		scheduler.WithRedraw(func() { l.redraws++ }),
		scheduler.WithLogger(l.logger),
	)

	name := cfg.Experiment
	if name == "" {
		name = reg.Names()[0]
	}
	if err := l.switchTo(name); err != nil {
		return nil, err
	}
	l.sched.Start()
	return l, nil
}

func (l *Lab) session() boundary.Session {
	return boundary.Session{
		Surface:   l.arena,
		Sink:      l.sink,
		Evaluator: l.judge,
		Tones:     l.tones,
		Controls:  l.controls,
		Rand:      l.rng,
		Logger:    l.logger,
	}
}

// switchTo disposes the current experiment before building the next, so
// only one ever holds the controls and the scheduler.
func (l *Lab) switchTo(name string) error {
	if l.exp != nil {
		l.exp.Dispose()
		l.exp = nil
	}
	l.judge.Cancel()
	l.sink.Reset()
	l.history = l.history[:0]
	l.view = Viewport{}
	l.param, l.preset, l.quest = 0, 0, -1

	exp, err := l.registry.New(name, l.cfg, l.session())
	if err != nil {
		return err
	}
	if err := exp.Load(l.sched); err != nil {
		exp.Dispose()
		return fmt.Errorf("load %s: %w", name, err)
	}
	l.exp, l.name = exp, name
	l.notice = ""
	l.logger.Debug("lab: experiment", "name", name)
	return nil
}

func (l *Lab) Experiment() experiment.Experiment { return l.exp }

func (l *Lab) Name() string { return l.name }

func (l *Lab) Sink() *boundary.MemorySink { return l.sink }

func (l *Lab) Scheduler() *scheduler.Scheduler { return l.sched }

func (l *Lab) Arena() *scene.Arena { return l.arena }

func (l *Lab) Challenges() *challenge.Evaluator { return l.judge }

func (l *Lab) Theme() Theme { return Themes[l.theme] }

// Close disposes the experiment and stops the scheduler.
func (l *Lab) Close() {
	if l.exp != nil {
		l.exp.Dispose()
		l.exp = nil
	}
	l.sched.Stop()
}

func (l *Lab) frame() tea.Cmd {
	return tea.Tick(l.cfg.FrameInterval(), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (l *Lab) Init() tea.Cmd { return l.frame() }

func (l *Lab) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return l, l.handleKey(msg)
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-56)
		h := max(8, msg.Height-6)
		if w != l.canvas.Width || h != l.canvas.Height {
			l.canvas = NewCanvas(w, h)
		}
	case frameMsg:
		if l.quitting {
			return l, nil
		}
		l.step()
		return l, l.frame()
	}
	return l, nil
}

// step advances one host frame.
func (l *Lab) step() {
	l.sched.Tick()
	l.frames++
	l.sample()
	if l.judge.Expired() {
		spec, _ := l.judge.Current()
		l.judge.Cancel()
		l.notice = fmt.Sprintf("time up: %s", spec.Label)
	}
}

func (l *Lab) sample() {
	v, ok := chartValue(l.exp)
	if !ok {
		return
	}
	l.history = append(l.history, v)
	if len(l.history) > historyCapacity {
		l.history = l.history[1:]
	}
}

func chartValue(exp experiment.Experiment) (float64, bool) {
	switch e := exp.(type) {
	case *experiment.Pendulum:
		ke, pe := e.Energy()
		return ke + pe, true
	case *experiment.Projectile:
		return e.Kinematics().Y, true
	case *experiment.Circuit:
		m := e.Model()
		return m.Power(), true
	}
	return 0, false
}

func chartCaption(exp experiment.Experiment) string {
	switch exp.(type) {
	case *experiment.Pendulum:
		return "total energy (J)"
	case *experiment.Projectile:
		return "height (m)"
	case *experiment.Circuit:
		return "power (W)"
	}
	return ""
}

func (l *Lab) handleKey(msg tea.KeyMsg) tea.Cmd {
	sliders := l.controls.Sliders()
	switch msg.String() {
	case "q", "ctrl+c":
		l.quitting = true
		return tea.Quit
	case "tab":
		if err := l.switchTo(l.registry.Next(l.name)); err != nil {
			l.notice = err.Error()
		}
	case "up", "k":
		if len(sliders) > 0 {
			l.param = (l.param + len(sliders) - 1) % len(sliders)
		}
	case "down", "j":
		if len(sliders) > 0 {
			l.param = (l.param + 1) % len(sliders)
		}
	case "left", "h":
		l.nudge(sliders, -1)
	case "right", "l":
		l.nudge(sliders, 1)
	case " ":
		if acts := l.exp.Actions(); len(acts) > 0 {
			l.act(acts[0])
		}
	case "r":
		l.act(experiment.ActionReset)
	case "c":
		l.act(experiment.ActionSaveShot)
	case "p":
		l.nextPreset()
	case "g":
		l.nextChallenge()
	case "t":
		l.theme = (l.theme + 1) % len(Themes)
	case "?":
		l.showHelp = !l.showHelp
	}
	return nil
}

func (l *Lab) nudge(sliders []boundary.Slider, dir int) {
	if len(sliders) == 0 {
		return
	}
	if _, err := l.controls.Nudge(sliders[l.param%len(sliders)].ID, dir); err != nil {
		l.notice = err.Error()
	}
}

func (l *Lab) act(id string) {
	if err := l.exp.Action(id); err != nil {
		l.notice = err.Error()
		return
	}
	l.notice = ""
}

func (l *Lab) nextPreset() {
	names := config.ListPresets(l.name)
	if len(names) == 0 {
		return
	}
	name := names[l.preset%len(names)]
	l.preset++
	if err := l.controls.ApplyPreset(config.GetPreset(l.name, name)); err != nil {
		l.notice = err.Error()
		return
	}
	l.notice = "preset: " + name
}

func (l *Lab) nextChallenge() {
	specs := l.cfg.ChallengesFor(l.name)
	if len(specs) == 0 {
		l.notice = "no challenges for " + l.name
		return
	}
	l.quest = (l.quest + 1) % len(specs)
	spec := specs[l.quest]
	if err := l.judge.Start(spec); err != nil {
		l.notice = err.Error()
		return
	}
	l.notice = "challenge: " + spec.Label
}

func (l *Lab) Redraws() int { return l.redraws }

// Run starts the interactive program and disposes the lab on exit.
func Run(l *Lab) error {
	defer l.Close()
	_, err := tea.NewProgram(l, tea.WithAltScreen()).Run()
	return err
}
