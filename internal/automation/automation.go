package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/challenge"
	"github.com/san-kum/labsim/internal/config"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/experiment"
	"github.com/san-kum/labsim/internal/scene"
	"github.com/san-kum/labsim/internal/scheduler"
	"github.com/san-kum/labsim/internal/trail"
)

var ErrEmptyStep = errors.New("step has nothing to do")

// Scenario is a scripted lab session run without a display.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Experiment  string             `yaml:"experiment"`
	Duration    float64            `yaml:"duration"`
	Frame       float64            `yaml:"frame"`
	Preset      string             `yaml:"preset"`
	Params      map[string]float64 `yaml:"params"`
	Start       bool               `yaml:"start"`
	Challenge   string             `yaml:"challenge"`
	Steps       []Step             `yaml:"steps"`
}

// Step fires once simulated lab time reaches At. Parameters are applied
// before the action.
type Step struct {
	At     float64            `yaml:"at"`
	Set    map[string]float64 `yaml:"set"`
	Preset string             `yaml:"preset"`
	Action string             `yaml:"action"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the script and orders its steps by time.
func (s *Scenario) Validate() error {
	if s.Experiment == "" {
		return errors.New("scenario: experiment is required")
	}
	if s.Duration <= 0 {
		return fmt.Errorf("scenario: duration must be positive, got %g", s.Duration)
	}
	if s.Frame < 0 {
		return fmt.Errorf("scenario: frame must not be negative, got %g", s.Frame)
	}
	for i, st := range s.Steps {
		if st.At < 0 || math.IsNaN(st.At) {
			return fmt.Errorf("scenario: step %d: bad time %g", i+1, st.At)
		}
		if len(st.Set) == 0 && st.Action == "" && st.Preset == "" {
			return fmt.Errorf("scenario: step %d: %w", i+1, ErrEmptyStep)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return nil
}

// Event is one thing that happened during a run, stamped with lab time.
type Event struct {
	At   float64
	What string
}

// Result is the state of the bench when the script finished.
type Result struct {
	Scenario   string
	Experiment string
	Phase      dynamo.Phase
	Elapsed    float64
	Ticks      uint64
	Params     dynamo.Params
	Labels     []boundary.Value
	Measured   map[string]float64
	Challenges []challenge.Result
	Samples    []trail.Sample
	Tones      map[boundary.Tone]int
	Events     []Event
}

// Runner drives scenarios on a manual clock, so a run is deterministic
// for a given seed and frame length.
type Runner struct {
	cfg      *config.Config
	registry *experiment.Registry
	logger   *slog.Logger
}

func NewRunner(cfg *config.Config, reg *experiment.Registry, logger *slog.Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if reg == nil {
		reg = experiment.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, registry: reg, logger: logger}
}

func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	frame := sc.Frame
	if frame == 0 {
		frame = r.cfg.FrameInterval().Seconds()
	}
	tick := time.Duration(frame * float64(time.Second))
	if tick <= 0 {
		return nil, fmt.Errorf("scenario: frame %g too short", frame)
	}

	clock := scheduler.NewManualClock()
	sched := scheduler.New(clock,
		scheduler.WithMaxDelta(r.cfg.MaxDeltaDuration()),
		scheduler.WithLogger(r.logger),
	)
	sink := boundary.NewMemorySink()
	tones := &boundary.ToneLog{}
	judge := challenge.New(clock.Now, r.logger)
	controls := boundary.NewControls()

	sess := boundary.Session{
		Surface:   scene.NewArena(),
		Sink:      sink,
		Evaluator: judge,
		Tones:     tones,
		Controls:  controls,
		Rand:      newRand(r.cfg.Seed),
		Logger:    r.logger,
	}
	exp, err := r.registry.New(sc.Experiment, r.cfg, sess)
	if err != nil {
		return nil, err
	}
	defer exp.Dispose()
	if err := exp.Load(sched); err != nil {
		return nil, err
	}

	res := &Result{Scenario: sc.Name, Experiment: sc.Experiment, Tones: make(map[boundary.Tone]int)}
	logEvent := func(what string) {
		res.Events = append(res.Events, Event{At: sched.Elapsed(), What: what})
		r.logger.Debug("script: "+what, "t", sched.Elapsed())
	}

	if sc.Preset != "" {
		if err := r.applyPreset(controls, sc.Experiment, sc.Preset); err != nil {
			return nil, err
		}
		logEvent("preset " + sc.Preset)
	}
	if len(sc.Params) > 0 {
		if err := controls.ApplyPreset(sc.Params); err != nil {
			return nil, err
		}
	}
	if sc.Challenge != "" {
		spec, ok := r.cfg.Challenge(sc.Experiment, sc.Challenge)
		if !ok {
			return nil, fmt.Errorf("unknown challenge %q for %s", sc.Challenge, sc.Experiment)
		}
		if err := judge.Start(spec); err != nil {
			return nil, err
		}
		logEvent("challenge " + spec.ID)
	}
	if sc.Start {
		if acts := exp.Actions(); len(acts) > 0 {
			if err := exp.Action(acts[0]); err != nil {
				return nil, err
			}
			logEvent("action " + acts[0])
		}
	}

	sched.Start()
	next := 0
	for sched.Elapsed() < sc.Duration {
		for next < len(sc.Steps) && sc.Steps[next].At <= sched.Elapsed()+1e-9 {
			if err := r.apply(exp, controls, sc.Experiment, sc.Steps[next], logEvent); err != nil {
				return nil, fmt.Errorf("step at %gs: %w", sc.Steps[next].At, err)
			}
			next++
		}
		if !sched.Step(clock, tick) {
			break
		}
		if sched.Ticks()%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	sched.Stop()

	res.Phase = exp.Phase()
	res.Elapsed = sched.Elapsed()
	res.Ticks = sched.Ticks()
	res.Params = exp.Params()
	res.Labels = sink.Rows()
	res.Measured = numeric(res.Labels)
	res.Challenges = judge.Results()
	res.Samples = exp.Trail().Samples()
	for _, t := range tones.Played {
		res.Tones[t]++
	}
	return res, nil
}

func (r *Runner) apply(exp experiment.Experiment, controls *boundary.Controls, name string, st Step, logEvent func(string)) error {
	if st.Preset != "" {
		if err := r.applyPreset(controls, name, st.Preset); err != nil {
			return err
		}
		logEvent("preset " + st.Preset)
	}
	keys := make([]string, 0, len(st.Set))
	for k := range st.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := exp.SetParameter(k, st.Set[k]); err != nil {
			return err
		}
		logEvent(fmt.Sprintf("set %s=%g", k, st.Set[k]))
	}
	if st.Action != "" {
		if err := exp.Action(st.Action); err != nil {
			return err
		}
		logEvent("action " + st.Action)
	}
	return nil
}

func (r *Runner) applyPreset(controls *boundary.Controls, name, preset string) error {
	p := config.GetPreset(name, preset)
	if p == nil {
		return fmt.Errorf("unknown preset %q for %s", preset, name)
	}
	return controls.ApplyPreset(p)
}

// numeric keeps the labels whose value parses as a number.
func numeric(rows []boundary.Value) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		if v, err := strconv.ParseFloat(row.Value, 64); err == nil {
			out[row.ID] = v
		}
	}
	return out
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
