package challenge

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/labsim/internal/boundary"
)

type Type string

const (
	Target      Type = "target"
	TargetValue Type = "targetValue"
	MaxHeight   Type = "maxHeight"
	MaxValue    Type = "maxValue"
	SpeedRun    Type = "speedRun"
	Observation Type = "observation"
)

const defaultTimeLimit = 60.0

// Spec is one challenge definition. Kind selects which reported quantity
// the challenge listens to; when empty it is derived from Type.
type Spec struct {
	ID        string              `yaml:"id" json:"id"`
	Type      Type                `yaml:"type" json:"type"`
	Label     string              `yaml:"label" json:"label"`
	Kind      boundary.ResultKind `yaml:"kind,omitempty" json:"kind,omitempty"`
	Target    float64             `yaml:"target,omitempty" json:"target,omitempty"`
	Margin    float64             `yaml:"margin,omitempty" json:"margin,omitempty"`
	Limit     float64             `yaml:"limit,omitempty" json:"limit,omitempty"`
	Count     int                 `yaml:"count,omitempty" json:"count,omitempty"`
	TimeLimit float64             `yaml:"time_limit,omitempty" json:"time_limit,omitempty"`
}

func (s Spec) kind() boundary.ResultKind {
	if s.Kind != "" {
		return s.Kind
	}
	switch s.Type {
	case MaxHeight:
		return boundary.ResultHeight
	case Observation:
		return boundary.ResultPeriod
	default:
		return boundary.ResultRange
	}
}

func (s Spec) timeLimit() float64 {
	if s.TimeLimit > 0 {
		return s.TimeLimit
	}
	return defaultTimeLimit
}

func (s Spec) Validate() error {
	switch s.Type {
	case Target, TargetValue:
		if s.Margin <= 0 {
			return fmt.Errorf("challenge %s: margin must be positive", s.ID)
		}
	case MaxHeight, MaxValue:
		if s.Limit <= 0 {
			return fmt.Errorf("challenge %s: limit must be positive", s.ID)
		}
	case SpeedRun, Observation:
		if s.Count <= 0 {
			return fmt.Errorf("challenge %s: count must be positive", s.ID)
		}
	default:
		return fmt.Errorf("challenge %s: unknown type %q", s.ID, s.Type)
	}
	return nil
}

// Result is a finished attempt.
type Result struct {
	ID      string
	Success bool
	Score   int
	Elapsed float64
	Reason  string
}

// Evaluator runs one challenge at a time and implements
// boundary.Evaluator. With no active challenge every report is ignored.
type Evaluator struct {
	now    func() time.Time
	logger *slog.Logger

	spec    Spec
	active  bool
	started time.Time
	count   int
	results []Result
}

func New(now func() time.Time, logger *slog.Logger) *Evaluator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{now: now, logger: logger}
}

func (e *Evaluator) Start(spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	e.spec = spec
	e.active = true
	e.started = e.now()
	e.count = 0
	e.logger.Debug("challenge: start", "id", spec.ID, "type", spec.Type)
	return nil
}

func (e *Evaluator) Cancel() {
	e.active = false
}

func (e *Evaluator) Active() bool { return e.active }

func (e *Evaluator) Current() (Spec, bool) { return e.spec, e.active }

func (e *Evaluator) Elapsed() float64 {
	return e.now().Sub(e.started).Seconds()
}

func (e *Evaluator) Remaining() float64 {
	if !e.active {
		return 0
	}
	return math.Max(0, e.spec.timeLimit()-e.Elapsed())
}

// Expired fails the active challenge once its time limit has passed.
func (e *Evaluator) Expired() bool {
	if !e.active || e.Remaining() > 0 {
		return false
	}
	e.finish(Result{ID: e.spec.ID, Elapsed: e.Elapsed(), Reason: "time expired"})
	return true
}

func (e *Evaluator) ReportResult(value float64, kind boundary.ResultKind) boundary.Outcome {
	out := boundary.Outcome{Active: e.active, Measured: value}
	if !e.active || e.Expired() {
		out.Active = false
		out.Reason = "no active challenge"
		return out
	}
	if kind != e.spec.kind() {
		return out
	}

	elapsed := e.Elapsed()
	out.Elapsed = elapsed

	accuracy, ok := e.check(value)
	if !ok {
		return out
	}
	score := int(math.Round(accuracy + speedBonus(elapsed, e.spec.timeLimit())))
	e.finish(Result{ID: e.spec.ID, Success: true, Score: score, Elapsed: elapsed})

	out.Active = false
	out.Success = true
	out.Score = score
	return out
}

func (e *Evaluator) check(value float64) (float64, bool) {
	s := e.spec
	switch s.Type {
	case Target, TargetValue:
		diff := math.Abs(value - s.Target)
		if diff <= s.Margin {
			return 100 - diff/s.Margin*20, true
		}
	case MaxHeight, MaxValue:
		if value > 0 && value <= s.Limit {
			return 90, true
		}
	case SpeedRun, Observation:
		e.count++
		if e.count >= s.Count {
			return 100, true
		}
	}
	return 0, false
}

func speedBonus(elapsed, limit float64) float64 {
	return math.Max(0, (limit-elapsed)/limit*30)
}

func (e *Evaluator) finish(r Result) {
	e.active = false
	e.results = append(e.results, r)
	e.logger.Debug("challenge: finish", "id", r.ID, "success", r.Success, "score", r.Score, "elapsed", r.Elapsed)
}

func (e *Evaluator) Results() []Result {
	return append([]Result(nil), e.results...)
}

// Best returns the highest successful score for id.
func (e *Evaluator) Best(id string) (int, bool) {
	best, found := 0, false
	for _, r := range e.results {
		if r.ID == id && r.Success && (!found || r.Score > best) {
			best, found = r.Score, true
		}
	}
	return best, found
}
