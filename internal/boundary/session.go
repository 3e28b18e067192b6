package boundary

import (
	"log/slog"
	"math/rand"

	"github.com/san-kum/labsim/internal/scene"
)

// Session carries every collaborator an experiment talks to. Nothing in
// the core reaches for global state; it all comes through here.
type Session struct {
	Surface   scene.Surface
	Sink      DataSink
	Evaluator Evaluator
	Tones     ToneRenderer
	Controls  *Controls
	Rand      *rand.Rand
	Logger    *slog.Logger
}

// WithDefaults fills unset collaborators with inert ones.
func (s Session) WithDefaults() Session {
	if s.Surface == nil {
		s.Surface = scene.NewArena()
	}
	if s.Sink == nil {
		s.Sink = NewMemorySink()
	}
	if s.Evaluator == nil {
		s.Evaluator = NopEvaluator{}
	}
	if s.Tones == nil {
		s.Tones = NopTones{}
	}
	if s.Controls == nil {
		s.Controls = NewControls()
	}
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(1))
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	return s
}
