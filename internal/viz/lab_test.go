package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/config"
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/logging"
	"github.com/san-kum/labsim/internal/scheduler"
)

func newTestLab(t *testing.T) (*Lab, *scheduler.ManualClock, *boundary.ToneLog) {
	t.Helper()
	clock := scheduler.NewManualClock()
	tones := &boundary.ToneLog{}
	l, err := NewLab(config.DefaultConfig(), nil,
		WithClock(clock), WithTones(tones), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("NewLab: %v", err)
	}
	t.Cleanup(l.Close)
	return l, clock, tones
}

func press(l *Lab, k tea.KeyMsg) tea.Cmd {
	_, cmd := l.Update(k)
	return cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func frames(l *Lab, clock *scheduler.ManualClock, n int) {
	for i := 0; i < n; i++ {
		clock.Advance(16 * time.Millisecond)
		l.Update(frameMsg(clock.Now()))
	}
}

func TestLabStartsConfiguredExperiment(t *testing.T) {
	l, _, _ := newTestLab(t)
	if l.Name() != "projectile" {
		t.Errorf("Name() = %q", l.Name())
	}
	if !l.Scheduler().Running() || l.Scheduler().Len() != 1 {
		t.Errorf("scheduler running=%v callbacks=%d", l.Scheduler().Running(), l.Scheduler().Len())
	}
	if len(l.Sink().Rows()) == 0 {
		t.Error("expected initial measurements")
	}
	if l.Theme().Name != "default" {
		t.Errorf("theme %q", l.Theme().Name)
	}
}

func TestLabLaunchLands(t *testing.T) {
	l, clock, tones := newTestLab(t)
	press(l, tea.KeyMsg{Type: tea.KeySpace})
	if l.Experiment().Phase() != dynamo.PhaseFlying {
		t.Fatalf("phase after space = %s", l.Experiment().Phase())
	}
	for i := 0; i < 400 && l.Experiment().Phase() == dynamo.PhaseFlying; i++ {
		frames(l, clock, 1)
	}
	if l.Experiment().Phase() != dynamo.PhaseLanded {
		t.Fatalf("never landed, phase %s", l.Experiment().Phase())
	}
	if _, ok := l.Sink().Get("measured-range"); !ok {
		t.Error("landing should publish the measured range")
	}
	if tones.Count(boundary.ToneLaunch) != 1 || tones.Count(boundary.ToneImpact) != 1 {
		t.Errorf("tones played: %v", tones.Played)
	}
	if l.Redraws() == 0 || len(l.history) == 0 {
		t.Error("frames should redraw and sample the chart")
	}
}

func TestLabTabSwitchesExperiment(t *testing.T) {
	l, clock, _ := newTestLab(t)
	frames(l, clock, 3)
	before := l.Arena().Live()

	press(l, tea.KeyMsg{Type: tea.KeyTab})
	if l.Name() != "pendulum" {
		t.Fatalf("after tab: %q", l.Name())
	}
	if l.Scheduler().Len() != 1 {
		t.Errorf("only the active experiment may be registered, got %d", l.Scheduler().Len())
	}
	if l.Arena().Disposed() < before {
		t.Errorf("previous scene not released: disposed %d of %d", l.Arena().Disposed(), before)
	}
	if _, ok := l.Sink().Get("measured-range"); ok {
		t.Error("sink should be cleared between experiments")
	}

	press(l, tea.KeyMsg{Type: tea.KeyTab})
	press(l, tea.KeyMsg{Type: tea.KeyTab})
	if l.Name() != "projectile" {
		t.Errorf("tab should wrap around, got %q", l.Name())
	}
}

func TestLabAdjustsSelectedSlider(t *testing.T) {
	l, _, _ := newTestLab(t)
	sliders := l.controls.Sliders()
	press(l, tea.KeyMsg{Type: tea.KeyDown})
	sel := sliders[1]

	press(l, tea.KeyMsg{Type: tea.KeyRight})
	got, _ := l.controls.Value(sel.ID)
	if got != sel.Clamp(sel.Value+sel.Step) {
		t.Errorf("%s = %v after nudge, was %v", sel.ID, got, sel.Value)
	}
	if l.Experiment().Params().Get(sel.ID) != got {
		t.Error("experiment did not see the change")
	}
}

func TestLabPresetAndChallenge(t *testing.T) {
	l, _, _ := newTestLab(t)
	press(l, key("p"))
	if !strings.HasPrefix(l.notice, "preset: ") {
		t.Errorf("notice %q", l.notice)
	}

	press(l, key("g"))
	if !l.Challenges().Active() {
		t.Error("g should start a challenge")
	}
	if !strings.Contains(l.View(), "left") {
		t.Error("active challenge should show its remaining time")
	}
}

func TestLabThemeAndQuit(t *testing.T) {
	l, _, _ := newTestLab(t)
	press(l, key("t"))
	if l.Theme().Name == "default" {
		t.Error("t should cycle the theme")
	}
	if !strings.Contains(l.View(), "MEASUREMENTS") {
		t.Error("panel missing")
	}
	if cmd := press(l, key("q")); cmd == nil {
		t.Error("q should quit")
	}
	if l.View() != "" {
		t.Error("view should be empty once quitting")
	}
}

func TestLabClose(t *testing.T) {
	l, _, _ := newTestLab(t)
	l.Close()
	if l.Experiment() != nil || l.Scheduler().Running() || l.Scheduler().Len() != 0 {
		t.Error("close should dispose the experiment and stop the scheduler")
	}
	if l.Arena().Live() != 0 {
		t.Errorf("%d scene nodes left after close", l.Arena().Live())
	}
}
