package audio

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/san-kum/labsim/internal/boundary"
)

func peak(samples [][2]float64) float64 {
	p := 0.0
	for _, s := range samples {
		p = math.Max(p, math.Abs(s[0]))
	}
	return p
}

func TestCueKnownTones(t *testing.T) {
	tones := New()
	for _, tone := range []boundary.Tone{
		boundary.ToneLaunch, boundary.ToneImpact, boundary.ToneSpark,
		boundary.ToneToggle, boundary.ToneTick,
	} {
		if tones.Cue(tone) == nil {
			t.Errorf("Cue(%q) returned nil", tone)
		}
	}
	if tones.Cue("bogus") != nil {
		t.Error("unknown tone should have no cue")
	}
}

func TestPlayQueuesAndDrains(t *testing.T) {
	tones := New()
	tones.Play(boundary.ToneLaunch)
	tones.Play(boundary.ToneImpact)

	if got := tones.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}
	if got := tones.Played(boundary.ToneLaunch); got != 1 {
		t.Errorf("Played(launch) = %d, want 1", got)
	}

	first := tones.Render(50 * time.Millisecond)
	if len(first) != SampleRate.N(50*time.Millisecond) {
		t.Fatalf("rendered %d samples", len(first))
	}
	if peak(first) == 0 {
		t.Error("expected audible output while cues are queued")
	}

	tones.Render(time.Second)
	if got := tones.Pending(); got != 0 {
		t.Errorf("Pending() after drain = %d, want 0", got)
	}
	if p := peak(tones.Render(10 * time.Millisecond)); p != 0 {
		t.Errorf("silence expected after drain, peak %f", p)
	}
}

func TestUnknownToneIsIgnored(t *testing.T) {
	tones := New()
	tones.Play("bogus")
	if tones.Pending() != 0 {
		t.Error("unknown tone should not queue")
	}
}

func TestLaunchDecays(t *testing.T) {
	tones := New(WithRand(rand.New(rand.NewSource(3))))
	s := tones.Cue(boundary.ToneLaunch)

	head := make([][2]float64, SampleRate.N(30*time.Millisecond))
	s.Stream(head)
	skip := make([][2]float64, SampleRate.N(200*time.Millisecond))
	s.Stream(skip)
	tail := make([][2]float64, SampleRate.N(30*time.Millisecond))
	s.Stream(tail)

	if peak(tail) >= peak(head) {
		t.Errorf("tail peak %f should be below head peak %f", peak(tail), peak(head))
	}
}

func TestSamplesStayInRange(t *testing.T) {
	tones := New()
	for _, tone := range []boundary.Tone{boundary.ToneImpact, boundary.ToneToggle, boundary.ToneTick, boundary.ToneSpark} {
		s := tones.Cue(tone)
		buf := make([][2]float64, 512)
		for {
			n, ok := s.Stream(buf)
			for i := 0; i < n; i++ {
				if math.Abs(buf[i][0]) > 1 || buf[i][0] != buf[i][1] {
					t.Fatalf("%s sample %d out of range: %v", tone, i, buf[i])
				}
			}
			if !ok {
				break
			}
		}
	}
}

func TestVolumeScales(t *testing.T) {
	loud := New(WithRand(rand.New(rand.NewSource(9))))
	quiet := New(WithRand(rand.New(rand.NewSource(9))), WithVolume(0.5))

	a := make([][2]float64, 256)
	b := make([][2]float64, 256)
	loud.Cue(boundary.ToneTick).Stream(a)
	quiet.Cue(boundary.ToneTick).Stream(b)

	for i := range a {
		if math.Abs(a[i][0]*0.5-b[i][0]) > 1e-12 {
			t.Fatalf("sample %d: %f vs %f", i, a[i][0], b[i][0])
		}
	}
}

func TestToneRendererContract(t *testing.T) {
	var _ boundary.ToneRenderer = New()
}
