package audio

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/san-kum/labsim/internal/boundary"
)

const (
	SampleRate = beep.SampleRate(44100)
	BufferSize = 1024
)

// Tones renders short cues into a mixer. With the speaker open the mixer is
// drained by the device; otherwise Render pulls samples directly.
type Tones struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	rng    *rand.Rand
	volume float64
	open   bool
	played map[boundary.Tone]int
	logger *slog.Logger
}

type Option func(*Tones)

func WithVolume(v float64) Option {
	return func(t *Tones) { t.volume = math.Max(0, v) }
}

func WithRand(r *rand.Rand) Option {
	return func(t *Tones) { t.rng = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tones) {
		if l == nil {
			l = slog.Default()
		}
		t.logger = l
	}
}

func New(opts ...Option) *Tones {
	t := &Tones{
		rate:   SampleRate,
		mixer:  &beep.Mixer{},
		rng:    rand.New(rand.NewSource(1)),
		volume: 1,
		played: make(map[boundary.Tone]int),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Init hands the mixer to the system speaker.
func (t *Tones) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open {
		return nil
	}
	if err := speaker.Init(t.rate, t.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(t.mixer)
	t.open = true
	t.logger.Debug("audio open", "rate", int(t.rate))
	return nil
}

func (t *Tones) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return
	}
	speaker.Lock()
	t.mixer.Clear()
	speaker.Unlock()
	speaker.Clear()
	t.open = false
}

func (t *Tones) Play(tone boundary.Tone) {
	s := t.Cue(tone)
	if s == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.played[tone]++
	if t.open {
		speaker.Lock()
		t.mixer.Add(s)
		speaker.Unlock()
		return
	}
	t.mixer.Add(s)
}

// Cue builds the streamer for a tone without queueing it.
func (t *Tones) Cue(tone boundary.Tone) beep.Streamer {
	var s beep.Streamer
	switch tone {
	case boundary.ToneLaunch:
		s = t.launch()
	case boundary.ToneImpact:
		s = t.impact()
	case boundary.ToneSpark:
		s = t.spark()
	case boundary.ToneToggle:
		s = newChirp(t.rate, 660, 660, 60*time.Millisecond, 0.12, 0.03)
	case boundary.ToneTick:
		s = newChirp(t.rate, 1320, 1320, 25*time.Millisecond, 0.08, 0.008)
	default:
		return nil
	}
	return scale(s, t.volume)
}

// Render mixes d worth of queued audio. Only meaningful while closed.
func (t *Tones) Render(d time.Duration) [][2]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][2]float64, t.rate.N(d))
	if t.open || t.mixer.Len() == 0 {
		return out
	}
	n, _ := t.mixer.Stream(out)
	for i := n; i < len(out); i++ {
		out[i] = [2]float64{}
	}
	return out
}

func (t *Tones) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mixer.Len()
}

func (t *Tones) Played(tone boundary.Tone) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.played[tone]
}

func (t *Tones) Rate() beep.SampleRate { return t.rate }

// compressed-air hiss: decaying noise through a low-pass
func (t *Tones) launch() beep.Streamer {
	return &noiseBurst{
		rng:    rand.New(rand.NewSource(t.rng.Int63())),
		total:  t.rate.N(300 * time.Millisecond),
		tau:    0.06 * float64(t.rate),
		gain:   0.15,
		cutoff: 800,
		dt:     1 / float64(t.rate),
	}
}

// low thud plus a short bounce of noise
func (t *Tones) impact() beep.Streamer {
	thud := newChirp(t.rate, 100, 40, 250*time.Millisecond, 0.2, 0.2)
	bounce := &noiseBurst{
		rng:   rand.New(rand.NewSource(t.rng.Int63())),
		total: t.rate.N(100 * time.Millisecond),
		tau:   0.02 * float64(t.rate),
		gain:  0.08,
	}
	return beep.Mix(thud, bounce)
}

func (t *Tones) spark() beep.Streamer {
	return &noiseBurst{
		rng:   rand.New(rand.NewSource(t.rng.Int63())),
		total: t.rate.N(40 * time.Millisecond),
		tau:   0.008 * float64(t.rate),
		gain:  0.1,
	}
}

type noiseBurst struct {
	rng    *rand.Rand
	pos    int
	total  int
	tau    float64
	gain   float64
	cutoff float64
	dt     float64
	state  float64
}

func (n *noiseBurst) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if n.pos >= n.total {
			return i, i > 0
		}
		v := (n.rng.Float64()*2 - 1) * math.Exp(-float64(n.pos)/n.tau) * n.gain
		if n.cutoff > 0 {
			v, n.state = lpf(v, n.cutoff, n.dt, n.state)
		}
		samples[i] = [2]float64{v, v}
		n.pos++
	}
	return len(samples), true
}

func (n *noiseBurst) Err() error { return nil }

// chirp is a sine whose frequency ramps exponentially from f0 to f1. The
// envelope falls a thousandfold every decay seconds.
type chirp struct {
	rate   float64
	f0, f1 float64
	pos    int
	total  int
	sweep  int
	gain   float64
	decay  float64
	phase  float64
}

func newChirp(rate beep.SampleRate, f0, f1 float64, length time.Duration, gain, decaySec float64) *chirp {
	return &chirp{
		rate:  float64(rate),
		f0:    f0,
		f1:    f1,
		total: rate.N(length),
		sweep: max(1, rate.N(length*3/5)),
		gain:  gain,
		decay: decaySec,
	}
}

func (c *chirp) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if c.pos >= c.total {
			return i, i > 0
		}
		k := math.Min(1, float64(c.pos)/float64(c.sweep))
		f := c.f0 * math.Pow(c.f1/c.f0, k)
		t := float64(c.pos) / c.rate
		env := c.gain * math.Pow(0.001, t/c.decay)
		v := math.Sin(2*math.Pi*c.phase) * env
		samples[i] = [2]float64{v, v}
		c.phase += f / c.rate
		c.phase -= math.Floor(c.phase)
		c.pos++
	}
	return len(samples), true
}

func (c *chirp) Err() error { return nil }

type scaled struct {
	s beep.Streamer
	g float64
}

func scale(s beep.Streamer, g float64) beep.Streamer {
	if g == 1 {
		return s
	}
	return &scaled{s: s, g: g}
}

func (g *scaled) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.s.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= g.g
		samples[i][1] *= g.g
	}
	return n, ok
}

func (g *scaled) Err() error { return g.s.Err() }

// one-pole low-pass
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	state += alpha * (sample - state)
	return state, state
}
