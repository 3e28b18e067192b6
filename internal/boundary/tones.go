package boundary

type Tone string

const (
	ToneLaunch Tone = "launch"
	ToneImpact Tone = "impact"
	ToneSpark  Tone = "spark"
	ToneToggle Tone = "toggle"
	ToneTick   Tone = "tick"
)

// ToneRenderer plays short cues. Play must return immediately.
type ToneRenderer interface {
	Play(t Tone)
}

type NopTones struct{}

func (NopTones) Play(Tone) {}

// ToneLog records cues instead of playing them.
type ToneLog struct {
	Played []Tone
}

func (l *ToneLog) Play(t Tone) { l.Played = append(l.Played, t) }

func (l *ToneLog) Count(t Tone) int {
	n := 0
	for _, p := range l.Played {
		if p == t {
			n++
		}
	}
	return n
}
