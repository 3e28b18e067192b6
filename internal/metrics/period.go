package metrics

import "github.com/san-kum/labsim/internal/dynamo"

// PeriodMeter measures oscillation period from simulated motion alone.
// Only upward zero crossings of the angle (negative to non-negative with
// positive angular velocity) are counted, so each full cycle contributes
// exactly one crossing. The first crossing arms the meter; every later one
// closes a period.
type PeriodMeter struct {
	prevAngle    float64
	hasPrev      bool
	crossings    int
	lastCrossing float64
	period       float64
	oscillations int
}

func NewPeriodMeter() *PeriodMeter {
	return &PeriodMeter{}
}

func (p *PeriodMeter) Name() string { return "period" }

// Observe takes x = [theta, omega] at time t and reports whether a new
// period measurement completed on this sample.
func (p *PeriodMeter) Observe(x dynamo.State, t float64) bool {
	angle, omega := x[0], x[1]
	measured := false
	if p.hasPrev && p.prevAngle < 0 && angle >= 0 && omega > 0 {
		p.crossings++
		if p.crossings > 1 {
			p.period = t - p.lastCrossing
			p.oscillations++
			measured = true
		}
		p.lastCrossing = t
	}
	p.prevAngle = angle
	p.hasPrev = true
	return measured
}

// Value is the most recent measured period, or 0 before the first one.
func (p *PeriodMeter) Value() float64 { return p.period }

func (p *PeriodMeter) Measured() bool { return p.oscillations > 0 }

func (p *PeriodMeter) Oscillations() int { return p.oscillations }

func (p *PeriodMeter) Reset() {
	*p = PeriodMeter{}
}
