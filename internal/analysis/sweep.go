package analysis

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/metrics"
)

// Tunable is a System whose parameters can be swept.
type Tunable interface {
	dynamo.System
	dynamo.Configurable
}

type SweepPoint struct {
	Param   float64
	Period  float64 // zero when no full cycle fit in the window
	Nominal float64 // zero when the system has no closed-form period
	Cycles  int
}

// Sweep steps one parameter across [lo, hi] and measures the oscillation
// period at each value from the simulated motion. The parameter is restored
// afterwards.
func Sweep(
	sys Tunable,
	integ dynamo.Integrator,
	param string,
	lo, hi float64,
	steps int,
	x0 dynamo.State,
	dt, duration float64,
) ([]SweepPoint, error) {
	orig, ok := sys.GetParams()[param]
	if !ok {
		return nil, fmt.Errorf("sweep: %w: %s", dynamo.ErrUnknownParam, param)
	}
	defer sys.SetParam(param, orig)

	if steps < 2 {
		steps = 2
	}
	stride := (hi - lo) / float64(steps-1)
	nominal, hasNominal := sys.(interface{ NominalPeriod() float64 })

	points := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		v := lo + float64(i)*stride
		if err := sys.SetParam(param, v); err != nil {
			return nil, err
		}

		meter := metrics.NewPeriodMeter()
		x := x0.Clone()
		t := 0.0
		for t < duration {
			x = integ.Step(sys, x, t, dt)
			t += dt
			meter.Observe(x, t)
		}

		pt := SweepPoint{Param: v, Period: meter.Value(), Cycles: meter.Oscillations()}
		if hasNominal {
			pt.Nominal = nominal.NominalPeriod()
		}
		points = append(points, pt)
	}
	return points, nil
}

// SweepChart plots measured and nominal periods against the swept value.
func SweepChart(points []SweepPoint, width, height int, caption string) string {
	if len(points) == 0 {
		return ""
	}
	measured := make([]float64, len(points))
	nominal := make([]float64, len(points))
	for i, p := range points {
		measured[i] = p.Period
		nominal[i] = p.Nominal
	}
	return asciigraph.PlotMany(
		[][]float64{measured, nominal},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.DarkGray),
		asciigraph.Caption(caption),
	)
}
