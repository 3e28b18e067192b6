package physics

import (
	"math"

	"github.com/san-kum/labsim/internal/dynamo"
)

type segment struct {
	start, end dynamo.Vec3
	length     float64
	cumLength  float64
}

// ChargePath is a closed polyline parameterized by arc length.
type ChargePath struct {
	points   []dynamo.Vec3
	segments []segment
	total    float64
}

// NewChargePath builds a path through pts. The last point is joined back to
// the first unless they already coincide.
func NewChargePath(pts ...dynamo.Vec3) *ChargePath {
	p := &ChargePath{points: append([]dynamo.Vec3(nil), pts...)}
	if len(pts) < 2 {
		return p
	}
	closed := append([]dynamo.Vec3(nil), pts...)
	if pts[0].Dist(pts[len(pts)-1]) > 1e-9 {
		closed = append(closed, pts[0])
	}
	for i := 0; i < len(closed)-1; i++ {
		l := closed[i].Dist(closed[i+1])
		if l == 0 {
			continue
		}
		p.segments = append(p.segments, segment{
			start:     closed[i],
			end:       closed[i+1],
			length:    l,
			cumLength: p.total,
		})
		p.total += l
	}
	return p
}

// DefaultCircuitLoop runs battery+ → resistor → ammeter → battery- around
// the bench layout.
func DefaultCircuitLoop() *ChargePath {
	return NewChargePath(
		dynamo.V(-1.72, 1.3, 0.5),
		dynamo.V(1.3, 1.3, 0.5),
		dynamo.V(3.7, 1.3, 0.5),
		dynamo.V(3.7, 1.3, -2),
		dynamo.V(0.6, 1.3, -2),
		dynamo.V(-0.6, 1.3, -2),
		dynamo.V(-3.5, 1.3, -2),
		dynamo.V(-3.5, 1.3, 0.5),
		dynamo.V(-3.28, 1.3, 0.5),
	)
}

func (p *ChargePath) Length() float64 { return p.total }

func (p *ChargePath) Segments() int { return len(p.segments) }

// At resolves progress (wrapped into [0, 1)) to a point on the path.
func (p *ChargePath) At(progress float64) dynamo.Vec3 {
	if len(p.segments) == 0 {
		if len(p.points) > 0 {
			return p.points[0]
		}
		return dynamo.Vec3{}
	}
	progress -= math.Floor(progress)
	target := progress * p.total
	for _, s := range p.segments {
		if target <= s.cumLength+s.length {
			return s.start.Lerp(s.end, (target-s.cumLength)/s.length)
		}
	}
	return p.segments[0].start
}

// WrapProgress keeps marker progress in [0, 1).
func WrapProgress(progress float64) float64 {
	return progress - math.Floor(progress)
}
