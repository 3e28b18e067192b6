package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/scene"
)

// Nodes dimmer than this are not drawn.
const minOpacity = 0.3

// Viewport is the world rectangle mapped onto a canvas. X/Y only; depth is
// dropped.
type Viewport struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (v Viewport) Empty() bool { return v.MaxX <= v.MinX || v.MaxY <= v.MinY }

// Include grows v to cover p.
func (v Viewport) Include(p dynamo.Vec3) Viewport {
	v.MinX = math.Min(v.MinX, p.X)
	v.MinY = math.Min(v.MinY, p.Y)
	v.MaxX = math.Max(v.MaxX, p.X)
	v.MaxY = math.Max(v.MaxY, p.Y)
	return v
}

// Pad widens v by frac of its span on every side.
func (v Viewport) Pad(frac float64) Viewport {
	dx := (v.MaxX - v.MinX) * frac
	dy := (v.MaxY - v.MinY) * frac
	return Viewport{MinX: v.MinX - dx, MinY: v.MinY - dy, MaxX: v.MaxX + dx, MaxY: v.MaxY + dy}
}

// Fit returns the bounds of every visible, opaque node in a. A degenerate
// extent is widened to one world unit.
func Fit(a *scene.Arena) Viewport {
	var v Viewport
	seen := false
	include := func(p dynamo.Vec3) {
		if !seen {
			v, seen = Viewport{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}, true
			return
		}
		v = v.Include(p)
	}
	a.Walk(func(_ scene.Handle, n scene.Node) {
		if n.Opacity < minOpacity {
			return
		}
		switch n.Kind {
		case scene.KindGroup:
		case scene.KindLine, scene.KindDashed:
			for _, p := range n.Points {
				include(p)
			}
		default:
			include(n.Pos)
		}
	})
	if seen && v.MaxX == v.MinX {
		v.MinX, v.MaxX = v.MinX-0.5, v.MaxX+0.5
	}
	if seen && v.MaxY == v.MinY {
		v.MinY, v.MaxY = v.MinY-0.5, v.MaxY+0.5
	}
	return v
}

// projector maps world coordinates to canvas sub-pixels with a uniform
// scale, centred, Y up.
type projector struct {
	scale      float64
	ox, oy     float64
	subW, subH int
}

func newProjector(v Viewport, c *Canvas) projector {
	w, h := float64(c.SubWidth()-1), float64(c.SubHeight()-1)
	spanX, spanY := v.MaxX-v.MinX, v.MaxY-v.MinY
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}
	s := math.Min(w/spanX, h/spanY)
	return projector{
		scale: s,
		ox:    (w-spanX*s)/2 - v.MinX*s,
		oy:    h - (h-spanY*s)/2 + v.MinY*s,
		subW:  c.SubWidth(),
		subH:  c.SubHeight(),
	}
}

func (p projector) at(v dynamo.Vec3) (int, int) {
	return int(math.Round(p.ox + v.X*p.scale)), int(math.Round(p.oy - v.Y*p.scale))
}

// Render clears c and draws every visible node of a in the ink t assigns
// to its role. Labels are printed after the geometry so points cannot
// overwrite them.
func Render(a *scene.Arena, c *Canvas, v Viewport, t Theme) {
	c.Clear()
	if v.Empty() {
		return
	}
	pr := newProjector(v, c)

	type text struct {
		col, row int
		s        string
		ink      lipgloss.Color
	}
	var texts []text

	a.Walk(func(_ scene.Handle, n scene.Node) {
		if n.Opacity < minOpacity {
			return
		}
		c.SetPen(t.Ink(n.Role))
		switch n.Kind {
		case scene.KindPoint, scene.KindMarker:
			x, y := pr.at(n.Pos)
			r := 0
			if n.Kind == scene.KindPoint && n.Scale >= 1 {
				r = 1
			}
			c.Dot(x, y, r)
		case scene.KindLine, scene.KindDashed:
			for i := 1; i < len(n.Points); i++ {
				x0, y0 := pr.at(n.Points[i-1])
				x1, y1 := pr.at(n.Points[i])
				if n.Kind == scene.KindDashed {
					c.DrawDashed(x0, y0, x1, y1, 2, 2)
				} else {
					c.DrawLine(x0, y0, x1, y1)
				}
			}
		case scene.KindLabel:
			// the status billboard is shown in the header
			if n.Text == "" || n.Name == "status" {
				return
			}
			x, y := pr.at(n.Pos)
			texts = append(texts, text{col: x / 2, row: y / 4, s: n.Text, ink: t.Ink(n.Role)})
		}
	})

	for _, tx := range texts {
		c.SetPen(tx.ink)
		c.Print(tx.col, tx.row, tx.s)
	}
	c.SetPen("")
}
