package export

import (
	"strings"
	"testing"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/viz"
)

func TestTrailToSVG(t *testing.T) {
	pts := []dynamo.Vec3{dynamo.V(0, 0, 0), dynamo.V(5, 4, 0), dynamo.V(10, 0, 0)}
	svg := TrailToSVG(pts, 200, 100, "#00d4ff")

	for _, want := range []string{`width="200"`, `stroke="#00d4ff"`, "M", " L", "<circle", "</svg>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments:\n%s", svg)
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("ground line expected when the trail touches y=0")
	}
}

func TestTrailToSVGDegenerate(t *testing.T) {
	if TrailToSVG([]dynamo.Vec3{dynamo.V(1, 1, 0)}, 10, 10, "red") != "" {
		t.Error("single point should produce nothing")
	}
	if TrailToSVG(nil, 10, 10, "red") != "" {
		t.Error("empty trail should produce nothing")
	}
	flat := TrailToSVG([]dynamo.Vec3{dynamo.V(1, 5, 0), dynamo.V(1, 5, 0)}, 10, 10, "red")
	if strings.Contains(flat, "NaN") || strings.Contains(flat, "Inf") {
		t.Errorf("flat trail produced invalid coordinates:\n%s", flat)
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Print(1, 0, "x")

	svg := CanvasToSVG(c, 4, "#00ff00")
	if got := strings.Count(svg, "<circle"); got != 1 {
		t.Errorf("expected 1 dot (text cell skipped), got %d", got)
	}
	if !strings.Contains(svg, ">x</text>") {
		t.Error("printed text should be exported")
	}
	if CanvasToSVG(nil, 1, "red") != "" {
		t.Error("nil canvas should render empty")
	}
}

func TestCanvasToSVGKeepsInk(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.SetPen("#ef4444")
	c.Set(0, 0)
	c.SetPen("")
	c.Set(2, 0)

	svg := CanvasToSVG(c, 4, "#00ff00")
	if !strings.Contains(svg, `fill="#ef4444"/>`) {
		t.Errorf("inked dot lost its colour:\n%s", svg)
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
}
