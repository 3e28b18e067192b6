package export

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG. Lit sub-pixels become
// dots in their cell's ink, or in color when the cell has none. Printed
// text cells become text elements.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s" font-family="monospace" font-size="%.1f">
`, width, height, width, height, color, scale*3)

	// braille dot bits by sub-row and sub-column
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			if r < 0x2800 || r > 0x28ff {
				var esc strings.Builder
				xml.EscapeText(&esc, []byte(string(r)))
				fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\">%s</text>\n", baseX, baseY+scale*3, esc.String())
				continue
			}
			pattern := int(r - 0x2800)
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						if ink := canvas.Ink[row][col]; ink != "" {
							fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, ink)
						} else {
							fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
						}
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrailToSVG draws the X/Y projection of a trail as a single path with a
// dot on the latest sample. Fewer than two points yield an empty string.
func TrailToSVG(points []dynamo.Vec3, width, height int, strokeColor string) string {
	if len(points) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	b := bounds(points)
	project := func(p dynamo.Vec3) (float64, float64) {
		x := (p.X - b.minX) / b.spanX * float64(width)
		y := float64(height) - (p.Y-b.minY)/b.spanY*float64(height)
		return x, y
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if b.minY <= 0 && b.minY+b.spanY >= 0 {
		_, gy := project(dynamo.V(0, 0, 0))
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333" stroke-dasharray="4 4"/>
`, gy, width, gy)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, strokeColor)
	for i, p := range points {
		x, y := project(p)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	lx, ly := project(points[len(points)-1])
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
</svg>`, lx, ly, strokeColor)
	return sb.String()
}

type box struct {
	minX, minY   float64
	spanX, spanY float64
}

// bounds pads the extent of points by 10% on each side.
func bounds(points []dynamo.Vec3) box {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return box{
		minX:  minX - rangeX*0.1,
		minY:  minY - rangeY*0.1,
		spanX: rangeX * 1.2,
		spanY: rangeY * 1.2,
	}
}
