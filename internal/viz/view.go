package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/labsim/internal/dynamo"
)

const helpText = `
  tab        next experiment
  ↑/↓        select parameter
  ←/→        adjust parameter
  space      launch / start-pause / toggle
  r          reset
  c          keep shot for comparison
  p          next preset
  g          next challenge
  t          cycle theme
  ?          help
  q          quit
`

// View renders the scene beside the data panel.
func (l *Lab) View() string {
	if l.quitting || l.exp == nil {
		return ""
	}
	st := l.Theme().styles()

	if fit := Fit(l.arena); !fit.Empty() {
		l.view = growTo(l.view, fit)
	}
	Render(l.arena, l.canvas, l.view.Pad(0.08), l.Theme())

	title := GradientText(strings.ToUpper(l.name), l.Theme().Primary, l.Theme().Secondary)
	left := lipgloss.JoinVertical(lipgloss.Left,
		st.header.Render(title)+"  "+st.muted.Render(string(l.exp.Phase())),
		st.status.Render(l.statusLine()),
		st.canvas.Render(l.canvas.Styled()),
	)

	main := lipgloss.JoinHorizontal(lipgloss.Top, left, st.panel.Render(l.panel(st)))
	if l.showHelp {
		return main + "\n" + st.muted.Render(helpText)
	}
	return main
}

// growTo widens v to cover fit. The view never shrinks within one
// experiment so the picture does not jump as objects move.
func growTo(v, fit Viewport) Viewport {
	if v.Empty() {
		return fit
	}
	v.MinX = min(v.MinX, fit.MinX)
	v.MinY = min(v.MinY, fit.MinY)
	v.MaxX = max(v.MaxX, fit.MaxX)
	v.MaxY = max(v.MaxY, fit.MaxY)
	return v
}

func (l *Lab) statusLine() string {
	s := ""
	if st, ok := l.exp.(interface{ Status() string }); ok {
		s = st.Status()
	}
	if l.sched.Running() && l.exp.Phase() != dynamo.PhaseIdle {
		s = AnimatedSpinner(l.frames) + " " + s
	}
	return s
}

func (l *Lab) panel(st styles) string {
	var b strings.Builder

	b.WriteString(st.key.Render("MEASUREMENTS") + "\n")
	for _, row := range l.sink.Rows() {
		b.WriteString(st.label.Render(row.ID) + st.value.Render(row.String()) + "\n")
	}

	b.WriteString("\n" + st.key.Render("PARAMETERS") + "\n")
	for i, s := range l.controls.Sliders() {
		val := fmt.Sprintf("%g %s", s.Value, s.Unit)
		if s.Toggle {
			val = "off"
			if s.Value >= 0.5 {
				val = "on"
			}
		}
		line := fmt.Sprintf("%-14s %s %s", s.Label, SliderBar(s.Value, s.Min, s.Max, 10), val)
		if i == l.param {
			b.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + st.muted.Render(line) + "\n")
		}
	}

	if len(l.history) > 1 {
		chart := asciigraph.Plot(l.history,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.Caption(chartCaption(l.exp)),
		)
		b.WriteString("\n" + st.graph.Render(chart) + "\n")
	}

	b.WriteString("\n" + l.challengeLine(st) + "\n")
	if l.notice != "" {
		b.WriteString(st.warn.Render(l.notice) + "\n")
	}
	b.WriteString("\n" + st.muted.Render(Separator(40)) + "\n")
	b.WriteString(st.muted.Render("tab:next  space:act  r:reset  ?:help  q:quit"))
	return b.String()
}

func (l *Lab) challengeLine(st styles) string {
	if spec, ok := l.judge.Current(); ok {
		return st.active.Render(fmt.Sprintf("◎ %s  %.0fs left", spec.Label, l.judge.Remaining()))
	}
	results := l.judge.Results()
	if len(results) == 0 {
		return st.muted.Render("g: start a challenge")
	}
	r := results[len(results)-1]
	if r.Success {
		return st.good.Render(fmt.Sprintf("✔ %s  score %d", r.ID, r.Score))
	}
	return st.bad.Render(fmt.Sprintf("✘ %s  %s", r.ID, r.Reason))
}
