package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/labsim/internal/scene"
)

// Theme colours the lab. The first block styles the panels; Bench colours
// the scene by node role.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Bench Bench
}

// Bench holds one colour per scene role.
type Bench struct {
	Ground    lipgloss.Color
	Structure lipgloss.Color
	Preview   lipgloss.Color
	Body      lipgloss.Color
	Trail     lipgloss.Color
	Marker    lipgloss.Color
	Ghost     lipgloss.Color
	Danger    lipgloss.Color
	Charge    lipgloss.Color
	Spark     lipgloss.Color
	Debris    lipgloss.Color
	Smoke     lipgloss.Color
}

// Ink is the colour a node with role r is drawn in. Labels and untagged
// nodes take the text and primary colours.
func (t Theme) Ink(r scene.Role) lipgloss.Color {
	b := t.Bench
	switch r {
	case scene.RoleGround:
		return b.Ground
	case scene.RoleStructure:
		return b.Structure
	case scene.RolePreview:
		return b.Preview
	case scene.RoleBody:
		return b.Body
	case scene.RoleTrail:
		return b.Trail
	case scene.RoleMarker:
		return b.Marker
	case scene.RoleGhost:
		return b.Ghost
	case scene.RoleDanger:
		return b.Danger
	case scene.RoleCharge:
		return b.Charge
	case scene.RoleSpark:
		return b.Spark
	case scene.RoleDebris:
		return b.Debris
	case scene.RoleSmoke:
		return b.Smoke
	case scene.RoleLabel:
		return t.Text
	}
	return t.Primary
}

var (
	// ThemeLab is the dark bench the lab opens with.
	ThemeLab = Theme{
		Name:      "default",
		Primary:   "#00d4ff",
		Secondary: "#7c3aed",
		Accent:    "#fbbf24",
		Text:      "#e2e8f0",
		Muted:     "#64748b",
		Success:   "#22c55e",
		Warning:   "#f59e0b",
		Error:     "#ef4444",
		Bench: Bench{
			Ground:    "#475569",
			Structure: "#cbd5e1",
			Preview:   "#64748b",
			Body:      "#ef4444",
			Trail:     "#f59e0b",
			Marker:    "#22c55e",
			Ghost:     "#94a3b8",
			Danger:    "#ef4444",
			Charge:    "#38bdf8",
			Spark:     "#fde047",
			Debris:    "#f97316",
			Smoke:     "#888888",
		},
	}

	// ThemeChalkboard draws the bench in chalk tones.
	ThemeChalkboard = Theme{
		Name:      "chalkboard",
		Primary:   "#f8fafc",
		Secondary: "#a7f3d0",
		Accent:    "#fde68a",
		Text:      "#f1f5f9",
		Muted:     "#6b8f71",
		Success:   "#86efac",
		Warning:   "#fcd34d",
		Error:     "#fca5a5",
		Bench: Bench{
			Ground:    "#d6d3d1",
			Structure: "#e7e5e4",
			Preview:   "#a8a29e",
			Body:      "#fca5a5",
			Trail:     "#fde68a",
			Marker:    "#86efac",
			Ghost:     "#78716c",
			Danger:    "#f87171",
			Charge:    "#93c5fd",
			Spark:     "#fef08a",
			Debris:    "#fdba74",
			Smoke:     "#a8a29e",
		},
	}

	// ThemeProjector uses saturated primaries that survive a washed-out
	// classroom projector.
	ThemeProjector = Theme{
		Name:      "projector",
		Primary:   "#0000ff",
		Secondary: "#ff00ff",
		Accent:    "#ffff00",
		Text:      "#ffffff",
		Muted:     "#aaaaaa",
		Success:   "#00ff00",
		Warning:   "#ffaa00",
		Error:     "#ff0000",
		Bench: Bench{
			Ground:    "#ffffff",
			Structure: "#ffffff",
			Preview:   "#aaaaaa",
			Body:      "#ff0000",
			Trail:     "#ffff00",
			Marker:    "#00ff00",
			Ghost:     "#aaaaaa",
			Danger:    "#ff0000",
			Charge:    "#00ffff",
			Spark:     "#ffff00",
			Debris:    "#ffaa00",
			Smoke:     "#aaaaaa",
		},
	}

	// Themes is the order 't' cycles through.
	Themes = []Theme{ThemeLab, ThemeChalkboard, ThemeProjector}
)

// GetTheme returns a theme by name, falling back to the lab theme.
func GetTheme(name string) Theme {
	return Themes[themeIndex(name)]
}

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
