package viz

import (
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Theme defines the colour scheme of the terminal view. Heights are drawn
// with a diverging map so troughs and crests read as opposite hues.
type Theme struct {
	Name     string
	Primary  lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
	Colormap func() palette.DivergingColorMap
}

var (
	ThemeOcean = Theme{
		Name:     "ocean",
		Primary:  lipgloss.Color("#00a8cc"),
		Accent:   lipgloss.Color("#ffd700"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Success:  lipgloss.Color("#00ff88"),
		Warning:  lipgloss.Color("#ffcc00"),
		Error:    lipgloss.Color("#ff4444"),
		Colormap: moreland.SmoothBlueRed,
	}

	ThemeSand = Theme{
		Name:     "sand",
		Primary:  lipgloss.Color("#d2b48c"),
		Accent:   lipgloss.Color("#3b7dd8"),
		Text:     lipgloss.Color("#fff8ee"),
		Muted:    lipgloss.Color("#8b7b6b"),
		Success:  lipgloss.Color("#5fd068"),
		Warning:  lipgloss.Color("#ffc048"),
		Error:    lipgloss.Color("#ff4757"),
		Colormap: moreland.SmoothBlueTan,
	}

	ThemeAurora = Theme{
		Name:     "aurora",
		Primary:  lipgloss.Color("#88ff88"),
		Accent:   lipgloss.Color("#ff9ff3"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#556655"),
		Success:  lipgloss.Color("#88ff88"),
		Warning:  lipgloss.Color("#ffff00"),
		Error:    lipgloss.Color("#ff0000"),
		Colormap: moreland.SmoothGreenPurple,
	}

	ThemeDusk = Theme{
		Name:     "dusk",
		Primary:  lipgloss.Color("#ff8800"),
		Accent:   lipgloss.Color("#aa66ff"),
		Text:     lipgloss.Color("#fff5f5"),
		Muted:    lipgloss.Color("#8b6b8c"),
		Success:  lipgloss.Color("#5fd068"),
		Warning:  lipgloss.Color("#ffc048"),
		Error:    lipgloss.Color("#ff4757"),
		Colormap: moreland.SmoothPurpleOrange,
	}

	CurrentTheme = ThemeOcean

	Themes = []Theme{
		ThemeOcean,
		ThemeSand,
		ThemeAurora,
		ThemeDusk,
	}
)

// GetTheme returns a theme by name, falling back to ocean.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	CurrentTheme = ThemeOcean
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
