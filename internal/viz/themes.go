package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme for tables, plots and the REPL.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Error   lipgloss.Color
	// Integrators maps an integrator name to its column color.
	Integrators map[string]lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:    "default",
		Primary: lipgloss.Color("#00cccc"),
		Accent:  lipgloss.Color("#ff88ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Border:  lipgloss.Color("#444466"),
		Error:   lipgloss.Color("#ff4444"),
		Integrators: map[string]lipgloss.Color{
			"t":     lipgloss.Color("#00ff88"),
			"euler": lipgloss.Color("#ff5f5f"),
			"rk4":   lipgloss.Color("#5f87ff"),
			"dopri": lipgloss.Color("#ffcc00"),
			"exact": lipgloss.Color("#aaaaaa"),
		},
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Border:  lipgloss.Color("#555555"),
		Error:   lipgloss.Color("#ff0000"),
		Integrators: map[string]lipgloss.Color{
			"t": lipgloss.Color("#ffffff"),
		},
	}
)

var themes = []Theme{ThemeDefault, ThemeMinimal}

func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

func ListThemes() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// Column returns the color for a table column, falling back to Text.
func (t Theme) Column(name string) lipgloss.Color {
	if c, ok := t.Integrators[name]; ok {
		return c
	}
	return t.Text
}
