package render

import "github.com/charmbracelet/lipgloss"

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass   string
	Fail   string
	Warn   string
	Info   string
	WIP    string // Missing tests
	Bullet string
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:   "✓",
			Fail:   "✗",
			Warn:   "⚠",
			Info:   "●",
			WIP:    "○",
			Bullet: "·",
		},
	}
}

// CDashTheme uses the colors of the CDash web dashboard.
func CDashTheme() Theme {
	return Theme{
		Name:    "cdash",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("#3465a4")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#00aa00")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8c00")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#dd0000")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:   "✓",
			Fail:   "✗",
			Warn:   "!",
			Info:   "·",
			WIP:    "○",
			Bullet: "·",
		},
	}
}

// ColorStyle maps a report color name (red, orange, green, gray) to the
// theme's style. Any other name gets an unstyled style.
func (th Theme) ColorStyle(color string) lipgloss.Style {
	switch color {
	case "red":
		return th.Error
	case "orange":
		return th.Warning
	case "green":
		return th.Success
	case "gray":
		return th.Muted
	}
	return lipgloss.NewStyle()
}

// MonoTheme returns a monochrome theme (no colors).
func MonoTheme() Theme {
	return Theme{
		Name:    "mono",
		Primary: lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:   "+",
			Fail:   "x",
			Warn:   "!",
			Info:   "*",
			WIP:    "-",
			Bullet: "-",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "cdash":
		return CDashTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}
