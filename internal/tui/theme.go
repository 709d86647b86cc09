package tui

import "github.com/charmbracelet/lipgloss"

const (
	themeDark  = "dark"
	themeLight = "light"
)

type palette struct {
	text    lipgloss.Color
	muted   lipgloss.Color
	accent  lipgloss.Color
	good    lipgloss.Color
	bad     lipgloss.Color
	border  lipgloss.Color
	surface lipgloss.Color
}

var palettes = map[string]palette{
	themeDark: {
		text:    "#F0F0F0",
		muted:   "#8C8C8C",
		accent:  "#C89A3A",
		good:    "#52C41A",
		bad:     "#FF4D4F",
		border:  "#444444",
		surface: "#6E6E6E",
	},
	themeLight: {
		text:    "#1F1F1F",
		muted:   "#6B6B6B",
		accent:  "#9A6B00",
		good:    "#237804",
		bad:     "#CF1322",
		border:  "#BFBFBF",
		surface: "#8C8C8C",
	},
}

type styles struct {
	name string

	title     lipgloss.Style
	subtitle  lipgloss.Style
	text      lipgloss.Style
	pending   lipgloss.Style
	current   lipgloss.Style
	correct   lipgloss.Style
	incorrect lipgloss.Style
	footer    lipgloss.Style
	panel     lipgloss.Style
	active    lipgloss.Style
}

func newStyles(name string) styles {
	p, ok := palettes[name]
	if !ok {
		name = themeDark
		p = palettes[themeDark]
	}
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)
	return styles{
		name:      name,
		title:     lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		subtitle:  lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		text:      lipgloss.NewStyle().Foreground(p.text),
		pending:   lipgloss.NewStyle().Foreground(p.muted),
		current:   lipgloss.NewStyle().Foreground(p.accent),
		correct:   lipgloss.NewStyle().Foreground(p.good),
		incorrect: lipgloss.NewStyle().Foreground(p.bad),
		footer:    lipgloss.NewStyle().Foreground(p.surface),
		panel:     panel,
		active:    panel.BorderForeground(p.accent),
	}
}

func otherTheme(name string) string {
	if name == themeLight {
		return themeDark
	}
	return themeLight
}
