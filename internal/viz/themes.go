package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/corrlab/internal/colormap"
	"github.com/san-kum/corrlab/internal/matrix"
)

// Theme defines the color scheme shared by the terminal dashboard and the
// rendered charts.
type Theme struct {
	Name          string
	Background    lipgloss.Color
	Surface       lipgloss.Color
	Grid          lipgloss.Color
	Text          lipgloss.Color
	TextSecondary lipgloss.Color
	Muted         lipgloss.Color
	AccentA       lipgloss.Color // first asset of the compared pair
	AccentB       lipgloss.Color // second asset
	Positive      lipgloss.Color
	Negative      lipgloss.Color
}

var (
	ThemeDark = Theme{
		Name:          "dark",
		Background:    lipgloss.Color("#0d1117"),
		Surface:       lipgloss.Color("#161b22"),
		Grid:          lipgloss.Color("#1b2026"),
		Text:          lipgloss.Color("#e6edf3"),
		TextSecondary: lipgloss.Color("#c9d1d9"),
		Muted:         lipgloss.Color("#7b7f83"),
		AccentA:       lipgloss.Color("#4aa3ff"),
		AccentB:       lipgloss.Color("#2ecc71"),
		Positive:      lipgloss.Color("#2ecc71"),
		Negative:      lipgloss.Color("#e74c3c"),
	}

	ThemeLight = Theme{
		Name:          "light",
		Background:    lipgloss.Color("#f8fafc"),
		Surface:       lipgloss.Color("#ffffff"),
		Grid:          lipgloss.Color("#e4e6e9"),
		Text:          lipgloss.Color("#1e293b"),
		TextSecondary: lipgloss.Color("#475569"),
		Muted:         lipgloss.Color("#5c6777"),
		AccentA:       lipgloss.Color("#2563eb"),
		AccentB:       lipgloss.Color("#16a34a"),
		Positive:      lipgloss.Color("#16a34a"),
		Negative:      lipgloss.Color("#dc2626"),
	}

	Themes = []Theme{ThemeDark, ThemeLight}
)

// GetTheme returns a theme by name, defaulting to dark.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDark
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t.Name == ThemeDark.Name {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) IsDark() bool {
	return t.Name == ThemeDark.Name
}

// RGB resolves a theme color for compositing. Unparseable colors fall back
// to black.
func RGB(c lipgloss.Color) colormap.RGB {
	rgb, _ := colormap.ParseHex(string(c))
	return rgb
}

// MatrixStyle adapts the theme for matrix.Grid.Terminal.
func (t Theme) MatrixStyle() matrix.TermStyle {
	return matrix.TermStyle{
		Background: RGB(t.Background),
		Header:     lipgloss.NewStyle().Bold(true).Foreground(t.TextSecondary),
		Diagonal:   lipgloss.NewStyle().Foreground(t.Muted),
		CellWidth:  matrix.DefaultCellWidth,
	}
}
