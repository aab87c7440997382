package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/tarrestore/internal/config"
)

// Catppuccin Mocha palette, overridable from the [theme] config section.
var (
	ColorGreen  = lipgloss.Color("#a6e3a1")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorBlue   = lipgloss.Color("#89b4fa")
	ColorTeal   = lipgloss.Color("#94e2d5")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorDim    = lipgloss.Color("#3a4055")
	ColorBright = lipgloss.Color("#cdd6f4")
)

var (
	stylePart           lipgloss.Style
	styleIconDone       lipgloss.Style
	styleIconFailed     lipgloss.Style
	styleIconSkipped    lipgloss.Style
	styleFileDir        lipgloss.Style
	styleFileSize       lipgloss.Style
	styleSpeed          lipgloss.Style
	styleError          lipgloss.Style
	styleSparkline      lipgloss.Style
	styleProgressFilled lipgloss.Style
	styleProgressEmpty  lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	stylePart = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	styleIconDone = lipgloss.NewStyle().Foreground(ColorGreen)
	styleIconFailed = lipgloss.NewStyle().Foreground(ColorRed)
	styleIconSkipped = lipgloss.NewStyle().Foreground(ColorMuted)
	styleFileDir = lipgloss.NewStyle().Foreground(ColorMuted)
	styleFileSize = lipgloss.NewStyle().Foreground(ColorMuted)
	styleSpeed = lipgloss.NewStyle().Foreground(ColorTeal)
	styleError = lipgloss.NewStyle().Foreground(ColorRed)
	styleSparkline = lipgloss.NewStyle().Foreground(ColorBlue)
	styleProgressFilled = lipgloss.NewStyle().Foreground(ColorGreen)
	styleProgressEmpty = lipgloss.NewStyle().Foreground(ColorDim)
}

// ApplyTheme overrides colors from the config file and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	set := func(dst *lipgloss.Color, v *string) {
		if v != nil {
			*dst = lipgloss.Color(*v)
		}
	}
	set(&ColorGreen, tc.Green)
	set(&ColorRed, tc.Red)
	set(&ColorBlue, tc.Blue)
	set(&ColorTeal, tc.Teal)
	set(&ColorMuted, tc.Muted)
	set(&ColorDim, tc.Dim)
	set(&ColorBright, tc.Bright)
	rebuildStyles()
}
