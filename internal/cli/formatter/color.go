package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/civic/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// LevelStyle colors a 1-5 level: 4-5 red, 3 yellow, 1-2 green.
func LevelStyle(level int) lipgloss.Style {
	switch {
	case level >= 4:
		return StyleRed
	case level == 3:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// UrgencyIndicator renders an urgency level such as "● 5 URGENT".
func UrgencyIndicator(level int) string {
	label := "LOW"
	switch {
	case level >= 4:
		label = "URGENT"
	case level == 3:
		label = "SOON"
	}
	return LevelStyle(level).Render(fmt.Sprintf("● %d %s", level, label))
}

// ImpactPips renders impact as filled and empty pips, e.g. "■■■□□".
func ImpactPips(level int) string {
	level = domain.ClampLevel(level)
	return StylePurple.Render(strings.Repeat("■", level)) + StyleDim.Render(strings.Repeat("□", domain.MaxLevel-level))
}

// CTABadge renders the call-to-action label in blue.
func CTABadge(cta domain.CTAType) string {
	return StyleBlue.Render(cta.Label())
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
