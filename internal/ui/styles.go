package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	CountdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	CountdownPausedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorYellow)

	CountdownFinalStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorMagenta)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	FactStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorCyan)

	ZoneActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	ZoneIdleStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	PointsStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	CancelledStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	DemoBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	ProgressFilledStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	OverlayStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)
)

// PhaseBadge returns the style for the status badge of a phase name.
func PhaseBadge(phase string) lipgloss.Style {
	switch phase {
	case "counting", "resumed":
		return lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	case "paused":
		return lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	case "cancelled":
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	case "finished":
		return lipgloss.NewStyle().Foreground(ColorMagenta).Bold(true)
	default:
		return StatusStyle
	}
}
