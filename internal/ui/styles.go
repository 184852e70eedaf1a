package ui

import "github.com/charmbracelet/lipgloss"

// Palette tuned for dark terminal backgrounds.
const (
	ColorWhite = "#FFFFFF"

	ColorGray500 = "#6C7585"
	ColorGray600 = "#4E5560"
	ColorGray800 = "#212732"

	ColorBlue300 = "#97C1FF"
	ColorBlue400 = "#639CFF"
	ColorBlue500 = "#2E7BFF"
	ColorBlue600 = "#0D5DFF"

	ColorGreen400  = "#63D78E"
	ColorRed400    = "#F87171"
	ColorYellow400 = "#F9C424"
)

var (
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorGreen400))

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorRed400))

	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorYellow400))

	// DimStyle - for secondary text, spinner messages included
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorGray500))

	// CommandStyle - for commands the user can copy
	CommandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorBlue400))

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBlue500))
)
