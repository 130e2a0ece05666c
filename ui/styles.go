package ui

import "github.com/charmbracelet/lipgloss"

var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	green     = lipgloss.Color("#04B575")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	amber     = lipgloss.AdaptiveColor{Light: "#C77D00", Dark: "#F2B950"}
)

var (
	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(gray)

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true)

	playingStyle = lipgloss.NewStyle().Foreground(green).Render
	pausedStyle  = lipgloss.NewStyle().Foreground(amber).Render
	idleStyle    = lipgloss.NewStyle().Foreground(normalDim).Render
	clipErrStyle = lipgloss.NewStyle().Foreground(red).Render

	selectedClipStyle = lipgloss.NewStyle().Foreground(fuchsia).Bold(true).Render
	dividerStyle      = lipgloss.NewStyle().Foreground(midGray).Render
)

func logoView() string {
	return logoStyle.Render(" Audioset ")
}

// Status bar and help colors.
var (
	mintGreen   = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen   = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	barFg       = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	barBg       = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
	barScrollFg = lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}
	barHelpBg   = lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}
	helpBg      = lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}

	barNoteStyle   = lipgloss.NewStyle().Foreground(barFg).Background(barBg).Render
	barScrollStyle = lipgloss.NewStyle().Foreground(barScrollFg).Background(barBg).Render
	barHelpStyle   = lipgloss.NewStyle().Foreground(barFg).Background(barHelpBg).Render
	barFlashStyle  = lipgloss.NewStyle().Foreground(mintGreen).Background(darkGreen).Render
	barFlashHelp   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B6FFE4")).Background(green).Render
	helpPanelStyle = lipgloss.NewStyle().Foreground(barFg).Background(helpBg).Render
)
