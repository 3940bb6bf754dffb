package tui

import "github.com/charmbracelet/lipgloss"

// Tally-light palette: amber for work in flight, green for finished, red
// for record/failure.
var (
	amber = lipgloss.Color("#FFB000")
	green = lipgloss.Color("#3DDC97")
	red   = lipgloss.Color("#FF4F5E")
	slate = lipgloss.Color("#64748B")
	chalk = lipgloss.Color("#E2E8F0")
	haze  = lipgloss.Color("#94A3B8")
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0F172A")).
			Background(amber).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().Foreground(haze)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(chalk).
			Underline(true).
			MarginTop(1)

	activeStyle  = lipgloss.NewStyle().Foreground(amber).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(green)
	pendingStyle = lipgloss.NewStyle().Foreground(slate)
	failStyle    = lipgloss.NewStyle().Foreground(red).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(chalk).Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(haze).
			Width(12)

	failBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(red).
			Padding(0, 1).
			MarginTop(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(slate).
			MarginTop(1)
)

const (
	glyphDone    = "●"
	glyphActive  = "◐"
	glyphPending = "○"
	glyphFail    = "✗"
)
