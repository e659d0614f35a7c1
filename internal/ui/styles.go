package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#FF8C42")
	colorSoft   = lipgloss.Color("#FFB84D")
	colorMuted  = lipgloss.Color("#6B7280")
	colorText   = lipgloss.Color("#FFFFFF")
	colorError  = lipgloss.Color("#FF4757")
	colorHeader = lipgloss.Color("#4F81BD")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(colorText)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colorSoft)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorSoft).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	// BlockStyle frames one responder paragraph.
	BlockStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorSoft).
			PaddingLeft(1).
			MarginBottom(1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorAccent).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)

	// TableHeaderStyle mirrors the header colors of generated templates.
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorHeader).
				Bold(true).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)
