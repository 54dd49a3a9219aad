package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorBg           = "#0F172A" // Slate 900
	colorBgCard       = "#1E293B" // Slate 800
	colorFg           = "#F8FAFC" // Slate 50
	colorFgMuted      = "#94A3B8" // Slate 400
	colorPrimary      = "#3B82F6" // Blue 500
	colorSuccess      = "#10B981" // Emerald 500
	colorWarning      = "#F59E0B" // Amber 500
	colorError        = "#EF4444" // Red 500
	colorBorder       = "#334155" // Slate 700
	colorUserMsg      = "#3B82F6" // Blue 500
	colorAssistantMsg = "#10B981" // Emerald 500
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorFg)).
			Background(lipgloss.Color(colorBgCard)).
			Padding(0, 2).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Width(80)

	userMessageStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorUserMsg)).
				Background(lipgloss.Color(colorBgCard)).
				Padding(0, 2).
				MarginBottom(1).
				Width(80)

	assistantMessageStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorAssistantMsg)).
				Background(lipgloss.Color(colorBgCard)).
				Padding(0, 2).
				MarginBottom(1).
				Width(80)

	messageContentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorFg)).
				Background(lipgloss.Color(colorBgCard)).
				Padding(0, 2).
				MarginBottom(1).
				Width(80)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFg)).
			Background(lipgloss.Color(colorBgCard)).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Width(80)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorPrimary)).
			Background(lipgloss.Color(colorBg)).
			Padding(0, 2).
			Width(80)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarning)).
			Padding(0, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFgMuted))

	verdictGoodStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorSuccess))

	verdictBadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorError))
)
