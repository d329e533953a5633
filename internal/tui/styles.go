package tui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the chat TUI.
var (
	ColorCyan   = lipgloss.Color("#00FFFF")
	ColorGreen  = lipgloss.Color("#00FF00")
	ColorYellow = lipgloss.Color("#FFFF00")
	ColorRed    = lipgloss.Color("#FF0000")
	ColorGray   = lipgloss.Color("#666666")
)

// Base styles reused by the view.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	RuleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	YouStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	AssistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	ThinkingStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	SourceStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)
