package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	pinRed      = lipgloss.Color("#E60023")
	softRed     = lipgloss.Color("#FF5F5F")
	teal        = lipgloss.Color("#00AFAF")
	dimWhite    = lipgloss.Color("#B0B0B0")
	brightWhite = lipgloss.Color("#FFFFFF")

	titleStyle = lipgloss.NewStyle().
			Background(pinRed).
			Foreground(brightWhite).
			Bold(true).
			Padding(0, 1)

	questionStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Bold(true).
			MarginTop(1)

	optionStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			PaddingLeft(2)

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(pinRed).
				Bold(true).
				PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(softRed)

	chosenStyle = lipgloss.NewStyle().
			Foreground(teal)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)
)
