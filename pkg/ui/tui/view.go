package tui

import (
	"strings"
)

// View renders the prompt
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("PINSCRAPER") + "\n")

	switch m.stage {
	case stageMode:
		b.WriteString(questionStyle.Render("Download a single board or every board from a profile?") + "\n")
		for i, mode := range m.modes {
			if i == m.cursor {
				b.WriteString(selectedOptionStyle.Render("› "+mode.String()) + "\n")
			} else {
				b.WriteString(optionStyle.Render("  "+mode.String()) + "\n")
			}
		}
		b.WriteString(helpStyle.Render("↑/↓ select • enter confirm • q quit") + "\n")

	case stageURL:
		b.WriteString(chosenStyle.Render(m.selectedMode().String()) + "\n")
		b.WriteString(questionStyle.Render(urlQuestion(m.selectedMode())) + "\n")
		b.WriteString(m.input.View() + "\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render("✗ "+m.err.Error()) + "\n")
		}
		b.WriteString(helpStyle.Render("enter confirm • esc back • ctrl+c quit") + "\n")

	case stageDone:
		b.WriteString(chosenStyle.Render(m.choice.Mode.String()+": "+m.choice.URL) + "\n")
	}

	return b.String()
}
