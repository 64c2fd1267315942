package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.stage == stageURL {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if key.String() == "ctrl+c" {
		m.aborted = true
		return m, tea.Quit
	}

	switch m.stage {
	case stageMode:
		return m.updateMode(key)
	case stageURL:
		return m.updateURL(key)
	}
	return m, nil
}

func (m *Model) updateMode(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.modes)-1 {
			m.cursor++
		}
	case "1":
		m.cursor = 0
	case "2":
		m.cursor = 1
	case "q", "esc":
		m.aborted = true
		return m, tea.Quit
	case "enter":
		m.stage = stageURL
		m.err = nil
		m.input.Placeholder = placeholder(m.selectedMode())
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) updateURL(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.stage = stageMode
		m.err = nil
		m.input.Blur()
		return m, nil
	case "enter":
		url := normalizeURL(m.input.Value())
		if err := m.validate(url); err != nil {
			m.err = err
			return m, nil
		}
		m.choice = Choice{Mode: m.selectedMode(), URL: url}
		m.stage = stageDone
		m.input.Blur()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	m.err = nil
	return m, cmd
}
