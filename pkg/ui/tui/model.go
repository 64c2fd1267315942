package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Mode is what the user wants to download
type Mode int

const (
	ModeBoard Mode = iota
	ModeProfile
)

func (m Mode) String() string {
	switch m {
	case ModeBoard:
		return "Single Board"
	case ModeProfile:
		return "All Boards"
	default:
		return "Unknown"
	}
}

// Choice is the answer collected by the prompt
type Choice struct {
	Mode Mode
	URL  string
}

type stage int

const (
	stageMode stage = iota
	stageURL
	stageDone
)

// Model asks for a download mode and then for a URL, re-asking until the
// URL passes validation
type Model struct {
	stage    stage
	modes    []Mode
	cursor   int
	input    textinput.Model
	validate func(string) error
	err      error
	choice   Choice
	aborted  bool
}

// NewModel creates the prompt. validate may be nil.
func NewModel(validate func(string) error) Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(pinRed)
	ti.CharLimit = 512
	ti.Width = 72

	if validate == nil {
		validate = func(string) error { return nil }
	}

	return Model{
		modes:    []Mode{ModeBoard, ModeProfile},
		input:    ti,
		validate: validate,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Choice returns the collected answer once the prompt has completed
func (m Model) Choice() (Choice, bool) {
	return m.choice, m.stage == stageDone && !m.aborted
}

// Aborted reports whether the user quit the prompt
func (m Model) Aborted() bool {
	return m.aborted
}

func (m Model) selectedMode() Mode {
	return m.modes[m.cursor]
}

func urlQuestion(mode Mode) string {
	if mode == ModeProfile {
		return "Enter the URL of the profile whose boards you want to download"
	}
	return "Enter the URL of the board you want to download"
}

func placeholder(mode Mode) string {
	if mode == ModeProfile {
		return "https://www.pinterest.com/username/"
	}
	return "https://www.pinterest.com/username/board/"
}

func normalizeURL(s string) string {
	return strings.TrimSpace(s)
}
