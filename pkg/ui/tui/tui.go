// Package tui implements the interactive prompt shown when pinscraper is
// started without a subcommand.
package tui

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned when the user leaves the prompt without answering
var ErrAborted = errors.New("prompt aborted")

// Prompt asks for a mode and a URL on the given terminal streams
func Prompt(in io.Reader, out io.Writer, validate func(string) error) (Choice, error) {
	model := NewModel(validate)
	program := tea.NewProgram(&model, tea.WithInput(in), tea.WithOutput(out))

	final, err := program.Run()
	if err != nil {
		return Choice{}, fmt.Errorf("prompt failed: %w", err)
	}

	m, ok := final.(*Model)
	if !ok {
		return Choice{}, fmt.Errorf("unexpected prompt model %T", final)
	}
	choice, done := m.Choice()
	if !done {
		return Choice{}, ErrAborted
	}
	return choice, nil
}
