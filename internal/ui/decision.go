package ui

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether both stdin and stderr are attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// PromptDecision answers transport questions with huh prompts. Any running
// spinner is stopped first so the prompt owns the terminal.
type PromptDecision struct {
	spinner *Spinner
}

func NewPromptDecision() *PromptDecision {
	return &PromptDecision{spinner: GlobalSpinner()}
}

// Select shows choices in order and returns the index of the picked one.
func (d *PromptDecision) Select(prompt string, choices []string) (int, error) {
	d.spinner.StopAll()

	options := make([]SelectOption[int], len(choices))
	for i, choice := range choices {
		options[i] = SelectOption[int]{Label: choice, Value: i}
	}
	return Select(prompt, options)
}

func (d *PromptDecision) Confirm(prompt string) (bool, error) {
	d.spinner.StopAll()
	return Confirm(prompt, WithLabels("Yes", "No"))
}
