package cli

import "github.com/charmbracelet/huh"

// Prompter asks the user for input when a command needs it.
type Prompter interface {
	Input(title string, validate func(string) error) (string, error)
	Confirm(title string) (bool, error)
}

// HuhPrompter prompts on the terminal with huh fields
type HuhPrompter struct{}

func (HuhPrompter) Input(title string, validate func(string) error) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}
	if err := input.Run(); err != nil {
		return "", err
	}
	return value, nil
}

func (HuhPrompter) Confirm(title string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	return confirmed, err
}
