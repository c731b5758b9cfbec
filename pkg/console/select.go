//go:build !js && !wasm

package console

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/corevalidate/middleware/pkg/tty"
)

// SelectOption is one choice offered by PromptSelect.
type SelectOption struct {
	Label string
	Value string
}

// PromptSelect shows an interactive single-select menu and returns the
// selected value. Returns an error if stderr is not a TTY.
func PromptSelect(title, description string, options []SelectOption) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}
	if !tty.IsStderrTerminal() {
		return "", fmt.Errorf("interactive selection not available (not a TTY)")
	}

	var selected string
	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt.Label, opt.Value)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description(description).
				Options(huhOptions...).
				Value(&selected),
		),
	).WithAccessible(isAccessibleMode())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

// PromptText shows an interactive free-text input and returns the
// entered value. Returns an error if stderr is not a TTY.
func PromptText(title, description string) (string, error) {
	if !tty.IsStderrTerminal() {
		return "", fmt.Errorf("interactive input not available (not a TTY)")
	}

	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Description(description).
				Value(&value),
		),
	).WithAccessible(isAccessibleMode())

	if err := form.Run(); err != nil {
		return "", err
	}
	return value, nil
}
