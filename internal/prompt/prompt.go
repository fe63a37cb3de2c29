// Package prompt wraps the interactive forms used by `quotaquery init`.
package prompt

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
)

// InputConfig holds configuration for a text input prompt.
type InputConfig struct {
	Title       string
	Description string
	Placeholder string
	// Secret hides the typed characters.
	Secret   bool
	Validate func(string) error
}

// ConfirmConfig holds configuration for a yes/no confirmation prompt.
type ConfirmConfig struct {
	Title       string
	Description string
	Affirmative string
	Negative    string
	Default     bool
}

// SelectOption is one choice in a Select prompt.
type SelectOption struct {
	Label string
	Value string
}

// SelectConfig holds configuration for a single-choice prompt.
type SelectConfig struct {
	Title       string
	Description string
	Options     []SelectOption
}

// Prompter is implemented by huh in production and by Mock in tests.
type Prompter interface {
	Input(cfg InputConfig) (string, error)
	Confirm(cfg ConfirmConfig) (bool, error)
	Select(cfg SelectConfig) (string, error)
}

// Default is the package-level prompter used by commands.
var Default Prompter = &Huh{}

// SetDefault replaces the package-level prompter.
func SetDefault(p Prompter) {
	Default = p
}

// Huh implements Prompter using charmbracelet/huh forms.
type Huh struct{}

func (h *Huh) Input(cfg InputConfig) (string, error) {
	var value string
	input := huh.NewInput().
		Title(cfg.Title).
		Value(&value)

	if cfg.Description != "" {
		input.Description(cfg.Description)
	}
	if cfg.Placeholder != "" {
		input.Placeholder(cfg.Placeholder)
	}
	if cfg.Secret {
		input.EchoMode(huh.EchoModePassword)
	}
	if cfg.Validate != nil {
		input.Validate(cfg.Validate)
	}

	err := huh.NewForm(huh.NewGroup(input)).WithKeyMap(quitKeyMap()).Run()
	return value, err
}

func (h *Huh) Confirm(cfg ConfirmConfig) (bool, error) {
	value := cfg.Default
	confirm := huh.NewConfirm().
		Title(cfg.Title).
		Value(&value)

	if cfg.Description != "" {
		confirm.Description(cfg.Description)
	}
	if cfg.Affirmative != "" {
		confirm.Affirmative(cfg.Affirmative)
	}
	if cfg.Negative != "" {
		confirm.Negative(cfg.Negative)
	}

	err := huh.NewForm(huh.NewGroup(confirm)).WithKeyMap(quitKeyMap()).Run()
	return value, err
}

func (h *Huh) Select(cfg SelectConfig) (string, error) {
	var selected string
	if len(cfg.Options) > 0 {
		selected = cfg.Options[0].Value
	}

	options := make([]huh.Option[string], len(cfg.Options))
	for i, opt := range cfg.Options {
		options[i] = huh.NewOption(opt.Label, opt.Value)
	}

	sel := huh.NewSelect[string]().
		Title(cfg.Title).
		Options(options...).
		Value(&selected)

	if cfg.Description != "" {
		sel.Description(cfg.Description)
	}

	err := huh.NewForm(huh.NewGroup(sel)).WithKeyMap(quitKeyMap()).Run()
	return selected, err
}

// quitKeyMap lets Escape abort a form as well as Ctrl-C.
func quitKeyMap() *huh.KeyMap {
	keymap := huh.NewDefaultKeyMap()
	keymap.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"))
	return keymap
}
