package prompt

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

// Form confirms through an interactive terminal form.
type Form struct {
	Title       string
	Affirmative string
	Negative    string
}

// Confirm shows the message and waits for an answer. Aborting the form
// (ctrl+c / esc) counts as a refusal.
func (f Form) Confirm(ctx context.Context, message string) (bool, error) {
	title := f.Title
	if title == "" {
		title = "Confirm"
	}

	var ok bool
	confirm := huh.NewConfirm().
		Title(title).
		Description(message).
		Value(&ok)
	if f.Affirmative != "" {
		confirm = confirm.Affirmative(f.Affirmative)
	}
	if f.Negative != "" {
		confirm = confirm.Negative(f.Negative)
	}

	err := huh.NewForm(huh.NewGroup(confirm)).RunWithContext(ctx)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}

	return ok, nil
}
