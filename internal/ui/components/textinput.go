package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/studyhall/studyhall/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with Studyhall styling and a word
// counter for long-form answers.
type TextInput struct {
	Model         textinput.Model
	ShowWordCount bool
}

// NewTextInput creates a new styled text input.
func NewTextInput(placeholder string, charLimit int, showWordCount bool) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{
		Model:         ti,
		ShowWordCount: showWordCount,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.ShowWordCount {
		view += theme.Hint.Render(countSuffix(t.Model.Value()))
	}
	return view
}

func countSuffix(value string) string {
	n := len(strings.Fields(value))
	switch {
	case n == 1:
		return "  (1 word)"
	case n > 1:
		return fmt.Sprintf("  (%d words)", n)
	}
	return ""
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
}
