package components

import (
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and an optional per-rune
// filter.
type TextInput struct {
	Model  textinput.Model
	Label  string
	Filter func(r rune) bool
}

// NewTextInput creates a new labelled text input holding value.
func NewTextInput(label, placeholder, value string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.SetValue(value)

	return TextInput{
		Model: ti,
		Label: label,
	}
}

// PhoneFilter accepts the characters of a phone number.
func PhoneFilter(r rune) bool {
	return (r >= '0' && r <= '9') || r == '+' || r == '-' || r == ' '
}

// Focus focuses the input.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus from the input.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages. Printable keys rejected by Filter are dropped.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.Filter != nil {
		if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.Text != "" {
			r, _ := utf8.DecodeRuneInString(kmsg.Text)
			if !t.Filter(r) {
				return t, nil
			}
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label and the input.
func (t TextInput) View() string {
	style := lipgloss.NewStyle().Foreground(theme.TextDim).Width(10)
	if t.Model.Focused() {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.Render(t.Label) + t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}
