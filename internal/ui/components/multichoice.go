package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/ui/theme"
)

// Choice is one option of a multiple-choice question.
type Choice struct {
	Label string
	Text  string

	// Checked marks the recorded answer.
	Checked bool

	// Highlighted marks the option under the cursor.
	Highlighted bool
}

// MultiChoice renders a question and its options. Disabled dims the options
// while answers are locked.
type MultiChoice struct {
	Prompt   string
	Choices  []Choice
	Disabled bool
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(prompt string, choices []Choice, disabled bool) MultiChoice {
	return MultiChoice{
		Prompt:   prompt,
		Choices:  choices,
		Disabled: disabled,
	}
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Prompt))
	b.WriteString("\n\n")

	for _, c := range m.Choices {
		prefix := "  "
		if c.Highlighted && !m.Disabled {
			prefix = "▸ "
		}
		mark := "○"
		if c.Checked {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, c.Label, c.Text)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Disabled && c.Checked:
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		case m.Disabled:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case c.Highlighted:
			style = theme.Selected
		case c.Checked:
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
