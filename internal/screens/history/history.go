package history

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/store"
	"github.com/abhisek/coursely/internal/ui/layout"
	"github.com/abhisek/coursely/internal/ui/theme"
)

// historyLimit caps how many attempts are listed.
const historyLimit = 50

type historyLoadedMsg struct {
	Attempts []store.Attempt
	Err      error
}

// HistoryScreen lists quiz attempts recorded on this device.
type HistoryScreen struct {
	deps     screen.Deps
	attempts []store.Attempt
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.deps.Attempts
	ctx := s.deps.Context()
	userID := s.deps.UserID
	return func() tea.Msg {
		attempts, err := repo.Attempts(ctx, store.AttemptQuery{UserID: userID, Limit: historyLimit})
		return historyLoadedMsg{Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Answers"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			if len(s.attempts) > 0 {
				s.expanded[s.selected] = !s.expanded[s.selected]
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quiz attempts yet. Take a topic quiz to see it here.")
	}

	var lines []string
	selectedLine := 0
	for i, a := range s.attempts {
		if i == s.selected {
			selectedLine = len(lines)
		}
		lines = append(lines, s.renderAttempt(i, a)...)
	}

	// Keep the selected attempt on screen.
	visible := max(1, height-2)
	start := 0
	if selectedLine >= visible {
		start = selectedLine - visible + 1
	}
	end := min(len(lines), start+visible)

	var b strings.Builder
	b.WriteString("\n")
	for _, l := range lines[start:end] {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, l))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderAttempt(i int, a store.Attempt) []string {
	var accuracy float64
	if a.Total > 0 {
		accuracy = float64(a.Correct) / float64(a.Total) * 100
	}

	prefix := "  "
	if i == s.selected {
		prefix = "> "
	}
	line := fmt.Sprintf("%s%s  %s / %s  %d/%d correct  %d answered  %.0f%%",
		prefix, a.Timestamp.Format("Jan 02, 2006 15:04"),
		a.CourseID, a.TopicID, a.Correct, a.Total, a.Attempted, accuracy)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	out := []string{style.Render(line)}

	if !s.expanded[i] {
		return out
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	if len(a.Answers) == 0 {
		return append(out, dim.Render("    No answers recorded"))
	}
	for _, ans := range a.Answers {
		out = append(out, dim.Render(fmt.Sprintf("    %s: %s", ans.QuestionID, ans.Label)))
	}
	return out
}
