package topic

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/quiz"
	"github.com/abhisek/coursely/internal/ui/components"
	"github.com/abhisek/coursely/internal/ui/layout"
	"github.com/abhisek/coursely/internal/ui/theme"
)

// quizPanel receives the quiz rendering contract through quiz.Bindings.
type quizPanel struct {
	placeholder string
	prompt      string
	options     []quiz.OptionView
	progress    string

	prevEnabled   bool
	nextEnabled   bool
	submitEnabled bool
	submitLabel   string
	retakeVisible bool

	score  *backend.Score
	review []quiz.ReviewLine
}

func (p *quizPanel) bindings() quiz.Bindings {
	return quiz.Bindings{
		Prompt:        func(v string) { p.prompt = v },
		Options:       func(v []quiz.OptionView) { p.options = v },
		Progress:      func(v string) { p.progress = v },
		Placeholder:   func(v string) { p.placeholder = v },
		PrevEnabled:   func(v bool) { p.prevEnabled = v },
		NextEnabled:   func(v bool) { p.nextEnabled = v },
		SubmitEnabled: func(v bool) { p.submitEnabled = v },
		SubmitLabel:   func(v string) { p.submitLabel = v },
		RetakeVisible: func(v bool) { p.retakeVisible = v },
		Score:         func(v *backend.Score) { p.score = v },
		Review:        func(v []quiz.ReviewLine) { p.review = v },
	}
}

func (s *TopicScreen) View(width, height int) string {
	if s.detail == nil {
		if s.loadErr != nil {
			return layout.ErrorMessage(s.loadErr, width)
		}
		return layout.Message("Loading topic...", width)
	}

	inner := width - 4
	var sections []string
	sections = append(sections, s.renderDetail(inner))
	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner)))
	sections = append(sections, s.renderQuiz(inner))
	if status := s.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	if s.gate.CourseCompleted() {
		sections = append(sections, theme.Banner.Render(
			"Course completed!\n\nPress g to download your certificate"))
	}
	if s.noticeErr != nil {
		sections = append(sections, theme.ErrorText.Render("Certificate: "+s.noticeErr.Error()))
	} else if s.notice != "" {
		sections = append(sections, theme.Hint.Render(s.notice))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n\n"))
}

func (s *TopicScreen) renderDetail(width int) string {
	d := s.detail
	var b strings.Builder

	crumb := fmt.Sprintf("Topic %d", d.Index)
	if d.Total > 0 {
		crumb = fmt.Sprintf("Topic %d of %d", d.Index, d.Total)
	}
	if d.CourseTitle != "" {
		crumb = d.CourseTitle + "  ·  " + crumb
	}
	b.WriteString(theme.Subtitle.Render(crumb))
	b.WriteString("\n")
	b.WriteString(theme.Title.Render(d.Title))

	var meta []string
	for _, m := range []string{d.Level, d.Duration, d.Status} {
		if m != "" {
			meta = append(meta, m)
		}
	}
	if len(meta) > 0 {
		b.WriteString("  ")
		b.WriteString(theme.Hint.Render(strings.Join(meta, " · ")))
	}

	if d.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Width(width).Render(d.Description))
	}
	if d.Objectives != "" {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Width(width).Render("Objectives: " + d.Objectives))
	}
	for _, link := range []struct{ label, url string }{{"Notes", d.NotesURL}, {"Video", d.VideoURL}} {
		if link.url != "" {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render(link.label + ": " + link.url))
		}
	}
	return b.String()
}

func (s *TopicScreen) renderQuiz(width int) string {
	if s.quizErr != nil {
		return theme.ErrorText.Render("Could not load the quiz: "+s.quizErr.Error()) +
			"\n" + theme.Hint.Render("Press Enter to try again")
	}
	if !s.quizLoaded {
		return theme.Hint.Render("Loading quiz...")
	}

	var p quizPanel
	v := s.quiz.View()
	p.bindings().Apply(v)

	if p.placeholder != "" {
		return theme.Hint.Render(p.placeholder)
	}

	var b strings.Builder
	if p.score != nil {
		b.WriteString(s.renderReview(p, width))
	} else {
		b.WriteString(theme.Subtitle.Render(p.progress))
		b.WriteString("\n\n")

		choices := make([]components.Choice, 0, len(p.options))
		for _, o := range p.options {
			choices = append(choices, components.Choice{
				Label:       string(o.Label),
				Text:        o.Text,
				Checked:     o.Checked,
				Highlighted: o.Highlighted,
			})
		}
		b.WriteString(components.NewMultiChoice(p.prompt, choices, v.Submitting || v.Completed).View())
		if v.Completed {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render("You have already completed this quiz."))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(components.ButtonRow(
		components.NewButton("Prev", "←", p.prevEnabled && p.score == nil),
		components.NewButton("Next", "→", p.nextEnabled && p.score == nil),
		components.NewButton(p.submitLabel, "s", p.submitEnabled),
		components.NewButton("Retake", "r", p.retakeVisible),
	))

	if s.submitErr != nil {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Render(submitErrorText(s.submitErr)))
	}
	if s.saveErr != nil {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Attempt not saved locally: " + s.saveErr.Error()))
	}
	return b.String()
}

// submitErrorText distinguishes local rejections from backend failures.
func submitErrorText(err error) string {
	for _, local := range []error{quiz.ErrNoAnswers, quiz.ErrNotOnLastQuestion, quiz.ErrSubmitInFlight, quiz.ErrAlreadyCompleted, quiz.ErrNoQuiz} {
		if errors.Is(err, local) {
			return err.Error()
		}
	}
	return "Failed to submit quiz: " + err.Error()
}

// reviewWindow is the number of review entries shown at once.
const reviewWindow = 4

func (s *TopicScreen) renderReview(p quizPanel, width int) string {
	var b strings.Builder
	b.WriteString(theme.Correct.Render(quiz.Summary(p.score)))
	b.WriteString("\n\n")

	end := min(s.reviewOffset+reviewWindow, len(p.review))
	for _, line := range p.review[s.reviewOffset:end] {
		b.WriteString(theme.Body.Width(width).Render(fmt.Sprintf("%d. %s", line.Number, line.Question)))
		b.WriteString("\n")
		answer := "   Your answer: " + line.YourAnswer
		if line.Correct {
			b.WriteString(theme.Correct.Render(answer + "  ✓"))
		} else {
			b.WriteString(theme.Incorrect.Render(answer + "  ✗"))
			if line.CorrectAnswer != "" {
				b.WriteString("\n")
				b.WriteString(theme.Subtitle.Render("   Correct: " + line.CorrectAnswer))
			}
		}
		b.WriteString("\n")
	}
	if rest := len(p.review) - end; rest > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("… %d more (↓ to scroll)", rest)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *TopicScreen) renderStatus() string {
	var lines []string
	switch s.gate.Mark() {
	case quiz.MarkSaving:
		lines = append(lines, theme.Pending.Render("Saving progress..."))
	case quiz.MarkFailed:
		lines = append(lines, theme.ErrorText.Render(fmt.Sprintf(
			"Could not mark the topic complete: %v. Press m to retry; it will also sync later.", s.gate.MarkErr())))
	case quiz.MarkDone:
		lines = append(lines, theme.Correct.Render("✓ Topic completed"))
	default:
		if s.gate.CanMark() {
			lines = append(lines, theme.Hint.Render("Press m to mark this topic complete"))
		}
	}
	if !s.gate.Unlocked() && !s.gate.IsLast() {
		lines = append(lines, theme.Locked.Render("Complete the quiz to unlock the next topic"))
	}
	return strings.Join(lines, "\n")
}
