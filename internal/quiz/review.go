package quiz

import (
	"fmt"

	"github.com/abhisek/coursely/internal/backend"
)

// SkippedText stands in for the learner's answer on unattempted questions.
const SkippedText = "Skipped"

// ReviewLine is one row of the post-submission breakdown.
type ReviewLine struct {
	Number        int
	Question      string
	YourAnswer    string
	Correct       bool
	CorrectAnswer string
}

// Review builds the per-question breakdown of a score. It returns nil for
// a nil score.
func Review(s *backend.Score) []ReviewLine {
	if s == nil {
		return nil
	}
	lines := make([]ReviewLine, 0, len(s.Results))
	for i, r := range s.Results {
		answer := r.StudentAnswer
		if r.Skipped() {
			answer = SkippedText
		}
		lines = append(lines, ReviewLine{
			Number:        i + 1,
			Question:      r.QuestionText,
			YourAnswer:    answer,
			Correct:       r.Correct,
			CorrectAnswer: r.CorrectAnswer,
		})
	}
	return lines
}

// Summary is the one-line result of a score.
func Summary(s *backend.Score) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("You attempted %d/%d. Score: %d correct.", s.Attempted, s.Total, s.Correct)
}
