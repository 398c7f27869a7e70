// Package quiz holds the quiz session controller for one topic: the loaded
// questions, the learner's buffered answers, the question cursor and the
// completion flag, plus the topic unlock gate that depends on them.
package quiz

import (
	"context"
	"errors"
	"maps"

	"github.com/abhisek/coursely/internal/backend"
)

// Local submission rejections. None of them reach the network or change state.
var (
	ErrNoQuiz            = errors.New("topic has no quiz")
	ErrNoAnswers         = errors.New("answer at least one question before submitting")
	ErrNotOnLastQuestion = errors.New("submit is only available on the last question")
	ErrSubmitInFlight    = errors.New("a submission is already in progress")
	ErrAlreadyCompleted  = errors.New("quiz already submitted; retake to answer again")
)

// Submitter scores a set of answers. backend.Client satisfies it.
type Submitter interface {
	SubmitAnswers(ctx context.Context, ref backend.TopicRef, answers []backend.Answer) (*backend.Score, error)
}

// Controller is the state machine for one quiz session. A fresh Controller
// is built for every topic view. It is not safe for concurrent use; callers
// mutate it from a single goroutine.
type Controller struct {
	questions []backend.Question
	answers   map[string]backend.Label
	cursor    int
	completed bool

	// displayed is the selection shown for the current question. It may
	// differ from the recorded answer until the cursor moves or a submit
	// begins.
	displayed backend.Label

	submitting bool
	score      *backend.Score
}

// New returns a Controller with no questions loaded.
func New() *Controller {
	return &Controller{answers: make(map[string]backend.Label)}
}

// Load replaces all session state with a freshly fetched quiz. completed is
// the backend's prior-completion flag.
func (c *Controller) Load(questions []backend.Question, completed bool) {
	c.questions = append([]backend.Question(nil), questions...)
	c.answers = make(map[string]backend.Label)
	c.cursor = 0
	c.completed = completed
	c.displayed = ""
	c.submitting = false
	c.score = nil
}

// Empty reports whether the topic has no quiz.
func (c *Controller) Empty() bool { return len(c.questions) == 0 }

// Len returns the number of loaded questions.
func (c *Controller) Len() int { return len(c.questions) }

// Cursor returns the zero-based index of the current question.
func (c *Controller) Cursor() int { return c.cursor }

// Completed reports whether the quiz has been submitted and scored, either
// in this session or previously according to the backend.
func (c *Controller) Completed() bool { return c.completed }

// Submitting reports whether a submission is outstanding.
func (c *Controller) Submitting() bool { return c.submitting }

// Score returns the result of the last successful submission in this
// session, or nil.
func (c *Controller) Score() *backend.Score { return c.score }

// Current returns the question at the cursor.
func (c *Controller) Current() (backend.Question, bool) {
	if c.Empty() {
		return backend.Question{}, false
	}
	return c.questions[c.cursor], true
}

// Answers returns a copy of the recorded answers keyed by question id.
func (c *Controller) Answers() map[string]backend.Label {
	return maps.Clone(c.answers)
}

// Answer returns the recorded answer for a question.
func (c *Controller) Answer(questionID string) (backend.Label, bool) {
	l, ok := c.answers[questionID]
	return l, ok
}

func (c *Controller) locked() bool {
	return c.submitting
}

// SelectAnswer records label for the current question without moving the
// cursor. Labels the question does not offer are ignored, as is any
// selection while a submission is in flight. A completed quiz still records
// selections; only submitting needs a retake.
func (c *Controller) SelectAnswer(label backend.Label) {
	q, ok := c.Current()
	if !ok || c.locked() || !q.HasChoice(label) {
		return
	}
	c.answers[q.ID] = label
	c.displayed = label
}

// Highlight changes the displayed selection for the current question
// without recording it. The next navigation or submit records it.
func (c *Controller) Highlight(label backend.Label) {
	q, ok := c.Current()
	if !ok || c.locked() || !q.HasChoice(label) {
		return
	}
	c.displayed = label
}

// Displayed returns the selection shown for the current question.
func (c *Controller) Displayed() backend.Label { return c.displayed }

// persist records the displayed selection, if any, for the current question.
func (c *Controller) persist() {
	q, ok := c.Current()
	if !ok || c.displayed == "" || c.locked() {
		return
	}
	c.answers[q.ID] = c.displayed
}

func (c *Controller) moveTo(i int) {
	c.cursor = i
	c.displayed = c.answers[c.questions[i].ID]
}

// Next records the displayed selection and advances the cursor. It is a
// no-op on the last question.
func (c *Controller) Next() {
	if c.cursor >= len(c.questions)-1 {
		return
	}
	c.persist()
	c.moveTo(c.cursor + 1)
}

// Previous records the displayed selection and moves the cursor back. It is
// a no-op on the first question.
func (c *Controller) Previous() {
	if c.cursor <= 0 || c.Empty() {
		return
	}
	c.persist()
	c.moveTo(c.cursor - 1)
}

// OnLast reports whether the cursor is on the final question.
func (c *Controller) OnLast() bool {
	return !c.Empty() && c.cursor == len(c.questions)-1
}

// CanSubmit reports whether the submit control should be enabled: the cursor
// is on the last question, at least one answer is recorded or displayed, no
// submission is outstanding and the quiz is not completed. Partial answers
// are allowed.
func (c *Controller) CanSubmit() bool {
	if !c.OnLast() || c.locked() || c.completed {
		return false
	}
	return len(c.answers) > 0 || c.displayed != ""
}

// BeginSubmit validates a submission, records the displayed selection and
// marks the session as submitting. It returns one entry per attempted
// question, in question order. On error the state is unchanged.
func (c *Controller) BeginSubmit() ([]backend.Answer, error) {
	switch {
	case c.submitting:
		return nil, ErrSubmitInFlight
	case c.completed:
		return nil, ErrAlreadyCompleted
	case c.Empty():
		return nil, ErrNoQuiz
	case !c.OnLast():
		return nil, ErrNotOnLastQuestion
	case len(c.answers) == 0 && c.displayed == "":
		return nil, ErrNoAnswers
	}

	c.persist()
	payload := make([]backend.Answer, 0, len(c.answers))
	for _, q := range c.questions {
		if l, ok := c.answers[q.ID]; ok {
			payload = append(payload, backend.Answer{QuestionID: q.ID, Label: l})
		}
	}
	c.submitting = true
	return payload, nil
}

// FinishSubmit records a successful, scored submission.
func (c *Controller) FinishSubmit(score *backend.Score) {
	c.submitting = false
	c.completed = true
	c.score = score
}

// FailSubmit ends an outstanding submission that the backend did not
// accept. Answers, cursor and the completion flag are left as they were so
// the learner can retry.
func (c *Controller) FailSubmit() {
	c.submitting = false
}

// Submit runs a whole submission synchronously.
func (c *Controller) Submit(ctx context.Context, s Submitter, ref backend.TopicRef) (*backend.Score, error) {
	payload, err := c.BeginSubmit()
	if err != nil {
		return nil, err
	}
	score, err := s.SubmitAnswers(ctx, ref, payload)
	if err != nil {
		c.FailSubmit()
		return nil, err
	}
	c.FinishSubmit(score)
	return score, nil
}

// Retake clears answers, the score and the completion flag and returns to
// the first question. It is ignored while a submission is outstanding.
func (c *Controller) Retake() {
	if c.submitting || c.Empty() {
		return
	}
	c.answers = make(map[string]backend.Label)
	c.cursor = 0
	c.completed = false
	c.displayed = ""
	c.score = nil
}
