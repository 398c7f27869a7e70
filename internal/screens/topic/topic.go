// Package topic is the topic screen: the topic's content, its quiz and the
// completion gate that unlocks the next topic.
package topic

import (
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/quiz"
	"github.com/abhisek/coursely/internal/router"
	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/ui/layout"
)

// TopicScreen shows one topic of a course. Moving to another topic replaces
// the screen, so every topic gets a fresh quiz controller.
type TopicScreen struct {
	deps     screen.Deps
	courseID string
	index    int

	detail  *backend.TopicDetail
	loadErr error

	quiz       *quiz.Controller
	gate       *quiz.Gate
	quizLoaded bool
	quizErr    error

	submitErr    error
	saveErr      error
	reviewOffset int

	notice    string
	noticeErr error
}

var _ screen.Screen = (*TopicScreen)(nil)
var _ screen.KeyHintProvider = (*TopicScreen)(nil)

// New creates a TopicScreen for the topic at a 1-based index of a course.
func New(deps screen.Deps, courseID string, index int) *TopicScreen {
	if index < 1 {
		index = 1
	}
	return &TopicScreen{
		deps:     deps,
		courseID: courseID,
		index:    index,
		quiz:     quiz.New(),
	}
}

func (s *TopicScreen) Init() tea.Cmd {
	return s.fetchDetail()
}

func (s *TopicScreen) Title() string {
	return "Topic"
}

func (s *TopicScreen) KeyHints() []layout.KeyHint {
	if s.detail == nil {
		if s.loadErr != nil {
			return []layout.KeyHint{{Key: "Enter", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
		}
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}

	var hints []layout.KeyHint
	switch {
	case s.quiz.Score() != nil:
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Scroll"},
			layout.KeyHint{Key: "r", Description: "Retake"})
	case s.quizLoaded && !s.quiz.Empty() && !s.quiz.Completed():
		hints = append(hints,
			layout.KeyHint{Key: "←→", Description: "Question"},
			layout.KeyHint{Key: "a-d", Description: "Answer"},
			layout.KeyHint{Key: "s", Description: "Submit"})
	case s.quiz.Completed():
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Retake"})
	}
	if s.gate != nil && s.gate.CanMark() {
		hints = append(hints, layout.KeyHint{Key: "m", Description: "Mark complete"})
	}
	hints = append(hints, layout.KeyHint{Key: "[ ]", Description: "Topic"})
	if s.gate != nil && s.gate.CourseCompleted() {
		hints = append(hints, layout.KeyHint{Key: "g", Description: "Certificate"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *TopicScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.Err != nil {
			s.loadErr = msg.Err
			return s, nil
		}
		s.loadErr = nil
		s.detail = msg.Detail
		s.index = msg.Detail.Index
		s.gate = quiz.NewGate(*msg.Detail)
		return s, s.fetchQuiz()

	case quizLoadedMsg:
		q := msg.Quiz
		if msg.Err != nil {
			// A lookup the backend answered with a failure means the topic
			// has no quiz; anything else can be retried.
			var be *backend.ErrBackend
			if !errors.As(msg.Err, &be) || !be.Reported() {
				s.quizErr = msg.Err
				return s, nil
			}
			q = &backend.Quiz{}
		}
		if q == nil {
			q = &backend.Quiz{}
		}
		s.quizErr = nil
		s.quiz.Load(q.Questions, q.Completed)
		s.quizLoaded = true
		s.gate.QuizLoaded(s.quiz)
		return s, nil

	case submittedMsg:
		return s, s.handleSubmitted(msg)

	case attemptSavedMsg:
		s.saveErr = msg.Err
		return s, nil

	case markedMsg:
		if msg.Err != nil {
			s.gate.MarkFailed(msg.Err)
		} else {
			s.gate.MarkSucceeded(msg.Ack)
		}
		return s, nil

	case certificateSavedMsg:
		s.notice, s.noticeErr = "", msg.Err
		if msg.Err == nil {
			s.notice = "Certificate saved to " + msg.Path
		}
		return s, nil

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *TopicScreen) handleSubmitted(msg submittedMsg) tea.Cmd {
	if msg.Err != nil {
		s.quiz.FailSubmit()
		s.submitErr = msg.Err
		return nil
	}
	s.submitErr = nil
	s.reviewOffset = 0
	s.quiz.FinishSubmit(msg.Score)
	s.gate.QuizSubmitted()

	cmds := []tea.Cmd{s.saveAttempt(msg.Answers, msg.Score)}
	if s.gate.CanMark() && s.gate.BeginMark() {
		cmds = append(cmds, s.markComplete())
	}
	return tea.Batch(cmds...)
}

func (s *TopicScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.detail == nil {
		if s.loadErr != nil && msg.String() == "enter" {
			s.loadErr = nil
			return s.fetchDetail()
		}
		return nil
	}

	key := msg.String()
	switch key {
	case "[":
		return s.gotoTopic(-1)
	case "]":
		return s.gotoTopic(1)
	case "m":
		if s.gate.CanMark() && s.gate.BeginMark() {
			return s.markComplete()
		}
		return nil
	case "g":
		if s.gate.CourseCompleted() {
			s.notice = "Generating certificate..."
			s.noticeErr = nil
			return s.downloadCertificate()
		}
		return nil
	}

	if !s.quizLoaded {
		if s.quizErr != nil && key == "enter" {
			s.quizErr = nil
			return s.fetchQuiz()
		}
		return nil
	}

	if s.quiz.Score() != nil {
		switch key {
		case "up", "k":
			if s.reviewOffset > 0 {
				s.reviewOffset--
			}
			return nil
		case "down", "j":
			if s.reviewOffset < len(s.quiz.Score().Results)-1 {
				s.reviewOffset++
			}
			return nil
		}
	}

	switch key {
	case "left", "p":
		s.quiz.Previous()
	case "right", "n":
		s.quiz.Next()
	case "up", "k":
		s.moveHighlight(-1)
	case "down", "j":
		s.moveHighlight(1)
	case "enter", "space":
		if l := s.quiz.Displayed(); l != "" {
			s.quiz.SelectAnswer(l)
		}
	case "1", "2", "3", "4", "a", "b", "c", "d":
		if l, ok := backend.ParseLabel(key); ok {
			s.quiz.SelectAnswer(l)
		}
	case "s":
		return s.submit()
	case "r":
		if s.quiz.Completed() {
			s.quiz.Retake()
			s.submitErr = nil
		}
	}
	return nil
}

// moveHighlight moves the displayed selection through the current
// question's options.
func (s *TopicScreen) moveHighlight(delta int) {
	q, ok := s.quiz.Current()
	if !ok {
		return
	}
	opts := q.Options()
	if len(opts) == 0 {
		return
	}
	i := -1
	for j, o := range opts {
		if o.Label == s.quiz.Displayed() {
			i = j
			break
		}
	}
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = len(opts) - 1
	default:
		i = max(0, min(i+delta, len(opts)-1))
	}
	s.quiz.Highlight(opts[i].Label)
}

func (s *TopicScreen) busy() bool {
	return s.quiz.Submitting() || (s.gate != nil && s.gate.Mark() == quiz.MarkSaving)
}

func (s *TopicScreen) gotoTopic(delta int) tea.Cmd {
	if s.busy() {
		return nil
	}
	if delta < 0 && !s.gate.PrevEnabled() {
		return nil
	}
	if delta > 0 && !s.gate.NextEnabled() {
		return nil
	}
	next := New(s.deps, s.courseID, s.detail.Index+delta)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (s *TopicScreen) submit() tea.Cmd {
	answers, err := s.quiz.BeginSubmit()
	if err != nil {
		s.submitErr = err
		return nil
	}
	s.submitErr = nil

	client := s.deps.Client
	ctx := s.deps.Context()
	ref := s.ref()
	return func() tea.Msg {
		score, err := client.SubmitAnswers(ctx, ref, answers)
		return submittedMsg{Answers: answers, Score: score, Err: err}
	}
}

func (s *TopicScreen) ref() backend.TopicRef {
	return s.deps.Ref(s.courseID, s.detail.ID)
}
