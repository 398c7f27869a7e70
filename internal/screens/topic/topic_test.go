package topic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/quiz"
	"github.com/abhisek/coursely/internal/router"
	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/store"
	"github.com/abhisek/coursely/internal/tracker"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func question(id, text string) backend.Question {
	return backend.Question{
		ID:   id,
		Text: text,
		Choices: map[backend.Label]string{
			backend.LabelA: id + "-a",
			backend.LabelB: id + "-b",
			backend.LabelC: id + "-c",
		},
	}
}

func threeQuestions() *backend.Quiz {
	return &backend.Quiz{Questions: []backend.Question{
		question("q1", "What is a goroutine?"),
		question("q2", "What is a channel?"),
		question("q3", "What does defer do?"),
	}}
}

func detail(index, total int) *backend.TopicDetail {
	return &backend.TopicDetail{
		ID:          "T" + string(rune('0'+index)),
		Index:       index,
		Total:       total,
		Title:       "Concurrency",
		CourseTitle: "Go Basics",
	}
}

type fixture struct {
	client *backend.MockClient
	store  *store.Store
	deps   screen.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "topic.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	client := backend.NewMockClient()
	return &fixture{
		client: client,
		store:  st,
		deps: screen.Deps{
			Client:      client,
			Tracker:     tracker.NewService(client, st.AttemptRepo(), st.CompletionRepo()),
			Attempts:    st.AttemptRepo(),
			UserID:      "u1",
			DownloadDir: t.TempDir(),
		},
	}
}

// drain runs cmd and every command it produces, feeding results back into
// the screen. Router messages are returned instead of being delivered.
func drain(s *TopicScreen, cmd tea.Cmd) []tea.Msg {
	var routed []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg:
			routed = append(routed, msg)
		case nil:
		default:
			_, next := s.Update(msg)
			queue = append(queue, next)
		}
	}
	return routed
}

func press(s *TopicScreen, keys ...tea.KeyPressMsg) []tea.Msg {
	var routed []tea.Msg
	for _, k := range keys {
		_, cmd := s.Update(k)
		routed = append(routed, drain(s, cmd)...)
	}
	return routed
}

func (f *fixture) open(t *testing.T, d *backend.TopicDetail, q *backend.Quiz) *TopicScreen {
	t.Helper()
	f.client.On(backend.OpTopicDetail, backend.MockResult{Value: d})
	f.client.On(backend.OpFetchQuiz, backend.MockResult{Value: q})
	s := New(f.deps, "C1", d.Index)
	drain(s, s.Init())
	if !s.quizLoaded {
		t.Fatalf("quiz not loaded: detail err %v, quiz err %v", s.loadErr, s.quizErr)
	}
	return s
}

func assertContains(t *testing.T, view string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(view, w) {
			t.Errorf("view missing %q:\n%s", w, view)
		}
	}
}

func TestTopicScreen_LoadsDetailAndQuiz(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(2, 4), threeQuestions())

	view := s.View(100, 40)
	assertContains(t, view, "Go Basics", "Topic 2 of 4", "Concurrency", "Question 1 of 3", "1. What is a goroutine?", "q1-a")

	calls := f.client.Calls
	if len(calls) != 2 || calls[1].Op != backend.OpFetchQuiz {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if calls[1].Ref != (backend.TopicRef{CourseID: "C1", TopicID: "T2", UserID: "u1"}) {
		t.Errorf("unexpected quiz ref: %+v", calls[1].Ref)
	}
}

func TestTopicScreen_SubmitPartialAnswers(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(2, 4), threeQuestions())

	f.client.On(backend.OpSubmitAnswers, backend.MockResult{Value: &backend.Score{
		Total: 3, Attempted: 2, Correct: 1,
		Results: []backend.QuestionResult{
			{QuestionText: "What is a goroutine?", StudentAnswer: "q1-b", Correct: true, CorrectAnswer: "q1-b"},
			{QuestionText: "What is a channel?", Correct: false, CorrectAnswer: "q2-a"},
			{QuestionText: "What does defer do?", StudentAnswer: "q3-a", Correct: false, CorrectAnswer: "q3-c"},
		},
	}})
	f.client.On(backend.OpMarkTopicComplete, backend.MockResult{Value: &backend.CompletionAck{}})

	press(s, keyPress('b'), specialKey(tea.KeyRight), specialKey(tea.KeyRight), keyPress('1'), keyPress('s'))

	var submit backend.MockCall
	for _, c := range f.client.Calls {
		if c.Op == backend.OpSubmitAnswers {
			submit = c
		}
	}
	want := []backend.Answer{{QuestionID: "q1", Label: backend.LabelB}, {QuestionID: "q3", Label: backend.LabelA}}
	if len(submit.Answers) != len(want) {
		t.Fatalf("expected answers %v, got %v", want, submit.Answers)
	}
	for i := range want {
		if submit.Answers[i] != want[i] {
			t.Errorf("answer %d: expected %v, got %v", i, want[i], submit.Answers[i])
		}
	}

	if !s.quiz.Completed() {
		t.Error("expected quiz completed after scoring")
	}
	if f.client.CallCount(backend.OpMarkTopicComplete) != 1 {
		t.Errorf("expected one mark-complete call, got %d", f.client.CallCount(backend.OpMarkTopicComplete))
	}
	if s.gate.Mark() != quiz.MarkDone {
		t.Errorf("expected mark done, got %s", s.gate.Mark())
	}

	view := s.View(100, 40)
	assertContains(t, view, "You attempted 2/3. Score: 1 correct.", "Your answer: Skipped", "Correct: q3-c", "Topic completed")

	attempts, err := f.store.AttemptRepo().Attempts(context.Background(), store.AttemptQuery{UserID: "u1"})
	if err != nil {
		t.Fatalf("query attempts: %v", err)
	}
	if len(attempts) != 1 || attempts[0].Correct != 1 || attempts[0].TopicID != "T2" {
		t.Errorf("unexpected attempts: %+v", attempts)
	}
}

func TestTopicScreen_SubmitOnlyFromLastQuestion(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(1, 2), threeQuestions())

	press(s, keyPress('a'), keyPress('s'))

	if f.client.CallCount(backend.OpSubmitAnswers) != 0 {
		t.Error("submit should not reach the backend before the last question")
	}
	if !errors.Is(s.submitErr, quiz.ErrNotOnLastQuestion) {
		t.Errorf("expected ErrNotOnLastQuestion, got %v", s.submitErr)
	}
}

func TestTopicScreen_NoAnswersRejectedLocally(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(1, 2), threeQuestions())

	press(s, specialKey(tea.KeyRight), specialKey(tea.KeyRight), keyPress('s'))

	if f.client.CallCount(backend.OpSubmitAnswers) != 0 {
		t.Error("empty submission should not reach the backend")
	}
	assertContains(t, s.View(100, 40), quiz.ErrNoAnswers.Error())
}

func TestTopicScreen_SubmitFailureKeepsAnswers(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(1, 2), threeQuestions())

	f.client.On(backend.OpSubmitAnswers,
		backend.MockResult{Err: &backend.ErrBackend{Action: backend.OpSubmitAnswers, Message: "sheet locked"}},
		backend.MockResult{Value: &backend.Score{Total: 3, Attempted: 1, Correct: 1}},
	)
	f.client.On(backend.OpMarkTopicComplete, backend.MockResult{Value: &backend.CompletionAck{}})

	press(s, specialKey(tea.KeyRight), specialKey(tea.KeyRight), keyPress('c'), keyPress('s'))

	if s.quiz.Completed() || s.quiz.Submitting() {
		t.Fatal("failed submission must leave the quiz answerable")
	}
	if l, ok := s.quiz.Answer("q3"); !ok || l != backend.LabelC {
		t.Errorf("answer lost after failure: %v %v", l, ok)
	}
	assertContains(t, s.View(100, 40), "Failed to submit quiz", "sheet locked")
	if s.gate.Unlocked() {
		t.Error("gate must stay locked after a failed submission")
	}

	press(s, keyPress('s'))
	if !s.quiz.Completed() {
		t.Error("expected retry to complete the quiz")
	}
}

func TestTopicScreen_NextTopicLockedUntilSubmitted(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(2, 4), threeQuestions())

	if routed := press(s, keyPress(']')); len(routed) != 0 {
		t.Fatalf("next topic should be locked, got %v", routed)
	}
	assertContains(t, s.View(100, 40), "Complete the quiz to unlock the next topic")

	routed := press(s, keyPress('['))
	if len(routed) != 1 {
		t.Fatalf("expected previous topic navigation, got %v", routed)
	}
	prev := routed[0].(router.ReplaceScreenMsg).Screen.(*TopicScreen)
	if prev.index != 1 {
		t.Errorf("expected previous topic index 1, got %d", prev.index)
	}

	f.client.On(backend.OpSubmitAnswers, backend.MockResult{Value: &backend.Score{Total: 3, Attempted: 1}})
	f.client.On(backend.OpMarkTopicComplete, backend.MockResult{Value: &backend.CompletionAck{}})
	press(s, specialKey(tea.KeyRight), specialKey(tea.KeyRight), keyPress('a'), keyPress('s'))

	routed = press(s, keyPress(']'))
	if len(routed) != 1 {
		t.Fatalf("expected next topic navigation after submission, got %v", routed)
	}
	next := routed[0].(router.ReplaceScreenMsg).Screen.(*TopicScreen)
	if next.index != 3 || next.courseID != "C1" {
		t.Errorf("unexpected next topic: %s #%d", next.courseID, next.index)
	}

	// Retaking does not lock the gate again.
	press(s, keyPress('r'))
	if !s.gate.Unlocked() {
		t.Error("gate should stay unlocked after retake")
	}
}

func TestTopicScreen_EmptyQuiz(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(1, 3), &backend.Quiz{})

	assertContains(t, s.View(100, 40), quiz.EmptyMessage, "Press m to mark this topic complete")
	if !s.gate.Unlocked() {
		t.Error("empty quiz should unlock the gate")
	}

	f.client.On(backend.OpMarkTopicComplete, backend.MockResult{Value: &backend.CompletionAck{}})
	press(s, keyPress('m'))
	if !s.gate.TopicCompleted() {
		t.Error("expected topic completed after m")
	}

	press(s, keyPress('s'))
	if f.client.CallCount(backend.OpSubmitAnswers) != 0 {
		t.Error("empty quiz must never submit")
	}
}

func TestTopicScreen_MarkFailureIsQueuedAndRetried(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(1, 3), threeQuestions())

	f.client.On(backend.OpSubmitAnswers, backend.MockResult{Value: &backend.Score{Total: 3, Attempted: 1}})
	f.client.On(backend.OpMarkTopicComplete,
		backend.MockResult{Err: &backend.ErrUnavailable{Err: errors.New("offline")}},
		backend.MockResult{Value: &backend.CompletionAck{}},
	)
	press(s, specialKey(tea.KeyRight), specialKey(tea.KeyRight), keyPress('a'), keyPress('s'))

	if s.gate.Mark() != quiz.MarkFailed {
		t.Fatalf("expected mark failed, got %s", s.gate.Mark())
	}
	if !s.quiz.Completed() || !s.gate.Unlocked() {
		t.Error("a failed mark must not undo the quiz completion")
	}
	assertContains(t, s.View(100, 40), "Could not mark the topic complete", "Press m to retry")

	pending, err := f.store.CompletionRepo().Pending(context.Background(), "u1")
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one queued completion, got %v (%v)", pending, err)
	}

	press(s, keyPress('m'))
	if s.gate.Mark() != quiz.MarkDone {
		t.Errorf("expected mark done after retry, got %s", s.gate.Mark())
	}
	pending, _ = f.store.CompletionRepo().Pending(context.Background(), "u1")
	if len(pending) != 0 {
		t.Errorf("expected outbox cleared after retry, got %v", pending)
	}
}

func TestTopicScreen_LastTopicCompletesCourse(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(3, 3), &backend.Quiz{Questions: []backend.Question{question("q1", "Last one?")}})

	f.client.On(backend.OpSubmitAnswers, backend.MockResult{Value: &backend.Score{Total: 1, Attempted: 1, Correct: 1}})
	f.client.On(backend.OpMarkTopicComplete, backend.MockResult{Value: &backend.CompletionAck{}})
	press(s, keyPress('a'), keyPress('s'))

	if !s.gate.CourseCompleted() {
		t.Fatal("expected course completion on the last topic")
	}
	assertContains(t, s.View(100, 40), "Course completed!")

	f.client.On(backend.OpCertificate, backend.MockResult{Value: &backend.Certificate{FileName: "Go.pdf", Data: []byte("%PDF")}})
	press(s, keyPress('g'))

	path := filepath.Join(f.deps.DownloadDir, "Go.pdf")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("certificate not written: %v", err)
	}
	assertContains(t, s.View(200, 40), "Certificate saved to")
}

func TestTopicScreen_PriorCompletionRequiresRetake(t *testing.T) {
	f := newFixture(t)
	d := detail(1, 3)
	d.Completed, d.QuizCompleted = true, true
	s := f.open(t, d, &backend.Quiz{Questions: threeQuestions().Questions, Completed: true})

	press(s, keyPress('a'))
	if l, ok := s.quiz.Answer("q1"); !ok || l != backend.LabelA {
		t.Errorf("selection should be recorded on a completed quiz, got %v %v", l, ok)
	}
	press(s, specialKey(tea.KeyRight), specialKey(tea.KeyRight), keyPress('s'))
	if n := f.client.CallCount(backend.OpSubmitAnswers); n != 0 {
		t.Errorf("completed quiz must not submit without a retake, got %d calls", n)
	}
	assertContains(t, s.View(100, 40), "You have already completed this quiz.")

	press(s, keyPress('r'), keyPress('a'))
	if l, ok := s.quiz.Answer("q1"); !ok || l != backend.LabelA {
		t.Errorf("expected answer after retake, got %v %v", l, ok)
	}
	if !s.gate.Unlocked() {
		t.Error("completed topic should stay unlocked")
	}
}

func TestTopicScreen_HighlightThenNavigateRecordsAnswer(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, detail(1, 3), threeQuestions())

	press(s, specialKey(tea.KeyDown), specialKey(tea.KeyDown))
	if s.quiz.Displayed() != backend.LabelB {
		t.Fatalf("expected B highlighted, got %q", s.quiz.Displayed())
	}
	if _, ok := s.quiz.Answer("q1"); ok {
		t.Fatal("highlight alone should not record an answer")
	}

	press(s, specialKey(tea.KeyRight))
	if l, _ := s.quiz.Answer("q1"); l != backend.LabelB {
		t.Errorf("expected B recorded on navigation, got %q", l)
	}
}

func TestTopicScreen_DetailErrorRetry(t *testing.T) {
	f := newFixture(t)
	f.client.On(backend.OpTopicDetail, backend.MockResult{Err: &backend.ErrUnavailable{}})
	s := New(f.deps, "C1", 1)
	drain(s, s.Init())

	assertContains(t, s.View(100, 40), "backend unavailable")

	f.client.On(backend.OpTopicDetail, backend.MockResult{Value: detail(1, 2)})
	f.client.On(backend.OpFetchQuiz, backend.MockResult{Value: threeQuestions()})
	press(s, specialKey(tea.KeyEnter))

	if s.detail == nil || !s.quizLoaded {
		t.Error("expected retry to load the topic")
	}
}

func TestTopicScreen_QuizLoadErrorRetry(t *testing.T) {
	f := newFixture(t)
	f.client.On(backend.OpTopicDetail, backend.MockResult{Value: detail(2, 4)})
	f.client.On(backend.OpFetchQuiz, backend.MockResult{Err: &backend.ErrUnavailable{}})
	s := New(f.deps, "C1", 2)
	drain(s, s.Init())

	if s.quizLoaded {
		t.Fatal("quiz should not be loaded after a failed fetch")
	}
	assertContains(t, s.View(100, 40), "Concurrency", "Topic 2 of 4", "Could not load the quiz", "Press Enter to try again")
	if routed := press(s, keyPress(']')); len(routed) != 0 {
		t.Errorf("next topic should stay locked while the quiz is unavailable, got %v", routed)
	}

	f.client.On(backend.OpFetchQuiz, backend.MockResult{Value: threeQuestions()})
	press(s, specialKey(tea.KeyEnter))

	if !s.quizLoaded || s.quizErr != nil {
		t.Fatalf("expected quiz loaded on retry, err %v", s.quizErr)
	}
	if n := f.client.CallCount(backend.OpFetchQuiz); n != 2 {
		t.Errorf("expected 2 quiz fetches, got %d", n)
	}
	assertContains(t, s.View(100, 40), "Question 1 of 3")
}

func TestTopicScreen_QuizReportedMissingUnlocksNext(t *testing.T) {
	f := newFixture(t)
	f.client.On(backend.OpTopicDetail, backend.MockResult{Value: detail(2, 4)})
	f.client.On(backend.OpFetchQuiz, backend.MockResult{Err: &backend.ErrBackend{Action: backend.OpFetchQuiz, Message: "No MCQs found"}})
	s := New(f.deps, "C1", 2)
	drain(s, s.Init())

	if !s.quizLoaded || s.quizErr != nil {
		t.Fatalf("expected an empty quiz, err %v", s.quizErr)
	}
	assertContains(t, s.View(100, 40), quiz.EmptyMessage)
	if !s.gate.Unlocked() {
		t.Fatal("a topic without a quiz should unlock the next topic")
	}

	routed := press(s, keyPress(']'))
	if len(routed) != 1 {
		t.Fatalf("expected next topic navigation, got %v", routed)
	}
	if next := routed[0].(router.ReplaceScreenMsg).Screen.(*TopicScreen); next.index != 3 {
		t.Errorf("expected topic 3, got %d", next.index)
	}
}

func TestTopicScreen_QuizHTTPErrorIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.client.On(backend.OpTopicDetail, backend.MockResult{Value: detail(2, 4)})
	f.client.On(backend.OpFetchQuiz, backend.MockResult{Err: &backend.ErrBackend{Action: backend.OpFetchQuiz, Message: "HTTP 403", StatusCode: 403}})
	s := New(f.deps, "C1", 2)
	drain(s, s.Init())

	if s.quizLoaded {
		t.Fatal("an HTTP failure should not count as a missing quiz")
	}
	assertContains(t, s.View(100, 40), "Press Enter to try again")
}
