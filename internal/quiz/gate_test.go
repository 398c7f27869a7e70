package quiz

import (
	"errors"
	"testing"

	"github.com/abhisek/coursely/internal/backend"
)

func TestGate_InitialUnlock(t *testing.T) {
	tests := []struct {
		name   string
		detail backend.TopicDetail
		want   bool
	}{
		{"fresh", backend.TopicDetail{Index: 1, Total: 3}, false},
		{"topic only", backend.TopicDetail{Index: 1, Total: 3, Completed: true}, false},
		{"quiz only", backend.TopicDetail{Index: 1, Total: 3, QuizCompleted: true}, false},
		{"both", backend.TopicDetail{Index: 1, Total: 3, Completed: true, QuizCompleted: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewGate(tt.detail).Unlocked(); got != tt.want {
				t.Errorf("Unlocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGate_PriorCompletedQuizUnlocks(t *testing.T) {
	c := New()
	c.Load(threeQuestions(), true)
	g := NewGate(backend.TopicDetail{Index: 2, Total: 3})
	g.QuizLoaded(c)
	if !g.Unlocked() {
		t.Fatal("completed quiz should unlock")
	}
}

func TestGate_SubmissionUnlocksAndStaysUnlocked(t *testing.T) {
	c := loaded(t)
	g := NewGate(backend.TopicDetail{Index: 1, Total: 3})
	g.QuizLoaded(c)
	if g.Unlocked() || g.NextEnabled() {
		t.Fatal("unanswered quiz should keep the topic locked")
	}
	if g.CanMark() {
		t.Fatal("mark complete should wait for the quiz")
	}

	g.QuizSubmitted()
	if !g.Unlocked() || !g.NextEnabled() {
		t.Fatal("submission should unlock")
	}

	c.Retake()
	if !g.Unlocked() {
		t.Fatal("retake must not lock the gate again")
	}
}

func TestGate_MarkLifecycle(t *testing.T) {
	g := NewGate(backend.TopicDetail{Index: 1, Total: 3})
	g.QuizSubmitted()

	if !g.CanMark() || !g.BeginMark() {
		t.Fatal("expected mark to start")
	}
	if g.Mark() != MarkSaving || g.BeginMark() {
		t.Fatal("second mark should be refused while saving")
	}

	g.MarkFailed(errors.New("down"))
	if g.Mark() != MarkFailed || g.MarkErr() == nil {
		t.Fatalf("mark = %s, err = %v", g.Mark(), g.MarkErr())
	}
	if !g.Unlocked() {
		t.Fatal("mark failure must not lock the topic")
	}
	if !g.CanMark() {
		t.Fatal("failed mark should be retryable")
	}

	if !g.BeginMark() {
		t.Fatal("retry refused")
	}
	g.MarkSucceeded(&backend.CompletionAck{})
	if g.Mark() != MarkDone || !g.TopicCompleted() || g.CanMark() {
		t.Fatal("expected done")
	}
	if g.CourseCompleted() {
		t.Fatal("course not complete on a middle topic")
	}
}

func TestGate_CourseCompletion(t *testing.T) {
	last := NewGate(backend.TopicDetail{Index: 3, Total: 3})
	last.QuizSubmitted()
	last.BeginMark()
	last.MarkSucceeded(&backend.CompletionAck{})
	if !last.CourseCompleted() {
		t.Fatal("last topic marked complete should complete the course")
	}
	if last.NextEnabled() {
		t.Fatal("no next topic after the last")
	}

	middle := NewGate(backend.TopicDetail{Index: 2, Total: 3})
	middle.QuizSubmitted()
	middle.BeginMark()
	middle.MarkSucceeded(&backend.CompletionAck{CourseCompleted: true})
	if !middle.CourseCompleted() {
		t.Fatal("backend course completion should be honored")
	}

	revisit := NewGate(backend.TopicDetail{Index: 3, Total: 3, Completed: true, QuizCompleted: true})
	if revisit.CourseCompleted() {
		t.Fatal("revisiting a finished topic should not show the completion card")
	}
	if revisit.BeginMark() {
		t.Fatal("completed topic should not be marked again")
	}
}

func TestGate_Navigation(t *testing.T) {
	first := NewGate(backend.TopicDetail{Index: 1, Total: 2})
	if first.PrevEnabled() {
		t.Fatal("no previous topic before the first")
	}
	second := NewGate(backend.TopicDetail{Index: 2, Total: 2})
	if !second.PrevEnabled() || !second.IsLast() {
		t.Fatal("second of two should have previous and be last")
	}
}
