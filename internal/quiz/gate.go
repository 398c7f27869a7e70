package quiz

import "github.com/abhisek/coursely/internal/backend"

// MarkState tracks the dependent mark-complete request of a topic.
type MarkState int

const (
	MarkIdle MarkState = iota
	MarkSaving
	MarkDone
	MarkFailed
)

func (s MarkState) String() string {
	switch s {
	case MarkSaving:
		return "saving"
	case MarkDone:
		return "done"
	case MarkFailed:
		return "failed"
	}
	return "idle"
}

// Gate decides whether navigation past a topic is unlocked and tracks the
// mark-complete request. Once unlocked, a gate stays unlocked for the life of
// the topic view; a retake does not lock it again.
type Gate struct {
	index int
	total int

	topicCompleted bool
	quizResolved   bool
	unlocked       bool

	mark            MarkState
	markErr         error
	marked          bool
	courseCompleted bool
}

// NewGate builds a gate from the backend's topic detail. A topic that is
// complete together with its quiz starts unlocked.
func NewGate(detail backend.TopicDetail) *Gate {
	g := &Gate{
		index:          detail.Index,
		total:          detail.Total,
		topicCompleted: detail.Completed,
	}
	if detail.Completed {
		g.mark = MarkDone
	}
	if detail.Completed && detail.QuizCompleted {
		g.unlocked = true
	}
	return g
}

// QuizLoaded unlocks the gate when the topic has no quiz or the quiz was
// already completed.
func (g *Gate) QuizLoaded(c *Controller) {
	if c.Empty() || c.Completed() {
		g.quizResolved = true
		g.unlocked = true
	}
}

// QuizSubmitted unlocks the gate after a successful submission.
func (g *Gate) QuizSubmitted() {
	g.quizResolved = true
	g.unlocked = true
}

// Unlocked reports whether the learner may move past this topic.
func (g *Gate) Unlocked() bool { return g.unlocked }

// PrevEnabled reports whether a previous topic exists.
func (g *Gate) PrevEnabled() bool { return g.index > 1 }

// NextEnabled reports whether the next topic exists and is unlocked.
func (g *Gate) NextEnabled() bool {
	return g.unlocked && (g.total == 0 || g.index < g.total)
}

// IsLast reports whether this is the final topic of the course.
func (g *Gate) IsLast() bool { return g.total > 0 && g.index >= g.total }

// CanMark reports whether a mark-complete request may be issued now: the
// quiz is resolved, the topic is not yet complete and no request is in flight.
func (g *Gate) CanMark() bool {
	return g.quizResolved && !g.topicCompleted && g.mark != MarkSaving
}

// BeginMark moves to MarkSaving. It returns false when a request is
// already in flight or the topic is already complete.
func (g *Gate) BeginMark() bool {
	if g.mark == MarkSaving || g.topicCompleted {
		return false
	}
	g.mark = MarkSaving
	g.markErr = nil
	return true
}

// MarkSucceeded records the backend's acknowledgement.
func (g *Gate) MarkSucceeded(ack *backend.CompletionAck) {
	g.mark = MarkDone
	g.markErr = nil
	g.marked = true
	g.topicCompleted = true
	if ack != nil && ack.CourseCompleted {
		g.courseCompleted = true
	}
}

// MarkFailed records a failed request. The quiz's completion is unaffected
// and the request may be retried.
func (g *Gate) MarkFailed(err error) {
	g.mark = MarkFailed
	g.markErr = err
}

// Mark returns the mark-complete state.
func (g *Gate) Mark() MarkState { return g.mark }

// MarkErr returns the error of the last failed mark-complete request.
func (g *Gate) MarkErr() error { return g.markErr }

// TopicCompleted reports whether the backend has the topic as complete.
func (g *Gate) TopicCompleted() bool { return g.topicCompleted }

// CourseCompleted reports whether the course completion card should be shown:
// the topic was marked complete in this view and either the backend says the
// course is complete or this is the last topic.
func (g *Gate) CourseCompleted() bool {
	return g.marked && (g.courseCompleted || g.IsLast())
}
