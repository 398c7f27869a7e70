package backend

import (
	"sort"
	"strings"
)

// Label identifies one choice of a multiple-choice question.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists every label in display order.
var Labels = []Label{LabelA, LabelB, LabelC, LabelD}

// ParseLabel maps user input ("a", "B", "3") to a Label.
func ParseLabel(s string) (Label, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "1":
		return LabelA, true
	case "B", "2":
		return LabelB, true
	case "C", "3":
		return LabelC, true
	case "D", "4":
		return LabelD, true
	}
	return "", false
}

// TopicRef addresses one topic for one learner.
type TopicRef struct {
	CourseID string
	TopicID  string
	UserID   string
}

// Question is a single multiple-choice question. Choices that the backend
// left blank are absent from the map.
type Question struct {
	ID      string
	Text    string
	Choices map[Label]string
}

// Option is a present choice of a question.
type Option struct {
	Label Label
	Text  string
}

// Options returns the present choices in A-D order.
func (q Question) Options() []Option {
	opts := make([]Option, 0, len(q.Choices))
	for _, l := range Labels {
		if text, ok := q.Choices[l]; ok && text != "" {
			opts = append(opts, Option{Label: l, Text: text})
		}
	}
	return opts
}

// HasChoice reports whether the question offers the given label.
func (q Question) HasChoice(l Label) bool {
	text, ok := q.Choices[l]
	return ok && text != ""
}

// Quiz is the result of fetching a topic's questions.
type Quiz struct {
	Questions []Question
	// Completed is the backend's record of a prior successful submission.
	Completed bool
}

// Answer is one attempted question in a submission.
type Answer struct {
	QuestionID string `json:"questionId"`
	Label      Label  `json:"selected"`
}

// Score is the backend's scoring of a submission.
type Score struct {
	Total     int
	Attempted int
	Correct   int
	Results   []QuestionResult
}

// QuestionResult is the per-question breakdown of a Score.
type QuestionResult struct {
	QuestionText  string
	StudentAnswer string // empty when the question was skipped
	Correct       bool
	CorrectAnswer string
}

// Skipped reports whether the learner left the question unanswered.
func (r QuestionResult) Skipped() bool {
	return r.StudentAnswer == ""
}

// CompletionAck acknowledges a mark-complete request.
type CompletionAck struct {
	CourseCompleted bool
}

// CourseProgress is the learner's standing in an enrolled course.
type CourseProgress struct {
	TopicsCompleted int
	TotalTopics     int
	Percent         float64
}

// Course is a catalog entry. Progress is nil when the backend reports none.
type Course struct {
	ID          string
	Title       string
	Description string
	Level       string
	Duration    string
	Instructor  string
	Progress    *CourseProgress
	IsEnrolled  bool
}

// Enrolled reports whether the learner is enrolled in the course: either the
// backend says so or the progress covers at least one topic.
func (c Course) Enrolled() bool {
	return c.IsEnrolled || (c.Progress != nil && c.Progress.TotalTopics > 0)
}

// PercentComplete returns progress in [0, 100], or 0 when not enrolled.
func (c Course) PercentComplete() float64 {
	if c.Progress == nil || !c.Enrolled() {
		return 0
	}
	return min(max(c.Progress.Percent, 0), 100)
}

// TopicsCompleted returns the number of completed topics, or 0 when not
// enrolled.
func (c Course) TopicsCompleted() int {
	if c.Progress == nil || !c.Enrolled() {
		return 0
	}
	return max(c.Progress.TopicsCompleted, 0)
}

// TopicSummary is a row of a course's topic list.
type TopicSummary struct {
	ID    string
	Index int
	Title string
	Order int
}

// SortTopics orders topics by Order, then Index, matching the backend's
// intended curriculum order.
func SortTopics(topics []TopicSummary) {
	sort.SliceStable(topics, func(i, j int) bool {
		oi, oj := topics[i].Order, topics[j].Order
		if oi == 0 {
			oi = topics[i].Index
		}
		if oj == 0 {
			oj = topics[j].Index
		}
		return oi < oj
	})
}

// TopicDetail is the full content of one topic plus the learner's flags.
type TopicDetail struct {
	ID          string
	Index       int // 1-based
	Total       int
	Title       string
	CourseTitle string
	Description string
	Duration    string
	Level       string
	Objectives  string
	Status      string
	NotesURL    string
	VideoURL    string

	Completed     bool
	QuizCompleted bool
}

// IsLast reports whether this is the final topic of the course.
func (t TopicDetail) IsLast() bool {
	return t.Total > 0 && t.Index >= t.Total
}

// Profile is the learner's editable profile.
type Profile struct {
	UserID string
	Name   string
	Email  string
	Phone  string
}

// Certificate is a course completion certificate returned by the backend.
type Certificate struct {
	FileName string
	Data     []byte
}
