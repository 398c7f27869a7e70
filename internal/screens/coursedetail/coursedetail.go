// Package coursedetail shows one course: its progress, its curriculum with
// locked and completed topics, enrollment and the completion certificate.
package coursedetail

import (
	"fmt"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/router"
	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/screens/topic"
	"github.com/abhisek/coursely/internal/ui/components"
	"github.com/abhisek/coursely/internal/ui/layout"
	"github.com/abhisek/coursely/internal/ui/theme"
)

type topicsLoadedMsg struct {
	Topics []backend.TopicSummary
	Err    error
}

type courseRefreshedMsg struct {
	Course *backend.Course
	Err    error
}

type enrolledMsg struct {
	Err error
}

type certificateSavedMsg struct {
	Path string
	Err  error
}

// TopicState is how a curriculum entry is presented.
type TopicState int

const (
	TopicLocked TopicState = iota
	TopicOpen
	TopicDone
)

// TopicStates derives per-topic states from the course progress. Without
// enrollment every topic is locked. Topics up to the completed count are
// done, the one after them is open, the rest stay locked.
func TopicStates(c backend.Course, n int) []TopicState {
	states := make([]TopicState, n)
	if !c.Enrolled() {
		return states
	}
	done := CompletedTopics(c, n)
	for i := range states {
		switch {
		case i < done:
			states[i] = TopicDone
		case i == done:
			states[i] = TopicOpen
		}
	}
	return states
}

// CompletedTopics returns how many of n topics are complete. Progress that
// carries only a percentage is scaled to n.
func CompletedTopics(c backend.Course, n int) int {
	if c.Progress != nil && c.Progress.TotalTopics == 0 {
		return min(n, int(math.Round(c.PercentComplete()/100*float64(n))))
	}
	return min(n, c.TopicsCompleted())
}

// CourseDetailScreen shows a course and its curriculum.
type CourseDetailScreen struct {
	deps   screen.Deps
	course backend.Course

	topics []backend.TopicSummary
	states []TopicState
	menu   components.Menu
	loaded bool
	err    error

	enrolling bool
	notice    string
	noticeErr error
}

var _ screen.Screen = (*CourseDetailScreen)(nil)
var _ screen.KeyHintProvider = (*CourseDetailScreen)(nil)
var _ screen.Resumer = (*CourseDetailScreen)(nil)

// New creates a CourseDetailScreen for a catalog entry.
func New(deps screen.Deps, course backend.Course) *CourseDetailScreen {
	return &CourseDetailScreen{deps: deps, course: course}
}

func (s *CourseDetailScreen) Init() tea.Cmd {
	client := s.deps.Client
	ctx := s.deps.Context()
	courseID := s.course.ID
	return func() tea.Msg {
		topics, err := client.CourseTopics(ctx, courseID)
		return topicsLoadedMsg{Topics: topics, Err: err}
	}
}

// Resume refreshes the course progress after returning from a topic.
func (s *CourseDetailScreen) Resume() tea.Cmd {
	client := s.deps.Client
	ctx := s.deps.Context()
	courseID, userID := s.course.ID, s.deps.UserID
	return func() tea.Msg {
		courses, err := client.Courses(ctx, userID)
		if err != nil {
			return courseRefreshedMsg{Err: err}
		}
		for _, c := range courses {
			if c.ID == courseID {
				return courseRefreshedMsg{Course: &c}
			}
		}
		return courseRefreshedMsg{}
	}
}

func (s *CourseDetailScreen) Title() string {
	return "Course"
}

func (s *CourseDetailScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Topics"}}
	switch {
	case !s.course.Enrolled():
		hints = append(hints, layout.KeyHint{Key: "e", Description: "Enroll"})
	case s.course.PercentComplete() >= 100:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Open"},
			layout.KeyHint{Key: "g", Description: "Certificate"})
	default:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Open"},
			layout.KeyHint{Key: "c", Description: "Continue"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *CourseDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		s.loaded = true
		s.err = msg.Err
		if msg.Err == nil {
			s.topics = msg.Topics
			s.rebuild()
		}
		return s, nil

	case courseRefreshedMsg:
		if msg.Course != nil {
			// A course with no topics yet reports an empty progress even
			// after enrolling.
			enrolled := s.course.Enrolled()
			s.course = *msg.Course
			s.course.IsEnrolled = s.course.IsEnrolled || enrolled
			s.rebuild()
		}
		return s, nil

	case enrolledMsg:
		s.enrolling = false
		if msg.Err != nil {
			s.notice, s.noticeErr = "", fmt.Errorf("enrollment failed: %w", msg.Err)
			return s, nil
		}
		s.notice, s.noticeErr = "Enrolled successfully!", nil
		s.course.IsEnrolled = true
		s.rebuild()
		return s, s.Resume()

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

func (s *CourseDetailScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "e":
		if s.course.Enrolled() || s.enrolling {
			return nil
		}
		s.enrolling = true
		s.notice, s.noticeErr = "Enrolling...", nil
		client := s.deps.Client
		ctx := s.deps.Context()
		courseID, userID := s.course.ID, s.deps.UserID
		return func() tea.Msg {
			return enrolledMsg{Err: client.Enroll(ctx, courseID, userID)}
		}

	case "c":
		if !s.course.Enrolled() || len(s.topics) == 0 {
			return nil
		}
		next := min(CompletedTopics(s.course, len(s.topics))+1, len(s.topics))
		return s.openTopic(next)

	case "g":
		if !s.course.Enrolled() || s.course.PercentComplete() < 100 {
			return nil
		}
		s.notice, s.noticeErr = "Generating certificate...", nil
		client := s.deps.Client
		ctx := s.deps.Context()
		courseID, userID, dir := s.course.ID, s.deps.UserID, s.deps.DownloadDir
		return func() tea.Msg {
			cert, err := client.Certificate(ctx, courseID, userID)
			if err != nil {
				return certificateSavedMsg{Err: err}
			}
			path, err := cert.Save(dir)
			return certificateSavedMsg{Path: path, Err: err}
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return cmd
}

func (s *CourseDetailScreen) openTopic(index int) tea.Cmd {
	next := topic.New(s.deps, s.course.ID, index)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *CourseDetailScreen) rebuild() {
	s.states = TopicStates(s.course, len(s.topics))
	selected := s.menu.Selected

	items := make([]components.MenuItem, 0, len(s.topics))
	for i, t := range s.topics {
		index := i + 1
		item := components.MenuItem{
			Label:    fmt.Sprintf("%2d. %s", index, t.Title),
			Disabled: s.states[i] == TopicLocked,
			Action:   func() tea.Cmd { return s.openTopic(index) },
		}
		switch s.states[i] {
		case TopicDone:
			item.Detail = "✓"
		case TopicLocked:
			item.Detail = "locked"
		}
		items = append(items, item)
	}
	s.menu = components.NewMenu(items)
	if selected < len(items) && !items[selected].Disabled {
		s.menu.Selected = selected
	}
}

func (s *CourseDetailScreen) View(width, height int) string {
	var b strings.Builder
	c := s.course
	inner := width - 4

	b.WriteString(theme.Title.Render(c.Title))
	var meta []string
	for _, m := range []string{c.Level, c.Duration, c.Instructor} {
		if m != "" {
			meta = append(meta, m)
		}
	}
	if len(meta) > 0 {
		b.WriteString("  ")
		b.WriteString(theme.Hint.Render(strings.Join(meta, " · ")))
	}
	b.WriteString("\n")
	if c.Description != "" {
		b.WriteString(theme.Body.Width(inner).Render(c.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if c.Enrolled() {
		b.WriteString(components.NewProgressBar("Progress", c.PercentComplete(), true, min(inner, 60)).View())
		if c.Progress != nil && c.Progress.TotalTopics > 0 {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render(fmt.Sprintf("%d/%d topics completed", c.TopicsCompleted(), c.Progress.TotalTopics)))
		}
		if c.PercentComplete() >= 100 {
			b.WriteString("\n")
			b.WriteString(theme.Correct.Render("Course complete. Press g for your certificate."))
		}
	} else {
		b.WriteString(theme.Pending.Render("You are not enrolled. Press e to enroll."))
	}
	b.WriteString("\n\n")

	switch {
	case s.err != nil:
		b.WriteString(theme.ErrorText.Render("Could not load topics: " + s.err.Error()))
	case !s.loaded:
		b.WriteString(theme.Hint.Render("Loading topics..."))
	case len(s.topics) == 0:
		b.WriteString(theme.Hint.Render("No topics available yet."))
	default:
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Curriculum · %d topics", len(s.topics))))
		b.WriteString("\n")
		b.WriteString(s.menu.ViewHeight(max(1, height-14)))
	}

	if s.noticeErr != nil {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.noticeErr.Error()))
	} else if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(s.notice))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
