// Package courses lists the course catalog or the learner's enrolled
// courses.
package courses

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/router"
	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/screens/coursedetail"
	"github.com/abhisek/coursely/internal/ui/components"
	"github.com/abhisek/coursely/internal/ui/layout"
	"github.com/abhisek/coursely/internal/ui/theme"
)

type coursesLoadedMsg struct {
	Courses []backend.Course
	Err     error
}

// CoursesScreen lists courses. With enrolledOnly it shows only the courses
// the learner is enrolled in.
type CoursesScreen struct {
	deps         screen.Deps
	enrolledOnly bool

	courses []backend.Course
	menu    components.Menu
	loaded  bool
	err     error
}

var _ screen.Screen = (*CoursesScreen)(nil)
var _ screen.KeyHintProvider = (*CoursesScreen)(nil)
var _ screen.Resumer = (*CoursesScreen)(nil)

// New creates a CoursesScreen.
func New(deps screen.Deps, enrolledOnly bool) *CoursesScreen {
	return &CoursesScreen{deps: deps, enrolledOnly: enrolledOnly}
}

func (s *CoursesScreen) Init() tea.Cmd {
	client := s.deps.Client
	ctx := s.deps.Context()
	userID := s.deps.UserID
	return func() tea.Msg {
		courses, err := client.Courses(ctx, userID)
		return coursesLoadedMsg{Courses: courses, Err: err}
	}
}

// Resume reloads the list so progress reflects work done in a course.
func (s *CoursesScreen) Resume() tea.Cmd {
	return s.Init()
}

func (s *CoursesScreen) Title() string {
	if s.enrolledOnly {
		return "My Courses"
	}
	return "All Courses"
}

func (s *CoursesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CoursesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case coursesLoadedMsg:
		s.loaded = true
		s.err = msg.Err
		if msg.Err == nil {
			s.setCourses(msg.Courses)
		}
		return s, nil

	case tea.KeyMsg:
		if s.err != nil && msg.String() == "enter" {
			s.err = nil
			s.loaded = false
			return s, s.Init()
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CoursesScreen) setCourses(all []backend.Course) {
	selected := s.menu.Selected
	s.courses = s.courses[:0]
	for _, c := range all {
		if s.enrolledOnly && !c.Enrolled() {
			continue
		}
		s.courses = append(s.courses, c)
	}

	items := make([]components.MenuItem, 0, len(s.courses))
	for _, c := range s.courses {
		items = append(items, components.MenuItem{
			Label:  c.Title,
			Detail: detailLine(c),
			Action: func() tea.Cmd {
				next := coursedetail.New(s.deps, c)
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			},
		})
	}
	s.menu = components.NewMenu(items)
	if selected < len(items) {
		s.menu.Selected = selected
	}
}

func detailLine(c backend.Course) string {
	var parts []string
	for _, p := range []string{c.Level, c.Duration, c.Instructor} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if c.Enrolled() {
		parts = append(parts, fmt.Sprintf("%.0f%%", c.PercentComplete()))
	}
	return strings.Join(parts, " · ")
}

func (s *CoursesScreen) View(width, height int) string {
	if s.err != nil {
		return layout.ErrorMessage(s.err, width) + "\n" + layout.Message("Press Enter to try again", width)
	}
	if !s.loaded {
		return layout.Message("Loading courses...", width)
	}
	if len(s.courses) == 0 {
		if s.enrolledOnly {
			return layout.Message("You are not enrolled in any course yet. Browse All Courses to enroll.", width)
		}
		return layout.Message("No courses available.", width)
	}

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d courses", len(s.courses))))
	b.WriteString("\n\n")
	b.WriteString(s.menu.ViewHeight(max(1, height-8)))

	if c, ok := s.current(); ok && c.Description != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Width(width - 8).Render(c.Description))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *CoursesScreen) current() (backend.Course, bool) {
	if s.menu.Selected < 0 || s.menu.Selected >= len(s.courses) {
		return backend.Course{}, false
	}
	return s.courses[s.menu.Selected], true
}
