package home

import (
	"context"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/router"
	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/screens/courses"
	"github.com/abhisek/coursely/internal/screens/history"
	"github.com/abhisek/coursely/internal/screens/profile"
	"github.com/abhisek/coursely/internal/screens/progress"
	"github.com/abhisek/coursely/internal/selfupdate"
	"github.com/abhisek/coursely/internal/tracker"
	"github.com/abhisek/coursely/internal/ui/components"
	"github.com/abhisek/coursely/internal/ui/layout"
)

type dashboardLoadedMsg struct {
	Courses []backend.Course
	Pending int
	Err     error
}

type updateCheckedMsg struct {
	Notice *selfupdate.Notice
}

type syncedMsg struct {
	Result tracker.SyncResult
	Err    error
}

// HomeScreen is the main menu with a small progress dashboard.
type HomeScreen struct {
	deps screen.Deps
	menu components.Menu

	stats   dashboard
	loadErr error

	syncing bool
	synced  *tracker.SyncResult
	syncErr error

	update string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

func push(next func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		s := next()
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}
}

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	items := []components.MenuItem{
		{Label: "MY COURSES", Action: push(func() screen.Screen { return courses.New(deps, true) })},
		{Label: "ALL COURSES", Action: push(func() screen.Screen { return courses.New(deps, false) })},
		{Label: "PROGRESS", Action: push(func() screen.Screen { return progress.New(deps) })},
		{Label: "PROFILE", Action: push(func() screen.Screen { return profile.New(deps) })},
		{Label: "HISTORY", Action: push(func() screen.Screen { return history.New(deps) })},
		{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	}
	return &HomeScreen{
		deps: deps,
		menu: components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return tea.Batch(h.load(), h.checkUpdate())
}

func (h *HomeScreen) checkUpdate() tea.Cmd {
	updates := h.deps.Updates
	if updates == nil || h.deps.Version == "" {
		return nil
	}
	version := h.deps.Version
	return func() tea.Msg {
		n, err := updates.Check(context.Background(), version)
		if err != nil {
			slog.Debug("update check skipped", "err", err)
			return updateCheckedMsg{}
		}
		return updateCheckedMsg{Notice: n}
	}
}

func (h *HomeScreen) load() tea.Cmd {
	client := h.deps.Client
	tr := h.deps.Tracker
	ctx := h.deps.Context()
	userID := h.deps.UserID
	return func() tea.Msg {
		var msg dashboardLoadedMsg
		if tr != nil {
			pending, err := tr.Pending(ctx, userID)
			if err == nil {
				msg.Pending = len(pending)
			}
		}
		msg.Courses, msg.Err = client.Courses(ctx, userID)
		return msg
	}
}

// Resume refreshes the dashboard after returning from a sub-screen.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if h.stats.pending > 0 {
		hints = append(hints, layout.KeyHint{Key: "s", Description: "Sync"})
	}
	return hints
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		h.loadErr = msg.Err
		h.stats.pending = msg.Pending
		if msg.Err == nil {
			h.stats = summarize(msg.Courses, msg.Pending)
		}
		return h, nil

	case updateCheckedMsg:
		if msg.Notice != nil && msg.Notice.Available() {
			h.update = msg.Notice.String()
		}
		return h, nil

	case syncedMsg:
		h.syncing = false
		h.syncErr = msg.Err
		if msg.Err == nil {
			res := msg.Result
			h.synced = &res
		}
		return h, h.load()

	case tea.KeyMsg:
		if msg.String() == "s" {
			return h, h.sync()
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) sync() tea.Cmd {
	if h.syncing || h.deps.Tracker == nil || h.stats.pending == 0 {
		return nil
	}
	h.syncing = true
	h.synced, h.syncErr = nil, nil
	tr := h.deps.Tracker
	ctx := backend.WithOrigin(h.deps.Context(), "sync")
	userID := h.deps.UserID
	return func() tea.Msg {
		res, err := tr.Sync(ctx, userID)
		return syncedMsg{Result: res, Err: err}
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight) || layout.IsCompactWidth(width)
	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(h.deps.Learner(), cw, compact))
	sections = append(sections, renderStatsBar(h.stats, h.loadErr, cw, compact))

	labels := make([]string, len(h.menu.Items))
	for i, it := range h.menu.Items {
		labels[i] = it.Label
	}
	if compact {
		sections = append(sections, renderMenuCompact(labels, h.menu.Selected, cw))
	} else {
		sections = append(sections, renderMenu(labels, h.menu.Selected, cw))
	}

	if note := h.syncNote(); note != "" {
		sections = append(sections, renderNote(note, h.syncErr != nil, cw))
	}
	if h.update != "" {
		sections = append(sections, renderUpdate(h.update, cw))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}
