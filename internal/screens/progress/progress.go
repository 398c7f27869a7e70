// Package progress shows the learner's course progress and exports it as a
// workbook.
package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/report"
	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/ui/components"
	"github.com/abhisek/coursely/internal/ui/layout"
	"github.com/abhisek/coursely/internal/ui/theme"
)

type progressLoadedMsg struct {
	Progress report.Progress
	Err      error
}

type exportedMsg struct {
	Path string
	Err  error
}

// ProgressScreen summarizes enrolled courses and local quiz statistics.
type ProgressScreen struct {
	deps screen.Deps
	now  func() time.Time

	progress report.Progress
	loaded   bool
	err      error

	exporting bool
	exported  string
	exportErr error
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)

// New creates a ProgressScreen.
func New(deps screen.Deps) *ProgressScreen {
	return &ProgressScreen{deps: deps, now: time.Now}
}

func (s *ProgressScreen) Init() tea.Cmd {
	client := s.deps.Client
	attempts := s.deps.Attempts
	ctx := s.deps.Context()
	userID := s.deps.UserID
	now := s.now()
	return func() tea.Msg {
		courses, err := client.Courses(ctx, userID)
		if err != nil {
			return progressLoadedMsg{Err: err}
		}
		// Local statistics are optional; a store failure still shows courses.
		stats, _ := attempts.TopicStats(ctx, userID)
		return progressLoadedMsg{Progress: report.Build(userID, courses, stats, now)}
	}
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "x", Description: "Export XLSX"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		s.loaded = true
		s.err = msg.Err
		if msg.Err == nil {
			s.progress = msg.Progress
		}
		return s, nil

	case exportedMsg:
		s.exporting = false
		s.exported, s.exportErr = msg.Path, msg.Err
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "r":
			if s.err != nil || msg.String() == "r" {
				s.err = nil
				s.loaded = false
				return s, s.Init()
			}
		case "x":
			if !s.loaded || s.err != nil || s.exporting {
				return s, nil
			}
			s.exporting = true
			s.exported, s.exportErr = "", nil
			return s, exportCmd(s.deps.DownloadDir, s.progress)
		}
	}
	return s, nil
}

// ExportPath returns where the workbook for p is written inside dir.
func ExportPath(dir string, p report.Progress) string {
	name := fmt.Sprintf("coursely-progress-%s.xlsx", p.Generated.Format("20060102-150405"))
	return filepath.Join(dir, name)
}

func exportCmd(dir string, p report.Progress) tea.Cmd {
	return func() tea.Msg {
		path, err := Export(dir, p)
		return exportedMsg{Path: path, Err: err}
	}
}

// Export writes p as a workbook into dir and returns the file path.
func Export(dir string, p report.Progress) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := ExportPath(dir, p)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := report.WriteXLSX(f, p); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

func (s *ProgressScreen) View(width, height int) string {
	if s.err != nil {
		return layout.ErrorMessage(s.err, width) + "\n" + layout.Message("Press Enter to try again", width)
	}
	if !s.loaded {
		return layout.Message("Loading progress...", width)
	}

	p := s.progress
	if len(p.Courses) == 0 {
		return layout.Message("You are not enrolled in any course yet.", width)
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Average progress: %.0f%%", p.Average())))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d courses completed", p.Completed(), len(p.Courses))))
	b.WriteString("\n\n")

	barWidth := min(width-8, 70)
	for _, c := range p.Courses {
		b.WriteString(theme.Body.Render(c.Title))
		b.WriteString("\n")
		b.WriteString(components.NewProgressBar("", c.PercentComplete(), true, barWidth).View())
		b.WriteString("\n\n")
	}

	if n, best := quizTotals(p); n > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d quiz attempts on this device · best scores total %d", n, best)))
		b.WriteString("\n")
	}

	switch {
	case s.exporting:
		b.WriteString(theme.Hint.Render("Exporting..."))
	case s.exportErr != nil:
		b.WriteString(theme.ErrorText.Render(fmt.Sprintf("Export failed: %v", s.exportErr)))
	case s.exported != "":
		b.WriteString(theme.Hint.Render("Exported to " + s.exported))
	}

	return lipgloss.NewStyle().Padding(1, 2).MaxHeight(height).Render(b.String())
}

func quizTotals(p report.Progress) (attempts, bestCorrect int) {
	for _, t := range p.Topics {
		attempts += t.Attempts
		bestCorrect += t.BestCorrect
	}
	return attempts, bestCorrect
}
