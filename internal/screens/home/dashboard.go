package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/ui/theme"
)

const titleFull = ` ┏━╸┏━┓╻ ╻┏━┓┏━┓┏━╸╻  ╻ ╻
 ┃  ┃ ┃┃ ┃┣┳┛┗━┓┣╸ ┃  ┗┳┛
 ┗━╸┗━┛┗━┛╹┗╸┗━┛┗━╸┗━╸ ╹ `

const titleCompact = "C · O · U · R · S · E · L · Y"

// dashboard holds the figures shown in the stats bar.
type dashboard struct {
	enrolled  int
	completed int
	average   float64
	pending   int
}

func summarize(courses []backend.Course, pending int) dashboard {
	d := dashboard{pending: pending}
	var sum float64
	for _, c := range courses {
		if !c.Enrolled() {
			continue
		}
		d.enrolled++
		pct := c.PercentComplete()
		sum += pct
		if pct >= 100 {
			d.completed++
		}
	}
	if d.enrolled > 0 {
		d.average = sum / float64(d.enrolled)
	}
	return d
}

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for the frame border (2) and inner padding (4).
	return max(20, min(frameWidth-6, 60))
}

func renderTitle(learner string, cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	center := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)

	title := titleFull
	if compact {
		title = titleCompact
	}
	block := style.Render(title)
	if learner != "" {
		block += "\n\n" + theme.Subtitle.Render("Welcome back, "+learner)
	}
	return center.Render(block)
}

func renderStatsBar(d dashboard, loadErr error, cw int, compact bool) string {
	courseStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	syncStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	switch {
	case loadErr != nil:
		stats = theme.ErrorText.Render("Could not load courses")
		if d.pending > 0 {
			stats += "  " + syncText(d.pending, compact, syncStyle, dimStyle)
		}
	case compact:
		stats = fmt.Sprintf("%s %s %s",
			courseStyle.Render(fmt.Sprintf("▤%d %.0f%%", d.enrolled, d.average)),
			doneStyle.Render(fmt.Sprintf("✓%d", d.completed)),
			syncText(d.pending, true, syncStyle, dimStyle),
		)
	default:
		stats = fmt.Sprintf("%s  %s  %s",
			courseStyle.Render(fmt.Sprintf("▤ %d ENROLLED · %.0f%%", d.enrolled, d.average)),
			doneStyle.Render(fmt.Sprintf("✓ %d DONE", d.completed)),
			syncText(d.pending, false, syncStyle, dimStyle),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func syncText(pending int, compact bool, active, dim lipgloss.Style) string {
	if pending == 0 {
		if compact {
			return dim.Render("⟳0")
		}
		return dim.Render("⟳ SYNCED")
	}
	if compact {
		return active.Render(fmt.Sprintf("⟳%d", pending))
	}
	return active.Render(fmt.Sprintf("⟳ %d TO SYNC", pending))
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

func renderMenu(items []string, selected int, cw int) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	selectedBtn := base.
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Primary).
		BorderForeground(theme.Primary)
	normalBtn := base.
		Foreground(theme.Text).
		BorderForeground(theme.Border)

	buttons := make([]string, len(items))
	for i, label := range items {
		if i == selected {
			buttons[i] = selectedBtn.Render("▸ " + label)
		} else {
			buttons[i] = normalBtn.Render(label)
		}
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as plain lines for small terminals.
func renderMenuCompact(items []string, selected int, cw int) string {
	lines := make([]string, len(items))
	for i, label := range items {
		if i == selected {
			lines[i] = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Primary).
				Bold(true).
				Render(" ▸ " + label + " ")
		} else {
			lines[i] = theme.Body.Render("   " + label)
		}
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(strings.Join(lines, "\n"))
}

func (h *HomeScreen) syncNote() string {
	switch {
	case h.syncing:
		return "Syncing progress..."
	case h.syncErr != nil:
		return fmt.Sprintf("Sync failed: %v", h.syncErr)
	case h.synced != nil:
		note := fmt.Sprintf("Synced %d, %d still pending", h.synced.Delivered, h.synced.Failed)
		if n := len(h.synced.CompletedCourses); n > 0 {
			note += fmt.Sprintf(" · %d course(s) completed", n)
		}
		return note
	}
	return ""
}

func renderNote(text string, isErr bool, cw int) string {
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if isErr {
		style = style.Foreground(theme.Error)
	}
	return style.Width(cw).Align(lipgloss.Center).Render(text)
}

func renderUpdate(text string, cw int) string {
	style := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	return style.Width(cw).Align(lipgloss.Center).Render("⬆ " + text)
}

// renderFrame wraps content in a double border centered in the given area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
