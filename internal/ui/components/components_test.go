package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMenu_SkipsDisabledItems(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Intro", Disabled: true},
		{Label: "Basics"},
		{Label: "Locked", Disabled: true},
		{Label: "Advanced"},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("expected down to skip disabled item, got %d", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyUp))
	if m.Selected != 1 {
		t.Errorf("expected up to skip disabled item, got %d", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyUp))
	if m.Selected != 1 {
		t.Errorf("expected cursor to stay on first enabled item, got %d", m.Selected)
	}
}

func TestMenu_EnterRunsAction(t *testing.T) {
	ran := false
	m := NewMenu([]MenuItem{
		{Label: "Go", Action: func() tea.Cmd {
			ran = true
			return nil
		}},
	})

	m.Update(specialKey(tea.KeyEnter))
	if !ran {
		t.Error("expected enter to run the selected action")
	}
}

func TestMenu_ViewHeightKeepsSelectionVisible(t *testing.T) {
	items := make([]MenuItem, 10)
	for i := range items {
		items[i] = MenuItem{Label: string(rune('a' + i))}
	}
	m := NewMenu(items)
	m.Selected = 8

	view := m.ViewHeight(3)
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(view, "▸ i") {
		t.Errorf("selected item should be visible:\n%s", view)
	}
	if strings.Contains(view, "    a") {
		t.Errorf("first item should be scrolled out:\n%s", view)
	}
}

func TestMultiChoice_Marks(t *testing.T) {
	mc := NewMultiChoice("1. Pick one", []Choice{
		{Label: "A", Text: "alpha"},
		{Label: "B", Text: "beta", Checked: true},
		{Label: "C", Text: "gamma", Highlighted: true},
	}, false)

	view := mc.View()
	for _, want := range []string{"1. Pick one", "○ A)  alpha", "● B)  beta", "▸ ○ C)  gamma"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMultiChoice_DisabledHidesCursor(t *testing.T) {
	mc := NewMultiChoice("q", []Choice{{Label: "A", Text: "alpha", Highlighted: true, Checked: true}}, true)
	if strings.Contains(mc.View(), "▸") {
		t.Error("disabled choices should not show the cursor")
	}
}

func TestButtonRow(t *testing.T) {
	row := ButtonRow(NewButton("Submit Quiz", "s", true), NewButton("Retake", "r", false))
	if !strings.Contains(row, "[s] Submit Quiz") || !strings.Contains(row, "[r] Retake") {
		t.Errorf("unexpected row: %s", row)
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	for _, pct := range []float64{-10, 150} {
		view := NewProgressBar("", pct, true, 20).View()
		if pct < 0 && !strings.Contains(view, "0%") {
			t.Errorf("expected 0%% for %v, got %q", pct, view)
		}
		if pct > 100 && !strings.Contains(view, "100%") {
			t.Errorf("expected 100%% for %v, got %q", pct, view)
		}
	}
}

func TestTextInput_Filter(t *testing.T) {
	in := NewTextInput("Phone", "", "", 20)
	in.Filter = PhoneFilter
	in.Focus()

	for _, r := range "+1 55x5" {
		in, _ = in.Update(keyPress(r))
	}
	if got := in.Value(); got != "+1 555" {
		t.Errorf("expected filtered value %q, got %q", "+1 555", got)
	}
}
