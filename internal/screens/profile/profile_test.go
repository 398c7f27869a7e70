package profile

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/screen"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *ProfileScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

// run executes cmd and feeds a non-nil result back into the screen.
func run(s *ProfileScreen, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		s.Update(msg)
	}
}

func loaded(t *testing.T, p *backend.Profile) (*ProfileScreen, *backend.MockClient) {
	t.Helper()
	client := backend.NewMockClient()
	client.On(backend.OpProfile, backend.MockResult{Value: p})
	s := New(screen.Deps{Client: client, UserID: "u1"})
	run(s, s.Init())
	if s.profile == nil {
		t.Fatal("profile not loaded")
	}
	return s, client
}

func TestProfileLoadShowsFields(t *testing.T) {
	s, _ := loaded(t, &backend.Profile{UserID: "u1", Name: "Asha", Email: "asha@example.com", Phone: "555"})

	view := s.View(80, 24)
	for _, want := range []string{"Asha", "asha@example.com", "555"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if s.CapturingInput() {
		t.Error("should not capture input outside a form")
	}
}

func TestProfileLoadErrorRetry(t *testing.T) {
	client := backend.NewMockClient()
	client.On(backend.OpProfile,
		backend.MockResult{Err: errors.New("offline")},
		backend.MockResult{Value: &backend.Profile{UserID: "u1", Name: "Asha"}},
	)
	s := New(screen.Deps{Client: client, UserID: "u1"})
	run(s, s.Init())
	if !strings.Contains(s.View(80, 24), "offline") {
		t.Fatal("expected load error in view")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(s, cmd)
	if s.profile == nil || s.profile.Name != "Asha" {
		t.Fatalf("profile after retry = %+v", s.profile)
	}
}

func TestEditProfileSaves(t *testing.T) {
	s, client := loaded(t, &backend.Profile{UserID: "u1", Name: "Ash", Phone: "55"})
	client.On(backend.OpUpdateProfile, backend.MockResult{})

	s.Update(keyPress('e'))
	if !s.CapturingInput() {
		t.Fatal("edit form should capture input")
	}
	typeText(s, "a")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "5x")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(s, cmd)

	if client.CallCount(backend.OpUpdateProfile) != 1 {
		t.Fatalf("UpdateProfile calls = %d", client.CallCount(backend.OpUpdateProfile))
	}
	args := client.Calls[len(client.Calls)-1].Args
	if args[0] != "Asha" || args[1] != "555" {
		t.Errorf("update args = %v", args)
	}
	if s.CapturingInput() {
		t.Error("form should close after save")
	}
	if s.profile.Name != "Asha" {
		t.Errorf("profile name = %q", s.profile.Name)
	}
	if !strings.Contains(s.View(80, 24), "Profile updated.") {
		t.Error("expected success notice")
	}
}

func TestEditProfileRejectsShortName(t *testing.T) {
	s, client := loaded(t, &backend.Profile{UserID: "u1", Name: "A"})

	s.Update(keyPress('e'))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Fatal("invalid form should not call the backend")
	}
	if !errors.Is(s.noticeErr, backend.ErrNameTooShort) {
		t.Errorf("noticeErr = %v", s.noticeErr)
	}
	if client.CallCount(backend.OpUpdateProfile) != 0 {
		t.Error("UpdateProfile should not be called")
	}
}

func TestEditProfileEscCancels(t *testing.T) {
	s, _ := loaded(t, &backend.Profile{UserID: "u1", Name: "Asha"})

	s.Update(keyPress('e'))
	typeText(s, "zz")
	s.Update(specialKey(tea.KeyEscape))

	if s.CapturingInput() {
		t.Fatal("esc should close the form")
	}
	if s.profile.Name != "Asha" {
		t.Errorf("cancelled edit changed name to %q", s.profile.Name)
	}
}

func TestChangePasswordValidation(t *testing.T) {
	s, client := loaded(t, &backend.Profile{UserID: "u1", Name: "Asha"})

	s.Update(keyPress('p'))
	s.Update(specialKey(tea.KeyEnter))
	if !errors.Is(s.noticeErr, backend.ErrCurrentPassword) {
		t.Fatalf("empty current: noticeErr = %v", s.noticeErr)
	}

	typeText(s, "old")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "abc")
	s.Update(specialKey(tea.KeyEnter))
	if !errors.Is(s.noticeErr, backend.ErrPasswordTooShort) {
		t.Fatalf("short new: noticeErr = %v", s.noticeErr)
	}

	typeText(s, "def")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "abcdeX")
	s.Update(specialKey(tea.KeyEnter))
	if !errors.Is(s.noticeErr, backend.ErrPasswordsMismatch) {
		t.Fatalf("mismatch: noticeErr = %v", s.noticeErr)
	}
	if client.CallCount(backend.OpChangePassword) != 0 {
		t.Error("ChangePassword should not be called for invalid input")
	}
}

func TestChangePasswordSubmits(t *testing.T) {
	s, client := loaded(t, &backend.Profile{UserID: "u1", Name: "Asha"})
	client.On(backend.OpChangePassword, backend.MockResult{})

	s.Update(keyPress('p'))
	typeText(s, "old")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "secret1")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "secret1")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(s, cmd)

	if client.CallCount(backend.OpChangePassword) != 1 {
		t.Fatalf("ChangePassword calls = %d", client.CallCount(backend.OpChangePassword))
	}
	args := client.Calls[len(client.Calls)-1].Args
	if args[0] != "old" || args[1] != "secret1" {
		t.Errorf("password args = %v", args)
	}
	if s.CapturingInput() {
		t.Error("form should close after password change")
	}
	if strings.Contains(s.View(80, 24), "secret1") {
		t.Error("password must not be rendered")
	}
}

func TestChangePasswordBackendError(t *testing.T) {
	s, client := loaded(t, &backend.Profile{UserID: "u1", Name: "Asha"})
	client.On(backend.OpChangePassword, backend.MockResult{
		Err: &backend.ErrBackend{Action: backend.OpChangePassword, Message: "Incorrect current password"},
	})

	s.Update(keyPress('p'))
	typeText(s, "bad")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "secret1")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "secret1")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(s, cmd)

	if !s.CapturingInput() {
		t.Fatal("form should stay open after a backend error")
	}
	if !strings.Contains(s.View(80, 24), "Incorrect current password") {
		t.Error("expected backend message in view")
	}
}
