// Package profile shows and edits the learner's profile and password.
package profile

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/screen"
	"github.com/abhisek/coursely/internal/ui/components"
	"github.com/abhisek/coursely/internal/ui/layout"
	"github.com/abhisek/coursely/internal/ui/theme"
)

type profileLoadedMsg struct {
	Profile *backend.Profile
	Err     error
}

type profileSavedMsg struct {
	Profile backend.Profile
	Err     error
}

type passwordChangedMsg struct {
	Err error
}

type mode int

const (
	modeView mode = iota
	modeEditProfile
	modeChangePassword
)

// ProfileScreen displays the profile and hosts the edit forms.
type ProfileScreen struct {
	deps screen.Deps

	profile *backend.Profile
	loadErr error

	mode   mode
	inputs []components.TextInput
	focus  int
	saving bool

	notice    string
	noticeErr error
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)
var _ screen.InputCapturer = (*ProfileScreen)(nil)

// New creates a ProfileScreen.
func New(deps screen.Deps) *ProfileScreen {
	return &ProfileScreen{deps: deps}
}

func (s *ProfileScreen) Init() tea.Cmd {
	client := s.deps.Client
	ctx := s.deps.Context()
	userID := s.deps.UserID
	return func() tea.Msg {
		p, err := client.Profile(ctx, userID)
		return profileLoadedMsg{Profile: p, Err: err}
	}
}

func (s *ProfileScreen) Title() string {
	return "Profile"
}

// CapturingInput reports whether an edit form is open.
func (s *ProfileScreen) CapturingInput() bool {
	return s.mode != modeView
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	if s.mode != modeView {
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "e", Description: "Edit"},
		{Key: "p", Description: "Change password"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		s.loadErr = msg.Err
		if msg.Err == nil {
			s.profile = msg.Profile
		}
		return s, nil

	case profileSavedMsg:
		s.saving = false
		if msg.Err != nil {
			s.notice, s.noticeErr = "", msg.Err
			return s, nil
		}
		p := msg.Profile
		s.profile = &p
		s.closeForm("Profile updated.")
		return s, nil

	case passwordChangedMsg:
		s.saving = false
		if msg.Err != nil {
			s.notice, s.noticeErr = "", msg.Err
			return s, nil
		}
		s.closeForm("Password changed.")
		return s, nil

	case tea.KeyMsg:
		if s.mode == modeView {
			return s, s.handleViewKey(msg)
		}
		return s, s.handleFormKey(msg)
	}

	if s.mode != modeView && len(s.inputs) > 0 {
		var cmd tea.Cmd
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ProfileScreen) handleViewKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if s.loadErr != nil {
			s.loadErr = nil
			return s.Init()
		}
	case "e":
		if s.profile == nil {
			return nil
		}
		name := components.NewTextInput("Name", "Your name", s.profile.Name, 64)
		phone := components.NewTextInput("Phone", "Phone number", s.profile.Phone, 20)
		phone.Filter = components.PhoneFilter
		return s.openForm(modeEditProfile, name, phone)
	case "p":
		if s.profile == nil {
			return nil
		}
		return s.openForm(modeChangePassword,
			passwordInput("Current", "Current password"),
			passwordInput("New", "At least 6 characters"),
			passwordInput("Confirm", "Repeat new password"))
	}
	return nil
}

func passwordInput(label, placeholder string) components.TextInput {
	in := components.NewTextInput(label, placeholder, "", 128)
	in.Model.EchoMode = textinput.EchoPassword
	return in
}

func (s *ProfileScreen) openForm(m mode, inputs ...components.TextInput) tea.Cmd {
	s.mode = m
	s.inputs = inputs
	s.focus = 0
	s.notice, s.noticeErr = "", nil
	return s.inputs[0].Focus()
}

func (s *ProfileScreen) closeForm(notice string) {
	s.mode = modeView
	s.inputs = nil
	s.focus = 0
	s.notice, s.noticeErr = notice, nil
}

func (s *ProfileScreen) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if !s.saving {
			s.closeForm("")
		}
		return nil
	case "tab", "down":
		return s.moveFocus(1)
	case "shift+tab", "up":
		return s.moveFocus(-1)
	case "enter":
		if s.saving {
			return nil
		}
		return s.save()
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return cmd
}

func (s *ProfileScreen) moveFocus(delta int) tea.Cmd {
	s.inputs[s.focus].Blur()
	s.focus = (s.focus + delta + len(s.inputs)) % len(s.inputs)
	return s.inputs[s.focus].Focus()
}

func (s *ProfileScreen) save() tea.Cmd {
	client := s.deps.Client
	ctx := s.deps.Context()

	switch s.mode {
	case modeEditProfile:
		updated := *s.profile
		updated.Name = strings.TrimSpace(s.inputs[0].Value())
		updated.Phone = strings.TrimSpace(s.inputs[1].Value())
		if err := updated.Validate(); err != nil {
			s.noticeErr = err
			return nil
		}
		s.saving = true
		s.notice, s.noticeErr = "Saving...", nil
		return func() tea.Msg {
			return profileSavedMsg{Profile: updated, Err: client.UpdateProfile(ctx, updated)}
		}

	case modeChangePassword:
		current, next, confirm := s.inputs[0].Value(), s.inputs[1].Value(), s.inputs[2].Value()
		if err := backend.ValidatePasswordChange(current, next, confirm); err != nil {
			s.noticeErr = err
			return nil
		}
		s.saving = true
		s.notice, s.noticeErr = "Updating password...", nil
		userID := s.profile.UserID
		return func() tea.Msg {
			return passwordChangedMsg{Err: client.ChangePassword(ctx, userID, current, next)}
		}
	}
	return nil
}

func (s *ProfileScreen) View(width, height int) string {
	if s.loadErr != nil {
		return layout.ErrorMessage(s.loadErr, width) + "\n" + layout.Message("Press Enter to try again", width)
	}
	if s.profile == nil {
		return layout.Message("Loading profile...", width)
	}

	var b strings.Builder
	switch s.mode {
	case modeView:
		p := s.profile
		for _, row := range [][2]string{
			{"User ID", p.UserID},
			{"Name", p.Name},
			{"Email", p.Email},
			{"Phone", p.Phone},
		} {
			value := row[1]
			if value == "" {
				value = "—"
			}
			b.WriteString(theme.Subtitle.Width(10).Render(row[0]))
			b.WriteString(theme.Body.Render(value))
			b.WriteString("\n")
		}
	default:
		title := "Edit profile"
		if s.mode == modeChangePassword {
			title = "Change password"
		}
		b.WriteString(theme.Title.Render(title))
		b.WriteString("\n\n")
		for _, in := range s.inputs {
			b.WriteString(in.View())
			b.WriteString("\n")
		}
	}

	if s.noticeErr != nil {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.noticeErr.Error()))
	} else if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(s.notice))
	}

	card := theme.Card.Width(min(width-4, 60)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
