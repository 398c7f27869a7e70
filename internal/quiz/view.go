package quiz

import (
	"fmt"

	"github.com/abhisek/coursely/internal/backend"
)

// EmptyMessage is shown in place of the quiz when a topic has none.
const EmptyMessage = "No quiz for this topic. Proceed to next."

// OptionView is one rendered choice of the current question.
type OptionView struct {
	Label backend.Label
	Text  string

	// Checked is true for the recorded answer.
	Checked bool

	// Highlighted is true for the displayed selection.
	Highlighted bool
}

// ViewState is everything a renderer needs after a state change.
type ViewState struct {
	Empty    bool
	Number   int // 1-based
	Total    int
	Prompt   string
	Options  []OptionView
	Progress string

	PrevEnabled   bool
	NextEnabled   bool
	SubmitEnabled bool
	RetakeEnabled bool

	Submitting bool
	Completed  bool
	Score      *backend.Score
}

// SubmitLabel is the text of the submit control.
func (v ViewState) SubmitLabel() string {
	if v.Submitting {
		return "Submitting..."
	}
	return "Submit Quiz"
}

// View derives the rendering contract from the controller state.
func (c *Controller) View() ViewState {
	v := ViewState{
		Empty:      c.Empty(),
		Total:      len(c.questions),
		Submitting: c.submitting,
		Completed:  c.completed,
		Score:      c.score,
	}
	q, ok := c.Current()
	if !ok {
		v.Prompt = EmptyMessage
		return v
	}

	recorded := c.answers[q.ID]
	v.Number = c.cursor + 1
	v.Prompt = q.Text
	v.Progress = fmt.Sprintf("Question %d of %d", v.Number, v.Total)
	for _, opt := range q.Options() {
		v.Options = append(v.Options, OptionView{
			Label:       opt.Label,
			Text:        opt.Text,
			Checked:     opt.Label == recorded,
			Highlighted: opt.Label == c.displayed,
		})
	}
	v.PrevEnabled = c.cursor > 0
	v.NextEnabled = c.cursor < len(c.questions)-1
	v.SubmitEnabled = c.CanSubmit()
	v.RetakeEnabled = c.completed && !c.submitting
	return v
}

// Bindings connects a ViewState to render targets. Every slot is optional;
// Apply skips nil slots.
type Bindings struct {
	Prompt   func(string)
	Options  func([]OptionView)
	Progress func(string)

	// Placeholder receives the empty-quiz message.
	Placeholder func(string)

	PrevEnabled   func(bool)
	NextEnabled   func(bool)
	SubmitEnabled func(bool)
	SubmitLabel   func(string)
	RetakeVisible func(bool)

	Score  func(*backend.Score)
	Review func([]ReviewLine)
}

// Apply pushes v into every bound slot.
func (b Bindings) Apply(v ViewState) {
	if v.Empty {
		set(b.Placeholder, EmptyMessage)
		set(b.SubmitEnabled, false)
		set(b.RetakeVisible, false)
		return
	}

	set(b.Prompt, fmt.Sprintf("%d. %s", v.Number, v.Prompt))
	set(b.Options, v.Options)
	set(b.Progress, v.Progress)
	set(b.PrevEnabled, v.PrevEnabled)
	set(b.NextEnabled, v.NextEnabled)
	set(b.SubmitEnabled, v.SubmitEnabled)
	set(b.SubmitLabel, v.SubmitLabel())
	set(b.RetakeVisible, v.RetakeEnabled)
	set(b.Score, v.Score)
	set(b.Review, Review(v.Score))
}

func set[T any](slot func(T), v T) {
	if slot != nil {
		slot(v)
	}
}
