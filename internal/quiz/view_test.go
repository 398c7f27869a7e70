package quiz

import (
	"testing"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_RenderingContract(t *testing.T) {
	c := loaded(t)

	v := c.View()
	assert.Equal(t, "Question 1 of 3", v.Progress)
	assert.Equal(t, "First", v.Prompt)
	assert.False(t, v.PrevEnabled)
	assert.True(t, v.NextEnabled)
	assert.False(t, v.SubmitEnabled)
	require.Len(t, v.Options, 4)
	assert.Equal(t, backend.LabelA, v.Options[0].Label)

	c.Next()
	c.Next()
	v = c.View()
	assert.Equal(t, "Question 3 of 3", v.Progress)
	assert.True(t, v.PrevEnabled)
	assert.False(t, v.NextEnabled)
	assert.Len(t, v.Options, 2)
}

func TestView_CheckedAndHighlighted(t *testing.T) {
	c := loaded(t)
	c.SelectAnswer(backend.LabelA)
	c.Highlight(backend.LabelC)

	v := c.View()
	for _, o := range v.Options {
		assert.Equal(t, o.Label == backend.LabelA, o.Checked, "checked %s", o.Label)
		assert.Equal(t, o.Label == backend.LabelC, o.Highlighted, "highlighted %s", o.Label)
	}
}

func TestBindings_ApplyCallsBoundSlots(t *testing.T) {
	c := loaded(t)
	c.SelectAnswer(backend.LabelB)

	var prompt, progress, label string
	var prev, next, submit bool
	var options []OptionView
	b := Bindings{
		Prompt:        func(s string) { prompt = s },
		Progress:      func(s string) { progress = s },
		Options:       func(o []OptionView) { options = o },
		PrevEnabled:   func(v bool) { prev = v },
		NextEnabled:   func(v bool) { next = v },
		SubmitEnabled: func(v bool) { submit = v },
		SubmitLabel:   func(s string) { label = s },
	}
	b.Apply(c.View())

	assert.Equal(t, "1. First", prompt)
	assert.Equal(t, "Question 1 of 3", progress)
	assert.Len(t, options, 4)
	assert.False(t, prev)
	assert.True(t, next)
	assert.False(t, submit)
	assert.Equal(t, "Submit Quiz", label)
}

func TestBindings_NilSlotsAreNoOps(t *testing.T) {
	c := loaded(t)
	assert.NotPanics(t, func() { Bindings{}.Apply(c.View()) })

	empty := New()
	empty.Load(nil, false)
	var placeholder string
	assert.NotPanics(t, func() {
		Bindings{Placeholder: func(s string) { placeholder = s }}.Apply(empty.View())
	})
	assert.Equal(t, EmptyMessage, placeholder)
}

func TestBindings_ReviewAfterSubmit(t *testing.T) {
	c := loaded(t)
	c.Next()
	c.Next()
	c.SelectAnswer(backend.LabelA)
	_, err := c.BeginSubmit()
	require.NoError(t, err)
	c.FinishSubmit(&backend.Score{
		Total: 3, Attempted: 1, Correct: 1,
		Results: []backend.QuestionResult{
			{QuestionText: "First", CorrectAnswer: "B"},
			{QuestionText: "Second", CorrectAnswer: "C"},
			{QuestionText: "Third", StudentAnswer: "A", Correct: true, CorrectAnswer: "A"},
		},
	})

	var review []ReviewLine
	var retake bool
	Bindings{
		Review:        func(r []ReviewLine) { review = r },
		RetakeVisible: func(v bool) { retake = v },
	}.Apply(c.View())

	require.Len(t, review, 3)
	assert.Equal(t, SkippedText, review[0].YourAnswer)
	assert.Equal(t, 3, review[2].Number)
	assert.True(t, review[2].Correct)
	assert.True(t, retake)
	assert.Equal(t, "You attempted 1/3. Score: 1 correct.", Summary(c.Score()))
}
