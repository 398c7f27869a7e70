package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexString decodes a JSON string, number or null into a string. The backend
// is spreadsheet-backed and emits ids and cell values in either form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return strings.TrimSpace(string(f)) }

func (f flexString) Int() int {
	n, err := strconv.ParseFloat(f.String(), 64)
	if err != nil {
		return 0
	}
	return int(n)
}

func (f flexString) Float() (float64, bool) {
	s := strings.TrimSuffix(f.String(), "%")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// envelopeDTO is the common response wrapper.
type envelopeDTO struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	IsCompleted           *bool `json:"isCompleted"`
	IsAssignmentCompleted *bool `json:"isAssignmentCompleted"`
	IsCourseCompleted     *bool `json:"isCourseCompleted"`

	Base64   string `json:"base64"`
	FileName string `json:"fileName"`
}

func (e envelopeDTO) success() bool {
	return e.Status == "success"
}

type questionDTO struct {
	QuestionID   flexString `json:"QuestionID"`
	QuestionText string     `json:"QuestionText"`
	OptionA      flexString `json:"OptionA"`
	OptionB      flexString `json:"OptionB"`
	OptionC      flexString `json:"OptionC"`
	OptionD      flexString `json:"OptionD"`
}

func (q questionDTO) toQuestion() Question {
	choices := make(map[Label]string, 4)
	for l, text := range map[Label]flexString{
		LabelA: q.OptionA,
		LabelB: q.OptionB,
		LabelC: q.OptionC,
		LabelD: q.OptionD,
	} {
		if s := text.String(); s != "" {
			choices[l] = s
		}
	}
	return Question{
		ID:      q.QuestionID.String(),
		Text:    q.QuestionText,
		Choices: choices,
	}
}

type scoreDTO struct {
	TotalQuestions    int                 `json:"totalQuestions"`
	AttemptedCount    int                 `json:"attemptedCount"`
	CorrectCount      int                 `json:"correctCount"`
	PerQuestionResult []questionResultDTO `json:"perQuestionResult"`
}

type questionResultDTO struct {
	QuestionText string     `json:"questionText"`
	StudentText  flexString `json:"studentText"`
	IsCorrect    bool       `json:"isCorrect"`
	CorrectText  flexString `json:"correctText"`
}

func (s scoreDTO) toScore() *Score {
	score := &Score{
		Total:     s.TotalQuestions,
		Attempted: s.AttemptedCount,
		Correct:   s.CorrectCount,
	}
	for _, r := range s.PerQuestionResult {
		score.Results = append(score.Results, QuestionResult{
			QuestionText:  r.QuestionText,
			StudentAnswer: r.StudentText.String(),
			Correct:       r.IsCorrect,
			CorrectAnswer: r.CorrectText.String(),
		})
	}
	return score
}

type topicDetailDTO struct {
	TopicID     flexString `json:"TopicID"`
	TopicIndex  flexString `json:"TopicIndex"`
	TotalTopics flexString `json:"TotalTopics"`
	Title       string     `json:"Title"`
	CourseTitle string     `json:"CourseTitle"`
	Description string     `json:"Description"`
	Duration    flexString `json:"Duration"`
	Level       string     `json:"Level"`
	Objectives  string     `json:"Objectives"`
	Status      string     `json:"Status"`
	NotesURL    string     `json:"NotesURL"`
	VideoURL    string     `json:"VideoURL"`
}

type topicSummaryDTO struct {
	TopicID    flexString `json:"TopicID"`
	TopicIndex flexString `json:"TopicIndex"`
	Title      string     `json:"Title"`
	Order      flexString `json:"Order"`
}

type courseDTO struct {
	CourseID    flexString   `json:"CourseID"`
	Title       string       `json:"Title"`
	Description string       `json:"Description"`
	Level       string       `json:"Level"`
	Duration    flexString   `json:"Duration"`
	Instructor  string       `json:"Instructor"`
	Progress    *progressDTO `json:"Progress"`
	IsEnrolled  bool         `json:"isEnrolled"`
}

// progressDTO decodes the Progress object. Older sheets send a bare
// percentage instead; that is kept as Percent and marks the learner enrolled.
type progressDTO struct {
	TopicsCompleted flexString `json:"topicsCompleted"`
	TotalTopics     flexString `json:"totalTopics"`
	Percentage      flexString `json:"progressPercentage"`

	bare bool
}

func (p *progressDTO) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		type plain progressDTO
		var v plain
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*p = progressDTO(v)
		return nil
	}
	var pct flexString
	if err := json.Unmarshal(b, &pct); err != nil {
		return err
	}
	*p = progressDTO{Percentage: pct, bare: true}
	return nil
}

func (p progressDTO) toProgress() (*CourseProgress, bool) {
	pct, ok := p.Percentage.Float()
	if p.bare {
		if !ok {
			return nil, false
		}
		return &CourseProgress{Percent: pct}, true
	}
	return &CourseProgress{
		TopicsCompleted: p.TopicsCompleted.Int(),
		TotalTopics:     p.TotalTopics.Int(),
		Percent:         pct,
	}, false
}

func (c courseDTO) toCourse() Course {
	course := Course{
		ID:          c.CourseID.String(),
		Title:       c.Title,
		Description: c.Description,
		Level:       c.Level,
		Duration:    c.Duration.String(),
		Instructor:  c.Instructor,
		IsEnrolled:  c.IsEnrolled,
	}
	if c.Progress != nil {
		progress, bare := c.Progress.toProgress()
		course.Progress = progress
		course.IsEnrolled = course.IsEnrolled || bare
	}
	return course
}

type profileDTO struct {
	UserID flexString `json:"UserID"`
	Name   string     `json:"Name"`
	Email  flexString `json:"Email"`
	Phone  flexString `json:"Phone"`
}
