package topic

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coursely/internal/backend"
)

func (s *TopicScreen) fetchDetail() tea.Cmd {
	client := s.deps.Client
	ctx := s.deps.Context()
	courseID, index, userID := s.courseID, s.index, s.deps.UserID
	return func() tea.Msg {
		detail, err := client.TopicDetail(ctx, courseID, index, userID)
		return detailLoadedMsg{Detail: detail, Err: err}
	}
}

func (s *TopicScreen) fetchQuiz() tea.Cmd {
	client := s.deps.Client
	ctx := s.deps.Context()
	ref := s.ref()
	return func() tea.Msg {
		q, err := client.FetchQuiz(ctx, ref)
		return quizLoadedMsg{Quiz: q, Err: err}
	}
}

func (s *TopicScreen) saveAttempt(answers []backend.Answer, score *backend.Score) tea.Cmd {
	tr := s.deps.Tracker
	if tr == nil {
		return nil
	}
	ctx := s.deps.Context()
	ref := s.ref()
	return func() tea.Msg {
		_, err := tr.RecordAttempt(ctx, ref, answers, score)
		return attemptSavedMsg{Err: err}
	}
}

func (s *TopicScreen) markComplete() tea.Cmd {
	client := s.deps.Client
	tr := s.deps.Tracker
	ctx := s.deps.Context()
	ref := s.ref()
	return func() tea.Msg {
		var (
			ack *backend.CompletionAck
			err error
		)
		if tr != nil {
			ack, err = tr.MarkComplete(ctx, ref)
		} else {
			ack, err = client.MarkTopicComplete(ctx, ref)
		}
		return markedMsg{Ack: ack, Err: err}
	}
}

func (s *TopicScreen) downloadCertificate() tea.Cmd {
	client := s.deps.Client
	ctx := s.deps.Context()
	courseID, userID, dir := s.courseID, s.deps.UserID, s.deps.DownloadDir
	return func() tea.Msg {
		cert, err := client.Certificate(ctx, courseID, userID)
		if err != nil {
			return certificateSavedMsg{Err: err}
		}
		path, err := cert.Save(dir)
		return certificateSavedMsg{Path: path, Err: err}
	}
}
