package topic

import "github.com/abhisek/coursely/internal/backend"

// detailLoadedMsg carries the topic detail fetched on Init.
type detailLoadedMsg struct {
	Detail *backend.TopicDetail
	Err    error
}

// quizLoadedMsg carries the topic's questions.
type quizLoadedMsg struct {
	Quiz *backend.Quiz
	Err  error
}

// submittedMsg is the scoring response for a submission.
type submittedMsg struct {
	Answers []backend.Answer
	Score   *backend.Score
	Err     error
}

// attemptSavedMsg confirms the attempt was journaled.
type attemptSavedMsg struct {
	Err error
}

// markedMsg is the response to a mark-complete request.
type markedMsg struct {
	Ack *backend.CompletionAck
	Err error
}

// certificateSavedMsg reports where a downloaded certificate was written.
type certificateSavedMsg struct {
	Path string
	Err  error
}
