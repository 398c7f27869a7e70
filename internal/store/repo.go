package store

import (
	"context"
	"time"
)

// RequestEventData captures one backend call.
type RequestEventData struct {
	RequestID    string
	Origin       string
	Action       string
	UserID       string
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestEvent is a persisted RequestEventData.
type RequestEvent struct {
	RequestEventData
	Sequence  int64
	Timestamp time.Time
}

// EventRepo records backend calls.
type EventRepo interface {
	// AppendRequest records a backend request event.
	AppendRequest(ctx context.Context, data RequestEventData) error

	// RecentRequests returns the newest events first.
	RecentRequests(ctx context.Context, limit int) ([]RequestEvent, error)
}

// TopicKey identifies a topic for one learner.
type TopicKey struct {
	UserID   string
	CourseID string
	TopicID  string
}

// AnswerData is one submitted answer.
type AnswerData struct {
	QuestionID string `json:"questionId"`
	Label      string `json:"label"`
}

// AttemptData captures one successfully scored quiz submission.
type AttemptData struct {
	AttemptID string
	TopicKey
	Total     int
	Attempted int
	Correct   int
	Answers   []AnswerData
}

// Attempt is a persisted AttemptData.
type Attempt struct {
	AttemptData
	Sequence  int64
	Timestamp time.Time
}

// AttemptQuery filters attempts. Empty fields match everything.
type AttemptQuery struct {
	UserID   string
	CourseID string
	TopicID  string
	Limit    int // max results (0 = unlimited)
}

// TopicStat aggregates attempts for one topic.
type TopicStat struct {
	CourseID    string
	TopicID     string
	Attempts    int
	BestCorrect int
	Total       int
	LastAt      time.Time
}

// AttemptRepo stores quiz attempts.
type AttemptRepo interface {
	SaveAttempt(ctx context.Context, data AttemptData) error

	// Attempts returns matching attempts, newest first.
	Attempts(ctx context.Context, q AttemptQuery) ([]Attempt, error)

	// TopicStats aggregates a learner's attempts per topic.
	TopicStats(ctx context.Context, userID string) ([]TopicStat, error)
}

// PendingCompletion is a mark-complete request that has not yet succeeded.
type PendingCompletion struct {
	ID int64
	TopicKey
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompletionRepo is the outbox for failed mark-complete requests.
type CompletionRepo interface {
	// Enqueue records a failed request. A topic already pending has its
	// attempt count bumped instead of being queued twice.
	Enqueue(ctx context.Context, key TopicKey, reason string) error

	// Pending returns unresolved entries for a learner, oldest first.
	Pending(ctx context.Context, userID string) ([]PendingCompletion, error)

	// Resolve marks an entry as delivered.
	Resolve(ctx context.Context, id int64) error

	// ResolveTopic marks any pending entry for the topic as delivered.
	ResolveTopic(ctx context.Context, key TopicKey) error

	// RecordFailure notes another failed delivery attempt.
	RecordFailure(ctx context.Context, id int64, reason string) error
}
