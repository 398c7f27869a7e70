package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/coursely/internal/store"
)

// LoggingClient is a decorator that records every backend call as an event.
type LoggingClient struct {
	inner     Client
	eventRepo store.EventRepo
}

var _ Client = (*LoggingClient)(nil)

// WithLogging wraps a Client with event logging.
func WithLogging(c Client, repo store.EventRepo) Client {
	return &LoggingClient{inner: c, eventRepo: repo}
}

func record[T any](ctx context.Context, l *LoggingClient, op, userID string, fn func(context.Context) (T, error)) (T, error) {
	requestID := RequestIDFrom(ctx)
	ctx = WithRequestID(ctx, requestID)
	start := time.Now()

	v, err := fn(ctx)

	data := store.RequestEventData{
		RequestID: requestID,
		Origin:    OriginFrom(ctx),
		Action:    op,
		UserID:    userID,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		slog.Warn("backend call failed", "action", op, "request_id", requestID, "err", err)
	} else {
		slog.Debug("backend call", "action", op, "request_id", requestID, "latency_ms", data.LatencyMs)
	}

	// Log the event but don't fail the request if logging fails.
	if logErr := l.eventRepo.AppendRequest(context.WithoutCancel(ctx), data); logErr != nil {
		slog.Warn("failed to record request event", "action", op, "err", logErr)
	}

	return v, err
}

func (l *LoggingClient) FetchQuiz(ctx context.Context, ref TopicRef) (*Quiz, error) {
	return record(ctx, l, OpFetchQuiz, ref.UserID, func(ctx context.Context) (*Quiz, error) {
		return l.inner.FetchQuiz(ctx, ref)
	})
}

func (l *LoggingClient) SubmitAnswers(ctx context.Context, ref TopicRef, answers []Answer) (*Score, error) {
	return record(ctx, l, OpSubmitAnswers, ref.UserID, func(ctx context.Context) (*Score, error) {
		return l.inner.SubmitAnswers(ctx, ref, answers)
	})
}

func (l *LoggingClient) MarkTopicComplete(ctx context.Context, ref TopicRef) (*CompletionAck, error) {
	return record(ctx, l, OpMarkTopicComplete, ref.UserID, func(ctx context.Context) (*CompletionAck, error) {
		return l.inner.MarkTopicComplete(ctx, ref)
	})
}

func (l *LoggingClient) TopicDetail(ctx context.Context, courseID string, index int, userID string) (*TopicDetail, error) {
	return record(ctx, l, OpTopicDetail, userID, func(ctx context.Context) (*TopicDetail, error) {
		return l.inner.TopicDetail(ctx, courseID, index, userID)
	})
}

func (l *LoggingClient) CourseTopics(ctx context.Context, courseID string) ([]TopicSummary, error) {
	return record(ctx, l, OpCourseTopics, "", func(ctx context.Context) ([]TopicSummary, error) {
		return l.inner.CourseTopics(ctx, courseID)
	})
}

func (l *LoggingClient) Courses(ctx context.Context, userID string) ([]Course, error) {
	return record(ctx, l, OpCourses, userID, func(ctx context.Context) ([]Course, error) {
		return l.inner.Courses(ctx, userID)
	})
}

func (l *LoggingClient) Enroll(ctx context.Context, courseID, userID string) error {
	_, err := record(ctx, l, OpEnroll, userID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.inner.Enroll(ctx, courseID, userID)
	})
	return err
}

func (l *LoggingClient) Profile(ctx context.Context, userID string) (*Profile, error) {
	return record(ctx, l, OpProfile, userID, func(ctx context.Context) (*Profile, error) {
		return l.inner.Profile(ctx, userID)
	})
}

func (l *LoggingClient) UpdateProfile(ctx context.Context, p Profile) error {
	_, err := record(ctx, l, OpUpdateProfile, p.UserID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.inner.UpdateProfile(ctx, p)
	})
	return err
}

func (l *LoggingClient) ChangePassword(ctx context.Context, userID, current, next string) error {
	_, err := record(ctx, l, OpChangePassword, userID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.inner.ChangePassword(ctx, userID, current, next)
	})
	return err
}

func (l *LoggingClient) Certificate(ctx context.Context, courseID, userID string) (*Certificate, error) {
	return record(ctx, l, OpCertificate, userID, func(ctx context.Context) (*Certificate, error) {
		return l.inner.Certificate(ctx, courseID, userID)
	})
}
