// Package tracker records the learner's quiz attempts locally and delivers
// topic completions to the backend, queueing them for a later sync when the
// backend cannot be reached.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/store"
)

// Service ties the backend client to the local journal. Either repo may be
// nil, in which case the corresponding bookkeeping is skipped.
type Service struct {
	client   backend.Client
	attempts store.AttemptRepo
	outbox   store.CompletionRepo
}

// NewService creates a tracker Service.
func NewService(client backend.Client, attempts store.AttemptRepo, outbox store.CompletionRepo) *Service {
	return &Service{
		client:   client,
		attempts: attempts,
		outbox:   outbox,
	}
}

func keyOf(ref backend.TopicRef) store.TopicKey {
	return store.TopicKey{UserID: ref.UserID, CourseID: ref.CourseID, TopicID: ref.TopicID}
}

// RecordAttempt journals a scored submission and returns its attempt id.
func (s *Service) RecordAttempt(ctx context.Context, ref backend.TopicRef, answers []backend.Answer, score *backend.Score) (string, error) {
	id := uuid.NewString()
	if s.attempts == nil || score == nil {
		return id, nil
	}

	data := store.AttemptData{
		AttemptID: id,
		TopicKey:  keyOf(ref),
		Total:     score.Total,
		Attempted: score.Attempted,
		Correct:   score.Correct,
	}
	for _, a := range answers {
		data.Answers = append(data.Answers, store.AnswerData{QuestionID: a.QuestionID, Label: string(a.Label)})
	}
	if err := s.attempts.SaveAttempt(ctx, data); err != nil {
		return id, fmt.Errorf("save attempt: %w", err)
	}
	return id, nil
}

// MarkComplete asks the backend to record the topic as complete. A failed
// request is queued in the outbox; a successful one clears any queued entry
// for the topic.
func (s *Service) MarkComplete(ctx context.Context, ref backend.TopicRef) (*backend.CompletionAck, error) {
	ack, err := s.client.MarkTopicComplete(ctx, ref)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if s.outbox != nil {
			if qerr := s.outbox.Enqueue(context.WithoutCancel(ctx), keyOf(ref), err.Error()); qerr != nil {
				slog.Warn("queue topic completion", "topic", ref.TopicID, "err", qerr)
			}
		}
		return nil, err
	}
	if s.outbox != nil {
		if rerr := s.outbox.ResolveTopic(ctx, keyOf(ref)); rerr != nil {
			slog.Warn("resolve queued completion", "topic", ref.TopicID, "err", rerr)
		}
	}
	return ack, nil
}

// SyncResult summarizes one outbox flush.
type SyncResult struct {
	Delivered int
	Failed    int

	// CompletedCourses lists courses the backend reported complete.
	CompletedCourses []string
}

// Sync retries every queued completion for a learner, oldest first. It
// stops early only when ctx is done.
func (s *Service) Sync(ctx context.Context, userID string) (SyncResult, error) {
	var res SyncResult
	if s.outbox == nil {
		return res, nil
	}

	pending, err := s.outbox.Pending(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("list pending completions: %w", err)
	}

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ref := backend.TopicRef{CourseID: p.CourseID, TopicID: p.TopicID, UserID: p.UserID}
		ack, err := s.client.MarkTopicComplete(ctx, ref)
		if err != nil {
			res.Failed++
			if rerr := s.outbox.RecordFailure(context.WithoutCancel(ctx), p.ID, err.Error()); rerr != nil {
				slog.Warn("record completion failure", "id", p.ID, "err", rerr)
			}
			continue
		}
		if err := s.outbox.Resolve(ctx, p.ID); err != nil {
			return res, fmt.Errorf("resolve completion %d: %w", p.ID, err)
		}
		res.Delivered++
		if ack != nil && ack.CourseCompleted {
			res.CompletedCourses = append(res.CompletedCourses, p.CourseID)
		}
	}
	return res, nil
}

// Pending returns the queued completions for a learner.
func (s *Service) Pending(ctx context.Context, userID string) ([]store.PendingCompletion, error) {
	if s.outbox == nil {
		return nil, nil
	}
	return s.outbox.Pending(ctx, userID)
}
