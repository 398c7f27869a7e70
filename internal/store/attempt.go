package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// attemptRepo implements AttemptRepo.
type attemptRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var attemptColumns = []string{
	"sequence", "attempt_id", "user_id", "course_id", "topic_id",
	"total", "attempted", "correct", "answers", "created_at",
}

func (r *attemptRepo) SaveAttempt(ctx context.Context, data AttemptData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	answers := data.Answers
	if answers == nil {
		answers = []AnswerData{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	query, args := builder().Insert("quiz_attempts").
		Columns(attemptColumns...).
		Values(seqNum, data.AttemptID, data.UserID, data.CourseID, data.TopicID,
			data.Total, data.Attempted, data.Correct, string(answersJSON), unixMillis(time.Now())).
		Query()
	if _, err := execQuery(ctx, r.drv, query, args); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) Attempts(ctx context.Context, q AttemptQuery) ([]Attempt, error) {
	sel := builder().Select(attemptColumns...).
		From(entsql.Table("quiz_attempts")).
		OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if q.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", q.UserID))
	}
	if q.CourseID != "" {
		preds = append(preds, entsql.EQ("course_id", q.CourseID))
	}
	if q.TopicID != "" {
		preds = append(preds, entsql.EQ("topic_id", q.TopicID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}
	query, args := sel.Query()

	var attempts []Attempt
	err := scanAll(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var a Attempt
		var answersJSON string
		var createdAt int64
		if err := rows.Scan(&a.Sequence, &a.AttemptID, &a.UserID, &a.CourseID, &a.TopicID,
			&a.Total, &a.Attempted, &a.Correct, &answersJSON, &createdAt); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(answersJSON), &a.Answers); err != nil {
			return fmt.Errorf("unmarshal answers of %s: %w", a.AttemptID, err)
		}
		a.Timestamp = fromMillis(createdAt)
		attempts = append(attempts, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return attempts, nil
}

func (r *attemptRepo) TopicStats(ctx context.Context, userID string) ([]TopicStat, error) {
	query, args := builder().Select(
		"course_id", "topic_id",
		entsql.As(entsql.Count("*"), "attempts"),
		entsql.As(entsql.Max("correct"), "best_correct"),
		entsql.As(entsql.Max("total"), "max_total"),
		entsql.As(entsql.Max("created_at"), "last_at"),
	).
		From(entsql.Table("quiz_attempts")).
		Where(entsql.EQ("user_id", userID)).
		GroupBy("course_id", "topic_id").
		OrderBy("course_id", "topic_id").
		Query()

	var stats []TopicStat
	err := scanAll(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var s TopicStat
		var lastAt int64
		if err := rows.Scan(&s.CourseID, &s.TopicID, &s.Attempts, &s.BestCorrect, &s.Total, &lastAt); err != nil {
			return err
		}
		s.LastAt = fromMillis(lastAt)
		stats = append(stats, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query topic stats: %w", err)
	}
	return stats, nil
}
