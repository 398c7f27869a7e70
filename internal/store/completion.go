package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// completionRepo implements CompletionRepo.
type completionRepo struct {
	drv *entsql.Driver
}

func topicPredicate(key TopicKey) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("user_id", key.UserID),
		entsql.EQ("course_id", key.CourseID),
		entsql.EQ("topic_id", key.TopicID),
		entsql.IsNull("resolved_at"),
	)
}

func (r *completionRepo) Enqueue(ctx context.Context, key TopicKey, reason string) error {
	now := unixMillis(time.Now())

	query, args := builder().Update("pending_completions").
		Add("attempts", 1).
		Set("last_error", reason).
		Set("updated_at", now).
		Where(topicPredicate(key)).
		Query()
	res, err := execQuery(ctx, r.drv, query, args)
	if err != nil {
		return fmt.Errorf("bump pending completion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	query, args = builder().Insert("pending_completions").
		Columns("user_id", "course_id", "topic_id", "attempts", "last_error", "created_at", "updated_at").
		Values(key.UserID, key.CourseID, key.TopicID, 1, reason, now, now).
		Query()
	if _, err := execQuery(ctx, r.drv, query, args); err != nil {
		return fmt.Errorf("enqueue completion: %w", err)
	}
	return nil
}

func (r *completionRepo) Pending(ctx context.Context, userID string) ([]PendingCompletion, error) {
	query, args := builder().Select("id", "user_id", "course_id", "topic_id",
		"attempts", "last_error", "created_at", "updated_at").
		From(entsql.Table("pending_completions")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.IsNull("resolved_at"),
		)).
		OrderBy(entsql.Asc("id")).
		Query()

	var pending []PendingCompletion
	err := scanAll(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var p PendingCompletion
		var createdAt, updatedAt int64
		if err := rows.Scan(&p.ID, &p.UserID, &p.CourseID, &p.TopicID,
			&p.Attempts, &p.LastError, &createdAt, &updatedAt); err != nil {
			return err
		}
		p.CreatedAt = fromMillis(createdAt)
		p.UpdatedAt = fromMillis(updatedAt)
		pending = append(pending, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query pending completions: %w", err)
	}
	return pending, nil
}

func (r *completionRepo) Resolve(ctx context.Context, id int64) error {
	now := unixMillis(time.Now())
	query, args := builder().Update("pending_completions").
		Set("resolved_at", now).
		Set("updated_at", now).
		Where(entsql.EQ("id", id)).
		Query()
	return r.exec(ctx, "resolve completion", query, args)
}

func (r *completionRepo) ResolveTopic(ctx context.Context, key TopicKey) error {
	now := unixMillis(time.Now())
	query, args := builder().Update("pending_completions").
		Set("resolved_at", now).
		Set("updated_at", now).
		Where(topicPredicate(key)).
		Query()
	return r.exec(ctx, "resolve topic completion", query, args)
}

func (r *completionRepo) RecordFailure(ctx context.Context, id int64, reason string) error {
	query, args := builder().Update("pending_completions").
		Add("attempts", 1).
		Set("last_error", reason).
		Set("updated_at", unixMillis(time.Now())).
		Where(entsql.EQ("id", id)).
		Query()
	return r.exec(ctx, "record completion failure", query, args)
}

func (r *completionRepo) exec(ctx context.Context, what, query string, args []any) error {
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
