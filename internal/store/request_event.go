package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert("request_events").
		Columns("sequence", "request_id", "origin", "action", "user_id",
			"latency_ms", "success", "error_message", "created_at").
		Values(seqNum, data.RequestID, data.Origin, data.Action, data.UserID,
			data.LatencyMs, data.Success, data.ErrorMessage, unixMillis(time.Now())).
		Query()
	if _, err := execQuery(ctx, r.drv, query, args); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentRequests(ctx context.Context, limit int) ([]RequestEvent, error) {
	sel := builder().Select("sequence", "request_id", "origin", "action", "user_id",
		"latency_ms", "success", "error_message", "created_at").
		From(entsql.Table("request_events")).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	var events []RequestEvent
	err := scanAll(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var e RequestEvent
		var createdAt int64
		if err := rows.Scan(&e.Sequence, &e.RequestID, &e.Origin, &e.Action, &e.UserID,
			&e.LatencyMs, &e.Success, &e.ErrorMessage, &createdAt); err != nil {
			return err
		}
		e.Timestamp = fromMillis(createdAt)
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	return events, nil
}
