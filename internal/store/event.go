package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var eventColumns = []string{
	"id", "created_at", "kind", "request_id", "op", "target", "status",
	"latency_ms", "success", "error_message", "input_tokens", "output_tokens",
	"request_body", "response_body",
}

// eventRepo implements EventRepo on the events table.
type eventRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

func (r *eventRepo) AppendAPIRequest(ctx context.Context, data APIRequestEventData) error {
	return r.insert(ctx, Event{
		Timestamp:    time.Now(),
		Kind:         KindAPI,
		RequestID:    data.RequestID,
		Op:           data.Op,
		Target:       data.Method + " " + data.Path,
		Status:       data.Status,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
	})
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.insert(ctx, Event{
		Timestamp:    time.Now(),
		Kind:         KindLLM,
		RequestID:    data.Provider,
		Op:           data.Purpose,
		Target:       data.Model,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
		InputTokens:  data.InputTokens,
		OutputTokens: data.OutputTokens,
		RequestBody:  data.RequestBody,
		ResponseBody: data.ResponseBody,
	})
}

func (r *eventRepo) insert(ctx context.Context, e Event) error {
	q, args := r.b.Insert("events").
		Columns(eventColumns[1:]...).
		Values(
			e.Timestamp.UnixMilli(), e.Kind, e.RequestID, e.Op, e.Target, e.Status,
			e.LatencyMs, boolToInt(e.Success), e.ErrorMessage, e.InputTokens, e.OutputTokens,
			e.RequestBody, e.ResponseBody,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save %s event: %w", e.Kind, err)
	}
	return nil
}

func (r *eventRepo) QueryEvents(ctx context.Context, opts QueryOpts) ([]Event, error) {
	sel := r.b.Select(eventColumns...).From(r.b.Table("events"))

	var preds []*entsql.Predicate
	if opts.Kind != "" {
		preds = append(preds, entsql.EQ("kind", opts.Kind))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("id", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("id", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	q, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetEvent(ctx context.Context, id int) (*Event, error) {
	q, args := r.b.Select(eventColumns...).
		From(r.b.Table("events")).
		Where(entsql.EQ("id", id)).
		Query()

	e, err := scanEvent(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		e       Event
		created int64
		success int
	)
	err := row.Scan(
		&e.ID, &created, &e.Kind, &e.RequestID, &e.Op, &e.Target, &e.Status,
		&e.LatencyMs, &success, &e.ErrorMessage, &e.InputTokens, &e.OutputTokens,
		&e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.Timestamp = time.UnixMilli(created)
	e.Success = success != 0
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
