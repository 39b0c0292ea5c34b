package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const schema = `
	CREATE TABLE IF NOT EXISTS library_events (
		seq BIGSERIAL PRIMARY KEY,
		id UUID NOT NULL UNIQUE,
		stream TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS library_events_stream_idx ON library_events (stream, seq);
`

// Postgres is a Journal backed by a library_events table.
type Postgres struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db:     db,
		tracer: otel.Tracer("librarysim/journal"),
	}
}

// EnsureSchema creates the events table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Append writes all events in one transaction.
func (p *Postgres) Append(ctx context.Context, events ...Event) error {
	ctx, span := p.tracer.Start(ctx, "journal.append",
		trace.WithAttributes(
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	for _, e := range events {
		if e.Stream == "" {
			return ErrEmptyStream
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO library_events (id, stream, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		_, err := stmt.ExecContext(ctx, e.ID, e.Stream, e.Type, []byte(e.Data), e.CreatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				span.SetAttributes(attribute.Bool("conflict.detected", true))
				return ErrConflict
			}
			span.RecordError(err)
			return fmt.Errorf("insert event %d: %w", i, err)
		}

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.String("event.stream", e.Stream),
			attribute.String("event.type", e.Type),
		))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Load returns a stream's events oldest first.
func (p *Postgres) Load(ctx context.Context, stream string) ([]Event, error) {
	ctx, span := p.tracer.Start(ctx, "journal.load",
		trace.WithAttributes(
			attribute.String("event.stream", stream),
		),
	)
	defer span.End()

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, stream, event_type, event_data, created_at
		FROM library_events
		WHERE stream = $1
		ORDER BY seq ASC
	`, stream)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var data []byte
		if err := rows.Scan(&e.ID, &e.Stream, &e.Type, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Data = data
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}
