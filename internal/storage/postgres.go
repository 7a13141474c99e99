package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sdo_events (
    id           TEXT PRIMARY KEY,
    start_time   TIMESTAMPTZ NOT NULL,
    end_time     TIMESTAMPTZ,
    instrument   TEXT NOT NULL,
    comment      TEXT NOT NULL,
    source       TEXT NOT NULL,
    merged_count INTEGER NOT NULL DEFAULT 1,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS sdo_events_start_idx ON sdo_events (start_time);`

const upsertSQL = `INSERT INTO sdo_events (id, start_time, end_time, instrument, comment, source, merged_count, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
ON CONFLICT (id) DO UPDATE
SET start_time = EXCLUDED.start_time,
    end_time = EXCLUDED.end_time,
    instrument = EXCLUDED.instrument,
    comment = EXCLUDED.comment,
    source = EXCLUDED.source,
    merged_count = EXCLUDED.merged_count,
    updated_at = NOW()`

// Postgres exports timelines to a PostgreSQL table
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and verifies the connection
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool
func (p *Postgres) Close() {
	p.pool.Close()
}

// EnsureSchema creates the events table if it does not exist
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// UpsertEvents writes events in one batch, replacing rows with the same ID
func (p *Postgres) UpsertEvents(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(upsertSQL, e.ID, e.Start, nullTime(e.End), string(e.Instrument), e.Comment, e.Source, e.Count)
	}

	res := p.pool.SendBatch(ctx, batch)
	defer res.Close() // nolint:errcheck

	for range events {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upserting events: %w", err)
		}
	}

	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
