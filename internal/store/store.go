// Package store provides optional PostgreSQL persistence of run results.
// The pipeline works fully without it; it is wired in only when a database
// URL is configured.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrii-d/autoapply/internal/types"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the runs and postings tables when they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS postings (
			run_id UUID NOT NULL REFERENCES runs(id),
			source TEXT NOT NULL,
			posting_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			price TEXT,
			link TEXT,
			discovered_at TIMESTAMPTZ,
			reply_text TEXT,
			reply_generated BOOLEAN NOT NULL DEFAULT FALSE,
			submission_status TEXT NOT NULL,
			submission_message TEXT,
			PRIMARY KEY (run_id, source, posting_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun records the start of a pipeline run.
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO runs (id) VALUES ($1)`, runID)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a run as finished.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE runs SET completed_at = NOW() WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveRun persists one finished run and all its postings.
func (db *DB) SaveRun(ctx context.Context, runID uuid.UUID, postings []types.Posting) error {
	if err := db.CreateRun(ctx, runID); err != nil {
		return err
	}
	if err := db.SavePostings(ctx, runID, postings); err != nil {
		return err
	}
	return db.CompleteRun(ctx, runID)
}

// SavePostings stores the final state of every posting of a run, outcome
// annotations included.
func (db *DB) SavePostings(ctx context.Context, runID uuid.UUID, postings []types.Posting) error {
	for i := range postings {
		p := &postings[i]
		_, err := db.pool.Exec(ctx, `
			INSERT INTO postings (
				run_id, source, posting_id, title, description, price, link,
				discovered_at, reply_text, reply_generated,
				submission_status, submission_message
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (run_id, source, posting_id) DO NOTHING`,
			runID, p.Source, p.ID, p.Title, p.Description, p.Price, p.Link,
			p.DiscoveredAt, p.ReplyText, p.ReplyGenerated,
			string(p.SubmissionStatus), p.SubmissionMessage,
		)
		if err != nil {
			return fmt.Errorf("failed to save posting %s: %w", p.Key(), err)
		}
	}
	return nil
}
