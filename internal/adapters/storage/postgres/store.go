package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq" // PostgreSQL driver

	"github.com/PabloGalante/farum-router/internal/domain"
)

// uniqueViolation is the SQLSTATE postgres reports for duplicate keys.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS utterance_log (
	id          TEXT PRIMARY KEY,
	request_id  TEXT NOT NULL DEFAULT '',
	text        TEXT NOT NULL,
	received_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS utterance_log_received_at_idx ON utterance_log (received_at DESC);
`

// Store is a PostgreSQL implementation of domain.UtteranceLog.
type Store struct {
	db *sql.DB
}

// New wraps an open connection. Call EnsureSchema before first use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Connect opens and verifies a connection pool for dsn.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres EnsureSchema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Append(ctx context.Context, entry *domain.UtteranceEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		return fmt.Errorf("postgres Append: entry id is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO utterance_log (id, request_id, text, received_at)
		VALUES ($1, $2, $3, $4)
	`, string(entry.ID), string(entry.RequestID), entry.Text, entry.ReceivedAt.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("utterance %s already recorded", entry.ID)
		}
		return fmt.Errorf("postgres Append: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, oldest first. limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]*domain.UtteranceEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, request_id, text, received_at FROM (
				SELECT id, request_id, text, received_at
				FROM utterance_log
				ORDER BY received_at DESC
				LIMIT $1
			) recent
			ORDER BY received_at ASC
		`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, request_id, text, received_at
			FROM utterance_log
			ORDER BY received_at ASC
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres Recent: %w", err)
	}
	defer rows.Close()

	out := []*domain.UtteranceEntry{}
	for rows.Next() {
		var id, reqID string
		e := &domain.UtteranceEntry{}
		if err := rows.Scan(&id, &reqID, &e.Text, &e.ReceivedAt); err != nil {
			return nil, fmt.Errorf("postgres Recent scan: %w", err)
		}
		e.ID = domain.EntryID(id)
		e.RequestID = domain.RequestID(reqID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres Recent: %w", err)
	}
	return out, nil
}
