package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwtly10/go-reqbench/internal/db"
	"github.com/jwtly10/go-reqbench/internal/state"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

var ErrNotFound = errors.New("history entry not found")

// Entry is a request snapshot saved by the user
type Entry struct {
	ID        uuid.UUID     `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Request   state.Request `json:"request"`
}

type Repository struct {
	db *db.Database
}

func NewRepository(db *db.Database) *Repository {
	return &Repository{db: db}
}

// Create stores req under a fresh id and returns the saved entry
func (r *Repository) Create(ctx context.Context, req state.Request) (*Entry, error) {
	entry := &Entry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Request:   req,
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO request_history (id, timestamp, method, url, headers, body)
        VALUES (?, ?, ?, ?, ?, ?)
    `, entry.ID.String(), entry.Timestamp, req.Method, req.URL, req.Headers, req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history entry: %w", err)
	}

	return entry, nil
}

// List returns up to limit entries, newest first. Out of range limits fall back to DefaultLimit / MaxLimit.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, timestamp, method, url, headers, body
        FROM request_history
        ORDER BY timestamp DESC, rowid DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return entries, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, timestamp, method, url, headers, body
        FROM request_history
        WHERE id = ?
    `, id.String())

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM request_history WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e  Entry
		id string
	)
	if err := s.Scan(&id, &e.Timestamp, &e.Request.Method, &e.Request.URL, &e.Request.Headers, &e.Request.Body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt history id %q: %w", id, err)
	}
	e.ID = parsed
	e.Timestamp = e.Timestamp.UTC()

	return &e, nil
}
