package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a record key has never been written.
var ErrNotFound = errors.New("record not found")

// Storage keys for the two persisted records.
const (
	KeySettings = "settings"
	KeyHistory  = "history"
)

// RecordStore is the keyed text-record port the typed stores sit on.
// Values are serialized JSON; the port itself is format-agnostic.
type RecordStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SQLiteRecords persists records in the sqlite records table.
type SQLiteRecords struct {
	db *sql.DB
}

func NewSQLiteRecords(db *sql.DB) *SQLiteRecords {
	return &SQLiteRecords{db: db}
}

func (s *SQLiteRecords) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM records WHERE key = ?`,
		key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get record %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteRecords) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set record %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteRecords) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}
