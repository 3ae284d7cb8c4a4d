// Package store persists the history of completed organize operations so
// repeated runs can report what was moved where.
package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"snapsort/internal/model"
)

type HistoryEntry struct {
	ID           int64
	OriginalPath string
	NewPath      string
	Category     string
	Operation    string
	Method       string
	Success      bool
	Error        string
	CreatedUnix  int64
}

type CategoryCount struct {
	Category string
	Count    int64
}

type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return err
	}

	schema := `
CREATE TABLE IF NOT EXISTS organize_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  original_path TEXT NOT NULL,
  new_path TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  operation TEXT NOT NULL DEFAULT 'move',
  method TEXT NOT NULL DEFAULT '',
  success INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT '',
  created_unix INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_history_category ON organize_history(category);
CREATE INDEX IF NOT EXISTS idx_history_created ON organize_history(created_unix);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// RecordMove appends one organize record. category and method are the
// classification outcome that led to the move, kept for stats.
func (s *SQLiteStore) RecordMove(ctx context.Context, rec model.OrganizeRecord, category, method string) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(
		ctx,
		`INSERT INTO organize_history(original_path, new_path, category, operation, method, success, error, created_unix)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.OriginalPath,
		rec.NewPath,
		category,
		rec.Operation,
		method,
		boolToInt(rec.Success),
		rec.Error,
		time.Now().Unix(),
	)
	return err
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT id, original_path, new_path, category, operation, method, success, error, created_unix
		 FROM organize_history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entries := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var e HistoryEntry
		var success int
		if err := rows.Scan(
			&e.ID,
			&e.OriginalPath,
			&e.NewPath,
			&e.Category,
			&e.Operation,
			&e.Method,
			&success,
			&e.Error,
			&e.CreatedUnix,
		); err != nil {
			return nil, err
		}
		e.Success = success == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns successful move counts grouped by category, most active
// category first.
func (s *SQLiteStore) Stats(ctx context.Context) ([]CategoryCount, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT category, COUNT(*) FROM organize_history
		 WHERE success = 1 GROUP BY category ORDER BY COUNT(*) DESC, category`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) ensureDB(ctx context.Context) (*sql.DB, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("sqlite db not initialized")
	}
	return s.db, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
