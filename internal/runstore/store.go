package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	apperrors "creditprep/internal/errors"
)

// Run statuses as stored in the database.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         string
	Split      string
	StartedAt  time.Time
	FinishedAt time.Time
	Rows       int
	Columns    int
	Status     string
	Error      string
}

// Store records pipeline runs in a local SQLite database so operators can
// see what was produced when, and from which invocation.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	split TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	row_count INTEGER,
	column_count INTEGER,
	status TEXT NOT NULL,
	error TEXT
);
`

// Open opens the run database at path, creating the file and the schema
// when absent. A nil logger falls back to slog.Default().
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("opening run database %s", path), err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("creating runs table", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Begin records the start of a run and returns it with a fresh ID.
func (s *Store) Begin(ctx context.Context, split string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Split:     split,
		StartedAt: time.Now().UTC(),
		Status:    StatusRunning,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, split, started_at, status) VALUES (?, ?, ?, ?)`,
		run.ID, run.Split, run.StartedAt, run.Status)
	if err != nil {
		return nil, apperrors.NewStorageError("recording run start", err)
	}
	s.logger.DebugContext(ctx, "run started",
		slog.String("run_id", run.ID),
		slog.String("split", split))
	return run, nil
}

// Finish marks the run completed, or failed when runErr is non-nil, and
// stores the output shape.
func (s *Store) Finish(ctx context.Context, run *Run, rows, columns int, runErr error) error {
	run.FinishedAt = time.Now().UTC()
	run.Rows = rows
	run.Columns = columns
	if runErr != nil {
		run.Status = StatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = StatusCompleted
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, row_count = ?, column_count = ?, status = ?, error = ? WHERE id = ?`,
		run.FinishedAt, run.Rows, run.Columns, run.Status, run.Error, run.ID)
	if err != nil {
		return apperrors.NewStorageError("recording run finish", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, split, started_at, finished_at, COALESCE(row_count, 0), COALESCE(column_count, 0), status, COALESCE(error, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("listing runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Split, &run.StartedAt, &finished,
			&run.Rows, &run.Columns, &run.Status, &run.Error); err != nil {
			return nil, apperrors.NewStorageError("scanning run row", err)
		}
		if finished.Valid {
			run.FinishedAt = finished.Time
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("reading run rows", err)
	}
	return runs, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
