package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/seta/internal/db"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const columns = `id, started_at, duration_ms, status, forced, recovered, model,
	files_found, files_processed, files_skipped, files_failed, files_deleted,
	chunks_written, store_chunks, error`

// Store reads and writes indexing runs.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a run. If run.ID is empty a UUID is generated.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_runs (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(),
		string(run.Status),
		run.Forced,
		run.Recovered,
		run.Model,
		run.FilesFound,
		run.FilesProcessed,
		run.FilesSkipped,
		run.FilesFailed,
		run.FilesDeleted,
		run.ChunksWritten,
		run.StoreChunks,
		run.Error,
	)
	if err != nil {
		return "", fmt.Errorf("inserting index run: %w", err)
	}
	return run.ID, nil
}

// Get retrieves a single run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM index_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// Filter controls which runs List returns.
type Filter struct {
	Status Status
	Since  *time.Time
	Limit  int
	Offset int
}

// List returns runs matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	query := "SELECT " + columns + " FROM index_runs"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Last returns the most recent run, or ErrNotFound.
func (s *Store) Last(ctx context.Context) (*Run, error) {
	runs, err := s.List(ctx, Filter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return &runs[0], nil
}

// DeleteBefore removes runs started before the given time and returns the
// number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM index_runs WHERE started_at < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old index runs: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r          Run
		started    string
		durationMS int64
		status     string
	)
	err := sc.Scan(
		&r.ID, &started, &durationMS, &status, &r.Forced, &r.Recovered, &r.Model,
		&r.FilesFound, &r.FilesProcessed, &r.FilesSkipped, &r.FilesFailed, &r.FilesDeleted,
		&r.ChunksWritten, &r.StoreChunks, &r.Error,
	)
	if err != nil {
		return nil, err
	}
	r.Status = Status(status)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if t, err := time.Parse(timeLayout, started); err == nil {
		r.StartedAt = t
	}
	return &r, nil
}
