package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) ensureRun(ctx context.Context) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO migration_run (id, status, version) VALUES (1, ?, 0)`,
		RunIdle,
	)
	if err != nil {
		return fmt.Errorf("ensure run record: %w", err)
	}
	return nil
}

// Run reads the singleton run record.
func (s *Store) Run(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT status, batch_size, concurrency, quality, max_width,
                started_at, completed_at, last_updated_at, version
         FROM migration_run WHERE id = 1`,
	)

	var (
		statusStr    string
		batchSize    int
		concurrency  int
		quality      int
		maxWidth     int
		startedRaw   sql.NullString
		completedRaw sql.NullString
		updatedRaw   sql.NullString
		version      int64
	)
	if err := row.Scan(
		&statusStr,
		&batchSize,
		&concurrency,
		&quality,
		&maxWidth,
		&startedRaw,
		&completedRaw,
		&updatedRaw,
		&version,
	); err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}

	run := &Run{
		Status: RunStatus(statusStr),
		Config: RunConfig{
			BatchSize:   batchSize,
			Concurrency: concurrency,
			Quality:     quality,
			MaxWidth:    maxWidth,
		},
		Version: version,
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			run.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			run.CompletedAt = &completed
		}
	}
	if updatedRaw.Valid {
		if updated, err := parseTimeString(updatedRaw.String); err == nil {
			run.LastUpdatedAt = &updated
		}
	}
	return run, nil
}

// UpdateRun writes the run record conditionally on the version the caller
// read. A concurrent writer bumps the version first and this call returns
// ErrRunConflict without mutating anything; the caller re-reads and decides
// whether its transition still applies. On success run.Version and
// run.LastUpdatedAt reflect the stored row.
func (s *Store) UpdateRun(ctx context.Context, run *Run) error {
	if run == nil {
		return fmt.Errorf("run is nil")
	}
	now := time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`UPDATE migration_run
         SET status = ?, batch_size = ?, concurrency = ?, quality = ?, max_width = ?,
             started_at = ?, completed_at = ?, last_updated_at = ?, version = version + 1
         WHERE id = 1 AND version = ?`,
		run.Status,
		run.Config.BatchSize,
		run.Config.Concurrency,
		run.Config.Quality,
		run.Config.MaxWidth,
		nullableTime(run.StartedAt),
		nullableTime(run.CompletedAt),
		formatTime(now),
		run.Version,
	)
	if err != nil {
		return fmt.Errorf("update run record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("run rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRunConflict
	}
	run.Version++
	run.LastUpdatedAt = &now
	return nil
}

// TouchRun refreshes last_updated_at without a version bump. Used by the
// orchestrator between batches as a liveness signal for polling clients.
func (s *Store) TouchRun(ctx context.Context) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE migration_run SET last_updated_at = ? WHERE id = 1`,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("touch run record: %w", err)
	}
	return nil
}
