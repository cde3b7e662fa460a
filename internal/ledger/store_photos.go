package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const photoColumns = "id, source_ref, file_name, target_ref, status, error_message, claimed_by, claimed_at, created_at, updated_at"

// Add registers a source ref as needing migration. The ledger is keyed on
// source_ref, so registering the same ref twice returns the existing row with
// created=false instead of duplicating it.
func (s *Store) Add(ctx context.Context, sourceRef, fileName string) (*Photo, bool, error) {
	if sourceRef == "" {
		return nil, false, errors.New("source ref is required")
	}
	now := formatTime(time.Now())

	res, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO photos (source_ref, file_name, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		sourceRef,
		nullableString(fileName),
		StatusPending,
		now,
		now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert photo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	photo, err := s.GetBySourceRef(ctx, sourceRef)
	if err != nil {
		return nil, false, err
	}
	if photo == nil {
		return nil, false, fmt.Errorf("photo %q missing after insert", sourceRef)
	}
	return photo, affected > 0, nil
}

// GetByID fetches a ledger row by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Photo, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+photoColumns+` FROM photos WHERE id = ?`, id)
	photo, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return photo, nil
}

// GetBySourceRef fetches a ledger row by its source reference.
func (s *Store) GetBySourceRef(ctx context.Context, sourceRef string) (*Photo, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+photoColumns+` FROM photos WHERE source_ref = ?`,
		sourceRef,
	)
	photo, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo by source ref: %w", err)
	}
	return photo, nil
}

// List returns ledger rows filtered by status set (or all rows when no status
// is provided), ordered by id.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Photo, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + photoColumns + ` FROM photos`
	orderClause := ` ORDER BY id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ensureContext(ctx), query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

// ClaimBatch claims up to limit photos for owner. Eligible rows are pending,
// or claimed with a lease older than leaseTimeout (abandoned by a dead
// worker). Each claim is a conditional single-row update re-checking
// eligibility, so two concurrent claimers can never both win the same row.
func (s *Store) ClaimBatch(ctx context.Context, owner string, limit int, leaseTimeout time.Duration) ([]*Photo, error) {
	if owner == "" {
		return nil, errors.New("claim owner is required")
	}
	if limit <= 0 {
		return nil, nil
	}
	ctx = ensureContext(ctx)

	now := time.Now()
	cutoff := formatTime(now.Add(-leaseTimeout))

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id FROM photos
         WHERE status = ? OR (status = ? AND (claimed_at IS NULL OR claimed_at < ?))
         ORDER BY id LIMIT ?`,
		StatusPending,
		StatusClaimed,
		cutoff,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select claim candidates: %w", err)
	}
	var candidates []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan claim candidate: %w", err)
		}
		candidates = append(candidates, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate claim candidates: %w", err)
	}
	rows.Close()

	claimed := make([]*Photo, 0, len(candidates))
	timestamp := formatTime(now)
	for _, id := range candidates {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE photos
             SET status = ?, claimed_by = ?, claimed_at = ?, updated_at = ?
             WHERE id = ? AND (status = ? OR (status = ? AND (claimed_at IS NULL OR claimed_at < ?)))`,
			StatusClaimed,
			owner,
			timestamp,
			timestamp,
			id,
			StatusPending,
			StatusClaimed,
			cutoff,
		)
		if err != nil {
			return claimed, fmt.Errorf("claim photo %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return claimed, fmt.Errorf("claim rows affected: %w", err)
		}
		if affected == 0 {
			// Lost the race to another claimer.
			continue
		}
		photo, err := s.GetByID(ctx, id)
		if err != nil {
			return claimed, err
		}
		if photo != nil {
			claimed = append(claimed, photo)
		}
	}
	return claimed, nil
}

// MarkDone records a successful migration, clearing claim fields. The write is
// conditional on the caller still owning the claim; a worker finishing after
// its lease expired and the row was reclaimed loses quietly, which is safe
// because the target write is an idempotent overwrite.
func (s *Store) MarkDone(ctx context.Context, id int64, owner, targetRef string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE photos
         SET status = ?, target_ref = ?, error_message = NULL,
             claimed_by = NULL, claimed_at = NULL, updated_at = ?
         WHERE id = ? AND status = ? AND claimed_by = ?`,
		StatusDone,
		targetRef,
		formatTime(time.Now()),
		id,
		StatusClaimed,
		owner,
	)
	if err != nil {
		return false, fmt.Errorf("mark photo done: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark done rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkError records a failed migration attempt, clearing claim fields. Like
// MarkDone, the write requires claim ownership.
func (s *Store) MarkError(ctx context.Context, id int64, owner, message string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE photos
         SET status = ?, error_message = ?, claimed_by = NULL, claimed_at = NULL, updated_at = ?
         WHERE id = ? AND status = ? AND claimed_by = ?`,
		StatusError,
		message,
		formatTime(time.Now()),
		id,
		StatusClaimed,
		owner,
	)
	if err != nil {
		return false, fmt.Errorf("mark photo error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark error rows affected: %w", err)
	}
	return affected > 0, nil
}

// RetryErrors moves every error row back to pending, clearing the error
// message and claim fields, and returns the count transitioned.
func (s *Store) RetryErrors(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE photos
         SET status = ?, error_message = NULL, claimed_by = NULL, claimed_at = NULL, updated_at = ?
         WHERE status = ?`,
		StatusPending,
		formatTime(time.Now()),
		StatusError,
	)
	if err != nil {
		return 0, fmt.Errorf("retry error photos: %w", err)
	}
	return res.RowsAffected()
}

// Counts returns the per-status row counts using the status index only.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM photos GROUP BY status`)
	if err != nil {
		return Counts{}, fmt.Errorf("ledger counts: %w", err)
	}
	defer rows.Close()

	counts := Counts{}
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Counts{}, err
		}
		counts.Total += count
		switch status {
		case StatusPending:
			counts.Pending = count
		case StatusClaimed:
			counts.Claimed = count
		case StatusDone:
			counts.Done = count
		case StatusError:
			counts.Error = count
		}
	}
	return counts, rows.Err()
}

func scanPhoto(scanner interface{ Scan(dest ...any) error }) (*Photo, error) {
	var (
		id           int64
		sourceRef    string
		fileName     sql.NullString
		targetRef    sql.NullString
		statusStr    string
		errorMessage sql.NullString
		claimedBy    sql.NullString
		claimedAtRaw sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourceRef,
		&fileName,
		&targetRef,
		&statusStr,
		&errorMessage,
		&claimedBy,
		&claimedAtRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	photo := &Photo{
		ID:           id,
		SourceRef:    sourceRef,
		FileName:     fileName.String,
		TargetRef:    targetRef.String,
		Status:       Status(statusStr),
		ErrorMessage: errorMessage.String,
		ClaimedBy:    claimedBy.String,
	}
	if claimedAtRaw.Valid {
		if claimedAt, err := parseTimeString(claimedAtRaw.String); err == nil {
			photo.ClaimedAt = &claimedAt
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		photo.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		photo.UpdatedAt = updated
	}
	return photo, nil
}
