/**
 * PostgreSQL job store.
 *
 * The store is also the dispatch queue: ClaimOldestPending atomically flips
 * the oldest PENDING row to PROCESSING using FOR UPDATE SKIP LOCKED, so any
 * number of scheduler processes can race on the same table and each job is
 * handed to at most one worker.
 */

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// StuckThreshold is how long a PROCESSING row may sit without an updated_at
// bump before it counts as stuck.
const StuckThreshold = 10 * time.Minute

var (
	ErrNotFound      = errors.New("job not found")
	ErrJobProcessing = errors.New("job is processing")
)

// Store wraps the jobs table.
type Store struct {
	db *sql.DB
}

// New opens a connection pool against databaseURL and verifies it.
func New(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle. Used by tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the jobs table and the dispatch index.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS jobs (
			id               UUID PRIMARY KEY,
			status           TEXT NOT NULL,
			document_type    TEXT NOT NULL DEFAULT '',
			email            TEXT NOT NULL DEFAULT '',
			callback_webhook TEXT NOT NULL DEFAULT '',
			file_data        BYTEA NOT NULL,
			file_name        TEXT NOT NULL DEFAULT '',
			mime_type        TEXT NOT NULL DEFAULT '',
			ocr_result       TEXT,
			error_message    TEXT,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			processed_at     TIMESTAMPTZ
		)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}

	const index = `
		CREATE INDEX IF NOT EXISTS idx_jobs_status_created_at
		ON jobs (status, created_at)`
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("failed to create dispatch index: %w", err)
	}
	return nil
}

// CreateJob inserts a fresh PENDING row and returns it.
func (s *Store) CreateJob(ctx context.Context, in NewJob) (*Job, error) {
	id := uuid.NewString()

	const query = `
		INSERT INTO jobs (
			id, status, document_type, email, callback_webhook,
			file_data, file_name, mime_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	job := &Job{
		ID:              id,
		Status:          StatusPending,
		DocumentType:    in.DocumentType,
		Email:           in.Email,
		CallbackWebhook: in.CallbackWebhook,
		FileName:        in.FileName,
		MimeType:        in.MimeType,
		FileSizeBytes:   int64(len(in.FileData)),
	}

	err := s.db.QueryRowContext(
		ctx, query,
		id, StatusPending, in.DocumentType, in.Email, in.CallbackWebhook,
		in.FileData, in.FileName, in.MimeType,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return job, nil
}

const jobColumns = `
	id, status, document_type, email, callback_webhook,
	file_name, mime_type, ocr_result, error_message,
	created_at, updated_at, processed_at, length(file_data)`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var job Job
	var ocrResult, errorMessage sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(
		&job.ID, &job.Status, &job.DocumentType, &job.Email, &job.CallbackWebhook,
		&job.FileName, &job.MimeType, &ocrResult, &errorMessage,
		&job.CreatedAt, &job.UpdatedAt, &processedAt, &job.FileSizeBytes,
	)
	if err != nil {
		return nil, err
	}

	if ocrResult.Valid {
		job.OCRResult = &ocrResult.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = &errorMessage.String
	}
	if processedAt.Valid {
		job.ProcessedAt = &processedAt.Time
	}
	return &job, nil
}

// GetJob returns a job without its file bytes.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	query := `SELECT` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns a newest-first page, optionally filtered by status, plus
// the total row count for the filter.
func (s *Store) ListJobs(ctx context.Context, status Status, limit, offset int) ([]*Job, int, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM jobs " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT%s FROM jobs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return jobs, total, nil
}

// CountByStatus returns per-status row totals.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()

	counts := map[Status]int{
		StatusPending:    0,
		StatusProcessing: 0,
		StatusCompleted:  0,
		StatusFailed:     0,
	}
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// ClaimOldestPending flips the oldest PENDING row to PROCESSING and returns
// it with its file bytes. Returns (nil, nil) when no PENDING row exists.
// The SKIP LOCKED subquery guarantees at most one claimer per row even with
// multiple scheduler processes.
func (s *Store) ClaimOldestPending(ctx context.Context) (*Job, error) {
	const query = `
		UPDATE jobs SET status = $1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = $2
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, status, document_type, email, callback_webhook,
			file_data, file_name, mime_type, created_at, updated_at`

	var job Job
	err := s.db.QueryRowContext(ctx, query, StatusProcessing, StatusPending).Scan(
		&job.ID, &job.Status, &job.DocumentType, &job.Email, &job.CallbackWebhook,
		&job.FileData, &job.FileName, &job.MimeType, &job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	job.FileSizeBytes = int64(len(job.FileData))
	return &job, nil
}

// Finalize writes the terminal fields. A zero-row update is not an error:
// the row may have been deleted or reset under the worker.
func (s *Store) Finalize(ctx context.Context, id string, status Status, result, errorMessage *string) error {
	if status != StatusCompleted && status != StatusFailed {
		return fmt.Errorf("invalid terminal status: %s", status)
	}

	const query = `
		UPDATE jobs
		SET status = $2, ocr_result = $3, error_message = $4,
			processed_at = NOW(), updated_at = NOW()
		WHERE id = $1`

	if _, err := s.db.ExecContext(ctx, query, id, status, result, errorMessage); err != nil {
		return fmt.Errorf("failed to finalize job %s: %w", id, err)
	}
	return nil
}

// ResetToPending puts a job back into the dispatch queue, clearing its
// terminal fields.
func (s *Store) ResetToPending(ctx context.Context, id string) (*Job, error) {
	query := `
		UPDATE jobs
		SET status = $2, error_message = NULL, processed_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING` + jobColumns

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id, StatusPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reset job %s: %w", id, err)
	}
	return job, nil
}

// MarkFailed is the admin PATCH path for status=FAILED: sets the error
// message and stamps processed_at.
func (s *Store) MarkFailed(ctx context.Context, id, errorMessage string) (*Job, error) {
	query := `
		UPDATE jobs
		SET status = $2, error_message = $3, processed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING` + jobColumns

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id, StatusFailed, errorMessage))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark job %s failed: %w", id, err)
	}
	return job, nil
}

// DeleteJob removes a row. PROCESSING rows are protected unless force is
// set.
func (s *Store) DeleteJob(ctx context.Context, id string, force bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	var status Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", id, err)
	}

	if status == StatusProcessing && !force {
		return ErrJobProcessing
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return tx.Commit()
}

// StuckJobs lists PROCESSING rows whose updated_at is older than the stuck
// threshold.
func (s *Store) StuckJobs(ctx context.Context) ([]StuckJob, error) {
	const query = `
		SELECT id, file_name, updated_at
		FROM jobs
		WHERE status = $1 AND updated_at < NOW() - $2::interval
		ORDER BY updated_at ASC`

	interval := fmt.Sprintf("%d seconds", int(StuckThreshold.Seconds()))
	rows, err := s.db.QueryContext(ctx, query, StatusProcessing, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to query stuck jobs: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var stuck []StuckJob
	for rows.Next() {
		var j StuckJob
		if err := rows.Scan(&j.ID, &j.FileName, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stuck job: %w", err)
		}
		j.StuckFor = now.Sub(j.UpdatedAt)
		stuck = append(stuck, j)
	}
	return stuck, rows.Err()
}

// GetStats aggregates the admin dashboard numbers.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	counts, err := s.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var lastHour int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE created_at > NOW() - INTERVAL '1 hour'`,
	).Scan(&lastHour)
	if err != nil {
		return nil, fmt.Errorf("failed to count last-hour jobs: %w", err)
	}

	stuck, err := s.StuckJobs(ctx)
	if err != nil {
		return nil, err
	}

	// Average wall time of the last 100 completions.
	var avgMs float64
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (processed_at - created_at)) * 1000), 0)
		FROM (
			SELECT processed_at, created_at FROM jobs
			WHERE status = $1 AND processed_at IS NOT NULL
			ORDER BY processed_at DESC
			LIMIT 100
		) recent`, StatusCompleted,
	).Scan(&avgMs)
	if err != nil {
		return nil, fmt.Errorf("failed to average processing time: %w", err)
	}

	return &Stats{
		CountsByStatus:      counts,
		LastHourCount:       lastHour,
		StuckJobs:           stuck,
		AvgProcessingTimeMs: int64(avgMs),
	}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
