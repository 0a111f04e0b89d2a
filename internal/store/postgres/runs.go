package postgres

import (
	"context"
	"fmt"

	"cardbase/internal/store"

	"github.com/google/uuid"
)

// CreateRun inserts the initial pending state of a new run.
func (s *Store) CreateRun(ctx context.Context, run *store.Run) error {
	query := `
		INSERT INTO runs (id, job_name, status, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.JobName,
		run.Status,
		run.CreatedAt,
	)
	return err
}

// MarkRunning transitions a run to running and stamps started_at.
func (s *Store) MarkRunning(ctx context.Context, runID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = $1, started_at = NOW()
		WHERE id = $2
	`, store.RunStatusRunning, runID)
	return err
}

// CompleteRun marks the run as completed and saves the exit code.
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, exitCode int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = $1, exit_code = $2, finished_at = NOW()
		WHERE id = $3
	`, store.RunStatusCompleted, exitCode, runID)
	return err
}

// FailRun marks the run as failed and saves the exit code and message.
func (s *Store) FailRun(ctx context.Context, runID uuid.UUID, exitCode *int, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = $1, exit_code = $2, error_message = $3, finished_at = NOW()
		WHERE id = $4
	`, store.RunStatusFailed, exitCode, errMsg, runID)
	return err
}

// GetRun returns a run by its id.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*store.Run, error) {
	query := `
		SELECT id, job_name, status, started_at, finished_at, exit_code, error_message, created_at
		FROM runs WHERE id = $1
	`

	var run store.Run
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.ID,
		&run.JobName,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&run.ExitCode,
		&run.ErrorMessage,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit, offset int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, job_name, status, started_at, finished_at, exit_code, error_message, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		if err := rows.Scan(
			&run.ID,
			&run.JobName,
			&run.Status,
			&run.StartedAt,
			&run.FinishedAt,
			&run.ExitCode,
			&run.ErrorMessage,
			&run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AppendLog persists a chunk of log output for a run.
func (s *Store) AppendLog(ctx context.Context, runID uuid.UUID, content string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO run_logs (run_id, content) VALUES ($1, $2)", runID, content)
	return err
}

// ListLogs returns log entries for a run after the given id.
func (s *Store) ListLogs(ctx context.Context, runID uuid.UUID, afterID int64, limit int) ([]store.RunLog, error) {
	query := `
		SELECT id, run_id, content, created_at
		FROM run_logs
		WHERE run_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, runID, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []store.RunLog
	for rows.Next() {
		var entry store.RunLog
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Content, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// CountActive returns the number of runs currently pending or running.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM runs WHERE status IN ($1, $2)",
		store.RunStatusPending, store.RunStatusRunning).Scan(&count)
	return count, err
}
