package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, user_id, prompt, context, status, progress, current_step,
	message, result, generated_code, diff, error_message, model_used,
	tokens_used, processing_time, created_at, started_at, completed_at, heartbeat_at`

func scanJob(row pgx.Row) (*AgentJob, error) {
	var job AgentJob
	var currentStep, message, generatedCode, diff, errorMessage, modelUsed *string
	err := row.Scan(&job.ID, &job.UserID, &job.Prompt, &job.Context, &job.Status,
		&job.Progress, &currentStep, &message, &job.Result, &generatedCode,
		&diff, &errorMessage, &modelUsed, &job.TokensUsed, &job.ProcessingTime,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt, &job.HeartbeatAt)
	if err != nil {
		return nil, err
	}
	if currentStep != nil {
		job.CurrentStep = *currentStep
	}
	if message != nil {
		job.Message = *message
	}
	if generatedCode != nil {
		job.GeneratedCode = *generatedCode
	}
	if diff != nil {
		job.Diff = *diff
	}
	if errorMessage != nil {
		job.ErrorMessage = *errorMessage
	}
	if modelUsed != nil {
		job.ModelUsed = *modelUsed
	}
	return &job, nil
}

// CreateJob inserts a new pending agent job.
func (db *DB) CreateJob(ctx context.Context, userID uuid.UUID, prompt string, contextJSON []byte, modelUsed string) (*AgentJob, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO agent_jobs (user_id, prompt, context, status, model_used)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+jobColumns,
		userID, prompt, contextJSON, JobStatusPending, modelUsed,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a job owned by the given user.
func (db *DB) GetJob(ctx context.Context, jobID, userID uuid.UUID) (*AgentJob, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM agent_jobs WHERE id = $1 AND user_id = $2`,
		jobID, userID,
	)
	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs retrieves a user's jobs, newest first.
func (db *DB) ListJobs(ctx context.Context, userID uuid.UUID, limit int) ([]AgentJob, error) {
	if limit == 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM agent_jobs
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []AgentJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// StartJob transitions a pending job to processing and stamps the start and
// heartbeat times. The status guard makes the transition happen at most once.
func (db *DB) StartJob(ctx context.Context, jobID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE agent_jobs
		 SET status = $1, started_at = NOW(), heartbeat_at = NOW()
		 WHERE id = $2 AND status = $3`,
		JobStatusProcessing, jobID, JobStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is not pending", jobID)
	}
	return nil
}

// HeartbeatJob renews the processing lease on an in-flight job.
func (db *DB) HeartbeatJob(ctx context.Context, jobID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE agent_jobs SET heartbeat_at = NOW() WHERE id = $1 AND status = $2`,
		jobID, JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to heartbeat job: %w", err)
	}
	return nil
}

// CompleteJob marks a processing job completed and persists its outputs.
// Terminal states never transition again; the status guard enforces that.
func (db *DB) CompleteJob(ctx context.Context, jobID uuid.UUID, resultJSON []byte, generatedCode, diff, currentStep, message string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE agent_jobs
		 SET status = $1, progress = 100, current_step = $2, message = $3,
		     result = $4, generated_code = $5, diff = $6, completed_at = NOW(),
		     processing_time = EXTRACT(EPOCH FROM (NOW() - started_at))
		 WHERE id = $7 AND status = $8`,
		JobStatusCompleted, currentStep, message, resultJSON, generatedCode, diff,
		jobID, JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is not processing", jobID)
	}
	return nil
}

// FailJob marks a job failed with the fault's description. Allowed from
// pending (queue admission failure) or processing; no partial outputs are
// persisted on failure.
func (db *DB) FailJob(ctx context.Context, jobID uuid.UUID, errorMessage string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE agent_jobs
		 SET status = $1, error_message = $2, completed_at = NOW(),
		     processing_time = COALESCE(EXTRACT(EPOCH FROM (NOW() - started_at)), 0)
		 WHERE id = $3 AND status IN ($4, $5)`,
		JobStatusFailed, errorMessage, jobID, JobStatusPending, JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is already terminal", jobID)
	}
	return nil
}

// RecoverStaleJobs marks processing jobs whose heartbeat is older than the
// lease window as failed. Called on startup so jobs orphaned by a crashed
// worker do not sit in processing forever. Returns the number recovered.
func (db *DB) RecoverStaleJobs(ctx context.Context, lease time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE agent_jobs
		 SET status = $1, error_message = 'worker lost: heartbeat expired',
		     completed_at = NOW(),
		     processing_time = COALESCE(EXTRACT(EPOCH FROM (NOW() - started_at)), 0)
		 WHERE status = $2 AND heartbeat_at < NOW() - $3::interval`,
		JobStatusFailed, JobStatusProcessing,
		fmt.Sprintf("%f seconds", lease.Seconds()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to recover stale jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}
