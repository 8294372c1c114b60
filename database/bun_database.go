package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// DefaultDSN keeps the job log in memory for the life of the process
const DefaultDSN = "file::memory:?cache=shared"

// BunDB implements JobStore using Bun ORM on SQLite
type BunDB struct {
	db *bun.DB
}

// NewRepository opens the job log and brings its schema up to date
func NewRepository(dsn string) (*BunDB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	Logger.Info("Initializing sqlite job log with Bun ORM...", "dsn", dsn)

	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open job log: %w", err)
	}
	// one connection keeps a shared in-memory database alive and avoids
	// "table is locked" errors between concurrent requests
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	// Option to turn on verbose logging just returns failures otherwise
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(false)))

	result := &BunDB{db: db}
	if err := result.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	Logger.Info("Job log ready")
	return result, nil
}

// Close closes the database connection
func (b *BunDB) Close() error {
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
	}
	return nil
}

// CreateJob creates a new pending job
func (b *BunDB) CreateJob(jobType JobType, message string) (*Job, error) {
	ctx := context.Background()
	now := time.Now()
	jobID, err := CalculateUUID(now)
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:        jobID,
		Type:      jobType,
		Status:    JobStatusPending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = b.db.NewInsert().
		Model(FromJob(job)).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return job, nil
}

// UpdateJobProgress updates the progress of a job
func (b *BunDB) UpdateJobProgress(jobID ulid.ULID, progress int, currentStep string) error {
	ctx := context.Background()

	_, err := b.db.NewUpdate().
		Model((*BunJob)(nil)).
		Set("progress = ?", progress).
		Set("current_step = ?", currentStep).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", jobID.String()).
		Exec(ctx)

	return err
}

// UpdateJobStatus updates the status of a job
func (b *BunDB) UpdateJobStatus(jobID ulid.ULID, status JobStatus, message string) error {
	ctx := context.Background()
	now := time.Now()

	query := b.db.NewUpdate().
		Model((*BunJob)(nil)).
		Set("status = ?", status).
		Set("message = ?", message).
		Set("updated_at = ?", now)

	if status == JobStatusRunning {
		query = query.Set("started_at = COALESCE(started_at, ?)", now)
	}
	if status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled {
		query = query.Set("completed_at = ?", now)
	}

	_, err := query.Where("id = ?", jobID.String()).Exec(ctx)
	return err
}

// UpdateJobError marks a job failed with an error
func (b *BunDB) UpdateJobError(jobID ulid.ULID, errorMsg string) error {
	ctx := context.Background()
	now := time.Now()

	_, err := b.db.NewUpdate().
		Model((*BunJob)(nil)).
		Set("status = ?", JobStatusFailed).
		Set("error = ?", errorMsg).
		Set("updated_at = ?", now).
		Set("completed_at = ?", now).
		Where("id = ?", jobID.String()).
		Exec(ctx)

	return err
}

// CompleteJob marks a job as completed with optional result data
func (b *BunDB) CompleteJob(jobID ulid.ULID, result string) error {
	ctx := context.Background()
	now := time.Now()

	_, err := b.db.NewUpdate().
		Model((*BunJob)(nil)).
		Set("status = ?", JobStatusCompleted).
		Set("progress = ?", 100).
		Set("result = ?", result).
		Set("updated_at = ?", now).
		Set("completed_at = ?", now).
		Where("id = ?", jobID.String()).
		Exec(ctx)

	return err
}

// GetJob retrieves a job by ID
func (b *BunDB) GetJob(jobID ulid.ULID) (*Job, error) {
	ctx := context.Background()
	bunJob := new(BunJob)

	err := b.db.NewSelect().
		Model(bunJob).
		Where("id = ?", jobID.String()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return bunJob.ToJob()
}

// GetRecentJobs retrieves the most recent jobs with pagination
func (b *BunDB) GetRecentJobs(limit, offset int) ([]Job, error) {
	ctx := context.Background()
	var bunJobs []BunJob

	err := b.db.NewSelect().
		Model(&bunJobs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return bunJobsToJobs(bunJobs)
}

// GetActiveJobs retrieves all running or pending jobs
func (b *BunDB) GetActiveJobs() ([]Job, error) {
	ctx := context.Background()
	var bunJobs []BunJob

	err := b.db.NewSelect().
		Model(&bunJobs).
		Where("status IN (?)", bun.In([]string{string(JobStatusPending), string(JobStatusRunning)})).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return bunJobsToJobs(bunJobs)
}

// DeleteOldJobs deletes finished jobs that completed before now minus olderThan
func (b *BunDB) DeleteOldJobs(olderThan time.Duration) (int, error) {
	ctx := context.Background()
	cutoffTime := time.Now().Add(-olderThan)

	result, err := b.db.NewDelete().
		Model((*BunJob)(nil)).
		Where("status IN (?)", bun.In([]string{string(JobStatusCompleted), string(JobStatusFailed), string(JobStatusCancelled)})).
		Where("completed_at < ?", cutoffTime).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	count, err := result.RowsAffected()
	return int(count), err
}

func bunJobsToJobs(bunJobs []BunJob) ([]Job, error) {
	jobs := make([]Job, 0, len(bunJobs))
	for _, bunJob := range bunJobs {
		job, err := bunJob.ToJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}
