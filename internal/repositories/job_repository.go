package repositories

import (
	"database/sql"
	"sync"

	"github.com/laurelhq/laurel/internal/models"
)

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job
func (r *JobRepository) Create(job *models.Job) error {
	query := `
		INSERT INTO jobs (id, job_type, status, error_message, started_at, completed_at, worker_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		job.ID,
		job.JobType,
		job.Status,
		job.ErrorMessage,
		job.StartedAt,
		job.CompletedAt,
		job.WorkerID,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	query := `
		SELECT id, job_type, status, error_message, started_at, completed_at, worker_id, created_at, updated_at
		FROM jobs WHERE id = ?
	`

	job := &models.Job{}
	err := r.db.QueryRow(query, id).Scan(
		&job.ID,
		&job.JobType,
		&job.Status,
		&job.ErrorMessage,
		&job.StartedAt,
		&job.CompletedAt,
		&job.WorkerID,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return job, nil
}

// List retrieves the most recent jobs
func (r *JobRepository) List(limit int) ([]*models.Job, error) {
	query := `
		SELECT id, job_type, status, error_message, started_at, completed_at, worker_id, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job := &models.Job{}
		err := rows.Scan(
			&job.ID,
			&job.JobType,
			&job.Status,
			&job.ErrorMessage,
			&job.StartedAt,
			&job.CompletedAt,
			&job.WorkerID,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// Update updates an existing job
func (r *JobRepository) Update(job *models.Job) error {
	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, started_at = ?, completed_at = ?, worker_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status,
		job.ErrorMessage,
		job.StartedAt,
		job.CompletedAt,
		job.WorkerID,
		job.ID,
	)
	return err
}

// GetNextPendingJob retrieves the oldest pending job and marks it
// in-progress for the given worker (FIFO). The claim runs in a
// transaction under a mutex so concurrent workers never pick up the
// same job.
func (r *JobRepository) GetNextPendingJob(workerID string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT id, job_type, status, error_message, started_at, completed_at, worker_id, created_at, updated_at
		FROM jobs
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT 1
	`

	job := &models.Job{}
	err = tx.QueryRow(query, models.JobStatusPending).Scan(
		&job.ID,
		&job.JobType,
		&job.Status,
		&job.ErrorMessage,
		&job.StartedAt,
		&job.CompletedAt,
		&job.WorkerID,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No pending jobs found
		}
		return nil, err
	}

	job.MarkStarted()
	job.WorkerID = &workerID

	updateQuery := `
		UPDATE jobs
		SET status = ?, started_at = ?, worker_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := tx.Exec(updateQuery, job.Status, job.StartedAt, job.WorkerID, job.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return job, nil
}
