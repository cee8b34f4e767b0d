package services

import (
	"fmt"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
)

// JobService handles job creation and management
type JobService struct {
	jobRepo *repositories.JobRepository
}

// NewJobService creates a new job service
func NewJobService(jobRepo *repositories.JobRepository) *JobService {
	return &JobService{jobRepo: jobRepo}
}

// CreateJob enqueues a new pipeline job of the given type
func (s *JobService) CreateJob(jobType models.JobType) (*models.Job, error) {
	if !models.ValidJobType(jobType) {
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}

	job := models.NewJob(jobType)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}

	return job, nil
}

// GetJob retrieves a job by ID
func (s *JobService) GetJob(id string) (*models.Job, error) {
	return s.jobRepo.GetByID(id)
}

// ListJobs retrieves the most recent jobs
func (s *JobService) ListJobs(limit int) ([]*models.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.jobRepo.List(limit)
}
