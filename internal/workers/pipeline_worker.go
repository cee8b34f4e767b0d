package workers

import (
	"context"
	"time"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/internal/services"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/sirupsen/logrus"
)

// PipelineWorker claims pending jobs and runs the matching pipeline
// stage
type PipelineWorker struct {
	*BaseWorker
	jobRepo  *repositories.JobRepository
	pipeline *services.PipelineService
}

// NewPipelineWorker creates a new pipeline worker
func NewPipelineWorker(workerID string, jobRepo *repositories.JobRepository, pipeline *services.PipelineService) *PipelineWorker {
	return &PipelineWorker{
		BaseWorker: NewBaseWorker(workerID),
		jobRepo:    jobRepo,
		pipeline:   pipeline,
	}
}

// Start begins the pipeline worker process
func (w *PipelineWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.WithFields(logrus.Fields{"worker": w.WorkerID}).Info("Pipeline worker started")

	for {
		select {
		case <-ctx.Done():
			logger.WithFields(logrus.Fields{"worker": w.WorkerID}).Info("Pipeline worker stopping due to context cancellation")
			return ctx.Err()
		case <-w.StopChan:
			logger.WithFields(logrus.Fields{"worker": w.WorkerID}).Info("Pipeline worker stopping")
			return nil
		default:
			// Try to claim a pending job
			job, err := w.jobRepo.GetNextPendingJob(w.WorkerID)
			if err != nil {
				logger.WithFields(logrus.Fields{
					"worker": w.WorkerID,
					"error":  err.Error(),
				}).Error("Failed to claim job")
				time.Sleep(5 * time.Second)
				continue
			}

			if job == nil {
				// No jobs available, sleep and try again
				time.Sleep(10 * time.Second)
				continue
			}

			w.processJob(ctx, job)
		}
	}
}

// processJob runs the job's pipeline stage and records the outcome.
// GetNextPendingJob already marked the job in-progress.
func (w *PipelineWorker) processJob(ctx context.Context, job *models.Job) {
	logger.WithFields(logrus.Fields{
		"worker":   w.WorkerID,
		"job":      job.ID,
		"job_type": job.JobType,
	}).Info("Processing job")

	if err := w.pipeline.Run(ctx, job.JobType); err != nil {
		logger.WithFields(logrus.Fields{
			"worker": w.WorkerID,
			"job":    job.ID,
			"error":  err.Error(),
		}).Error("Job failed")

		job.SetError(err.Error())
		job.MarkFailed()
		if err := w.jobRepo.Update(job); err != nil {
			logger.WithFields(logrus.Fields{
				"worker": w.WorkerID,
				"job":    job.ID,
				"error":  err.Error(),
			}).Error("Failed to mark job as failed")
		}
		return
	}

	job.MarkCompleted()
	if err := w.jobRepo.Update(job); err != nil {
		logger.WithFields(logrus.Fields{
			"worker": w.WorkerID,
			"job":    job.ID,
			"error":  err.Error(),
		}).Error("Failed to mark job as completed")
		return
	}

	logger.WithFields(logrus.Fields{
		"worker": w.WorkerID,
		"job":    job.ID,
	}).Info("Job completed")
}
