package workers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/internal/services"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/sirupsen/logrus"
)

// WorkerManager manages the pipeline worker pool
type WorkerManager struct {
	workers  []Worker
	jobRepo  *repositories.JobRepository
	pipeline *services.PipelineService
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(jobRepo *repositories.JobRepository, pipeline *services.PipelineService) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:  make([]Worker, 0),
		jobRepo:  jobRepo,
		pipeline: pipeline,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartAll starts the configured number of pipeline workers
func (wm *WorkerManager) StartAll() error {
	pipelineWorkers := wm.getWorkerCount("PIPELINE_WORKERS", 1)

	logger.WithFields(logrus.Fields{
		"pipeline_workers": pipelineWorkers,
	}).Info("Starting workers")

	for i := 0; i < pipelineWorkers; i++ {
		worker := NewPipelineWorker(fmt.Sprintf("pipeline-%d", i+1), wm.jobRepo, wm.pipeline)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.WithFields(logrus.Fields{
		"total": len(wm.workers),
	}).Info("Started workers")
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	// Cancel the context to signal all workers to stop
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithFields(logrus.Fields{
				"worker": worker.GetWorkerID(),
				"error":  err.Error(),
			}).Error("Error stopping worker")
		}
	}

	// Wait for all workers to finish
	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// getWorkerCount reads worker count from environment variable with fallback
func (wm *WorkerManager) getWorkerCount(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return count
		}
		logger.WithFields(logrus.Fields{
			"variable": envVar,
			"default":  defaultValue,
		}).Warn("Invalid worker count, using default")
	}
	return defaultValue
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.WithFields(logrus.Fields{
				"worker": worker.GetWorkerID(),
				"error":  err.Error(),
			}).Error("Worker stopped with error")
		}
	}()
}
