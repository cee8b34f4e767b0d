package services

import (
	"context"
	"fmt"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/laurelhq/laurel/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// PipelineService runs the pipeline stages in their fixed order:
// definitions, then activities, then aggregates, then badges. Later
// stages read what earlier stages committed, so the order is not
// configurable. Every stage is idempotent, so a failed run is repaired
// by simply rerunning it.
type PipelineService struct {
	catalog     *CatalogService
	sync        *SyncService
	aggregate   *AggregateService
	achievement *AchievementService
}

// NewPipelineService creates a new PipelineService
func NewPipelineService(catalog *CatalogService, sync *SyncService, aggregate *AggregateService, achievement *AchievementService) *PipelineService {
	return &PipelineService{
		catalog:     catalog,
		sync:        sync,
		aggregate:   aggregate,
		achievement: achievement,
	}
}

// Run executes the stage matching the given job type; JobTypePipeline
// runs the full sequence
func (s *PipelineService) Run(ctx context.Context, jobType models.JobType) error {
	switch jobType {
	case models.JobTypeSync:
		return s.runStage(ctx, "sync", func() error { return s.sync.Sync(ctx) })
	case models.JobTypeAggregate:
		return s.runStage(ctx, "aggregate", s.aggregate.ComputeTurnaround)
	case models.JobTypeBadges:
		return s.runStage(ctx, "badges", s.achievement.AwardBadges)
	case models.JobTypePipeline:
		return s.RunAll(ctx)
	default:
		return fmt.Errorf("unknown job type %q", jobType)
	}
}

// RunAll runs every stage in order
func (s *PipelineService) RunAll(ctx context.Context) error {
	if err := s.runStage(ctx, "definitions", s.catalog.Seed); err != nil {
		return err
	}
	if err := s.runStage(ctx, "sync", func() error { return s.sync.Sync(ctx) }); err != nil {
		return err
	}
	if err := s.runStage(ctx, "aggregate", s.aggregate.ComputeTurnaround); err != nil {
		return err
	}
	return s.runStage(ctx, "badges", s.achievement.AwardBadges)
}

// SeedDefinitions runs only the definitions stage
func (s *PipelineService) SeedDefinitions() error {
	return s.runStage(context.Background(), "definitions", s.catalog.Seed)
}

func (s *PipelineService) runStage(ctx context.Context, stage string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{"stage": stage}).Info("Running pipeline stage")

	if err := fn(); err != nil {
		metrics.PipelineRuns.WithLabelValues(stage, "failed").Inc()
		return fmt.Errorf("stage %s failed: %w", stage, err)
	}

	metrics.PipelineRuns.WithLabelValues(stage, "completed").Inc()
	logger.WithFields(logrus.Fields{"stage": stage}).Info("Pipeline stage completed")
	return nil
}
