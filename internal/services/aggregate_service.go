package services

import (
	"fmt"
	"math"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/laurelhq/laurel/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// AggregateSlugPRTurnaround identifies the average PR turn-around
// aggregate, both globally and per contributor
const AggregateSlugPRTurnaround = "pr-turnaround"

// AggregateService computes derived statistics from the activity log.
// It is stateless: each run builds its working set from one query and
// holds nothing across invocations.
type AggregateService struct {
	activityRepo  *repositories.ActivityRepository
	aggregateRepo *repositories.AggregateRepository
}

// NewAggregateService creates a new AggregateService
func NewAggregateService(activityRepo *repositories.ActivityRepository, aggregateRepo *repositories.AggregateRepository) *AggregateService {
	return &AggregateService{
		activityRepo:  activityRepo,
		aggregateRepo: aggregateRepo,
	}
}

// ComputeTurnaround computes the average PR turn-around time globally
// and per contributor from merged-PR activities. The per-event duration
// is recorded by the sync side in the activity metadata; this engine
// only aggregates it. Activities without a numeric turn-around value are
// skipped, never fatal. When no activity qualifies, nothing is written
// and any previously stored values stay untouched.
func (s *AggregateService) ComputeTurnaround() error {
	activities, err := s.activityRepo.ListByKind(models.ActivityPRMerged)
	if err != nil {
		return fmt.Errorf("failed to load merged PR activities: %w", err)
	}

	byContributor := make(map[string][]float64)
	var combined []float64

	for _, activity := range activities {
		value, ok := activity.MetadataNumber(models.MetadataKeyTurnaround)
		if !ok {
			logger.WithFields(logrus.Fields{
				"slug": activity.Slug,
			}).Warn("Skipping activity without a numeric turn-around value")
			continue
		}
		byContributor[activity.Username] = append(byContributor[activity.Username], value)
		combined = append(combined, value)
	}

	if len(combined) == 0 {
		logger.Info("No qualifying activities for PR turn-around, skipping write")
		return nil
	}

	values := make([]*models.ContributorAggregate, 0, len(byContributor))
	for username, samples := range byContributor {
		values = append(values, &models.ContributorAggregate{
			AggregateSlug: AggregateSlugPRTurnaround,
			Username:      username,
			Value:         models.DurationValue(roundMean(samples)),
		})
	}

	affected, err := s.aggregateRepo.UpsertContributorValues(values)
	if err != nil {
		return fmt.Errorf("failed to write contributor aggregates: %w", err)
	}
	metrics.ObserveBatch("contributor_aggregates", int64(len(values)), affected)
	logger.WithFields(logrus.Fields{
		"entity":    "contributor_aggregates",
		"submitted": len(values),
		"affected":  affected,
	}).Info("Wrote contributor turn-around aggregates")

	global := models.DurationValue(roundMean(combined))
	if err := s.aggregateRepo.SetGlobalValue(AggregateSlugPRTurnaround, global); err != nil {
		return fmt.Errorf("failed to write global aggregate: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"aggregate": AggregateSlugPRTurnaround,
		"value_ms":  global.Duration,
		"samples":   len(combined),
	}).Info("Wrote global turn-around aggregate")

	return nil
}

// roundMean returns the arithmetic mean rounded to the nearest integer,
// half away from zero
func roundMean(samples []float64) int64 {
	var sum float64
	for _, sample := range samples {
		sum += sample
	}
	return int64(math.Round(sum / float64(len(samples))))
}
