package services

import (
	"fmt"
	"time"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/laurelhq/laurel/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// AchievementService awards tiered badges from cumulative activity
// counts. Eligibility is recomputed from scratch on every run; the
// ignore-on-conflict write keeps already-held awards untouched, so the
// whole stage is idempotent.
type AchievementService struct {
	activityRepo *repositories.ActivityRepository
	badgeRepo    *repositories.BadgeRepository
	catalog      *CatalogService
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(activityRepo *repositories.ActivityRepository, badgeRepo *repositories.BadgeRepository, catalog *CatalogService) *AchievementService {
	return &AchievementService{
		activityRepo: activityRepo,
		badgeRepo:    badgeRepo,
		catalog:      catalog,
	}
}

// contributorTally is one contributor's count of a triggering kind and
// the timestamp of their first such activity
type contributorTally struct {
	count   int
	firstAt time.Time
}

// AwardBadges evaluates every catalog badge's ladder against the current
// activity counts and writes all newly qualifying awards. A contributor
// can earn several variants in one run. The achieved-at date is always
// the first qualifying activity's timestamp, so a regenerated award
// carries the historically correct date.
func (s *AchievementService) AwardBadges() error {
	for _, badge := range s.catalog.Badges() {
		if err := s.awardBadge(badge); err != nil {
			return fmt.Errorf("failed to award badge %s: %w", badge.Slug, err)
		}
	}
	return nil
}

func (s *AchievementService) awardBadge(badge CatalogBadge) error {
	activities, err := s.activityRepo.ListByKind(models.ActivityKind(badge.Kind))
	if err != nil {
		return fmt.Errorf("failed to load %s activities: %w", badge.Kind, err)
	}

	// One pass over the activity log: count per contributor and track
	// the first occurrence.
	tallies := make(map[string]*contributorTally)
	for _, activity := range activities {
		tally := tallies[activity.Username]
		if tally == nil {
			tally = &contributorTally{firstAt: activity.OccurredAt}
			tallies[activity.Username] = tally
		}
		tally.count++
		if activity.OccurredAt.Before(tally.firstAt) {
			tally.firstAt = activity.OccurredAt
		}
	}

	// Thresholds are independent, non-exclusive gates: every rung the
	// count reaches produces a candidate, regardless of ladder order.
	var candidates []*models.ContributorBadge
	for username, tally := range tallies {
		for _, variant := range badge.Variants {
			if tally.count < variant.Threshold {
				continue
			}
			award := models.NewContributorBadge(badge.Slug, variant.Key, username, tally.firstAt)
			award.SetMetadata("count", tally.count)
			award.SetMetadata("threshold", variant.Threshold)
			candidates = append(candidates, award)
		}
	}

	if len(candidates) == 0 {
		logger.WithFields(logrus.Fields{
			"badge": badge.Slug,
		}).Info("No badge candidates, skipping write")
		return nil
	}

	affected, err := s.badgeRepo.InsertAwards(candidates)
	if err != nil {
		return fmt.Errorf("failed to write awards: %w", err)
	}
	metrics.ObserveBatch("contributor_badges", int64(len(candidates)), affected)
	logger.WithFields(logrus.Fields{
		"entity":    "contributor_badges",
		"badge":     badge.Slug,
		"submitted": len(candidates),
		"affected":  affected,
	}).Info("Wrote badge awards")

	return nil
}
