package services

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/laurelhq/laurel/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// Snapshot is the JSON export document holding every persisted record
// family
type Snapshot struct {
	ExportedAt            time.Time                      `json:"exported_at"`
	Contributors          []*models.Contributor          `json:"contributors"`
	Activities            []*models.Activity             `json:"activities"`
	Aggregates            []*models.Aggregate            `json:"aggregates"`
	ContributorAggregates []*models.ContributorAggregate `json:"contributor_aggregates"`
	Badges                []*models.Badge                `json:"badges"`
	Awards                []*models.ContributorBadge     `json:"awards"`
}

// ExportService writes and reads JSON snapshots of the store. Import
// replays a snapshot through the normal bulk upserts in pipeline order,
// so importing the same snapshot twice is a no-op.
type ExportService struct {
	contributorRepo *repositories.ContributorRepository
	activityRepo    *repositories.ActivityRepository
	aggregateRepo   *repositories.AggregateRepository
	badgeRepo       *repositories.BadgeRepository
}

// NewExportService creates a new ExportService
func NewExportService(
	contributorRepo *repositories.ContributorRepository,
	activityRepo *repositories.ActivityRepository,
	aggregateRepo *repositories.AggregateRepository,
	badgeRepo *repositories.BadgeRepository,
) *ExportService {
	return &ExportService{
		contributorRepo: contributorRepo,
		activityRepo:    activityRepo,
		aggregateRepo:   aggregateRepo,
		badgeRepo:       badgeRepo,
	}
}

// Export writes a snapshot of the whole store to the given path
func (s *ExportService) Export(path string) error {
	snapshot, err := s.buildSnapshot()
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"path":         path,
		"contributors": len(snapshot.Contributors),
		"activities":   len(snapshot.Activities),
		"awards":       len(snapshot.Awards),
	}).Info("Exported snapshot")

	return nil
}

func (s *ExportService) buildSnapshot() (*Snapshot, error) {
	contributors, err := s.contributorRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load contributors: %w", err)
	}

	activities, err := s.activityRepo.List("", "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	aggregates, err := s.aggregateRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load aggregates: %w", err)
	}

	contributorAggregates, err := s.aggregateRepo.ListContributorValues("")
	if err != nil {
		return nil, fmt.Errorf("failed to load contributor aggregates: %w", err)
	}

	badges, err := s.badgeRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}

	awards, err := s.badgeRepo.ListAwards("")
	if err != nil {
		return nil, fmt.Errorf("failed to load awards: %w", err)
	}

	return &Snapshot{
		ExportedAt:            time.Now(),
		Contributors:          contributors,
		Activities:            activities,
		Aggregates:            aggregates,
		ContributorAggregates: contributorAggregates,
		Badges:                badges,
		Awards:                awards,
	}, nil
}

// Import replays a snapshot file through the bulk upserts in pipeline
// order: definitions, contributors, activities, aggregate values,
// awards. Every write path keeps its usual conflict policy, so data
// already present is either refreshed or silently kept.
func (s *ExportService) Import(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(file).Decode(&snapshot); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if len(snapshot.Badges) > 0 {
		affected, err := s.badgeRepo.UpsertDefinitions(snapshot.Badges)
		if err != nil {
			return fmt.Errorf("failed to import badge definitions: %w", err)
		}
		s.logBatch("badge_definitions", len(snapshot.Badges), affected)
	}

	if len(snapshot.Aggregates) > 0 {
		affected, err := s.aggregateRepo.UpsertDefinitions(snapshot.Aggregates)
		if err != nil {
			return fmt.Errorf("failed to import aggregate definitions: %w", err)
		}
		s.logBatch("aggregate_definitions", len(snapshot.Aggregates), affected)

		for _, aggregate := range snapshot.Aggregates {
			if aggregate.Value == nil {
				continue
			}
			if err := s.aggregateRepo.SetGlobalValue(aggregate.Slug, *aggregate.Value); err != nil {
				return fmt.Errorf("failed to import global value for %s: %w", aggregate.Slug, err)
			}
		}
	}

	if len(snapshot.Contributors) > 0 {
		affected, err := s.contributorRepo.UpsertBatch(snapshot.Contributors)
		if err != nil {
			return fmt.Errorf("failed to import contributors: %w", err)
		}
		s.logBatch("contributors", len(snapshot.Contributors), affected)

		// The ignore-on-conflict upsert never touches roles, so carry
		// bot roles over explicitly.
		for _, contributor := range snapshot.Contributors {
			if contributor.IsBot() {
				if err := s.contributorRepo.UpdateRole(contributor.Username, contributor.Role); err != nil {
					return fmt.Errorf("failed to import role for %s: %w", contributor.Username, err)
				}
			}
		}
	}

	if len(snapshot.Activities) > 0 {
		affected, err := s.activityRepo.UpsertBatch(snapshot.Activities)
		if err != nil {
			return fmt.Errorf("failed to import activities: %w", err)
		}
		s.logBatch("activities", len(snapshot.Activities), affected)
	}

	if len(snapshot.ContributorAggregates) > 0 {
		affected, err := s.aggregateRepo.UpsertContributorValues(snapshot.ContributorAggregates)
		if err != nil {
			return fmt.Errorf("failed to import contributor aggregates: %w", err)
		}
		s.logBatch("contributor_aggregates", len(snapshot.ContributorAggregates), affected)
	}

	if len(snapshot.Awards) > 0 {
		affected, err := s.badgeRepo.InsertAwards(snapshot.Awards)
		if err != nil {
			return fmt.Errorf("failed to import awards: %w", err)
		}
		s.logBatch("contributor_badges", len(snapshot.Awards), affected)
	}

	return nil
}

func (s *ExportService) logBatch(entity string, submitted int, affected int64) {
	metrics.ObserveBatch(entity, int64(submitted), affected)
	logger.WithFields(logrus.Fields{
		"entity":    entity,
		"submitted": submitted,
		"affected":  affected,
	}).Info("Imported records")
}
