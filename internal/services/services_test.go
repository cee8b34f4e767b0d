package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/pkg/database"
)

// testEnv wires the repositories and engines over an isolated in-memory
// store for one test
type testEnv struct {
	db              *sql.DB
	contributorRepo *repositories.ContributorRepository
	activityRepo    *repositories.ActivityRepository
	aggregateRepo   *repositories.AggregateRepository
	badgeRepo       *repositories.BadgeRepository
	catalog         *CatalogService
	aggregate       *AggregateService
	achievement     *AchievementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	contributorRepo := repositories.NewContributorRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	aggregateRepo := repositories.NewAggregateRepository(db)
	badgeRepo := repositories.NewBadgeRepository(db)

	catalog, err := NewCatalogService(badgeRepo, aggregateRepo)
	require.NoError(t, err)
	require.NoError(t, catalog.Seed())

	return &testEnv{
		db:              db,
		contributorRepo: contributorRepo,
		activityRepo:    activityRepo,
		aggregateRepo:   aggregateRepo,
		badgeRepo:       badgeRepo,
		catalog:         catalog,
		aggregate:       NewAggregateService(activityRepo, aggregateRepo),
		achievement:     NewAchievementService(activityRepo, badgeRepo, catalog),
	}
}

func (env *testEnv) addContributors(t *testing.T, usernames ...string) {
	t.Helper()

	contributors := make([]*models.Contributor, 0, len(usernames))
	for _, username := range usernames {
		contributors = append(contributors, models.NewContributor(username))
	}
	_, err := env.contributorRepo.UpsertBatch(contributors)
	require.NoError(t, err)
}

func (env *testEnv) addActivities(t *testing.T, activities ...*models.Activity) {
	t.Helper()

	_, err := env.activityRepo.UpsertBatch(activities)
	require.NoError(t, err)
}

// mergedPR builds a pr_merged activity with the given turn-around
// metadata value
func mergedPR(slug, username string, occurredAt time.Time, turnaround any) *models.Activity {
	activity := models.NewActivity(slug, username, models.ActivityPRMerged, occurredAt)
	if turnaround != nil {
		activity.SetMetadata(models.MetadataKeyTurnaround, turnaround)
	}
	return activity
}

func day(n int) time.Time {
	return time.Date(2024, time.June, n, 9, 0, 0, 0, time.UTC)
}
