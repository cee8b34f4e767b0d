package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurelhq/laurel/internal/models"
)

func TestActivityUpsertUpdatesOnConflict(t *testing.T) {
	db := newTestDB(t)
	contributorRepo := NewContributorRepository(db)
	repo := NewActivityRepository(db)
	insertContributors(t, contributorRepo, "alice")

	title := "Fix the widget"
	activity := models.NewActivity("pr-merged-acme-widgets-1", "alice", models.ActivityPRMerged, testTime(1))
	activity.Title = &title
	activity.SetMetadata(models.MetadataKeyTurnaround, 1000)

	_, err := repo.UpsertBatch([]*models.Activity{activity})
	require.NoError(t, err)

	// Re-ingesting the same slug with a new title must update the
	// stored record in place.
	newTitle := "Fix the widget for real"
	updated := models.NewActivity("pr-merged-acme-widgets-1", "alice", models.ActivityPRMerged, testTime(2))
	updated.Title = &newTitle

	_, err = repo.UpsertBatch([]*models.Activity{updated})
	require.NoError(t, err)

	stored, err := repo.GetBySlug("pr-merged-acme-widgets-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.Title)
	assert.Equal(t, newTitle, *stored.Title)
	assert.Equal(t, models.ActivityPRMerged, stored.Kind)
	assert.True(t, stored.OccurredAt.Equal(testTime(2)))
}

func TestActivityKindSurvivesReingestion(t *testing.T) {
	db := newTestDB(t)
	contributorRepo := NewContributorRepository(db)
	repo := NewActivityRepository(db)
	insertContributors(t, contributorRepo, "alice")

	activity := models.NewActivity("pr-opened-acme-widgets-2", "alice", models.ActivityPROpened, testTime(1))
	_, err := repo.UpsertBatch([]*models.Activity{activity})
	require.NoError(t, err)

	// A re-classified event carries its new kind through the upsert.
	reclassified := models.NewActivity("pr-opened-acme-widgets-2", "alice", models.ActivityPRMerged, testTime(1))
	_, err = repo.UpsertBatch([]*models.Activity{reclassified})
	require.NoError(t, err)

	stored, err := repo.GetBySlug("pr-opened-acme-widgets-2")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.ActivityPRMerged, stored.Kind)
}

func TestActivityMetadataRoundTrip(t *testing.T) {
	db := newTestDB(t)
	contributorRepo := NewContributorRepository(db)
	repo := NewActivityRepository(db)
	insertContributors(t, contributorRepo, "alice")

	activity := models.NewActivity("pr-merged-acme-widgets-3", "alice", models.ActivityPRMerged, testTime(1))
	activity.SetMetadata(models.MetadataKeyTurnaround, 86400000)

	_, err := repo.UpsertBatch([]*models.Activity{activity})
	require.NoError(t, err)

	stored, err := repo.GetBySlug("pr-merged-acme-widgets-3")
	require.NoError(t, err)
	require.NotNil(t, stored)

	value, ok := stored.MetadataNumber(models.MetadataKeyTurnaround)
	assert.True(t, ok)
	assert.Equal(t, float64(86400000), value)
}

func TestActivityListByKind(t *testing.T) {
	db := newTestDB(t)
	contributorRepo := NewContributorRepository(db)
	repo := NewActivityRepository(db)
	insertContributors(t, contributorRepo, "alice", "bob")

	activities := []*models.Activity{
		models.NewActivity("pr-merged-acme-widgets-4", "alice", models.ActivityPRMerged, testTime(3)),
		models.NewActivity("pr-merged-acme-widgets-5", "bob", models.ActivityPRMerged, testTime(1)),
		models.NewActivity("issue-opened-acme-widgets-6", "alice", models.ActivityIssueOpened, testTime(2)),
	}
	_, err := repo.UpsertBatch(activities)
	require.NoError(t, err)

	merged, err := repo.ListByKind(models.ActivityPRMerged)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	// Ordered by occurrence.
	assert.Equal(t, "bob", merged[0].Username)
	assert.Equal(t, "alice", merged[1].Username)
}

func TestActivityPointTotals(t *testing.T) {
	db := newTestDB(t)
	contributorRepo := NewContributorRepository(db)
	repo := NewActivityRepository(db)
	insertContributors(t, contributorRepo, "alice", "bob")

	ten, twenty := 10, 20
	a1 := models.NewActivity("pr-opened-acme-widgets-7", "alice", models.ActivityPROpened, testTime(1))
	a1.Points = &ten
	a2 := models.NewActivity("pr-merged-acme-widgets-7", "alice", models.ActivityPRMerged, testTime(2))
	a2.Points = &twenty
	b1 := models.NewActivity("pr-opened-acme-widgets-8", "bob", models.ActivityPROpened, testTime(1))
	b1.Points = &ten

	_, err := repo.UpsertBatch([]*models.Activity{a1, a2, b1})
	require.NoError(t, err)

	totals, err := repo.PointTotals()
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "alice", totals[0].Username)
	assert.Equal(t, 30, totals[0].Points)
	assert.Equal(t, 2, totals[0].Activities)
	assert.Equal(t, "bob", totals[1].Username)
	assert.Equal(t, 10, totals[1].Points)
}
