package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurelhq/laurel/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	source := newTestEnv(t)
	source.addContributors(t, "alice", "bob")
	source.addActivities(t,
		mergedPR("pr-merged-acme-widgets-1", "alice", day(1), 10),
		mergedPR("pr-merged-acme-widgets-2", "alice", day(2), 20),
		mergedPR("pr-merged-acme-widgets-3", "bob", day(3), 30),
	)
	require.NoError(t, source.aggregate.ComputeTurnaround())
	require.NoError(t, source.achievement.AwardBadges())

	exporter := NewExportService(source.contributorRepo, source.activityRepo, source.aggregateRepo, source.badgeRepo)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, exporter.Export(path))

	// Import into a fresh store and compare the record families.
	target := newTestEnv(t)
	importer := NewExportService(target.contributorRepo, target.activityRepo, target.aggregateRepo, target.badgeRepo)
	require.NoError(t, importer.Import(path))

	contributors, err := target.contributorRepo.List()
	require.NoError(t, err)
	assert.Len(t, contributors, 2)

	activities, err := target.activityRepo.List("", "", 0)
	require.NoError(t, err)
	assert.Len(t, activities, 3)

	global, err := target.aggregateRepo.GetBySlug(AggregateSlugPRTurnaround)
	require.NoError(t, err)
	require.NotNil(t, global)
	require.NotNil(t, global.Value)
	assert.Equal(t, int64(20), global.Value.Duration)

	sourceAwards, err := source.badgeRepo.ListAwards("")
	require.NoError(t, err)
	targetAwards, err := target.badgeRepo.ListAwards("")
	require.NoError(t, err)
	assert.Equal(t, len(sourceAwards), len(targetAwards))
}

func TestImportIsIdempotent(t *testing.T) {
	source := newTestEnv(t)
	source.addContributors(t, "alice")
	source.addActivities(t,
		mergedPR("pr-merged-acme-widgets-1", "alice", day(1), 10),
		mergedPR("pr-merged-acme-widgets-2", "alice", day(2), 20),
	)
	require.NoError(t, source.achievement.AwardBadges())

	exporter := NewExportService(source.contributorRepo, source.activityRepo, source.aggregateRepo, source.badgeRepo)
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, exporter.Export(path))

	// Importing the snapshot back into its own source store changes
	// nothing: contributors and awards are ignore-on-conflict,
	// activities overwrite with identical values.
	require.NoError(t, exporter.Import(path))

	contributors, err := source.contributorRepo.List()
	require.NoError(t, err)
	assert.Len(t, contributors, 1)

	awards, err := source.badgeRepo.ListAwards("")
	require.NoError(t, err)
	assert.Len(t, awards, 1)
	assert.Equal(t, models.AwardID("pull-shark", "1x", "alice"), awards[0].ID)
}
