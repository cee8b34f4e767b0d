package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurelhq/laurel/internal/models"
)

func TestAwardInsertIsAppendOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewBadgeRepository(db)

	award := models.NewContributorBadge("pull-shark", "1x", "alice", testTime(1))
	award.SetMetadata("count", 5)
	award.SetMetadata("threshold", 2)

	affected, err := repo.InsertAwards([]*models.ContributorBadge{award})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Regenerating the identical candidate must be a silent no-op, even
	// with a different achieved-at date.
	regenerated := models.NewContributorBadge("pull-shark", "1x", "alice", testTime(9))
	affected, err = repo.InsertAwards([]*models.ContributorBadge{regenerated})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	awards, err := repo.ListAwards("pull-shark")
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.True(t, awards[0].AchievedAt.Equal(testTime(1)))
}

func TestAwardIDIsDeterministic(t *testing.T) {
	assert.Equal(t, "pull-shark--2x--alice", models.AwardID("pull-shark", "2x", "alice"))
}

func TestBadgeDefinitionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewBadgeRepository(db)

	requirement := "Get 2 pull requests merged"
	badge := &models.Badge{
		Slug:        "pull-shark",
		Name:        "Pull Shark",
		Description: "Opened pull requests that got merged.",
		Variants: map[string]models.BadgeVariant{
			"1x": {Description: "First pull requests merged.", Image: "badges/pull-shark-1x.png", Requirement: &requirement},
		},
	}

	_, err := repo.UpsertDefinitions([]*models.Badge{badge})
	require.NoError(t, err)

	stored, err := repo.GetBySlug("pull-shark")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Pull Shark", stored.Name)
	require.Contains(t, stored.Variants, "1x")
	require.NotNil(t, stored.Variants["1x"].Requirement)
	assert.Equal(t, requirement, *stored.Variants["1x"].Requirement)
}
