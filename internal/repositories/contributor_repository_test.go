package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurelhq/laurel/internal/models"
)

func TestContributorUpsertIgnoresConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := NewContributorRepository(db)

	avatar := "https://example.com/alice-v1.png"
	first := models.NewContributor("alice")
	first.AvatarURL = &avatar

	affected, err := repo.UpsertBatch([]*models.Contributor{first})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Re-submitting with a different avatar must not change the stored
	// profile: contributors are first-write-wins.
	newAvatar := "https://example.com/alice-v2.png"
	second := models.NewContributor("alice")
	second.AvatarURL = &newAvatar

	affected, err = repo.UpsertBatch([]*models.Contributor{second})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	stored, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.AvatarURL)
	assert.Equal(t, avatar, *stored.AvatarURL)
}

func TestContributorUpdateRole(t *testing.T) {
	db := newTestDB(t)
	repo := NewContributorRepository(db)
	insertContributors(t, repo, "dependabot[bot]")

	require.NoError(t, repo.UpdateRole("dependabot[bot]", models.ContributorRoleBot))

	stored, err := repo.GetByUsername("dependabot[bot]")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.ContributorRoleBot, stored.Role)
}

func TestContributorGetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewContributorRepository(db)

	stored, err := repo.GetByUsername("nobody")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
