package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/pkg/database"
)

// newTestDB opens an isolated in-memory store for one test
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func insertContributors(t *testing.T, repo *ContributorRepository, usernames ...string) {
	t.Helper()

	contributors := make([]*models.Contributor, 0, len(usernames))
	for _, username := range usernames {
		contributors = append(contributors, models.NewContributor(username))
	}

	_, err := repo.UpsertBatch(contributors)
	require.NoError(t, err)
}

func testTime(day int) time.Time {
	return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
}
