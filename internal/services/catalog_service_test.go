package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLoads(t *testing.T) {
	env := newTestEnv(t)

	badges := env.catalog.Badges()
	require.NotEmpty(t, badges)

	for _, badge := range badges {
		assert.NotEmpty(t, badge.Slug)
		assert.NotEmpty(t, badge.Kind)
		require.NotEmpty(t, badge.Variants, "badge %s has no variants", badge.Slug)
		for _, variant := range badge.Variants {
			assert.Positive(t, variant.Threshold, "badge %s variant %s", badge.Slug, variant.Key)
		}
	}

	aggregates := env.catalog.Aggregates()
	require.NotEmpty(t, aggregates)
	assert.Equal(t, AggregateSlugPRTurnaround, aggregates[0].Slug)
}

func TestCatalogSeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	// newTestEnv already seeded once; a second seed refreshes in place.
	require.NoError(t, env.catalog.Seed())

	badges, err := env.badgeRepo.List()
	require.NoError(t, err)
	assert.Len(t, badges, len(env.catalog.Badges()))

	aggregates, err := env.aggregateRepo.List()
	require.NoError(t, err)
	assert.Len(t, aggregates, len(env.catalog.Aggregates()))
}

func TestCatalogPullSharkLadder(t *testing.T) {
	env := newTestEnv(t)

	var thresholds []int
	for _, badge := range env.catalog.Badges() {
		if badge.Slug != "pull-shark" {
			continue
		}
		for _, variant := range badge.Variants {
			thresholds = append(thresholds, variant.Threshold)
		}
	}

	assert.Equal(t, []int{2, 16, 128, 1024, 8192}, thresholds)
}
