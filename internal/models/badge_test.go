package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testOccurredAt = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

func TestAwardID(t *testing.T) {
	assert.Equal(t, "pull-shark--1x--alice", AwardID("pull-shark", "1x", "alice"))
	assert.Equal(t, "keen-eye--3x--dependabot[bot]", AwardID("keen-eye", "3x", "dependabot[bot]"))

	// Distinct triples always map to distinct IDs.
	assert.NotEqual(t,
		AwardID("pull-shark", "1x", "alice"),
		AwardID("pull-shark", "2x", "alice"),
	)
}

func TestNewContributorBadge(t *testing.T) {
	award := NewContributorBadge("pull-shark", "2x", "alice", testOccurredAt)
	award.SetMetadata("count", 20)
	award.SetMetadata("threshold", 16)

	assert.Equal(t, "pull-shark--2x--alice", award.ID)
	assert.True(t, award.AchievedAt.Equal(testOccurredAt))
	assert.Equal(t, 20, award.Metadata["count"])
}
