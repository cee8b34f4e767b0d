package models

import (
	"fmt"
	"time"
)

// BadgeVariant describes one tier of a badge
type BadgeVariant struct {
	Description string  `json:"description" yaml:"description"`
	Image       string  `json:"image" yaml:"image"`
	Requirement *string `json:"requirement,omitempty" yaml:"requirement,omitempty"`
}

// Badge represents a badge definition with its variant ladder.
// Definitions are static configuration, not derived from activity data.
type Badge struct {
	Slug        string                  `json:"slug"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Variants    map[string]BadgeVariant `json:"variants"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// AwardID builds the deterministic identifier for a badge award.
// The triple (badge, variant, contributor) maps to exactly one ID, so
// regenerating the same candidate on every run stays idempotent.
func AwardID(badgeSlug, variant, username string) string {
	return fmt.Sprintf("%s--%s--%s", badgeSlug, variant, username)
}

// ContributorBadge represents one awarded badge variant. Awards are
// append-only: once written they are never mutated or revoked.
type ContributorBadge struct {
	ID         string         `json:"id"`
	BadgeSlug  string         `json:"badge_slug"`
	Username   string         `json:"username"`
	Variant    string         `json:"variant"`
	AchievedAt time.Time      `json:"achieved_at"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewContributorBadge creates a new award candidate. The achieved-at
// timestamp is the contributor's first qualifying activity, not the time
// the threshold was crossed, so a regenerated award keeps its
// historically correct date.
func NewContributorBadge(badgeSlug, variant, username string, achievedAt time.Time) *ContributorBadge {
	return &ContributorBadge{
		ID:         AwardID(badgeSlug, variant, username),
		BadgeSlug:  badgeSlug,
		Username:   username,
		Variant:    variant,
		AchievedAt: achievedAt,
		CreatedAt:  time.Now(),
	}
}

// SetMetadata sets a single metadata field, allocating the map if needed
func (b *ContributorBadge) SetMetadata(key string, value any) {
	if b.Metadata == nil {
		b.Metadata = make(map[string]any)
	}
	b.Metadata[key] = value
}
