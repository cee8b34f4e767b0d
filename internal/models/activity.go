package models

import (
	"encoding/json"
	"time"
)

// ActivityKind represents the kind of an observed activity
type ActivityKind string

const (
	ActivityIssueOpened    ActivityKind = "issue_opened"
	ActivityIssueClosed    ActivityKind = "issue_closed"
	ActivityIssueAssigned  ActivityKind = "issue_assigned"
	ActivityPROpened       ActivityKind = "pr_opened"
	ActivityPRClosed       ActivityKind = "pr_closed"
	ActivityPRMerged       ActivityKind = "pr_merged"
	ActivityPRReviewed     ActivityKind = "pr_reviewed"
	ActivityPRCollaborated ActivityKind = "pr_collaborated"
	ActivityCommentCreated ActivityKind = "comment_created"
	ActivityCommitCreated  ActivityKind = "commit_created"
)

// MetadataKeyTurnaround is the metadata field carrying a merged PR's
// turn-around time in milliseconds, recorded by the sync side at merge
// observation time.
const MetadataKeyTurnaround = "turnaround_ms"

// Activity represents one observed contributor event. The slug is the
// stable identity: re-ingesting the same slug updates the mutable fields
// in place and never loses the kind classification.
type Activity struct {
	Slug       string         `json:"slug"`
	Username   string         `json:"username"`
	Kind       ActivityKind   `json:"kind"`
	Title      *string        `json:"title"`
	OccurredAt time.Time      `json:"occurred_at"`
	Link       *string        `json:"link"`
	Text       *string        `json:"text"`
	Points     *int           `json:"points"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewActivity creates a new Activity
func NewActivity(slug, username string, kind ActivityKind, occurredAt time.Time) *Activity {
	now := time.Now()
	return &Activity{
		Slug:       slug,
		Username:   username,
		Kind:       kind,
		OccurredAt: occurredAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetMetadata sets a single metadata field, allocating the map if needed
func (a *Activity) SetMetadata(key string, value any) {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[key] = value
}

// MetadataNumber reads a metadata field as a number. The second return
// value is false when the field is missing or not numeric, so callers
// can skip malformed records instead of failing.
func (a *Activity) MetadataNumber(key string) (float64, bool) {
	if a.Metadata == nil {
		return 0, false
	}

	switch v := a.Metadata[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
