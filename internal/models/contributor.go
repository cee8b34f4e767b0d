package models

import "time"

// ContributorRole represents the role of a contributor
type ContributorRole string

const (
	ContributorRoleMember ContributorRole = "member"
	ContributorRoleBot    ContributorRole = "bot"
)

// Contributor represents a person (or bot) observed in the activity stream.
// The username is the natural key; profile fields are captured at first
// sighting and never overwritten by later syncs.
type Contributor struct {
	Username   string          `json:"username"`
	Name       *string         `json:"name"`
	AvatarURL  *string         `json:"avatar_url"`
	ProfileURL *string         `json:"profile_url"`
	Role       ContributorRole `json:"role"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewContributor creates a new Contributor with the default member role
func NewContributor(username string) *Contributor {
	now := time.Now()
	return &Contributor{
		Username:  username,
		Role:      ContributorRoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsBot checks if the contributor is a bot account
func (c *Contributor) IsBot() bool {
	return c.Role == ContributorRoleBot
}
