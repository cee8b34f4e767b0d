package services

import (
	"fmt"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
)

// LeaderboardEntry is one contributor's row on the leaderboard
type LeaderboardEntry struct {
	Rank       int                         `json:"rank"`
	Username   string                      `json:"username"`
	Role       models.ContributorRole      `json:"role"`
	Points     int                         `json:"points"`
	Activities int                         `json:"activities"`
	Counts     map[models.ActivityKind]int `json:"counts"`
	Badges     int                         `json:"badges"`
}

// LeaderboardService assembles the contributor leaderboard from
// activity points, per-kind counts and badge tallies
type LeaderboardService struct {
	contributorRepo *repositories.ContributorRepository
	activityRepo    *repositories.ActivityRepository
	badgeRepo       *repositories.BadgeRepository
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(
	contributorRepo *repositories.ContributorRepository,
	activityRepo *repositories.ActivityRepository,
	badgeRepo *repositories.BadgeRepository,
) *LeaderboardService {
	return &LeaderboardService{
		contributorRepo: contributorRepo,
		activityRepo:    activityRepo,
		badgeRepo:       badgeRepo,
	}
}

// Leaderboard returns contributors ranked by total points; limit <= 0
// returns everyone
func (s *LeaderboardService) Leaderboard(limit int) ([]*LeaderboardEntry, error) {
	totals, err := s.activityRepo.PointTotals()
	if err != nil {
		return nil, fmt.Errorf("failed to load point totals: %w", err)
	}

	kindCounts, err := s.activityRepo.KindCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to load kind counts: %w", err)
	}

	awardCounts, err := s.badgeRepo.AwardCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to load award counts: %w", err)
	}

	roles := make(map[string]models.ContributorRole)
	contributors, err := s.contributorRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load contributors: %w", err)
	}
	for _, contributor := range contributors {
		roles[contributor.Username] = contributor.Role
	}

	if limit > 0 && limit < len(totals) {
		totals = totals[:limit]
	}

	entries := make([]*LeaderboardEntry, 0, len(totals))
	for i, total := range totals {
		role := roles[total.Username]
		if role == "" {
			role = models.ContributorRoleMember
		}
		entries = append(entries, &LeaderboardEntry{
			Rank:       i + 1,
			Username:   total.Username,
			Role:       role,
			Points:     total.Points,
			Activities: total.Activities,
			Counts:     kindCounts[total.Username],
			Badges:     awardCounts[total.Username],
		})
	}

	return entries, nil
}
