package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/sirupsen/logrus"
)

// leaderboardColumns is the fixed column layout of the leaderboard sheet
var leaderboardColumns = []string{
	"Rank", "Username", "Role", "Points", "Activities",
	"Issues Opened", "Issues Closed", "PRs Opened", "PRs Merged", "PRs Reviewed",
	"Comments", "Commits", "Badges",
}

// SpreadsheetService exports the leaderboard and badge awards as an XLSX
// workbook
type SpreadsheetService struct {
	leaderboardService *LeaderboardService
	badgeRepo          *repositories.BadgeRepository
}

// NewSpreadsheetService creates a new SpreadsheetService
func NewSpreadsheetService(leaderboardService *LeaderboardService, badgeRepo *repositories.BadgeRepository) *SpreadsheetService {
	return &SpreadsheetService{
		leaderboardService: leaderboardService,
		badgeRepo:          badgeRepo,
	}
}

// Export writes the workbook to the given path with a leaderboard sheet
// and a badges sheet
func (s *SpreadsheetService) Export(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeLeaderboardSheet(f); err != nil {
		return err
	}
	if err := s.writeBadgesSheet(f); err != nil {
		return err
	}

	// Drop the default sheet created by excelize.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"path": path,
	}).Info("Exported spreadsheet")

	return nil
}

func (s *SpreadsheetService) writeLeaderboardSheet(f *excelize.File) error {
	const sheet = "Leaderboard"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create leaderboard sheet: %w", err)
	}

	for col, header := range leaderboardColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	entries, err := s.leaderboardService.Leaderboard(0)
	if err != nil {
		return err
	}

	for row, entry := range entries {
		values := []interface{}{
			entry.Rank,
			entry.Username,
			string(entry.Role),
			entry.Points,
			entry.Activities,
			entry.Counts[models.ActivityIssueOpened],
			entry.Counts[models.ActivityIssueClosed],
			entry.Counts[models.ActivityPROpened],
			entry.Counts[models.ActivityPRMerged],
			entry.Counts[models.ActivityPRReviewed],
			entry.Counts[models.ActivityCommentCreated],
			entry.Counts[models.ActivityCommitCreated],
			entry.Badges,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *SpreadsheetService) writeBadgesSheet(f *excelize.File) error {
	const sheet = "Badges"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create badges sheet: %w", err)
	}

	headers := []string{"Badge", "Variant", "Username", "Achieved At"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	awards, err := s.badgeRepo.ListAwards("")
	if err != nil {
		return fmt.Errorf("failed to load awards: %w", err)
	}

	for row, award := range awards {
		values := []interface{}{
			award.BadgeSlug,
			award.Variant,
			award.Username,
			award.AchievedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}
