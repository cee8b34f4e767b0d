package commands

import (
	"database/sql"
	"fmt"

	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/internal/services"
	"github.com/laurelhq/laurel/pkg/config"
	"github.com/laurelhq/laurel/pkg/database"
	"github.com/laurelhq/laurel/pkg/logger"
)

// app wires the configuration, store and services for one CLI
// invocation
type app struct {
	cfg *config.Config
	db  *sql.DB

	pipeline    *services.PipelineService
	export      *services.ExportService
	spreadsheet *services.SpreadsheetService
}

// newApp loads configuration, opens the store and builds the service
// graph. Callers must close the returned app.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Log.Level)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	contributorRepo := repositories.NewContributorRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	aggregateRepo := repositories.NewAggregateRepository(db)
	badgeRepo := repositories.NewBadgeRepository(db)

	catalogService, err := services.NewCatalogService(badgeRepo, aggregateRepo)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	syncService := services.NewSyncService(cfg, contributorRepo, activityRepo)
	aggregateService := services.NewAggregateService(activityRepo, aggregateRepo)
	achievementService := services.NewAchievementService(activityRepo, badgeRepo, catalogService)
	leaderboardService := services.NewLeaderboardService(contributorRepo, activityRepo, badgeRepo)

	return &app{
		cfg:         cfg,
		db:          db,
		pipeline:    services.NewPipelineService(catalogService, syncService, aggregateService, achievementService),
		export:      services.NewExportService(contributorRepo, activityRepo, aggregateRepo, badgeRepo),
		spreadsheet: services.NewSpreadsheetService(leaderboardService, badgeRepo),
	}, nil
}

func (a *app) close() error {
	return a.db.Close()
}
