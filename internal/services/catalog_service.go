package services

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/laurelhq/laurel/pkg/metrics"
	"github.com/sirupsen/logrus"
)

//go:embed badges.yaml
var catalogYAML []byte

// CatalogVariant is one rung of a badge's ladder as configured in the
// catalog: the descriptor shown to users plus the count threshold that
// gates it
type CatalogVariant struct {
	Key         string `yaml:"key"`
	Threshold   int    `yaml:"threshold"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Requirement string `yaml:"requirement"`
}

// CatalogBadge is a badge definition plus the activity kind that
// triggers it
type CatalogBadge struct {
	Slug        string           `yaml:"slug"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Kind        string           `yaml:"kind"`
	Variants    []CatalogVariant `yaml:"variants"`
}

// CatalogAggregate is an aggregate definition entry
type CatalogAggregate struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type catalogFile struct {
	Aggregates []CatalogAggregate `yaml:"aggregates"`
	Badges     []CatalogBadge     `yaml:"badges"`
}

// CatalogService owns the static badge and aggregate definitions shipped
// with the binary and seeds them into the store
type CatalogService struct {
	badgeRepo     *repositories.BadgeRepository
	aggregateRepo *repositories.AggregateRepository
	catalog       catalogFile
}

// NewCatalogService creates a new CatalogService from the embedded
// catalog file
func NewCatalogService(badgeRepo *repositories.BadgeRepository, aggregateRepo *repositories.AggregateRepository) (*CatalogService, error) {
	var catalog catalogFile
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse badge catalog: %w", err)
	}

	for _, badge := range catalog.Badges {
		if len(badge.Variants) == 0 {
			return nil, fmt.Errorf("badge %s has no variants", badge.Slug)
		}
		for _, variant := range badge.Variants {
			if variant.Threshold <= 0 {
				return nil, fmt.Errorf("badge %s variant %s has non-positive threshold %d", badge.Slug, variant.Key, variant.Threshold)
			}
		}
	}

	return &CatalogService{
		badgeRepo:     badgeRepo,
		aggregateRepo: aggregateRepo,
		catalog:       catalog,
	}, nil
}

// Badges returns the configured badges with their ladders
func (s *CatalogService) Badges() []CatalogBadge {
	return s.catalog.Badges
}

// Aggregates returns the configured aggregate definitions
func (s *CatalogService) Aggregates() []CatalogAggregate {
	return s.catalog.Aggregates
}

// Seed upserts the catalog's badge and aggregate definitions into the
// store. This is the definitions stage of the pipeline and must run
// before aggregates are computed or badges awarded.
func (s *CatalogService) Seed() error {
	badges := make([]*models.Badge, 0, len(s.catalog.Badges))
	for _, entry := range s.catalog.Badges {
		badge := &models.Badge{
			Slug:        entry.Slug,
			Name:        entry.Name,
			Description: entry.Description,
			Variants:    make(map[string]models.BadgeVariant, len(entry.Variants)),
		}
		for _, variant := range entry.Variants {
			requirement := variant.Requirement
			badge.Variants[variant.Key] = models.BadgeVariant{
				Description: variant.Description,
				Image:       variant.Image,
				Requirement: &requirement,
			}
		}
		badges = append(badges, badge)
	}

	affected, err := s.badgeRepo.UpsertDefinitions(badges)
	if err != nil {
		return fmt.Errorf("failed to seed badge definitions: %w", err)
	}
	metrics.ObserveBatch("badge_definitions", int64(len(badges)), affected)
	logger.WithFields(logrus.Fields{
		"entity":    "badges",
		"submitted": len(badges),
		"affected":  affected,
	}).Info("Seeded badge definitions")

	aggregates := make([]*models.Aggregate, 0, len(s.catalog.Aggregates))
	for _, entry := range s.catalog.Aggregates {
		description := entry.Description
		aggregates = append(aggregates, &models.Aggregate{
			Slug:        entry.Slug,
			Name:        entry.Name,
			Description: &description,
		})
	}

	affected, err = s.aggregateRepo.UpsertDefinitions(aggregates)
	if err != nil {
		return fmt.Errorf("failed to seed aggregate definitions: %w", err)
	}
	metrics.ObserveBatch("aggregate_definitions", int64(len(aggregates)), affected)
	logger.WithFields(logrus.Fields{
		"entity":    "aggregates",
		"submitted": len(aggregates),
		"affected":  affected,
	}).Info("Seeded aggregate definitions")

	return nil
}
