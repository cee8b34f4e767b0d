package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laurelhq/laurel/internal/repositories"
)

type ContributorHandler struct {
	contributorRepo *repositories.ContributorRepository
	aggregateRepo   *repositories.AggregateRepository
	badgeRepo       *repositories.BadgeRepository
}

func NewContributorHandler(
	contributorRepo *repositories.ContributorRepository,
	aggregateRepo *repositories.AggregateRepository,
	badgeRepo *repositories.BadgeRepository,
) *ContributorHandler {
	return &ContributorHandler{
		contributorRepo: contributorRepo,
		aggregateRepo:   aggregateRepo,
		badgeRepo:       badgeRepo,
	}
}

// List handles GET /api/contributors
func (h *ContributorHandler) List(c *gin.Context) {
	contributors, err := h.contributorRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contributors": contributors})
}

// Get handles GET /api/contributors/:username, returning the profile
// with aggregates and badges
func (h *ContributorHandler) Get(c *gin.Context) {
	username := c.Param("username")

	contributor, err := h.contributorRepo.GetByUsername(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if contributor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contributor not found"})
		return
	}

	aggregates, err := h.aggregateRepo.ListContributorValuesByUsername(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	badges, err := h.badgeRepo.ListAwardsByUsername(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contributor": contributor,
		"aggregates":  aggregates,
		"badges":      badges,
	})
}
