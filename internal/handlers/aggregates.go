package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laurelhq/laurel/internal/repositories"
)

type AggregateHandler struct {
	aggregateRepo *repositories.AggregateRepository
}

func NewAggregateHandler(aggregateRepo *repositories.AggregateRepository) *AggregateHandler {
	return &AggregateHandler{aggregateRepo: aggregateRepo}
}

// List handles GET /api/aggregates
func (h *AggregateHandler) List(c *gin.Context) {
	aggregates, err := h.aggregateRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"aggregates": aggregates})
}

// ContributorValues handles GET /api/aggregates/:slug/contributors
func (h *AggregateHandler) ContributorValues(c *gin.Context) {
	slug := c.Param("slug")

	aggregate, err := h.aggregateRepo.GetBySlug(slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if aggregate == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "aggregate not found"})
		return
	}

	values, err := h.aggregateRepo.ListContributorValues(slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"aggregate": aggregate,
		"values":    values,
	})
}
