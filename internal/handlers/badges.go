package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laurelhq/laurel/internal/repositories"
)

type BadgeHandler struct {
	badgeRepo *repositories.BadgeRepository
}

func NewBadgeHandler(badgeRepo *repositories.BadgeRepository) *BadgeHandler {
	return &BadgeHandler{badgeRepo: badgeRepo}
}

// List handles GET /api/badges
func (h *BadgeHandler) List(c *gin.Context) {
	badges, err := h.badgeRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": badges})
}

// Awards handles GET /api/badges/:slug/awards
func (h *BadgeHandler) Awards(c *gin.Context) {
	slug := c.Param("slug")

	badge, err := h.badgeRepo.GetBySlug(slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if badge == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "badge not found"})
		return
	}

	awards, err := h.badgeRepo.ListAwards(slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badge":  badge,
		"awards": awards,
	})
}
