package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/repositories"
)

type ActivityHandler struct {
	activityRepo *repositories.ActivityRepository
}

func NewActivityHandler(activityRepo *repositories.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{activityRepo: activityRepo}
}

// List handles GET /api/activities with optional kind, contributor and
// limit query parameters
func (h *ActivityHandler) List(c *gin.Context) {
	kind := models.ActivityKind(c.Query("kind"))
	username := c.Query("contributor")

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	activities, err := h.activityRepo.List(kind, username, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}
