package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

type createJobRequest struct {
	Type models.JobType `json:"type" binding:"required"`
}

// Create handles POST /api/jobs
func (h *JobHandler) Create(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must contain a job type"})
		return
	}

	job, err := h.jobService.CreateJob(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

// Get handles GET /api/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobService.GetJob(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job})
}

// List handles GET /api/jobs
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobService.ListJobs(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
