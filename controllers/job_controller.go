package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/services"
	"github.com/handyhub-dev/handyhub-api/store"
)

// CreateJobRequest represents the request body for requesting a service
type CreateJobRequest struct {
	TechnicianID string `json:"technicianId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Description  string `json:"description"`
}

// UpdateJobStatusRequest represents the request body for a status transition
type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateJob handles POST /api/jobs - a customer requests a service
func CreateJob(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	svc := services.NewJobService(store.Get())
	job, err := svc.CreateJob(c.Request.Context(), user, services.CreateJobInput{
		TechnicianID: req.TechnicianID,
		Date:         req.Date,
		Time:         req.Time,
		Description:  req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      job.ID,
		"message": "Service requested successfully",
	})
}

// GetJobs handles GET /api/jobs - role-filtered job listing, newest first
func GetJobs(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	svc := services.NewJobService(store.Get())
	jobs, err := svc.GetJobs(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJobByID handles GET /api/jobs/:id
func GetJobByID(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	svc := services.NewJobService(store.Get())
	job, err := svc.GetJobByID(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// UpdateJobStatus handles PATCH /api/jobs/:id/status - a lifecycle transition
func UpdateJobStatus(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status is required"})
		return
	}

	svc := services.NewJobService(store.Get())
	target := models.JobStatus(req.Status)
	if err := svc.Transition(c.Request.Context(), c.Param("id"), user, target); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job status updated to " + req.Status})
}
