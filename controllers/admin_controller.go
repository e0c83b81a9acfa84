package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// VerifyTechnicianRequest represents the admin verification decision
type VerifyTechnicianRequest struct {
	UserID string `json:"userId" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// VerifyTechnician handles POST /api/admin/verify - approve or reject a
// pending technician application
func VerifyTechnician(c *gin.Context) {
	var req VerifyTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId and status are required"})
		return
	}

	if req.Status != models.TechnicianStatusApproved && req.Status != models.TechnicianStatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status must be APPROVED or REJECTED"})
		return
	}

	ctx := c.Request.Context()
	user, err := store.Get().Users().Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update technician status"})
		return
	}

	user.TechnicianStatus = req.Status
	if err := store.Get().Users().Update(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update technician status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Technician status updated"})
}

// GetPendingTechnicians handles GET /api/admin/pending-technicians - the
// review queue, each entry joined with its service profile
func GetPendingTechnicians(c *gin.Context) {
	ctx := c.Request.Context()
	users, err := store.Get().Users().ListByTechnicianStatus(ctx, models.TechnicianStatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load technicians"})
		return
	}

	pending := make([]gin.H, 0, len(users))
	for _, u := range users {
		entry := gin.H{
			"uid":              u.ID,
			"name":             u.Name,
			"email":            u.Email,
			"technicianStatus": u.TechnicianStatus,
			"profilePic":       u.ProfilePicURL,
		}
		if tech, err := store.Get().Technicians().Get(ctx, u.ID); err == nil {
			entry["category"] = tech.Category
			entry["price"] = tech.Price
			entry["experience"] = tech.Experience
			entry["bio"] = tech.Bio
			entry["city"] = tech.City
			entry["certificateUrl"] = tech.CertificateURL
		}
		pending = append(pending, entry)
	}

	c.JSON(http.StatusOK, pending)
}

// GetAllUsers handles GET /api/admin/users
func GetAllUsers(c *gin.Context) {
	users, err := store.Get().Users().ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetDashboardStats handles GET /api/admin/stats - headline counts for the
// admin dashboard
func GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := store.Get().Users().ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load stats"})
		return
	}
	techs, err := store.Get().Technicians().ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load stats"})
		return
	}
	jobs, err := store.Get().Jobs().ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load stats"})
		return
	}

	pending := 0
	for _, u := range users {
		if u.TechnicianStatus == models.TechnicianStatusPending {
			pending++
		}
	}

	jobsByStatus := make(map[string]int)
	for _, j := range jobs {
		jobsByStatus[string(j.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":         len(users),
		"totalTechnicians":   len(techs),
		"pendingTechnicians": pending,
		"totalJobs":          len(jobs),
		"jobsByStatus":       jobsByStatus,
	})
}
