package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// UpdateProfileRequest represents the request body for updating a profile.
// Technician-specific fields fan out to the technician document.
type UpdateProfileRequest struct {
	Name       string   `json:"name"`
	Mobile     string   `json:"mobile"`
	PhotoURL   string   `json:"photoUrl"`
	Category   string   `json:"category"`
	Experience string   `json:"experience"`
	Price      *float64 `json:"price"`
	Bio        *string  `json:"bio"`
	City       string   `json:"city"`
}

// GetProfile handles GET /api/user/profile - the joined two-facet read
func GetProfile(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	stored, err := store.Get().Users().Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load profile"})
		return
	}

	var technician *models.Technician
	if stored.HasRole(models.RoleTechnician) {
		if tech, err := store.Get().Technicians().Get(ctx, user.ID); err == nil {
			technician = tech
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":              stored.ID,
		"email":            stored.Email,
		"name":             stored.Name,
		"role":             stored.Role,
		"roles":            stored.Roles,
		"technicianStatus": stored.TechnicianStatus,
		"profilePic":       stored.ProfilePicURL,
		"mobile":           stored.Mobile,
		"technician":       technician,
	})
}

// UpdateProfile handles PUT /api/user/profile
func UpdateProfile(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	ctx := c.Request.Context()
	stored, err := store.Get().Users().Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
		return
	}

	if req.Name != "" {
		stored.Name = req.Name
	}
	if req.Mobile != "" {
		stored.Mobile = req.Mobile
	}
	if req.PhotoURL != "" {
		stored.ProfilePicURL = req.PhotoURL
	}
	if err := store.Get().Users().Update(ctx, stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
		return
	}

	// Fan technician-specific fields out to the service profile, merge-style
	if stored.HasRole(models.RoleTechnician) &&
		(req.Category != "" || req.Experience != "" || req.Price != nil || req.Bio != nil || req.City != "") {
		tech, err := store.Get().Technicians().Get(ctx, user.ID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
				return
			}
			tech = &models.Technician{ID: user.ID, IsAvailable: true, CreatedAt: time.Now().UTC()}
		}

		if req.Category != "" {
			tech.Category = req.Category
		}
		if req.Experience != "" {
			tech.Experience = req.Experience
		}
		if req.Price != nil {
			tech.Price = *req.Price
		}
		if req.Bio != nil {
			tech.Bio = *req.Bio
		}
		if req.City != "" {
			tech.City = strings.ToLower(req.City)
		}
		tech.UpdatedAt = time.Now().UTC()

		if err := store.Get().Technicians().Put(ctx, tech); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}
