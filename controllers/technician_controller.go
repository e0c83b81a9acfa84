package controllers

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// ApplyTechnicianRequest represents the technician application body
type ApplyTechnicianRequest struct {
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Experience     string  `json:"experience"`
	Bio            string  `json:"bio"`
	City           string  `json:"city"`
	PhotoURL       string  `json:"photoUrl"`
	CertificateURL string  `json:"certificateUrl"`
}

// UpdateAvailabilityRequest represents the manual availability toggle body
type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

// ApplyTechnician handles POST /api/technician/apply - an existing user
// applies for the technician role. The application moves the user to
// PENDING and creates (or merges into) the paired service profile.
func ApplyTechnician(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req ApplyTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	tech, err := store.Get().Technicians().Get(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit application"})
			return
		}
		tech = &models.Technician{ID: user.ID, IsAvailable: true, CreatedAt: now}
	}
	tech.Category = req.Category
	tech.Price = req.Price
	tech.Experience = req.Experience
	tech.Bio = req.Bio
	tech.City = strings.ToLower(req.City) // normalized for search
	if req.CertificateURL != "" {
		tech.CertificateURL = req.CertificateURL
	}
	tech.UpdatedAt = now

	if err := store.Get().Technicians().Put(ctx, tech); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit application"})
		return
	}

	stored, err := store.Get().Users().Get(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit application"})
		return
	}
	if !stored.HasRole(models.RoleTechnician) {
		stored.Roles = append(stored.Roles, models.RoleTechnician)
	}
	stored.Role = models.RoleTechnician
	stored.TechnicianStatus = models.TechnicianStatusPending
	if req.PhotoURL != "" {
		stored.ProfilePicURL = req.PhotoURL
	}
	if err := store.Get().Users().Update(ctx, stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit application"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Technician application submitted",
		"status":  models.TechnicianStatusPending,
	})
}

// UpdateAvailability handles PUT /api/technician/availability - the manual
// toggle, the only availability mutator besides the job lifecycle.
func UpdateAvailability(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "isAvailable is required"})
		return
	}

	if err := store.Get().Technicians().SetAvailability(c.Request.Context(), user.ID, *req.IsAvailable); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Technician profile missing"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability updated"})
}

// GetTechnicianProfile handles GET /api/technician/profile - own joined read
func GetTechnicianProfile(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	stored, err := store.Get().Users().Get(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if !stored.HasRole(models.RoleTechnician) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not a technician"})
		return
	}

	tech, err := store.Get().Technicians().Get(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Technician profile missing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":              stored.ID,
		"technicianStatus": stored.TechnicianStatus,
		"name":             stored.Name,
		"email":            stored.Email,
		"profilePic":       stored.ProfilePicURL,
		"category":         tech.Category,
		"price":            tech.Price,
		"experience":       tech.Experience,
		"bio":              tech.Bio,
		"city":             tech.City,
		"certificateUrl":   tech.CertificateURL,
		"isAvailable":      tech.IsAvailable,
		"averageRating":    tech.AverageRating,
		"totalReviews":     tech.TotalReviews,
	})
}

// GetTechnicianByID handles GET /api/technician/:id - public joined read
func GetTechnicianByID(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	tech, err := store.Get().Technicians().Get(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Technician not found"})
		return
	}

	listing := models.TechnicianListing{
		TechnicianID:  id,
		Category:      tech.Category,
		Price:         tech.Price,
		Experience:    tech.Experience,
		Bio:           tech.Bio,
		City:          tech.City,
		IsAvailable:   tech.IsAvailable,
		AverageRating: tech.AverageRating,
		TotalReviews:  tech.TotalReviews,
	}
	if user, err := store.Get().Users().Get(ctx, id); err == nil {
		listing.Name = user.Name
		listing.ProfilePicURL = user.ProfilePicURL
	}

	c.JSON(http.StatusOK, listing)
}

// GetTechnicianCities handles GET /api/technician/cities - distinct cities
func GetTechnicianCities(c *gin.Context) {
	techs, err := store.Get().Technicians().ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load cities"})
		return
	}

	seen := make(map[string]bool)
	cities := []string{}
	for _, t := range techs {
		if t.City != "" && !seen[t.City] {
			seen[t.City] = true
			cities = append(cities, t.City)
		}
	}
	sort.Strings(cities)

	c.JSON(http.StatusOK, cities)
}

// GetTechnicianCategories handles GET /api/technician/categories
func GetTechnicianCategories(c *gin.Context) {
	techs, err := store.Get().Technicians().ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load categories"})
		return
	}

	seen := make(map[string]bool)
	categories := []string{}
	for _, t := range techs {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			categories = append(categories, t.Category)
		}
	}
	sort.Strings(categories)

	c.JSON(http.StatusOK, categories)
}
