package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/config"
	"github.com/handyhub-dev/handyhub-api/middleware"
	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/services"
	"github.com/handyhub-dev/handyhub-api/store"
)

// RegisterRequest represents the request body for account registration.
// Technician fields are only read by the technician variant.
type RegisterRequest struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Experience string  `json:"experience"`
	Price      float64 `json:"price"`
	Bio        string  `json:"bio"`
	City       string  `json:"city"`
	PhotoURL   string  `json:"photoUrl"`
}

// RegisterUser handles POST /api/auth/register - creates a customer profile
func RegisterUser(c *gin.Context) {
	registerWithRole(c, models.RoleCustomer)
}

// RegisterTechnician handles POST /api/auth/register/technician
func RegisterTechnician(c *gin.Context) {
	registerWithRole(c, models.RoleTechnician)
}

func registerWithRole(c *gin.Context, accountType string) {
	uid, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	ctx := c.Request.Context()
	users := store.Get().Users()

	// Prevent duplicate profile creation
	if existing, err := users.Get(ctx, uid); err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Profile already exists",
			"profile": existing,
		})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register user"})
		return
	}

	// The identity provider is the sole source of the email; a client-sent
	// name wins over the provider's display name.
	name := req.Name
	cfg := config.GetConfig()
	accessToken, tokenErr := middleware.GetAccessToken(c)
	if tokenErr != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return
	}
	info, infoErr := services.NewAuth0Service(cfg).GetUserInfo(accessToken)
	if infoErr != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to verify identity with the provider"})
		return
	}
	email := info.Email
	if name == "" {
		name = info.Name
	}
	if email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Identity provider did not supply an email"})
		return
	}

	// Admin guardrail - admin should already be bootstrapped
	if cfg.AdminEmail != "" && email == cfg.AdminEmail {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Admin account is managed by the server bootstrap process",
		})
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:               uid,
		Email:            email,
		Name:             name,
		Role:             models.RoleCustomer,
		Roles:            []string{models.RoleCustomer},
		TechnicianStatus: models.TechnicianStatusNone,
		ProfilePicURL:    req.PhotoURL,
		CreatedAt:        now,
	}
	if accountType == models.RoleTechnician {
		user.Role = models.RoleTechnician
		user.Roles = []string{models.RoleTechnician}
		user.TechnicianStatus = models.TechnicianStatusPending
	}

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			c.JSON(http.StatusOK, gin.H{"message": "Profile already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register user"})
		return
	}

	// Registering directly as technician creates the paired service profile
	if accountType == models.RoleTechnician {
		tech := &models.Technician{
			ID:          uid,
			Category:    req.Category,
			Experience:  req.Experience,
			Price:       req.Price,
			Bio:         req.Bio,
			City:        strings.ToLower(req.City),
			IsAvailable: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.Get().Technicians().Put(ctx, tech); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register user"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered",
		"profile": user,
	})
}
