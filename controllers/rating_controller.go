package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/services"
	"github.com/handyhub-dev/handyhub-api/store"
)

// AddRatingRequest represents the request body for submitting a rating
type AddRatingRequest struct {
	TechnicianID string `json:"technicianId" binding:"required"`
	Rating       int    `json:"rating"`
	Review       string `json:"review"`
}

// UpdateRatingRequest represents the request body for editing a rating
type UpdateRatingRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// AddRating handles POST /api/rating - a customer rates a technician
func AddRating(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req AddRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	svc := services.NewRatingService(store.Get())
	err := svc.AddRating(c.Request.Context(), user.ID, services.AddRatingInput{
		TechnicianID: req.TechnicianID,
		Rating:       req.Rating,
		Review:       req.Review,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating submitted successfully"})
}

// GetTechnicianReviews handles GET /api/rating/:technicianId
func GetTechnicianReviews(c *gin.Context) {
	svc := services.NewRatingService(store.Get())
	listing, err := svc.ListReviews(c.Request.Context(), c.Param("technicianId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// UpdateRating handles PUT /api/rating/:id - the author edits their rating
func UpdateRating(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	svc := services.NewRatingService(store.Get())
	if err := svc.UpdateRating(c.Request.Context(), c.Param("id"), user.ID, req.Rating, req.Review); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating updated"})
}

// DeleteRating handles DELETE /api/rating/:id - author or admin removes a rating
func DeleteRating(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	svc := services.NewRatingService(store.Get())
	if err := svc.DeleteRating(c.Request.Context(), c.Param("id"), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating deleted"})
}
