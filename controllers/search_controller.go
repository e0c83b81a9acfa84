package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// SearchTechnicians handles GET /api/search - public listing of approved
// technicians, filterable by category, city substring and minimum rating,
// optionally sorted by price. Filtering and sorting happen after the fetch;
// the store offers no compound queries.
func SearchTechnicians(c *gin.Context) {
	category := c.Query("category")
	city := strings.ToLower(c.Query("city"))
	sortByPrice := c.Query("sortByPrice")

	var minRating float64
	if raw := c.Query("minRating"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "minRating must be a number"})
			return
		}
		minRating = parsed
	}

	ctx := c.Request.Context()
	approved, err := store.Get().Users().ListByTechnicianStatus(ctx, models.TechnicianStatusApproved)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Search failed"})
		return
	}

	results := []models.TechnicianListing{}
	for _, user := range approved {
		tech, err := store.Get().Technicians().Get(ctx, user.ID)
		if err != nil {
			continue
		}

		if category != "" && tech.Category != category {
			continue
		}
		if minRating > 0 && tech.AverageRating < minRating {
			continue
		}
		if city != "" && !strings.Contains(tech.City, city) {
			continue
		}

		results = append(results, models.TechnicianListing{
			TechnicianID:  user.ID,
			Name:          user.Name,
			ProfilePicURL: user.ProfilePicURL,
			Category:      tech.Category,
			Price:         tech.Price,
			Experience:    tech.Experience,
			Bio:           tech.Bio,
			City:          tech.City,
			IsAvailable:   tech.IsAvailable,
			AverageRating: tech.AverageRating,
			TotalReviews:  tech.TotalReviews,
		})
	}

	switch sortByPrice {
	case "low":
		sort.Slice(results, func(i, j int) bool { return results[i].Price < results[j].Price })
	case "high":
		sort.Slice(results, func(i, j int) bool { return results[i].Price > results[j].Price })
	}

	c.JSON(http.StatusOK, results)
}
