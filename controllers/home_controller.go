package controllers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/store"
)

// GetHomeData handles GET /api/home - the landing page payload: top rated
// technicians, the distinct categories and a technician count.
func GetHomeData(c *gin.Context) {
	ctx := c.Request.Context()

	techs, err := store.Get().Technicians().ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load home data"})
		return
	}

	sort.Slice(techs, func(i, j int) bool {
		return techs[i].AverageRating > techs[j].AverageRating
	})

	top := techs
	if len(top) > 3 {
		top = top[:3]
	}

	topTechnicians := make([]gin.H, 0, len(top))
	for _, t := range top {
		name := "Unknown"
		profilePic := ""
		if user, err := store.Get().Users().Get(ctx, t.ID); err == nil {
			name = user.Name
			profilePic = user.ProfilePicURL
		}
		topTechnicians = append(topTechnicians, gin.H{
			"uid":           t.ID,
			"name":          name,
			"profilePic":    profilePic,
			"category":      t.Category,
			"price":         t.Price,
			"city":          t.City,
			"averageRating": t.AverageRating,
			"totalReviews":  t.TotalReviews,
		})
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

	c.JSON(http.StatusOK, gin.H{
		"topTechnicians":   topTechnicians,
		"categories":       categories,
		"totalTechnicians": len(techs),
	})
}
