package models

import "time"

// Technician is the service-profile facet of a user holding the technician
// role. It shares its ID with the User document.
//
// AverageRating and TotalReviews form the rating aggregate: AverageRating is
// the mean of all non-deleted ratings for this technician rounded to one
// decimal, TotalReviews their count. Only the rating engine writes them.
// IsAvailable defaults to true and is flipped by job transitions or by the
// technician's own toggle, nothing else.
type Technician struct {
	ID             string    `json:"technicianId" dynamodbav:"id"`
	Category       string    `json:"category" dynamodbav:"category"`
	Price          float64   `json:"price" dynamodbav:"price"`
	Experience     string    `json:"experience" dynamodbav:"experience"`
	Bio            string    `json:"bio" dynamodbav:"bio"`
	City           string    `json:"city" dynamodbav:"city"` // lower-cased for search
	CertificateURL string    `json:"certificateUrl,omitempty" dynamodbav:"certificate_url,omitempty"`
	IsAvailable    bool      `json:"isAvailable" dynamodbav:"is_available"`
	AverageRating  float64   `json:"averageRating" dynamodbav:"average_rating"`
	TotalReviews   int       `json:"totalReviews" dynamodbav:"total_reviews"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// RatingStats is the aggregate pair carried on the technician document.
type RatingStats struct {
	TotalReviews  int     `json:"totalReviews"`
	AverageRating float64 `json:"averageRating"`
}

// Stats returns the technician's current rating aggregate.
func (t *Technician) Stats() RatingStats {
	return RatingStats{TotalReviews: t.TotalReviews, AverageRating: t.AverageRating}
}

// TechnicianListing is the joined read of the user and technician facets,
// returned by search, admin review queues and the public technician page.
type TechnicianListing struct {
	TechnicianID  string  `json:"technicianId"`
	Name          string  `json:"name"`
	ProfilePicURL string  `json:"profilePic,omitempty"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Experience    string  `json:"experience"`
	Bio           string  `json:"bio"`
	City          string  `json:"city"`
	IsAvailable   bool    `json:"isAvailable"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}
