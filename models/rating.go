package models

import "time"

// Rating is a customer's review of a technician. At most one rating exists
// per (technician, customer) pair; the engine enforces this at creation.
type Rating struct {
	ID           string    `json:"id" dynamodbav:"id"`
	TechnicianID string    `json:"technicianId" dynamodbav:"technician_id"`
	CustomerID   string    `json:"customerId" dynamodbav:"customer_id"`
	Rating       int       `json:"rating" dynamodbav:"rating"`
	Review       string    `json:"review" dynamodbav:"review"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty" dynamodbav:"updated_at,omitempty"`
}

// ReviewEntry is a rating joined with its author's display details for the
// public reviews listing.
type ReviewEntry struct {
	Rating
	CustomerName string `json:"customerName"`
	CustomerPic  string `json:"customerPic,omitempty"`
}

// ReviewStats is the display breakdown recomputed from the full rating set
// on every listing call. It is independent of the incremental aggregate on
// the technician document.
type ReviewStats struct {
	TotalReviews  int         `json:"totalReviews"`
	AverageRating float64     `json:"averageRating"`
	RatingCounts  map[int]int `json:"ratingCounts"`
}
