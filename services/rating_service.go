package services

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// maxAggregateRetries bounds the optimistic retry loop on the technician
// rating aggregate. Concurrent submissions for the same technician make the
// conditional write fail; each retry re-reads the current aggregate.
const maxAggregateRetries = 3

// RatingService maintains ratings and keeps the technician's incremental
// (averageRating, totalReviews) aggregate consistent with them. The
// aggregate update is a side effect of the rating write: if it ultimately
// fails it is logged, not rolled back, and the reviews listing recomputes
// its breakdown from the full rating set on every call.
type RatingService struct {
	store store.Store
}

// NewRatingService returns a RatingService backed by the given store.
func NewRatingService(s store.Store) *RatingService {
	return &RatingService{store: s}
}

// AddRatingInput is a customer's new review of a technician.
type AddRatingInput struct {
	TechnicianID string
	Rating       int
	Review       string
}

// ReviewListing is the reviews page payload: the joined review entries plus
// the display stats.
type ReviewListing struct {
	Reviews []models.ReviewEntry `json:"reviews"`
	Stats   models.ReviewStats   `json:"stats"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// AddRating inserts a rating and folds it into the technician aggregate:
// newAvg = (oldAvg*oldCount + value) / (oldCount+1), rounded to one decimal.
// A customer can rate a given technician at most once.
func (s *RatingService) AddRating(ctx context.Context, customerID string, in AddRatingInput) error {
	if in.Rating < 1 || in.Rating > 5 {
		return &ValidationError{Message: "Rating must be between 1-5"}
	}

	if _, err := s.store.Technicians().Get(ctx, in.TechnicianID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "Technician"}
		}
		return internal("Failed to add rating", err)
	}

	_, err := s.store.Ratings().FindByTechnicianAndCustomer(ctx, in.TechnicianID, customerID)
	if err == nil {
		return &ConflictError{Message: "Already rated this technician"}
	}
	if !errors.Is(err, store.ErrNotFound) {
		return internal("Failed to add rating", err)
	}

	rating := &models.Rating{
		ID:           uuid.NewString(),
		TechnicianID: in.TechnicianID,
		CustomerID:   customerID,
		Rating:       in.Rating,
		Review:       in.Review,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Ratings().Create(ctx, rating); err != nil {
		return internal("Failed to add rating", err)
	}

	s.adjustStats(ctx, in.TechnicianID, func(cur models.RatingStats) models.RatingStats {
		count := cur.TotalReviews + 1
		return models.RatingStats{
			TotalReviews:  count,
			AverageRating: round1((cur.AverageRating*float64(cur.TotalReviews) + float64(in.Rating)) / float64(count)),
		}
	})
	return nil
}

// UpdateRating changes a rating's value and review text. Only the author may
// edit. When the value changes the aggregate is adjusted in place: the count
// stays, the old value is swapped for the new one in the sum.
func (s *RatingService) UpdateRating(ctx context.Context, ratingID, actorID string, newValue int, newReview string) error {
	rating, err := s.store.Ratings().Get(ctx, ratingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "Rating"}
		}
		return internal("Failed to update rating", err)
	}
	if rating.CustomerID != actorID {
		return &ForbiddenError{Message: "You can only edit your own rating"}
	}
	if newValue < 1 || newValue > 5 {
		return &ValidationError{Message: "Rating must be between 1-5"}
	}

	if newValue != rating.Rating {
		oldValue := rating.Rating
		s.adjustStats(ctx, rating.TechnicianID, func(cur models.RatingStats) models.RatingStats {
			if cur.TotalReviews == 0 {
				return cur
			}
			sum := cur.AverageRating*float64(cur.TotalReviews) - float64(oldValue) + float64(newValue)
			return models.RatingStats{
				TotalReviews:  cur.TotalReviews,
				AverageRating: round1(sum / float64(cur.TotalReviews)),
			}
		})
	}

	rating.Rating = newValue
	rating.Review = newReview
	rating.UpdatedAt = time.Now().UTC()
	if err := s.store.Ratings().Update(ctx, rating); err != nil {
		return internal("Failed to update rating", err)
	}
	return nil
}

// DeleteRating removes a rating (author or admin only) and subtracts it from
// the aggregate. Deleting the technician's sole rating resets the aggregate
// to zero rather than dividing by zero.
func (s *RatingService) DeleteRating(ctx context.Context, ratingID string, actor *models.User) error {
	rating, err := s.store.Ratings().Get(ctx, ratingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "Rating"}
		}
		return internal("Failed to delete rating", err)
	}
	if rating.CustomerID != actor.ID && !actor.IsAdmin() {
		return &ForbiddenError{Message: "You can only delete your own rating"}
	}

	if err := s.store.Ratings().Delete(ctx, ratingID); err != nil {
		return internal("Failed to delete rating", err)
	}

	deleted := rating.Rating
	s.adjustStats(ctx, rating.TechnicianID, func(cur models.RatingStats) models.RatingStats {
		if cur.TotalReviews <= 1 {
			return models.RatingStats{}
		}
		count := cur.TotalReviews - 1
		return models.RatingStats{
			TotalReviews:  count,
			AverageRating: round1((cur.AverageRating*float64(cur.TotalReviews) - float64(deleted)) / float64(count)),
		}
	})
	return nil
}

// ListReviews returns a technician's reviews joined with the authors'
// display details, newest first, plus display stats. The headline count and
// average come from the technician document; the per-value breakdown is
// tallied from the full rating set on every call.
func (s *RatingService) ListReviews(ctx context.Context, technicianID string) (*ReviewListing, error) {
	tech, err := s.store.Technicians().Get(ctx, technicianID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "Technician"}
		}
		return nil, internal("Failed to fetch reviews", err)
	}

	ratings, err := s.store.Ratings().ListByTechnician(ctx, technicianID)
	if err != nil {
		return nil, internal("Failed to fetch reviews", err)
	}

	counts := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	reviews := make([]models.ReviewEntry, 0, len(ratings))
	for _, r := range ratings {
		counts[r.Rating]++

		entry := models.ReviewEntry{Rating: r, CustomerName: "Anonymous"}
		if author, err := s.store.Users().Get(ctx, r.CustomerID); err == nil {
			entry.CustomerName = author.Name
			entry.CustomerPic = author.ProfilePicURL
		}
		reviews = append(reviews, entry)
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	return &ReviewListing{
		Reviews: reviews,
		Stats: models.ReviewStats{
			TotalReviews:  tech.TotalReviews,
			AverageRating: tech.AverageRating,
			RatingCounts:  counts,
		},
	}, nil
}

// adjustStats applies compute to the technician's current aggregate with a
// conditional write, retrying on lost races. The rating document itself is
// already committed by the time this runs, so exhausting the retries is
// logged and absorbed rather than propagated.
func (s *RatingService) adjustStats(ctx context.Context, technicianID string, compute func(models.RatingStats) models.RatingStats) {
	for attempt := 0; attempt < maxAggregateRetries; attempt++ {
		tech, err := s.store.Technicians().Get(ctx, technicianID)
		if err != nil {
			log.Printf("technician %s: aggregate read failed: %v", technicianID, err)
			return
		}

		cur := tech.Stats()
		if err := s.store.Technicians().UpdateRatingStats(ctx, technicianID, cur, compute(cur)); err != nil {
			if errors.Is(err, store.ErrConditionFailed) {
				continue
			}
			log.Printf("technician %s: aggregate write failed: %v", technicianID, err)
			return
		}
		return
	}
	log.Printf("technician %s: aggregate update dropped after %d attempts", technicianID, maxAggregateRetries)
}
