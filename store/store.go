package store

import (
	"context"
	"errors"
	"time"

	"github.com/handyhub-dev/handyhub-api/models"
)

// Sentinel errors shared by every Store implementation.
var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrAlreadyExists is returned when a create hits an existing document ID.
	ErrAlreadyExists = errors.New("store: document already exists")
	// ErrConditionFailed is returned when a conditional write observed a
	// document that no longer matches the expected state.
	ErrConditionFailed = errors.New("store: conditional write failed")
)

// Store bundles the per-collection document stores. The backing database is
// a plain document store: no cross-document transactions, last-write-wins on
// unconditional writes, and no compound ordering (callers sort post-fetch).
type Store interface {
	Users() UserStore
	Technicians() TechnicianStore
	Jobs() JobStore
	Ratings() RatingStore
	Chats() ChatStore
}

// UserStore persists the identity/role facet of accounts.
type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	ListAll(ctx context.Context) ([]models.User, error)
	ListByTechnicianStatus(ctx context.Context, status string) ([]models.User, error)
}

// TechnicianStore persists the service-profile facet. UpdateRatingStats is a
// conditional write: it succeeds only while the stored aggregate still equals
// expect, returning ErrConditionFailed otherwise so callers can re-read and
// retry.
type TechnicianStore interface {
	Get(ctx context.Context, id string) (*models.Technician, error)
	Put(ctx context.Context, tech *models.Technician) error
	SetAvailability(ctx context.Context, id string, available bool) error
	UpdateRatingStats(ctx context.Context, id string, expect, next models.RatingStats) error
	ListAll(ctx context.Context) ([]models.Technician, error)
}

// JobStore persists jobs. UpdateStatus writes the new status only while the
// stored status still equals from, returning ErrConditionFailed when a
// concurrent transition won the race.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	ListAll(ctx context.Context) ([]models.Job, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Job, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]models.Job, error)
	UpdateStatus(ctx context.Context, id string, from, to models.JobStatus, at time.Time) error
}

// RatingStore persists ratings.
type RatingStore interface {
	Create(ctx context.Context, rating *models.Rating) error
	Get(ctx context.Context, id string) (*models.Rating, error)
	FindByTechnicianAndCustomer(ctx context.Context, technicianID, customerID string) (*models.Rating, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]models.Rating, error)
	Update(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, id string) error
}

// ChatStore persists chats and their messages.
type ChatStore interface {
	Create(ctx context.Context, chat *models.Chat) error
	Get(ctx context.Context, id string) (*models.Chat, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.Chat, error)
	Update(ctx context.Context, chat *models.Chat) error
	AddMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error)
}

var instance Store

// Set installs the active store instance.
func Set(s Store) {
	instance = s
}

// Get returns the active store instance.
func Get() Store {
	return instance
}
