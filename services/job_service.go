package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// party is the caller's relationship to a job.
type party int

const (
	partyNone party = iota
	partyCustomer
	partyTechnician
)

func (p party) String() string {
	switch p {
	case partyCustomer:
		return "customer"
	case partyTechnician:
		return "technician"
	}
	return "non-party"
}

// availabilityEffect is the technician availability side effect coupled to a
// transition.
type availabilityEffect int

const (
	availKeep availabilityEffect = iota
	availBusy
	availFree
)

type transitionKey struct {
	from models.JobStatus
	to   models.JobStatus
	by   party
}

// transitions is the complete legal-transition table. Anything not listed
// here is rejected, including every edge out of a terminal status.
var transitions = map[transitionKey]availabilityEffect{
	{models.JobStatusRequested, models.JobStatusAccepted, partyTechnician}:   availBusy,
	{models.JobStatusRequested, models.JobStatusRejected, partyTechnician}:   availKeep,
	{models.JobStatusRequested, models.JobStatusCancelled, partyCustomer}:    availKeep,
	{models.JobStatusAccepted, models.JobStatusInProgress, partyTechnician}:  availKeep,
	{models.JobStatusInProgress, models.JobStatusCompleted, partyTechnician}: availFree,
}

// JobService owns the job lifecycle: creation preconditions, the transition
// table above and the coupled technician availability flag.
type JobService struct {
	store store.Store
}

// NewJobService returns a JobService backed by the given store.
func NewJobService(s store.Store) *JobService {
	return &JobService{store: s}
}

// CreateJobInput is the customer's service request.
type CreateJobInput struct {
	TechnicianID string
	Date         string
	Time         string
	Description  string
}

// CreateJob persists a new REQUESTED job for the customer. The technician
// must exist, be APPROVED and be currently available. Creation itself has no
// availability side effect.
func (s *JobService) CreateJob(ctx context.Context, customer *models.User, in CreateJobInput) (*models.Job, error) {
	if in.TechnicianID == "" || in.Date == "" || in.Time == "" || in.Description == "" {
		return nil, &ValidationError{Message: "All fields are required"}
	}

	techUser, err := s.store.Users().Get(ctx, in.TechnicianID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "Technician"}
		}
		return nil, internal("Failed to create service request", err)
	}
	if techUser.TechnicianStatus != models.TechnicianStatusApproved {
		return nil, &InvalidStateError{Message: "Technician is not approved for services"}
	}

	tech, err := s.store.Technicians().Get(ctx, in.TechnicianID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "Technician profile"}
		}
		return nil, internal("Failed to create service request", err)
	}
	if !tech.IsAvailable {
		return nil, &InvalidStateError{Message: "Technician is currently unavailable"}
	}

	now := time.Now().UTC()
	technicianName := techUser.Name
	if technicianName == "" {
		technicianName = techUser.Email
	}
	job := &models.Job{
		ID:             uuid.NewString(),
		CustomerID:     customer.ID,
		TechnicianID:   in.TechnicianID,
		Date:           in.Date,
		Time:           in.Time,
		Description:    in.Description,
		Status:         models.JobStatusRequested,
		CustomerName:   customer.Email,
		TechnicianName: technicianName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Jobs().Create(ctx, job); err != nil {
		return nil, internal("Failed to create service request", err)
	}
	return job, nil
}

// Transition moves a job to target on behalf of actor, enforcing the legal
// transition table. The status write is conditional on the status the actor
// observed, so a lost race surfaces as a ConflictError instead of silently
// overwriting the concurrent transition. The availability side effect runs
// after the status write and is best effort: a failure there leaves the
// technician flag stale relative to the committed job status and is logged.
func (s *JobService) Transition(ctx context.Context, jobID string, actor *models.User, target models.JobStatus) error {
	job, err := s.store.Jobs().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "Job"}
		}
		return internal("Failed to update job status", err)
	}

	p := partyNone
	switch actor.ID {
	case job.TechnicianID:
		p = partyTechnician
	case job.CustomerID:
		p = partyCustomer
	}

	effect, ok := transitions[transitionKey{from: job.Status, to: target, by: p}]
	if !ok {
		return &InvalidTransitionError{From: job.Status, To: target, Actor: p.String()}
	}

	if err := s.store.Jobs().UpdateStatus(ctx, jobID, job.Status, target, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, store.ErrConditionFailed):
			return &ConflictError{Message: "Job status changed concurrently, please retry"}
		case errors.Is(err, store.ErrNotFound):
			return &NotFoundError{Resource: "Job"}
		}
		return internal("Failed to update job status", err)
	}

	switch effect {
	case availBusy:
		if err := s.store.Technicians().SetAvailability(ctx, job.TechnicianID, false); err != nil {
			log.Printf("job %s: availability side effect failed after %s->%s: %v", jobID, job.Status, target, err)
		}
	case availFree:
		if err := s.store.Technicians().SetAvailability(ctx, job.TechnicianID, true); err != nil {
			log.Printf("job %s: availability side effect failed after %s->%s: %v", jobID, job.Status, target, err)
		}
	}

	return nil
}

// GetJobs lists jobs visible to the actor: admins see everything,
// technicians the jobs assigned to them, everyone else their own requests.
// Ordering is newest first, applied after the fetch since the store offers
// no compound ordering.
func (s *JobService) GetJobs(ctx context.Context, actor *models.User) ([]models.Job, error) {
	var (
		jobs []models.Job
		err  error
	)
	switch {
	case actor.IsAdmin():
		jobs, err = s.store.Jobs().ListAll(ctx)
	case actor.HasRole(models.RoleTechnician):
		jobs, err = s.store.Jobs().ListByTechnician(ctx, actor.ID)
	default:
		jobs, err = s.store.Jobs().ListByCustomer(ctx, actor.ID)
	}
	if err != nil {
		return nil, internal("Failed to fetch jobs", err)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// GetJobByID returns a single job if the actor is the job's customer, its
// technician or an admin.
func (s *JobService) GetJobByID(ctx context.Context, jobID string, actor *models.User) (*models.Job, error) {
	job, err := s.store.Jobs().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Resource: "Job"}
		}
		return nil, internal("Failed to fetch job", err)
	}

	if job.CustomerID != actor.ID && job.TechnicianID != actor.ID && !actor.IsAdmin() {
		return nil, &ForbiddenError{Message: "Unauthorized access to this job"}
	}
	return job, nil
}
