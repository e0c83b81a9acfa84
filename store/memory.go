package store

import (
	"context"
	"sync"
	"time"

	"github.com/handyhub-dev/handyhub-api/models"
)

// Memory is an in-memory Store with the same conditional-write semantics as
// the DynamoDB implementation. Tests use it the way an in-memory database
// stands in for the managed one.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]models.User
	techs    map[string]models.Technician
	jobs     map[string]models.Job
	ratings  map[string]models.Rating
	chats    map[string]models.Chat
	messages map[string]models.ChatMessage
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]models.User),
		techs:    make(map[string]models.Technician),
		jobs:     make(map[string]models.Job),
		ratings:  make(map[string]models.Rating),
		chats:    make(map[string]models.Chat),
		messages: make(map[string]models.ChatMessage),
	}
}

func (m *Memory) Users() UserStore             { return &memUsers{m} }
func (m *Memory) Technicians() TechnicianStore { return &memTechnicians{m} }
func (m *Memory) Jobs() JobStore               { return &memJobs{m} }
func (m *Memory) Ratings() RatingStore         { return &memRatings{m} }
func (m *Memory) Chats() ChatStore             { return &memChats{m} }

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyUser(u models.User) models.User {
	u.Roles = copyStrings(u.Roles)
	return u
}

func copyChat(c models.Chat) models.Chat {
	c.Participants = copyStrings(c.Participants)
	c.UnreadCounts = copyCounts(c.UnreadCounts)
	return c
}

// --- users ---

type memUsers struct{ m *Memory }

func (s *memUsers) Get(_ context.Context, id string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = copyUser(u)
	return &u, nil
}

func (s *memUsers) Create(_ context.Context, user *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[user.ID]; ok {
		return ErrAlreadyExists
	}
	s.m.users[user.ID] = copyUser(*user)
	return nil
}

func (s *memUsers) Update(_ context.Context, user *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.users[user.ID] = copyUser(*user)
	return nil
}

func (s *memUsers) ListAll(_ context.Context) ([]models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	users := make([]models.User, 0, len(s.m.users))
	for _, u := range s.m.users {
		users = append(users, copyUser(u))
	}
	return users, nil
}

func (s *memUsers) ListByTechnicianStatus(_ context.Context, status string) ([]models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var users []models.User
	for _, u := range s.m.users {
		if u.TechnicianStatus == status {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

// --- technicians ---

type memTechnicians struct{ m *Memory }

func (s *memTechnicians) Get(_ context.Context, id string) (*models.Technician, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	t, ok := s.m.techs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *memTechnicians) Put(_ context.Context, tech *models.Technician) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.techs[tech.ID] = *tech
	return nil
}

func (s *memTechnicians) SetAvailability(_ context.Context, id string, available bool) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t, ok := s.m.techs[id]
	if !ok {
		return ErrNotFound
	}
	t.IsAvailable = available
	t.UpdatedAt = time.Now().UTC()
	s.m.techs[id] = t
	return nil
}

func (s *memTechnicians) UpdateRatingStats(_ context.Context, id string, expect, next models.RatingStats) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t, ok := s.m.techs[id]
	if !ok {
		return ErrNotFound
	}
	if t.TotalReviews != expect.TotalReviews || t.AverageRating != expect.AverageRating {
		return ErrConditionFailed
	}
	t.TotalReviews = next.TotalReviews
	t.AverageRating = next.AverageRating
	t.UpdatedAt = time.Now().UTC()
	s.m.techs[id] = t
	return nil
}

func (s *memTechnicians) ListAll(_ context.Context) ([]models.Technician, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	techs := make([]models.Technician, 0, len(s.m.techs))
	for _, t := range s.m.techs {
		techs = append(techs, t)
	}
	return techs, nil
}

// --- jobs ---

type memJobs struct{ m *Memory }

func (s *memJobs) Create(_ context.Context, job *models.Job) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.jobs[job.ID]; ok {
		return ErrAlreadyExists
	}
	s.m.jobs[job.ID] = *job
	return nil
}

func (s *memJobs) Get(_ context.Context, id string) (*models.Job, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	j, ok := s.m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &j, nil
}

func (s *memJobs) ListAll(_ context.Context) ([]models.Job, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	jobs := make([]models.Job, 0, len(s.m.jobs))
	for _, j := range s.m.jobs {
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (s *memJobs) ListByCustomer(_ context.Context, customerID string) ([]models.Job, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var jobs []models.Job
	for _, j := range s.m.jobs {
		if j.CustomerID == customerID {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

func (s *memJobs) ListByTechnician(_ context.Context, technicianID string) ([]models.Job, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var jobs []models.Job
	for _, j := range s.m.jobs {
		if j.TechnicianID == technicianID {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

func (s *memJobs) UpdateStatus(_ context.Context, id string, from, to models.JobStatus, at time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	j, ok := s.m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status != from {
		return ErrConditionFailed
	}
	j.Status = to
	j.UpdatedAt = at
	s.m.jobs[id] = j
	return nil
}

// --- ratings ---

type memRatings struct{ m *Memory }

func (s *memRatings) Create(_ context.Context, rating *models.Rating) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.ratings[rating.ID]; ok {
		return ErrAlreadyExists
	}
	s.m.ratings[rating.ID] = *rating
	return nil
}

func (s *memRatings) Get(_ context.Context, id string) (*models.Rating, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	r, ok := s.m.ratings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *memRatings) FindByTechnicianAndCustomer(_ context.Context, technicianID, customerID string) (*models.Rating, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, r := range s.m.ratings {
		if r.TechnicianID == technicianID && r.CustomerID == customerID {
			r := r
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memRatings) ListByTechnician(_ context.Context, technicianID string) ([]models.Rating, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var ratings []models.Rating
	for _, r := range s.m.ratings {
		if r.TechnicianID == technicianID {
			ratings = append(ratings, r)
		}
	}
	return ratings, nil
}

func (s *memRatings) Update(_ context.Context, rating *models.Rating) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.ratings[rating.ID] = *rating
	return nil
}

func (s *memRatings) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.ratings, id)
	return nil
}

// --- chats ---

type memChats struct{ m *Memory }

func (s *memChats) Create(_ context.Context, chat *models.Chat) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.chats[chat.ID]; ok {
		return ErrAlreadyExists
	}
	s.m.chats[chat.ID] = copyChat(*chat)
	return nil
}

func (s *memChats) Get(_ context.Context, id string) (*models.Chat, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	c, ok := s.m.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = copyChat(c)
	return &c, nil
}

func (s *memChats) ListByParticipant(_ context.Context, userID string) ([]models.Chat, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var chats []models.Chat
	for _, c := range s.m.chats {
		for _, p := range c.Participants {
			if p == userID {
				chats = append(chats, copyChat(c))
				break
			}
		}
	}
	return chats, nil
}

func (s *memChats) Update(_ context.Context, chat *models.Chat) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.chats[chat.ID] = copyChat(*chat)
	return nil
}

func (s *memChats) AddMessage(_ context.Context, msg *models.ChatMessage) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.messages[msg.ID]; ok {
		return ErrAlreadyExists
	}
	s.m.messages[msg.ID] = *msg
	return nil
}

func (s *memChats) ListMessages(_ context.Context, chatID string) ([]models.ChatMessage, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var msgs []models.ChatMessage
	for _, msg := range s.m.messages {
		if msg.ChatID == chatID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}
