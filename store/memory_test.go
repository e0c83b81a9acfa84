package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handyhub-dev/handyhub-api/models"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	t.Run("create, get, update", func(t *testing.T) {
		user := &models.User{ID: "u1", Email: "u1@example.com", Roles: []string{models.RoleCustomer}}
		require.NoError(t, s.Users().Create(ctx, user))

		got, err := s.Users().Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1@example.com", got.Email)

		got.Name = "Updated"
		require.NoError(t, s.Users().Update(ctx, got))

		again, err := s.Users().Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Updated", again.Name)
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		err := s.Users().Create(ctx, &models.User{ID: "u1"})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("missing user fails", func(t *testing.T) {
		_, err := s.Users().Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		got, err := s.Users().Get(ctx, "u1")
		require.NoError(t, err)
		got.Email = "mutated@example.com"

		again, err := s.Users().Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1@example.com", again.Email)
	})

	t.Run("list filters by technician status", func(t *testing.T) {
		require.NoError(t, s.Users().Create(ctx, &models.User{ID: "u2", TechnicianStatus: models.TechnicianStatusPending}))
		require.NoError(t, s.Users().Create(ctx, &models.User{ID: "u3", TechnicianStatus: models.TechnicianStatusApproved}))

		pending, err := s.Users().ListByTechnicianStatus(ctx, models.TechnicianStatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "u2", pending[0].ID)
	})
}

func TestMemoryTechnicianConditionalStats(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Technicians().Put(ctx, &models.Technician{
		ID:            "t1",
		AverageRating: 4.0,
		TotalReviews:  2,
	}))

	t.Run("write succeeds while the aggregate matches", func(t *testing.T) {
		expect := models.RatingStats{AverageRating: 4.0, TotalReviews: 2}
		next := models.RatingStats{AverageRating: 4.3, TotalReviews: 3}
		require.NoError(t, s.Technicians().UpdateRatingStats(ctx, "t1", expect, next))

		tech, err := s.Technicians().Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, next, tech.Stats())
	})

	t.Run("stale expectation fails the condition", func(t *testing.T) {
		stale := models.RatingStats{AverageRating: 4.0, TotalReviews: 2}
		err := s.Technicians().UpdateRatingStats(ctx, "t1", stale, models.RatingStats{AverageRating: 5.0, TotalReviews: 4})
		assert.ErrorIs(t, err, ErrConditionFailed)
	})

	t.Run("missing technician fails not found", func(t *testing.T) {
		err := s.Technicians().UpdateRatingStats(ctx, "nope", models.RatingStats{}, models.RatingStats{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("availability toggles independently", func(t *testing.T) {
		require.NoError(t, s.Technicians().SetAvailability(ctx, "t1", true))
		tech, err := s.Technicians().Get(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, tech.IsAvailable)
	})
}

func TestMemoryJobConditionalStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	now := time.Now().UTC()
	require.NoError(t, s.Jobs().Create(ctx, &models.Job{
		ID:           "j1",
		CustomerID:   "c1",
		TechnicianID: "t1",
		Status:       models.JobStatusRequested,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	t.Run("status write succeeds from the expected state", func(t *testing.T) {
		at := now.Add(time.Minute)
		require.NoError(t, s.Jobs().UpdateStatus(ctx, "j1", models.JobStatusRequested, models.JobStatusAccepted, at))

		job, err := s.Jobs().Get(ctx, "j1")
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusAccepted, job.Status)
		assert.Equal(t, at, job.UpdatedAt)
	})

	t.Run("lost race fails the condition", func(t *testing.T) {
		err := s.Jobs().UpdateStatus(ctx, "j1", models.JobStatusRequested, models.JobStatusCancelled, now)
		assert.ErrorIs(t, err, ErrConditionFailed)

		job, getErr := s.Jobs().Get(ctx, "j1")
		require.NoError(t, getErr)
		assert.Equal(t, models.JobStatusAccepted, job.Status)
	})

	t.Run("missing job fails not found", func(t *testing.T) {
		err := s.Jobs().UpdateStatus(ctx, "nope", models.JobStatusRequested, models.JobStatusAccepted, now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("lists filter by party", func(t *testing.T) {
		require.NoError(t, s.Jobs().Create(ctx, &models.Job{ID: "j2", CustomerID: "c2", TechnicianID: "t1", Status: models.JobStatusRequested}))

		byCustomer, err := s.Jobs().ListByCustomer(ctx, "c1")
		require.NoError(t, err)
		assert.Len(t, byCustomer, 1)

		byTechnician, err := s.Jobs().ListByTechnician(ctx, "t1")
		require.NoError(t, err)
		assert.Len(t, byTechnician, 2)

		all, err := s.Jobs().ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestMemoryRatings(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	rating := &models.Rating{ID: "r1", TechnicianID: "t1", CustomerID: "c1", Rating: 4}
	require.NoError(t, s.Ratings().Create(ctx, rating))

	t.Run("lookup by technician and customer", func(t *testing.T) {
		got, err := s.Ratings().FindByTechnicianAndCustomer(ctx, "t1", "c1")
		require.NoError(t, err)
		assert.Equal(t, "r1", got.ID)

		_, err = s.Ratings().FindByTechnicianAndCustomer(ctx, "t1", "c2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update and delete", func(t *testing.T) {
		got, err := s.Ratings().Get(ctx, "r1")
		require.NoError(t, err)
		got.Rating = 5
		require.NoError(t, s.Ratings().Update(ctx, got))

		again, err := s.Ratings().Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, 5, again.Rating)

		require.NoError(t, s.Ratings().Delete(ctx, "r1"))
		_, err = s.Ratings().Get(ctx, "r1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleting a missing rating fails", func(t *testing.T) {
		assert.ErrorIs(t, s.Ratings().Delete(ctx, "r1"), ErrNotFound)
	})
}

func TestMemoryChats(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	chat := &models.Chat{
		ID:           "chat-1",
		Participants: []string{"c1", "t1"},
		UnreadCounts: map[string]int{"c1": 0, "t1": 0},
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.Chats().Create(ctx, chat))

	t.Run("list by participant", func(t *testing.T) {
		chats, err := s.Chats().ListByParticipant(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, chats, 1)
		assert.Equal(t, "chat-1", chats[0].ID)

		none, err := s.Chats().ListByParticipant(ctx, "x")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("messages accumulate in order", func(t *testing.T) {
		base := time.Now().UTC()
		for i, text := range []string{"hello", "hi there"} {
			require.NoError(t, s.Chats().AddMessage(ctx, &models.ChatMessage{
				ID:        text,
				ChatID:    "chat-1",
				SenderID:  "c1",
				Text:      text,
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}))
		}

		msgs, err := s.Chats().ListMessages(ctx, "chat-1")
		require.NoError(t, err)
		require.Len(t, msgs, 2)
	})

	t.Run("unread counters persist through update", func(t *testing.T) {
		got, err := s.Chats().Get(ctx, "chat-1")
		require.NoError(t, err)
		got.UnreadCounts["t1"] = 2
		got.LastMessage = "hi there"
		require.NoError(t, s.Chats().Update(ctx, got))

		again, err := s.Chats().Get(ctx, "chat-1")
		require.NoError(t, err)
		assert.Equal(t, 2, again.UnreadCounts["t1"])
		assert.Equal(t, "hi there", again.LastMessage)
	})
}
