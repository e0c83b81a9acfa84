package controllers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/store"
)

// InitiateChatRequest represents the request body for starting a chat
type InitiateChatRequest struct {
	OtherUserID  string `json:"otherUserId" binding:"required"`
	TechnicianID string `json:"technicianId"`
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// InitiateChat handles POST /api/chat - finds or creates the conversation
// between the caller and the other user
func InitiateChat(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req InitiateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Other User ID is required"})
		return
	}

	ctx := c.Request.Context()
	existing, err := store.Get().Chats().ListByParticipant(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to initiate chat"})
		return
	}
	for _, chat := range existing {
		if chat.HasParticipant(req.OtherUserID) {
			c.JSON(http.StatusOK, gin.H{"chatId": chat.ID})
			return
		}
	}

	now := time.Now().UTC()
	chat := &models.Chat{
		ID:            uuid.NewString(),
		Participants:  []string{user.ID, req.OtherUserID},
		TechnicianID:  req.TechnicianID,
		StartedBy:     user.ID,
		LastMessageAt: now,
		UnreadCounts:  map[string]int{},
		CreatedAt:     now,
	}
	if err := store.Get().Chats().Create(ctx, chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to initiate chat"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"chatId": chat.ID})
}

// SendMessage handles POST /api/chat/:chatId/messages
func SendMessage(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Text is required"})
		return
	}

	ctx := c.Request.Context()
	chat, err := store.Get().Chats().Get(ctx, c.Param("chatId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}
	if !chat.HasParticipant(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not a participant"})
		return
	}

	now := time.Now().UTC()
	msg := &models.ChatMessage{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		SenderID:  user.ID,
		Text:      req.Text,
		CreatedAt: now,
	}
	if err := store.Get().Chats().AddMessage(ctx, msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}

	// Update the conversation header; the receiver's unread counter bumps
	chat.LastMessage = req.Text
	chat.LastMessageAt = now
	if receiver := chat.OtherParticipant(user.ID); receiver != "" {
		if chat.UnreadCounts == nil {
			chat.UnreadCounts = map[string]int{}
		}
		chat.UnreadCounts[receiver]++
	}
	if err := store.Get().Chats().Update(ctx, chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sent"})
}

// GetUserChats handles GET /api/chat - the caller's conversations, most
// recent activity first, joined with the other participant's display info
func GetUserChats(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	chats, err := store.Get().Chats().ListByParticipant(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch chats"})
		return
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := models.ChatSummary{Chat: chat}
		if otherID := chat.OtherParticipant(user.ID); otherID != "" {
			summary.OtherUser = models.ChatParticipant{ID: otherID, Name: "Unknown"}
			if other, err := store.Get().Users().Get(ctx, otherID); err == nil {
				summary.OtherUser.Name = other.Name
				summary.OtherUser.ProfilePicURL = other.ProfilePicURL
			}
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})

	c.JSON(http.StatusOK, summaries)
}

// GetMessages handles GET /api/chat/:chatId/messages - oldest first, and
// resets the caller's unread counter
func GetMessages(c *gin.Context) {
	user, ok := mustAuthUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	chat, err := store.Get().Chats().Get(ctx, c.Param("chatId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get messages"})
		return
	}
	if !chat.HasParticipant(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
		return
	}

	if chat.UnreadCounts[user.ID] != 0 {
		chat.UnreadCounts[user.ID] = 0
		// Best effort; an unread counter left behind heals on the next read
		_ = store.Get().Chats().Update(ctx, chat)
	}

	msgs, err := store.Get().Chats().ListMessages(ctx, chat.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get messages"})
		return
	}

	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}

	c.JSON(http.StatusOK, msgs)
}
