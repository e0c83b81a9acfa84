package models

import "time"

// Chat is a conversation between two users, usually a customer and a
// technician. Delivery is poll-driven; there is no push channel.
type Chat struct {
	ID             string         `json:"id" dynamodbav:"id"`
	Participants   []string       `json:"participants" dynamodbav:"participants"`
	TechnicianID   string         `json:"technicianId,omitempty" dynamodbav:"technician_id,omitempty"`
	StartedBy      string         `json:"startedBy" dynamodbav:"started_by"`
	LastMessage    string         `json:"lastMessage" dynamodbav:"last_message"`
	LastMessageAt  time.Time      `json:"lastMessageTimestamp" dynamodbav:"last_message_at"`
	UnreadCounts   map[string]int `json:"unreadCount" dynamodbav:"unread_counts"`
	CreatedAt      time.Time      `json:"createdAt" dynamodbav:"created_at"`
}

// HasParticipant reports whether the given user is part of this chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID, or "" when
// the chat has no other member.
func (c *Chat) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// ChatMessage is a single message inside a chat.
type ChatMessage struct {
	ID        string    `json:"id" dynamodbav:"id"`
	ChatID    string    `json:"chatId" dynamodbav:"chat_id"`
	SenderID  string    `json:"senderId" dynamodbav:"sender_id"`
	Text      string    `json:"text" dynamodbav:"text"`
	Read      bool      `json:"read" dynamodbav:"read"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// ChatSummary is a chat joined with the other participant's display details
// for the conversation list.
type ChatSummary struct {
	Chat
	OtherUser ChatParticipant `json:"otherUser"`
}

// ChatParticipant is the display info of the other side of a chat.
type ChatParticipant struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ProfilePicURL string `json:"profilePic,omitempty"`
}
