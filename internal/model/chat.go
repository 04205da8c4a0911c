package model

import "time"

// ChatMessage mirrors the `chat_messages` table.
type ChatMessage struct {
	ID         uint64    `json:"id"`
	SenderID   uint64    `json:"sender_id"`
	ReceiverID uint64    `json:"receiver_id"`
	Body       string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversation is an aggregate row for the conversation list: the peer,
// the latest message exchanged with them and how many of their messages
// are still unread.
type Conversation struct {
	PeerID          uint64    `json:"peer_id"`
	PeerName        string    `json:"peer_name"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}
