package domain

import (
	"errors"
	"time"
)

// DefaultTitle is the sentinel title a conversation carries until its
// first exchange completes.
const DefaultTitle = "New Chat"

// ErrConversationNotFound is returned when an operation targets a
// conversation id that no longer exists (e.g. it was deleted while a
// request was in flight).
var ErrConversationNotFound = errors.New("conversation not found")

// Role represents the sender of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single chat message. Content is final from the
// moment the message is created; for assistant messages the partially
// revealed text lives in transient controller state, never here.
type Message struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Streaming bool      `json:"streaming"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation represents one chat thread. Messages are append-only and
// keep insertion order; the whole thread is only ever removed wholesale.
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationSummary is the navigation view of a conversation.
type ConversationSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
