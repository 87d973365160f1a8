package models

import (
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Attachment is an immutable file payload attached to a turn.
// Data holds the base64-encoded bytes as read from the client.
type Attachment struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name,omitempty"`
}

// Citation is a grounding source reference attached by the generation
// provider. Citations are deduplicated by URI within a single response.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Turn is one message in a conversation. The turn list is append-only during
// a session; the final element is overwritten in place while a response
// streams (clients always render the latest cumulative text).
type Turn struct {
	Role       Role        `json:"role"`
	Text       string      `json:"text"`
	Timestamp  time.Time   `json:"timestamp"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Image      *Attachment `json:"image,omitempty"` // generated illustration
	Citations  []Citation  `json:"citations,omitempty"`
	IsError    bool        `json:"isError,omitempty"`
}

// Conversation is a user's persisted turn history. It replaces the browser
// localStorage document: one JSON array of turns per conversation, no schema
// versioning, unreadable stored payloads are discarded on load.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Turns     []Turn    `json:"turns" db:"turns"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
