package session

import (
	"time"

	"tezbot/app/activity"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type MessageKind string

const (
	KindText    MessageKind = "text"
	KindImage   MessageKind = "image"
	KindVoice   MessageKind = "voice"
	KindCommand MessageKind = "command"
)

type Message struct {
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"type"`
}

// State is one user's conversation record. TotalMessages is a lifetime
// counter and keeps growing after Messages is trimmed.
type State struct {
	Messages       []Message       `json:"messages"`
	CreatedAt      time.Time       `json:"created_at"`
	LastUpdatedAt  time.Time       `json:"last_updated"`
	TotalMessages  int             `json:"total_messages"`
	CurrentPersona string          `json:"current_persona,omitempty"`
	Activity       *activity.State `json:"activity,omitempty"`
}

type Statistics struct {
	TotalMessages   int
	CurrentMessages int
	CreatedAt       time.Time
	LastUpdatedAt   time.Time
	Duration        time.Duration
}
