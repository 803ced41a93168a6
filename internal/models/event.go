package models

import "time"

// Event types published on the user event queue.
const (
	EventUserRegistered = "user.registered"
)

// UserEvent is the message body published when an account changes.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}
