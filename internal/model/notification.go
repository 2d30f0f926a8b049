package model

import "time"

// NotificationType classifies what happened. The type drives both the
// client-side rendering and the shape of the Data payload.
type NotificationType string

const (
	NotificationLike               NotificationType = "like"
	NotificationComment            NotificationType = "comment"
	NotificationNewConnection      NotificationType = "new_connection"
	NotificationConnectionAccepted NotificationType = "connection_accepted"
	NotificationConnectionRejected NotificationType = "connection_rejected"
)

// Notification is one entry in a user's notification log.
//
// Data is a free-form, type-specific payload (post id, actor name, preview
// text, ...). It is stored as given and returned as given — the server never
// interprets it after creation.
//
// Read is the only mutable field. The transition is one-way:
// created unread, later marked read, never back.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"` // recipient
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
