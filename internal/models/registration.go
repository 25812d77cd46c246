package models

import "time"

// EventRegistration records an RSVP. One row per (event, user).
type EventRegistration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_registrations_event_user" json:"event_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_registrations_event_user" json:"user_id"`
	Status    string    `gorm:"default:confirmed" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
