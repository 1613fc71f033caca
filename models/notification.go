package models

import "time"

// Notification types produced by the progression engine
const (
	NotificationLevelUp = "level_up"
)

// Notification: in-app notification row. Level-ups land here; delivery
// failure of the matching push never rolls these back.
type Notification struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string     `gorm:"index;not null" json:"external_user_id"`
	Type           string     `gorm:"type:varchar(32);not null" json:"type"`
	Title          string     `gorm:"not null" json:"title"`
	Body           string     `json:"body"`
	Data           string     `gorm:"type:jsonb" json:"data,omitempty"` // e.g. {"level": 3}
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
