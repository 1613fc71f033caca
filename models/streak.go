package models

import "time"

// StreakRecord tracks consecutive activity days for a user.
// LastActivityDate is stored truncated to UTC midnight — the streak logic
// only ever compares whole calendar days.
type StreakRecord struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`

	CurrentStreak    int        `json:"current_streak" gorm:"default:0"`
	LongestStreak    int        `json:"longest_streak" gorm:"default:0"` // invariant: always >= CurrentStreak
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	Timestamps
}
