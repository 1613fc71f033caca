package models

import "time"

// MissionCompletion is an activity fact recorded when a restaurant finishes
// a daily content mission. The badge evaluator counts these rows.
type MissionCompletion struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	MissionID      string    `gorm:"index" json:"mission_id"`
	CompletedAt    time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

// TutorialView is an activity fact recorded when a user finishes a tutorial
type TutorialView struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	TutorialID     string    `gorm:"index" json:"tutorial_id"`
	ViewedAt       time.Time `gorm:"autoCreateTime" json:"viewed_at"`
}
