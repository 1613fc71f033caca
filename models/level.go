package models

import "github.com/google/uuid"

// XP action types the engine knows how to reward
const (
	ActionMissionCompleted  = "mission_completed"
	ActionTutorialCompleted = "tutorial_completed"
)

// LevelThreshold: static config — cumulative XP required to reach a level.
// Administered elsewhere; the engine only reads these, ordered by Level.
type LevelThreshold struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	Level      int    `gorm:"uniqueIndex;not null" json:"level"`
	XPRequired int64  `gorm:"not null" json:"xp_required"` // strictly increasing with Level; level 1 is 0
	Name       string `gorm:"not null" json:"name"`        // "Commis", "Chef de Partie", ...
	Icon       string `gorm:"type:text" json:"icon"`       // R2 object key or emoji

	Timestamps
}

// XPAction: static config — how much XP an action type is worth.
// Inactive actions grant nothing and are skipped silently.
type XPAction struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ActionType string `gorm:"uniqueIndex;not null" json:"action_type"`
	XPAmount   int64  `gorm:"not null;default:0" json:"xp_amount"`
	// No column default — see Badge.IsActive
	IsActive bool `gorm:"not null" json:"is_active"`

	Timestamps
}

// DefaultLevelThresholds seed the catalog on first boot (kitchen-brigade names)
var DefaultLevelThresholds = []LevelThreshold{
	{ID: uuid.NewString(), Level: 1, XPRequired: 0, Name: "Plongeur", Icon: "🧽"},
	{ID: uuid.NewString(), Level: 2, XPRequired: 50, Name: "Commis", Icon: "🔪"},
	{ID: uuid.NewString(), Level: 3, XPRequired: 150, Name: "Chef de Partie", Icon: "🍳"},
	{ID: uuid.NewString(), Level: 4, XPRequired: 350, Name: "Sous-Chef", Icon: "👨‍🍳"},
	{ID: uuid.NewString(), Level: 5, XPRequired: 700, Name: "Chef de Cuisine", Icon: "⭐"},
	{ID: uuid.NewString(), Level: 6, XPRequired: 1500, Name: "Chef Étoilé", Icon: "🌟"},
}

// DefaultXPActions seed the action catalog on first boot
var DefaultXPActions = []XPAction{
	{ID: uuid.NewString(), ActionType: ActionMissionCompleted, XPAmount: 20, IsActive: true},
	{ID: uuid.NewString(), ActionType: ActionTutorialCompleted, XPAmount: 10, IsActive: true},
}
