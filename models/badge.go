package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Badge criteria types — each compares one aggregate stat against CriteriaValue
const (
	CriteriaMissionsCompleted = "missions_completed"
	CriteriaStreakDays        = "streak_days"
	CriteriaTutorialsViewed   = "tutorials_viewed"
)

// Badge: static config (loaded from DB, seeded below)
type Badge struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Code          string `gorm:"uniqueIndex;not null" json:"code"` // slug of Name, e.g. "premiere-mission"
	Name          string `gorm:"not null" json:"name"`
	Description   string `json:"description"`
	Icon          string `gorm:"type:text" json:"icon"` // R2 object key or emoji
	CriteriaType  string `gorm:"type:varchar(32);not null" json:"criteria_type"`
	CriteriaValue int64  `gorm:"not null;default:0" json:"criteria_value"`
	// No column default: a default tag would make GORM drop an explicit
	// false from the INSERT. Writers always set this.
	IsActive     bool `gorm:"not null" json:"is_active"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`

	Timestamps
}

// BadgeUnlock: awarded instance — append-only, at most one per (user, badge).
// The composite unique index turns a concurrent duplicate insert into a
// rejected write instead of a double unlock.
type BadgeUnlock struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_user_badge,priority:1" json:"external_user_id"`
	BadgeID        string    `gorm:"not null;uniqueIndex:idx_user_badge,priority:2" json:"badge_id"`
	UnlockedAt     time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

func badgeCode(name string) string { return slug.Make(name) }

// DefaultBadges seed the catalog on first boot
var DefaultBadges = []Badge{
	{
		ID:            uuid.NewString(),
		Code:          badgeCode("Première Mission"),
		Name:          "Première Mission",
		Description:   "Completed your first content mission",
		Icon:          "📸",
		CriteriaType:  CriteriaMissionsCompleted,
		CriteriaValue: 1,
		DisplayOrder:  1,
		IsActive:      true,
	},
	{
		ID:            uuid.NewString(),
		Code:          badgeCode("Habitué"),
		Name:          "Habitué",
		Description:   "Completed 10 content missions",
		Icon:          "🎬",
		CriteriaType:  CriteriaMissionsCompleted,
		CriteriaValue: 10,
		DisplayOrder:  2,
		IsActive:      true,
	},
	{
		ID:            uuid.NewString(),
		Code:          badgeCode("Semaine Parfaite"),
		Name:          "Semaine Parfaite",
		Description:   "Posted 7 days in a row",
		Icon:          "🔥",
		CriteriaType:  CriteriaStreakDays,
		CriteriaValue: 7,
		DisplayOrder:  3,
		IsActive:      true,
	},
	{
		ID:            uuid.NewString(),
		Code:          badgeCode("Mois en Feu"),
		Name:          "Mois en Feu",
		Description:   "Kept a 30-day streak alive",
		Icon:          "🏆",
		CriteriaType:  CriteriaStreakDays,
		CriteriaValue: 30,
		DisplayOrder:  4,
		IsActive:      true,
	},
	{
		ID:            uuid.NewString(),
		Code:          badgeCode("Bon Élève"),
		Name:          "Bon Élève",
		Description:   "Watched 5 tutorials",
		Icon:          "🎓",
		CriteriaType:  CriteriaTutorialsViewed,
		CriteriaValue: 5,
		DisplayOrder:  5,
		IsActive:      true,
	},
}
