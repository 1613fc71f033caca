package services

import (
	"errors"
	"log"
	"time"

	"content-coach-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	DB      *gorm.DB
	Catalog *CatalogService
}

func NewBadgeService(db *gorm.DB, catalog *CatalogService) *BadgeService {
	return &BadgeService{DB: db, Catalog: catalog}
}

// BadgeStats is the aggregate snapshot badge criteria are checked against
type BadgeStats struct {
	MissionsCompleted int64
	LongestStreak     int64
	TutorialsViewed   int64
}

// UserBadgeView joins a catalog badge with the user's unlock state
type UserBadgeView struct {
	Badge      models.Badge `json:"badge"`
	Unlocked   bool         `json:"unlocked"`
	UnlockedAt *time.Time   `json:"unlocked_at,omitempty"`
}

// statsSnapshot gathers the user's aggregates in one place so every badge
// in the pass sees the same numbers
func (s *BadgeService) statsSnapshot(externalUserID string) (*BadgeStats, error) {
	stats := &BadgeStats{}

	if err := s.DB.Model(&models.MissionCompletion{}).
		Where("external_user_id = ?", externalUserID).
		Count(&stats.MissionsCompleted).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Model(&models.TutorialView{}).
		Where("external_user_id = ?", externalUserID).
		Count(&stats.TutorialsViewed).Error; err != nil {
		return nil, err
	}

	var rec models.StreakRecord
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&rec).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	stats.LongestStreak = int64(rec.LongestStreak)

	return stats, nil
}

func meetsCriteria(b models.Badge, stats *BadgeStats) bool {
	switch b.CriteriaType {
	case models.CriteriaMissionsCompleted:
		return stats.MissionsCompleted >= b.CriteriaValue
	case models.CriteriaStreakDays:
		return stats.LongestStreak >= b.CriteriaValue
	case models.CriteriaTutorialsViewed:
		return stats.TutorialsViewed >= b.CriteriaValue
	default:
		return false
	}
}

// EvaluateBadges checks every active badge against the user's current stats
// and records first-time unlocks. Returns only the badges unlocked by this
// call; repeated calls with unchanged stats return nothing.
func (s *BadgeService) EvaluateBadges(externalUserID string) ([]models.Badge, error) {
	stats, err := s.statsSnapshot(externalUserID)
	if err != nil {
		return nil, err
	}

	var existing []models.BadgeUnlock
	if err := s.DB.Where("external_user_id = ?", externalUserID).Find(&existing).Error; err != nil {
		return nil, err
	}
	unlocked := make(map[string]bool, len(existing))
	for _, u := range existing {
		unlocked[u.BadgeID] = true
	}

	var awarded []models.Badge
	for _, badge := range s.Catalog.Badges() {
		if unlocked[badge.ID] || !meetsCriteria(badge, stats) {
			continue
		}

		unlock := models.BadgeUnlock{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			BadgeID:        badge.ID,
		}
		// The (user, badge) unique index makes a concurrent double insert a
		// silent no-op instead of a duplicate unlock
		res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&unlock)
		if res.Error != nil {
			return awarded, res.Error
		}
		if res.RowsAffected == 0 {
			continue // lost the race — the other writer owns this unlock
		}

		awarded = append(awarded, badge)
		log.Printf("🎖️ Badge awarded: %s → %s", badge.Name, externalUserID)
	}

	return awarded, nil
}

// GetUserBadges returns the full catalog in display order with the user's
// unlock state. Pure projection — no criteria are evaluated here.
func (s *BadgeService) GetUserBadges(externalUserID string) ([]UserBadgeView, error) {
	var unlocks []models.BadgeUnlock
	if err := s.DB.Where("external_user_id = ?", externalUserID).Find(&unlocks).Error; err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.BadgeID] = u.UnlockedAt
	}

	badges := s.Catalog.Badges()
	views := make([]UserBadgeView, 0, len(badges))
	for _, b := range badges {
		view := UserBadgeView{Badge: b}
		if at, ok := unlockedAt[b.ID]; ok {
			view.Unlocked = true
			t := at
			view.UnlockedAt = &t
		}
		views = append(views, view)
	}
	return views, nil
}
