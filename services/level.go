package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"content-coach-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LevelService struct {
	DB       *gorm.DB
	Catalog  *CatalogService
	Notifier *NotificationService // optional; nil disables side effects
}

func NewLevelService(db *gorm.DB, catalog *CatalogService, notifier *NotificationService) *LevelService {
	return &LevelService{DB: db, Catalog: catalog, Notifier: notifier}
}

// LevelUpResult reports a promotion. On a multi-threshold jump only the
// final level is reported — intermediate levels are skipped on purpose.
type LevelUpResult struct {
	LeveledUp bool   `json:"leveled_up"`
	NewLevel  int    `json:"new_level,omitempty"`
	LevelName string `json:"level_name,omitempty"`
	LevelIcon string `json:"level_icon,omitempty"`
}

// XPResult is what AddXP hands back to the orchestrator
type XPResult struct {
	XPAdded int64          `json:"xp_added"`
	LevelUp *LevelUpResult `json:"level_up,omitempty"`
}

// LevelInfo is the read-side snapshot for presentation layers
type LevelInfo struct {
	TotalXP         int64  `json:"total_xp"`
	Level           int    `json:"level"`
	LevelName       string `json:"level_name"`
	LevelIcon       string `json:"level_icon"`
	XPForNextLevel  int64  `json:"xp_for_next_level"`
	ProgressPercent int    `json:"progress_percent"`
	IsMaxLevel      bool   `json:"is_max_level"`
}

// levelForXP returns the highest threshold level whose requirement is met.
// Thresholds come in ascending order; track the last qualifying one.
func levelForXP(thresholds []models.LevelThreshold, xp int64) int {
	level := 1
	for _, t := range thresholds {
		if t.XPRequired <= xp {
			level = t.Level
		}
	}
	return level
}

// AddXP grants the XP configured for an action type and re-derives the
// level. Unknown or inactive action types grant nothing — the mission flow
// that triggered us must never be blocked by missing config.
func (s *LevelService) AddXP(externalUserID, actionType string) (*XPResult, error) {
	action, ok := s.Catalog.Action(actionType)
	if !ok {
		log.Printf("⚠️ [XP] No active XP action for type %q — skipping grant for %s", actionType, externalUserID)
		return &XPResult{XPAdded: 0}, nil
	}
	return s.AwardXP(externalUserID, action.XPAmount, actionType)
}

// AwardXP atomically adds raw XP and promotes the level if a threshold was
// crossed — returns the amount added plus any promotion
func (s *LevelService) AwardXP(externalUserID string, xp int64, reason string) (*XPResult, error) {
	result := &XPResult{XPAdded: xp}

	var levelUp *LevelUpResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var prog models.UserProgress
		err := lockForUpdate(tx).Where("external_user_id = ?", externalUserID).First(&prog).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			prog = models.UserProgress{
				ID:             uuid.NewString(),
				ExternalUserID: externalUserID,
				Level:          1,
			}
			if err := tx.Create(&prog).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		prog.TotalXP += xp

		up, err := s.promoteIfEligible(&prog)
		if err != nil {
			return err
		}
		levelUp = up

		if err := tx.Save(&prog).Error; err != nil {
			return err
		}

		log.Printf("🎮 XP Awarded: %s → XP=%d, Lvl=%d (reason: %s)", externalUserID, prog.TotalXP, prog.Level, reason)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if levelUp != nil && levelUp.LeveledUp {
		result.LevelUp = levelUp
		s.notifyLevelUp(externalUserID, levelUp)
	}
	return result, nil
}

// CheckLevelUp re-derives the level from TotalXP and persists a promotion.
// Re-running with unchanged XP is a no-op.
func (s *LevelService) CheckLevelUp(externalUserID string) (*LevelUpResult, error) {
	var levelUp *LevelUpResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var prog models.UserProgress
		err := lockForUpdate(tx).Where("external_user_id = ?", externalUserID).First(&prog).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // no row, nothing to promote
		}
		if err != nil {
			return err
		}

		up, err := s.promoteIfEligible(&prog)
		if err != nil {
			return err
		}
		if up == nil {
			return nil
		}
		levelUp = up
		return tx.Save(&prog).Error
	})
	if err != nil {
		return nil, err
	}

	if levelUp == nil {
		return &LevelUpResult{LeveledUp: false}, nil
	}
	s.notifyLevelUp(externalUserID, levelUp)
	return levelUp, nil
}

// promoteIfEligible mutates prog in place when a threshold was crossed.
// Returns nil when the level is already correct.
func (s *LevelService) promoteIfEligible(prog *models.UserProgress) (*LevelUpResult, error) {
	newLevel := levelForXP(s.Catalog.Thresholds(), prog.TotalXP)
	if newLevel <= prog.Level {
		return nil, nil
	}

	now := time.Now()
	prog.Level = newLevel
	prog.LastLevelUpAt = &now

	result := &LevelUpResult{LeveledUp: true, NewLevel: newLevel}
	if t, ok := s.Catalog.Threshold(newLevel); ok {
		result.LevelName = t.Name
		result.LevelIcon = t.Icon
	}
	return result, nil
}

func (s *LevelService) notifyLevelUp(externalUserID string, up *LevelUpResult) {
	if s.Notifier == nil {
		return
	}
	// Delivery problems are the notifier's to log — the promotion stands
	s.Notifier.NotifyLevelUp(externalUserID, up)
}

// GetLevelInfo returns the level snapshot with progress toward the next
// threshold. Users without a progress row get the level-1 default.
func (s *LevelService) GetLevelInfo(externalUserID string) (*LevelInfo, error) {
	var prog models.UserProgress
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prog = models.UserProgress{ExternalUserID: externalUserID, TotalXP: 0, Level: 1}
	} else if err != nil {
		return nil, err
	}

	info := &LevelInfo{TotalXP: prog.TotalXP, Level: prog.Level}

	current, ok := s.Catalog.Threshold(prog.Level)
	if !ok {
		// Threshold catalog has no row for the stored level — degrade to a
		// bare snapshot instead of failing the read
		log.Printf("⚠️ [LEVEL] No threshold configured for level %d (user %s)", prog.Level, externalUserID)
		info.IsMaxLevel = true
		info.ProgressPercent = 100
		return info, nil
	}
	info.LevelName = current.Name
	info.LevelIcon = current.Icon

	next, ok := s.Catalog.Threshold(prog.Level + 1)
	if !ok {
		info.IsMaxLevel = true
		info.ProgressPercent = 100
		info.XPForNextLevel = 0
		return info, nil
	}

	xpInLevel := prog.TotalXP - current.XPRequired
	if xpInLevel < 0 {
		xpInLevel = 0
	}
	span := next.XPRequired - current.XPRequired
	pct := 0
	if span > 0 {
		pct = int(math.Round(float64(xpInLevel) / float64(span) * 100))
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	info.ProgressPercent = pct
	info.XPForNextLevel = next.XPRequired - prog.TotalXP
	return info, nil
}

// LevelLabel formats a level for logs and notifications, e.g. "Niveau 3 — Chef de Partie"
func LevelLabel(up *LevelUpResult) string {
	if up.LevelName == "" {
		return fmt.Sprintf("Niveau %d", up.NewLevel)
	}
	return fmt.Sprintf("Niveau %d — %s", up.NewLevel, up.LevelName)
}
