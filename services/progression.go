package services

import (
	"log"

	"content-coach-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressionService is the entry point the mission and tutorial workflows
// call when a user finishes something. Order matters: the streak must be
// updated before badges are evaluated, because streak badges read the
// freshly bumped LongestStreak.
//
// Policy throughout: progression must never block the activity flow that
// triggered it. A failing sub-step is logged and the result degrades to
// "no progression change" for that piece.
type ProgressionService struct {
	DB      *gorm.DB
	Streaks *StreakService
	Levels  *LevelService
	Badges  *BadgeService
	Catalog *CatalogService
}

func NewProgressionService(db *gorm.DB, streaks *StreakService, levels *LevelService, badges *BadgeService, catalog *CatalogService) *ProgressionService {
	return &ProgressionService{DB: db, Streaks: streaks, Levels: levels, Badges: badges, Catalog: catalog}
}

// ActivityResult aggregates everything one completed activity produced
type ActivityResult struct {
	Streak        *models.StreakRecord `json:"streak,omitempty"`
	XPAdded       int64                `json:"xp_added"`
	LevelUp       *LevelUpResult       `json:"level_up,omitempty"`
	NewBadges     []models.Badge       `json:"new_badges,omitempty"`
	Encouragement string               `json:"encouragement"`
}

// RecordMissionCompletion registers a finished content mission and runs the
// full progression pass
func (s *ProgressionService) RecordMissionCompletion(externalUserID, missionID string) (*ActivityResult, error) {
	fact := models.MissionCompletion{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		MissionID:      missionID,
	}
	if err := s.DB.Create(&fact).Error; err != nil {
		return nil, err
	}
	return s.runProgression(externalUserID, models.ActionMissionCompleted), nil
}

// RecordTutorialCompletion registers a watched tutorial and runs the full
// progression pass
func (s *ProgressionService) RecordTutorialCompletion(externalUserID, tutorialID string) (*ActivityResult, error) {
	fact := models.TutorialView{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		TutorialID:     tutorialID,
	}
	if err := s.DB.Create(&fact).Error; err != nil {
		return nil, err
	}
	return s.runProgression(externalUserID, models.ActionTutorialCompleted), nil
}

// runProgression is the streak → XP → badges pipeline
func (s *ProgressionService) runProgression(externalUserID, actionType string) *ActivityResult {
	result := &ActivityResult{}

	streak, err := s.Streaks.RecordActivity(externalUserID)
	if err != nil {
		log.Printf("❌ [PROGRESSION] streak update failed for %s: %v", externalUserID, err)
	} else {
		result.Streak = streak
	}

	xp, err := s.Levels.AddXP(externalUserID, actionType)
	if err != nil {
		log.Printf("❌ [PROGRESSION] XP grant failed for %s (%s): %v", externalUserID, actionType, err)
	} else {
		result.XPAdded = xp.XPAdded
		result.LevelUp = xp.LevelUp
	}

	badges, err := s.Badges.EvaluateBadges(externalUserID)
	if err != nil {
		log.Printf("❌ [PROGRESSION] badge evaluation failed for %s: %v", externalUserID, err)
	} else {
		result.NewBadges = badges
	}

	if result.Streak != nil {
		// Just recorded today, so the streak cannot be at risk
		result.Encouragement = Encourage(result.Streak.CurrentStreak, false)
	} else {
		result.Encouragement = Encourage(0, false)
	}
	return result
}
