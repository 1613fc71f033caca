package services

import (
	"testing"
	"time"

	"content-coach-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.StreakRecord{},
		&models.UserProgress{},
		&models.LevelThreshold{},
		&models.XPAction{},
		&models.Badge{},
		&models.BadgeUnlock{},
		&models.MissionCompletion{},
		&models.TutorialView{},
		&models.Notification{},
	))
	return db
}

// seedCatalog loads the scenario catalog used across the service tests:
// thresholds {1:0, 2:50, 3:150}, a 20 XP mission action, a 10 XP tutorial
// action, and one badge per criteria type.
func seedCatalog(t *testing.T, db *gorm.DB) *CatalogService {
	t.Helper()

	thresholds := []models.LevelThreshold{
		{ID: uuid.NewString(), Level: 1, XPRequired: 0, Name: "Plongeur", Icon: "🧽"},
		{ID: uuid.NewString(), Level: 2, XPRequired: 50, Name: "Commis", Icon: "🔪"},
		{ID: uuid.NewString(), Level: 3, XPRequired: 150, Name: "Chef de Partie", Icon: "🍳"},
	}
	require.NoError(t, db.Create(&thresholds).Error)

	actions := []models.XPAction{
		{ID: uuid.NewString(), ActionType: models.ActionMissionCompleted, XPAmount: 20, IsActive: true},
		{ID: uuid.NewString(), ActionType: models.ActionTutorialCompleted, XPAmount: 10, IsActive: true},
		{ID: uuid.NewString(), ActionType: "retired_action", XPAmount: 99, IsActive: false},
	}
	require.NoError(t, db.Create(&actions).Error)

	badges := []models.Badge{
		{
			ID: uuid.NewString(), Code: "premiere-mission", Name: "Première Mission",
			CriteriaType: models.CriteriaMissionsCompleted, CriteriaValue: 1,
			DisplayOrder: 1, IsActive: true,
		},
		{
			ID: uuid.NewString(), Code: "semaine-parfaite", Name: "Semaine Parfaite",
			CriteriaType: models.CriteriaStreakDays, CriteriaValue: 7,
			DisplayOrder: 2, IsActive: true,
		},
		{
			ID: uuid.NewString(), Code: "bon-eleve", Name: "Bon Élève",
			CriteriaType: models.CriteriaTutorialsViewed, CriteriaValue: 5,
			DisplayOrder: 3, IsActive: true,
		},
		{
			ID: uuid.NewString(), Code: "retired-badge", Name: "Retired",
			CriteriaType: models.CriteriaMissionsCompleted, CriteriaValue: 0,
			DisplayOrder: 4, IsActive: false,
		},
	}
	require.NoError(t, db.Create(&badges).Error)

	catalog := NewCatalogService(db)
	require.NoError(t, catalog.Refresh())
	return catalog
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 15, 30, 0, 0, time.UTC)
	}
}

func seedStreak(t *testing.T, db *gorm.DB, userID string, current, longest int, last time.Time) {
	t.Helper()
	lastDay := dateOnly(last)
	require.NoError(t, db.Create(&models.StreakRecord{
		ID:               uuid.NewString(),
		ExternalUserID:   userID,
		CurrentStreak:    current,
		LongestStreak:    longest,
		LastActivityDate: &lastDay,
	}).Error)
}
