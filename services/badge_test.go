package services

import (
	"testing"
	"time"

	"content-coach-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBadgeService(t *testing.T) *BadgeService {
	db := setupTestDB(t)
	catalog := seedCatalog(t, db)
	return NewBadgeService(db, catalog)
}

func seedMissions(t *testing.T, db *gorm.DB, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.MissionCompletion{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			MissionID:      uuid.NewString(),
		}).Error)
	}
}

func TestEvaluateBadgesStreakUnlockExactlyOnce(t *testing.T) {
	svc := newBadgeService(t)

	// longestStreak 7 meets the "semaine-parfaite" criteria
	seedStreak(t, svc.DB, "resto-1", 2, 7, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	unlocked, err := svc.EvaluateBadges("resto-1")
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "semaine-parfaite", unlocked[0].Code)

	// Unchanged stats: nothing new, and still exactly one unlock row
	unlocked, err = svc.EvaluateBadges("resto-1")
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	var count int64
	svc.DB.Model(&models.BadgeUnlock{}).Where("external_user_id = ?", "resto-1").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEvaluateBadgesMissionCriteria(t *testing.T) {
	svc := newBadgeService(t)

	// Below the threshold: nothing
	unlocked, err := svc.EvaluateBadges("resto-1")
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	seedMissions(t, svc.DB, "resto-1", 1)
	unlocked, err = svc.EvaluateBadges("resto-1")
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "premiere-mission", unlocked[0].Code)
}

func TestEvaluateBadgesTutorialCriteria(t *testing.T) {
	svc := newBadgeService(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.DB.Create(&models.TutorialView{
			ID:             uuid.NewString(),
			ExternalUserID: "resto-1",
			TutorialID:     uuid.NewString(),
		}).Error)
	}

	unlocked, err := svc.EvaluateBadges("resto-1")
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "bon-eleve", unlocked[0].Code)
}

func TestEvaluateBadgesFollowsDisplayOrder(t *testing.T) {
	svc := newBadgeService(t)

	// Qualify for the mission badge (order 1) and the streak badge (order 2)
	seedMissions(t, svc.DB, "resto-1", 1)
	seedStreak(t, svc.DB, "resto-1", 7, 7, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	unlocked, err := svc.EvaluateBadges("resto-1")
	require.NoError(t, err)
	require.Len(t, unlocked, 2)
	assert.Equal(t, "premiere-mission", unlocked[0].Code)
	assert.Equal(t, "semaine-parfaite", unlocked[1].Code)
}

func TestEvaluateBadgesSkipsInactive(t *testing.T) {
	svc := newBadgeService(t)

	// "retired-badge" has criteria value 0 — everyone qualifies — but it is
	// inactive and must never unlock
	seedMissions(t, svc.DB, "resto-1", 1)
	unlocked, err := svc.EvaluateBadges("resto-1")
	require.NoError(t, err)

	for _, b := range unlocked {
		assert.NotEqual(t, "retired-badge", b.Code)
	}
}

func TestEvaluateBadgesStatsAreScopedPerUser(t *testing.T) {
	svc := newBadgeService(t)

	seedMissions(t, svc.DB, "resto-1", 1)

	unlocked, err := svc.EvaluateBadges("resto-2")
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestGetUserBadges(t *testing.T) {
	svc := newBadgeService(t)

	seedMissions(t, svc.DB, "resto-1", 1)
	_, err := svc.EvaluateBadges("resto-1")
	require.NoError(t, err)

	views, err := svc.GetUserBadges("resto-1")
	require.NoError(t, err)
	require.Len(t, views, 3) // full active catalog, unlocked or not

	byCode := map[string]UserBadgeView{}
	for _, v := range views {
		byCode[v.Badge.Code] = v
	}

	assert.True(t, byCode["premiere-mission"].Unlocked)
	assert.NotNil(t, byCode["premiere-mission"].UnlockedAt)
	assert.False(t, byCode["semaine-parfaite"].Unlocked)
	assert.Nil(t, byCode["semaine-parfaite"].UnlockedAt)

	// Pure projection — reading must not have created unlocks
	var count int64
	svc.DB.Model(&models.BadgeUnlock{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
