package services

import (
	"log"
	"sync"

	"content-coach-system/models"

	"gorm.io/gorm"
)

// CatalogService holds an in-memory snapshot of the three admin-managed
// config catalogs: level thresholds, XP actions and badges. The engine only
// ever reads them; Refresh replaces the snapshot wholesale (called at boot,
// on a schedule, and from the admin refresh endpoint).
type CatalogService struct {
	DB *gorm.DB

	mu         sync.RWMutex
	thresholds []models.LevelThreshold
	actions    map[string]models.XPAction
	badges     []models.Badge
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db, actions: map[string]models.XPAction{}}
}

// EnsureDefaults seeds empty catalog tables with the shipped defaults
// (idempotent — existing rows are never touched)
func (s *CatalogService) EnsureDefaults() error {
	var count int64
	if err := s.DB.Model(&models.LevelThreshold{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := s.DB.Create(&models.DefaultLevelThresholds).Error; err != nil {
			return err
		}
		log.Printf("🌱 Seeded %d level thresholds", len(models.DefaultLevelThresholds))
	}

	if err := s.DB.Model(&models.XPAction{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := s.DB.Create(&models.DefaultXPActions).Error; err != nil {
			return err
		}
		log.Printf("🌱 Seeded %d XP actions", len(models.DefaultXPActions))
	}

	if err := s.DB.Model(&models.Badge{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := s.DB.Create(&models.DefaultBadges).Error; err != nil {
			return err
		}
		log.Printf("🌱 Seeded %d badges", len(models.DefaultBadges))
	}

	return s.Refresh()
}

// Refresh reloads all three catalogs from the database
func (s *CatalogService) Refresh() error {
	var thresholds []models.LevelThreshold
	if err := s.DB.Order("level ASC").Find(&thresholds).Error; err != nil {
		return err
	}

	var actionRows []models.XPAction
	if err := s.DB.Find(&actionRows).Error; err != nil {
		return err
	}
	actions := make(map[string]models.XPAction, len(actionRows))
	for _, a := range actionRows {
		actions[a.ActionType] = a
	}

	var badges []models.Badge
	if err := s.DB.Where("is_active = ?", true).Order("display_order ASC").Find(&badges).Error; err != nil {
		return err
	}

	s.mu.Lock()
	s.thresholds = thresholds
	s.actions = actions
	s.badges = badges
	s.mu.Unlock()

	return nil
}

// Thresholds returns all level thresholds ordered by level ascending
func (s *CatalogService) Thresholds() []models.LevelThreshold {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// Threshold returns the threshold for an exact level, if configured
func (s *CatalogService) Threshold(level int) (models.LevelThreshold, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.thresholds {
		if t.Level == level {
			return t, true
		}
	}
	return models.LevelThreshold{}, false
}

// Action returns the active XP action definition for an action type.
// Missing or inactive definitions report false — the ledger treats both
// as "grant nothing".
func (s *CatalogService) Action(actionType string) (models.XPAction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actions[actionType]
	if !ok || !a.IsActive {
		return models.XPAction{}, false
	}
	return a, true
}

// Badges returns active badges in display order
func (s *CatalogService) Badges() []models.Badge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badges
}
