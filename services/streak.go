package services

import (
	"errors"
	"log"
	"time"

	"content-coach-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StreakService struct {
	DB *gorm.DB

	// Now is swappable for tests; defaults to time.Now
	Now func() time.Time
}

func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{DB: db, Now: time.Now}
}

// StreakInfo is the read-side snapshot of a user's streak
type StreakInfo struct {
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	IsAtRisk      bool `json:"is_at_risk"` // alive but not secured today
}

// dateOnly truncates a timestamp to its UTC calendar day
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole calendar days from a to b (negative if b < a)
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// RecordActivity registers a qualifying activity for today (UTC).
// Same-day repeats are no-ops, a one-day gap extends the streak, anything
// larger resets it to 1. LongestStreak never decreases.
func (s *StreakService) RecordActivity(externalUserID string) (*models.StreakRecord, error) {
	today := dateOnly(s.Now())

	var updated *models.StreakRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rec models.StreakRecord
		err := lockForUpdate(tx).Where("external_user_id = ?", externalUserID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = models.StreakRecord{
				ID:               uuid.NewString(),
				ExternalUserID:   externalUserID,
				CurrentStreak:    1,
				LongestStreak:    1,
				LastActivityDate: &today,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			updated = &rec
			return nil
		}
		if err != nil {
			return err
		}

		if rec.LastActivityDate == nil {
			// Row exists but no activity yet (created by a sweep): treat as first activity
			rec.CurrentStreak = 1
			rec.LastActivityDate = &today
		} else {
			switch days := daysBetween(*rec.LastActivityDate, today); {
			case days == 0:
				// Already counted today
				updated = &rec
				return nil
			case days == 1:
				rec.CurrentStreak++
				rec.LastActivityDate = &today
			case days > 1:
				rec.CurrentStreak = 1
				rec.LastActivityDate = &today
			default:
				// Activity date precedes the stored one (clock skew or replay).
				// No defined semantics — leave the record alone and make it visible.
				log.Printf("⏪ [STREAK] out-of-order activity for %s: last=%s today=%s — ignored",
					externalUserID, rec.LastActivityDate.Format("2006-01-02"), today.Format("2006-01-02"))
				updated = &rec
				return nil
			}
		}

		if rec.CurrentStreak > rec.LongestStreak {
			rec.LongestStreak = rec.CurrentStreak
		}

		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		updated = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReconcileInactivity zeroes a streak that has already lapsed, without
// waiting for the user's next activity. LastActivityDate and LongestStreak
// are left untouched so the lapse stays observable. Returns true if a
// reset happened.
func (s *StreakService) ReconcileInactivity(externalUserID string) (bool, error) {
	today := dateOnly(s.Now())

	wasReset := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rec models.StreakRecord
		err := lockForUpdate(tx).Where("external_user_id = ?", externalUserID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if rec.CurrentStreak == 0 || rec.LastActivityDate == nil {
			return nil
		}
		if daysBetween(*rec.LastActivityDate, today) <= 1 {
			return nil
		}

		rec.CurrentStreak = 0
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		wasReset = true
		return nil
	})
	return wasReset, err
}

// SweepInactiveStreaks runs ReconcileInactivity across every stale record.
// Called by the scheduler; returns how many streaks were zeroed.
func (s *StreakService) SweepInactiveStreaks() (int, error) {
	cutoff := dateOnly(s.Now()).AddDate(0, 0, -1)

	res := s.DB.Model(&models.StreakRecord{}).
		Where("current_streak > 0 AND last_activity_date IS NOT NULL AND last_activity_date < ?", cutoff).
		Update("current_streak", 0)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// GetStreakInfo returns the streak snapshot for a user. Users with no
// record yet get a zero snapshot rather than an error.
func (s *StreakService) GetStreakInfo(externalUserID string) (*StreakInfo, error) {
	var rec models.StreakRecord
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &StreakInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	info := &StreakInfo{
		CurrentStreak: rec.CurrentStreak,
		LongestStreak: rec.LongestStreak,
	}
	if rec.CurrentStreak > 0 && rec.LastActivityDate != nil {
		info.IsAtRisk = !dateOnly(*rec.LastActivityDate).Equal(dateOnly(s.Now()))
	}
	return info, nil
}

// Encourage picks the coaching message for a streak state. The at-risk
// nudge wins over every length tier.
func Encourage(currentStreak int, isAtRisk bool) string {
	if isAtRisk && currentStreak > 0 {
		return "⏰ Votre série est en jeu — postez aujourd'hui pour la garder !"
	}
	switch {
	case currentStreak <= 0:
		return "📸 Lancez-vous : une photo aujourd'hui démarre votre série !"
	case currentStreak == 1:
		return "👏 Premier jour ! Revenez demain pour continuer."
	case currentStreak <= 3:
		return "🔥 Belle lancée — la régularité paie."
	case currentStreak <= 7:
		return "💪 Presque une semaine complète, vos clients le voient !"
	case currentStreak <= 14:
		return "🚀 Plus d'une semaine d'affilée — votre visibilité décolle."
	case currentStreak <= 30:
		return "⭐ Des semaines de régularité, un vrai pro du contenu."
	default:
		return "🏆 Plus d'un mois sans faute — vous êtes une référence !"
	}
}
