package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"content-coach-system/models"
	"content-coach-system/workers"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService owns the in-app notification store and fans level-up
// events out to the push aggregator. Nothing here ever propagates an error
// back into the progression flow — a promotion survives a broken mailbox.
type NotificationService struct {
	DB   *gorm.DB
	Push *workers.PushClient // optional; nil disables push delivery
}

func NewNotificationService(db *gorm.DB, push *workers.PushClient) *NotificationService {
	return &NotificationService{DB: db, Push: push}
}

// NotifyLevelUp writes one in-app notification and makes one push attempt
func (s *NotificationService) NotifyLevelUp(externalUserID string, up *LevelUpResult) {
	label := LevelLabel(up)
	title := fmt.Sprintf("🎉 %s atteint !", label)
	body := "Votre restaurant monte en grade — continuez vos missions pour progresser."

	data, _ := json.Marshal(map[string]interface{}{
		"level":      up.NewLevel,
		"level_name": up.LevelName,
		"level_icon": up.LevelIcon,
	})

	notif := models.Notification{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Type:           models.NotificationLevelUp,
		Title:          title,
		Body:           body,
		Data:           string(data),
	}
	if err := s.DB.Create(&notif).Error; err != nil {
		log.Printf("❌ [NOTIFY] failed to store level-up notification for %s: %v", externalUserID, err)
	}

	if s.Push == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Push.SendPushToUser(ctx, externalUserID, workers.PushMessage{
		Title: title,
		Body:  body,
		URL:   "/progression",
		Type:  models.NotificationLevelUp,
	}); err != nil {
		log.Printf("⚠️ [NOTIFY] push delivery failed for %s: %v", externalUserID, err)
	}
}

// ListNotifications returns the most recent in-app notifications for a user
func (s *NotificationService) ListNotifications(externalUserID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var notifs []models.Notification
	err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifs).Error
	return notifs, err
}

// MarkRead stamps a notification as read; unknown ids are a no-op
func (s *NotificationService) MarkRead(externalUserID, notificationID string) error {
	now := time.Now()
	return s.DB.Model(&models.Notification{}).
		Where("id = ? AND external_user_id = ?", notificationID, externalUserID).
		Update("read_at", &now).Error
}
