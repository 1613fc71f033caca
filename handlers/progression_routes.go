// handlers/progression_routes.go
package handlers

import (
	"fmt"
	"strconv"

	"content-coach-system/middleware"
	"content-coach-system/models"
	"content-coach-system/services"
	"content-coach-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(
	app *fiber.App,
	progressionService *services.ProgressionService,
	streakService *services.StreakService,
	levelService *services.LevelService,
	badgeService *services.BadgeService,
	notificationService *services.NotificationService,
	catalogService *services.CatalogService,
) {
	// 🔐 Secured routes — require user context (userID) forwarded by the gateway.
	// The gateway forwards paths like /api/v1/coach/s/user/streak -> /user/streak
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/streak", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		info, err := streakService.GetStreakInfo(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get streak",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"current_streak": info.CurrentStreak,
			"longest_streak": info.LongestStreak,
			"is_at_risk":     info.IsAtRisk,
			"message":        services.Encourage(info.CurrentStreak, info.IsAtRisk),
		})
	})

	securedGroup.Get("/user/level", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		info, err := levelService.GetLevelInfo(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get level info",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"total_xp":          info.TotalXP,
			"level":             info.Level,
			"level_name":        info.LevelName,
			"level_icon":        utils.IconURL(info.LevelIcon),
			"xp_for_next_level": info.XPForNextLevel,
			"progress_percent":  info.ProgressPercent,
			"is_max_level":      info.IsMaxLevel,
		})
	})

	securedGroup.Get("/user/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		views, err := badgeService.GetUserBadges(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badges",
				"cause": err.Error(),
			})
		}

		response := make([]fiber.Map, 0, len(views))
		for _, v := range views {
			entry := fiber.Map{
				"badge_id":    v.Badge.ID,
				"code":        v.Badge.Code,
				"name":        v.Badge.Name,
				"description": v.Badge.Description,
				"icon":        utils.IconURL(v.Badge.Icon),
				"unlocked":    v.Unlocked,
			}
			if v.UnlockedAt != nil {
				entry["unlocked_at"] = v.UnlockedAt
			}
			response = append(response, entry)
		}
		return c.JSON(response)
	})

	securedGroup.Get("/user/notifications", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))

		notifs, err := notificationService.ListNotifications(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get notifications",
				"cause": err.Error(),
			})
		}
		return c.JSON(notifs)
	})

	securedGroup.Post("/user/notifications/:id/read", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := notificationService.MarkRead(userID, c.Params("id")); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to mark notification read",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "ok"})
	})

	// Activity completion — called by the mission/tutorial workflows
	securedGroup.Post("/user/activity/mission", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var req struct {
			MissionID string `json:"mission_id" validate:"required"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := progressionService.RecordMissionCompletion(userID, req.MissionID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to record mission completion",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	securedGroup.Post("/user/activity/tutorial", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var req struct {
			TutorialID string `json:"tutorial_id" validate:"required"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := progressionService.RecordTutorialCompletion(userID, req.TutorialID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to record tutorial completion",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			XP     int64  `json:"xp" validate:"required,min=1"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.XP <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "xp must be positive",
			})
		}

		result, err := levelService.AwardXP(req.UserID, req.XP, req.Reason)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "XP award failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message":  "XP granted successfully",
			"user_id":  req.UserID,
			"xp":       req.XP,
			"level_up": result.LevelUp,
		})
	})

	adminGroup.Post("/catalog/refresh", func(c *fiber.Ctx) error {
		if err := catalogService.Refresh(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "catalog refresh failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "catalogs reloaded"})
	})

	adminGroup.Post("/badges/:id/icon", func(c *fiber.Ctx) error {
		badgeID := c.Params("id")

		fileHeader, err := c.FormFile("icon")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "icon file is required",
			})
		}

		var badge models.Badge
		if err := catalogService.DB.Where("id = ?", badgeID).First(&badge).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "badge not found",
			})
		}

		key, err := utils.UploadIconToR2(fileHeader, fmt.Sprintf("icons/badges/%s.png", badge.Code))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "icon upload failed",
				"cause": err.Error(),
			})
		}

		if err := catalogService.DB.Model(&badge).Update("icon", key).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save badge icon",
				"cause": err.Error(),
			})
		}
		if err := catalogService.Refresh(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "catalog refresh failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message": "icon updated",
			"icon":    utils.IconURL(key),
		})
	})
}
