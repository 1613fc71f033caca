package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"content-coach-system/handlers"
	"content-coach-system/middleware"
	"content-coach-system/models"
	"content-coach-system/services"
	"content-coach-system/utils"
	"content-coach-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.StreakRecord{},
		&models.UserProgress{},
		&models.LevelThreshold{},
		&models.XPAction{},
		&models.Badge{},
		&models.BadgeUnlock{},
		&models.MissionCompletion{},
		&models.TutorialView{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	catalogService := services.NewCatalogService(db)
	if err := catalogService.EnsureDefaults(); err != nil {
		log.Fatal("failed to seed/load catalogs:", err)
	}

	pushClient := workers.NewPushClient()
	notificationService := services.NewNotificationService(db, pushClient)
	streakService := services.NewStreakService(db)
	levelService := services.NewLevelService(db, catalogService, notificationService)
	badgeService := services.NewBadgeService(db, catalogService)
	progressionService := services.NewProgressionService(db, streakService, levelService, badgeService, catalogService)

	progressionService.StartProgressionScheduler()

	// ✅ Setup routes — enforced Gateway auth + user context on secured paths
	handlers.SetupProgressionRoutes(app, progressionService, streakService, levelService, badgeService, notificationService, catalogService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Progression scheduler running (streak sweep + catalog refresh)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
