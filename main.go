package main

import (
	"cluetrail/config"
	"cluetrail/handlers"
	"cluetrail/middleware"
	"cluetrail/models"
	"cluetrail/routes"
	"cluetrail/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.Puzzle{},
		&models.SplashScreen{},
		&models.AccessCode{},
		&models.PlayerSession{},
		&models.CodeUsageLog{},
	)
	if err != nil {
		logrus.Fatal("Failed to migrate database: ", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	sessionService := services.NewSessionService(db, redisClient)
	codeService := services.NewCodeService(db, sessionService)
	answerService := services.NewAnswerService(sessionService, codeService)
	contentService := services.NewContentService(db)

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(contentService, codeService)
	playHandler := handlers.NewPlayHandler(codeService, answerService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, adminHandler, playHandler, hub, cfg.JWTSecret)

	// Start server
	logrus.Infof("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		logrus.Fatal("Failed to start server: ", err)
	}
}
