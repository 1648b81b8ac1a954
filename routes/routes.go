package routes

import (
	"net/http"
	"strconv"

	"cluetrail/handlers"
	"cluetrail/middleware"
	"cluetrail/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	playHandler *handlers.PlayHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Player routes (public — the access code is the credential)
		api.POST("/redeem", playHandler.Redeem)
		play := api.Group("/play")
		{
			play.GET("/:code/state", playHandler.GetState)
			play.POST("/:code/answer", playHandler.SubmitAnswer)
		}

		// Protected administrative routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			games := protected.Group("/games")
			{
				games.GET("", adminHandler.ListGames)
				games.POST("", adminHandler.CreateGame)
				games.GET("/:id", adminHandler.GetGame)
				games.DELETE("/:id", adminHandler.DeleteGame)
				games.GET("/:id/timeline", adminHandler.PreviewTimeline)
				games.GET("/:id/orphans", adminHandler.ListOrphans)
				games.POST("/:id/swap-order", adminHandler.SwapPuzzleOrder)
				games.GET("/:id/codes", adminHandler.ListCodes)
				games.POST("/:id/codes", adminHandler.GenerateCodes)
				games.GET("/:id/usage", adminHandler.ListUsage)
			}

			protected.PATCH("/splash-screens/:splashId/anchor", adminHandler.ReassignSplash)
			protected.POST("/codes/:codeId/deactivate", adminHandler.DeactivateCode)
		}
	}

	// WebSocket endpoint for admin dashboards watching a game's progress.
	// Browsers cannot set headers on websocket upgrades, so the JWT arrives
	// as a query parameter.
	router.GET("/ws/games/:id", func(c *gin.Context) {
		gameID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game id"})
			return
		}

		token := c.Query("token")
		if _, err := middleware.ParseToken(token, jwtSecret); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Warn("websocket upgrade failed")
			return
		}

		hub.RegisterClient(conn, uint(gameID))
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
