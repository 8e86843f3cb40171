package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"studyquest/config"
	"studyquest/controllers"
	"studyquest/db"
	"studyquest/middlewares"
	"studyquest/services"
	"studyquest/store"
	"studyquest/utils"
	"studyquest/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./config/config.yml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetJWTSecret(cfg.JWT.Secret, cfg.JWT.Expiry)

	database, err := db.Connect(context.Background(), cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	if cfg.Seed {
		utils.PopulateTestUsers(context.Background(), database)
	}

	hub := websocket.NewHub()
	stores := store.NewManager(database, hub)

	sweeper := services.NewSweeper(stores)
	sweeper.Start()
	defer sweeper.Stop()

	auth, err := controllers.NewAuthController(cfg, database, stores)
	if err != nil {
		log.Fatalf("Failed to initialize auth controller: %v", err)
	}
	gameCtrl := controllers.NewGameController(stores, database)

	router := setupRouter(cfg, auth, gameCtrl, hub)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config, auth *controllers.AuthController, game *controllers.GameController, hub *websocket.Hub) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// Public routes for authentication
	router.POST("/signup", auth.SignUp)
	router.POST("/verifyEmail", auth.VerifyEmail)
	router.POST("/login", auth.Login)
	router.POST("/forgotPassword", auth.ForgotPassword)
	router.POST("/confirmForgotPassword", auth.ConfirmForgotPassword)

	// Protected routes (JWT auth)
	protected := router.Group("/")
	protected.Use(middlewares.AuthMiddleware())
	{
		protected.POST("/signout", auth.SignOut)

		protected.GET("/state", game.GetState)
		protected.POST("/xp", game.AddXP)

		protected.GET("/missions", game.ListMissions)
		protected.POST("/missions", game.CreateMission)
		protected.POST("/missions/:id/complete", game.CompleteMission)
		protected.POST("/missions/:id/timer/start", game.StartTimer)
		protected.POST("/missions/:id/timer/stop", game.StopTimer)
		protected.DELETE("/missions/:id", game.DeleteMission)

		protected.GET("/exams", game.ListExams)
		protected.POST("/exams", game.CreateExam)
		protected.DELETE("/exams/:id", game.DeleteExam)

		protected.GET("/timetable", game.GetTimetable)
		protected.PUT("/timetable", game.ReplaceTimetable)

		protected.GET("/powerups", game.ListPowerUps)
		protected.POST("/powerups/:id/activate", game.ActivatePowerUp)

		protected.GET("/achievements", game.ListAchievements)
		protected.POST("/achievements/:id/unlock", game.UnlockAchievement)

		protected.GET("/user/fetchprofile", game.GetProfile)
		protected.PUT("/user/updateprofile", game.UpdateProfile)
		protected.DELETE("/user/profile", game.DeleteProfile)

		protected.GET("/leaderboard", game.GetLeaderboard)
	}

	// Notification stream authenticates its own token (query param fallback
	// for browser WebSocket clients).
	router.GET("/ws/notifications", hub.Handler)

	return router
}
