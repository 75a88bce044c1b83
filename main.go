package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"studyclub/database"
	"studyclub/handlers"
	"studyclub/handlers/admin"
	"studyclub/middleware"
	"studyclub/services"
	"studyclub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Resume any study sessions that were running before the last restart
	services.InitTimerService()
	defer services.GetTimerService().Shutdown()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/logout", middleware.AuthMiddleware, handlers.Logout)

	// User routes (require authentication)
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetCurrentUser)
	userGroup.Put("/me", handlers.UpdateCurrentUser)
	userGroup.Get("/stats", handlers.GetUserStats)

	// Study timer routes
	timerGroup := api.Group("/timer")
	timerGroup.Use(middleware.AuthMiddleware)
	timerGroup.Get("/", handlers.GetTimer)
	timerGroup.Post("/start", handlers.StartTimer)
	timerGroup.Post("/stop", handlers.StopTimer)

	// Mission routes
	missionGroup := api.Group("/mission")
	missionGroup.Use(middleware.AuthMiddleware)
	missionGroup.Get("/", handlers.GetMission)
	missionGroup.Post("/", handlers.SaveMission)

	// Badge shop routes
	shopGroup := api.Group("/shop")
	shopGroup.Use(middleware.AuthMiddleware)
	shopGroup.Get("/", handlers.GetShop)
	shopGroup.Post("/purchase", handlers.PurchaseBadge)
	shopGroup.Post("/equip", handlers.EquipBadge)

	// Q&A board routes
	questionGroup := api.Group("/questions")
	questionGroup.Use(middleware.AuthMiddleware)
	questionGroup.Get("/", handlers.GetQuestions)
	questionGroup.Post("/", handlers.CreateQuestion)
	questionGroup.Get("/:id", handlers.GetQuestion)
	questionGroup.Delete("/:id", handlers.DeleteQuestion)
	questionGroup.Post("/:id/replies", handlers.CreateReply)
	questionGroup.Delete("/:id/replies/:replyId", handlers.DeleteReply)

	// Notebook routes
	noteGroup := api.Group("/notes")
	noteGroup.Use(middleware.AuthMiddleware)
	noteGroup.Get("/", handlers.GetNotes)
	noteGroup.Post("/", handlers.CreateNote)
	noteGroup.Put("/:id", handlers.UpdateNote)
	noteGroup.Delete("/:id", handlers.DeleteNote)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	// Protected admin routes
	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/users", admin.GetUsers)
	adminProtected.Get("/users/:id", admin.GetUser)
	adminProtected.Put("/users/:id", admin.UpdateUser)
	adminProtected.Delete("/users/:id", admin.DeleteUser)
	adminProtected.Post("/users/:id/reset-password", admin.ResetUserPassword)

	// Tell clients where the live timer feed actually lives. Fiber cannot
	// proxy WebSocket, so the feed runs on its own port.
	app.Get("/ws", func(c *fiber.Ctx) error {
		wsPort := getEnv("WS_PORT", "4000")
		wsURL := "ws://localhost:" + wsPort + "/ws"

		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"error":   "WebSocket endpoint moved",
			"message": "Please connect to " + wsURL,
			"ws_url":  wsURL,
		})
	})

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	// Start WebSocket server (pure net/http)
	wsPort := getEnv("WS_PORT", "4000")
	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/ws", handlers.TimerFeedHandler)
	wsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = utils.JSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	wsServer := &http.Server{
		Addr:    ":" + wsPort,
		Handler: wsMux,
	}

	go func() {
		log.Printf("🌐 WebSocket server starting on port %s", wsPort)
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("WebSocket server failed:", err)
		}
	}()

	// Start Fiber HTTP/REST server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🌐 Timer feed available at ws://localhost:%s/ws", wsPort)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
