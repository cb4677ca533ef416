package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"

	"github.com/enna-dta/incidentdb/internal/config"
	"github.com/enna-dta/incidentdb/internal/database"
	"github.com/enna-dta/incidentdb/internal/handlers"
	"github.com/enna-dta/incidentdb/internal/middleware"
	"github.com/enna-dta/incidentdb/internal/types"

	_ "github.com/enna-dta/incidentdb/docs/api" // Swagger docs
)

// @title ENNA Incident Management API
// @version 1.0.0
// @description Backend de gestion des incidents pour la Direction Technique ENNA
// @termsOfService http://swagger.io/terms/

// @contact.name DTA Support
// @contact.email dta@enna.dz

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations, then the ordered migration ledger
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run auto-migrations: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed demo accounts
	if cfg.DBSeed {
		if err := database.Seed(db); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool { return true },
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	// Prometheus metrics
	prometheus := fiberprometheus.New("incidentdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Create handlers
	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	incidentHandler := &handlers.IncidentHandler{DB: db}
	reportHandler := &handlers.ReportHandler{DB: db}
	equipmentHandler := &handlers.EquipmentHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)

	// Login brute-force throttle, keyed by client IP
	loginLimiter := limiter.New(limiter.Config{
		Max:        cfg.LoginRatePerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return &types.AppError{
				Code:    fiber.StatusTooManyRequests,
				Message: "Trop de tentatives de connexion. Veuillez réessayer plus tard.",
				Type:    types.ErrRateLimit,
			}
		},
	})

	// API routes under /api
	api := app.Group("/api")

	// Health (no auth)
	api.Get("/health/", healthHandler.Health)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login/", loginLimiter, authHandler.Login)
	authGroup.Post("/logout/", requireAuth, authHandler.Logout)
	authGroup.Post("/refresh/", authHandler.Refresh)
	authGroup.Get("/profile/", requireAuth, authHandler.Profile)
	authGroup.Put("/profile/update/", requireAuth, authHandler.UpdateProfile)
	authGroup.Post("/change-password/", requireAuth, authHandler.ChangePassword)

	// Incident routes
	incidents := api.Group("/incidents", requireAuth)
	incidents.Get("/", incidentHandler.ListIncidents)
	incidents.Post("/", incidentHandler.CreateIncident)
	incidents.Get("/stats/", incidentHandler.Stats)
	incidents.Get("/recent/", incidentHandler.Recent)
	incidents.Put("/hardware/:id", incidentHandler.UpdateHardwareIncident)
	incidents.Put("/software/:id", incidentHandler.UpdateSoftwareIncident)
	incidents.Delete("/:id", incidentHandler.DeleteIncident)

	// Report routes
	reports := api.Group("/reports", requireAuth)
	reports.Get("/", reportHandler.ListReports)
	reports.Post("/", reportHandler.UpsertReport)

	// Equipment routes
	equipement := api.Group("/equipement", requireAuth)
	equipement.Get("/", equipmentHandler.ListEquipment)
	equipement.Post("/", equipmentHandler.CreateEquipment)
	equipement.Put("/:id", equipmentHandler.UpdateEquipment)
	equipement.Delete("/:id", equipmentHandler.DeleteEquipment)
	equipement.Get("/:id/history/", equipmentHandler.EquipmentHistory)

	// User management routes (superadmin only)
	users := api.Group("/users", requireAuth, middleware.RequireSuperadmin())
	users.Get("/", userHandler.ListUsers)
	users.Post("/", userHandler.CreateUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Ressource non trouvée",
		})
	})

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
