package routes

import (
	"booknet/internal/adapters/http/handlers"
	"booknet/internal/adapters/http/middleware"
	"booknet/internal/adapters/persistence/repositories"
	"booknet/internal/config"
	"booknet/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	tokenRepo := repositories.NewActivationTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)

	// Initialize services
	mailer := services.NewSMTPMailer(cfg.SMTP)
	activationService := services.NewActivationService(tokenRepo, userRepo, mailer, cfg)
	authService := services.NewAuthService(userRepo, roleRepo, activationService, cfg)
	bookService := services.NewBookService(bookRepo, loanRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService)
	bookHandler := handlers.NewBookHandler(bookService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, stricter rate limit)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler)

	// Book routes (authenticated)
	bookRoutes := apiV1.Group("/books")
	bookRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBookRoutes(bookRoutes, bookHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler) {
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Get("/activate-account", middleware.AuthRateLimiter(), handler.ActivateAccount)
}

// setupBookRoutes configures catalog and lending routes
func setupBookRoutes(router fiber.Router, handler *handlers.BookHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/owner", handler.ListOwned)
	router.Get("/borrowed", handler.ListBorrowed)
	router.Get("/returned", handler.ListReturned)
	router.Get("/:id", handler.GetByID)

	router.Patch("/shareable/:id", handler.UpdateShareable)
	router.Patch("/archived/:id", handler.UpdateArchived)

	router.Post("/borrow/:id", handler.Borrow)
	router.Patch("/borrow/return/:id", handler.Return)
	router.Patch("/borrow/return/approve/:id", handler.ApproveReturn)
}
