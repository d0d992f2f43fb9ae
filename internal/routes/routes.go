package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/TherapyAppBack/internal/config"
	"github.com/saeid-a/TherapyAppBack/internal/handlers"
	"github.com/saeid-a/TherapyAppBack/internal/middleware"
	"github.com/saeid-a/TherapyAppBack/internal/repository"
	"github.com/saeid-a/TherapyAppBack/internal/services"
	"go.uber.org/zap"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) {
	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	scheduleService := services.NewScheduleService(db, scheduleRepo, bookingRepo, userRepo, logger)
	bookingService := services.NewBookingService(db, bookingRepo, scheduleRepo, userRepo, logger)
	reviewService := services.NewReviewService(bookingRepo, reviewRepo, logger)
	psychologistService := services.NewPsychologistService(userRepo, scheduleRepo, reviewRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	psychologistHandler := handlers.NewPsychologistHandler(psychologistService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// Discovery and the review feed are public.
	api.Get("/psychologists/available", psychologistHandler.ListAvailable)
	api.Get("/psychologists/:id", psychologistHandler.Detail)
	api.Get("/reviews", reviewHandler.List)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	schedules := authProtected.Group("/schedules")
	schedules.Get("", scheduleHandler.List)
	schedules.Post("", scheduleHandler.Create)
	schedules.Get("/:id", scheduleHandler.Get)
	schedules.Put("/:id", scheduleHandler.Update)
	schedules.Delete("/:id", scheduleHandler.Delete)

	bookings := authProtected.Group("/bookings")
	bookings.Get("", bookingHandler.List)
	bookings.Post("", bookingHandler.Create)
	bookings.Get("/:id", bookingHandler.Get)
	bookings.Put("/:id", bookingHandler.UpdateStatus)
	bookings.Patch("/:id", bookingHandler.UpdateStatus)
	bookings.Delete("/:id", bookingHandler.Delete)

	authProtected.Post("/reviews", reviewHandler.Create)
}
