package handlers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TherapyAppBack/internal/models"
	"github.com/saeid-a/TherapyAppBack/internal/services"
)

type reviewApplicationService interface {
	Create(ctx context.Context, actor models.Actor, bookingID uuid.UUID, rating int, comment string) (*models.Review, error)
	List(ctx context.Context) ([]models.Review, error)
}

type ReviewHandler struct {
	service  reviewApplicationService
	validate *validator.Validate
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: validator.New(),
	}
}

type createReviewRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rating must be an integer between 1 and 5 and booking_id a valid UUID"})
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "booking_id must be a valid UUID"})
	}

	review, err := h.service.Create(c.Context(), actor, bookingID, req.Rating, req.Comment)
	if err != nil {
		return mapReviewError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review})
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	reviews, err := h.service.List(c.Context())
	if err != nil {
		return mapReviewError(c, err)
	}

	return c.JSON(fiber.Map{"reviews": reviews})
}

func mapReviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rating must be an integer between 1 and 5"})
	case errors.Is(err, services.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found or not yours"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process review request"})
	}
}
