package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TherapyAppBack/internal/models"
	"github.com/saeid-a/TherapyAppBack/internal/services"
)

type psychologistDiscoveryService interface {
	ListAvailable(ctx context.Context, from time.Time) ([]models.PsychologistProfile, error)
	Detail(ctx context.Context, psychologistID uuid.UUID, from time.Time) (*models.PsychologistDetail, error)
}

// PsychologistHandler serves public discovery views of settled schedule and
// review state.
type PsychologistHandler struct {
	service psychologistDiscoveryService
}

func NewPsychologistHandler(service *services.PsychologistService) *PsychologistHandler {
	return &PsychologistHandler{service: service}
}

func (h *PsychologistHandler) ListAvailable(c *fiber.Ctx) error {
	profiles, err := h.service.ListAvailable(c.Context(), time.Now().UTC())
	if err != nil {
		return mapPsychologistError(c, err)
	}

	return c.JSON(fiber.Map{"psychologists": profiles})
}

func (h *PsychologistHandler) Detail(c *fiber.Ctx) error {
	psychologistID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid psychologist id"})
	}

	detail, err := h.service.Detail(c.Context(), psychologistID, time.Now().UTC())
	if err != nil {
		return mapPsychologistError(c, err)
	}

	return c.JSON(fiber.Map{"psychologist": detail})
}

func mapPsychologistError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPsychologistNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Psychologist not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch psychologists"})
	}
}
