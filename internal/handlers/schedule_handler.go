package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TherapyAppBack/internal/models"
	"github.com/saeid-a/TherapyAppBack/internal/services"
)

type scheduleApplicationService interface {
	Create(ctx context.Context, actor models.Actor, date string, timeSlot string) (*models.Schedule, error)
	Get(ctx context.Context, scheduleID uuid.UUID) (*models.ScheduleDetail, error)
	Update(ctx context.Context, actor models.Actor, scheduleID uuid.UUID, input services.UpdateScheduleInput) (*models.Schedule, error)
	Delete(ctx context.Context, actor models.Actor, scheduleID uuid.UUID) error
	List(ctx context.Context, actor models.Actor) ([]models.Schedule, error)
}

type ScheduleHandler struct {
	service scheduleApplicationService
}

func NewScheduleHandler(service *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

type createScheduleRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

type updateScheduleRequest struct {
	Date     *string `json:"date"`
	TimeSlot *string `json:"time_slot"`
}

func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	schedule, err := h.service.Create(c.Context(), actor, req.Date, req.TimeSlot)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"schedule": schedule})
}

func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	schedules, err := h.service.List(c.Context(), actor)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"schedules": schedules})
}

func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	if _, err := actorFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	scheduleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule id"})
	}

	schedule, err := h.service.Get(c.Context(), scheduleID)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"schedule": schedule})
}

func (h *ScheduleHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	scheduleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule id"})
	}

	var req updateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	schedule, err := h.service.Update(c.Context(), actor, scheduleID, services.UpdateScheduleInput{
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"schedule": schedule})
}

func (h *ScheduleHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	scheduleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule id"})
	}

	if err := h.service.Delete(c.Context(), actor, scheduleID); err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Schedule deleted"})
}

func mapScheduleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date or time format (date=YYYY-MM-DD, time=HH:MM)"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot delete schedule that has been booked"})
	case errors.Is(err, services.ErrScheduleNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process schedule request"})
	}
}
