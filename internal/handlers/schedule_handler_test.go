package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TherapyAppBack/internal/models"
	"github.com/saeid-a/TherapyAppBack/internal/services"
)

type stubScheduleService struct {
	createResult *models.Schedule
	createErr    error
	getResult    *models.ScheduleDetail
	getErr       error
	updateResult *models.Schedule
	updateErr    error
	deleteErr    error
	listResult   []models.Schedule
	listErr      error
	lastActor    models.Actor
	lastID       uuid.UUID
	lastDate     string
	lastTimeSlot string
	lastUpdate   services.UpdateScheduleInput
}

func (s *stubScheduleService) Create(_ context.Context, actor models.Actor, date string, timeSlot string) (*models.Schedule, error) {
	s.lastActor = actor
	s.lastDate = date
	s.lastTimeSlot = timeSlot
	return s.createResult, s.createErr
}

func (s *stubScheduleService) Get(_ context.Context, scheduleID uuid.UUID) (*models.ScheduleDetail, error) {
	s.lastID = scheduleID
	return s.getResult, s.getErr
}

func (s *stubScheduleService) Update(_ context.Context, actor models.Actor, scheduleID uuid.UUID, input services.UpdateScheduleInput) (*models.Schedule, error) {
	s.lastActor = actor
	s.lastID = scheduleID
	s.lastUpdate = input
	return s.updateResult, s.updateErr
}

func (s *stubScheduleService) Delete(_ context.Context, actor models.Actor, scheduleID uuid.UUID) error {
	s.lastActor = actor
	s.lastID = scheduleID
	return s.deleteErr
}

func (s *stubScheduleService) List(_ context.Context, actor models.Actor) ([]models.Schedule, error) {
	s.lastActor = actor
	return s.listResult, s.listErr
}

func newScheduleTestApp(handler *ScheduleHandler, actorID uuid.UUID, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", actorID.String())
		c.Locals("role", role)
		return c.Next()
	})
	app.Post("/api/v1/schedules", handler.Create)
	app.Get("/api/v1/schedules", handler.List)
	app.Get("/api/v1/schedules/:id", handler.Get)
	app.Put("/api/v1/schedules/:id", handler.Update)
	app.Delete("/api/v1/schedules/:id", handler.Delete)
	return app
}

func TestCreateScheduleReturnsCreatedSchedule(t *testing.T) {
	psychologistID := uuid.New()
	service := &stubScheduleService{
		createResult: &models.Schedule{
			ID:             uuid.New(),
			PsychologistID: psychologistID,
			Date:           "2030-05-01",
			TimeSlot:       "09:00",
		},
	}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler, psychologistID, "psychologist")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules",
		strings.NewReader(`{"date":"2030-05-01","time_slot":"09:00"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastDate != "2030-05-01" || service.lastTimeSlot != "09:00" {
		t.Fatalf("unexpected forwarded input: %q %q", service.lastDate, service.lastTimeSlot)
	}

	var body struct {
		Schedule models.Schedule `json:"schedule"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Schedule.IsBooked {
		t.Fatal("expected new schedule to be unbooked")
	}
}

func TestCreateScheduleRejectsBadDateFormat(t *testing.T) {
	service := &stubScheduleService{createErr: services.ErrInvalidInput}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler, uuid.New(), "psychologist")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules",
		strings.NewReader(`{"date":"01-05-2030","time_slot":"09:00"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateScheduleReturnsForbiddenForClients(t *testing.T) {
	service := &stubScheduleService{createErr: services.ErrForbidden}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler, uuid.New(), "client")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules",
		strings.NewReader(`{"date":"2030-05-01","time_slot":"09:00"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGetScheduleIncludesCurrentBooking(t *testing.T) {
	scheduleID := uuid.New()
	service := &stubScheduleService{
		getResult: &models.ScheduleDetail{
			Schedule: models.Schedule{ID: scheduleID, Date: "2030-05-01", TimeSlot: "09:00", IsBooked: true},
			CurrentBooking: &models.Booking{
				ID:         uuid.New(),
				ScheduleID: scheduleID,
				Status:     models.BookingConfirmed,
			},
		},
	}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler, uuid.New(), "client")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/"+scheduleID.String(), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastID != scheduleID {
		t.Fatalf("expected schedule id %s, got %s", scheduleID, service.lastID)
	}

	var body struct {
		Schedule models.ScheduleDetail `json:"schedule"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Schedule.CurrentBooking == nil || body.Schedule.CurrentBooking.Status != models.BookingConfirmed {
		t.Fatalf("expected confirmed current booking, got %+v", body.Schedule.CurrentBooking)
	}
}

func TestUpdateScheduleForwardsPartialInput(t *testing.T) {
	scheduleID := uuid.New()
	service := &stubScheduleService{
		updateResult: &models.Schedule{ID: scheduleID, Date: "2030-05-02", TimeSlot: "09:00"},
	}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler, uuid.New(), "psychologist")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/schedules/"+scheduleID.String(),
		strings.NewReader(`{"date":"2030-05-02"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUpdate.Date == nil || *service.lastUpdate.Date != "2030-05-02" {
		t.Fatalf("expected forwarded date, got %+v", service.lastUpdate.Date)
	}
	if service.lastUpdate.TimeSlot != nil {
		t.Fatalf("expected nil time slot, got %q", *service.lastUpdate.TimeSlot)
	}
}

func TestDeleteScheduleReturnsConflictWhenBooked(t *testing.T) {
	service := &stubScheduleService{deleteErr: services.ErrConflict}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler, uuid.New(), "psychologist")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/schedules/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestDeleteScheduleReturnsNotFoundForUnknownID(t *testing.T) {
	service := &stubScheduleService{deleteErr: services.ErrScheduleNotFound}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler, uuid.New(), "psychologist")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/schedules/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListSchedulesReturnsSchedulesForRole(t *testing.T) {
	psychologistID := uuid.New()
	service := &stubScheduleService{
		listResult: []models.Schedule{
			{ID: uuid.New(), PsychologistID: psychologistID, Date: "2030-05-01", TimeSlot: "09:00"},
			{ID: uuid.New(), PsychologistID: psychologistID, Date: "2030-05-01", TimeSlot: "10:00"},
		},
	}
	handler := &ScheduleHandler{service: service}
	app := newScheduleTestApp(handler, psychologistID, "psychologist")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActor.Role != models.RolePsychologist {
		t.Fatalf("expected psychologist actor, got %+v", service.lastActor)
	}

	var body struct {
		Schedules []models.Schedule `json:"schedules"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(body.Schedules))
	}
}
