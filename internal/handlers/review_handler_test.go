package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TherapyAppBack/internal/models"
	"github.com/saeid-a/TherapyAppBack/internal/services"
)

type stubReviewService struct {
	createResult  *models.Review
	createErr     error
	listResult    []models.Review
	listErr       error
	lastActor     models.Actor
	lastBookingID uuid.UUID
	lastRating    int
	lastComment   string
}

func (s *stubReviewService) Create(_ context.Context, actor models.Actor, bookingID uuid.UUID, rating int, comment string) (*models.Review, error) {
	s.lastActor = actor
	s.lastBookingID = bookingID
	s.lastRating = rating
	s.lastComment = comment
	return s.createResult, s.createErr
}

func (s *stubReviewService) List(_ context.Context) ([]models.Review, error) {
	return s.listResult, s.listErr
}

func newReviewTestApp(handler *ReviewHandler, actorID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", actorID.String())
		c.Locals("role", "client")
		return c.Next()
	})
	app.Post("/api/v1/reviews", handler.Create)
	app.Get("/api/reviews", handler.List)
	return app
}

func TestCreateReviewReturnsCreatedReview(t *testing.T) {
	clientID := uuid.New()
	bookingID := uuid.New()
	service := &stubReviewService{
		createResult: &models.Review{
			ID:        uuid.New(),
			BookingID: bookingID,
			Rating:    5,
			Comment:   "very helpful session",
		},
	}
	handler := &ReviewHandler{service: service, validate: validator.New()}
	app := newReviewTestApp(handler, clientID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews",
		strings.NewReader(`{"booking_id":"`+bookingID.String()+`","rating":5,"comment":"very helpful session"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActor.ID != clientID {
		t.Fatalf("unexpected actor: %+v", service.lastActor)
	}
	if service.lastBookingID != bookingID || service.lastRating != 5 {
		t.Fatalf("unexpected forwarded input: %s %d", service.lastBookingID, service.lastRating)
	}

	var body struct {
		Review models.Review `json:"review"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Review.Comment != "very helpful session" {
		t.Fatalf("unexpected comment: %q", body.Review.Comment)
	}
}

func TestCreateReviewRejectsOutOfRangeRating(t *testing.T) {
	service := &stubReviewService{}
	handler := &ReviewHandler{service: service, validate: validator.New()}
	app := newReviewTestApp(handler, uuid.New())

	for _, rating := range []string{"0", "6", "-1"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews",
			strings.NewReader(`{"booking_id":"`+uuid.NewString()+`","rating":`+rating+`}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("rating %s: expected 400, got %d", rating, resp.StatusCode)
		}
	}
}

func TestCreateReviewRejectsMalformedBookingID(t *testing.T) {
	service := &stubReviewService{}
	handler := &ReviewHandler{service: service, validate: validator.New()}
	app := newReviewTestApp(handler, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews",
		strings.NewReader(`{"booking_id":"not-a-uuid","rating":4}`))
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

func TestCreateReviewConflatesNotFoundAndOwnership(t *testing.T) {
	service := &stubReviewService{createErr: services.ErrBookingNotFound}
	handler := &ReviewHandler{service: service, validate: validator.New()}
	app := newReviewTestApp(handler, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews",
		strings.NewReader(`{"booking_id":"`+uuid.NewString()+`","rating":4}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Error != "Booking not found or not yours" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}

func TestListReviewsIsPublic(t *testing.T) {
	service := &stubReviewService{
		listResult: []models.Review{
			{ID: uuid.New(), BookingID: uuid.New(), Rating: 5, Comment: "great"},
			{ID: uuid.New(), BookingID: uuid.New(), Rating: 3},
		},
	}
	handler := &ReviewHandler{service: service, validate: validator.New()}

	app := fiber.New()
	app.Get("/api/reviews", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Reviews []models.Review `json:"reviews"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(body.Reviews))
	}
}
