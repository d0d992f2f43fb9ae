package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TherapyAppBack/internal/models"
)

type stubAvailabilityReader struct {
	schedules []models.Schedule
	lastFrom  string
}

func (s *stubAvailabilityReader) ListAvailableFrom(_ context.Context, fromDate string) ([]models.Schedule, error) {
	s.lastFrom = fromDate
	return s.schedules, nil
}

func (s *stubAvailabilityReader) ListAvailableByPsychologistFrom(_ context.Context, psychologistID uuid.UUID, fromDate string) ([]models.Schedule, error) {
	s.lastFrom = fromDate
	matched := make([]models.Schedule, 0)
	for _, schedule := range s.schedules {
		if schedule.PsychologistID == psychologistID {
			matched = append(matched, schedule)
		}
	}
	return matched, nil
}

type stubReviewReader struct {
	reviews []models.Review
}

func (s *stubReviewReader) ListByPsychologist(_ context.Context, _ uuid.UUID) ([]models.Review, error) {
	return s.reviews, nil
}

type stubPsychologistDirectory struct {
	users map[uuid.UUID]models.User
}

func (s *stubPsychologistDirectory) GetPsychologistByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok || user.Role != models.RolePsychologist {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (s *stubPsychologistDirectory) ListByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	found := make(map[uuid.UUID]models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			found[id] = user
		}
	}
	return found, nil
}

func TestAverageRating(t *testing.T) {
	if got := averageRating(nil); got != nil {
		t.Fatalf("expected nil average for zero reviews, got %v", *got)
	}

	got := averageRating([]models.Review{{Rating: 4}, {Rating: 5}})
	if got == nil || *got != 4.5 {
		t.Fatalf("expected average 4.5, got %v", got)
	}

	got = averageRating([]models.Review{{Rating: 5}, {Rating: 5}, {Rating: 4}})
	if got == nil || *got != 4.7 {
		t.Fatalf("expected average rounded to 4.7, got %v", got)
	}
}

func TestListAvailableGroupsByPsychologist(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	schedules := &stubAvailabilityReader{schedules: []models.Schedule{
		{ID: uuid.New(), PsychologistID: first, Date: "2025-06-01", TimeSlot: "09:00"},
		{ID: uuid.New(), PsychologistID: first, Date: "2025-06-01", TimeSlot: "10:00"},
		{ID: uuid.New(), PsychologistID: second, Date: "2025-06-02", TimeSlot: "08:00"},
	}}
	directory := &stubPsychologistDirectory{users: map[uuid.UUID]models.User{
		first:  {ID: first, Username: "anna", Email: "anna@example.com", Role: models.RolePsychologist},
		second: {ID: second, Username: "ben", Email: "ben@example.com", Role: models.RolePsychologist},
	}}
	service := NewPsychologistService(directory, schedules, &stubReviewReader{})

	profiles, err := service.ListAvailable(context.Background(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}

	if schedules.lastFrom != "2025-06-01" {
		t.Fatalf("expected from date 2025-06-01, got %q", schedules.lastFrom)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 psychologists, got %d", len(profiles))
	}
	if profiles[0].Username != "anna" || len(profiles[0].AvailableSchedules) != 2 {
		t.Fatalf("expected anna with 2 slots first, got %+v", profiles[0])
	}
	if profiles[1].Username != "ben" || len(profiles[1].AvailableSchedules) != 1 {
		t.Fatalf("expected ben with 1 slot second, got %+v", profiles[1])
	}
	if profiles[0].AverageRating != nil || profiles[0].TotalReviews != 0 {
		t.Fatalf("expected rating aggregates to be skipped in list view, got %+v", profiles[0])
	}
}

func TestListAvailableOmitsUnknownPsychologists(t *testing.T) {
	known := uuid.New()
	schedules := &stubAvailabilityReader{schedules: []models.Schedule{
		{ID: uuid.New(), PsychologistID: known, Date: "2025-06-01", TimeSlot: "09:00"},
		{ID: uuid.New(), PsychologistID: uuid.New(), Date: "2025-06-01", TimeSlot: "10:00"},
	}}
	directory := &stubPsychologistDirectory{users: map[uuid.UUID]models.User{
		known: {ID: known, Username: "anna", Role: models.RolePsychologist},
	}}
	service := NewPsychologistService(directory, schedules, &stubReviewReader{})

	profiles, err := service.ListAvailable(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != known {
		t.Fatalf("expected only the known psychologist, got %+v", profiles)
	}
}

func TestDetailComputesRatingAggregates(t *testing.T) {
	psychologistID := uuid.New()
	schedules := &stubAvailabilityReader{schedules: []models.Schedule{
		{ID: uuid.New(), PsychologistID: psychologistID, Date: "2025-06-03", TimeSlot: "09:00"},
	}}
	reviews := &stubReviewReader{reviews: []models.Review{
		{ID: uuid.New(), Rating: 4, Comment: "helpful"},
		{ID: uuid.New(), Rating: 5, Comment: "great listener"},
	}}
	directory := &stubPsychologistDirectory{users: map[uuid.UUID]models.User{
		psychologistID: {ID: psychologistID, Username: "anna", Role: models.RolePsychologist},
	}}
	service := NewPsychologistService(directory, schedules, reviews)

	detail, err := service.Detail(context.Background(), psychologistID, time.Now())
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}

	if detail.AverageRating == nil || *detail.AverageRating != 4.5 {
		t.Fatalf("expected average 4.5, got %v", detail.AverageRating)
	}
	if detail.TotalReviews != 2 || len(detail.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %+v", detail)
	}
	if len(detail.AvailableSchedules) != 1 {
		t.Fatalf("expected 1 available schedule, got %d", len(detail.AvailableSchedules))
	}
}

func TestDetailRejectsNonPsychologists(t *testing.T) {
	clientID := uuid.New()
	directory := &stubPsychologistDirectory{users: map[uuid.UUID]models.User{
		clientID: {ID: clientID, Username: "carl", Role: models.RoleClient},
	}}
	service := NewPsychologistService(directory, &stubAvailabilityReader{}, &stubReviewReader{})

	_, err := service.Detail(context.Background(), clientID, time.Now())
	if !errors.Is(err, ErrPsychologistNotFound) {
		t.Fatalf("expected ErrPsychologistNotFound, got %v", err)
	}

	_, err = service.Detail(context.Background(), uuid.New(), time.Now())
	if !errors.Is(err, ErrPsychologistNotFound) {
		t.Fatalf("expected ErrPsychologistNotFound for unknown id, got %v", err)
	}
}
