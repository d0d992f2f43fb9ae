package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TherapyAppBack/internal/models"
)

var ErrPsychologistNotFound = errors.New("psychologist not found")

type availabilityReader interface {
	ListAvailableFrom(ctx context.Context, fromDate string) ([]models.Schedule, error)
	ListAvailableByPsychologistFrom(ctx context.Context, psychologistID uuid.UUID, fromDate string) ([]models.Schedule, error)
}

type psychologistReviewReader interface {
	ListByPsychologist(ctx context.Context, psychologistID uuid.UUID) ([]models.Review, error)
}

type psychologistDirectory interface {
	GetPsychologistByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// PsychologistService is the read-only discovery projection over settled
// schedule and review state.
type PsychologistService struct {
	userRepo     psychologistDirectory
	scheduleRepo availabilityReader
	reviewRepo   psychologistReviewReader
}

func NewPsychologistService(
	userRepo psychologistDirectory,
	scheduleRepo availabilityReader,
	reviewRepo psychologistReviewReader,
) *PsychologistService {
	return &PsychologistService{
		userRepo:     userRepo,
		scheduleRepo: scheduleRepo,
		reviewRepo:   reviewRepo,
	}
}

// ListAvailable groups unbooked schedules on or after the given day by
// psychologist, preserving (psychologist, date, time) order. Psychologists
// with nothing available are omitted. Rating aggregates are skipped in the
// list view and stay null.
func (s *PsychologistService) ListAvailable(
	ctx context.Context,
	from time.Time,
) ([]models.PsychologistProfile, error) {
	schedules, err := s.scheduleRepo.ListAvailableFrom(ctx, from.Format(dateLayout))
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, schedule := range schedules {
		if !seen[schedule.PsychologistID] {
			seen[schedule.PsychologistID] = true
			ids = append(ids, schedule.PsychologistID)
		}
	}

	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.PsychologistProfile, 0, len(ids))
	index := make(map[uuid.UUID]int, len(ids))
	for _, schedule := range schedules {
		user, ok := users[schedule.PsychologistID]
		if !ok {
			continue
		}
		i, ok := index[schedule.PsychologistID]
		if !ok {
			i = len(profiles)
			index[schedule.PsychologistID] = i
			profiles = append(profiles, models.PsychologistProfile{
				ID:                 user.ID,
				Username:           user.Username,
				Email:              user.Email,
				Role:               user.Role,
				AvailableSchedules: make([]models.Schedule, 0, 1),
			})
		}
		profiles[i].AvailableSchedules = append(profiles[i].AvailableSchedules, schedule)
	}

	return profiles, nil
}

// Detail returns the full discovery view for one psychologist: profile,
// upcoming availability, and every review attached to their slots with the
// mean rating rounded to one decimal (null when there are no reviews).
func (s *PsychologistService) Detail(
	ctx context.Context,
	psychologistID uuid.UUID,
	from time.Time,
) (*models.PsychologistDetail, error) {
	user, err := s.userRepo.GetPsychologistByID(ctx, psychologistID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPsychologistNotFound
		}
		return nil, err
	}

	schedules, err := s.scheduleRepo.ListAvailableByPsychologistFrom(
		ctx,
		psychologistID,
		from.Format(dateLayout),
	)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByPsychologist(ctx, psychologistID)
	if err != nil {
		return nil, err
	}

	return &models.PsychologistDetail{
		PsychologistProfile: models.PsychologistProfile{
			ID:                 user.ID,
			Username:           user.Username,
			Email:              user.Email,
			Role:               user.Role,
			AverageRating:      averageRating(reviews),
			TotalReviews:       len(reviews),
			AvailableSchedules: schedules,
		},
		Reviews: reviews,
	}, nil
}

func averageRating(reviews []models.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	avg := math.Round(float64(sum)/float64(len(reviews))*10) / 10
	return &avg
}
