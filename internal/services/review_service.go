package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TherapyAppBack/internal/models"
	"github.com/saeid-a/TherapyAppBack/internal/repository"
	"go.uber.org/zap"
)

type reviewedBookingReader interface {
	GetByIDForClient(ctx context.Context, bookingID uuid.UUID, clientID uuid.UUID) (*models.Booking, error)
}

type ReviewService struct {
	bookingRepo reviewedBookingReader
	reviewRepo  *repository.ReviewRepository
	logger      *zap.Logger
}

func NewReviewService(
	bookingRepo reviewedBookingReader,
	reviewRepo *repository.ReviewRepository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		bookingRepo: bookingRepo,
		reviewRepo:  reviewRepo,
		logger:      logger,
	}
}

// Create attaches client feedback to one of the client's bookings. The
// booking lookup checks existence and ownership together, so callers cannot
// tell a missing booking from someone else's. Any owned booking can be
// reviewed regardless of its status.
func (s *ReviewService) Create(
	ctx context.Context,
	actor models.Actor,
	bookingID uuid.UUID,
	rating int,
	comment string,
) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}

	if _, err := s.bookingRepo.GetByIDForClient(ctx, bookingID, actor.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	review, err := s.reviewRepo.Create(ctx, repository.CreateReviewInput{
		BookingID: bookingID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		zap.String("review_id", review.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Int("rating", rating),
	)
	return review, nil
}

func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	return s.reviewRepo.List(ctx)
}
