package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TherapyAppBack/internal/models"
)

type CreateReviewInput struct {
	BookingID uuid.UUID
	Rating    int
	Comment   string
}

type ReviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(
	ctx context.Context,
	input CreateReviewInput,
) (*models.Review, error) {
	query := `
		INSERT INTO reviews (booking_id, rating, comment)
		VALUES ($1, $2, $3)
		RETURNING id, booking_id, rating, comment
	`
	var review models.Review
	err := r.db.QueryRow(ctx, query, input.BookingID, input.Rating, input.Comment).
		Scan(&review.ID, &review.BookingID, &review.Rating, &review.Comment)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) List(ctx context.Context) ([]models.Review, error) {
	query := `
		SELECT id, booking_id, rating, comment
		FROM reviews
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

// ListByPsychologist joins reviews through their bookings' schedules, so a
// psychologist's rating covers every review left on their slots regardless
// of the booking's final status.
func (r *ReviewRepository) ListByPsychologist(
	ctx context.Context,
	psychologistID uuid.UUID,
) ([]models.Review, error) {
	query := `
		SELECT r.id, r.booking_id, r.rating, r.comment
		FROM reviews r
		JOIN bookings b ON b.id = r.booking_id
		JOIN schedules s ON s.id = b.schedule_id
		WHERE s.psychologist_id = $1
		ORDER BY r.id ASC
	`
	rows, err := r.db.Query(ctx, query, psychologistID)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

func collectReviews(rows pgx.Rows) ([]models.Review, error) {
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(&review.ID, &review.BookingID, &review.Rating, &review.Comment); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}
