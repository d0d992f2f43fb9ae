package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TherapyAppBack/internal/models"
)

const bookingColumns = `id, client_id, schedule_id, status, created_at`

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID,
		&booking.ClientID,
		&booking.ScheduleID,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) Create(
	ctx context.Context,
	clientID uuid.UUID,
	scheduleID uuid.UUID,
) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (client_id, schedule_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING ` + bookingColumns

	return scanBooking(r.db.QueryRow(ctx, query, clientID, scheduleID))
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) GetByIDForUpdate(
	ctx context.Context,
	bookingID uuid.UUID,
) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

// GetByIDForClient resolves a booking only when it belongs to the given
// client. Absence and foreign ownership are indistinguishable to the caller.
func (r *BookingRepository) GetByIDForClient(
	ctx context.Context,
	bookingID uuid.UUID,
	clientID uuid.UUID,
) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1 AND client_id = $2
	`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, clientID))
}

func (r *BookingRepository) UpdateStatus(
	ctx context.Context,
	bookingID uuid.UUID,
	status models.BookingStatus,
) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $2
		WHERE id = $1
		RETURNING ` + bookingColumns

	return scanBooking(r.db.QueryRow(ctx, query, bookingID, status))
}

func (r *BookingRepository) Delete(ctx context.Context, bookingID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *BookingRepository) ListByClient(
	ctx context.Context,
	clientID uuid.UUID,
) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE client_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *BookingRepository) ListByPsychologist(
	ctx context.Context,
	psychologistID uuid.UUID,
) ([]models.Booking, error) {
	query := `
		SELECT b.id, b.client_id, b.schedule_id, b.status, b.created_at
		FROM bookings b
		JOIN schedules s ON s.id = b.schedule_id
		WHERE s.psychologist_id = $1
		ORDER BY b.created_at ASC, b.id ASC
	`
	rows, err := r.db.Query(ctx, query, psychologistID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ActiveBySchedule returns the booking currently occupying a schedule,
// preferring a confirmed one over a pending one.
func (r *BookingRepository) ActiveBySchedule(
	ctx context.Context,
	scheduleID uuid.UUID,
) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE schedule_id = $1 AND status IN ('pending', 'confirmed')
		ORDER BY (status = 'confirmed') DESC, created_at ASC
		LIMIT 1
	`
	return scanBooking(r.db.QueryRow(ctx, query, scheduleID))
}

func collectBookings(rows pgx.Rows) ([]models.Booking, error) {
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.ClientID,
			&booking.ScheduleID,
			&booking.Status,
			&booking.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}
