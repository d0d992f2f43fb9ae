package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TherapyAppBack/internal/models"
)

const scheduleColumns = `id, psychologist_id, to_char(date, 'YYYY-MM-DD'), to_char(time_slot, 'HH24:MI'), is_booked`

type CreateScheduleInput struct {
	PsychologistID uuid.UUID
	Date           string
	TimeSlot       string
}

type UpdateScheduleInput struct {
	Date     *string
	TimeSlot *string
}

type ScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func scanSchedule(row pgx.Row) (*models.Schedule, error) {
	var schedule models.Schedule
	err := row.Scan(
		&schedule.ID,
		&schedule.PsychologistID,
		&schedule.Date,
		&schedule.TimeSlot,
		&schedule.IsBooked,
	)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) Create(
	ctx context.Context,
	input CreateScheduleInput,
) (*models.Schedule, error) {
	query := `
		INSERT INTO schedules (psychologist_id, date, time_slot)
		VALUES ($1, $2::date, $3::time)
		RETURNING ` + scheduleColumns

	return scanSchedule(r.db.QueryRow(ctx, query, input.PsychologistID, input.Date, input.TimeSlot))
}

func (r *ScheduleRepository) GetByID(ctx context.Context, scheduleID uuid.UUID) (*models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE id = $1
	`
	return scanSchedule(r.db.QueryRow(ctx, query, scheduleID))
}

// GetByIDForUpdate locks the schedule row for the duration of the enclosing
// transaction. Every booking mutation serializes on this lock.
func (r *ScheduleRepository) GetByIDForUpdate(
	ctx context.Context,
	scheduleID uuid.UUID,
) (*models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE id = $1
		FOR UPDATE
	`
	return scanSchedule(r.db.QueryRow(ctx, query, scheduleID))
}

func (r *ScheduleRepository) Update(
	ctx context.Context,
	scheduleID uuid.UUID,
	input UpdateScheduleInput,
) (*models.Schedule, error) {
	query := `
		UPDATE schedules
		SET date = COALESCE($2::date, date),
		    time_slot = COALESCE($3::time, time_slot)
		WHERE id = $1
		RETURNING ` + scheduleColumns

	return scanSchedule(r.db.QueryRow(ctx, query, scheduleID, input.Date, input.TimeSlot))
}

func (r *ScheduleRepository) Delete(ctx context.Context, scheduleID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, scheduleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ScheduleRepository) List(ctx context.Context) ([]models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		ORDER BY date ASC, time_slot ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectSchedules(rows)
}

func (r *ScheduleRepository) ListByPsychologist(
	ctx context.Context,
	psychologistID uuid.UUID,
) ([]models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE psychologist_id = $1
		ORDER BY date ASC, time_slot ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, psychologistID)
	if err != nil {
		return nil, err
	}
	return collectSchedules(rows)
}

func (r *ScheduleRepository) ListByIDs(
	ctx context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]models.Schedule, error) {
	schedules := make(map[uuid.UUID]models.Schedule, len(ids))
	if len(ids) == 0 {
		return schedules, nil
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE id = ANY($1::uuid[])
	`
	rows, err := r.db.Query(ctx, query, raw)
	if err != nil {
		return nil, err
	}
	listed, err := collectSchedules(rows)
	if err != nil {
		return nil, err
	}
	for _, schedule := range listed {
		schedules[schedule.ID] = schedule
	}
	return schedules, nil
}

// ListAvailableFrom returns unbooked schedules on or after the given date,
// ordered so the aggregator can group them by psychologist in one pass.
func (r *ScheduleRepository) ListAvailableFrom(
	ctx context.Context,
	fromDate string,
) ([]models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE NOT is_booked AND date >= $1::date
		ORDER BY psychologist_id ASC, date ASC, time_slot ASC
	`
	rows, err := r.db.Query(ctx, query, fromDate)
	if err != nil {
		return nil, err
	}
	return collectSchedules(rows)
}

func (r *ScheduleRepository) ListAvailableByPsychologistFrom(
	ctx context.Context,
	psychologistID uuid.UUID,
	fromDate string,
) ([]models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE psychologist_id = $1 AND NOT is_booked AND date >= $2::date
		ORDER BY date ASC, time_slot ASC
	`
	rows, err := r.db.Query(ctx, query, psychologistID, fromDate)
	if err != nil {
		return nil, err
	}
	return collectSchedules(rows)
}

// SyncBookedFlag recomputes is_booked from the schedule's booking statuses.
// It is the only writer of the flag, so the invariant "booked iff a pending
// or confirmed booking exists" cannot drift between call sites.
func (r *ScheduleRepository) SyncBookedFlag(ctx context.Context, scheduleID uuid.UUID) (bool, error) {
	query := `
		UPDATE schedules
		SET is_booked = EXISTS (
			SELECT 1 FROM bookings
			WHERE schedule_id = $1 AND status IN ('pending', 'confirmed')
		)
		WHERE id = $1
		RETURNING is_booked
	`
	var booked bool
	if err := r.db.QueryRow(ctx, query, scheduleID).Scan(&booked); err != nil {
		return false, err
	}
	return booked, nil
}

func collectSchedules(rows pgx.Rows) ([]models.Schedule, error) {
	defer rows.Close()

	schedules := make([]models.Schedule, 0)
	for rows.Next() {
		var schedule models.Schedule
		if err := rows.Scan(
			&schedule.ID,
			&schedule.PsychologistID,
			&schedule.Date,
			&schedule.TimeSlot,
			&schedule.IsBooked,
		); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}
