package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/TherapyAppBack/internal/models"
	"github.com/saeid-a/TherapyAppBack/internal/repository"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type ScheduleService struct {
	db           *pgxpool.Pool
	scheduleRepo *repository.ScheduleRepository
	bookingRepo  *repository.BookingRepository
	userRepo     userReader
	logger       *zap.Logger
}

func NewScheduleService(
	db *pgxpool.Pool,
	scheduleRepo *repository.ScheduleRepository,
	bookingRepo *repository.BookingRepository,
	userRepo userReader,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		db:           db,
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

type UpdateScheduleInput struct {
	Date     *string
	TimeSlot *string
}

func (s *ScheduleService) Create(
	ctx context.Context,
	actor models.Actor,
	date string,
	timeSlot string,
) (*models.Schedule, error) {
	if actor.Role != models.RolePsychologist {
		return nil, ErrForbidden
	}
	if !validDate(date) || !validTimeSlot(timeSlot) {
		return nil, ErrInvalidInput
	}

	schedule, err := s.scheduleRepo.Create(ctx, repository.CreateScheduleInput{
		PsychologistID: actor.ID,
		Date:           date,
		TimeSlot:       timeSlot,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule created",
		zap.String("schedule_id", schedule.ID.String()),
		zap.String("psychologist_id", actor.ID.String()),
		zap.String("date", schedule.Date),
		zap.String("time_slot", schedule.TimeSlot),
	)
	return schedule, nil
}

func (s *ScheduleService) Get(ctx context.Context, scheduleID uuid.UUID) (*models.ScheduleDetail, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	detail := &models.ScheduleDetail{Schedule: *schedule}

	psychologist, err := s.userRepo.GetByID(ctx, schedule.PsychologistID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Psychologist = psychologist
	}

	if schedule.IsBooked {
		booking, err := s.bookingRepo.ActiveBySchedule(ctx, scheduleID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			detail.CurrentBooking = booking
		}
	}

	return detail, nil
}

// Update edits the slot's date or time. The booked flag is deliberately not
// checked: owners may move a booked slot, matching the established contract.
func (s *ScheduleService) Update(
	ctx context.Context,
	actor models.Actor,
	scheduleID uuid.UUID,
	input UpdateScheduleInput,
) (*models.Schedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if schedule.PsychologistID != actor.ID {
		return nil, ErrForbidden
	}

	if input.Date != nil && !validDate(*input.Date) {
		return nil, ErrInvalidInput
	}
	if input.TimeSlot != nil && !validTimeSlot(*input.TimeSlot) {
		return nil, ErrInvalidInput
	}

	return s.scheduleRepo.Update(ctx, scheduleID, repository.UpdateScheduleInput{
		Date:     input.Date,
		TimeSlot: input.TimeSlot,
	})
}

func (s *ScheduleService) Delete(
	ctx context.Context,
	actor models.Actor,
	scheduleID uuid.UUID,
) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txScheduleRepo := repository.NewScheduleRepository(tx)

	// Lock the row so a concurrent booking cannot land between the booked
	// check and the delete.
	schedule, err := txScheduleRepo.GetByIDForUpdate(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrScheduleNotFound
		}
		return err
	}
	if schedule.PsychologistID != actor.ID {
		return ErrForbidden
	}
	if schedule.IsBooked {
		return ErrConflict
	}

	if err := txScheduleRepo.Delete(ctx, scheduleID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("schedule deleted",
		zap.String("schedule_id", scheduleID.String()),
		zap.String("psychologist_id", actor.ID.String()),
	)
	return nil
}

// List returns the actor's view of the schedule book: psychologists see only
// their own slots, clients see every slot system-wide.
func (s *ScheduleService) List(ctx context.Context, actor models.Actor) ([]models.Schedule, error) {
	switch actor.Role {
	case models.RolePsychologist:
		return s.scheduleRepo.ListByPsychologist(ctx, actor.ID)
	case models.RoleClient:
		return s.scheduleRepo.List(ctx)
	default:
		return nil, ErrForbidden
	}
}

func validDate(raw string) bool {
	_, err := time.Parse(dateLayout, raw)
	return err == nil
}

func validTimeSlot(raw string) bool {
	_, err := time.Parse(timeLayout, raw)
	return err == nil
}
